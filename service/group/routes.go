package group

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/postline/postline-server/cmd/utils"
	"gorm.io/gorm"
)

type Handler struct {
	store *Store
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{store: NewStore(db)}
}

func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/groups", h.GetGroups).Methods("GET")
	router.HandleFunc("/groups", utils.AuthMiddleware(h.CreateGroup)).Methods("POST")
	router.HandleFunc("/groups/{slug}", h.GetGroup).Methods("GET")
	router.HandleFunc("/groups/{slug}", utils.AuthMiddleware(h.DeleteGroup)).Methods("DELETE")
}

func (h *Handler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Title       string `json:"title"`
		Slug        string `json:"slug"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	group, err := h.store.CreateGroup(body.Title, body.Slug, body.Description)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusCreated, group)
}

func (h *Handler) GetGroup(w http.ResponseWriter, r *http.Request) {
	group, err := h.store.GetGroup(mux.Vars(r)["slug"])
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, group)
}

// GetGroups retrieves the group directory with pagination.
func (h *Handler) GetGroups(w http.ResponseWriter, r *http.Request) {
	groups, page, err := h.store.ListGroups(utils.PageParam(r))
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"groups":      groups,
		"page":        page.Number,
		"page_size":   page.Size,
		"total":       page.TotalItems,
		"total_pages": page.TotalPages,
	})
}

// DeleteGroup removes a group; posts published into it keep existing
// without a group reference.
func (h *Handler) DeleteGroup(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteGroup(mux.Vars(r)["slug"]); err != nil {
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Group deleted successfully",
	})
}
