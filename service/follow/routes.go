package follow

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/postline/postline-server/cmd/models"
	"github.com/postline/postline-server/cmd/utils"
	"gorm.io/gorm"
)

type Handler struct {
	store *Store
	db    *gorm.DB
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{store: NewStore(db), db: db}
}

func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/profiles/{username}/follow", utils.AuthMiddleware(h.FollowAuthor)).Methods("POST")
	router.HandleFunc("/profiles/{username}/unfollow", utils.AuthMiddleware(h.UnfollowAuthor)).Methods("POST")
	router.HandleFunc("/profiles/{username}/following", utils.OptionalAuth(h.GetFollowing)).Methods("GET")
}

func (h *Handler) authorByUsername(username string) (*models.User, error) {
	var author models.User
	if err := h.db.Where("username = ?", username).First(&author).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return &author, nil
}

// FollowAuthor subscribes the authenticated user to an author's posts.
// Repeat calls and self-follows succeed without creating anything.
func (h *Handler) FollowAuthor(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	author, err := h.authorByUsername(mux.Vars(r)["username"])
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	if err := h.store.Follow(userID, author.ID); err != nil {
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Following " + author.Username,
	})
}

// UnfollowAuthor removes the subscription; absent subscriptions are fine.
func (h *Handler) UnfollowAuthor(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	author, err := h.authorByUsername(mux.Vars(r)["username"])
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	if err := h.store.Unfollow(userID, author.ID); err != nil {
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Unfollowed " + author.Username,
	})
}

// GetFollowing reports whether the requester follows the author; without
// authentication the answer is always false.
func (h *Handler) GetFollowing(w http.ResponseWriter, r *http.Request) {
	author, err := h.authorByUsername(mux.Vars(r)["username"])
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	following, err := h.store.IsFollowing(utils.RequesterID(r.Context()), author.ID)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]bool{
		"following": following,
	})
}
