package feed

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/postline/postline-server/cmd/utils"
	"github.com/postline/postline-server/service/follow"
	"gorm.io/gorm"
)

type Handler struct {
	store   *Store
	follows *follow.Store
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{
		store:   NewStore(db),
		follows: follow.NewStore(db),
	}
}

func (h *Handler) RegisterRoutes(router *mux.Router) {
	// Post routes
	router.HandleFunc("/posts", h.GetGlobalFeed).Methods("GET")
	router.HandleFunc("/posts", utils.AuthMiddleware(h.CreatePost)).Methods("POST")
	router.HandleFunc("/posts/{id}", h.GetPost).Methods("GET")
	router.HandleFunc("/posts/{id}", utils.AuthMiddleware(h.UpdatePost)).Methods("PUT")
	router.HandleFunc("/posts/{id}", utils.AuthMiddleware(h.DeletePost)).Methods("DELETE")

	// Comment routes
	router.HandleFunc("/posts/{id}/comments", h.GetComments).Methods("GET")
	router.HandleFunc("/posts/{id}/comments", utils.AuthMiddleware(h.AddComment)).Methods("POST")

	// Feed routes
	router.HandleFunc("/groups/{slug}/posts", h.GetGroupFeed).Methods("GET")
	router.HandleFunc("/profiles/{username}/posts", utils.OptionalAuth(h.GetProfileFeed)).Methods("GET")
	router.HandleFunc("/feed", utils.AuthMiddleware(h.GetFollowingFeed)).Methods("GET")

	// Stored post images
	router.HandleFunc("/images/{filename}", h.ServeImage).Methods("GET")
}

// CreatePost publishes a post for the authenticated user. The request is
// multipart: a required text field, an optional group_id and an optional
// image.
func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := r.ParseMultipartForm(utils.MaxImageSize); err != nil {
		http.Error(w, "Error parsing form", http.StatusBadRequest)
		return
	}

	text := r.FormValue("text")

	var groupID *uint
	if raw := r.FormValue("group_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			http.Error(w, "Invalid group ID", http.StatusBadRequest)
			return
		}
		gid := uint(id)
		groupID = &gid
	}

	imagePath := ""
	if file, header, err := r.FormFile("image"); err == nil {
		defer file.Close()
		imagePath, err = utils.SaveImage(file, header)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	post, err := h.store.CreatePost(userID, text, groupID, imagePath)
	if err != nil {
		if imagePath != "" {
			utils.DeleteImage(imagePath)
		}
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusCreated, post)
}

// UpdatePost rewrites a post's text and group; only the author may do so.
func (h *Handler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	postID, err := postIDFromRequest(r)
	if err != nil {
		http.Error(w, "Invalid post ID", http.StatusBadRequest)
		return
	}

	var updateData struct {
		Text    string `json:"text"`
		GroupID *uint  `json:"group_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&updateData); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	post, err := h.store.EditPost(userID, postID, updateData.Text, updateData.GroupID, "")
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, post)
}

// DeletePost removes a post and its comments; only the author may do so.
func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	postID, err := postIDFromRequest(r)
	if err != nil {
		http.Error(w, "Invalid post ID", http.StatusBadRequest)
		return
	}

	if err := h.store.DeletePost(userID, postID); err != nil {
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Post deleted successfully",
	})
}

func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	postID, err := postIDFromRequest(r)
	if err != nil {
		http.Error(w, "Invalid post ID", http.StatusBadRequest)
		return
	}

	post, err := h.store.GetPost(postID)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, post)
}

// GetGlobalFeed retrieves all posts, newest first, with pagination.
func (h *Handler) GetGlobalFeed(w http.ResponseWriter, r *http.Request) {
	posts, page, err := h.store.GlobalFeed(utils.PageParam(r))
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"posts":       posts,
		"page":        page.Number,
		"page_size":   page.Size,
		"total":       page.TotalItems,
		"total_pages": page.TotalPages,
	})
}

// GetGroupFeed retrieves the posts of one group, newest first.
func (h *Handler) GetGroupFeed(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["slug"]

	group, posts, page, err := h.store.GroupFeed(slug, utils.PageParam(r))
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"group":       group,
		"posts":       posts,
		"page":        page.Number,
		"page_size":   page.Size,
		"total":       page.TotalItems,
		"total_pages": page.TotalPages,
	})
}

// GetProfileFeed retrieves one author's posts, newest first, plus whether
// the requester (if any) follows that author.
func (h *Handler) GetProfileFeed(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]

	author, posts, page, err := h.store.ProfileFeed(username, utils.PageParam(r))
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	following, err := h.follows.IsFollowing(utils.RequesterID(r.Context()), author.ID)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"author":      author,
		"following":   following,
		"posts":       posts,
		"page":        page.Number,
		"page_size":   page.Size,
		"total":       page.TotalItems,
		"total_pages": page.TotalPages,
	})
}

// GetFollowingFeed retrieves the personalized feed: posts by every author
// the authenticated user follows.
func (h *Handler) GetFollowingFeed(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	posts, page, err := h.store.FollowingFeed(userID, utils.PageParam(r))
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"posts":       posts,
		"page":        page.Number,
		"page_size":   page.Size,
		"total":       page.TotalItems,
		"total_pages": page.TotalPages,
	})
}

// AddComment attaches a comment by the authenticated user to a post.
func (h *Handler) AddComment(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	postID, err := postIDFromRequest(r)
	if err != nil {
		http.Error(w, "Invalid post ID", http.StatusBadRequest)
		return
	}

	var body struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	comment, err := h.store.AddComment(userID, postID, body.Text)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusCreated, comment)
}

// GetComments retrieves a post's comments, newest first, with pagination.
func (h *Handler) GetComments(w http.ResponseWriter, r *http.Request) {
	postID, err := postIDFromRequest(r)
	if err != nil {
		http.Error(w, "Invalid post ID", http.StatusBadRequest)
		return
	}

	comments, page, err := h.store.Comments(postID, utils.PageParam(r))
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"comments":    comments,
		"page":        page.Number,
		"page_size":   page.Size,
		"total":       page.TotalItems,
		"total_pages": page.TotalPages,
	})
}

// ServeImage serves a stored post image.
func (h *Handler) ServeImage(w http.ResponseWriter, r *http.Request) {
	filename := mux.Vars(r)["filename"]

	if containsDotDot(filename) {
		http.Error(w, "Invalid path", http.StatusBadRequest)
		return
	}

	imagePath := filepath.Join(utils.ImagePath, filepath.Clean(filename))
	if _, err := os.Stat(imagePath); os.IsNotExist(err) {
		http.Error(w, "Image not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Cache-Control", "public, max-age=3600")
	http.ServeFile(w, r, imagePath)
}

func containsDotDot(v string) bool {
	if !filepath.IsAbs(v) {
		v = filepath.Clean(filepath.Join("/", v))
	}
	return filepath.Clean(v) != v
}

func postIDFromRequest(r *http.Request) (uint, error) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	return uint(id), err
}
