package user

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/gorilla/mux"
	"github.com/postline/postline-server/cmd/models"
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
	router.HandleFunc("/register", h.HandleRegister).Methods("POST")
	router.HandleFunc("/login", h.HandleLogin).Methods("POST")
	router.HandleFunc("/users/{username}", h.GetUser).Methods("GET")
	router.HandleFunc("/users/{username}", utils.AuthMiddleware(h.DeleteUser)).Methods("DELETE")
}

func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, err := h.store.Register(body.Username, body.Email, body.Password)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusCreated, user)
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, err := h.store.Authenticate(body.Username, body.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			http.Error(w, "Invalid credentials", http.StatusUnauthorized)
			return
		}
		utils.WriteError(w, err)
		return
	}

	token, err := issueToken(user.ID)
	if err != nil {
		http.Error(w, "Error creating token", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"token": token,
		"user":  user,
	})
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.store.GetByUsername(mux.Vars(r)["username"])
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, user)
}

// DeleteUser removes the authenticated user's own account together with
// all their posts, comments and follow edges. Destructive and
// non-recoverable.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	requesterID, err := utils.GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	user, err := h.store.GetByUsername(mux.Vars(r)["username"])
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	if user.ID != requesterID {
		utils.WriteError(w, models.ErrForbidden)
		return
	}

	if err := h.store.DeleteUser(user.ID); err != nil {
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "User deleted successfully",
	})
}

func issueToken(userID uint) (string, error) {
	ttl := 24 * time.Hour
	if raw := os.Getenv("TOKEN_TTL_HOURS"); raw != "" {
		if hours, err := strconv.Atoi(raw); err == nil {
			ttl = time.Duration(hours) * time.Hour
		}
	}

	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(uint64(userID), 10),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(os.Getenv("SECRET_KEY")))
}
