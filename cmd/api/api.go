package api

import (
	"log"
	"net/http"
	"os"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/postline/postline-server/service/feed"
	"github.com/postline/postline-server/service/follow"
	"github.com/postline/postline-server/service/group"
	"github.com/postline/postline-server/service/user"
	"gorm.io/gorm"
)

type APIServer struct {
	address string
	db      *gorm.DB
}

func NewApiServer(address string, db *gorm.DB) *APIServer {
	return &APIServer{
		address: address,
		db:      db,
	}
}

func (s *APIServer) Run() error {
	router := mux.NewRouter()
	subrouter := router.PathPrefix("/api/v1").Subrouter()

	userHandler := user.NewHandler(s.db)
	userHandler.RegisterRoutes(subrouter)

	groupHandler := group.NewHandler(s.db)
	groupHandler.RegisterRoutes(subrouter)

	feedHandler := feed.NewHandler(s.db)
	feedHandler.RegisterRoutes(subrouter)

	followHandler := follow.NewHandler(s.db)
	followHandler.RegisterRoutes(subrouter)

	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Authorization", "Content-Type"}),
	)

	log.Println("Server running at", s.address)
	return http.ListenAndServe(s.address, handlers.CombinedLoggingHandler(os.Stdout, cors(router)))
}
