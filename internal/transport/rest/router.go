package rest

import (
	"classroomlive/internal/cache"
	"classroomlive/internal/service"
	"classroomlive/internal/transport/rest/handler"
	"classroomlive/internal/transport/rest/middleware"
	"classroomlive/internal/transport/ws"
	"net/http"
	"os"

	"github.com/gorilla/mux"
)

// Container holds all dependencies for the router
type Container struct {
	AuthService      *service.AuthService
	ClassroomService *service.ClassroomService
	HandService      *service.HandService
	RoundService     *service.RoundService
	ContentService   *service.ContentService
	Guard            *service.AccessGuard
	Presence         cache.PresenceCache
	WSHub            *ws.Hub

	// MediaDir is served at /media when set.
	MediaDir string
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	classroomHandler := handler.NewClassroomHandler(c.ClassroomService)
	handHandler := handler.NewHandHandler(c.HandService)
	roundHandler := handler.NewRoundHandler(c.RoundService)
	contentHandler := handler.NewContentHandler(c.ContentService)
	wsHandler := ws.NewHandler(c.WSHub, c.AuthService, c.ClassroomService, c.HandService, c.RoundService, c.ContentService, c.Guard, c.Presence)

	// Initialize middleware
	authMW := middleware.NewAuthMiddleware(c.AuthService)

	// CORS middleware (apply first)
	r.Use(corsMiddleware)

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Uploaded content
	if c.MediaDir != "" {
		r.PathPrefix("/media/").Handler(http.StripPrefix("/media/", http.FileServer(http.Dir(c.MediaDir))))
	}

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	// WebSocket route (token in query param, validated in the handler)
	v1.HandleFunc("/ws/classrooms/{classroomId}", wsHandler.ClassroomWS).Methods("GET")

	// Authenticated routes
	api := v1.NewRoute().Subrouter()
	api.Use(authMW.RequireUser)

	api.HandleFunc("/classrooms/{sessionId}", classroomHandler.State).Methods("GET", "OPTIONS")
	api.HandleFunc("/classrooms/{classroomId}/seats/select", classroomHandler.SelectSeat).Methods("POST", "OPTIONS")
	api.HandleFunc("/classrooms/{classroomId}/participants", classroomHandler.Participants).Methods("GET", "OPTIONS")
	api.HandleFunc("/classrooms/{classroomId}/raised-hands", handHandler.RaisedHands).Methods("GET", "OPTIONS")
	api.HandleFunc("/classrooms/{classroomId}/update-rounds", roundHandler.Start).Methods("POST", "OPTIONS")
	api.HandleFunc("/hand", handHandler.SetHand).Methods("POST", "OPTIONS")
	api.HandleFunc("/hand-raises/{id}/start-speaking", handHandler.StartSpeaking).Methods("POST", "OPTIONS")
	api.HandleFunc("/update-turns/{id}/end", roundHandler.EndTurn).Methods("POST", "OPTIONS")
	api.HandleFunc("/seats/{seatId}/content", contentHandler.Share).Methods("POST", "OPTIONS")
	api.HandleFunc("/content/{id}", contentHandler.Detail).Methods("GET", "OPTIONS")

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
		if allowedOrigins == "" {
			allowedOrigins = "*"
		}

		allowedMethods := os.Getenv("CORS_ALLOWED_METHODS")
		if allowedMethods == "" {
			allowedMethods = "GET, POST, PUT, DELETE, OPTIONS"
		}

		allowedHeaders := os.Getenv("CORS_ALLOWED_HEADERS")
		if allowedHeaders == "" {
			allowedHeaders = "Content-Type, Authorization"
		}

		w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
		w.Header().Set("Access-Control-Allow-Methods", allowedMethods)
		w.Header().Set("Access-Control-Allow-Headers", allowedHeaders)

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
