package handler

import (
	"net/http"

	"docscan-gateway/internal/config"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// NewRouter creates a new HTTP router with all routes configured
func NewRouter(container *config.Container) http.Handler {
	router := mux.NewRouter()

	// API prefix
	api := router.PathPrefix("/api/v1").Subrouter()

	// Health check endpoint (no auth required)
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok","service":"docscan-gateway"}`))
	}).Methods("GET")

	// Initialize handlers
	authHandler := NewAuthHandler(container.AuthService, container.Config, container.Logger)
	documentHandler := NewDocumentHandler(container.DocumentService, container.WatchManager, container.Logger)
	scanHandler := NewScanHandler(container.ScanStore, container.ImageService, container.UploadService, container.Config, container.Logger)

	// Public auth configuration for the login page
	api.HandleFunc("/auth/config", authHandler.GetAuthConfig).Methods("GET")

	// Auth middleware for protected routes
	authMiddleware := AuthMiddleware(container.AuthService, container.Logger)

	// Protected routes (require authentication)
	protected := api.PathPrefix("").Subrouter()
	protected.Use(authMiddleware)

	// Auth routes (protected)
	protected.HandleFunc("/auth/session", authHandler.GetSession).Methods("GET")
	protected.HandleFunc("/auth/logout", authHandler.Logout).Methods("POST")

	// Document routes (protected)
	protected.HandleFunc("/documents", documentHandler.ListDocuments).Methods("GET")
	protected.HandleFunc("/documents/{id}", documentHandler.GetDocument).Methods("GET")
	protected.HandleFunc("/documents/{id}", documentHandler.DeleteDocument).Methods("DELETE")
	protected.HandleFunc("/documents/{id}/download", documentHandler.DownloadDocument).Methods("GET")
	protected.HandleFunc("/documents/{id}/status", documentHandler.GetDocumentStatus).Methods("GET")
	protected.HandleFunc("/documents/{id}/watch", documentHandler.StartWatch).Methods("POST")
	protected.HandleFunc("/documents/{id}/watch", documentHandler.GetWatch).Methods("GET")
	protected.HandleFunc("/documents/{id}/watch", documentHandler.StopWatch).Methods("DELETE")

	// Scan session routes (protected)
	protected.HandleFunc("/scans", scanHandler.CreateScan).Methods("POST")
	protected.HandleFunc("/scans/{id}", scanHandler.GetScan).Methods("GET")
	protected.HandleFunc("/scans/{id}", scanHandler.DeleteScan).Methods("DELETE")
	protected.HandleFunc("/scans/{id}/name", scanHandler.SetDocumentName).Methods("PUT")
	protected.HandleFunc("/scans/{id}/files", scanHandler.AddFile).Methods("POST")
	protected.HandleFunc("/scans/{id}/files/{fileId}", scanHandler.RemoveFile).Methods("DELETE")
	protected.HandleFunc("/scans/{id}/files/{fileId}/crop", scanHandler.CropFile).Methods("POST")
	protected.HandleFunc("/scans/{id}/files/{fileId}/rotate", scanHandler.RotateFile).Methods("POST")
	protected.HandleFunc("/scans/{id}/rotate", scanHandler.RotateAll).Methods("POST")
	protected.HandleFunc("/scans/{id}/order", scanHandler.Reorder).Methods("PUT")
	protected.HandleFunc("/scans/{id}/upload", scanHandler.SubmitScan).Methods("POST")
	protected.HandleFunc("/scans/{id}/upload", scanHandler.GetUploadState).Methods("GET")

	// Configure CORS
	c := cors.New(cors.Options{
		AllowedOrigins: container.Config.GetAllowedOrigins(),
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept",
			"Authorization",
			"Content-Type",
			"X-CSRF-Token",
		},
		ExposedHeaders: []string{
			"Content-Disposition",
		},
		AllowCredentials: true,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	})

	return c.Handler(router)
}
