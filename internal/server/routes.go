package server

import (
	"net/http"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// API routes - Import/export pipeline
	mux.HandleFunc("/api/import", s.app.ImportHandler.ImportHandler)             // POST - multipart upload
	mux.HandleFunc("/api/export", s.app.ExportHandler.ExportHandler)             // POST - assemble archive
	mux.HandleFunc("/api/export/download/", s.app.ExportHandler.DownloadHandler) // GET /{id}

	// API routes - Documents
	mux.HandleFunc("/api/documents/stats", s.app.DocumentHandler.StatsHandler)
	mux.HandleFunc("/api/documents", s.app.DocumentHandler.ListHandler)            // GET (list), POST (create)
	mux.HandleFunc("/api/documents/", s.app.DocumentHandler.DocumentRoutesHandler) // GET/PUT/DELETE /{id}

	// API routes - System
	mux.HandleFunc("/api/version", s.app.APIHandler.VersionHandler)
	mux.HandleFunc("/api/health", s.app.APIHandler.HealthHandler)

	// 404 handler for unmatched API routes
	mux.HandleFunc("/api/", s.app.APIHandler.NotFoundHandler)

	return mux
}
