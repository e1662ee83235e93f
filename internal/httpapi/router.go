// Package httpapi exposes the mockup pipeline over HTTP.
package httpapi

import (
	"net/http"
)

// pingHandler handles GET /ping
func pingHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

// NewRouter registers all routes on a fresh mux.
func NewRouter(mockups *MockupController) *http.ServeMux {
	mux := http.NewServeMux()

	// Ping endpoint
	mux.HandleFunc("/ping", pingHandler)

	// Render a mockup from an uploaded image or a text design
	mux.HandleFunc("/api/mockups", mockups.Create)

	return mux
}
