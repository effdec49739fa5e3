package api

import (
	"net/http"

	"cipherkit/internal/errors"
	"cipherkit/internal/version"
)

// registerRoutes registers all API routes
func (s *Server) registerRoutes() {
	s.router.HandleFunc("/", s.handleRoot).Methods(http.MethodGet)
	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	s.router.HandleFunc("/v1/algorithms", s.handleAlgorithms).Methods(http.MethodGet)
	s.router.HandleFunc("/v1/cipher", s.handleCipher).Methods(http.MethodPost)
	s.router.HandleFunc("/v1/decipher", s.handleDecipher).Methods(http.MethodPost)
	s.router.HandleFunc("/v1/hash", s.handleHash).Methods(http.MethodPost)
	s.router.HandleFunc("/v1/messages", s.handleMessage).Methods(http.MethodPost)

	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, errors.Newf(errors.InvalidOperation, "no route for %s %s", r.Method, r.URL.Path), http.StatusNotFound)
	})
	s.router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, errors.Newf(errors.InvalidOperation, "method %s not allowed on %s", r.Method, r.URL.Path), http.StatusMethodNotAllowed)
	})
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"name":    "cipherkit HTTP API",
		"version": version.Version,
		"endpoints": []string{
			"GET /health - Health check",
			"GET /v1/algorithms - List cipher algorithms",
			"POST /v1/cipher - Encipher {algorithm, param, text}",
			"POST /v1/decipher - Decipher {algorithm, param, text}",
			"POST /v1/hash - Digest {text, algorithms}",
			"POST /v1/messages - Answer a chat command {text}",
		},
	}

	WriteJSON(w, response, http.StatusOK)
}
