package middleware

import (
	"net/http" // HTTP methods and handlers

	"github.com/rs/cors" // CORS handling
)

// CORS wraps the whole HTTP handler so preflight requests never reach the router
func CORS(origins []string, next http.Handler) http.Handler {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type", RequestIDHeader},
		ExposedHeaders: []string{RequestIDHeader},
		MaxAge:         3600,
	}).Handler(next)
}
