package middleware

import (
	"net/http"

	"github.com/go-chi/cors"

	"promptbook/internal/config"
)

// CORS admits the configured web origins.
func CORS(cfg config.Config) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: cfg.CORSAllowCredentials,
		MaxAge:           600,
	})
}
