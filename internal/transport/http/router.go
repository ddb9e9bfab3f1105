package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/MerrickKing/walrusbot/internal/config"
	jwtinfra "github.com/MerrickKing/walrusbot/internal/infrastructure/jwt"
	"github.com/MerrickKing/walrusbot/internal/transport/http/handler"
	appmiddleware "github.com/MerrickKing/walrusbot/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// Deps holds the dependencies of the ops API router.
type Deps struct {
	Records     handler.RecordReader
	JWTProvider *jwtinfra.Provider
}

// NewRouter builds the ops API router: health, login, and read-only
// verification state for administrators.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	var authMw func(http.Handler) http.Handler
	var signer handler.TokenSigner
	if deps.JWTProvider != nil {
		authMw = appmiddleware.Auth(deps.JWTProvider)
		signer = deps.JWTProvider
	} else {
		authMw = func(http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, `{"error":"ops auth not configured"}`, http.StatusServiceUnavailable)
			})
		}
	}

	// 5 requests/second, burst of 10 — the login endpoint takes passwords.
	loginRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	healthH := handler.NewHealthHandler()
	opsH := handler.NewOpsHandler(deps.Records, signer, cfg.AdminPasswordHash)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/health-check/{action}", healthH.Ping)
		r.With(loginRL.Limit).Post("/ops/login", opsH.Login)

		r.Group(func(r chi.Router) {
			r.Use(authMw)

			r.Get("/verifications/{id}", opsH.GetVerification)
			r.Get("/verifications-stats", opsH.Stats)
		})
	})

	return r
}
