package httpapi

import (
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// RouterOptions configures optional router behavior.
type RouterOptions struct {
	// AuthMiddleware protects the authenticated routes. Required.
	AuthMiddleware func(http.Handler) http.Handler

	// RoadmapLimiter throttles roadmap generation per subject. Nil disables it.
	RoadmapLimiter *RateLimiter

	// MetricsHandler is mounted at /metrics when non-nil.
	MetricsHandler http.Handler
	// StatusRecorder receives every response status (metrics).
	StatusRecorder StatusRecorder

	// StaticFS backs the catch-all page. Nil serves the embedded default page.
	StaticFS fs.FS

	// AllowedOrigins for CORS. Empty means "*".
	AllowedOrigins []string

	// ExposePanicDetail echoes panic values in 500 bodies.
	ExposePanicDetail bool

	Log *zap.Logger
}

// NewRouter constructs the API HTTP router.
//
// Routes:
//   - /api/health and /api/generate/health are public
//   - /api/auth/login and /api/auth/signup are public acknowledgements
//   - /api/auth/verify and the rest of /api/generate require a Firebase ID token
//   - any other GET is served the static page
func NewRouter(api *Server, opts RouterOptions) http.Handler {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(NewRequestLogger(log, opts.StatusRecorder))
	r.Use(NewRecoverer(log, opts.ExposePanicDetail))
	r.Use(securityHeaders)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"Retry-After", "X-Request-Id"},
		MaxAge:         300,
	}))

	// Set before mounting sub-routers so they inherit it.
	fallback := newStaticHandler(opts.StaticFS)
	r.NotFound(fallback.ServeHTTP)
	r.MethodNotAllowed(fallback.ServeHTTP)

	if opts.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", opts.MetricsHandler)
	}

	authMW := opts.AuthMiddleware
	roadmapMW := []func(http.Handler) http.Handler{}
	if opts.RoadmapLimiter != nil {
		roadmapMW = append(roadmapMW, opts.RoadmapLimiter.Middleware)
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", api.Health)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", api.Login)
			r.Post("/signup", api.Signup)
			r.With(authMW).Get("/verify", api.VerifySession)
		})

		r.Route("/generate", func(r chi.Router) {
			r.Get("/health", api.GeneratorHealth)

			r.Group(func(r chi.Router) {
				r.Use(authMW)
				r.With(roadmapMW...).Post("/roadmap", api.CreateRoadmap)
				r.Get("/skills", api.ListSkills)
				r.Get("/test-auth", api.TestAuth)
			})
		})
	})

	return r
}
