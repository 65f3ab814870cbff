package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"dreamroom/internal/daily"
	"dreamroom/internal/profile"
	"dreamroom/internal/roomgen"
	"dreamroom/internal/rooms"
)

// Handlers bundles the endpoint handlers the router mounts.
type Handlers struct {
	Profile profile.Handler
	Daily   daily.Handler
	Roomgen roomgen.Handler
	Rooms   rooms.Handler
}

// New constructs the HTTP server with routes and middleware. mediaDir, when
// non-empty, is served under /media/ for locally stored room images.
func New(port string, h Handlers, mediaDir string) *http.Server {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(metricsMiddleware)

	router.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
	router.Handle("/metrics", promhttp.Handler())

	router.Route("/api", func(r chi.Router) {
		r.Post("/personality-products", h.Profile.PersonalityProducts)
		r.Post("/generate-daily-questions", h.Daily.GenerateDailyQuestions)

		r.Post("/generate-room", h.Roomgen.GenerateRoom)
		r.Post("/base-room", h.Roomgen.BaseRoom)
		r.Post("/stylize-product", h.Roomgen.StylizeProduct)
		r.Post("/compose-final", h.Roomgen.ComposeFinal)
		r.Post("/compose-room", h.Roomgen.ComposeRoom)

		r.Route("/rooms", func(r chi.Router) {
			r.Post("/", h.Rooms.Create)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.Rooms.Get)
				r.Post("/share", h.Rooms.Share)
			})
		})
	})

	if mediaDir != "" {
		fs := http.StripPrefix("/media/", http.FileServer(http.Dir(mediaDir)))
		router.Handle("/media/*", fs)
	}

	srv := &http.Server{
		Addr:        ":" + port,
		Handler:     router,
		ReadTimeout: 30 * time.Second,
		// The phased pipeline holds the connection open across several
		// upstream image calls.
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	log.Info().Str("addr", srv.Addr).Msg("server ready")
	return srv
}
