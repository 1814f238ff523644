// Package webview serves the interactive localhost viewer: one embedded
// page driving a session over a small JSON API. Band changes, trace
// computation, and plot export all round-trip through the same handlers
// the page uses, so the API is scriptable with curl as well.
package webview

import (
	"embed"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/phaselab/phasesync/internal/config"
	"github.com/phaselab/phasesync/internal/session"
)

//go:embed index.html
var content embed.FS

// App wires a session and its configuration into an HTTP handler tree.
type App struct {
	router *chi.Mux
	sess   *session.Session
	cfg    *config.Config
}

// New builds the viewer for a session. A nil cfg falls back to the
// defaults.
func New(sess *session.Session, cfg *config.Config) *App {
	if cfg == nil {
		cfg = config.Default()
	}

	a := &App{router: chi.NewRouter(), sess: sess, cfg: cfg}
	a.setupMiddleware()
	a.setupRoutes()

	return a
}

func (a *App) setupMiddleware() {
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)
}

func (a *App) setupRoutes() {
	a.router.Get("/", a.handleIndex)

	a.router.Get("/api/info", a.handleInfo)
	a.router.Get("/api/methods", a.handleMethods)
	a.router.Get("/api/bands", a.handleBands)

	a.router.Post("/api/band", a.handleSetBand)
	a.router.Delete("/api/band", a.handleClearBand)

	a.router.Get("/api/traces", a.handleListTraces)
	a.router.Post("/api/traces", a.handleAddTrace)
	a.router.Delete("/api/traces", a.handleResetTraces)

	a.router.Get("/api/psd", a.handlePSD)
	a.router.Get("/plot.png", a.handlePlot)
}

// Router returns the handler tree, mainly for tests and embedding.
func (a *App) Router() http.Handler { return a.router }

// ListenAndServe blocks serving the viewer on the configured address.
func (a *App) ListenAndServe() error {
	log.Printf("phasesync viewer listening on http://%s", a.cfg.Listen)

	return http.ListenAndServe(a.cfg.Listen, a.router)
}
