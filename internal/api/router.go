package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/apcooley/grafty/internal/nodeservice"
	"github.com/apcooley/grafty/internal/vcs"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
// gitCfg, if non-nil, enables the commit/push options on patch apply.
func NewRouter(svc *nodeservice.Service, authEnabled bool, token string, sseHandler http.Handler, gitCfg *vcs.Config) chi.Router {
	h := NewHandler(svc, gitCfg)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Node index.
	r.Get("/nodes", h.ListNodes)
	r.Get("/node", h.GetNode)
	r.Post("/resolve", h.ResolveSelector)

	// Workspace files.
	r.Get("/files", h.ListFiles)

	// Patch engine.
	r.Post("/patch/diff", h.DiffPatch)
	r.Post("/patch/apply", h.ApplyPatch)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
