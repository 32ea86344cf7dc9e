package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/apcooley/grafty/internal/apperr"
	"github.com/apcooley/grafty/internal/nodeservice"
	"github.com/apcooley/grafty/internal/patchset"
	"github.com/apcooley/grafty/internal/vcs"
)

// Handler holds API route handlers.
type Handler struct {
	svc *nodeservice.Service
	git *vcs.Config
}

// NewHandler creates a new Handler. gitCfg may be nil when version
// control integration is disabled.
func NewHandler(svc *nodeservice.Service, gitCfg *vcs.Config) *Handler {
	return &Handler{svc: svc, git: gitCfg}
}

// ListNodes handles GET /api/nodes.
//
//	@Summary		List indexed nodes with an optional glob query
//	@Tags			nodes
//	@Produce		json
//	@Param			q	query		string	false	"Glob selector pathGlob[:kindGlob[:nameGlob]]"
//	@Success		200	{object}	map[string]any
//	@Security		BearerAuth
//	@Router			/nodes [get]
func (h *Handler) ListNodes(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.ListNodes(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		slog.Error("list nodes failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if items == nil {
		items = []nodeservice.NodeItem{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"nodes": items,
		"total": len(items),
	})
}

type resolveRequest struct {
	Selector string `json:"selector"`
}

// ResolveSelector handles POST /api/resolve.
//
//	@Summary		Resolve a selector to a node
//	@Tags			nodes
//	@Accept			json
//	@Produce		json
//	@Success		200	{object}	models.SelectorResult
//	@Failure		400	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/resolve [post]
func (h *Handler) ResolveSelector(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Selector == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("selector is required"))
		return
	}
	res, err := h.svc.Resolve(r.Context(), req.Selector)
	if err != nil {
		slog.Error("resolve failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// GetNode handles GET /api/node.
//
//	@Summary		Read a node's text by selector
//	@Tags			nodes
//	@Produce		json
//	@Param			selector	query		string	true	"Selector"
//	@Success		200			{object}	nodeservice.NodeDetail
//	@Failure		404			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/node [get]
func (h *Handler) GetNode(w http.ResponseWriter, r *http.Request) {
	sel := r.URL.Query().Get("selector")
	if sel == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("selector is required"))
		return
	}
	detail, err := h.svc.GetNode(r.Context(), sel)
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrNotFound):
			writeJSON(w, http.StatusNotFound, errorBody("node not found"))
		case errors.Is(err, apperr.ErrValidation):
			writeJSON(w, http.StatusConflict, errorBody("selector is ambiguous"))
		default:
			slog.Error("get node failed", slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// ListFiles handles GET /api/files.
//
//	@Summary		List indexable workspace files
//	@Tags			files
//	@Produce		json
//	@Success		200	{object}	map[string]any
//	@Security		BearerAuth
//	@Router			/files [get]
func (h *Handler) ListFiles(w http.ResponseWriter, r *http.Request) {
	files, err := h.svc.ListFiles(r.Context())
	if err != nil {
		slog.Error("list files failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"files": files,
		"total": len(files),
	})
}

type patchRequest struct {
	Mutations []patchset.FileMutation `json:"mutations"`
	Backup    bool                    `json:"backup,omitempty"`
	Force     bool                    `json:"force,omitempty"`
	Commit    bool                    `json:"commit,omitempty"`
	Push      bool                    `json:"push,omitempty"`
	Message   string                  `json:"message,omitempty"`
}

// DiffPatch handles POST /api/patch/diff.
//
//	@Summary		Validate mutations and return per-file unified diffs
//	@Tags			patch
//	@Accept			json
//	@Produce		json
//	@Success		200	{object}	patchset.Result
//	@Failure		400	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/patch/diff [post]
func (h *Handler) DiffPatch(w http.ResponseWriter, r *http.Request) {
	var req patchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid request body"))
		return
	}
	res := h.svc.PreviewPatch(r.Context(), req.Mutations)
	status := http.StatusOK
	if !res.Success {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, res)
}

// ApplyPatch handles POST /api/patch/apply.
//
//	@Summary		Apply mutations atomically across files
//	@Tags			patch
//	@Accept			json
//	@Produce		json
//	@Success		200	{object}	patchset.Result
//	@Failure		422	{object}	patchset.Result
//	@Security		BearerAuth
//	@Router			/patch/apply [post]
func (h *Handler) ApplyPatch(w http.ResponseWriter, r *http.Request) {
	var req patchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid request body"))
		return
	}
	opts := patchset.ApplyOptions{Backup: req.Backup, Force: req.Force}
	if req.Commit && h.git != nil {
		cfg := *h.git
		cfg.AutoCommit = true
		cfg.AutoPush = req.Push
		if req.Message != "" {
			cfg.CommitMessage = req.Message
		}
		opts.VCS = &cfg
	}
	res := h.svc.ApplyPatch(r.Context(), req.Mutations, opts)
	status := http.StatusOK
	if !res.Success {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, res)
}
