package handler

import (
	"log/slog"
	"net/http"

	svc "assetdesk/internal/domain/services"
	"assetdesk/internal/httputil"
)

// TreeHandler handles whole-tree reads and writes
type TreeHandler struct {
	treeService svc.FolderTreeService
	logger      *slog.Logger
}

// NewTreeHandler creates a new tree handler
func NewTreeHandler(treeService svc.FolderTreeService, logger *slog.Logger) *TreeHandler {
	return &TreeHandler{
		treeService: treeService,
		logger:      logger,
	}
}

// GetTree returns the flat tree and its version
// GET /api/assets/{id}/{kind}
func (h *TreeHandler) GetTree(w http.ResponseWriter, r *http.Request) {
	ref, err := treeRef(r)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	snap, err := h.treeService.GetTree(r.Context(), ref)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.SetVersion(w, snap.Version)
	httputil.RespondJSON(w, http.StatusOK, snap)
}

// ReplaceTree stores a whole tree. If-Match must carry the version it was built from.
// PUT /api/assets/{id}/{kind}
func (h *TreeHandler) ReplaceTree(w http.ResponseWriter, r *http.Request) {
	ref, err := treeRef(r)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	version, ok, err := httputil.ParseIfMatch(r)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	if !ok {
		httputil.RespondError(w, http.StatusPreconditionRequired, "If-Match header with the tree version is required")
		return
	}

	var req svc.ReplaceTreeRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		handleError(w, h.logger, err)
		return
	}
	req.TreeRef = ref
	req.ExpectedVersion = version

	snap, err := h.treeService.ReplaceTree(r.Context(), &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.SetVersion(w, snap.Version)
	httputil.RespondJSON(w, http.StatusOK, snap)
}

// GetNestedTree returns the nested folder/file tree
// GET /api/assets/{id}/{kind}/tree
func (h *TreeHandler) GetNestedTree(w http.ResponseWriter, r *http.Request) {
	ref, err := treeRef(r)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	tree, err := h.treeService.GetNestedTree(r.Context(), ref)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, tree)
}

// ListChildren lists the direct children of a folder, or of root without folder_id
// GET /api/assets/{id}/{kind}/children?folder_id=
func (h *TreeHandler) ListChildren(w http.ResponseWriter, r *http.Request) {
	ref, err := treeRef(r)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	contents, err := h.treeService.ListChildren(r.Context(), ref, httputil.QueryID(r, "folder_id"))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.SetVersion(w, contents.Version)
	httputil.RespondJSON(w, http.StatusOK, contents)
}
