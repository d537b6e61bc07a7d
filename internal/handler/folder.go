package handler

import (
	"log/slog"
	"net/http"

	svc "assetdesk/internal/domain/services"
	"assetdesk/internal/httputil"
)

// FolderHandler handles folder HTTP requests
type FolderHandler struct {
	treeService svc.FolderTreeService
	logger      *slog.Logger
}

// NewFolderHandler creates a new folder handler
func NewFolderHandler(treeService svc.FolderTreeService, logger *slog.Logger) *FolderHandler {
	return &FolderHandler{
		treeService: treeService,
		logger:      logger,
	}
}

// CreateFolder creates a folder. A taken name gets a " (n)" suffix instead of a conflict.
// POST /api/assets/{id}/{kind}/folders
func (h *FolderHandler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	ref, err := treeRef(r)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	var req svc.CreateFolderRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		handleError(w, h.logger, err)
		return
	}
	req.TreeRef = ref

	folder, err := h.treeService.CreateFolder(r.Context(), &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.SetVersion(w, folder.Version)
	httputil.RespondJSON(w, http.StatusCreated, folder)
}

// UpdateFolder renames and/or moves a folder
// PATCH /api/assets/{id}/{kind}/folders/{folderId}
func (h *FolderHandler) UpdateFolder(w http.ResponseWriter, r *http.Request) {
	ref, err := treeRef(r)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	var req svc.UpdateFolderRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		handleError(w, h.logger, err)
		return
	}
	req.TreeRef = ref
	req.FolderID = r.PathValue("folderId")

	folder, err := h.treeService.UpdateFolder(r.Context(), &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.SetVersion(w, folder.Version)
	httputil.RespondJSON(w, http.StatusOK, folder)
}

// DeleteFolder deletes a folder (must be empty)
// DELETE /api/assets/{id}/{kind}/folders/{folderId}
func (h *FolderHandler) DeleteFolder(w http.ResponseWriter, r *http.Request) {
	ref, err := treeRef(r)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	version, err := h.treeService.DeleteFolder(r.Context(), ref, r.PathValue("folderId"))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.SetVersion(w, version)
	w.WriteHeader(http.StatusNoContent)
}
