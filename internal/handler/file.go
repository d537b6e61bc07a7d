package handler

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"assetdesk/internal/config"
	"assetdesk/internal/domain"
	svc "assetdesk/internal/domain/services"
	"assetdesk/internal/httputil"
)

// multipartOverhead is the allowance for form fields and boundaries on top of the file itself
const multipartOverhead = 1 << 20

// FileHandler handles uploads, file updates and content downloads
type FileHandler struct {
	treeService svc.FolderTreeService
	blobs       svc.BlobStore
	authorizer  svc.ResourceAuthorizer
	logger      *slog.Logger
}

// NewFileHandler creates a new file handler
func NewFileHandler(
	treeService svc.FolderTreeService,
	blobs svc.BlobStore,
	authorizer svc.ResourceAuthorizer,
	logger *slog.Logger,
) *FileHandler {
	return &FileHandler{
		treeService: treeService,
		blobs:       blobs,
		authorizer:  authorizer,
		logger:      logger,
	}
}

// UploadFile accepts a multipart form with a "file" part and an optional "folder_id"
// POST /api/assets/{id}/{kind}/files
func (h *FileHandler) UploadFile(w http.ResponseWriter, r *http.Request) {
	ref, err := treeRef(r)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, config.MaxUploadBytes+multipartOverhead)
	if err := r.ParseMultipartForm(multipartOverhead); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			handleError(w, h.logger, fmt.Errorf("upload exceeds %d bytes: %w", config.MaxUploadBytes, domain.ErrTooLarge))
			return
		}
		handleError(w, h.logger, fmt.Errorf("%w: invalid multipart form: %v", domain.ErrValidation, err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		handleError(w, h.logger, fmt.Errorf("%w: file is required", domain.ErrValidation))
		return
	}
	defer file.Close()

	var folderID *string
	if v := r.FormValue("folder_id"); v != "" {
		folderID = &v
	}

	result, err := h.treeService.UploadFile(r.Context(), &svc.UploadFileRequest{
		TreeRef:     ref,
		FolderID:    folderID,
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Body:        file,
	})
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.SetVersion(w, result.Version)
	httputil.RespondJSON(w, http.StatusCreated, result)
}

// UpdateFile renames and/or moves a file
// PATCH /api/assets/{id}/{kind}/files/{fileId}
func (h *FileHandler) UpdateFile(w http.ResponseWriter, r *http.Request) {
	ref, err := treeRef(r)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	var req svc.UpdateFileRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		handleError(w, h.logger, err)
		return
	}
	req.TreeRef = ref
	req.FileID = r.PathValue("fileId")

	result, err := h.treeService.UpdateFile(r.Context(), &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.SetVersion(w, result.Version)
	httputil.RespondJSON(w, http.StatusOK, result)
}

// DeleteFile removes a file from the tree and deletes its content
// DELETE /api/assets/{id}/{kind}/files/{fileId}
func (h *FileHandler) DeleteFile(w http.ResponseWriter, r *http.Request) {
	ref, err := treeRef(r)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	version, err := h.treeService.DeleteFile(r.Context(), ref, r.PathValue("fileId"))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.SetVersion(w, version)
	w.WriteHeader(http.StatusNoContent)
}

// Download streams stored content to the owner of the asset it was uploaded to
// GET /api/files/{id}
func (h *FileHandler) Download(w http.ResponseWriter, r *http.Request) {
	info, body, err := h.blobs.Open(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	defer body.Close()

	if err := h.authorizer.CanAccessAsset(r.Context(), httputil.GetUserID(r), info.AssetID); err != nil {
		handleError(w, h.logger, err)
		return
	}

	contentType := info.MimeType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("inline", map[string]string{"filename": info.Name}))
	if info.Size != nil {
		w.Header().Set("Content-Length", strconv.FormatInt(*info.Size, 10))
	}
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, body); err != nil {
		h.logger.Warn("file download interrupted", "file_id", info.ID, "error", err)
	}
}
