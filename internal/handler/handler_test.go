package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"assetdesk/internal/domain"
	"assetdesk/internal/domain/models/foldertree"
	svc "assetdesk/internal/domain/services"
	"assetdesk/internal/httputil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const assetID = "6f1c2d9e-8a4b-4c1e-9f0a-2b3c4d5e6f70"

// stubService records the last request and returns canned results.
type stubService struct {
	snapshot *foldertree.Snapshot
	err      error

	replaced *svc.ReplaceTreeRequest
	created  *svc.CreateFolderRequest
	updated  *svc.UpdateFolderRequest
	uploaded *svc.UploadFileRequest
	body     string
	children *string
}

func (s *stubService) GetTree(ctx context.Context, ref svc.TreeRef) (*foldertree.Snapshot, error) {
	return s.snapshot, s.err
}

func (s *stubService) GetNestedTree(ctx context.Context, ref svc.TreeRef) (*foldertree.Node, error) {
	if s.err != nil {
		return nil, s.err
	}
	return foldertree.Build(s.snapshot.Tree), nil
}

func (s *stubService) ListChildren(ctx context.Context, ref svc.TreeRef, folderID *string) (*svc.FolderContents, error) {
	s.children = folderID
	return &svc.FolderContents{Folders: []foldertree.FolderItem{}, Files: []foldertree.FileItem{}, Version: 3}, s.err
}

func (s *stubService) ReplaceTree(ctx context.Context, req *svc.ReplaceTreeRequest) (*foldertree.Snapshot, error) {
	s.replaced = req
	if s.err != nil {
		return nil, s.err
	}
	return &foldertree.Snapshot{Tree: req.Tree, Version: req.ExpectedVersion + 1}, nil
}

func (s *stubService) CreateFolder(ctx context.Context, req *svc.CreateFolderRequest) (*svc.FolderResult, error) {
	s.created = req
	if s.err != nil {
		return nil, s.err
	}
	return &svc.FolderResult{
		FolderItem: foldertree.FolderItem{ID: "f1", Name: req.Name, ParentID: req.ParentID},
		Path:       req.Name,
		Version:    1,
	}, nil
}

func (s *stubService) UpdateFolder(ctx context.Context, req *svc.UpdateFolderRequest) (*svc.FolderResult, error) {
	s.updated = req
	if s.err != nil {
		return nil, s.err
	}
	return &svc.FolderResult{FolderItem: foldertree.FolderItem{ID: req.FolderID}, Version: 2}, nil
}

func (s *stubService) DeleteFolder(ctx context.Context, ref svc.TreeRef, folderID string) (int64, error) {
	return 5, s.err
}

func (s *stubService) UpdateFile(ctx context.Context, req *svc.UpdateFileRequest) (*svc.FileResult, error) {
	return &svc.FileResult{Version: 2}, s.err
}

func (s *stubService) DeleteFile(ctx context.Context, ref svc.TreeRef, fileID string) (int64, error) {
	return 6, s.err
}

func (s *stubService) UploadFile(ctx context.Context, req *svc.UploadFileRequest) (*svc.FileResult, error) {
	s.uploaded = req
	data, _ := io.ReadAll(req.Body)
	s.body = string(data)
	if s.err != nil {
		return nil, s.err
	}
	return &svc.FileResult{
		FileItem: foldertree.FileItem{PreviewItem: foldertree.PreviewItem{ID: "up1", Name: req.Name}, FolderID: req.FolderID},
		Version:  9,
	}, nil
}

type stubBlobs struct {
	info *svc.BlobInfo
	data string
}

func (b *stubBlobs) Put(ctx context.Context, req *svc.PutBlobRequest) (*svc.BlobInfo, error) {
	return nil, errors.New("not implemented")
}

func (b *stubBlobs) Open(ctx context.Context, id string) (*svc.BlobInfo, io.ReadCloser, error) {
	if b.info == nil || b.info.ID != id {
		return nil, nil, &domain.NotFoundError{Message: "file not found"}
	}
	return b.info, io.NopCloser(strings.NewReader(b.data)), nil
}

func (b *stubBlobs) Delete(ctx context.Context, id string) error { return nil }

type stubAuthorizer struct {
	owner string
}

func (a stubAuthorizer) CanAccessAsset(ctx context.Context, userID, assetID string) error {
	if userID != a.owner {
		return &domain.ForbiddenError{Message: "access denied"}
	}
	return nil
}

func newTestMux(s *stubService, blobs *stubBlobs) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	trees := NewTreeHandler(s, logger)
	folders := NewFolderHandler(s, logger)
	files := NewFileHandler(s, blobs, stubAuthorizer{owner: "user-1"}, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/assets/{id}/{kind}", trees.GetTree)
	mux.HandleFunc("PUT /api/assets/{id}/{kind}", trees.ReplaceTree)
	mux.HandleFunc("GET /api/assets/{id}/{kind}/tree", trees.GetNestedTree)
	mux.HandleFunc("GET /api/assets/{id}/{kind}/children", trees.ListChildren)
	mux.HandleFunc("POST /api/assets/{id}/{kind}/folders", folders.CreateFolder)
	mux.HandleFunc("PATCH /api/assets/{id}/{kind}/folders/{folderId}", folders.UpdateFolder)
	mux.HandleFunc("DELETE /api/assets/{id}/{kind}/folders/{folderId}", folders.DeleteFolder)
	mux.HandleFunc("POST /api/assets/{id}/{kind}/files", files.UploadFile)
	mux.HandleFunc("GET /api/files/{id}", files.Download)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mux.ServeHTTP(w, httputil.WithUserID(r, "user-1"))
	})
}

func TestTreeHandler_GetTree(t *testing.T) {
	s := &stubService{snapshot: &foldertree.Snapshot{
		Tree:    foldertree.Tree{Folders: []foldertree.FolderItem{{ID: "a", Name: "A"}}},
		Version: 12,
	}}
	rec := httptest.NewRecorder()
	newTestMux(s, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/assets/"+assetID+"/docs", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `"12"`, rec.Header().Get("ETag"))

	var body struct {
		Tree    map[string]json.RawMessage `json:"tree"`
		Version int64                      `json:"version"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, int64(12), body.Version)
	assert.JSONEq(t, `[]`, string(body.Tree["files"]), "empty lists are arrays, not null")
}

func TestTreeHandler_UnknownKind(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestMux(&stubService{}, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/assets/"+assetID+"/videos", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
}

func TestTreeHandler_ReplaceTree(t *testing.T) {
	body := `{"tree":{"folders":[{"id":"a","name":"A","parentId":null}],"files":[]}}`

	t.Run("requires If-Match", func(t *testing.T) {
		s := &stubService{}
		rec := httptest.NewRecorder()
		newTestMux(s, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/assets/"+assetID+"/docs", strings.NewReader(body)))

		assert.Equal(t, http.StatusPreconditionRequired, rec.Code)
		assert.Nil(t, s.replaced)
	})

	t.Run("passes the version along", func(t *testing.T) {
		s := &stubService{}
		req := httptest.NewRequest(http.MethodPut, "/api/assets/"+assetID+"/gallery", strings.NewReader(body))
		req.Header.Set("If-Match", `"4"`)
		rec := httptest.NewRecorder()
		newTestMux(s, nil).ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, s.replaced)
		assert.Equal(t, int64(4), s.replaced.ExpectedVersion)
		assert.Equal(t, foldertree.KindGallery, s.replaced.Kind)
		assert.Equal(t, "user-1", s.replaced.UserID)
		assert.Len(t, s.replaced.Tree.Folders, 1)
		assert.Equal(t, `"5"`, rec.Header().Get("ETag"))
	})

	t.Run("stale version is a conflict", func(t *testing.T) {
		s := &stubService{err: fmt.Errorf("expected version 3, stored 4: %w", domain.ErrVersionConflict)}
		req := httptest.NewRequest(http.MethodPut, "/api/assets/"+assetID+"/docs", strings.NewReader(body))
		req.Header.Set("If-Match", "3")
		rec := httptest.NewRecorder()
		newTestMux(s, nil).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusConflict, rec.Code)
		var problem map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
		assert.Equal(t, "tree", problem["resource_type"])
	})

	t.Run("unknown fields are rejected", func(t *testing.T) {
		s := &stubService{}
		req := httptest.NewRequest(http.MethodPut, "/api/assets/"+assetID+"/docs", strings.NewReader(`{"tree":{"folders":[],"files":[]},"extra":1}`))
		req.Header.Set("If-Match", "1")
		rec := httptest.NewRecorder()
		newTestMux(s, nil).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Nil(t, s.replaced)
	})
}

func TestTreeHandler_ListChildren(t *testing.T) {
	s := &stubService{}
	rec := httptest.NewRecorder()
	newTestMux(s, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/assets/"+assetID+"/docs/children?folder_id=abc", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, s.children)
	assert.Equal(t, "abc", *s.children)

	rec = httptest.NewRecorder()
	newTestMux(s, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/assets/"+assetID+"/docs/children", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, s.children)
}

func TestFolderHandler_CreateFolder(t *testing.T) {
	s := &stubService{}
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/assets/"+assetID+"/docs/folders", strings.NewReader(`{"name":"Invoices","parent_id":null}`))
	newTestMux(s, nil).ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, s.created)
	assert.Equal(t, "Invoices", s.created.Name)
	assert.Nil(t, s.created.ParentID)
	assert.Equal(t, foldertree.KindDocs, s.created.Kind)
}

func TestFolderHandler_UpdateFolder_TriState(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantPresent bool
		wantValue   *string
	}{
		{"absent", `{"name":"X"}`, false, nil},
		{"null moves to root", `{"parent_id":null}`, true, nil},
		{"value", `{"parent_id":"p"}`, true, strPtr("p")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &stubService{}
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPatch, "/api/assets/"+assetID+"/docs/folders/f1", strings.NewReader(tt.body))
			newTestMux(s, nil).ServeHTTP(rec, req)

			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "f1", s.updated.FolderID)
			assert.Equal(t, tt.wantPresent, s.updated.ParentID.Present)
			assert.Equal(t, tt.wantValue, s.updated.ParentID.Value)
		})
	}
}

func TestFolderHandler_DeleteFolder_NotEmpty(t *testing.T) {
	s := &stubService{err: &domain.ConflictError{Message: `folder "A" is not empty`, ResourceType: "folder", ResourceID: "a"}}
	rec := httptest.NewRecorder()
	newTestMux(s, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/assets/"+assetID+"/docs/folders/a", nil))

	assert.Equal(t, http.StatusConflict, rec.Code)
	var problem map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	assert.Equal(t, "a", problem["resource_id"])
}

func TestFileHandler_UploadFile(t *testing.T) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("folder_id", "trips"))
	part, err := mw.CreateFormFile("file", "beach.jpg")
	require.NoError(t, err)
	_, err = part.Write([]byte("jpeg bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	s := &stubService{}
	req := httptest.NewRequest(http.MethodPost, "/api/assets/"+assetID+"/gallery/files", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	newTestMux(s, nil).ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, s.uploaded)
	assert.Equal(t, "beach.jpg", s.uploaded.Name)
	assert.Equal(t, "trips", *s.uploaded.FolderID)
	assert.Equal(t, "jpeg bytes", s.body)
	assert.Equal(t, `"9"`, rec.Header().Get("ETag"))
}

func TestFileHandler_UploadFile_MissingFile(t *testing.T) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("folder_id", "trips"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/assets/"+assetID+"/gallery/files", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	newTestMux(&stubService{}, nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFileHandler_Download(t *testing.T) {
	size := int64(5)
	blobs := &stubBlobs{
		info: &svc.BlobInfo{
			PreviewItem: foldertree.PreviewItem{ID: "b1", Name: "hello.txt", Size: &size, MimeType: "text/plain"},
			AssetID:     assetID,
		},
		data: "hello",
	}

	rec := httptest.NewRecorder()
	newTestMux(&stubService{}, blobs).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/files/b1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hello", rec.Body.String())
	assert.Equal(t, "text/plain", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "hello.txt")

	rec = httptest.NewRecorder()
	newTestMux(&stubService{}, blobs).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/files/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFileHandler_Download_OtherUser(t *testing.T) {
	blobs := &stubBlobs{info: &svc.BlobInfo{PreviewItem: foldertree.PreviewItem{ID: "b1"}, AssetID: assetID}, data: "x"}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	files := NewFileHandler(&stubService{}, blobs, stubAuthorizer{owner: "someone-else"}, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/files/{id}", files.Download)
	req := httputil.WithUserID(httptest.NewRequest(http.MethodGet, "/api/files/b1", nil), "user-1")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestHandleError(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", &domain.ValidationError{Message: "bad"}, http.StatusBadRequest},
		{"wrapped validation", fmt.Errorf("%w: name", domain.ErrValidation), http.StatusBadRequest},
		{"not found", fmt.Errorf("folder x: %w", domain.ErrNotFound), http.StatusNotFound},
		{"unauthorized", domain.ErrUnauthorized, http.StatusUnauthorized},
		{"forbidden", &domain.ForbiddenError{Message: "no"}, http.StatusForbidden},
		{"too large", fmt.Errorf("upload: %w", domain.ErrTooLarge), http.StatusRequestEntityTooLarge},
		{"version conflict", domain.ErrVersionConflict, http.StatusConflict},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handleError(rec, logger, tt.err)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(ctx context.Context) error { return p.err }

func TestHealthCheck(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	rec := httptest.NewRecorder()
	NewHealthHandler(stubPinger{}, logger).HealthCheck(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	NewHealthHandler(stubPinger{err: errors.New("down")}, logger).HealthCheck(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func strPtr(s string) *string { return &s }
