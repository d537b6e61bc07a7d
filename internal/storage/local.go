package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"assetdesk/internal/domain"
	"assetdesk/internal/domain/models/foldertree"
	"assetdesk/internal/domain/services"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"
)

var blobsBucket = []byte("blobs")

// LocalStore keeps upload content on disk under <dir>/<kind>/<id> and the
// descriptors in a bbolt index at <dir>/index.db.
type LocalStore struct {
	dir     string
	baseURL string
	maxSize int64
	db      *bolt.DB
	logger  *slog.Logger
}

// NewLocalStore opens (or creates) a store rooted at dir. URLs handed out are
// baseURL + "/api/files/{id}".
func NewLocalStore(dir, baseURL string, maxSize int64, logger *slog.Logger) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}

	db, err := bolt.Open(filepath.Join(dir, "index.db"), 0600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open blob index: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(blobsBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init blob index: %w", err)
	}

	return &LocalStore{
		dir:     dir,
		baseURL: strings.TrimRight(baseURL, "/"),
		maxSize: maxSize,
		db:      db,
		logger:  logger,
	}, nil
}

// Close releases the index.
func (s *LocalStore) Close() error {
	return s.db.Close()
}

// Put streams the body to disk and records its descriptor.
func (s *LocalStore) Put(ctx context.Context, req *services.PutBlobRequest) (*services.BlobInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	kindDir := filepath.Join(s.dir, string(req.Kind))
	if err := os.MkdirAll(kindDir, 0755); err != nil {
		return nil, fmt.Errorf("create kind directory: %w", err)
	}

	tmp, err := os.CreateTemp(kindDir, ".upload-*")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) // no-op once renamed

	body := bufio.NewReader(req.Body)
	contentType := req.ContentType
	if contentType == "" || contentType == "application/octet-stream" {
		head, _ := body.Peek(512)
		contentType = http.DetectContentType(head)
	}

	size, err := io.Copy(tmp, io.LimitReader(body, s.maxSize+1))
	closeErr := tmp.Close()
	if err != nil {
		return nil, fmt.Errorf("write upload: %w", err)
	}
	if closeErr != nil {
		return nil, fmt.Errorf("close upload: %w", closeErr)
	}
	if size > s.maxSize {
		return nil, fmt.Errorf("upload exceeds %d bytes: %w", s.maxSize, domain.ErrTooLarge)
	}

	id := uuid.NewString()
	info := &services.BlobInfo{
		PreviewItem: foldertree.PreviewItem{
			ID:        id,
			Name:      req.Name,
			URL:       s.baseURL + "/api/files/" + id,
			Size:      &size,
			MimeType:  contentType,
			CreatedAt: time.Now().UTC().Format(time.RFC3339),
		},
		AssetID: req.AssetID,
		Kind:    req.Kind,
	}

	finalPath := filepath.Join(kindDir, id)
	if err := os.Rename(tmp.Name(), finalPath); err != nil {
		return nil, fmt.Errorf("store upload: %w", err)
	}

	if err := s.putInfo(info); err != nil {
		os.Remove(finalPath)
		return nil, err
	}

	s.logger.Debug("blob stored", "id", id, "kind", req.Kind, "size", size, "mime_type", contentType)
	return info, nil
}

// Open returns the descriptor and content of a blob.
func (s *LocalStore) Open(ctx context.Context, id string) (*services.BlobInfo, io.ReadCloser, error) {
	info, err := s.getInfo(id)
	if err != nil {
		return nil, nil, err
	}

	f, err := os.Open(s.blobPath(info))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil, fmt.Errorf("blob %s content: %w", id, domain.ErrNotFound)
		}
		return nil, nil, fmt.Errorf("open blob: %w", err)
	}
	return info, f, nil
}

// Delete removes content and descriptor. Unknown ids are ignored.
func (s *LocalStore) Delete(ctx context.Context, id string) error {
	info, err := s.getInfo(id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return err
	}

	if err := os.Remove(s.blobPath(info)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove blob: %w", err)
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(blobsBucket).Delete([]byte(id))
	})
}

func (s *LocalStore) blobPath(info *services.BlobInfo) string {
	return filepath.Join(s.dir, string(info.Kind), info.ID)
}

func (s *LocalStore) putInfo(info *services.BlobInfo) error {
	data, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("encode blob info: %w", err)
	}
	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(blobsBucket).Put([]byte(info.ID), data)
	})
	if err != nil {
		return fmt.Errorf("index blob: %w", err)
	}
	return nil
}

func (s *LocalStore) getInfo(id string) (*services.BlobInfo, error) {
	var info services.BlobInfo
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(blobsBucket).Get([]byte(id))
		if data == nil {
			return fmt.Errorf("blob %s: %w", id, domain.ErrNotFound)
		}
		return json.Unmarshal(data, &info)
	})
	if err != nil {
		return nil, err
	}
	return &info, nil
}
