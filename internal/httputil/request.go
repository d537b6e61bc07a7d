package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"assetdesk/internal/domain"
)

// maxJSONBody bounds JSON request bodies. A tree at the item limit fits well within it.
const maxJSONBody = 10 << 20

// ParseJSON decodes JSON from the request body into the given destination.
// Unknown fields are rejected so a misspelled key never silently drops data.
func ParseJSON(w http.ResponseWriter, r *http.Request, dest interface{}) error {
	// Limit request body (requires w for proper 413 response)
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dest); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return fmt.Errorf("request body exceeds %d bytes: %w", maxErr.Limit, domain.ErrTooLarge)
		}
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: request body is empty", domain.ErrValidation)
		}
		return fmt.Errorf("%w: invalid JSON: %v", domain.ErrValidation, err)
	}

	return nil
}

// ParseIfMatch reads the tree version a write is based on from If-Match.
// Both quoted (ETag style) and bare numbers are accepted.
func ParseIfMatch(r *http.Request) (int64, bool, error) {
	raw := strings.TrimSpace(r.Header.Get("If-Match"))
	if raw == "" {
		return 0, false, nil
	}
	raw = strings.TrimPrefix(raw, "W/")
	raw = strings.Trim(raw, `"`)

	version, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || version < 0 {
		return 0, true, fmt.Errorf("%w: If-Match must be a tree version", domain.ErrValidation)
	}
	return version, true, nil
}

// SetVersion echoes a tree version as the response ETag
func SetVersion(w http.ResponseWriter, version int64) {
	w.Header().Set("ETag", strconv.Quote(strconv.FormatInt(version, 10)))
}

// QueryID reads an optional id from the query string. Empty means root.
func QueryID(r *http.Request, name string) *string {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return nil
	}
	return &v
}
