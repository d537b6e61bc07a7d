package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"assetdesk/internal/domain"
	"assetdesk/internal/domain/models/foldertree"
	svc "assetdesk/internal/domain/services"
	"assetdesk/internal/httputil"
)

// handleError converts domain errors to HTTP responses
func handleError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var conflictErr *domain.ConflictError

	switch {
	case errors.Is(err, domain.ErrValidation):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		httputil.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		httputil.RespondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		httputil.RespondError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrTooLarge):
		httputil.RespondError(w, http.StatusRequestEntityTooLarge, err.Error())
	case errors.As(err, &conflictErr):
		extras := map[string]interface{}{"resource_type": conflictErr.ResourceType}
		if conflictErr.ResourceID != "" {
			extras["resource_id"] = conflictErr.ResourceID
		}
		httputil.RespondErrorWithExtras(w, http.StatusConflict, err.Error(), extras)
	default:
		logger.Error("request failed", "error", err)
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}

// treeRef reads the addressed tree from the path and the user from the context
func treeRef(r *http.Request) (svc.TreeRef, error) {
	kind, err := foldertree.ParseKind(r.PathValue("kind"))
	if err != nil {
		return svc.TreeRef{}, err
	}
	return svc.TreeRef{
		UserID:  httputil.GetUserID(r),
		AssetID: r.PathValue("id"),
		Kind:    kind,
	}, nil
}
