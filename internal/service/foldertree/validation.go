package foldertree

import (
	"fmt"
	"regexp"

	"assetdesk/internal/config"
	"assetdesk/internal/domain"
	models "assetdesk/internal/domain/models/foldertree"
	svc "assetdesk/internal/domain/services"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

var noSlashes = validation.Match(regexp.MustCompile(`^[^/]+$`)).Error("name cannot contain slashes")

// validateRef validates the asset/kind a request addresses
func validateRef(ref svc.TreeRef) error {
	err := validation.ValidateStruct(&ref,
		validation.Field(&ref.UserID, validation.Required),
		validation.Field(&ref.AssetID, validation.Required, is.UUID),
		validation.Field(&ref.Kind, validation.Required, validation.In(models.KindDocs, models.KindGallery)),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	return nil
}

// validateCreateFolderRequest validates a folder creation request.
// An empty name is allowed and becomes the default folder name.
func validateCreateFolderRequest(req *svc.CreateFolderRequest) error {
	err := validation.ValidateStruct(req,
		validation.Field(&req.Name, validation.Length(0, config.MaxItemNameLength), noSlashes),
		validation.Field(&req.ParentID, validation.NilOrNotEmpty),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	return nil
}

// validateUpdateFolderRequest validates a folder rename/move request
func validateUpdateFolderRequest(req *svc.UpdateFolderRequest) error {
	if req.Name == nil && !req.ParentID.Present {
		return fmt.Errorf("%w: at least one field must be provided", domain.ErrValidation)
	}

	rules := []*validation.FieldRules{
		validation.Field(&req.FolderID, validation.Required),
	}
	if req.Name != nil {
		rules = append(rules,
			validation.Field(&req.Name,
				validation.Required,
				validation.Length(1, config.MaxItemNameLength),
				noSlashes,
			),
		)
	}

	if err := validation.ValidateStruct(req, rules...); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	return nil
}

// validateUpdateFileRequest validates a file rename/move request
func validateUpdateFileRequest(req *svc.UpdateFileRequest) error {
	if req.Name == nil && !req.FolderID.Present {
		return fmt.Errorf("%w: at least one field must be provided", domain.ErrValidation)
	}

	rules := []*validation.FieldRules{
		validation.Field(&req.FileID, validation.Required),
	}
	if req.Name != nil {
		rules = append(rules,
			validation.Field(&req.Name,
				validation.Required,
				validation.Length(1, config.MaxItemNameLength),
				noSlashes,
			),
		)
	}

	if err := validation.ValidateStruct(req, rules...); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	return nil
}

// validateUploadRequest validates an upload's name and target
func validateUploadRequest(req *svc.UploadFileRequest) error {
	err := validation.ValidateStruct(req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, config.MaxItemNameLength)),
		validation.Field(&req.FolderID, validation.NilOrNotEmpty),
		validation.Field(&req.Body, validation.NotNil),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	return nil
}
