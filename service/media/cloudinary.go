package media

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"storefront.GO/config"
)

// ErrNotConfigured is returned when media host credentials are absent.
var ErrNotConfigured = errors.New("media host is not configured")

// Host stores an uploaded file and describes where it went.
type Host interface {
	Upload(ctx context.Context, file io.Reader, filename string) (*uploader.UploadResult, error)
}

type CloudinaryHost struct {
	cld    *cloudinary.Cloudinary
	folder string
}

// NewCloudinaryHost builds a host from configuration. Credentials never live in source.
func NewCloudinaryHost(cfg config.MediaConfig) (*CloudinaryHost, error) {
	if cfg.CloudName == "" || cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, ErrNotConfigured
	}
	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, err
	}
	return &CloudinaryHost{cld: cld, folder: cfg.Folder}, nil
}

// Upload sends the file with resource_type=auto and returns the host's result as is.
func (h *CloudinaryHost) Upload(ctx context.Context, file io.Reader, filename string) (*uploader.UploadResult, error) {
	unique := true
	overwrite := false
	params := uploader.UploadParams{
		Folder:         h.folder,
		ResourceType:   "auto",
		UniqueFilename: &unique,
		Overwrite:      &overwrite,
	}
	if filename != "" {
		params.FilenameOverride = filename
	}

	result, err := h.cld.Upload.Upload(ctx, file, params)
	if err != nil {
		return nil, fmt.Errorf("failed to upload image: %w", err)
	}
	if result.Error.Message != "" {
		return nil, fmt.Errorf("failed to upload image: %s", result.Error.Message)
	}
	return result, nil
}
