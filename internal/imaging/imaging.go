// Package imaging provides pluggable backends that turn a set of product
// image URLs into a single composite collage image.
package imaging

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sergio-nezhigay/images-creator/internal/domain"
	apperrors "github.com/sergio-nezhigay/images-creator/pkg/errors"
	"github.com/sergio-nezhigay/images-creator/pkg/httpclient"
)

// Backend names accepted by the IMAGE_BACKEND setting.
const (
	BackendCloudinary = "cloudinary"
	BackendDemo       = "demo"
)

// Backend composes remote images into a single grid collage. Implementations
// upload each source image first and then derive a composite URL from the
// uploaded asset references and the grid layout.
type Backend interface {
	// Name reports the backend identifier, e.g. "cloudinary".
	Name() string

	// UploadImage ingests a remote image and returns an opaque asset
	// reference usable in ComposeURL.
	UploadImage(ctx context.Context, sourceURL string) (string, error)

	// ComposeURL builds the URL of the composite image from previously
	// uploaded asset references arranged according to the layout. The
	// number of assets must match layout positions.
	ComposeURL(assets []string, layout domain.GridLayout) (string, error)

	// MethodFor reports the method label recorded in composite metadata
	// for the given layout.
	MethodFor(layout domain.GridLayout) string
}

// Config selects and parameterizes a backend.
type Config struct {
	Backend string

	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string
	CloudinaryFolder    string
}

// New returns the backend named by cfg.Backend.
func New(cfg Config, client *httpclient.CircuitBreakerClient, logger *slog.Logger) (Backend, error) {
	switch cfg.Backend {
	case BackendCloudinary:
		return NewCloudinary(CloudinaryConfig{
			CloudName: cfg.CloudinaryCloudName,
			APIKey:    cfg.CloudinaryAPIKey,
			APISecret: cfg.CloudinaryAPISecret,
			Folder:    cfg.CloudinaryFolder,
		}, client, logger)
	case BackendDemo:
		return NewDemo(), nil
	case "":
		return nil, apperrors.Configuration("IMAGE_BACKEND")
	default:
		appErr := apperrors.Configuration("IMAGE_BACKEND")
		appErr.Message = fmt.Sprintf("unknown image backend %q", cfg.Backend)
		return nil, appErr
	}
}
