package imaging

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/sergio-nezhigay/images-creator/internal/domain"
	apperrors "github.com/sergio-nezhigay/images-creator/pkg/errors"
)

// Demo is a backend that makes no external calls. It derives stable
// placeholder URLs from a hash of the inputs, so pipelines can run end to
// end without image service credentials and tests stay deterministic.
type Demo struct{}

func NewDemo() *Demo { return &Demo{} }

func (d *Demo) Name() string { return BackendDemo }

// UploadImage hashes the source URL into a synthetic asset reference.
func (d *Demo) UploadImage(_ context.Context, sourceURL string) (string, error) {
	if sourceURL == "" {
		return "", apperrors.InvalidInput("source url is empty")
	}
	return fmt.Sprintf("demo-%s", fnvHex(sourceURL)), nil
}

// ComposeURL derives a placeholder collage URL from the asset references
// and the grid shape. Equal inputs always produce the same URL.
func (d *Demo) ComposeURL(assets []string, layout domain.GridLayout) (string, error) {
	if len(assets) == 0 {
		return "", apperrors.InvalidInput("no assets to compose")
	}
	if len(assets) != len(layout.Positions) {
		return "", apperrors.InvalidInput(fmt.Sprintf(
			"asset count %d does not match layout positions %d", len(assets), len(layout.Positions)))
	}

	return fmt.Sprintf("https://demo.images.local/collage/%s-%s.png",
		fnvHex(strings.Join(assets, "|")), layout.Grid()), nil
}

func (d *Demo) MethodFor(domain.GridLayout) string { return "demo-collage" }

func fnvHex(s string) string {
	h := fnv.New64a()
	h.Write([]byte(s))
	return fmt.Sprintf("%016x", h.Sum64())
}
