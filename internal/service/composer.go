package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sergio-nezhigay/images-creator/internal/domain"
	"github.com/sergio-nezhigay/images-creator/internal/imaging"
	apperrors "github.com/sergio-nezhigay/images-creator/pkg/errors"
)

// defaultUploadConcurrency bounds parallel source image uploads.
const defaultUploadConcurrency = 4

// Builder composes a set of source image URLs into one grid collage through
// the configured imaging backend.
type Builder struct {
	backend     imaging.Backend
	logger      *slog.Logger
	concurrency int
	now         func() time.Time
}

// NewBuilder creates a builder on top of the given imaging backend.
func NewBuilder(backend imaging.Backend, logger *slog.Logger) *Builder {
	return &Builder{
		backend:     backend,
		logger:      logger,
		concurrency: defaultUploadConcurrency,
		now:         time.Now,
	}
}

// Build uploads every source image, computes the grid layout for the count,
// and derives the composite URL. Uploads run in parallel; any single failure
// fails the whole build, there is no partial composite.
func (b *Builder) Build(ctx context.Context, imageURLs []string) (*domain.CompositeResult, error) {
	if len(imageURLs) == 0 {
		return nil, apperrors.InvalidInput("imageUrls must not be empty")
	}
	for _, raw := range imageURLs {
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return nil, apperrors.InvalidInput(fmt.Sprintf("invalid image url %q", raw))
		}
	}

	layout, err := domain.ComputeLayout(len(imageURLs))
	if err != nil {
		return nil, err
	}

	assets := make([]string, len(imageURLs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)
	for i, src := range imageURLs {
		g.Go(func() error {
			ref, err := b.backend.UploadImage(gctx, src)
			if err != nil {
				return fmt.Errorf("upload image %d: %w", i, err)
			}
			assets[i] = ref
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		compositesBuilt.WithLabelValues(b.backend.Name(), resultError).Inc()
		return nil, err
	}

	combinedURL, err := b.backend.ComposeURL(assets, *layout)
	if err != nil {
		compositesBuilt.WithLabelValues(b.backend.Name(), resultError).Inc()
		return nil, err
	}
	compositesBuilt.WithLabelValues(b.backend.Name(), resultOK).Inc()

	b.logger.InfoContext(ctx, "composite image built",
		slog.String("backend", b.backend.Name()),
		slog.Int("image_count", len(imageURLs)),
		slog.String("grid", layout.Grid()),
	)

	return &domain.CompositeResult{
		CombinedImageURL: combinedURL,
		ProcessedAt:      b.now().UTC(),
		Metadata: domain.CompositeMetadata{
			OriginalCount: len(imageURLs),
			Method:        b.backend.MethodFor(*layout),
			Backend:       b.backend.Name(),
			Grid:          layout.Grid(),
		},
	}, nil
}
