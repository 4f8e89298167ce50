package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"

	"golang.org/x/sync/errgroup"

	"github.com/sergio-nezhigay/images-creator/internal/domain"
	"github.com/sergio-nezhigay/images-creator/internal/shopify"
	apperrors "github.com/sergio-nezhigay/images-creator/pkg/errors"
)

// productGIDPattern matches the Shopify product GID form. Anything else is
// rejected before any external call is made.
var productGIDPattern = regexp.MustCompile(`^gid://shopify/Product/[0-9]+$`)

// defaultResolveConcurrency bounds parallel bundle-component queries.
const defaultResolveConcurrency = 4

// Resolver turns a list of parent product IDs into per-product groups of
// component images. Per-product lookup failures reduce the output set and
// never fail the batch.
type Resolver struct {
	gateway     shopify.Gateway
	logger      *slog.Logger
	concurrency int
}

// NewResolver creates a resolver backed by the given commerce gateway.
func NewResolver(gateway shopify.Gateway, logger *slog.Logger) *Resolver {
	return &Resolver{
		gateway:     gateway,
		logger:      logger,
		concurrency: defaultResolveConcurrency,
	}
}

// Resolve queries bundle components for every product ID and groups the
// component featured images per parent. Queries run in parallel; results are
// reassembled in input order. Components without a featured image are
// dropped, as are parents left with zero images.
func (r *Resolver) Resolve(ctx context.Context, productIDs []string) ([]domain.ProductImageGroup, domain.ResolveStats, error) {
	stats := domain.ResolveStats{ProductsRequested: len(productIDs)}

	if len(productIDs) == 0 {
		return nil, stats, apperrors.InvalidInput("productIds must not be empty")
	}
	for _, id := range productIDs {
		if !productGIDPattern.MatchString(id) {
			return nil, stats, apperrors.InvalidInput(fmt.Sprintf("invalid product id %q", id))
		}
	}

	products := make([]*shopify.BundleProduct, len(productIDs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for i, id := range productIDs {
		g.Go(func() error {
			product, err := r.gateway.QueryBundleComponents(gctx, id)
			if err != nil {
				if errors.Is(err, apperrors.ErrNotFound) {
					productsResolved.WithLabelValues(resultNotFound).Inc()
				} else {
					productsResolved.WithLabelValues(resultError).Inc()
				}
				r.logger.WarnContext(gctx, "skipping product after lookup failure",
					slog.String("product_id", id),
					slog.String("error", err.Error()),
				)
				return nil
			}
			productsResolved.WithLabelValues(resultOK).Inc()
			products[i] = product
			return nil
		})
	}
	// Per-product errors are swallowed inside the goroutines; Wait never
	// returns one.
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, stats, fmt.Errorf("resolve bundle components: %w", err)
	}

	groups := make([]domain.ProductImageGroup, 0, len(productIDs))
	for _, product := range products {
		if product == nil {
			continue
		}
		stats.ProductsFound++
		stats.ComponentsFound += len(product.Components)

		images := make([]domain.ComponentImage, 0, len(product.Components))
		for _, comp := range product.Components {
			if comp.ImageURL == "" {
				continue
			}
			images = append(images, domain.ComponentImage{
				ParentProductID:       product.ID,
				ParentProductTitle:    product.Title,
				ComponentProductID:    comp.ID,
				ComponentProductTitle: comp.Title,
				ImageURL:              comp.ImageURL,
				AltText:               comp.ImageAlt,
			})
		}
		stats.ImagesFound += len(images)

		if len(images) == 0 {
			r.logger.InfoContext(ctx, "product has no component images, excluded from batch",
				slog.String("product_id", product.ID),
			)
			continue
		}
		groups = append(groups, domain.NewProductImageGroup(product.ID, product.Title, images))
	}

	r.logger.InfoContext(ctx, "resolved bundle components",
		slog.Int("products_requested", stats.ProductsRequested),
		slog.Int("products_found", stats.ProductsFound),
		slog.Int("components_found", stats.ComponentsFound),
		slog.Int("images_found", stats.ImagesFound),
	)

	return groups, stats, nil
}
