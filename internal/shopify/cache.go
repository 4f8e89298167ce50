package shopify

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/sergio-nezhigay/images-creator/pkg/cache"
)

// CachedGateway wraps a Gateway with a read-through cache for bundle
// component queries. Component sets change rarely relative to how often
// merchants re-run image generation, so a short TTL saves most of the
// per-product Admin API round trips. Cache failures fall through to the
// inner gateway and never fail a request. Mutations are not cached.
type CachedGateway struct {
	inner  Gateway
	store  cache.Store
	ttl    time.Duration
	logger *slog.Logger
}

var _ Gateway = (*CachedGateway)(nil)

// NewCachedGateway wraps gateway with a read-through component cache.
func NewCachedGateway(inner Gateway, store cache.Store, ttl time.Duration, logger *slog.Logger) *CachedGateway {
	return &CachedGateway{
		inner:  inner,
		store:  store,
		ttl:    ttl,
		logger: logger,
	}
}

func cacheKey(productID string) string {
	return "bundle-components:" + productID
}

// QueryBundleComponents serves from the cache when possible.
func (g *CachedGateway) QueryBundleComponents(ctx context.Context, productID string) (*BundleProduct, error) {
	key := cacheKey(productID)

	if raw, ok, err := g.store.Get(ctx, key); err != nil {
		g.logger.WarnContext(ctx, "component cache read failed",
			slog.String("product_id", productID),
			slog.String("error", err.Error()),
		)
	} else if ok {
		var product BundleProduct
		if err := json.Unmarshal(raw, &product); err == nil {
			return &product, nil
		}
		g.logger.WarnContext(ctx, "component cache entry corrupt, refetching",
			slog.String("product_id", productID),
		)
	}

	product, err := g.inner.QueryBundleComponents(ctx, productID)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(product); err == nil {
		if err := g.store.Set(ctx, key, raw, g.ttl); err != nil {
			g.logger.WarnContext(ctx, "component cache write failed",
				slog.String("product_id", productID),
				slog.String("error", err.Error()),
			)
		}
	}

	return product, nil
}

// SetProductImage passes through to the inner gateway.
func (g *CachedGateway) SetProductImage(ctx context.Context, productID, imageURL, altText string) (int, error) {
	return g.inner.SetProductImage(ctx, productID, imageURL, altText)
}
