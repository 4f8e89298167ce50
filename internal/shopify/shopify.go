package shopify

import "context"

// BundleComponent is one child product of a bundle. ImageURL is empty when
// the component has no featured image; filtering those out is the resolver's
// job, not the gateway's.
type BundleComponent struct {
	ID       string
	Title    string
	ImageURL string
	ImageAlt string
}

// BundleProduct is a parent product together with its bundle components.
type BundleProduct struct {
	ID         string
	Title      string
	Components []BundleComponent
}

// Gateway is the narrow commerce interface the pipeline consumes.
type Gateway interface {
	// QueryBundleComponents fetches a product's title and bundle components.
	// Returns an error wrapping errors.ErrNotFound when the product does not exist.
	QueryBundleComponents(ctx context.Context, productID string) (*BundleProduct, error)

	// SetProductImage attaches the image at imageURL to the product as new
	// media and returns the product's resulting media count. Semantic
	// rejections from the backend surface as errors.ErrUserRejected.
	SetProductImage(ctx context.Context, productID, imageURL, altText string) (int, error)
}
