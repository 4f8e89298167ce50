package domain

import "time"

// ComponentImage is one image sourced from a bundle component product.
// Only components with a featured image produce a ComponentImage; components
// without one are filtered out upstream and never reach the pipeline.
type ComponentImage struct {
	ParentProductID       string `json:"parentProductId"`
	ParentProductTitle    string `json:"parentProductTitle"`
	ComponentProductID    string `json:"componentProductId"`
	ComponentProductTitle string `json:"componentProductTitle"`
	ImageURL              string `json:"imageUrl"`
	AltText               string `json:"altText,omitempty"`
}

// ProductImageGroup aggregates all component images for one parent product.
// A group with zero images must never reach the composite builder; such
// products are excluded from the batch by the resolver.
type ProductImageGroup struct {
	ProductID       string           `json:"productId"`
	ProductTitle    string           `json:"productTitle"`
	ComponentImages []ComponentImage `json:"componentImages"`
	ImageURLs       []string         `json:"imageUrls"`
}

// NewProductImageGroup builds a group from component images, deriving
// ImageURLs in the same order.
func NewProductImageGroup(productID, productTitle string, images []ComponentImage) ProductImageGroup {
	urls := make([]string, len(images))
	for i, img := range images {
		urls[i] = img.ImageURL
	}
	return ProductImageGroup{
		ProductID:       productID,
		ProductTitle:    productTitle,
		ComponentImages: images,
		ImageURLs:       urls,
	}
}

// ResolveStats summarizes one resolver run. Informational only.
type ResolveStats struct {
	ProductsRequested int `json:"productsRequested"`
	ProductsFound     int `json:"productsFound"`
	ComponentsFound   int `json:"componentsFound"`
	ImagesFound       int `json:"imagesFound"`
}

// CompositeMetadata describes how a composite image was produced.
type CompositeMetadata struct {
	OriginalCount int    `json:"originalCount"`
	Method        string `json:"method"`
	Backend       string `json:"backend"`
	Grid          string `json:"grid"`
}

// CompositeResult is the output of one composite build.
type CompositeResult struct {
	CombinedImageURL string            `json:"combinedImageUrl"`
	ProcessedAt      time.Time         `json:"processedAt"`
	Metadata         CompositeMetadata `json:"metadata"`
}

// BatchOutcome is the per-product result of an orchestrator run. On an update
// failure after a successful composite build, CombinedImageURL stays populated
// so callers can recover the image manually.
type BatchOutcome struct {
	ProductID        string `json:"productId"`
	ProductTitle     string `json:"productTitle"`
	Success          bool   `json:"success"`
	CombinedImageURL string `json:"combinedImageUrl,omitempty"`
	MediaCount       int    `json:"mediaCount,omitempty"`
	Error            string `json:"error,omitempty"`
}
