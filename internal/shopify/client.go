package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/sergio-nezhigay/images-creator/pkg/errors"
	"github.com/sergio-nezhigay/images-creator/pkg/httpclient"
)

const (
	accessTokenHeader = "X-Shopify-Access-Token"

	bundleComponentsQuery = `query BundleComponents($id: ID!) {
  product(id: $id) {
    id
    title
    bundleComponents(first: 50) {
      nodes {
        componentProduct {
          id
          title
          featuredImage {
            url
            altText
          }
        }
      }
    }
  }
}`

	createMediaMutation = `mutation CreateProductMedia($productId: ID!, $media: [CreateMediaInput!]!) {
  productCreateMedia(productId: $productId, media: $media) {
    media {
      id
    }
    mediaUserErrors {
      field
      message
    }
  }
}`

	mediaCountQuery = `query ProductMediaCount($id: ID!) {
  product(id: $id) {
    mediaCount {
      count
    }
  }
}`

	shopQuery = `query ShopName {
  shop {
    name
  }
}`
)

// Config holds Admin GraphQL API connection settings.
type Config struct {
	// ShopDomain is the myshopify domain, e.g. "example.myshopify.com".
	ShopDomain string

	// AccessToken is the Admin API access token.
	AccessToken string

	// APIVersion is the Admin API version, e.g. "2024-10".
	APIVersion string

	// Endpoint overrides the derived GraphQL endpoint. Used in tests.
	Endpoint string

	// Timeout bounds every GraphQL call.
	Timeout time.Duration
}

// Client talks to the Shopify Admin GraphQL API.
type Client struct {
	http     *httpclient.CircuitBreakerClient
	endpoint string
	token    string
	timeout  time.Duration
	logger   *slog.Logger
}

var _ Gateway = (*Client)(nil)

// NewClient creates an Admin GraphQL client. Missing credentials are a
// configuration error surfaced before any request is made.
func NewClient(cfg Config, httpClient *httpclient.CircuitBreakerClient, logger *slog.Logger) (*Client, error) {
	if cfg.AccessToken == "" {
		return nil, apperrors.Configuration("SHOPIFY_ACCESS_TOKEN")
	}

	endpoint := cfg.Endpoint
	if endpoint == "" {
		if cfg.ShopDomain == "" {
			return nil, apperrors.Configuration("SHOPIFY_SHOP_DOMAIN")
		}
		endpoint = fmt.Sprintf("https://%s/admin/api/%s/graphql.json", cfg.ShopDomain, cfg.APIVersion)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &Client{
		http:     httpClient,
		endpoint: endpoint,
		token:    cfg.AccessToken,
		timeout:  timeout,
		logger:   logger,
	}, nil
}

// execute posts one GraphQL operation and decodes the data payload into out.
func (c *Client) execute(ctx context.Context, query string, variables map[string]any, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(graphQLRequest{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("marshal graphql request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create graphql request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(accessTokenHeader, c.token)

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return apperrors.ExternalService("shopify", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return httpclient.ReadErrorResponse(resp, "shopify")
	}

	var envelope graphQLResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return apperrors.ExternalService("shopify", fmt.Errorf("decode response: %w", err))
	}

	if len(envelope.Errors) > 0 {
		msgs := make([]string, len(envelope.Errors))
		for i, e := range envelope.Errors {
			msgs[i] = e.Message
		}
		return apperrors.ExternalService("shopify", fmt.Errorf("graphql errors: %s", strings.Join(msgs, "; ")))
	}

	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return apperrors.ExternalService("shopify", fmt.Errorf("decode data: %w", err))
	}

	return nil
}

// QueryBundleComponents fetches a product's title and bundle components.
func (c *Client) QueryBundleComponents(ctx context.Context, productID string) (*BundleProduct, error) {
	var data bundleComponentsData
	if err := c.execute(ctx, bundleComponentsQuery, map[string]any{"id": productID}, &data); err != nil {
		return nil, err
	}

	if data.Product == nil {
		return nil, apperrors.NotFound("product", productID)
	}

	product := &BundleProduct{
		ID:    data.Product.ID,
		Title: data.Product.Title,
	}

	for _, node := range data.Product.BundleComponents.Nodes {
		comp := BundleComponent{
			ID:    node.ComponentProduct.ID,
			Title: node.ComponentProduct.Title,
		}
		if img := node.ComponentProduct.FeaturedImage; img != nil {
			comp.ImageURL = img.URL
			comp.ImageAlt = img.AltText
		}
		product.Components = append(product.Components, comp)
	}

	return product, nil
}

// SetProductImage attaches the image at imageURL to the product as new media
// and returns the resulting media count.
func (c *Client) SetProductImage(ctx context.Context, productID, imageURL, altText string) (int, error) {
	variables := map[string]any{
		"productId": productID,
		"media": []map[string]any{{
			"originalSource":   imageURL,
			"alt":              altText,
			"mediaContentType": "IMAGE",
		}},
	}

	var data createMediaData
	if err := c.execute(ctx, createMediaMutation, variables, &data); err != nil {
		return 0, err
	}

	if errs := data.ProductCreateMedia.MediaUserErrors; len(errs) > 0 {
		msgs := make([]string, len(errs))
		for i, e := range errs {
			msgs[i] = e.Message
		}
		return 0, apperrors.UserRejected(strings.Join(msgs, "; "))
	}

	created := len(data.ProductCreateMedia.Media)
	c.logger.InfoContext(ctx, "product media created",
		slog.String("product_id", productID),
		slog.Int("media_created", created),
	)

	// The mutation payload does not expose the product's total media count,
	// so read it back with a follow-up query. A failure here is not worth
	// failing the whole update over.
	var countData mediaCountData
	if err := c.execute(ctx, mediaCountQuery, map[string]any{"id": productID}, &countData); err != nil {
		c.logger.WarnContext(ctx, "media count readback failed",
			slog.String("product_id", productID),
			slog.String("error", err.Error()),
		)
		return created, nil
	}
	if countData.Product == nil {
		return created, nil
	}

	return countData.Product.MediaCount.Count, nil
}

// Ping verifies API connectivity and credentials, for readiness checks.
func (c *Client) Ping(ctx context.Context) error {
	var data shopData
	return c.execute(ctx, shopQuery, nil, &data)
}
