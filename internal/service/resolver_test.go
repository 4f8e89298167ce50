package service

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sergio-nezhigay/images-creator/internal/shopify"
	apperrors "github.com/sergio-nezhigay/images-creator/pkg/errors"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type mockGateway struct {
	mock.Mock
}

var _ shopify.Gateway = (*mockGateway)(nil)

func (m *mockGateway) QueryBundleComponents(ctx context.Context, productID string) (*shopify.BundleProduct, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shopify.BundleProduct), args.Error(1)
}

func (m *mockGateway) SetProductImage(ctx context.Context, productID, imageURL, altText string) (int, error) {
	args := m.Called(ctx, productID, imageURL, altText)
	return args.Int(0), args.Error(1)
}

func TestResolver_Resolve_EmptyInput(t *testing.T) {
	gw := new(mockGateway)
	r := NewResolver(gw, testLogger())

	_, _, err := r.Resolve(context.Background(), nil)
	require.ErrorIs(t, err, apperrors.ErrInvalidInput)

	// No external call may happen on validation failure.
	gw.AssertNotCalled(t, "QueryBundleComponents")
}

func TestResolver_Resolve_MalformedID(t *testing.T) {
	tests := []string{
		"badid",
		"12345",
		"gid://shopify/Collection/123",
		"gid://shopify/Product/abc",
		"gid://shopify/Product/",
	}

	for _, id := range tests {
		t.Run(id, func(t *testing.T) {
			gw := new(mockGateway)
			r := NewResolver(gw, testLogger())

			_, _, err := r.Resolve(context.Background(), []string{id})
			require.ErrorIs(t, err, apperrors.ErrInvalidInput)
			gw.AssertNotCalled(t, "QueryBundleComponents")
		})
	}
}

func TestResolver_Resolve_NotFoundSwallowed(t *testing.T) {
	gw := new(mockGateway)
	gw.On("QueryBundleComponents", mock.Anything, "gid://shopify/Product/1").
		Return(nil, apperrors.NotFound("product", "gid://shopify/Product/1"))

	r := NewResolver(gw, testLogger())
	groups, stats, err := r.Resolve(context.Background(), []string{"gid://shopify/Product/1"})

	require.NoError(t, err)
	assert.Empty(t, groups)
	assert.Equal(t, 1, stats.ProductsRequested)
	assert.Equal(t, 0, stats.ProductsFound)
}

func TestResolver_Resolve_FiltersImagelessComponents(t *testing.T) {
	gw := new(mockGateway)
	gw.On("QueryBundleComponents", mock.Anything, "gid://shopify/Product/1").Return(&shopify.BundleProduct{
		ID:    "gid://shopify/Product/1",
		Title: "Starter Kit",
		Components: []shopify.BundleComponent{
			{ID: "gid://shopify/Product/10", Title: "Soap", ImageURL: "https://cdn.shopify.com/soap.jpg", ImageAlt: "Soap bar"},
			{ID: "gid://shopify/Product/11", Title: "Towel", ImageURL: ""},
			{ID: "gid://shopify/Product/12", Title: "Brush", ImageURL: "https://cdn.shopify.com/brush.jpg"},
		},
	}, nil)

	r := NewResolver(gw, testLogger())
	groups, stats, err := r.Resolve(context.Background(), []string{"gid://shopify/Product/1"})

	require.NoError(t, err)
	require.Len(t, groups, 1)

	group := groups[0]
	assert.Equal(t, "gid://shopify/Product/1", group.ProductID)
	assert.Equal(t, "Starter Kit", group.ProductTitle)
	require.Len(t, group.ComponentImages, 2)
	assert.Equal(t, "gid://shopify/Product/10", group.ComponentImages[0].ComponentProductID)
	assert.Equal(t, "gid://shopify/Product/12", group.ComponentImages[1].ComponentProductID)
	assert.Equal(t, []string{"https://cdn.shopify.com/soap.jpg", "https://cdn.shopify.com/brush.jpg"}, group.ImageURLs)

	assert.Equal(t, 1, stats.ProductsFound)
	assert.Equal(t, 3, stats.ComponentsFound)
	assert.Equal(t, 2, stats.ImagesFound)
}

func TestResolver_Resolve_DropsGroupWithNoImages(t *testing.T) {
	gw := new(mockGateway)
	gw.On("QueryBundleComponents", mock.Anything, "gid://shopify/Product/1").Return(&shopify.BundleProduct{
		ID:    "gid://shopify/Product/1",
		Title: "Bare Kit",
		Components: []shopify.BundleComponent{
			{ID: "gid://shopify/Product/10", Title: "Towel"},
		},
	}, nil)

	r := NewResolver(gw, testLogger())
	groups, stats, err := r.Resolve(context.Background(), []string{"gid://shopify/Product/1"})

	require.NoError(t, err)
	assert.Empty(t, groups)
	assert.Equal(t, 1, stats.ProductsFound)
	assert.Equal(t, 1, stats.ComponentsFound)
	assert.Equal(t, 0, stats.ImagesFound)
}

func TestResolver_Resolve_PreservesInputOrder(t *testing.T) {
	ids := []string{
		"gid://shopify/Product/3",
		"gid://shopify/Product/1",
		"gid://shopify/Product/2",
	}

	gw := new(mockGateway)
	for i, id := range ids {
		gw.On("QueryBundleComponents", mock.Anything, id).Return(&shopify.BundleProduct{
			ID:    id,
			Title: string(rune('A' + i)),
			Components: []shopify.BundleComponent{
				{ID: id + "-c", Title: "c", ImageURL: "https://cdn.shopify.com/c.jpg"},
			},
		}, nil)
	}

	r := NewResolver(gw, testLogger())
	groups, _, err := r.Resolve(context.Background(), ids)

	require.NoError(t, err)
	require.Len(t, groups, 3)
	for i, group := range groups {
		assert.Equal(t, ids[i], group.ProductID)
	}
}

func TestResolver_Resolve_FailureIsolatedPerProduct(t *testing.T) {
	gw := new(mockGateway)
	gw.On("QueryBundleComponents", mock.Anything, "gid://shopify/Product/1").
		Return(nil, apperrors.ExternalService("shopify", assert.AnError))
	gw.On("QueryBundleComponents", mock.Anything, "gid://shopify/Product/2").Return(&shopify.BundleProduct{
		ID:    "gid://shopify/Product/2",
		Title: "Good Kit",
		Components: []shopify.BundleComponent{
			{ID: "gid://shopify/Product/20", Title: "Soap", ImageURL: "https://cdn.shopify.com/soap.jpg"},
		},
	}, nil)

	r := NewResolver(gw, testLogger())
	groups, stats, err := r.Resolve(context.Background(), []string{
		"gid://shopify/Product/1",
		"gid://shopify/Product/2",
	})

	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "gid://shopify/Product/2", groups[0].ProductID)
	assert.Equal(t, 2, stats.ProductsRequested)
	assert.Equal(t, 1, stats.ProductsFound)
}
