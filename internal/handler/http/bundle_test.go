package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/sergio-nezhigay/images-creator/pkg/errors"
	"github.com/sergio-nezhigay/images-creator/pkg/health"
	"github.com/sergio-nezhigay/images-creator/pkg/middleware"

	"github.com/sergio-nezhigay/images-creator/internal/domain"
	"github.com/sergio-nezhigay/images-creator/internal/imaging"
	"github.com/sergio-nezhigay/images-creator/internal/service"
	"github.com/sergio-nezhigay/images-creator/internal/shopify"
)

var _ shopify.Gateway = (*mockGateway)(nil)

type mockGateway struct {
	mock.Mock
}

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

func testRouter(gw shopify.Gateway) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	resolver := service.NewResolver(gw, logger)
	builder := service.NewBuilder(imaging.NewDemo(), logger)
	orchestrator := service.NewOrchestrator(resolver, builder, gw, nil, logger)
	healthHandler := health.NewHandler()

	return NewRouter(resolver, builder, orchestrator, healthHandler, middleware.DefaultCORSConfig(), logger)
}

func postJSON(t *testing.T, router http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func sampleProduct() *shopify.BundleProduct {
	return &shopify.BundleProduct{
		ID:    "gid://shopify/Product/1",
		Title: "Starter Kit",
		Components: []shopify.BundleComponent{
			{ID: "gid://shopify/Product/10", Title: "Soap", ImageURL: "https://cdn.shopify.com/soap.jpg"},
			{ID: "gid://shopify/Product/11", Title: "Towel"},
			{ID: "gid://shopify/Product/12", Title: "Brush", ImageURL: "https://cdn.shopify.com/brush.jpg"},
		},
	}
}

func TestFetchBundleImages(t *testing.T) {
	gw := new(mockGateway)
	gw.On("QueryBundleComponents", mock.Anything, "gid://shopify/Product/1").Return(sampleProduct(), nil)

	rec := postJSON(t, testRouter(gw), "/api/bundles/images", map[string]any{
		"productIds": []string{"gid://shopify/Product/1"},
	})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp struct {
		Products []domain.ProductImageGroup `json:"products"`
		Metadata domain.ResolveStats        `json:"metadata"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Products, 1)
	assert.Len(t, resp.Products[0].ComponentImages, 2)
	assert.Equal(t, 1, resp.Metadata.ProductsFound)
	assert.Equal(t, 3, resp.Metadata.ComponentsFound)
	assert.Equal(t, 2, resp.Metadata.ImagesFound)
}

func TestFetchBundleImages_EmptyBody(t *testing.T) {
	gw := new(mockGateway)
	rec := postJSON(t, testRouter(gw), "/api/bundles/images", map[string]any{})

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body["error"])
	gw.AssertNotCalled(t, "QueryBundleComponents")
}

func TestFetchBundleImages_MalformedID(t *testing.T) {
	gw := new(mockGateway)
	rec := postJSON(t, testRouter(gw), "/api/bundles/images", map[string]any{
		"productIds": []string{"not-a-gid"},
	})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	gw.AssertNotCalled(t, "QueryBundleComponents")
}

func TestCombineImages(t *testing.T) {
	rec := postJSON(t, testRouter(new(mockGateway)), "/api/images/combine", map[string]any{
		"imageUrls": []string{
			"https://cdn.shopify.com/a.jpg",
			"https://cdn.shopify.com/b.jpg",
			"https://cdn.shopify.com/c.jpg",
		},
	})

	require.Equal(t, http.StatusOK, rec.Code)

	var result domain.CompositeResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.NotEmpty(t, result.CombinedImageURL)
	assert.Equal(t, 3, result.Metadata.OriginalCount)
	assert.Equal(t, "demo-collage", result.Metadata.Method)
	assert.Equal(t, "2x2", result.Metadata.Grid)
}

func TestCombineImages_InvalidURL(t *testing.T) {
	rec := postJSON(t, testRouter(new(mockGateway)), "/api/images/combine", map[string]any{
		"imageUrls": []string{"not a url"},
	})

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body["error"])
}

func TestUpdateProductImage(t *testing.T) {
	gw := new(mockGateway)
	gw.On("SetProductImage", mock.Anything, "gid://shopify/Product/1",
		"https://img.example.com/composite.jpg", "Starter Kit Bundle Components").Return(5, nil)

	rec := postJSON(t, testRouter(gw), "/api/products/image", map[string]any{
		"productId": "gid://shopify/Product/1",
		"imageUrl":  "https://img.example.com/composite.jpg",
		"altText":   "Starter Kit Bundle Components",
	})

	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, float64(5), resp["mediaCount"])
	assert.Equal(t, "gid://shopify/Product/1", resp["productId"])
}

func TestUpdateProductImage_BackendRejection(t *testing.T) {
	gw := new(mockGateway)
	gw.On("SetProductImage", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(0, apperrors.UserRejected("media limit reached"))

	rec := postJSON(t, testRouter(gw), "/api/products/image", map[string]any{
		"productId": "gid://shopify/Product/1",
		"imageUrl":  "https://img.example.com/composite.jpg",
	})

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, false, resp["success"])
	assert.Equal(t, "media limit reached", resp["error"])
	assert.Equal(t, "gid://shopify/Product/1", resp["productId"])
}

func TestUpdateProductImage_MissingFields(t *testing.T) {
	rec := postJSON(t, testRouter(new(mockGateway)), "/api/products/image", map[string]any{
		"productId": "gid://shopify/Product/1",
	})

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body struct {
		Error  string            `json:"error"`
		Fields map[string]string `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body.Fields, "ImageURL")
}

func TestUpdateBundles_FullPipeline(t *testing.T) {
	gw := new(mockGateway)
	gw.On("QueryBundleComponents", mock.Anything, "gid://shopify/Product/1").Return(sampleProduct(), nil)
	gw.On("SetProductImage", mock.Anything, "gid://shopify/Product/1", mock.Anything,
		"Starter Kit Bundle Components").Return(4, nil)

	rec := postJSON(t, testRouter(gw), "/api/bundles/update", map[string]any{
		"productIds": []string{"gid://shopify/Product/1"},
	})

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Results  []domain.BatchOutcome `json:"results"`
		Metadata domain.ResolveStats   `json:"metadata"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 1)
	assert.True(t, resp.Results[0].Success)
	assert.Equal(t, 4, resp.Results[0].MediaCount)
	assert.NotEmpty(t, resp.Results[0].CombinedImageURL)
	gw.AssertExpectations(t)
}

func TestUpdateBundles_NoWriteBack(t *testing.T) {
	gw := new(mockGateway)
	gw.On("QueryBundleComponents", mock.Anything, "gid://shopify/Product/1").Return(sampleProduct(), nil)

	rec := postJSON(t, testRouter(gw), "/api/bundles/update", map[string]any{
		"productIds": []string{"gid://shopify/Product/1"},
		"writeBack":  false,
	})

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Results []domain.BatchOutcome `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 1)
	assert.True(t, resp.Results[0].Success)
	assert.Zero(t, resp.Results[0].MediaCount)
	gw.AssertNotCalled(t, "SetProductImage")
}

func TestProbes(t *testing.T) {
	router := testRouter(new(mockGateway))

	for _, path := range []string{
		"/api/bundles/images",
		"/api/images/combine",
		"/api/products/image",
		"/api/bundles/update",
	} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, path)

		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "ok", body["status"], path)
	}
}

func TestContentTypeJSON_Rejected(t *testing.T) {
	router := testRouter(new(mockGateway))

	req := httptest.NewRequest(http.MethodPost, "/api/bundles/images", bytes.NewReader([]byte("productIds=1")))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestHealthEndpoints(t *testing.T) {
	router := testRouter(new(mockGateway))

	for _, path := range []string{"/health/live", "/health/ready"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}
