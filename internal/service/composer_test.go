package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sergio-nezhigay/images-creator/internal/domain"
	"github.com/sergio-nezhigay/images-creator/internal/imaging"
	apperrors "github.com/sergio-nezhigay/images-creator/pkg/errors"
)

type mockBackend struct {
	mock.Mock
}

var _ imaging.Backend = (*mockBackend)(nil)

func (m *mockBackend) Name() string {
	return "mock"
}

func (m *mockBackend) UploadImage(ctx context.Context, sourceURL string) (string, error) {
	args := m.Called(ctx, sourceURL)
	return args.String(0), args.Error(1)
}

func (m *mockBackend) ComposeURL(assets []string, layout domain.GridLayout) (string, error) {
	args := m.Called(assets, layout)
	return args.String(0), args.Error(1)
}

func (m *mockBackend) MethodFor(layout domain.GridLayout) string {
	return "mock-grid-" + layout.Grid()
}

func TestBuilder_Build_Validation(t *testing.T) {
	b := NewBuilder(imaging.NewDemo(), testLogger())

	tests := []struct {
		name string
		urls []string
	}{
		{"empty", nil},
		{"not a url", []string{"not a url"}},
		{"relative", []string{"/images/a.jpg"}},
		{"wrong scheme", []string{"ftp://host/a.jpg"}},
		{"one bad among good", []string{"https://cdn.shopify.com/a.jpg", "nope"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := b.Build(context.Background(), tt.urls)
			assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
		})
	}
}

func TestBuilder_Build_Demo(t *testing.T) {
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	b := NewBuilder(imaging.NewDemo(), testLogger())
	b.now = func() time.Time { return fixed }

	urls := []string{
		"https://cdn.shopify.com/a.jpg",
		"https://cdn.shopify.com/b.jpg",
	}

	result, err := b.Build(context.Background(), urls)
	require.NoError(t, err)

	assert.NotEmpty(t, result.CombinedImageURL)
	assert.Equal(t, fixed, result.ProcessedAt)
	assert.Equal(t, 2, result.Metadata.OriginalCount)
	assert.Equal(t, "demo-collage", result.Metadata.Method)
	assert.Equal(t, "demo", result.Metadata.Backend)
	assert.Equal(t, "2x1", result.Metadata.Grid)

	// Demo builds are deterministic.
	again, err := b.Build(context.Background(), urls)
	require.NoError(t, err)
	assert.Equal(t, result.CombinedImageURL, again.CombinedImageURL)
}

func TestBuilder_Build_UploadFailureFailsWholeBuild(t *testing.T) {
	backend := new(mockBackend)
	backend.On("UploadImage", mock.Anything, "https://cdn.shopify.com/a.jpg").Return("ref-a", nil).Maybe()
	backend.On("UploadImage", mock.Anything, "https://cdn.shopify.com/b.jpg").
		Return("", apperrors.ExternalService("imaging", assert.AnError)).Maybe()

	b := NewBuilder(backend, testLogger())
	_, err := b.Build(context.Background(), []string{
		"https://cdn.shopify.com/a.jpg",
		"https://cdn.shopify.com/b.jpg",
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrExternalService)
	backend.AssertNotCalled(t, "ComposeURL")
}

func TestBuilder_Build_AssetsPassedInInputOrder(t *testing.T) {
	backend := new(mockBackend)
	backend.On("UploadImage", mock.Anything, "https://cdn.shopify.com/a.jpg").Return("ref-a", nil)
	backend.On("UploadImage", mock.Anything, "https://cdn.shopify.com/b.jpg").Return("ref-b", nil)
	backend.On("UploadImage", mock.Anything, "https://cdn.shopify.com/c.jpg").Return("ref-c", nil)
	backend.On("ComposeURL", []string{"ref-a", "ref-b", "ref-c"}, mock.Anything).
		Return("https://img.example.com/composite.jpg", nil)

	b := NewBuilder(backend, testLogger())
	result, err := b.Build(context.Background(), []string{
		"https://cdn.shopify.com/a.jpg",
		"https://cdn.shopify.com/b.jpg",
		"https://cdn.shopify.com/c.jpg",
	})

	require.NoError(t, err)
	assert.Equal(t, "https://img.example.com/composite.jpg", result.CombinedImageURL)
	assert.Equal(t, "mock-grid-2x2", result.Metadata.Method)
	backend.AssertExpectations(t)
}
