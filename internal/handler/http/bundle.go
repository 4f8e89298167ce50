package http

import (
	"errors"
	"log/slog"
	"net/http"

	apperrors "github.com/sergio-nezhigay/images-creator/pkg/errors"
	"github.com/sergio-nezhigay/images-creator/pkg/httputil"
	"github.com/sergio-nezhigay/images-creator/pkg/validator"

	"github.com/sergio-nezhigay/images-creator/internal/domain"
	"github.com/sergio-nezhigay/images-creator/internal/service"
)

// BundleHandler handles HTTP requests for the bundle image pipeline.
type BundleHandler struct {
	resolver     *service.Resolver
	builder      *service.Builder
	orchestrator *service.Orchestrator
	logger       *slog.Logger
}

// NewBundleHandler creates a new bundle HTTP handler.
func NewBundleHandler(
	resolver *service.Resolver,
	builder *service.Builder,
	orchestrator *service.Orchestrator,
	logger *slog.Logger,
) *BundleHandler {
	return &BundleHandler{
		resolver:     resolver,
		builder:      builder,
		orchestrator: orchestrator,
		logger:       logger,
	}
}

// --- Request DTOs ---

// FetchBundleImagesRequest is the body for POST /api/bundles/images.
type FetchBundleImagesRequest struct {
	ProductIDs []string `json:"productIds" validate:"required,min=1,dive,required"`
}

// CombineImagesRequest is the body for POST /api/images/combine.
type CombineImagesRequest struct {
	ImageURLs []string `json:"imageUrls" validate:"required,min=1,dive,url"`
}

// UpdateProductImageRequest is the body for POST /api/products/image.
type UpdateProductImageRequest struct {
	ProductID string `json:"productId" validate:"required,startswith=gid://shopify/Product/"`
	ImageURL  string `json:"imageUrl" validate:"required,url"`
	AltText   string `json:"altText"`
}

// UpdateBundlesRequest is the body for POST /api/bundles/update. WriteBack
// defaults to true when omitted.
type UpdateBundlesRequest struct {
	ProductIDs []string `json:"productIds" validate:"required,min=1,dive,required"`
	WriteBack  *bool    `json:"writeBack"`
}

// --- Response shapes ---

type fetchBundleImagesResponse struct {
	Products []domain.ProductImageGroup `json:"products"`
	Metadata domain.ResolveStats        `json:"metadata"`
}

type updateProductImageResponse struct {
	ProductID  string `json:"productId"`
	Success    bool   `json:"success"`
	MediaCount int    `json:"mediaCount,omitempty"`
	Error      string `json:"error,omitempty"`
}

type updateBundlesResponse struct {
	Results  []domain.BatchOutcome `json:"results"`
	Metadata domain.ResolveStats   `json:"metadata"`
}

// --- Handlers ---

// FetchBundleImages handles POST /api/bundles/images.
func (h *BundleHandler) FetchBundleImages(w http.ResponseWriter, r *http.Request) {
	var req FetchBundleImagesRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	groups, stats, err := h.resolver.Resolve(r.Context(), req.ProductIDs)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	if groups == nil {
		groups = []domain.ProductImageGroup{}
	}
	httputil.WriteJSON(w, http.StatusOK, fetchBundleImagesResponse{Products: groups, Metadata: stats})
}

// CombineImages handles POST /api/images/combine.
func (h *BundleHandler) CombineImages(w http.ResponseWriter, r *http.Request) {
	var req CombineImagesRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	result, err := h.builder.Build(r.Context(), req.ImageURLs)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}

// UpdateProductImage handles POST /api/products/image. Service failures keep
// the per-product response shape so the caller always sees which product the
// outcome belongs to.
func (h *BundleHandler) UpdateProductImage(w http.ResponseWriter, r *http.Request) {
	var req UpdateProductImageRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	mediaCount, err := h.orchestrator.UpdateProductImage(r.Context(), req.ProductID, req.ImageURL, req.AltText)
	if err != nil {
		message := err.Error()
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			message = appErr.Message
		}
		httputil.WriteJSON(w, apperrors.HTTPStatus(err), updateProductImageResponse{
			ProductID: req.ProductID,
			Success:   false,
			Error:     message,
		})
		return
	}

	httputil.WriteJSON(w, http.StatusOK, updateProductImageResponse{
		ProductID:  req.ProductID,
		Success:    true,
		MediaCount: mediaCount,
	})
}

// UpdateBundles handles POST /api/bundles/update, the full pipeline run.
func (h *BundleHandler) UpdateBundles(w http.ResponseWriter, r *http.Request) {
	var req UpdateBundlesRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	writeBack := true
	if req.WriteBack != nil {
		writeBack = *req.WriteBack
	}

	outcomes, stats, err := h.orchestrator.ProcessBundles(r.Context(), req.ProductIDs, service.RunOptions{
		WriteBack: writeBack,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	if outcomes == nil {
		outcomes = []domain.BatchOutcome{}
	}
	httputil.WriteJSON(w, http.StatusOK, updateBundlesResponse{Results: outcomes, Metadata: stats})
}

// Probe returns a trivial GET handler answering {"status":"ok"} with the
// given message.
func Probe(message string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteOK(w, message)
	}
}
