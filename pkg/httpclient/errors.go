package httpclient

import (
	"fmt"
	"io"
	"net/http"

	apperrors "github.com/sergio-nezhigay/images-creator/pkg/errors"
)

// ReadErrorResponse consumes the body of a non-2xx response from a downstream
// service and translates it into an AppError from the pipeline taxonomy:
// 404 becomes a skippable NotFound, other 4xx become ExternalService errors
// carrying the raw body, and 5xx become ExternalService errors as well.
//
// The caller should only invoke this when resp.StatusCode indicates an error.
// The response body is fully consumed and closed.
func ReadErrorResponse(resp *http.Response, serviceName string) error {
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // 1 MB limit
	if err != nil {
		return apperrors.ExternalService(serviceName,
			fmt.Errorf("status %d (failed to read body: %w)", resp.StatusCode, err))
	}

	if resp.StatusCode == http.StatusNotFound {
		return apperrors.NotFound(serviceName, resp.Request.URL.Path)
	}

	return apperrors.ExternalService(serviceName,
		fmt.Errorf("status %d: %s", resp.StatusCode, string(body)))
}
