package imaging

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/sergio-nezhigay/images-creator/internal/domain"
	apperrors "github.com/sergio-nezhigay/images-creator/pkg/errors"
	"github.com/sergio-nezhigay/images-creator/pkg/httpclient"
)

const cloudinaryAPIBase = "https://api.cloudinary.com/v1_1"

// CloudinaryConfig holds the credentials for signed uploads.
type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string

	// UploadBase overrides the API endpoint, used in tests.
	UploadBase string

	now func() time.Time
}

// Cloudinary composes images by uploading them and chaining positioned
// overlay transformations into a single delivery URL. No pixels are
// processed locally.
type Cloudinary struct {
	cfg    CloudinaryConfig
	client *httpclient.CircuitBreakerClient
	logger *slog.Logger
}

// NewCloudinary validates the credentials and returns the backend.
func NewCloudinary(cfg CloudinaryConfig, client *httpclient.CircuitBreakerClient, logger *slog.Logger) (*Cloudinary, error) {
	if cfg.CloudName == "" {
		return nil, apperrors.Configuration("CLOUDINARY_CLOUD_NAME")
	}
	if cfg.APIKey == "" {
		return nil, apperrors.Configuration("CLOUDINARY_API_KEY")
	}
	if cfg.APISecret == "" {
		return nil, apperrors.Configuration("CLOUDINARY_API_SECRET")
	}
	if cfg.UploadBase == "" {
		cfg.UploadBase = cloudinaryAPIBase
	}
	if cfg.now == nil {
		cfg.now = time.Now
	}

	return &Cloudinary{
		cfg:    cfg,
		client: client,
		logger: logger.With(slog.String("component", "cloudinary")),
	}, nil
}

func (c *Cloudinary) Name() string { return BackendCloudinary }

type uploadResponse struct {
	PublicID  string `json:"public_id"`
	SecureURL string `json:"secure_url"`
}

// UploadImage performs a signed remote-fetch upload. Cloudinary downloads
// the source URL itself, so only form parameters travel over this request.
func (c *Cloudinary) UploadImage(ctx context.Context, sourceURL string) (string, error) {
	params := map[string]string{
		"file":      sourceURL,
		"timestamp": strconv.FormatInt(c.cfg.now().Unix(), 10),
	}
	if c.cfg.Folder != "" {
		params["folder"] = c.cfg.Folder
	}
	params["signature"] = c.sign(params)
	params["api_key"] = c.cfg.APIKey

	form := url.Values{}
	for k, v := range params {
		form.Set(k, v)
	}

	endpoint := fmt.Sprintf("%s/%s/image/upload", c.cfg.UploadBase, c.cfg.CloudName)
	resp, err := c.client.Post(ctx, endpoint, "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	if err != nil {
		return "", apperrors.ExternalService("cloudinary", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", httpclient.ReadErrorResponse(resp, "cloudinary")
	}

	var upload uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&upload); err != nil {
		return "", apperrors.ExternalService("cloudinary", fmt.Errorf("decode upload response: %w", err))
	}
	if upload.PublicID == "" {
		return "", apperrors.ExternalService("cloudinary", fmt.Errorf("upload response missing public_id"))
	}

	c.logger.Debug("uploaded image", slog.String("public_id", upload.PublicID))
	return upload.PublicID, nil
}

// sign computes the request signature: all parameters except file,
// api_key and signature, sorted by key, joined as key=value pairs with
// '&', concatenated with the API secret, SHA-1 hashed and hex encoded.
func (c *Cloudinary) sign(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		if k == "file" || k == "api_key" || k == "signature" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+params[k])
	}
	sum := sha1.Sum([]byte(strings.Join(pairs, "&") + c.cfg.APISecret))
	return hex.EncodeToString(sum[:])
}

// ComposeURL builds a delivery URL that renders the grid. The first asset
// is the base image: it is filled into one cell and the canvas is padded
// to the full grid size anchored north-west, so the base lands in the
// top-left cell. Every remaining asset is layered at its cell offset.
func (c *Cloudinary) ComposeURL(assets []string, layout domain.GridLayout) (string, error) {
	if len(assets) == 0 {
		return "", apperrors.InvalidInput("no assets to compose")
	}
	if len(assets) != len(layout.Positions) {
		return "", apperrors.InvalidInput(fmt.Sprintf(
			"asset count %d does not match layout positions %d", len(assets), len(layout.Positions)))
	}

	segments := []string{
		fmt.Sprintf("w_%d,h_%d,c_fill", layout.CellWidth, layout.CellHeight),
		fmt.Sprintf("w_%d,h_%d,c_lpad,g_north_west,b_rgb:ffffff", layout.CanvasWidth, layout.CanvasHeight),
	}
	for i, asset := range assets[1:] {
		pos := layout.Positions[i+1]
		segments = append(segments,
			fmt.Sprintf("l_%s,w_%d,h_%d,c_fill", overlayID(asset), layout.CellWidth, layout.CellHeight),
			fmt.Sprintf("fl_layer_apply,g_north_west,x_%d,y_%d", pos.X, pos.Y),
		)
	}

	return fmt.Sprintf("https://res.cloudinary.com/%s/image/upload/%s/%s.jpg",
		c.cfg.CloudName, strings.Join(segments, "/"), assets[0]), nil
}

// overlayID escapes an asset reference for use in an l_ overlay component,
// where folder slashes must become colons.
func overlayID(publicID string) string {
	return strings.ReplaceAll(publicID, "/", ":")
}

func (c *Cloudinary) MethodFor(layout domain.GridLayout) string {
	return fmt.Sprintf("%s-grid-%s", BackendCloudinary, layout.Grid())
}
