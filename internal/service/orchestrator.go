package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sergio-nezhigay/images-creator/internal/domain"
	"github.com/sergio-nezhigay/images-creator/internal/shopify"
	apperrors "github.com/sergio-nezhigay/images-creator/pkg/errors"
)

// State is one phase of the orchestrator's per-product loop.
type State string

const (
	StateIdle              State = "idle"
	StateBuildingComposite State = "building_composite"
	StateUpdatingProduct   State = "updating_product"
	StateDone              State = "done"
)

// Progress is a snapshot of the orchestrator's position in a batch, delivered
// through the progress callback before each step.
type Progress struct {
	State        State  `json:"state"`
	ProductIndex int    `json:"productIndex"`
	ProductID    string `json:"productId,omitempty"`
	Completed    int    `json:"completed"`
	Total        int    `json:"total"`
}

// ProgressFunc observes orchestrator progress. Callbacks run synchronously on
// the orchestrator goroutine and must return quickly.
type ProgressFunc func(Progress)

// RunOptions configures one orchestrator batch.
type RunOptions struct {
	// WriteBack controls whether the composite is written back to the parent
	// product. When false the run stops after building, reporting the
	// composite URL only.
	WriteBack bool

	// OnProgress, when set, receives a state snapshot before each step.
	OnProgress ProgressFunc
}

// ImageUpdatedPublisher publishes the post-write-back domain event. May be
// absent when eventing is disabled.
type ImageUpdatedPublisher interface {
	PublishBundleImageUpdated(ctx context.Context, outcome domain.BatchOutcome, result *domain.CompositeResult) error
}

// Orchestrator drives the full pipeline: resolve component images, build one
// composite per product, and write each composite back. Products are
// processed strictly sequentially so that progress can be surfaced as a
// simple linear sequence; a later product never starts before the previous
// one's full build-and-update cycle has completed.
type Orchestrator struct {
	resolver  *Resolver
	builder   *Builder
	gateway   shopify.Gateway
	publisher ImageUpdatedPublisher
	logger    *slog.Logger
}

// NewOrchestrator creates an orchestrator. publisher may be nil.
func NewOrchestrator(
	resolver *Resolver,
	builder *Builder,
	gateway shopify.Gateway,
	publisher ImageUpdatedPublisher,
	logger *slog.Logger,
) *Orchestrator {
	return &Orchestrator{
		resolver:  resolver,
		builder:   builder,
		gateway:   gateway,
		publisher: publisher,
		logger:    logger,
	}
}

// ProcessBundles resolves component images for the given product IDs and runs
// the per-product update loop on the resulting groups. Validation errors from
// the resolver abort the whole request; everything after that is reported
// per product.
func (o *Orchestrator) ProcessBundles(ctx context.Context, productIDs []string, opts RunOptions) ([]domain.BatchOutcome, domain.ResolveStats, error) {
	groups, stats, err := o.resolver.Resolve(ctx, productIDs)
	if err != nil {
		return nil, stats, err
	}
	return o.Run(ctx, groups, opts), stats, nil
}

// Run processes the groups one at a time and returns exactly one outcome per
// group, in input order. A failed build or update is recorded in the outcome
// and never aborts the batch. Cancellation is honored between products: the
// remaining groups are recorded as failed without being started.
func (o *Orchestrator) Run(ctx context.Context, groups []domain.ProductImageGroup, opts RunOptions) []domain.BatchOutcome {
	start := time.Now()
	defer func() { batchDuration.Observe(time.Since(start).Seconds()) }()

	total := len(groups)
	outcomes := make([]domain.BatchOutcome, 0, total)
	report := func(p Progress) {
		if opts.OnProgress != nil {
			opts.OnProgress(p)
		}
	}

	report(Progress{State: StateIdle, Total: total})

	for i, group := range groups {
		if err := ctx.Err(); err != nil {
			for _, rest := range groups[i:] {
				outcomes = append(outcomes, domain.BatchOutcome{
					ProductID:    rest.ProductID,
					ProductTitle: rest.ProductTitle,
					Success:      false,
					Error:        fmt.Sprintf("batch canceled: %v", err),
				})
			}
			break
		}

		outcomes = append(outcomes, o.processGroup(ctx, i, group, opts, report, len(outcomes), total))
	}

	report(Progress{State: StateDone, ProductIndex: total, Completed: len(outcomes), Total: total})

	o.logger.InfoContext(ctx, "batch finished",
		slog.Int("products", total),
		slog.Int("succeeded", countSuccesses(outcomes)),
		slog.Duration("elapsed", time.Since(start)),
	)

	return outcomes
}

func (o *Orchestrator) processGroup(
	ctx context.Context,
	index int,
	group domain.ProductImageGroup,
	opts RunOptions,
	report ProgressFunc,
	completed, total int,
) domain.BatchOutcome {
	outcome := domain.BatchOutcome{
		ProductID:    group.ProductID,
		ProductTitle: group.ProductTitle,
	}

	report(Progress{State: StateBuildingComposite, ProductIndex: index, ProductID: group.ProductID, Completed: completed, Total: total})

	result, err := o.builder.Build(ctx, group.ImageURLs)
	if err != nil {
		o.logger.WarnContext(ctx, "composite build failed",
			slog.String("product_id", group.ProductID),
			slog.String("error", err.Error()),
		)
		outcome.Error = err.Error()
		return outcome
	}
	outcome.CombinedImageURL = result.CombinedImageURL

	if !opts.WriteBack {
		outcome.Success = true
		return outcome
	}

	report(Progress{State: StateUpdatingProduct, ProductIndex: index, ProductID: group.ProductID, Completed: completed, Total: total})

	altText := fmt.Sprintf("%s Bundle Components", group.ProductTitle)
	mediaCount, err := o.gateway.SetProductImage(ctx, group.ProductID, result.CombinedImageURL, altText)
	if err != nil {
		productsUpdated.WithLabelValues(resultError).Inc()
		o.logger.WarnContext(ctx, "product image update failed",
			slog.String("product_id", group.ProductID),
			slog.String("error", err.Error()),
		)
		// The composite exists even though the update failed; keep its URL
		// in the outcome so callers can recover manually.
		outcome.Error = err.Error()
		return outcome
	}
	productsUpdated.WithLabelValues(resultOK).Inc()

	outcome.Success = true
	outcome.MediaCount = mediaCount

	// Publish event; errors are logged but do not fail the product.
	if o.publisher != nil {
		if err := o.publisher.PublishBundleImageUpdated(ctx, outcome, result); err != nil {
			o.logger.ErrorContext(ctx, "failed to publish bundle.image.updated event",
				slog.String("product_id", group.ProductID),
				slog.String("error", err.Error()),
			)
		}
	}

	o.logger.InfoContext(ctx, "bundle image updated",
		slog.String("product_id", group.ProductID),
		slog.Int("media_count", mediaCount),
	)

	return outcome
}

// UpdateProductImage attaches one already-built image to a product and
// returns the resulting media count. Used by the single-product endpoint.
func (o *Orchestrator) UpdateProductImage(ctx context.Context, productID, imageURL, altText string) (int, error) {
	if !productGIDPattern.MatchString(productID) {
		return 0, apperrors.InvalidInput(fmt.Sprintf("invalid product id %q", productID))
	}

	mediaCount, err := o.gateway.SetProductImage(ctx, productID, imageURL, altText)
	if err != nil {
		productsUpdated.WithLabelValues(resultError).Inc()
		return 0, err
	}
	productsUpdated.WithLabelValues(resultOK).Inc()

	o.logger.InfoContext(ctx, "product image updated",
		slog.String("product_id", productID),
		slog.Int("media_count", mediaCount),
	)

	return mediaCount, nil
}

func countSuccesses(outcomes []domain.BatchOutcome) int {
	n := 0
	for _, out := range outcomes {
		if out.Success {
			n++
		}
	}
	return n
}
