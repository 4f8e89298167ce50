// Package event publishes bundle pipeline domain events.
package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sergio-nezhigay/images-creator/internal/domain"
	pkgkafka "github.com/sergio-nezhigay/images-creator/pkg/kafka"
)

// TopicBundleImageUpdated carries events emitted after a composite image has
// been written back to a parent product.
const TopicBundleImageUpdated = "bundle.image.updated"

// Aggregate type constant.
const AggregateTypeProduct = "product"

// Source identifier for events originating from this service.
const SourceImagesService = "images-creator"

// BundleImageUpdatedData is the payload for a bundle.image.updated event.
type BundleImageUpdatedData struct {
	ProductID        string `json:"product_id"`
	ProductTitle     string `json:"product_title"`
	CombinedImageURL string `json:"combined_image_url"`
	MediaCount       int    `json:"media_count"`
	ImageCount       int    `json:"image_count"`
	Method           string `json:"method"`
}

// Producer publishes bundle domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishBundleImageUpdated publishes a bundle.image.updated event for one
// successfully updated product.
func (p *Producer) PublishBundleImageUpdated(ctx context.Context, outcome domain.BatchOutcome, result *domain.CompositeResult) error {
	data := BundleImageUpdatedData{
		ProductID:        outcome.ProductID,
		ProductTitle:     outcome.ProductTitle,
		CombinedImageURL: outcome.CombinedImageURL,
		MediaCount:       outcome.MediaCount,
	}
	if result != nil {
		data.ImageCount = result.Metadata.OriginalCount
		data.Method = result.Metadata.Method
	}

	event, err := pkgkafka.NewEvent(TopicBundleImageUpdated, outcome.ProductID, AggregateTypeProduct, SourceImagesService, data)
	if err != nil {
		return fmt.Errorf("create bundle.image.updated event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicBundleImageUpdated, event); err != nil {
		return fmt.Errorf("publish bundle.image.updated event: %w", err)
	}

	p.logger.DebugContext(ctx, "published bundle.image.updated event",
		slog.String("product_id", outcome.ProductID),
	)

	return nil
}
