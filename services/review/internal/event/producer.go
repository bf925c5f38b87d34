package event

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	pkgkafka "github.com/SWE5006-Group-7/NUSHungry-Backend-microservices-sub002/pkg/kafka"
	"github.com/SWE5006-Group-7/NUSHungry-Backend-microservices-sub002/services/review/internal/domain"
)

// Kafka topic constants for review aggregate events.
const (
	TopicRatingChanged = "nushungry.review.rating_changed"
	TopicPriceChanged  = "nushungry.review.price_changed"
)

// Aggregate type constant. The aggregate these events describe is the stall
// projection, not the review itself.
const AggregateTypeStall = "stall"

// Source identifier for events originating from the review service.
const SourceReviewService = "review-service"

// RatingChangedData is the payload for a rating_changed event. The values are
// absolute: the consumer overwrites its projection, never merges.
type RatingChangedData struct {
	StallID          string    `json:"stallId"`
	NewAverageRating *float64  `json:"newAverageRating"`
	ReviewCount      int       `json:"reviewCount"`
	Timestamp        time.Time `json:"timestamp"`
}

// PriceChangedData is the payload for a price_changed event.
type PriceChangedData struct {
	StallID         string    `json:"stallId"`
	NewAveragePrice *float64  `json:"newAveragePrice"`
	PriceCount      int       `json:"priceCount"`
	Timestamp       time.Time `json:"timestamp"`
}

// Producer publishes review aggregate events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer for the review service.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishRatingChanged publishes a rating_changed event carrying the stall's
// freshly recomputed rating aggregate.
func (p *Producer) PublishRatingChanged(ctx context.Context, agg *domain.StallAggregate) error {
	data := RatingChangedData{
		StallID:          agg.StallID,
		NewAverageRating: agg.AverageRating,
		ReviewCount:      agg.ReviewCount,
		Timestamp:        agg.ComputedAt,
	}

	event, err := pkgkafka.NewEvent(TopicRatingChanged, agg.StallID, AggregateTypeStall, SourceReviewService, data)
	if err != nil {
		return fmt.Errorf("create rating_changed event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicRatingChanged, event); err != nil {
		return fmt.Errorf("publish rating_changed event: %w", err)
	}

	p.logger.DebugContext(ctx, "published rating_changed event",
		slog.String("stall_id", agg.StallID),
		slog.Any("average_rating", agg.AverageRating),
		slog.Int("review_count", agg.ReviewCount),
	)

	return nil
}

// PublishPriceChanged publishes a price_changed event carrying the stall's
// freshly recomputed price aggregate.
func (p *Producer) PublishPriceChanged(ctx context.Context, agg *domain.StallAggregate) error {
	data := PriceChangedData{
		StallID:         agg.StallID,
		NewAveragePrice: agg.AveragePrice,
		PriceCount:      agg.PriceCount,
		Timestamp:       agg.ComputedAt,
	}

	event, err := pkgkafka.NewEvent(TopicPriceChanged, agg.StallID, AggregateTypeStall, SourceReviewService, data)
	if err != nil {
		return fmt.Errorf("create price_changed event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicPriceChanged, event); err != nil {
		return fmt.Errorf("publish price_changed event: %w", err)
	}

	p.logger.DebugContext(ctx, "published price_changed event",
		slog.String("stall_id", agg.StallID),
		slog.Any("average_price", agg.AveragePrice),
		slog.Int("price_count", agg.PriceCount),
	)

	return nil
}
