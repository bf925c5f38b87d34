package event

import (
	"context"
	"log/slog"
	"time"

	pkgkafka "github.com/SWE5006-Group-7/NUSHungry-Backend-microservices-sub002/pkg/kafka"
)

// Topics consumed from the review service.
const (
	TopicRatingChanged = "nushungry.review.rating_changed"
	TopicPriceChanged  = "nushungry.review.price_changed"
)

// ConsumerGroupID is the consumer group for the stall service.
const ConsumerGroupID = "stall-service"

// RatingChangedData is the payload of a rating-changed event. The values are
// absolute: the consumer overwrites, never merges.
type RatingChangedData struct {
	StallID          string    `json:"stallId"`
	NewAverageRating *float64  `json:"newAverageRating"`
	ReviewCount      int       `json:"reviewCount"`
	Timestamp        time.Time `json:"timestamp"`
}

// PriceChangedData is the payload of a price-changed event.
type PriceChangedData struct {
	StallID         string    `json:"stallId"`
	NewAveragePrice *float64  `json:"newAveragePrice"`
	PriceCount      int       `json:"priceCount"`
	Timestamp       time.Time `json:"timestamp"`
}

// StallProjector applies absolute aggregate values to the stall directory.
type StallProjector interface {
	ApplyRatingChanged(ctx context.Context, stallID string, averageRating *float64, reviewCount int, ts time.Time) error
	ApplyPriceChanged(ctx context.Context, stallID string, averagePrice *float64, priceCount int, ts time.Time) error
}

// ConsumerHandler routes incoming review events to the stall service.
type ConsumerHandler struct {
	stalls StallProjector
	logger *slog.Logger
}

// NewConsumerHandler creates a new event consumer handler.
func NewConsumerHandler(stalls StallProjector, logger *slog.Logger) *ConsumerHandler {
	return &ConsumerHandler{
		stalls: stalls,
		logger: logger,
	}
}

// Handle processes an incoming Kafka event based on its event type. A payload
// that fails to decode or lacks its stall ID is logged and dropped: returning
// an error here would burn the retry budget on a message that can never
// succeed.
func (h *ConsumerHandler) Handle(ctx context.Context, event *pkgkafka.Event) error {
	switch event.EventType {
	case TopicRatingChanged:
		return h.handleRatingChanged(ctx, event)
	case TopicPriceChanged:
		return h.handlePriceChanged(ctx, event)
	default:
		h.logger.WarnContext(ctx, "unknown event type received",
			slog.String("event_type", event.EventType),
			slog.String("event_id", event.EventID),
		)
		return nil
	}
}

func (h *ConsumerHandler) handleRatingChanged(ctx context.Context, event *pkgkafka.Event) error {
	var data RatingChangedData
	if err := event.UnmarshalData(&data); err != nil {
		h.logger.ErrorContext(ctx, "dropping malformed rating_changed payload",
			slog.String("event_id", event.EventID),
			slog.String("error", err.Error()),
		)
		return nil
	}
	if data.StallID == "" {
		h.logger.ErrorContext(ctx, "dropping rating_changed payload without stallId",
			slog.String("event_id", event.EventID),
		)
		return nil
	}

	return h.stalls.ApplyRatingChanged(ctx, data.StallID, data.NewAverageRating, data.ReviewCount, data.Timestamp)
}

func (h *ConsumerHandler) handlePriceChanged(ctx context.Context, event *pkgkafka.Event) error {
	var data PriceChangedData
	if err := event.UnmarshalData(&data); err != nil {
		h.logger.ErrorContext(ctx, "dropping malformed price_changed payload",
			slog.String("event_id", event.EventID),
			slog.String("error", err.Error()),
		)
		return nil
	}
	if data.StallID == "" {
		h.logger.ErrorContext(ctx, "dropping price_changed payload without stallId",
			slog.String("event_id", event.EventID),
		)
		return nil
	}

	return h.stalls.ApplyPriceChanged(ctx, data.StallID, data.NewAveragePrice, data.PriceCount, data.Timestamp)
}

// NewConsumers creates one Kafka consumer per review topic, each wrapped in
// the idempotent handler so redelivered events are applied at most once, and
// wired to a shared DLQ producer for messages that exhaust retries.
func NewConsumers(
	brokers []string,
	handler *ConsumerHandler,
	store pkgkafka.IdempotencyStore,
	dlq *pkgkafka.DLQProducer,
	logger *slog.Logger,
) []*pkgkafka.Consumer {
	topics := []string{
		TopicRatingChanged,
		TopicPriceChanged,
	}

	wrapped := pkgkafka.IdempotentHandler(store, handler.Handle, logger)

	consumers := make([]*pkgkafka.Consumer, 0, len(topics))
	for _, topic := range topics {
		cfg := pkgkafka.ConsumerConfig{
			Brokers:  brokers,
			GroupID:  ConsumerGroupID,
			Topic:    topic,
			MinBytes: 1,
			MaxBytes: 10e6,
		}
		c := pkgkafka.NewConsumer(cfg, wrapped, logger)
		if dlq != nil {
			c = c.WithDLQ(dlq)
		}
		consumers = append(consumers, c)
	}

	return consumers
}
