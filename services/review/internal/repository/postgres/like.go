package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/SWE5006-Group-7/NUSHungry-Backend-microservices-sub002/pkg/database"
)

// LikeRepository implements repository.LikeRepository using PostgreSQL. The
// unique primary key on (review_id, user_id) is the concurrency guard: two
// racing likes cannot both insert, and the counter adjustment is derived from
// the rows actually affected, inside the same transaction.
type LikeRepository struct {
	db database.DBTX
}

// NewLikeRepository creates a new PostgreSQL-backed like repository.
func NewLikeRepository(db database.DBTX) *LikeRepository {
	return &LikeRepository{db: db}
}

// Like inserts the like if absent and increments the review's likes_count only
// when a row was actually inserted.
func (r *LikeRepository) Like(ctx context.Context, reviewID, userID string) (bool, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("begin like tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	ct, err := tx.Exec(ctx, `
		INSERT INTO review_likes (review_id, user_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (review_id, user_id) DO NOTHING`,
		reviewID, userID, time.Now().UTC(),
	)
	if err != nil {
		return false, fmt.Errorf("insert like: %w", err)
	}

	inserted := ct.RowsAffected() == 1
	if inserted {
		if _, err := tx.Exec(ctx, `
			UPDATE reviews SET likes_count = likes_count + 1 WHERE id = $1`,
			reviewID,
		); err != nil {
			return false, fmt.Errorf("increment likes count: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("commit like tx: %w", err)
	}

	return inserted, nil
}

// Unlike deletes the like if present and decrements the review's likes_count
// only when a row was actually deleted.
func (r *LikeRepository) Unlike(ctx context.Context, reviewID, userID string) (bool, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("begin unlike tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	ct, err := tx.Exec(ctx, `
		DELETE FROM review_likes WHERE review_id = $1 AND user_id = $2`,
		reviewID, userID,
	)
	if err != nil {
		return false, fmt.Errorf("delete like: %w", err)
	}

	deleted := ct.RowsAffected() == 1
	if deleted {
		if _, err := tx.Exec(ctx, `
			UPDATE reviews SET likes_count = GREATEST(likes_count - 1, 0) WHERE id = $1`,
			reviewID,
		); err != nil {
			return false, fmt.Errorf("decrement likes count: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("commit unlike tx: %w", err)
	}

	return deleted, nil
}
