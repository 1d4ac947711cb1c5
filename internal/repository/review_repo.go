package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"supashop-api/internal/database"
	"supashop-api/internal/model"
	"supashop-api/pkg/apierror"
)

// ReviewTarget selects which table holds the reviewed entity.
type ReviewTarget string

const (
	ReviewProduct ReviewTarget = "products"
	ReviewStore   ReviewTarget = "merchants"
)

func (t ReviewTarget) notFound() string {
	if t == ReviewStore {
		return "Store not found"
	}
	return productNotFound
}

// ReviewRepository keeps one rating and one review per user on products and
// stores. Both lists are read and rewritten under a row lock.
type ReviewRepository struct {
	pool *pgxpool.Pool
}

func NewReviewRepository(pool *pgxpool.Pool) *ReviewRepository {
	return &ReviewRepository{pool: pool}
}

// Add prepends the user's rating and review. A user who already reviewed the
// target gets a conflict and nothing is written.
func (r *ReviewRepository) Add(ctx context.Context, target ReviewTarget, id string, userID string, rating int, review string) (model.ReviewSummary, error) {
	var summary model.ReviewSummary
	err := r.mutate(ctx, target, id, func(s *model.ReviewSummary) error {
		for _, rv := range s.Reviews {
			if rv.UserID == userID {
				return apierror.Conflict("User already made a review")
			}
		}
		s.Reviews = append([]model.Review{{UserID: userID, Review: review}}, s.Reviews...)
		s.Ratings = append([]model.Rating{{UserID: userID, Rating: rating}}, s.Ratings...)
		summary = *s
		return nil
	})
	return summary, err
}

// Remove drops every rating and review the user left on the target.
func (r *ReviewRepository) Remove(ctx context.Context, target ReviewTarget, id string, userID string) (model.ReviewSummary, error) {
	var summary model.ReviewSummary
	err := r.mutate(ctx, target, id, func(s *model.ReviewSummary) error {
		reviews := make([]model.Review, 0, len(s.Reviews))
		for _, rv := range s.Reviews {
			if rv.UserID != userID {
				reviews = append(reviews, rv)
			}
		}
		ratings := make([]model.Rating, 0, len(s.Ratings))
		for _, rt := range s.Ratings {
			if rt.UserID != userID {
				ratings = append(ratings, rt)
			}
		}
		s.Reviews, s.Ratings = reviews, ratings
		summary = *s
		return nil
	})
	return summary, err
}

func (r *ReviewRepository) mutate(ctx context.Context, target ReviewTarget, id string, fn func(*model.ReviewSummary) error) error {
	table := string(target)
	return database.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var s model.ReviewSummary
		if err := tx.QueryRow(ctx,
			`SELECT ratings, reviews FROM `+table+` WHERE id = $1 FOR UPDATE`, id).
			Scan(&s.Ratings, &s.Reviews); err != nil {
			return classify(err, "lock reviews", target.notFound())
		}
		if s.Ratings == nil {
			s.Ratings = []model.Rating{}
		}
		if s.Reviews == nil {
			s.Reviews = []model.Review{}
		}

		if err := fn(&s); err != nil {
			return err
		}

		ratings, err := json.Marshal(s.Ratings)
		if err != nil {
			return fmt.Errorf("encode ratings: %w", err)
		}
		reviews, err := json.Marshal(s.Reviews)
		if err != nil {
			return fmt.Errorf("encode reviews: %w", err)
		}

		if _, err := tx.Exec(ctx,
			`UPDATE `+table+` SET ratings = $2::jsonb, reviews = $3::jsonb, updated_at = now() WHERE id = $1`,
			id, string(ratings), string(reviews)); err != nil {
			return classify(err, "store reviews", target.notFound())
		}
		return nil
	})
}
