package service

import (
	"context"
	"strings"

	"supashop-api/internal/model"
	"supashop-api/internal/repository"
	"supashop-api/pkg/apierror"
)

const (
	minRating = 1
	maxRating = 5
)

type ReviewService struct {
	reviews ReviewStore
}

func NewReviewService(reviews ReviewStore) *ReviewService {
	return &ReviewService{reviews: reviews}
}

func (s *ReviewService) Add(ctx context.Context, target repository.ReviewTarget, id string, userID string, req model.ReviewRequest) (model.ReviewSummary, error) {
	review := strings.TrimSpace(req.Review)
	if strings.TrimSpace(id) == "" || review == "" || req.Rating == 0 {
		return model.ReviewSummary{}, apierror.BadRequest(msgAllFieldsRequired)
	}
	if req.Rating < minRating || req.Rating > maxRating {
		return model.ReviewSummary{}, apierror.BadRequest("Rating must be between 1 and 5")
	}
	return s.reviews.Add(ctx, target, id, userID, req.Rating, review)
}

func (s *ReviewService) Remove(ctx context.Context, target repository.ReviewTarget, id string, userID string) (model.ReviewSummary, error) {
	if strings.TrimSpace(id) == "" {
		return model.ReviewSummary{}, apierror.BadRequest("Id is required")
	}
	return s.reviews.Remove(ctx, target, id, userID)
}
