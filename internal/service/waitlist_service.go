package service

import (
	"context"
	"net/mail"

	"supashop-api/internal/model"
	"supashop-api/pkg/apierror"
)

type WaitlistService struct {
	entries WaitlistStore
}

func NewWaitlistService(entries WaitlistStore) *WaitlistService {
	return &WaitlistService{entries: entries}
}

func (s *WaitlistService) Join(ctx context.Context, email string) (model.WaitlistEntry, error) {
	email = normalizeEmail(email)
	if email == "" {
		return model.WaitlistEntry{}, apierror.BadRequest("Email is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return model.WaitlistEntry{}, apierror.BadRequest("Email is invalid")
	}
	return s.entries.Join(ctx, email)
}
