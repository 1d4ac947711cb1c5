package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"supashop-api/internal/model"
	"supashop-api/internal/storage"
	"supashop-api/pkg/apierror"
)

type ProfileService struct {
	accounts  AccountStore
	users     UserStore
	merchants MerchantStore
	hasher    PasswordHasher
	images    storage.ImageStore
	logger    *slog.Logger
}

func NewProfileService(accounts AccountStore, users UserStore, merchants MerchantStore, hasher PasswordHasher, images storage.ImageStore, logger *slog.Logger) *ProfileService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProfileService{accounts: accounts, users: users, merchants: merchants, hasher: hasher, images: images, logger: logger}
}

func (s *ProfileService) PublicUser(ctx context.Context, id string) (model.PublicUser, error) {
	if strings.TrimSpace(id) == "" {
		return model.PublicUser{}, apierror.BadRequest("User Id is required")
	}
	u, err := s.users.FindUser(ctx, id)
	if err != nil {
		return model.PublicUser{}, err
	}
	return model.PublicUser{
		ID:             u.ID,
		Name:           u.Name,
		Email:          u.Email,
		Username:       u.Username,
		PhoneNumber:    u.PhoneNumber,
		DisplayPicture: u.DisplayPicture,
		IsVerified:     u.IsVerified,
	}, nil
}

func (s *ProfileService) UpdateUser(ctx context.Context, id string, req model.UpdateProfileRequest) (model.User, error) {
	req = trimProfile(req)
	if req.Name == "" && req.PhoneNumber == "" && req.Username == "" && req.Address == "" {
		return model.User{}, apierror.BadRequest("No field to update")
	}
	return s.users.UpdateProfile(ctx, id, req)
}

func (s *ProfileService) UpdateMerchant(ctx context.Context, id string, req model.UpdateProfileRequest) (model.Merchant, error) {
	req = trimProfile(req)
	if req.Name == "" && req.PhoneNumber == "" && req.Username == "" && req.Address == "" &&
		req.City == "" && req.Country == "" && req.Category == "" {
		return model.Merchant{}, apierror.BadRequest("No field to update")
	}
	return s.merchants.UpdateProfile(ctx, id, req)
}

// ChangePassword replaces the password of a signed-in account after checking
// the current one.
func (s *ProfileService) ChangePassword(ctx context.Context, kind model.AccountKind, id string, req model.ChangePasswordRequest) error {
	if req.OldPassword == "" || req.NewPassword == "" {
		return apierror.BadRequest("All filed must be entered")
	}

	account, err := s.accounts.FindByID(ctx, kind, id)
	if err != nil {
		return err
	}

	ok, err := s.hasher.Verify(account.PasswordHash, req.OldPassword)
	if err != nil {
		return fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return apierror.Unauthorized("Current password is incorrect")
	}
	if req.OldPassword == req.NewPassword {
		return apierror.BadRequest("New password must be different from current password")
	}

	hash, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.accounts.UpdatePassword(ctx, kind, id, hash)
}

// DeleteAccount removes the account and its stored display picture.
func (s *ProfileService) DeleteAccount(ctx context.Context, kind model.AccountKind, id string) error {
	account, err := s.accounts.Delete(ctx, kind, id)
	if err != nil {
		return err
	}
	if account.DisplayPicture != "" {
		s.discard(ctx, account.DisplayPicture)
	}
	s.logger.Info("account deleted", "kind", kind, "account_id", id)
	return nil
}

// SetPicture stores data as the account's display picture and removes the
// picture it replaces.
func (s *ProfileService) SetPicture(ctx context.Context, kind model.AccountKind, id string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", apierror.BadRequest("Image is required")
	}

	ref, err := s.images.Save(ctx, pictureFolder(kind), data)
	if err != nil {
		return "", err
	}

	previous, err := s.accounts.SetDisplayPicture(ctx, kind, id, ref)
	if err != nil {
		s.discard(ctx, ref)
		return "", err
	}
	if previous != "" {
		s.discard(ctx, previous)
	}
	return ref, nil
}

func (s *ProfileService) DeletePicture(ctx context.Context, kind model.AccountKind, id string) error {
	previous, err := s.accounts.SetDisplayPicture(ctx, kind, id, "")
	if err != nil {
		return err
	}
	if previous == "" {
		return apierror.NotFound("Image were not found")
	}
	s.discard(ctx, previous)
	return nil
}

func (s *ProfileService) discard(ctx context.Context, ref string) {
	if err := s.images.Delete(ctx, ref); err != nil {
		s.logger.Warn("picture cleanup failed", "ref", ref, "error", err)
	}
}

func trimProfile(req model.UpdateProfileRequest) model.UpdateProfileRequest {
	req.Name = strings.TrimSpace(req.Name)
	req.PhoneNumber = strings.TrimSpace(req.PhoneNumber)
	req.Username = strings.TrimSpace(req.Username)
	req.Address = strings.TrimSpace(req.Address)
	req.City = strings.TrimSpace(req.City)
	req.Country = strings.TrimSpace(req.Country)
	req.Category = strings.TrimSpace(req.Category)
	return req
}
