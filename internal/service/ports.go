package service

import (
	"context"

	"supashop-api/internal/cache"
	"supashop-api/internal/mail"
	"supashop-api/internal/model"
	"supashop-api/internal/repository"
)

// AccountStore is the credential store shared by users and merchants.
type AccountStore interface {
	Create(ctx context.Context, in model.NewAccount) (model.Account, error)
	FindByEmail(ctx context.Context, kind model.AccountKind, email string) (model.Account, error)
	FindByID(ctx context.Context, kind model.AccountKind, id string) (model.Account, error)
	FindByRefreshToken(ctx context.Context, kind model.AccountKind, token string) (model.Account, error)
	PrependRefreshToken(ctx context.Context, kind model.AccountKind, id string, token string) error
	RotateRefreshToken(ctx context.Context, kind model.AccountKind, id string, oldToken string, newToken string) (bool, error)
	RemoveRefreshToken(ctx context.Context, kind model.AccountKind, token string) (bool, error)
	SetVerificationCode(ctx context.Context, kind model.AccountKind, email string, code string) error
	ConfirmVerification(ctx context.Context, kind model.AccountKind, email string, code string) (bool, error)
	ClearVerificationCode(ctx context.Context, kind model.AccountKind, email string, code string) (bool, error)
	SetResetToken(ctx context.Context, kind model.AccountKind, email string, token string) (bool, error)
	ResetPassword(ctx context.Context, kind model.AccountKind, email string, token string, passwordHash string) (bool, error)
	UpdatePassword(ctx context.Context, kind model.AccountKind, id string, passwordHash string) error
	SetDisplayPicture(ctx context.Context, kind model.AccountKind, id string, ref string) (string, error)
	Delete(ctx context.Context, kind model.AccountKind, id string) (model.Account, error)
}

type UserStore interface {
	FindUser(ctx context.Context, id string) (model.User, error)
	UpdateProfile(ctx context.Context, id string, upd model.UpdateProfileRequest) (model.User, error)
}

type MerchantStore interface {
	FindMerchant(ctx context.Context, id string) (model.Merchant, error)
	UpdateProfile(ctx context.Context, id string, upd model.UpdateProfileRequest) (model.Merchant, error)
	ListStores(ctx context.Context, skip int, promotedOnly bool) ([]model.Merchant, error)
	ListStoresByCategory(ctx context.Context, category string, skip int) ([]model.Merchant, error)
}

type ProductStore interface {
	Create(ctx context.Context, p model.Product) (model.Product, error)
	FindByID(ctx context.Context, id string) (model.Product, error)
	FindOwned(ctx context.Context, merchantID string, id string) (model.Product, error)
	List(ctx context.Context, skip int) (model.ProductPage, error)
	ListByCategory(ctx context.Context, category string, skip int) (model.ProductPage, error)
	ListByMerchant(ctx context.Context, merchantID string, skip int) (model.ProductPage, error)
	Update(ctx context.Context, merchantID string, id string, req model.ProductRequest) (model.Product, error)
	Delete(ctx context.Context, merchantID string, id string) (model.Product, error)
	SetDisplayPicture(ctx context.Context, merchantID string, id string, ref string) (string, error)
	AddImage(ctx context.Context, merchantID string, id string, ref string) (model.Product, error)
	RemoveImage(ctx context.Context, merchantID string, id string, ref string) (bool, error)
	Categories(ctx context.Context) ([]string, error)
}

type CartStore interface {
	Add(ctx context.Context, userID string, productID string, quantity int) (model.CartItem, bool, error)
	List(ctx context.Context, userID string) ([]model.CartItem, error)
	SetQuantity(ctx context.Context, userID string, itemID string, quantity int) (model.CartItem, error)
	Remove(ctx context.Context, userID string, itemID string) error
}

type WishlistStore interface {
	Add(ctx context.Context, userID string, productID string) (model.WishlistItem, error)
	List(ctx context.Context, userID string) ([]model.WishlistItem, error)
	Remove(ctx context.Context, userID string, itemID string) error
	Clear(ctx context.Context, userID string) (int64, error)
}

type OrderStore interface {
	Create(ctx context.Context, userID string, address string, items []model.OrderItemRequest) (model.Order, error)
	ListByUser(ctx context.Context, userID string) ([]model.Order, error)
}

type ReviewStore interface {
	Add(ctx context.Context, target repository.ReviewTarget, id string, userID string, rating int, review string) (model.ReviewSummary, error)
	Remove(ctx context.Context, target repository.ReviewTarget, id string, userID string) (model.ReviewSummary, error)
}

type WaitlistStore interface {
	Join(ctx context.Context, email string) (model.WaitlistEntry, error)
}

// CodeScheduler records when an issued verification code must be cleared.
type CodeScheduler interface {
	Schedule(ctx context.Context, kind model.AccountKind, email string, code string) error
}

// Mailer delivers the account emails.
type Mailer interface {
	SendVerification(ctx context.Context, to string, data mail.VerificationData) error
	SendPasswordReset(ctx context.Context, to string, data mail.ResetData) error
}

// ResponseCache is the cache-aside layer in front of read endpoints.
type ResponseCache interface {
	Remember(ctx context.Context, key string, load cache.Loader) ([]byte, error)
}

type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(encoded string, plaintext string) (bool, error)
}

// Tokens mints and checks the three signed token kinds.
type Tokens interface {
	IssueAccess(claims model.AccountClaims) (string, error)
	IssueRefresh(claims model.AccountClaims) (string, error)
	IssueReset(kind model.AccountKind, email string) (string, error)
	ParseAccess(token string) (model.AccountClaims, error)
	ParseRefresh(token string) (model.AccountClaims, error)
	ParseReset(token string) (model.AccountKind, string, error)
}
