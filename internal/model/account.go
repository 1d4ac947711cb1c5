package model

import "time"

type AccountKind string

const (
	KindUser     AccountKind = "user"
	KindMerchant AccountKind = "merchant"
)

func (k AccountKind) Valid() bool {
	return k == KindUser || k == KindMerchant
}

// Label is the capitalised noun used in client-facing messages.
func (k AccountKind) Label() string {
	if k == KindMerchant {
		return "Merchant"
	}
	return "User"
}

// Account is the credential record shared by users and merchants. Secret
// fields never leave the process in JSON.
type Account struct {
	ID                 string      `json:"id"`
	Kind               AccountKind `json:"kind"`
	Name               string      `json:"name"`
	Email              string      `json:"email"`
	Username           string      `json:"username"`
	PhoneNumber        string      `json:"phone_number"`
	PasswordHash       string      `json:"-"`
	IsVerified         bool        `json:"isVerified"`
	VerificationCode   *string     `json:"-"`
	ResetPasswordToken *string     `json:"-"`
	RefreshTokens      []string    `json:"-"`
	DisplayPicture     string      `json:"dp,omitempty"`
	CreatedAt          time.Time   `json:"createdAt"`
	UpdatedAt          time.Time   `json:"updatedAt"`
}

// HasRefreshToken reports whether token is currently in the account's valid set.
func (a Account) HasRefreshToken(token string) bool {
	for _, t := range a.RefreshTokens {
		if t == token {
			return true
		}
	}
	return false
}

type MerchantDetails struct {
	Address    string   `json:"address"`
	City       string   `json:"city"`
	Country    string   `json:"country"`
	Category   string   `json:"category,omitempty"`
	IsPromoted bool     `json:"isPromoted"`
	Ratings    []Rating `json:"ratings"`
	Reviews    []Review `json:"reviews"`
}

type User struct {
	Account
	Addresses []string `json:"address"`
}

type Merchant struct {
	Account
	MerchantDetails
}

// PublicUser is the projection returned by the public user lookup.
type PublicUser struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	Username       string `json:"username"`
	PhoneNumber    string `json:"phone_number"`
	DisplayPicture string `json:"dp,omitempty"`
	IsVerified     bool   `json:"isVerified"`
}

// NewAccount is the input to account creation.
type NewAccount struct {
	Kind             AccountKind
	Name             string
	Email            string
	Username         string
	PhoneNumber      string
	PasswordHash     string
	VerificationCode string
	DisplayPicture   string
	Merchant         *MerchantDetails
}

type AccountClaims struct {
	ID    string      `json:"id"`
	Email string      `json:"email"`
	Name  string      `json:"name"`
	Kind  AccountKind `json:"kind"`
}
