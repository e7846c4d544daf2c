package api

import (
	"context"

	"github.com/dmitrijs2005/harvesthub/internal/client/models"
)

// Client is the set of backend operations the controller needs.
type Client interface {
	Login(ctx context.Context, email, password string) (AuthResult, error)
	Register(ctx context.Context, req RegisterRequest) (AuthResult, error)
	Profile(ctx context.Context, token string) (models.User, error)
	ListFood(ctx context.Context, token string) ([]models.FoodListing, error)
	PostFood(ctx context.Context, token string, form models.FoodForm) (PostResult, error)
	ClaimFood(ctx context.Context, token string, foodID int64, idempotencyKey string) (string, error)
}

// AuthResult is the body of a successful /login or /register.
type AuthResult struct {
	User  models.User `json:"user"`
	Token string      `json:"token"`
}

type RegisterRequest struct {
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Role     models.Role `json:"role"`
}

// PostResult is the body of a successful POST /food. Current servers reply
// with a message only; Listing is set when the created record is echoed back.
type PostResult struct {
	Listing *models.FoodListing
	Message string
}
