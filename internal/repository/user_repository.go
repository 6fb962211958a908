package repository

import (
	"context"

	"pos/internal/domain/model"
)

type UserRepository interface {
	FindByID(ctx context.Context, userID int64) (model.User, error)

	FindByEmail(ctx context.Context, email string) (model.User, error)

	Create(ctx context.Context, u model.User) (model.User, error)
}
