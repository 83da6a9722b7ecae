// internal/services/user_service.go
package services

import (
	"context"
	"fmt"

	"github.com/farmfresh/farm-backend/internal/database"
	"github.com/farmfresh/farm-backend/internal/models"
	"github.com/farmfresh/farm-backend/internal/utils"
)

type UserService struct {
	factory *database.Factory
}

type UpdateUserRequest struct {
	Username string          `json:"username,omitempty" validate:"omitempty,username"`
	Email    string          `json:"email,omitempty" validate:"omitempty,email"`
	Role     models.Role     `json:"role,omitempty" validate:"omitempty,role"`
	Profile  *models.Profile `json:"profile,omitempty"`
}

func NewUserService(factory *database.Factory) *UserService {
	return &UserService{factory: factory}
}

func (s *UserService) ListUsers(ctx context.Context, role models.Role) ([]*models.User, error) {
	db, err := s.factory.Get(ctx)
	if err != nil {
		return nil, err
	}
	return db.FindUsers(ctx, database.UserFilter{Role: role})
}

func (s *UserService) GetUser(ctx context.Context, id string) (*models.User, error) {
	db, err := s.factory.Get(ctx)
	if err != nil {
		return nil, err
	}
	user, err := db.FindUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}
	return user, nil
}

// UpdateUser applies a partial update. Non-admin callers can only change
// their own profile fields; role changes are reserved for admins.
func (s *UserService) UpdateUser(ctx context.Context, callerID string, callerRole models.Role, id string, req *UpdateUserRequest) (*models.User, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if callerRole != models.RoleAdmin && callerID != id {
		return nil, ErrForbidden
	}

	updates := map[string]any{}
	if req.Username != "" {
		updates["username"] = req.Username
	}
	if req.Email != "" {
		updates["email"] = req.Email
	}
	if req.Role != "" {
		if callerRole != models.RoleAdmin {
			return nil, ErrForbidden
		}
		updates["role"] = string(req.Role)
	}
	if req.Profile != nil {
		updates["profile"] = req.Profile
	}

	db, err := s.factory.Get(ctx)
	if err != nil {
		return nil, err
	}

	user, err := db.UpdateUser(ctx, id, updates)
	if err != nil {
		if database.IsDuplicateKey(err) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}
	return user, nil
}

// DeleteUser removes an account. Admin accounts can never be deleted, and
// the caller must be an admin.
func (s *UserService) DeleteUser(ctx context.Context, callerRole models.Role, id string) error {
	if callerRole != models.RoleAdmin {
		return ErrForbidden
	}

	db, err := s.factory.Get(ctx)
	if err != nil {
		return err
	}

	user, err := db.FindUserByID(ctx, id)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrNotFound
	}
	if user.Role == models.RoleAdmin {
		return ErrAdminImmutable
	}

	deleted, err := db.DeleteUser(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}
