package service

import (
	"context"

	"forum/internal/middleware"
	"forum/internal/models"
	"forum/internal/repository"
	"forum/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

type UserService struct {
	users repository.UserRepository
}

func NewUserService(users repository.UserRepository) *UserService {
	return &UserService{users: users}
}

func (s *UserService) GetProfile(ctx context.Context, userID uint) (*models.User, error) {
	return s.users.GetByID(ctx, userID)
}

// UpdateProfile changes the bio when the form carries one.
func (s *UserService) UpdateProfile(ctx context.Context, userID uint, form validation.ProfileForm) (*models.User, error) {
	form.Normalize()
	if fieldErrs := validation.Struct(&form); fieldErrs != nil {
		return nil, models.NewFieldValidationError(fieldErrs)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if form.Bio == nil {
		return user, nil
	}

	user.Bio = *form.Bio
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	middleware.Logger.InfoContext(ctx, "profile updated", "user_id", user.ID)
	return user, nil
}

// ChangePassword replaces the password after re-checking the current one.
func (s *UserService) ChangePassword(ctx context.Context, userID uint, form validation.ChangePasswordForm) error {
	if fieldErrs := validation.Struct(&form); fieldErrs != nil {
		return models.NewFieldValidationError(fieldErrs)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(form.CurrentPassword)) != nil {
		return &models.AppError{
			Code:    models.CodeValidation,
			Message: "Incorrect current password",
			Fields:  map[string]string{"current_password": "Incorrect current password."},
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(form.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return models.NewInternalError(err)
	}
	user.Password = string(hash)
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}
	middleware.Logger.InfoContext(ctx, "password changed", "user_id", user.ID)
	return nil
}
