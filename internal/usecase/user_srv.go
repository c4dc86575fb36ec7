package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bus-tracker/internal/data/repository"
	"bus-tracker/internal/dto/request"
	"bus-tracker/internal/dto/response"
	"bus-tracker/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type UserService interface {
	UpdateProfile(ctx context.Context, userID uuid.UUID, req *request.UpdateProfileRequest) (*response.UserResponse, error)

	// ChangePassword verifies the current password, stores the new hash and
	// revokes every other session of the user. currentToken stays valid.
	ChangePassword(ctx context.Context, userID uuid.UUID, currentToken string, req *request.ChangePasswordRequest) error
}

type userService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewUserService(repo *repository.Repository, log *zap.Logger) UserService {
	return &userService{
		repo: repo,
		log:  log.With(zap.String("service", "user")),
	}
}

func (s *userService) UpdateProfile(ctx context.Context, userID uuid.UUID, req *request.UpdateProfileRequest) (*response.UserResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Update profile validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("%w: %s", ErrValidation, utils.FormatValidationErrors(errs))
	}

	user, err := s.repo.User.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.Email != nil && *req.Email != user.Email {
		taken, err := s.repo.User.FindByEmail(ctx, *req.Email)
		if err != nil {
			return nil, fmt.Errorf("check email: %w", err)
		}
		if taken != nil {
			return nil, ErrEmailTaken
		}
		user.Email = *req.Email
	}

	if err := s.save(user.ID, func() error {
		user.UpdatedAt = time.Now()
		return s.repo.User.Update(ctx, user)
	}); err != nil {
		return nil, err
	}

	s.log.Info("Profile updated", zap.String("user_id", user.ID.String()))

	resp := response.UserToResponse(user)
	return &resp, nil
}

func (s *userService) ChangePassword(ctx context.Context, userID uuid.UUID, currentToken string, req *request.ChangePasswordRequest) error {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Change password validation failed", zap.Any("errors", errs))
		return fmt.Errorf("%w: %s", ErrValidation, utils.FormatValidationErrors(errs))
	}

	keep, err := uuid.Parse(currentToken)
	if err != nil {
		return ErrInvalidToken
	}

	user, err := s.repo.User.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return ErrUserNotFound
	}

	if !utils.CheckPasswordHash(req.CurrentPassword, user.PasswordHash) {
		s.log.Warn("Wrong current password", zap.String("user_id", user.ID.String()))
		return ErrWrongPassword
	}

	hashed, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		s.log.Error("Failed to hash password", zap.Error(err))
		return fmt.Errorf("process password: %w", err)
	}

	if err := s.save(user.ID, func() error {
		user.PasswordHash = hashed
		user.UpdatedAt = time.Now()
		return s.repo.User.Update(ctx, user)
	}); err != nil {
		return err
	}

	revoked, err := s.repo.Session.RevokeOtherSessions(ctx, user.ID, keep)
	if err != nil {
		return fmt.Errorf("revoke sessions: %w", err)
	}

	s.log.Info("Password changed",
		zap.String("user_id", user.ID.String()),
		zap.Int64("sessions_revoked", revoked))
	return nil
}

// save runs update and maps repository outcomes onto service errors.
func (s *userService) save(userID uuid.UUID, update func() error) error {
	err := update()
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrDuplicate):
		// lost a race with another account claiming the email
		return ErrEmailTaken
	case errors.Is(err, repository.ErrNotFound):
		return ErrUserNotFound
	default:
		return fmt.Errorf("update user %s: %w", userID, err)
	}
}
