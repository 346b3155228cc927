package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/kendall-kelly/mill-ops-console/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// UserService resolves the staff user behind an authenticated request
type UserService struct {
	db       *gorm.DB
	logger   *zap.Logger
	userInfo UserInfoFetcher
}

// NewUserService creates a user service. userInfo may be nil.
func NewUserService(db *gorm.DB, logger *zap.Logger, userInfo UserInfoFetcher) *UserService {
	return &UserService{db: db, logger: logger, userInfo: userInfo}
}

// ResolveActor returns the user with the given Auth0 id, creating it on first sight.
// New users are named from the Auth0 profile; when that lookup fails the subject is used.
func (s *UserService) ResolveActor(ctx context.Context, auth0ID, accessToken string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("auth0_id = ?", auth0ID).First(&user).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	user = models.User{Auth0ID: auth0ID, Name: auth0ID}
	if s.userInfo != nil {
		info, err := s.userInfo.GetUserInfo(ctx, accessToken)
		if err != nil {
			s.logger.Warn("failed to fetch auth0 profile", zap.String("auth0_id", auth0ID), zap.Error(err))
		} else {
			if info.Name != "" {
				user.Name = info.Name
			}
			user.Email = info.Email
		}
	}

	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return &user, nil
}

// Profile returns a staff user by id
func (s *UserService) Profile(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "User", ID: id}
		}
		return nil, err
	}
	return &user, nil
}

// UpdateProfile changes the display name and email of a staff user.
// Blank fields keep their current value.
func (s *UserService) UpdateProfile(ctx context.Context, id uint, name, email string) (*models.User, []Notice, error) {
	user, err := s.Profile(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	name, email = strings.TrimSpace(name), strings.TrimSpace(email)
	if email != "" {
		if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
			return nil, nil, invalid("Enter a valid email address.")
		}
	}
	if name == "" && email == "" {
		return user, []Notice{notice(NoticeInfo, "Nothing to update.")}, nil
	}

	if name != "" {
		user.Name = name
	}
	if email != "" {
		user.Email = email
	}
	if err := s.db.WithContext(ctx).Save(user).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to update profile: %w", err)
	}

	s.logger.Info("profile updated", zap.Uint("user_id", user.ID))
	return user, []Notice{notice(NoticeSuccess, "Profile updated successfully.")}, nil
}
