package service

import (
	"context"
	"errors"
	"fmt"

	"compliance-tracker/internal/apperr"
	"compliance-tracker/internal/model"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService struct{ db *gorm.DB }

func NewAuthService(db *gorm.DB) *AuthService { return &AuthService{db: db} }

// Register creates an owner account together with its business. The user
// row, the business row and the business_id backfill commit together.
func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest) (*model.User, *model.Business, error) {
	var existing model.User
	err := s.db.WithContext(ctx).Where("email = ?", req.Email).First(&existing).Error
	if err == nil {
		return nil, nil, fmt.Errorf("%w: email already in use", apperr.ErrConflict)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, fmt.Errorf("check email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, fmt.Errorf("hash password: %w", err)
	}

	user := model.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         model.RoleOwner,
	}
	business := model.Business{Name: req.BusinessName}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return fmt.Errorf("create owner: %w", err)
		}
		business.OwnerID = user.ID
		if err := tx.Create(&business).Error; err != nil {
			return fmt.Errorf("create business: %w", err)
		}
		if err := tx.Model(&user).Update("business_id", business.ID).Error; err != nil {
			return fmt.Errorf("attach business: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	user.BusinessID = &business.ID
	return &user, &business, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*model.User, error) {
	var user model.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, fmt.Errorf("%w: invalid credentials", apperr.ErrUnauthenticated)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, fmt.Errorf("%w: invalid credentials", apperr.ErrUnauthenticated)
	}
	return &user, nil
}
