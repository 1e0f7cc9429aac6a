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

// StaffService manages a business's staff accounts and serves as the staff
// directory the task engine validates assignments against.
type StaffService struct{ db *gorm.DB }

func NewStaffService(db *gorm.DB) *StaffService { return &StaffService{db: db} }

func (s *StaffService) Create(ctx context.Context, businessID int, req model.CreateStaffRequest) (*model.User, error) {
	var existing model.User
	err := s.db.WithContext(ctx).Where("email = ?", req.Email).First(&existing).Error
	if err == nil {
		return nil, fmt.Errorf("%w: email already in use", apperr.ErrConflict)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	staff := model.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         model.RoleStaff,
		BusinessID:   &businessID,
	}
	if err := s.db.WithContext(ctx).Create(&staff).Error; err != nil {
		return nil, fmt.Errorf("create staff: %w", err)
	}
	return &staff, nil
}

func (s *StaffService) List(ctx context.Context, businessID int) ([]model.User, error) {
	var staff []model.User
	err := s.db.WithContext(ctx).
		Where("business_id = ? AND role = ?", businessID, model.RoleStaff).
		Order("created_at DESC").
		Find(&staff).Error
	if err != nil {
		return nil, fmt.Errorf("list staff: %w", err)
	}
	return staff, nil
}

func (s *StaffService) Get(ctx context.Context, businessID, staffID int) (*model.User, error) {
	staff, err := s.Lookup(ctx, staffID, businessID)
	if err != nil {
		return nil, err
	}
	if staff == nil {
		return nil, fmt.Errorf("%w: staff member", apperr.ErrNotFound)
	}
	return staff, nil
}

// Lookup implements the StaffDirectory used by the task engine. Nil without
// error means no staff user with that id exists in the business.
func (s *StaffService) Lookup(ctx context.Context, staffID, businessID int) (*model.User, error) {
	var staff model.User
	err := s.db.WithContext(ctx).
		Where("id = ? AND business_id = ? AND role = ?", staffID, businessID, model.RoleStaff).
		First(&staff).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup staff: %w", err)
	}
	return &staff, nil
}
