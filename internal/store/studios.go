package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"studio-booking-backend/internal/model"
)

func (s *gormStore) ListStudios(ctx context.Context) ([]model.Studio, error) {
	var studios []model.Studio
	if err := s.db.WithContext(ctx).Order("created_at ASC").Find(&studios).Error; err != nil {
		return nil, fmt.Errorf("failed to list studios: %w", err)
	}
	return studios, nil
}

func (s *gormStore) CreateStudio(ctx context.Context, studio *model.Studio) error {
	if studio.Name == "" || studio.Slug == "" {
		return fmt.Errorf("%w: studio name and slug are required", ErrInvalid)
	}
	if err := s.db.WithContext(ctx).Create(studio).Error; err != nil {
		return fmt.Errorf("failed to create studio: %w", err)
	}
	return nil
}

func (s *gormStore) UpdateStudio(ctx context.Context, studio *model.Studio) error {
	res := s.db.WithContext(ctx).Model(&model.Studio{}).Where("id = ?", studio.ID).Updates(map[string]any{
		"name":        studio.Name,
		"slug":        studio.Slug,
		"description": studio.Description,
	})
	if res.Error != nil {
		return fmt.Errorf("failed to update studio: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: studio %s", ErrNotFound, studio.ID)
	}
	return nil
}

func (s *gormStore) DeleteStudio(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&model.Studio{ID: id})
	if res.Error != nil {
		return fmt.Errorf("failed to delete studio: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: studio %s", ErrNotFound, id)
	}
	return nil
}

// DefaultStudio returns the oldest studio. Public endpoints fall back to it
// when the caller does not name a studio.
func (s *gormStore) DefaultStudio(ctx context.Context) (*model.Studio, error) {
	var studio model.Studio
	err := s.db.WithContext(ctx).Order("created_at ASC").First(&studio).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: no studios configured", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load default studio: %w", err)
	}
	return &studio, nil
}
