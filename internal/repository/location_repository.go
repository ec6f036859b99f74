package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/interair/filmtherapy-chat-bot/internal/model"
)

type LocationRepository interface {
	GetAll(ctx context.Context) ([]model.Location, error)
	Upsert(ctx context.Context, name string) error
	Delete(ctx context.Context, name string) (bool, error)
}

type GormLocationRepository struct {
	db *gorm.DB
}

func NewGormLocationRepository(db *gorm.DB) *GormLocationRepository {
	return &GormLocationRepository{db: db}
}

func (r *GormLocationRepository) GetAll(ctx context.Context) ([]model.Location, error) {
	var locations []model.Location
	err := r.db.WithContext(ctx).Order("name").Find(&locations).Error
	if err != nil {
		return nil, err
	}
	return locations, nil
}

func (r *GormLocationRepository) Upsert(ctx context.Context, name string) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(&model.Location{Name: name}).Error
}

func (r *GormLocationRepository) Delete(ctx context.Context, name string) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&model.Location{}, "name = ?", name)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
