package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/interair/filmtherapy-chat-bot/internal/model"
)

type ScheduleRepository interface {
	// GetAll возвращает все правила расписания, отсортированные по (date, start).
	GetAll(ctx context.Context) ([]model.ScheduleRule, error)
	// Save выполняет выборочное сохранение: правила апсертятся по составному
	// ключу, удаляются только правила с флагом Deleted. Правила, отсутствующие
	// в наборе, не трогаются — это не полная замена.
	Save(ctx context.Context, rules []model.ScheduleRule) error
}

// Реализация на GORM.
type GormScheduleRepository struct {
	db *gorm.DB
}

func NewGormScheduleRepository(db *gorm.DB) *GormScheduleRepository {
	return &GormScheduleRepository{db: db}
}

func (r *GormScheduleRepository) GetAll(ctx context.Context) ([]model.ScheduleRule, error) {
	var rules []model.ScheduleRule
	err := r.db.WithContext(ctx).
		Order("date, start").
		Find(&rules).Error
	if err != nil {
		return nil, err
	}
	return rules, nil
}

func (r *GormScheduleRepository) Save(ctx context.Context, rules []model.ScheduleRule) error {
	// Дедупликация по составному ключу: последнее вхождение выигрывает.
	upserts := make(map[string]model.ScheduleRule)
	var order []string
	var tombstones []string

	for _, rule := range rules {
		id := rule.CompositeID()
		if id == "|||" {
			// Полностью пустое правило, сохранять нечего.
			continue
		}
		if rule.Deleted {
			delete(upserts, id)
			tombstones = append(tombstones, id)
			continue
		}
		if _, seen := upserts[id]; !seen {
			order = append(order, id)
		}
		rule.ID = id
		upserts[id] = rule
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, id := range tombstones {
			if err := tx.Delete(&model.ScheduleRule{}, "id = ?", id).Error; err != nil {
				return err
			}
		}
		for _, id := range order {
			rule := upserts[id]
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "id"}},
				UpdateAll: true,
			}).Create(&rule).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}
