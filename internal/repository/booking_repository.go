package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/interair/filmtherapy-chat-bot/internal/calendar"
	"github.com/interair/filmtherapy-chat-bot/internal/model"
)

// ErrSlotConflict возвращается, когда вставка записи проигрывает проверке
// пересечений или уникальному индексу по ключу слота.
var ErrSlotConflict = errors.New("slot conflict")

type BookingRepository interface {
	// GetForDate возвращает записи, начинающиеся в указанные UTC-сутки.
	GetForDate(ctx context.Context, date time.Time) ([]model.Booking, error)
	// GetRange возвращает записи, у которых start лежит в [from, to).
	// Фильтр привязан к началу записи; хвосты более ранних записей
	// вызывающая сторона учитывает расширением from.
	GetRange(ctx context.Context, from, to time.Time) ([]model.Booking, error)
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	GetByUser(ctx context.Context, userID string) ([]model.Booking, error)
	GetAll(ctx context.Context) ([]model.Booking, error)
	// Set вставляет или заменяет запись по id.
	Set(ctx context.Context, booking *model.Booking) error
	// Patch обновляет отдельные поля; gorm.ErrRecordNotFound, если id нет.
	Patch(ctx context.Context, id string, fields map[string]any) error
	// Delete удаляет запись; false, если её не было.
	Delete(ctx context.Context, id string) (bool, error)
	// CreateIfFree атомарно проверяет пересечения в [checkFrom, checkTo)
	// и вставляет запись в одной транзакции. При конфликте — ErrSlotConflict.
	CreateIfFree(ctx context.Context, booking *model.Booking, checkFrom, checkTo time.Time) error
}

type GormBookingRepository struct {
	db *gorm.DB
}

func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

func (r *GormBookingRepository) GetForDate(ctx context.Context, date time.Time) ([]model.Booking, error) {
	day := calendar.EnsureUTC(date).Truncate(24 * time.Hour)
	return r.GetRange(ctx, day, day.Add(24*time.Hour))
}

func (r *GormBookingRepository) GetRange(ctx context.Context, from, to time.Time) ([]model.Booking, error) {
	var bookings []model.Booking
	err := r.db.WithContext(ctx).
		Where("starts_at >= ? AND starts_at < ?", calendar.EnsureUTC(from), calendar.EnsureUTC(to)).
		Order("starts_at").
		Find(&bookings).Error
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *GormBookingRepository) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	var b model.Booking
	if err := r.db.WithContext(ctx).First(&b, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *GormBookingRepository) GetByUser(ctx context.Context, userID string) ([]model.Booking, error) {
	var bookings []model.Booking
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("starts_at").
		Find(&bookings).Error
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *GormBookingRepository) GetAll(ctx context.Context) ([]model.Booking, error) {
	var bookings []model.Booking
	err := r.db.WithContext(ctx).
		Order("starts_at").
		Find(&bookings).Error
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *GormBookingRepository) Set(ctx context.Context, booking *model.Booking) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(booking).Error
}

func (r *GormBookingRepository) Patch(ctx context.Context, id string, fields map[string]any) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var b model.Booking
		if err := tx.First(&b, "id = ?", id).Error; err != nil {
			return err
		}
		return tx.Model(&model.Booking{}).
			Where("id = ?", id).
			Updates(fields).Error
	})
}

func (r *GormBookingRepository) Delete(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&model.Booking{}, "id = ?", id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *GormBookingRepository) CreateIfFree(ctx context.Context, booking *model.Booking, checkFrom, checkTo time.Time) error {
	candidate := calendar.TimeRange{Start: booking.StartsAt, End: booking.EndsAt}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.Where("starts_at >= ? AND starts_at < ?",
			calendar.EnsureUTC(checkFrom), calendar.EnsureUTC(checkTo))
		// sqlite не поддерживает SELECT ... FOR UPDATE, там транзакция
		// и так сериализует писателей.
		if tx.Dialector.Name() == "postgres" {
			q = q.Clauses(clause.Locking{Strength: "UPDATE"})
		}

		var existing []model.Booking
		if err := q.Find(&existing).Error; err != nil {
			return err
		}
		for _, b := range existing {
			if calendar.Overlaps(candidate, calendar.TimeRange{Start: b.StartsAt, End: b.EndsAt}) {
				return ErrSlotConflict
			}
		}

		if err := tx.Create(booking).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrSlotConflict
			}
			return err
		}
		return nil
	})
}
