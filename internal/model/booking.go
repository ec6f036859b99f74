package model

import (
	"fmt"
	"time"
)

type BookingStatus string

const (
	BookingStatusPendingPayment BookingStatus = "pending_payment"
	BookingStatusConfirmed      BookingStatus = "confirmed"
)

// bookings — подтверждённые и ожидающие оплаты записи.
// Отмена и админ-удаление убирают запись физически; история остаётся
// в таблице audit_events.
type Booking struct {
	ID     string `gorm:"type:varchar(64);primaryKey"`
	UserID string `gorm:"type:varchar(64);not null;index"`

	Name  string  `gorm:"type:varchar(255)"`
	Phone *string `gorm:"type:varchar(32)"`

	// Идентификатор слота, из которого создана запись.
	SlotID string `gorm:"type:varchar(255)"`
	// Канонический ключ слота location|session_type|start.
	// Уникальный индекс — страховка от двойного бронирования на уровне БД.
	SlotKey string `gorm:"type:varchar(255);not null;uniqueIndex"`

	StartsAt time.Time `gorm:"not null;index"`
	EndsAt   time.Time `gorm:"not null"`

	// nil — онлайн-сеанс, иначе точная локация.
	Location    *string `gorm:"type:varchar(255)"`
	SessionType string  `gorm:"type:varchar(255)"`

	Status BookingStatus `gorm:"type:varchar(32);not null;index"`
	Price  float64       `gorm:"not null"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Booking) TableName() string { return "bookings" }

// SlotKeyFor строит канонический ключ слота. Для онлайн-сеансов
// (location == nil) в ключе используется литерал "online".
func SlotKeyFor(location *string, sessionType string, start time.Time) string {
	loc := "online"
	if location != nil && *location != "" {
		loc = *location
	}
	return fmt.Sprintf("%s|%s|%s", loc, sessionType, start.UTC().Format(time.RFC3339))
}
