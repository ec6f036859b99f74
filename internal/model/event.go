package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Тип события аудита.
type EventType string

const (
	EventTypeBookingCreated   EventType = "booking_created"
	EventTypeBookingConfirmed EventType = "booking_confirmed"
	EventTypeBookingCancelled EventType = "booking_cancelled"
	EventTypeBookingDeleted   EventType = "booking_deleted"
)

// audit_events — след жизненного цикла записей.
// Записи удаляются из bookings физически, поэтому история отмен
// и удалений живёт только здесь.
type AuditEvent struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	EventType EventType `gorm:"type:varchar(64);not null;index"`

	BookingID string  `gorm:"type:varchar(64);index"`
	UserID    *string `gorm:"type:varchar(64);index"`

	// Снимок полей записи на момент события.
	Details datatypes.JSON

	CreatedAt time.Time `gorm:"not null;index"`
}

func (AuditEvent) TableName() string { return "audit_events" }
