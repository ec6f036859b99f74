package model

import (
	"fmt"
	"strings"
	"time"
)

// schedule_rules — правила доступности терапевта.
// Одно правило описывает окно записи на конкретную календарную дату
// (без рекуррентного разворачивания: каждое повторение — отдельная запись).
type ScheduleRule struct {
	// Детерминированный составной ключ date|start|location|session_type,
	// если идентификатор не задан явно.
	ID string `gorm:"type:varchar(255);primaryKey"`

	// Календарная дата в формате дд-мм-гг, сравнивается точно.
	Date string `gorm:"type:varchar(16);not null;index"`

	// Время начала/окончания окна в формате ЧЧ:ММ.
	// Если оба значения нераспарсиваемы, окно — весь день 00:00–23:59.
	Start string `gorm:"type:varchar(8)"`
	End   string `gorm:"type:varchar(8)"`

	// Длительность сеанса в минутах; 0 → дефолт 50.
	Duration int `gorm:"not null;default:0"`
	// Шаг между началами слотов в минутах; 0 → равен Duration.
	Interval int `gorm:"not null;default:0"`

	// Локация: "any" (wildcard), "online" или точная строка адреса.
	Location string `gorm:"type:varchar(255)"`
	// Тип сеанса в свободной форме; нормализуется при матчинге.
	SessionType string `gorm:"type:varchar(255)"`

	// Tombstone: правило с Deleted=true удаляется при сохранении.
	// В базе не хранится.
	Deleted bool `gorm:"-"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (ScheduleRule) TableName() string { return "schedule_rules" }

// CompositeID возвращает детерминированный ключ правила.
func (r ScheduleRule) CompositeID() string {
	if id := strings.TrimSpace(r.ID); id != "" {
		return id
	}
	return fmt.Sprintf("%s|%s|%s|%s",
		strings.TrimSpace(r.Date),
		strings.TrimSpace(r.Start),
		strings.TrimSpace(r.Location),
		strings.TrimSpace(r.SessionType),
	)
}
