package model

import "time"

// locations — справочник очных адресов, которым управляет терапевт.
type Location struct {
	Name string `gorm:"type:varchar(255);primaryKey"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Location) TableName() string { return "locations" }
