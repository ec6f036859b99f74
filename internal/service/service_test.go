package service

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/interair/filmtherapy-chat-bot/internal/model"
	"github.com/interair/filmtherapy-chat-bot/internal/repository"
)

type testEnv struct {
	db           *gorm.DB
	schedule     *repository.GormScheduleRepository
	bookings     *repository.GormBookingRepository
	events       *repository.GormEventRepository
	availability *AvailabilityService
	reservations *ReservationService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := model.AutoMigrate(db); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}

	schedule := repository.NewGormScheduleRepository(db)
	bookings := repository.NewGormBookingRepository(db)
	events := repository.NewGormEventRepository(db)

	return &testEnv{
		db:           db,
		schedule:     schedule,
		bookings:     bookings,
		events:       events,
		availability: NewAvailabilityService(schedule, bookings, nil),
		reservations: NewReservationService(bookings, events, nil),
	}
}
