package app

import (
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/interair/filmtherapy-chat-bot/internal/config"
	"github.com/interair/filmtherapy-chat-bot/internal/repository"
	"github.com/interair/filmtherapy-chat-bot/internal/service"
)

// App — собранный движок бронирования. Бот и админка (отдельные слои,
// у ядра нет собственного транспорта) работают через эти сервисы.
type App struct {
	Availability *service.AvailabilityService
	Reservations *service.ReservationService
	Schedule     repository.ScheduleRepository
	Locations    repository.LocationRepository
	Events       repository.EventRepository
}

// New связывает репозитории и сервисы поверх готового подключения к БД.
func New(db *gorm.DB, cfg *config.Config, log *slog.Logger) *App {
	var scheduleRepo repository.ScheduleRepository = repository.NewGormScheduleRepository(db)
	if cfg.ScheduleCacheTTLSec > 0 {
		scheduleRepo = repository.NewCachedScheduleRepository(
			scheduleRepo,
			time.Duration(cfg.ScheduleCacheTTLSec)*time.Second,
		)
	}

	bookingRepo := repository.NewGormBookingRepository(db)
	eventRepo := repository.NewGormEventRepository(db)
	locationRepo := repository.NewGormLocationRepository(db)

	return &App{
		Availability: service.NewAvailabilityService(scheduleRepo, bookingRepo, log),
		Reservations: service.NewReservationService(bookingRepo, eventRepo, log),
		Schedule:     scheduleRepo,
		Locations:    locationRepo,
		Events:       eventRepo,
	}
}
