package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/interair/filmtherapy-chat-bot/internal/calendar"
	"github.com/interair/filmtherapy-chat-bot/internal/model"
	"github.com/interair/filmtherapy-chat-bot/internal/repository"
)

var (
	// ErrSlotTaken — запрошенный слот пересекается с существующей записью.
	ErrSlotTaken = errors.New("slot already booked")
	// ErrBookingNotFound — операция адресует несуществующую запись.
	ErrBookingNotFound = errors.New("booking not found")
	// ErrCancellationWindow — отмена менее чем за 24 часа до начала.
	ErrCancellationWindow = errors.New("cannot cancel less than 24 hours before start")
)

const (
	defaultPrice = 100

	// Политика отмены: не позднее чем за сутки до начала.
	cancellationLead = 24 * time.Hour

	// Насколько расширяем окно поиска конфликтов назад: запрос по start
	// не видит записи, начавшиеся раньше, но залезающие в слот хвостом.
	conflictLookback = 6 * time.Hour
)

// CancellationReceipt — результат отмены или удаления записи.
// Заполняется ровно одно из полей времени, по виду операции.
type CancellationReceipt struct {
	ID string `json:"id"`
	// "canceled" при отмене клиентом, "deleted" при удалении админом.
	Status string `json:"status"`
	// UTC, ISO-8601 c суффиксом Z.
	CanceledAt string `json:"canceled_at,omitempty"`
	DeletedAt  string `json:"deleted_at,omitempty"`
}

// ReservationService реализует жизненный цикл записи:
// создание → подтверждение оплаты → отмена / админ-удаление.
type ReservationService struct {
	bookings repository.BookingRepository
	events   repository.EventRepository
	log      *slog.Logger
}

func NewReservationService(
	bookings repository.BookingRepository,
	events repository.EventRepository,
	log *slog.Logger,
) *ReservationService {
	if log == nil {
		log = slog.Default()
	}
	return &ReservationService{
		bookings: bookings,
		events:   events,
		log:      log,
	}
}

// CreateReservation бронирует слот. Проверка пересечений и вставка выполняются
// в одной транзакции; страховкой служит уникальный ключ слота. На конфликт —
// ErrSlotTaken. Новая запись создаётся в статусе pending_payment.
func (s *ReservationService) CreateReservation(ctx context.Context, userID string, slot Slot, name, phone string, price float64) (*model.Booking, error) {
	start := calendar.EnsureUTC(slot.Start).Truncate(time.Second)
	end := calendar.EnsureUTC(slot.End).Truncate(time.Second)
	if !start.Before(end) {
		return nil, fmt.Errorf("create booking: %w", calendar.ErrInvalidTimeRange)
	}
	if price <= 0 {
		price = defaultPrice
	}

	var phonePtr *string
	if phone != "" {
		phonePtr = &phone
	}

	booking := &model.Booking{
		ID:          fmt.Sprintf("b-%d-%s", time.Now().Unix(), userID),
		UserID:      userID,
		Name:        name,
		Phone:       phonePtr,
		SlotID:      slot.ID,
		SlotKey:     model.SlotKeyFor(slot.Location, slot.SessionType, start),
		StartsAt:    start,
		EndsAt:      end,
		Location:    slot.Location,
		SessionType: slot.SessionType,
		Status:      model.BookingStatusPendingPayment,
		Price:       price,
	}

	err := s.bookings.CreateIfFree(ctx, booking, start.Add(-conflictLookback), end)
	if err != nil {
		if errors.Is(err, repository.ErrSlotConflict) {
			return nil, ErrSlotTaken
		}
		return nil, fmt.Errorf("create booking: %w", err)
	}

	s.recordEvent(ctx, model.EventTypeBookingCreated, booking)
	s.log.Info("booking created",
		"booking_id", booking.ID, "user_id", userID, "start", isoZ(start))
	return booking, nil
}

// ConfirmPayment переводит запись в статус confirmed.
func (s *ReservationService) ConfirmPayment(ctx context.Context, bookingID string) (*model.Booking, error) {
	err := s.bookings.Patch(ctx, bookingID, map[string]any{
		"status": model.BookingStatusConfirmed,
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("confirm booking %s: %w", bookingID, err)
	}

	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("reload booking %s: %w", bookingID, err)
	}

	s.recordEvent(ctx, model.EventTypeBookingConfirmed, booking)
	return booking, nil
}

// CancelBooking отменяет запись клиента. Действует правило 24 часов:
// при меньшем запасе времени возвращается ErrCancellationWindow, запись
// остаётся нетронутой, возврата нет.
func (s *ReservationService) CancelBooking(ctx context.Context, bookingID string) (*CancellationReceipt, error) {
	booking, err := s.getExisting(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.StartsAt.IsZero() {
		// Запись без времени начала не поддаётся политике отмены.
		return nil, ErrBookingNotFound
	}

	now := time.Now().UTC()
	if booking.StartsAt.Sub(now) < cancellationLead {
		return nil, ErrCancellationWindow
	}

	if err := s.remove(ctx, booking, model.EventTypeBookingCancelled); err != nil {
		return nil, err
	}

	return &CancellationReceipt{
		ID:         bookingID,
		Status:     "canceled",
		CanceledAt: isoZ(now),
	}, nil
}

// AdminDeleteBooking удаляет запись без проверки запаса времени
// (привилегированная операция).
func (s *ReservationService) AdminDeleteBooking(ctx context.Context, bookingID string) (*CancellationReceipt, error) {
	booking, err := s.getExisting(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if err := s.remove(ctx, booking, model.EventTypeBookingDeleted); err != nil {
		return nil, err
	}

	return &CancellationReceipt{
		ID:        bookingID,
		Status:    "deleted",
		DeletedAt: isoZ(time.Now().UTC()),
	}, nil
}

// ListUserBookings возвращает записи одного клиента.
func (s *ReservationService) ListUserBookings(ctx context.Context, userID string) ([]model.Booking, error) {
	return s.bookings.GetByUser(ctx, userID)
}

// ListAllBookings возвращает страницу всех записей для админского списка.
func (s *ReservationService) ListAllBookings(ctx context.Context, page, pageSize int) (calendar.Page[model.Booking], error) {
	all, err := s.bookings.GetAll(ctx)
	if err != nil {
		return calendar.Page[model.Booking]{}, err
	}
	return calendar.Paginate(all, page, pageSize), nil
}

func (s *ReservationService) getExisting(ctx context.Context, bookingID string) (*model.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("load booking %s: %w", bookingID, err)
	}
	return booking, nil
}

func (s *ReservationService) remove(ctx context.Context, booking *model.Booking, event model.EventType) error {
	existed, err := s.bookings.Delete(ctx, booking.ID)
	if err != nil {
		return fmt.Errorf("delete booking %s: %w", booking.ID, err)
	}
	if !existed {
		// Параллельная двойная отмена: запись уже убрали, считаем no-op.
		return ErrBookingNotFound
	}
	s.recordEvent(ctx, event, booking)
	s.log.Info("booking removed", "booking_id", booking.ID, "event", string(event))
	return nil
}

// recordEvent пишет след аудита. Ошибка аудита не должна ломать основную
// операцию, поэтому только логируется.
func (s *ReservationService) recordEvent(ctx context.Context, eventType model.EventType, booking *model.Booking) {
	details, err := json.Marshal(map[string]any{
		"start":        isoZ(booking.StartsAt),
		"end":          isoZ(booking.EndsAt),
		"location":     booking.Location,
		"session_type": booking.SessionType,
		"status":       booking.Status,
		"price":        booking.Price,
	})
	if err != nil {
		s.log.Debug("marshal audit details", "booking_id", booking.ID, "error", err)
		return
	}

	userID := booking.UserID
	event := &model.AuditEvent{
		EventType: eventType,
		BookingID: booking.ID,
		UserID:    &userID,
		Details:   datatypes.JSON(details),
	}
	if err := s.events.Record(ctx, event); err != nil {
		s.log.Debug("record audit event", "booking_id", booking.ID, "error", err)
	}
}

// isoZ форматирует время как UTC ISO-8601 с литеральным суффиксом Z —
// формат всех времён, пересекающих границу движка.
func isoZ(t time.Time) string {
	return t.UTC().Truncate(time.Second).Format("2006-01-02T15:04:05Z")
}
