package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/interair/filmtherapy-chat-bot/internal/model"
)

func slotAt(start time.Time, location string) Slot {
	var loc *string
	if location != "" {
		loc = &location
	}
	return Slot{
		ID:          start.Format(time.RFC3339) + "|" + orOnline(location) + "|Очно",
		Start:       start,
		End:         start.Add(time.Hour),
		Location:    loc,
		SessionType: "Очно",
	}
}

func orOnline(location string) string {
	if location == "" {
		return "online"
	}
	return location
}

func TestCreateReservation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	start := day.Add(10 * time.Hour)
	booking, err := env.reservations.CreateReservation(ctx, "42", slotAt(start, "LocA"), "Анна", "+3161234", 0)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if booking.Status != model.BookingStatusPendingPayment {
		t.Fatalf("status = %q, want pending_payment", booking.Status)
	}
	if booking.Price != 100 {
		t.Fatalf("price = %v, want default 100", booking.Price)
	}
	if !booking.StartsAt.Equal(start) {
		t.Fatalf("starts at %v, want %v", booking.StartsAt, start)
	}
	if booking.Location == nil || *booking.Location != "LocA" {
		t.Fatalf("location = %v", booking.Location)
	}

	stored, err := env.bookings.GetByID(ctx, booking.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if stored.UserID != "42" || stored.Name != "Анна" {
		t.Fatalf("stored booking: %+v", stored)
	}

	events, err := env.events.ListByBooking(ctx, booking.ID)
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(events) != 1 || events[0].EventType != model.EventTypeBookingCreated {
		t.Fatalf("expected booking_created audit event, got %+v", events)
	}
}

func TestCreateReservation_Conflict(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	start := day.Add(10 * time.Hour)
	if _, err := env.reservations.CreateReservation(ctx, "42", slotAt(start, "LocA"), "Анна", "", 100); err != nil {
		t.Fatalf("first create: %v", err)
	}

	_, err := env.reservations.CreateReservation(ctx, "43", slotAt(start, "LocA"), "Борис", "", 100)
	if !errors.Is(err, ErrSlotTaken) {
		t.Fatalf("expected ErrSlotTaken, got %v", err)
	}

	// Пересечение без совпадения ключа слота тоже отклоняется.
	overlapping := slotAt(start.Add(30*time.Minute), "LocA")
	_, err = env.reservations.CreateReservation(ctx, "44", overlapping, "Вера", "", 100)
	if !errors.Is(err, ErrSlotTaken) {
		t.Fatalf("expected ErrSlotTaken for overlap, got %v", err)
	}

	// Запись, начавшаяся раньше и залезающая в слот хвостом, видна
	// благодаря расширенному окну поиска.
	late := slotAt(start.Add(-2*time.Hour), "LocA")
	late.End = start.Add(30 * time.Minute)
	_, err = env.reservations.CreateReservation(ctx, "45", late, "Глеб", "", 100)
	if !errors.Is(err, ErrSlotTaken) {
		t.Fatalf("expected ErrSlotTaken for tail overlap, got %v", err)
	}
}

func TestConfirmPayment(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	booking, err := env.reservations.CreateReservation(ctx, "42", slotAt(day.Add(10*time.Hour), "LocA"), "Анна", "", 100)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	confirmed, err := env.reservations.ConfirmPayment(ctx, booking.ID)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if confirmed.Status != model.BookingStatusConfirmed {
		t.Fatalf("status = %q, want confirmed", confirmed.Status)
	}

	_, err = env.reservations.ConfirmPayment(ctx, "missing")
	if !errors.Is(err, ErrBookingNotFound) {
		t.Fatalf("confirm of missing id: %v", err)
	}
}

func TestCancelBooking_FarEnough(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	start := time.Now().UTC().Add(72 * time.Hour).Truncate(time.Second)
	booking, err := env.reservations.CreateReservation(ctx, "42", slotAt(start, "LocA"), "Анна", "", 100)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	receipt, err := env.reservations.CancelBooking(ctx, booking.ID)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if receipt.Status != "canceled" || receipt.ID != booking.ID {
		t.Fatalf("receipt: %+v", receipt)
	}
	if receipt.CanceledAt == "" || receipt.CanceledAt[len(receipt.CanceledAt)-1] != 'Z' {
		t.Fatalf("canceled_at must be ISO-8601 with Z suffix, got %q", receipt.CanceledAt)
	}
	if receipt.DeletedAt != "" {
		t.Fatalf("deleted_at set on client cancel: %+v", receipt)
	}

	raw, err := json.Marshal(receipt)
	if err != nil {
		t.Fatalf("marshal receipt: %v", err)
	}
	if !strings.Contains(string(raw), `"canceled_at"`) || strings.Contains(string(raw), `"deleted_at"`) {
		t.Fatalf("unexpected receipt JSON: %s", raw)
	}

	// Запись удалена физически.
	if _, err := env.reservations.CancelBooking(ctx, booking.ID); !errors.Is(err, ErrBookingNotFound) {
		t.Fatalf("second cancel: %v", err)
	}

	events, err := env.events.ListByBooking(ctx, booking.ID)
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	// created + cancelled: история переживает удаление записи.
	if len(events) != 2 || events[1].EventType != model.EventTypeBookingCancelled {
		t.Fatalf("expected audit trail, got %+v", events)
	}
}

func TestCancelBooking_InsideWindow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	start := time.Now().UTC().Add(time.Hour).Truncate(time.Second)
	booking, err := env.reservations.CreateReservation(ctx, "42", slotAt(start, "LocA"), "Анна", "", 100)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err = env.reservations.CancelBooking(ctx, booking.ID)
	if !errors.Is(err, ErrCancellationWindow) {
		t.Fatalf("expected ErrCancellationWindow, got %v", err)
	}

	// Запись осталась нетронутой.
	stored, err := env.bookings.GetByID(ctx, booking.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if stored.Status != model.BookingStatusPendingPayment {
		t.Fatalf("booking mutated by rejected cancel: %+v", stored)
	}
}

func TestCancelBooking_Missing(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.reservations.CancelBooking(context.Background(), "missing")
	if !errors.Is(err, ErrBookingNotFound) {
		t.Fatalf("expected ErrBookingNotFound, got %v", err)
	}
}

func TestAdminDeleteBooking_IgnoresLeadTime(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	start := time.Now().UTC().Add(time.Hour).Truncate(time.Second)
	booking, err := env.reservations.CreateReservation(ctx, "42", slotAt(start, "LocA"), "Анна", "", 100)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	receipt, err := env.reservations.AdminDeleteBooking(ctx, booking.ID)
	if err != nil {
		t.Fatalf("admin delete: %v", err)
	}
	if receipt.Status != "deleted" || receipt.DeletedAt == "" {
		t.Fatalf("receipt: %+v", receipt)
	}
	if receipt.CanceledAt != "" {
		t.Fatalf("canceled_at set on admin delete: %+v", receipt)
	}

	_, err = env.reservations.AdminDeleteBooking(ctx, booking.ID)
	if !errors.Is(err, ErrBookingNotFound) {
		t.Fatalf("second admin delete: %v", err)
	}
}

func TestZeroStartBooking_AdminDeletableButNotCancelable(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// Битая запись без времени начала: политика 24 часов к ней неприменима,
	// но админ обязан мочь её убрать.
	broken := &model.Booking{
		ID:          "b-0-42",
		UserID:      "42",
		Name:        "Анна",
		SessionType: "Очно",
		Status:      model.BookingStatusPendingPayment,
	}
	if err := env.bookings.Set(ctx, broken); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if _, err := env.reservations.CancelBooking(ctx, broken.ID); !errors.Is(err, ErrBookingNotFound) {
		t.Fatalf("cancel of zero-start booking: %v", err)
	}

	receipt, err := env.reservations.AdminDeleteBooking(ctx, broken.ID)
	if err != nil {
		t.Fatalf("admin delete of zero-start booking: %v", err)
	}
	if receipt.Status != "deleted" {
		t.Fatalf("receipt: %+v", receipt)
	}
}

func TestListBookings(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for i, userID := range []string{"42", "42", "7"} {
		start := day.Add(time.Duration(10+2*i) * time.Hour)
		if _, err := env.reservations.CreateReservation(ctx, userID, slotAt(start, "LocA"), "Клиент", "", 100); err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}

	mine, err := env.reservations.ListUserBookings(ctx, "42")
	if err != nil {
		t.Fatalf("list user bookings: %v", err)
	}
	if len(mine) != 2 {
		t.Fatalf("expected 2 bookings for user 42, got %d", len(mine))
	}

	page, err := env.reservations.ListAllBookings(ctx, 1, 2)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if page.Total != 3 || len(page.Items) != 2 || !page.HasNext {
		t.Fatalf("page: total=%d items=%d next=%v", page.Total, len(page.Items), page.HasNext)
	}
}
