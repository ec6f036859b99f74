package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/interair/filmtherapy-chat-bot/internal/calendar"
	"github.com/interair/filmtherapy-chat-bot/internal/model"
	"github.com/interair/filmtherapy-chat-bot/internal/repository"
)

// Slot — эфемерный кандидат на запись. Строится заново на каждый запрос
// доступности, нигде не хранится.
type Slot struct {
	// Производный идентификатор start_iso|location_or_"online"|session_type.
	ID    string
	Start time.Time
	End   time.Time
	// nil — онлайн-сеанс.
	Location    *string
	SessionType string
}

// AvailabilityService превращает правила расписания и занятые интервалы
// в список доступных слотов.
type AvailabilityService struct {
	rules    repository.ScheduleRepository
	bookings repository.BookingRepository
	log      *slog.Logger
}

func NewAvailabilityService(
	rules repository.ScheduleRepository,
	bookings repository.BookingRepository,
	log *slog.Logger,
) *AvailabilityService {
	if log == nil {
		log = slog.Default()
	}
	return &AvailabilityService{
		rules:    rules,
		bookings: bookings,
		log:      log,
	}
}

// ListAvailableSlots возвращает отсортированный по началу список доступных
// слотов на дату. location — выбранный клиентом адрес (пустая строка —
// не указан), sessionType — метка типа сеанса в свободной форме.
//
// Дедупликация между правилами с пересекающимися окнами не выполняется:
// клиент видит ровно то, что настроил терапевт.
func (s *AvailabilityService) ListAvailableSlots(ctx context.Context, date time.Time, location, sessionType string) ([]Slot, error) {
	rules, err := s.rules.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load schedule rules: %w", err)
	}

	busy, err := s.dayBusyIntervals(ctx, date)
	if err != nil {
		return nil, err
	}

	requested := calendar.NormalizeSessionType(sessionType)
	selectedLocation := strings.TrimSpace(location)
	now := time.Now().UTC()

	var slots []Slot
	for _, rule := range rules {
		window, ok := calendar.MatchRule(date, rule, selectedLocation, requested)
		if !ok {
			continue
		}
		calendar.IterateFreeSlots(window, busy, now, func(start, end time.Time) bool {
			slots = append(slots, s.buildSlot(start, end, window, requested, selectedLocation, sessionType))
			return true
		})
	}

	sort.Slice(slots, func(i, j int) bool { return slots[i].Start.Before(slots[j].Start) })
	return slots, nil
}

// HasAvailableSlots — лёгкая проверка «есть ли хоть один слот» на дату,
// обрывающая обход на первом свободном кандидате.
func (s *AvailabilityService) HasAvailableSlots(ctx context.Context, date time.Time, location, sessionType string) (bool, error) {
	rules, err := s.rules.GetAll(ctx)
	if err != nil {
		return false, fmt.Errorf("load schedule rules: %w", err)
	}
	busy, err := s.dayBusyIntervals(ctx, date)
	if err != nil {
		return false, err
	}

	requested := calendar.NormalizeSessionType(sessionType)
	return s.hasFreeSlot(rules, date, strings.TrimSpace(location), requested, busy), nil
}

// ListAvailableDates отбирает из days дней начиная с from те, на которые
// есть хотя бы один слот. Занятость всего диапазона загружается одним
// запросом и группируется по дням. Результат — даты в формате дд-мм-гг.
func (s *AvailabilityService) ListAvailableDates(ctx context.Context, from time.Time, days int, location, sessionType string) ([]string, error) {
	if days <= 0 {
		return nil, nil
	}

	rules, err := s.rules.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load schedule rules: %w", err)
	}

	start := calendar.EnsureUTC(from).Truncate(24 * time.Hour)
	bookings, err := s.bookings.GetRange(ctx, start, start.AddDate(0, 0, days))
	if err != nil {
		return nil, fmt.Errorf("load bookings: %w", err)
	}

	busyByDay := make(map[string][]calendar.TimeRange)
	for _, b := range bookings {
		tr, ok := s.busyInterval(b)
		if !ok {
			continue
		}
		key := tr.Start.Format(calendar.RuleDateLayout)
		busyByDay[key] = append(busyByDay[key], tr)
	}

	requested := calendar.NormalizeSessionType(sessionType)
	selectedLocation := strings.TrimSpace(location)

	var out []string
	for i := 0; i < days; i++ {
		day := start.AddDate(0, 0, i)
		key := day.Format(calendar.RuleDateLayout)
		if s.hasFreeSlot(rules, day, selectedLocation, requested, busyByDay[key]) {
			out = append(out, key)
		}
	}
	return out, nil
}

func (s *AvailabilityService) hasFreeSlot(
	rules []model.ScheduleRule,
	date time.Time,
	selectedLocation string,
	requested calendar.SessionType,
	busy []calendar.TimeRange,
) bool {
	now := time.Now().UTC()
	for _, rule := range rules {
		window, ok := calendar.MatchRule(date, rule, selectedLocation, requested)
		if !ok {
			continue
		}
		if calendar.HasFreeSlot(window, busy, now) {
			return true
		}
	}
	return false
}

// buildSlot выбирает локацию слота: для онлайн-сеансов она отсутствует,
// для очных берётся адрес правила, а при wildcard — адрес из запроса.
func (s *AvailabilityService) buildSlot(
	start, end time.Time,
	window calendar.RuleWindow,
	requested calendar.SessionType,
	selectedLocation, rawSessionType string,
) Slot {
	var slotLocation *string
	if requested != calendar.SessionOnline {
		switch window.Location {
		case calendar.LocationAny, calendar.LocationOnline:
			if selectedLocation != "" {
				loc := selectedLocation
				slotLocation = &loc
			}
		default:
			loc := window.Location
			slotLocation = &loc
		}
	}

	locKey := "online"
	if slotLocation != nil {
		locKey = *slotLocation
	}

	return Slot{
		ID:          fmt.Sprintf("%s|%s|%s", start.Format(time.RFC3339), locKey, rawSessionType),
		Start:       start,
		End:         end,
		Location:    slotLocation,
		SessionType: rawSessionType,
	}
}

// dayBusyIntervals собирает занятые интервалы суток одним запросом.
func (s *AvailabilityService) dayBusyIntervals(ctx context.Context, date time.Time) ([]calendar.TimeRange, error) {
	bookings, err := s.bookings.GetForDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("load bookings: %w", err)
	}

	busy := make([]calendar.TimeRange, 0, len(bookings))
	for _, b := range bookings {
		if tr, ok := s.busyInterval(b); ok {
			busy = append(busy, tr)
		}
	}
	return busy, nil
}

// busyInterval превращает запись в занятый интервал. Битые записи
// пропускаются, чтобы одна кривая строка в хранилище не валила весь
// расчёт доступности.
func (s *AvailabilityService) busyInterval(b model.Booking) (calendar.TimeRange, bool) {
	tr, err := calendar.NewTimeRange(calendar.EnsureUTC(b.StartsAt), calendar.EnsureUTC(b.EndsAt))
	if err != nil {
		s.log.Debug("skip malformed booking record", "booking_id", b.ID, "error", err)
		return calendar.TimeRange{}, false
	}
	return tr, true
}
