package calendar

import (
	"errors"
	"time"
)

var ErrInvalidTimeRange = errors.New("invalid time range")

// TimeRange представляет полуоткрытый временной интервал [Start, End).
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// NewTimeRange создаёт интервал и делает простую валидацию.
func NewTimeRange(start, end time.Time) (TimeRange, error) {
	if start.IsZero() || end.IsZero() || !end.After(start) {
		return TimeRange{}, ErrInvalidTimeRange
	}
	return TimeRange{Start: start, End: end}, nil
}

// EnsureUTC переводит время в UTC перед сравнениями.
func EnsureUTC(t time.Time) time.Time {
	return t.In(time.UTC)
}

// Overlaps проверяет пересечение полуоткрытых интервалов [Start, End):
// max(start) < min(end). Касание границ пересечением не считается.
func Overlaps(a, b TimeRange) bool {
	aStart, aEnd := EnsureUTC(a.Start), EnsureUTC(a.End)
	bStart, bEnd := EnsureUTC(b.Start), EnsureUTC(b.End)
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// OverlapsAny возвращает true, если интервал пересекается хотя бы
// с одним из занятых интервалов.
func OverlapsAny(r TimeRange, busy []TimeRange) bool {
	for _, b := range busy {
		if Overlaps(r, b) {
			return true
		}
	}
	return false
}
