package calendar

import (
	"fmt"
	"time"
)

var ruWeekdays = map[time.Weekday]string{
	time.Monday:    "Понедельник",
	time.Tuesday:   "Вторник",
	time.Wednesday: "Среда",
	time.Thursday:  "Четверг",
	time.Friday:    "Пятница",
	time.Saturday:  "Суббота",
	time.Sunday:    "Воскресенье",
}

// FormatSlotForUser форматирует слот в человекочитаемую строку.
// Если loc != nil, время переводится в указанный часовой пояс.
// location — адрес очного сеанса; пустая строка означает онлайн.
func FormatSlotForUser(tr TimeRange, loc *time.Location, location string) string {
	start, end := tr.Start, tr.End
	if loc != nil {
		start = start.In(loc)
		end = end.In(loc)
	}

	base := fmt.Sprintf("%s, %s, %s–%s",
		ruWeekdays[start.Weekday()],
		start.Format("02.01.2006"),
		start.Format("15:04"),
		end.Format("15:04"),
	)

	if location == "" {
		return base + " (онлайн)"
	}
	return fmt.Sprintf("%s, %s", base, location)
}
