package calendar

import "time"

// SlotVisitor получает очередной свободный слот.
// Возвращает false, чтобы остановить обход.
type SlotVisitor func(start, end time.Time) bool

// IterateFreeSlots обходит окно с шагом Interval и отдаёт визитёру
// кандидатов длительностью Duration, которые:
//   - целиком помещаются в окно;
//   - заканчиваются в будущем относительно now;
//   - не пересекаются ни с одним занятым интервалом.
//
// Обход детерминирован и не имеет побочных эффектов, поэтому его можно
// повторять и обрывать на первом же слоте.
func IterateFreeSlots(w RuleWindow, busy []TimeRange, now time.Time, visit SlotVisitor) {
	now = EnsureUTC(now)
	for cur := EnsureUTC(w.Start); ; cur = cur.Add(w.Interval) {
		end := cur.Add(w.Duration)
		if end.After(w.End) {
			return
		}
		if end.After(now) && !OverlapsAny(TimeRange{Start: cur, End: end}, busy) {
			if !visit(cur, end) {
				return
			}
		}
	}
}

// FreeSlots собирает все свободные слоты окна в срез.
func FreeSlots(w RuleWindow, busy []TimeRange, now time.Time) []TimeRange {
	var out []TimeRange
	IterateFreeSlots(w, busy, now, func(start, end time.Time) bool {
		out = append(out, TimeRange{Start: start, End: end})
		return true
	})
	return out
}

// HasFreeSlot проверяет, есть ли в окне хотя бы один свободный слот,
// не строя полный список.
func HasFreeSlot(w RuleWindow, busy []TimeRange, now time.Time) bool {
	found := false
	IterateFreeSlots(w, busy, now, func(time.Time, time.Time) bool {
		found = true
		return false
	})
	return found
}
