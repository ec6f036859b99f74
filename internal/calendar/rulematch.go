package calendar

import (
	"strconv"
	"strings"
	"time"

	"github.com/interair/filmtherapy-chat-bot/internal/model"
)

// Формат даты правила: дд-мм-гг.
const RuleDateLayout = "02-01-06"

const defaultDurationMin = 50

// RuleWindow — результат матчинга: конкретное окно записи и параметры слотов.
type RuleWindow struct {
	Start    time.Time
	End      time.Time
	Duration time.Duration
	Interval time.Duration
	// Нормализованная локация правила: LocationAny, LocationOnline
	// или точный адрес.
	Location string
}

// MatchRule решает, применимо ли правило к дате и параметрам запроса,
// и если да — возвращает конкретное окно.
//
//  1. Дата правила должна точно совпадать с целевой датой (дд-мм-гг).
//  2. Локация "online" подходит только онлайн-запросам; точный адрес —
//     очным запросам с той же (или не указанной) локацией; wildcard — всем.
//  3. Тип "rest" — blackout; конкретный тип должен совпасть с запрошенным,
//     wildcard подходит под всё.
//  4. Нераспарсиваемые start и end дают окно на весь день 00:00–23:59;
//     пустое или вывернутое окно отбрасывается.
//  5. Duration <= 0 → 50 минут, Interval <= 0 → Duration.
func MatchRule(date time.Time, rule model.ScheduleRule, selectedLocation string, requested SessionType) (RuleWindow, bool) {
	date = EnsureUTC(date)

	ruleDate := strings.TrimSpace(rule.Date)
	if ruleDate == "" || ruleDate != date.Format(RuleDateLayout) {
		return RuleWindow{}, false
	}

	isOnline := requested == SessionOnline

	ruleLoc := NormalizeLocationRule(rule.Location)
	switch {
	case ruleLoc == LocationOnline:
		if !isOnline {
			return RuleWindow{}, false
		}
	case ruleLoc != LocationAny:
		// Точный адрес: для очного запроса требуем совпадения,
		// если клиент вообще указал локацию. Онлайн-запросы адрес
		// не ограничивает.
		if !isOnline && selectedLocation != "" && selectedLocation != ruleLoc {
			return RuleWindow{}, false
		}
	}

	if rawType := strings.TrimSpace(rule.SessionType); rawType != "" {
		ruleType := NormalizeSessionType(rawType)
		if ruleType == SessionRest {
			return RuleWindow{}, false
		}
		switch kind := ruleType.MatchKind(); kind {
		case SessionAny:
			// wildcard: подходит под любой запрошенный тип
		case SessionOnline:
			if requested != SessionOnline {
				return RuleWindow{}, false
			}
		case SessionOffline:
			if requested == SessionOnline {
				return RuleWindow{}, false
			}
		default:
			if kind != requested {
				return RuleWindow{}, false
			}
		}
	}

	startHour, startMin, startOK := parseHHMM(rule.Start)
	endHour, endMin, endOK := parseHHMM(rule.End)
	if !startOK && !endOK {
		startHour, startMin = 0, 0
		endHour, endMin = 23, 59
	} else if !startOK || !endOK {
		return RuleWindow{}, false
	}

	duration := rule.Duration
	if duration <= 0 {
		duration = defaultDurationMin
	}
	interval := rule.Interval
	if interval <= 0 {
		interval = duration
	}

	windowStart := time.Date(date.Year(), date.Month(), date.Day(), startHour, startMin, 0, 0, time.UTC)
	windowEnd := time.Date(date.Year(), date.Month(), date.Day(), endHour, endMin, 0, 0, time.UTC)
	if !windowStart.Before(windowEnd) {
		return RuleWindow{}, false
	}

	return RuleWindow{
		Start:    windowStart,
		End:      windowEnd,
		Duration: time.Duration(duration) * time.Minute,
		Interval: time.Duration(interval) * time.Minute,
		Location: ruleLoc,
	}, true
}

// parseHHMM разбирает время в формате ЧЧ:ММ (минуты можно опустить).
func parseHHMM(raw string) (hour, minute int, ok bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, 0, false
	}
	parts := strings.SplitN(s, ":", 2)
	h, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, false
	}
	m := 0
	if len(parts) > 1 {
		if m, err = strconv.Atoi(strings.TrimSpace(parts[1])); err != nil {
			return 0, 0, false
		}
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, 0, false
	}
	return h, m, true
}
