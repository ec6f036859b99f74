package calendar

import "strings"

// Закрытый набор типов сеанса. Свободный текст из правил и запросов
// нормализуется в одну из этих констант.
type SessionType string

const (
	// Wildcard: правило подходит под любой выбранный тип.
	SessionAny     SessionType = "any"
	SessionOnline  SessionType = "online"
	SessionOffline SessionType = "offline"
	// Песочная терапия — подвид очного сеанса.
	SessionSand SessionType = "sand"
	// Blackout: правило с этим типом никогда не матчится.
	SessionRest SessionType = "rest"
)

// Нормализованные значения локации правила.
const (
	LocationAny    = "any"
	LocationOnline = "online"
)

// Таблица соответствия локализованных меток каноническим типам.
// Порядок важен: более специфичные ключи идут раньше дефолта.
var sessionTypeKeywords = []struct {
	keyword string
	code    SessionType
}{
	{"any", SessionAny},
	{"both", SessionAny},
	{"оба", SessionAny},
	{"любой", SessionAny},
	{"все", SessionAny},
	{"online", SessionOnline},
	{"онлайн", SessionOnline},
	{"rest", SessionRest},
	{"осталь", SessionRest},
	{"sand", SessionSand},
	{"песоч", SessionSand},
	{"offline", SessionOffline},
	{"офлайн", SessionOffline},
	{"оффлайн", SessionOffline},
	{"очно", SessionOffline},
}

var locationKeywords = []struct {
	keyword string
	code    string
}{
	{"any", LocationAny},
	{"both", LocationAny},
	{"оба", LocationAny},
	{"любой", LocationAny},
	{"все", LocationAny},
	{"online", LocationOnline},
	{"онлайн", LocationOnline},
}

// NormalizeSessionType приводит метку типа сеанса к каноническому коду.
// Пустое или неизвестное значение трактуется как очный сеанс.
func NormalizeSessionType(raw string) SessionType {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return SessionOffline
	}
	for _, kw := range sessionTypeKeywords {
		if strings.Contains(s, kw.keyword) {
			return kw.code
		}
	}
	return SessionOffline
}

// MatchKind сводит тип к виду, который участвует в матчинге:
// песочная терапия — разновидность очного сеанса.
func (t SessionType) MatchKind() SessionType {
	if t == SessionSand {
		return SessionOffline
	}
	return t
}

// NormalizeLocationRule приводит значение локации правила к одному из:
//   - LocationAny: wildcard, применимо и к очным, и к онлайн-запросам;
//   - LocationOnline: только онлайн;
//   - точная строка адреса (обрезанная, регистр сохранён).
func NormalizeLocationRule(raw string) string {
	trimmed := strings.TrimSpace(raw)
	s := strings.ToLower(trimmed)
	if s == "" {
		return LocationAny
	}
	for _, kw := range locationKeywords {
		if strings.Contains(s, kw.keyword) {
			return kw.code
		}
	}
	return trimmed
}
