package metadata

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// SessionSidecar содержимое sessions/{id}/session.json
type SessionSidecar struct {
	SessionID      int64  `json:"sessionId"`
	SessionName    string `json:"sessionName,omitempty"`
	Place          string `json:"place,omitempty"`
	Coach          string `json:"coach,omitempty"`
	SessionType    string `json:"sessionType,omitempty"`
	SessionDateUTC *int64 `json:"sessionDateUtc,omitempty"`
	SessionDate    string `json:"sessionDate,omitempty"`
}

// Date возвращает дату сессии: sessionDateUtc (epoch) имеет приоритет над sessionDate.
func (s *SessionSidecar) Date() (time.Time, bool) {
	if s == nil {
		return time.Time{}, false
	}
	if s.SessionDateUTC != nil {
		return time.Unix(*s.SessionDateUTC, 0).UTC(), true
	}
	if s.SessionDate == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.DateOnly, time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s.SessionDate); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// VideoSidecar содержимое sessions/{id}/metadata/{videoId}.json
type VideoSidecar struct {
	Video        VideoInfo     `json:"video"`
	Athlete      *Athlete      `json:"athlete,omitempty"`
	Tags         []Tag         `json:"tags"`
	Inputs       []Input       `json:"inputs"`
	TimingEvents []TimingEvent `json:"timingEvents"`
}

type VideoInfo struct {
	ComparisonName  string   `json:"comparisonName,omitempty"`
	Section         *int     `json:"section,omitempty"`
	ClipDuration    *float64 `json:"clipDuration,omitempty"`
	ClipSize        *int64   `json:"clipSize,omitempty"`
	CreationDate    *int64   `json:"creationDate,omitempty"`
	CreationDateUTC *int64   `json:"creationDateUtc,omitempty"`
	ThumbnailPath   string   `json:"thumbnailPath,omitempty"`
}

// Created возвращает дату создания клипа в секундах epoch
func (v VideoInfo) Created() (int64, bool) {
	if v.CreationDateUTC != nil {
		return *v.CreationDateUTC, true
	}
	if v.CreationDate != nil {
		return *v.CreationDate, true
	}
	return 0, false
}

type Athlete struct {
	ID          int64  `json:"id"`
	Nombre      string `json:"nombre,omitempty"`
	Apellido    string `json:"apellido,omitempty"`
	Category    string `json:"category,omitempty"`
	CategoriaID *int64 `json:"categoriaId,omitempty"`
	Favorite    *int   `json:"favorite,omitempty"`
}

// DisplayName "{APELLIDO} {nombre}", либо только nombre без фамилии
func (a *Athlete) DisplayName() string {
	if a == nil {
		return ""
	}
	nombre := strings.TrimSpace(a.Nombre)
	apellido := strings.TrimSpace(a.Apellido)
	if apellido == "" {
		return nombre
	}
	return strings.TrimSpace(strings.ToUpper(apellido) + " " + nombre)
}

type Tag struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Input struct {
	IsEvent     Flag   `json:"isEvent"`
	InputTypeID int64  `json:"inputTypeId"`
	InputValue  string `json:"inputValue,omitempty"`
	TimestampMs *int64 `json:"timestampMs,omitempty"`
}

// TimingEvent событие хронометража. Содержимое переносится как есть,
// известные поля читаются для отображения.
type TimingEvent struct {
	EventType   string          `json:"eventType,omitempty"`
	TimestampMs int64           `json:"timestampMs,omitempty"`
	Raw         json.RawMessage `json:"-"`
}

func (e *TimingEvent) UnmarshalJSON(data []byte) error {
	type known TimingEvent
	var k known
	// типизированные поля необязательны, ошибка их разбора не делает событие невалидным
	_ = json.Unmarshal(data, &k)
	*e = TimingEvent(k)
	e.Raw = append(json.RawMessage(nil), data...)
	return nil
}

func (e TimingEvent) MarshalJSON() ([]byte, error) {
	if len(e.Raw) > 0 {
		return e.Raw, nil
	}
	type known TimingEvent
	return json.Marshal(known(e))
}

// Flag целое 0|1, которое некоторые клиенты пишут как bool
type Flag bool

func (f *Flag) UnmarshalJSON(data []byte) error {
	switch string(bytes.TrimSpace(data)) {
	case "1", "true":
		*f = true
	case "0", "false", "null":
		*f = false
	default:
		return fmt.Errorf("invalid flag value %s", data)
	}
	return nil
}

func (f Flag) MarshalJSON() ([]byte, error) {
	if f {
		return []byte("1"), nil
	}
	return []byte("0"), nil
}
