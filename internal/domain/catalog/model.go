package catalog

import "time"

// SourceRemote помечает клипы, жизненным циклом которых управляет синхронизация
const SourceRemote = "remote"

// Session локальная сессия тренировки
type Session struct {
	ID    int64     `json:"id"`
	Name  string    `json:"name"`
	Place string    `json:"place"`
	Coach string    `json:"coach"`
	Type  string    `json:"type"`
	Date  time.Time `json:"date"`
}

// DisplayName имя сессии для показа
func (s Session) DisplayName() string {
	return s.Name
}

// VideoClip локальная запись о видео
type VideoClip struct {
	ID                 int64   `json:"id"`
	SessionID          int64   `json:"sessionId"`
	AthleteID          int64   `json:"athleteId,omitempty"`
	ComparisonName     string  `json:"comparisonName"`
	Section            int     `json:"section"`
	ClipDuration       float64 `json:"clipDuration"`
	ClipSize           int64   `json:"clipSize"`
	CreationDate       int64   `json:"creationDate"`
	ClipPath           string  `json:"clipPath"`
	ThumbnailPath      string  `json:"thumbnailPath,omitempty"`
	LocalThumbnailPath string  `json:"localThumbnailPath,omitempty"`
	Source             string  `json:"source"`
	// LastSyncUTC lastModified последнего примененного файла метаданных, Unix-секунды.
	// Хранилище отдает lastModified с точностью до секунды, поэтому повторная
	// запись метаданных в ту же секунду не будет применена.
	LastSyncUTC int64 `json:"lastSyncUtc"`
}

func (c VideoClip) IsRemote() bool {
	return c.Source == SourceRemote
}

type Athlete struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Surname    string `json:"surname"`
	Category   string `json:"category"`
	CategoryID int64  `json:"categoryId"`
	Favorite   bool   `json:"favorite"`
}

type Tag struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// EventTag определение тега-события (тип ввода с отметкой времени)
type EventTag struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// EventInput отметка на видео: событие или обычный тег
type EventInput struct {
	ID          int64  `json:"id"`
	VideoID     int64  `json:"videoId"`
	SessionID   int64  `json:"sessionId"`
	InputTypeID int64  `json:"inputTypeId"`
	IsEvent     bool   `json:"isEvent"`
	Value       string `json:"value,omitempty"`
	TimestampMs int64  `json:"timestampMs"`
}

// TimingEvent событие хронометража, Payload хранит исходный JSON
type TimingEvent struct {
	ID          int64  `json:"id"`
	VideoID     int64  `json:"videoId"`
	Type        string `json:"type"`
	TimestampMs int64  `json:"timestampMs"`
	Payload     string `json:"payload"`
}
