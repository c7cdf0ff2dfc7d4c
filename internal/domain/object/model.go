package object

import "time"

const (
	DefaultPageSize = 1000
	MaxPageSize     = 1000
)

// Object запись индекса хранилища
type Object struct {
	Key          string
	Size         int64
	ContentType  string
	LastModified time.Time
	UploadedBy   int
}

// Page страница листинга с маркером продолжения
type Page struct {
	Objects     []Object
	IsTruncated bool
	NextMarker  string
}
