package object

import (
	"time"

	"crownsync/internal/domain/object"
)

type objectDTO struct {
	Key          string    `json:"key"`
	IsFolder     bool      `json:"isFolder"`
	Size         int64     `json:"size"`
	ContentType  string    `json:"contentType,omitempty"`
	LastModified time.Time `json:"lastModifiedUtc"`
}

func toDTO(o object.Object) objectDTO {
	return objectDTO{
		Key:          o.Key,
		Size:         o.Size,
		ContentType:  o.ContentType,
		LastModified: o.LastModified.UTC(),
	}
}

type listInput struct {
	Prefix string `query:"prefix" doc:"Префикс ключей"`
	Marker string `query:"marker" doc:"Ключ, после которого продолжить листинг"`
	Max    int    `query:"max" minimum:"0" maximum:"1000" doc:"Размер страницы, 0 означает 1000"`
}

type listOutput struct {
	Body listResponse
}

type listResponse struct {
	Objects     []objectDTO `json:"objects"`
	IsTruncated bool        `json:"isTruncated"`
	NextMarker  string      `json:"nextMarker,omitempty"`
}

type signInput struct {
	Body signRequest
}

type signRequest struct {
	Key               string `json:"key" minLength:"1" doc:"Ключ объекта"`
	ExpirationMinutes int    `json:"expirationMinutes,omitempty" minimum:"0" doc:"Срок действия ссылки в минутах (1..60)"`
}

type signOutput struct {
	Body signResponse
}

type signResponse struct {
	URL string `json:"url"`
}

type uploadInput struct {
	Key         string `query:"key" required:"true" doc:"Ключ объекта"`
	ContentType string `header:"Content-Type"`
	RawBody     []byte
}

type uploadOutput struct {
	Body objectDTO
}

type deleteInput struct {
	Key string `query:"key" required:"true" doc:"Ключ объекта"`
}

type deleteOutput struct {
	Body deleteResponse
}

type deleteResponse struct {
	Deleted bool `json:"deleted"`
}

type downloadInput struct {
	Key       string `query:"key" required:"true"`
	Expires   int64  `query:"expires" required:"true"`
	Signature string `query:"signature" required:"true"`
}
