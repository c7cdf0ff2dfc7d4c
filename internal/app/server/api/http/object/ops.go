package object

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

var bearer = []map[string][]string{{"bearer": {}}}

func (h *Handler) listOp() huma.Operation {
	return huma.Operation{
		OperationID: "objects-list",
		Method:      http.MethodGet,
		Path:        "/api/v1/objects",
		Summary:     "Листинг объектов по префиксу",
		Tags:        []string{"objects"},
		Security:    bearer,
		Middlewares: h.readers,
	}
}

func (h *Handler) signOp() huma.Operation {
	return huma.Operation{
		OperationID: "objects-sign",
		Method:      http.MethodPost,
		Path:        "/api/v1/objects/sign",
		Summary:     "Подписанная ссылка на скачивание",
		Tags:        []string{"objects"},
		Security:    bearer,
		Middlewares: h.readers,
	}
}

func (h *Handler) uploadOp() huma.Operation {
	return huma.Operation{
		OperationID:  "objects-upload",
		Method:       http.MethodPut,
		Path:         "/api/v1/objects/content",
		Summary:      "Загрузить объект",
		Tags:         []string{"objects"},
		Security:     bearer,
		MaxBodyBytes: h.maxUploadBytes,
		Middlewares:  h.writers,
	}
}

func (h *Handler) deleteOp() huma.Operation {
	return huma.Operation{
		OperationID: "objects-delete",
		Method:      http.MethodDelete,
		Path:        "/api/v1/objects",
		Summary:     "Удалить объект",
		Tags:        []string{"objects"},
		Security:    bearer,
		Middlewares: h.writers,
	}
}

func (h *Handler) downloadOp() huma.Operation {
	return huma.Operation{
		OperationID: "objects-download",
		Method:      http.MethodGet,
		Path:        "/api/v1/objects/download",
		Summary:     "Скачать объект по подписанной ссылке",
		Tags:        []string{"objects"},
		Middlewares: h.public,
	}
}
