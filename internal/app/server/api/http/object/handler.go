package object

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"crownsync/internal/app/server/api/http/middleware/auth"
	"crownsync/internal/domain/object"
)

// Middlewares цепочки для трёх уровней доступа
type Middlewares struct {
	Public  huma.Middlewares
	Readers huma.Middlewares
	Writers huma.Middlewares
}

type Handler struct {
	service        object.Servicer
	log            *slog.Logger
	public         huma.Middlewares
	readers        huma.Middlewares
	writers        huma.Middlewares
	maxUploadBytes int64
}

func NewHandler(service object.Servicer, log *slog.Logger, mws Middlewares, maxUploadBytes int64) *Handler {
	return &Handler{
		service:        service,
		log:            log.With(slog.String("component", "object_handler")),
		public:         mws.Public,
		readers:        mws.Readers,
		writers:        mws.Writers,
		maxUploadBytes: maxUploadBytes,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.listOp(), h.list)
	huma.Register(api, h.signOp(), h.sign)
	huma.Register(api, h.uploadOp(), h.upload)
	huma.Register(api, h.deleteOp(), h.delete)
	huma.Register(api, h.downloadOp(), h.download)
}

func (h *Handler) list(ctx context.Context, input *listInput) (*listOutput, error) {
	page, err := h.service.List(ctx, input.Prefix, input.Marker, input.Max)
	if err != nil {
		return nil, h.mapError(err)
	}

	objects := make([]objectDTO, len(page.Objects))
	for i, o := range page.Objects {
		objects[i] = toDTO(o)
	}
	return &listOutput{
		Body: listResponse{
			Objects:     objects,
			IsTruncated: page.IsTruncated,
			NextMarker:  page.NextMarker,
		},
	}, nil
}

func (h *Handler) sign(ctx context.Context, input *signInput) (*signOutput, error) {
	url, err := h.service.SignDownload(ctx, input.Body.Key, input.Body.ExpirationMinutes)
	if err != nil {
		return nil, h.mapError(err)
	}
	return &signOutput{Body: signResponse{URL: url}}, nil
}

func (h *Handler) upload(ctx context.Context, input *uploadInput) (*uploadOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	obj, err := h.service.Upload(ctx, input.Key, input.ContentType, bytes.NewReader(input.RawBody), userID)
	if err != nil {
		return nil, h.mapError(err)
	}
	return &uploadOutput{Body: toDTO(obj)}, nil
}

func (h *Handler) delete(ctx context.Context, input *deleteInput) (*deleteOutput, error) {
	deleted, err := h.service.Delete(ctx, input.Key)
	if err != nil {
		return nil, h.mapError(err)
	}
	return &deleteOutput{Body: deleteResponse{Deleted: deleted}}, nil
}

func (h *Handler) download(ctx context.Context, input *downloadInput) (*huma.StreamResponse, error) {
	obj, rc, err := h.service.Download(ctx, input.Key, input.Expires, input.Signature)
	if err != nil {
		return nil, h.mapError(err)
	}

	return &huma.StreamResponse{
		Body: func(hctx huma.Context) {
			defer rc.Close()
			hctx.SetHeader("Content-Type", obj.ContentType)
			hctx.SetHeader("Content-Length", strconv.FormatInt(obj.Size, 10))
			hctx.SetHeader("Last-Modified", obj.LastModified.UTC().Format(http.TimeFormat))
			if _, err := io.Copy(hctx.BodyWriter(), rc); err != nil {
				h.log.Warn("download interrupted", "key", obj.Key, "error", err)
			}
		},
	}, nil
}

func (h *Handler) mapError(err error) error {
	switch {
	case errors.Is(err, object.ErrNotFound):
		return huma.Error404NotFound(err.Error())
	case errors.Is(err, object.ErrInvalidKey):
		return huma.Error422UnprocessableEntity(err.Error())
	case errors.Is(err, object.ErrSignatureInvalid), errors.Is(err, object.ErrSignatureExpired):
		return huma.Error403Forbidden(err.Error())
	default:
		h.log.Error("object operation failed", "error", err)
		return huma.Error500InternalServerError("internal error")
	}
}
