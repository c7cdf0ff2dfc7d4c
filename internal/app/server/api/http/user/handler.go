package user

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"crownsync/internal/domain/session"
	"crownsync/internal/domain/user"
)

type Handler struct {
	service    user.Servicer
	session    session.Servicer
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(service user.Servicer, session session.Servicer, log *slog.Logger, middleware huma.Middlewares) *Handler {
	return &Handler{
		service:    service,
		session:    session,
		log:        log,
		middleware: middleware,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.registerOp(), h.register)
	huma.Register(api, h.loginOp(), h.login)
}

func (h *Handler) register(ctx context.Context, input *registerInput) (*registerOutput, error) {
	role, err := user.ParseRole(input.Body.Role)
	if err != nil {
		return nil, huma.Error422UnprocessableEntity(err.Error())
	}

	userID, err := h.service.Register(ctx, input.Body.Login, input.Body.Password, role)
	switch {
	case errors.Is(err, user.ErrAlreadyExists):
		return nil, huma.Error409Conflict("login already taken")
	case errors.Is(err, user.ErrInvalidInput), errors.Is(err, user.ErrInvalidRole):
		return nil, huma.Error422UnprocessableEntity(err.Error())
	case err != nil:
		h.log.Error("register failed", "login", input.Body.Login, "error", err)
		return nil, huma.Error500InternalServerError("register failed")
	}

	return &registerOutput{
		Body: RegisterResponse{ID: userID, Role: string(role), Status: "Ok"},
	}, nil
}

func (h *Handler) login(ctx context.Context, input *loginInput) (*loginOutput, error) {
	u, err := h.service.Authenticate(ctx, input.Body.Login, input.Body.Password)
	switch {
	case errors.Is(err, user.ErrInvalidAuth), errors.Is(err, user.ErrNotFound):
		return nil, huma.Error401Unauthorized("invalid credentials")
	case err != nil:
		h.log.Error("authenticate failed", "login", input.Body.Login, "error", err)
		return nil, huma.Error500InternalServerError("login failed")
	}

	token, err := h.session.Create(ctx, u.ID)
	if err != nil {
		h.log.Error("create session failed", "user_id", u.ID, "error", err)
		return nil, huma.Error500InternalServerError("login failed")
	}

	return &loginOutput{
		Body: LoginResponse{Token: token, Role: string(u.Role), Status: "Ok"},
	}, nil
}
