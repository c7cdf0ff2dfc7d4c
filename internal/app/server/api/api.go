// GET    /api/v1/health                 # Проверка (публичный)
// POST   /api/v1/auth/register          # Регистрация (публичный)
// POST   /api/v1/auth/login             # Логин (публичный)
// GET    /api/v1/objects                # Листинг (auth)
// POST   /api/v1/objects/sign           # Подписанная ссылка (auth)
// PUT    /api/v1/objects/content?key=   # Загрузка (auth, editor)
// DELETE /api/v1/objects?key=           # Удаление (auth, editor)
// GET    /api/v1/objects/download       # Скачивание по подписи
// GET    /metrics                       # Prometheus

package api

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/exp/slog"

	healthAPI "crownsync/internal/app/server/api/http/health"
	"crownsync/internal/app/server/api/http/middleware"
	"crownsync/internal/app/server/api/http/middleware/auth"
	"crownsync/internal/app/server/api/http/middleware/logger"
	"crownsync/internal/app/server/api/http/middleware/metrics"
	objectAPI "crownsync/internal/app/server/api/http/object"
	userAPI "crownsync/internal/app/server/api/http/user"
	"crownsync/internal/app/server/config"
	"crownsync/internal/domain/object"
	"crownsync/internal/domain/session"
	"crownsync/internal/domain/user"
	"crownsync/internal/infrastructure/storage/postgres"
)

type Handlers struct {
	Health *healthAPI.Handler
	User   *userAPI.Handler
	Object *objectAPI.Handler
}

// New создает *chi.Mux со всеми операциями и /metrics
func New(storage *postgres.Storage, blobs object.BlobStore, cfg *config.Config, log *slog.Logger) *chi.Mux {
	mux := chi.NewMux()

	humaConfig := huma.DefaultConfig("Crownsync Object Store", "1.0.0")
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {Type: "http", Scheme: "bearer"},
	}

	API := humachi.New(mux, humaConfig)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	h := handlers(storage, blobs, cfg, reg, log)
	h.Health.SetupRoutes(API)
	h.User.SetupRoutes(API)
	h.Object.SetupRoutes(API)

	return mux
}

func handlers(storage *postgres.Storage, blobs object.BlobStore, cfg *config.Config, reg prometheus.Registerer, log *slog.Logger) *Handlers {
	sessionRepo := postgres.NewSessionRepository(storage, log)
	sessionService := session.NewService(sessionRepo, cfg.Server.SessionTTL, log)
	authMW := auth.New(sessionService, log)
	loggerMW := logger.New(log)
	metricsMW := metrics.New(reg)
	middlewares := middleware.NewContainer()

	healthHandler := healthAPI.NewHandler(storage, log,
		middlewares.Add(loggerMW.Middleware()).GetAllAndClear())

	userRepo := postgres.NewUserRepository(storage.Pool(), log)
	userService := user.NewService(userRepo, user.NewAccountValidator(), log)
	userHandler := userAPI.NewHandler(userService, sessionService, log,
		middlewares.Add(loggerMW.Middleware(), metricsMW.Middleware()).GetAllAndClear())

	objectRepo := postgres.NewObjectRepository(storage, log)
	signer := object.NewSigner(cfg.Server.Secret)
	objectService := object.NewService(objectRepo, blobs, signer, cfg.Server.PublicURL, log)
	objectHandler := objectAPI.NewHandler(objectService, log, objectAPI.Middlewares{
		Public:  middlewares.Add(loggerMW.Middleware(), metricsMW.Middleware()).GetAllAndClear(),
		Readers: middlewares.Add(loggerMW.Middleware(), metricsMW.Middleware(), authMW.Middleware()).GetAllAndClear(),
		Writers: middlewares.Add(loggerMW.Middleware(), metricsMW.Middleware(), authMW.Middleware(), auth.RequireWriter()).GetAllAndClear(),
	}, cfg.Server.MaxUploadBytes)

	return &Handlers{
		Health: healthHandler,
		User:   userHandler,
		Object: objectHandler,
	}
}
