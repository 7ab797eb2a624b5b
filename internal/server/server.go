package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"factnet/internal/queue"
	mid "factnet/internal/server/middleware"
	"factnet/internal/storage"
	"factnet/internal/util"
	"factnet/pkg/logger"
	"factnet/pkg/query"
	"factnet/pkg/snapshot"
	pgxstore "factnet/pkg/store/pgx"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/go-playground/validator"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i any) error {
	if err := cv.validator.Struct(i); err != nil {
		return err
	}
	return nil
}

func Init() {
	e := echo.New()
	e.Validator = &CustomValidator{validator: validator.New()}

	jwksUrl := util.GetEnv("AUTH_URL") + "/jwks"
	k, err := keyfunc.NewDefault([]string{jwksUrl})
	if err != nil {
		logger.Fatal("Failed to load jwks keys", "err", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runMigrations()

	conn, err := pgxpool.New(ctx, util.GetEnv("DATABASE_URL"))
	if err != nil {
		logger.Fatal("Failed to connect to database", "err", err)
	}
	defer conn.Close()

	que := queue.Init()
	defer que.Close()
	ch, err := que.Channel()
	if err != nil {
		logger.Fatal("Failed to open channel", "err", err)
	}

	if err := queue.SetupQueues(ch, queue.Queues); err != nil {
		logger.Fatal("Failed to set up queues", "err", err)
	}

	s3 := storage.NewS3Client(ctx)

	st := pgxstore.New(conn)

	snapCfg := snapshot.Config{
		Principal: util.GetEnv("PRINCIPAL_ENTITY"),
		Sentinel:  int(util.GetEnvNumeric("DISCONNECTED_DISTANCE", 1000)),
	}
	snapshots := snapshot.NewHandle(snapshot.Empty(snapCfg))

	maxLimit := int(util.GetEnvNumeric("QUERY_MAX_LIMIT", 500))
	scanCeiling := int(util.GetEnvNumeric("QUERY_SCAN_CEILING", 50000))
	svc := query.NewService(st, snapshots, maxLimit, scanCeiling)

	refreshSeconds := int(util.GetEnvNumeric("SNAPSHOT_REFRESH_SECONDS", 15))
	go runRefresher(ctx, st, snapshots, time.Duration(refreshSeconds)*time.Second)

	masterAPIKey := util.GetEnv("MASTER_API_KEY")
	masterUserID := int32(util.GetEnvNumeric("MASTER_USER_ID", 0))
	masterUserRole := util.GetEnv("MASTER_USER_ROLE")

	app := &mid.App{
		DBConn:         conn,
		Queue:          ch,
		Key:            &k,
		S3:             s3,
		Store:          st,
		Snapshots:      snapshots,
		Service:        svc,
		MasterAPIKey:   masterAPIKey,
		MasterUserID:   masterUserID,
		MasterUserRole: masterUserRole,
	}

	e.Use(mid.AppContextMiddleware(app))
	e.Use(middleware.CORS())
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	RegisterRoutes(e)

	go func() {
		port := util.GetEnv("PORT")
		if port == "" {
			port = "8080"
		}
		logger.Info("Starting server", "port", port)
		if err := e.Start(":" + port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed shutting down server", "err", err)
		}
	}()

	<-ctx.Done()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Failed to shutdown server", "err", err)
	}
}
