package editor

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/aisa-it/aiplan-editor/internal/editor/autosave"
	"github.com/aisa-it/aiplan-editor/internal/editor/config"
	"github.com/aisa-it/aiplan-editor/internal/editor/htmlconv"
)

// Services - зависимости HTTP-обработчиков сервиса редактирования.
type Services struct {
	cfg        *config.Config
	documents  *DocumentManager
	wsVersions *WebsocketVersionService
	snapshots  *autosave.Store
}

func ServerHeader(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Response().Header().Set(echo.HeaderServer, "AIPlan-Editor")
		return next(c)
	}
}

// Server запускает HTTP-сервис редактора: API документов, вебсокеты версий,
// автосохранение и сервер метрик. Блокируется до остановки сервера.
func Server(cfg *config.Config) {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		he, ok := err.(*echo.HTTPError)
		if ok {
			if he.Code == http.StatusNotFound {
				c.NoContent(http.StatusNotFound)
				return
			}
			EErrorMsgStatus(c, err, he.Code)
			return
		}
		EError(c, err)
	}

	store, err := autosave.NewStore(cfg.SnapshotsDBPath)
	if err != nil {
		slog.Error("Open snapshots store", "path", cfg.SnapshotsDBPath, "err", err)
		os.Exit(1)
	}

	documents := NewDocumentManager(cfg, store)
	wsVersions := NewWebsocketVersionService()
	documents.SetVersionHandler(wsVersions.Broadcast)

	scheduler := autosave.NewScheduler(store, documents, cfg.AutosavePeriod)
	if !cfg.AutosaveDisabled {
		if err := scheduler.Start(); err != nil {
			slog.Error("Start autosave scheduler", "err", err)
			os.Exit(1)
		}
	}

	services := Services{
		cfg:        cfg,
		documents:  documents,
		wsVersions: wsVersions,
		snapshots:  store,
	}

	if cfg.Demo {
		if err := createDemoDocument(documents); err != nil {
			slog.Error("Create demo document", "err", err)
		}
	}

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		slog.Info("Shutting down gracefully, press Ctrl+C again to force")

		if !cfg.AutosaveDisabled {
			scheduler.Stop()
		} else {
			scheduler.Flush()
		}

		for _, md := range documents.List() {
			wsVersions.CloseDocumentSessions(md.ID)
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown", "err", err)
		}
	}()

	e.Use(ServerHeader)
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowCredentials: true,
	}))
	e.Use(middleware.BodyLimit("5M"))
	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Skipper: func(c echo.Context) bool {
			return strings.HasSuffix(c.Path(), "/ws/")
		},
	}))
	e.Use(echoprometheus.NewMiddleware("aiplan_editor"))

	e.Validator = NewRequestValidator()

	services.AddDocumentServices(e.Group("/api/documents"))

	// Prometheus metrics
	go func() {
		registerMetrics()

		bootTimeGauge := prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "editor",
			Name:      "boot_time",
			Help:      "Editor service boot time",
		})
		if err := prometheus.Register(bootTimeGauge); err != nil {
			slog.Error("Register boot time gauge", "err", err)
		}
		bootTimeGauge.SetToCurrentTime()

		metrics := echo.New()
		metrics.HideBanner = true
		metrics.GET("/metrics", echoprometheus.NewHandler())
		if err := metrics.Start(":2112"); err != nil && err != http.ErrServerClosed {
			slog.Error("Metrics server fail", "err", err)
		}
	}()

	if err := e.Start(cfg.ServerAddress); err != nil && err != http.ErrServerClosed {
		slog.Error("Server fail", "err", err)
	}
}

// createDemoDocument открывает документ "demo" с примером содержимого.
func createDemoDocument(documents *DocumentManager) error {
	doc, err := htmlconv.ParseHTML(strings.NewReader(
		`<h1>AIPlan Editor</h1><p>Демо-документ сервиса. <strong>Жирный</strong>, <em>курсив</em>, <a href="https://aisa.ru">ссылка</a>.</p>`))
	if err != nil {
		return err
	}
	_, err = documents.Create("demo", doc)
	return err
}
