package server

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"notes-manager/internal/api/rest"
	"notes-manager/internal/audit"
	"notes-manager/internal/config"
	"notes-manager/internal/model"
	"notes-manager/internal/repository/memory"
	svc "notes-manager/internal/service"
	notesService "notes-manager/internal/service/notes"

	"github.com/rs/zerolog/log"
)

// Server представляет HTTP сервер приложения со всеми компонентами
type Server struct {
	HTTPServer *http.Server
	HTTPAddr   string

	// Компоненты, доступные после инициализации
	NoteService svc.NoteService
	AuditLog    audit.Recorder

	// Конфигурация
	Config *config.Config
}

// NewServer создает и инициализирует новый экземпляр сервера.
// Порядок DI: Validator → Repository + AuditLog + Events → Service → Handler → Router.
func NewServer(cfg *config.Config) (*Server, error) {
	httpPort := cfg.Server.PortHTTP
	if httpPort == 0 {
		httpPort = 8080
		log.Warn().Msg("PortHTTP is 0, using default 8080")
	}

	httpAddr := "0.0.0.0:" + strconv.Itoa(httpPort)
	log.Info().Int("http_port", httpPort).Msg("config loaded")

	validate, err := model.NewValidator()
	if err != nil {
		return nil, fmt.Errorf("failed to build validator: %w", err)
	}
	if err := audit.RegisterWithValidator(validate); err != nil {
		return nil, fmt.Errorf("failed to register audit validations: %w", err)
	}

	// Инициализация компонентов (DI): Repository → Service → Handler
	noteRepo := memory.NewRepository()
	log.Info().Msg("initialized in-memory repository (map-based)")

	auditLog := audit.NewLog(validate)
	log.Info().Msg("initialized in-memory audit log")

	events := notesService.NewEventService()

	noteSvc := notesService.NewNoteService(noteRepo, auditLog, events, validate)
	log.Info().Msg("initialized note service")

	noteHandler := rest.NewHandler(noteSvc, auditLog)
	eventsHandler := rest.NewEventsHandler(events)
	router := rest.NewRouter(noteHandler, eventsHandler, cfg.Gateway)
	log.Info().Msg("initialized REST handler")

	httpServer := &http.Server{
		Addr:              httpAddr,
		Handler:           router,
		ReadTimeout:       time.Duration(cfg.Server.HTTPReadTimeout) * time.Second,
		WriteTimeout:      time.Duration(cfg.Server.HTTPWriteTimeout) * time.Second,
		IdleTimeout:       time.Duration(cfg.Server.HTTPIdleTimeout) * time.Second,
		ReadHeaderTimeout: time.Duration(cfg.Server.HTTPReadHeaderTimeout) * time.Second,
	}

	return &Server{
		HTTPServer:  httpServer,
		HTTPAddr:    httpAddr,
		NoteService: noteSvc,
		AuditLog:    auditLog,
		Config:      cfg,
	}, nil
}

// Start запускает HTTP сервер в горутине.
// Возвращает канал ошибок для отслеживания ошибок сервера.
func (s *Server) Start() <-chan error {
	errChan := make(chan error, 1)

	// Запуск приложения фиксируется в журнале действий
	s.AuditLog.Record(audit.ActionAppStarted, nil)

	go func() {
		log.Info().Str("addr", s.HTTPAddr).Msg("http server listening")
		if err := s.HTTPServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("http server error: %w", err)
		}
	}()

	return errChan
}

// Shutdown выполняет graceful shutdown сервера
func (s *Server) Shutdown() error {
	log.Info().Msg("starting graceful shutdown")

	shutdownTimeout := time.Duration(s.Config.Server.GracefulShutdownTimeout) * time.Second
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.HTTPServer.Shutdown(ctx); err != nil {
		log.Warn().Err(err).Msg("graceful shutdown failed, forcing close")
		_ = s.HTTPServer.Close()
		return err
	}

	log.Info().Msg("http server stopped gracefully")
	return nil
}
