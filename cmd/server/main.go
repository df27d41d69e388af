package main

import (
	"os"
	"os/signal"
	"syscall"

	"notes-manager/internal/config"
	"notes-manager/internal/server"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const configFile = "config.yml"

func main() {
	// Загружаем конфигурацию из файла
	appConfig, err := config.InitConfig[config.Config](configFile)
	if err != nil {
		log.Fatal().Err(err).Msg("error initializing config")
	}

	setupLogger(appConfig.Logger)

	// Создаем и инициализируем сервер
	srv, err := server.NewServer(appConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("error initializing server")
	}

	// Канал для graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	errChan := srv.Start()

	// Ожидание сигнала или ошибки
	select {
	case err := <-errChan:
		log.Fatal().Err(err).Msg("server error")
	case sig := <-sigChan:
		log.Info().Str("signal", sig.String()).Msg("received signal, shutting down")
	}

	if err := srv.Shutdown(); err != nil {
		log.Error().Err(err).Msg("shutdown finished with error")
	}

	log.Info().Msg("notes manager stopped")
}

// setupLogger настраивает глобальный уровень логирования из конфига
func setupLogger(cfg *config.ConfigLogger) {
	level := zerolog.InfoLevel
	if cfg != nil && cfg.Level != "" {
		parsed, err := zerolog.ParseLevel(cfg.Level)
		if err != nil {
			log.Warn().Str("level", cfg.Level).Msg("unknown log level, using info")
		} else {
			level = parsed
		}
	}
	zerolog.SetGlobalLevel(level)
}
