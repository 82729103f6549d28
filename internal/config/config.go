package config

import (
	"log/slog"
	"time"
)

const defaultBaseURL = "http://localhost:8080"

type Logger struct {
	Level     slog.Level
	Plaintext bool
}

type Service struct {
	BaseURL string        // адрес сервиса конвертации, читается один раз на старте
	Timeout time.Duration // потолок на один цикл обмена
}

type Server struct {
	Addr string // только для convsrv
}

type Config struct {
	Logger  Logger
	Service Service
	Server  Server
}

func Load() (Config, error) {
	var ge getenv
	cfg := Config{
		Logger: Logger{
			Level:     ge.LogLevel("LOG_LEVEL", false, slog.LevelInfo),
			Plaintext: ge.Bool("LOG_PLAINTEXT", false, false),
		},
		Service: Service{
			BaseURL: ge.URL("CONVERT_BASE_URL", false, defaultBaseURL),
			Timeout: ge.Duration("CONVERT_TIMEOUT", false, 5*time.Minute),
		},
		Server: Server{
			Addr: ge.String("SERVER_ADDR", false, ":8080"),
		},
	}
	return cfg, ge.Err()
}
