package config

import (
	"os"

	log "github.com/sirupsen/logrus"
)

// SetupLogging настраивает logrus: текстовый вывод в dev, JSON в остальных окружениях.
func SetupLogging(cfg *Config) {
	log.SetOutput(os.Stdout)
	if cfg.IsDev() {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	} else {
		log.SetFormatter(&log.JSONFormatter{})
	}

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Printf("Предупреждение: неизвестный LOG_LEVEL '%s', используется info", cfg.LogLevel)
		level = log.InfoLevel
	}
	log.SetLevel(level)
}
