package config

import (
	"os"

	"github.com/sirupsen/logrus"
)

// NewLogger настраивает логирование в зависимости от окружения:
// JSON в production, текст с полным временем в остальных случаях.
func (c *Config) NewLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	format := c.LogFormat
	if format == "" {
		format = "text"
		if c.IsProduction() {
			format = "json"
		}
	}

	if format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	return log
}
