package logger

import (
	"os"
	"strings"

	"github.com/Domenick1991/aircargo/config"
	"github.com/sirupsen/logrus"
)

// Init configures the process-wide logrus logger. It is called once from
// main before anything logs.
func Init(cfg config.LogConfig) {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
	logrus.SetOutput(os.Stdout)

	if strings.EqualFold(cfg.Format, "text") {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		return
	}
	logrus.SetFormatter(&logrus.JSONFormatter{})
}
