package logger

import (
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// New builds the process logger. JSON to stdout by default; set
// LOG_FORMAT=text for local development.
func New() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)

	if strings.EqualFold(os.Getenv("LOG_FORMAT"), "text") {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		l.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	}

	switch strings.ToLower(strings.TrimSpace(os.Getenv("LOG_LEVEL"))) {
	case "trace":
		l.SetLevel(logrus.TraceLevel)
	case "debug":
		l.SetLevel(logrus.DebugLevel)
	case "warn", "warning":
		l.SetLevel(logrus.WarnLevel)
	case "error":
		l.SetLevel(logrus.ErrorLevel)
	default:
		l.SetLevel(logrus.InfoLevel)
	}
	return l
}
