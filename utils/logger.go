package utils

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

var (
	InfoLogger  *logrus.Logger
	ErrorLogger *logrus.Logger
)

func init() {
	// usable before InitLogger runs (tests, cobra flag errors)
	InitLogger("info", "text")
}

// InitLogger configures the two package loggers. format is "text" or "json".
func InitLogger(level, format string) {
	InfoLogger = logrus.New()
	ErrorLogger = logrus.New()

	// Set output untuk InfoLogger ke stdout
	InfoLogger.SetOutput(os.Stdout)
	// Set output untuk ErrorLogger ke stderr
	ErrorLogger.SetOutput(os.Stderr)

	var formatter logrus.Formatter = &logrus.TextFormatter{FullTimestamp: true}
	if strings.EqualFold(format, "json") {
		formatter = &logrus.JSONFormatter{}
	}
	InfoLogger.SetFormatter(formatter)
	ErrorLogger.SetFormatter(formatter)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	InfoLogger.SetLevel(lvl)
	ErrorLogger.SetLevel(logrus.ErrorLevel)
}
