package logger

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Setup configures the global logrus logger. format is "json" or "text".
func Setup(level, format string) error {
	lvl, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		return err
	}
	logrus.SetLevel(lvl)
	logrus.SetOutput(os.Stdout)

	switch strings.ToLower(strings.TrimSpace(format)) {
	case "text":
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}
	return nil
}
