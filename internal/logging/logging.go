// Package logging builds the process logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"cryptofeed/internal/config"
)

// New returns a logger writing to stderr.
func New(cfg config.Log) (*logrus.Logger, error) {
	return NewWithWriter(cfg, os.Stderr)
}

// NewWithWriter is New with an explicit output.
func NewWithWriter(cfg config.Log, w io.Writer) (*logrus.Logger, error) {
	level := logrus.InfoLevel
	if s := strings.TrimSpace(cfg.Level); s != "" {
		var err error
		level, err = logrus.ParseLevel(s)
		if err != nil {
			return nil, fmt.Errorf("log level: %w", err)
		}
	}

	log := logrus.New()
	log.SetOutput(w)
	log.SetLevel(level)

	switch strings.ToLower(strings.TrimSpace(cfg.Format)) {
	case "", "text":
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339,
		})
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})
	default:
		return nil, fmt.Errorf("log format %q: want text or json", cfg.Format)
	}
	return log, nil
}
