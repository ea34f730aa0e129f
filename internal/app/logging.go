package app

import (
	"os"

	log "github.com/sirupsen/logrus"

	"admatch/internal/config"
)

// ConfigureLogging applies the log section of cfg to the standard logrus
// logger. Logs go to stderr so command output on stdout stays clean.
func ConfigureLogging(cfg *config.Config) error {
	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	log.SetLevel(level)
	log.SetOutput(os.Stderr)
	if cfg.Log.Format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	return nil
}
