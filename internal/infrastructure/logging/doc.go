// Package logging provides structured logging for the data provider.
//
// It wraps Go's standard log/slog package so every component logs through
// one configured handler with the same default fields.
//
// # Configuration
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// # Usage
//
//	logger := logging.New(cfg.Logging, version)
//	logger.Info("sample stored", "source", "cpu", "value", 1.5)
//	logger.Error("fetch failed", "source", "cpu", "error", err)
//
// Scheduler-path failures always carry a "source" attribute so a failing
// source can be found in the log stream.
package logging
