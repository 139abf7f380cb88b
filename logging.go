package main

import (
	"go.uber.org/zap"
)

// NewLogger returns a development logger writing to stderr when verbose is
// set, and a no-op logger otherwise
func NewLogger(verbose bool) *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
