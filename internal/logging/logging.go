// Package logging wraps go.uber.org/zap behind a small leveled
// interface so the renderer driver and worker pool never hold a
// concrete *zap.Logger, mirroring the teacher's own core.Logger but
// generalized from Printf-only to leveled logging (spec.md §4.A):
// the driver needs to tell a recoverable per-tile error (logged once,
// rendering continues) apart from a surfaced failure that aborts the
// render.
package logging

import (
	"go.uber.org/zap"
)

// Logger is the leveled logging contract injected into
// internal/renderer and internal/server.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Sugar() *zap.SugaredLogger
}

type zapLogger struct {
	sugar *zap.SugaredLogger
}

// NewProduction builds a JSON-encoded, info-level-and-above Logger
// suitable for a long-running server process.
func NewProduction() (Logger, error) {
	l, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}
	return &zapLogger{sugar: l.Sugar()}, nil
}

// NewDevelopment builds a human-readable, debug-level Logger for CLI
// runs, where stderr is read by a person rather than a log shipper.
func NewDevelopment() (Logger, error) {
	l, err := zap.NewDevelopment()
	if err != nil {
		return nil, err
	}
	return &zapLogger{sugar: l.Sugar()}, nil
}

func (z *zapLogger) Debugf(format string, args ...interface{}) { z.sugar.Debugf(format, args...) }
func (z *zapLogger) Infof(format string, args ...interface{})  { z.sugar.Infof(format, args...) }
func (z *zapLogger) Warnf(format string, args ...interface{})  { z.sugar.Warnf(format, args...) }
func (z *zapLogger) Errorf(format string, args ...interface{}) { z.sugar.Errorf(format, args...) }
func (z *zapLogger) Sugar() *zap.SugaredLogger                 { return z.sugar }

// Nop discards everything, used by tests that don't want log noise.
type Nop struct{}

func (Nop) Debugf(string, ...interface{}) {}
func (Nop) Infof(string, ...interface{})  {}
func (Nop) Warnf(string, ...interface{})  {}
func (Nop) Errorf(string, ...interface{}) {}
func (Nop) Sugar() *zap.SugaredLogger     { return zap.NewNop().Sugar() }
