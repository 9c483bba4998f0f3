// Package state defines shared program state.
package state

import (
	"context"
	"time"

	"go.uber.org/zap"

	"aacc/board"
	"aacc/config"
	"aacc/convert"
)

type envKey struct{}

// LocalEnv keeps everything program needs in a single place.
type LocalEnv struct {
	Cfg *config.Config
	Rpt *config.Report
	Log *zap.Logger

	// Codecs resolves formats for all subcommands.
	Codecs *convert.Registry

	// used by convert subcommand
	Overwrite bool
	NoDirs    bool
	IDs       board.IDGenerator

	start         time.Time
	restoreStdLog func()
}

func EnvFromContext(ctx context.Context) *LocalEnv {
	if env, ok := ctx.Value(envKey{}).(*LocalEnv); ok {
		return env
	}
	// this should never happen
	panic("localenv not found in context")
}

func ContextWithEnv(ctx context.Context) context.Context {
	return context.WithValue(ctx, envKey{}, &LocalEnv{start: time.Now()})
}

func (e *LocalEnv) Uptime() time.Duration {
	return time.Since(e.start)
}

// ConvertOptions assembles codec options from the environment.
func (e *LocalEnv) ConvertOptions() *convert.Options {
	opts := &convert.Options{
		Log: e.Log,
		IDs: e.IDs,
	}
	if e.Cfg != nil {
		opts.TargetLanguage = e.Cfg.Conversion.TargetLanguage
	}
	return opts.Normalized()
}

func (e *LocalEnv) RedirectStdLog() {
	if e.Log == nil {
		return
	}
	e.restoreStdLog = zap.RedirectStdLog(e.Log)
}

func (e *LocalEnv) RestoreStdLog() {
	if e.Log != nil {
		_ = e.Log.Sync()
	}
	if e.restoreStdLog != nil {
		e.restoreStdLog()
	}
}
