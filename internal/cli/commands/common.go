package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/ccollicutt/gedline/pkg/config"
	"github.com/ccollicutt/gedline/pkg/detector"
	"github.com/ccollicutt/gedline/pkg/output"
	"github.com/ccollicutt/gedline/pkg/reader"
	"github.com/ccollicutt/gedline/pkg/session"
)

// ExitCode is set by commands to indicate the result.
//
//	0 - every file was read
//	1 - at least one file failed to read
//	2 - usage or configuration error
var ExitCode = 0

// logger receives progress messages. Debug lines are dropped unless
// --debug is set.
var logger = newLogger(os.Stderr, false)

func newLogger(w io.Writer, debug bool) log.Logger {
	l := log.NewLogfmtLogger(log.NewSyncWriter(w))
	l = log.With(l, "ts", log.DefaultTimestampUTC)
	if debug {
		return level.NewFilter(l, level.AllowDebug())
	}
	return level.NewFilter(l, level.AllowInfo())
}

// EnableDebugLog directs log output to w and sets whether debug lines are
// written.
func EnableDebugLog(enabled bool, w io.Writer) {
	logger = newLogger(w, enabled)
}

func commandContext(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}

// newSession builds a session from resolved settings.
func newSession(cfg *config.Config, handler session.LineHandler) *session.Session {
	opts := []session.Option{
		session.WithReaderOptions(
			reader.WithBufferSize(cfg.BufferSize),
			reader.WithMaxLineLength(cfg.MaxLineLength),
		),
		session.WithDetector(detector.New(detector.WithSampleSize(cfg.SampleSize))),
	}
	if enc := cfg.ResolvedEncoding(); enc.Valid() {
		opts = append(opts, session.WithEncoding(enc))
	}
	if handler != nil {
		opts = append(opts, session.WithHandler(handler))
	}
	return session.New(opts...)
}

// cancelOnInterrupt cancels s when the process receives an interrupt. The
// returned function stops watching.
func cancelOnInterrupt(s *session.Session) func() {
	sigCh := make(chan os.Signal, 1)
	done := make(chan struct{})
	signal.Notify(sigCh, os.Interrupt)

	go func() {
		select {
		case <-sigCh:
			level.Info(logger).Log("msg", "interrupt received, stopping after the current line")
			s.Cancel()
		case <-done:
		}
	}()

	return func() {
		signal.Stop(sigCh)
		close(done)
	}
}

func createFormatter(name string, opts output.FormatOptions) (output.Formatter, error) {
	f, ok := output.NewFormatter(name, opts)
	if !ok {
		return nil, fmt.Errorf("unknown output format %q (use text or json)", name)
	}
	return f, nil
}
