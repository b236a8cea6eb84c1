// Package logger is the tagged console logger shared by every package.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	mu   sync.RWMutex
	out  io.Writer = os.Stdout
	base           = newLogger(os.Stdout, DefaultOptions(ProfileRuntime))
)

func newLogger(w io.Writer, opts Options) zerolog.Logger {
	if !opts.JSON {
		w = zerolog.ConsoleWriter{
			Out:        w,
			NoColor:    opts.NoColor,
			TimeFormat: time.TimeOnly,
			PartsExclude: func() []string {
				if opts.Timestamp {
					return nil
				}
				return []string{zerolog.TimestampFieldName}
			}(),
		}
	}
	ctx := zerolog.New(w).Level(opts.Level).With()
	if opts.Timestamp {
		ctx = ctx.Timestamp()
	}
	return ctx.Logger()
}

// Configure replaces the shared logger. Environment variables override opts.
func Configure(opts Options) {
	ConfigureOutput(os.Stdout, opts)
}

// ConfigureOutput is Configure with an explicit destination.
func ConfigureOutput(w io.Writer, opts Options) {
	applyEnvOverrides(&opts)
	l := newLogger(w, opts)
	mu.Lock()
	base = l
	out = w
	mu.Unlock()
}

// For returns a logger tagged with a component name for structured fields.
func For(tag string) zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base.With().Str("tag", tag).Logger()
}

func Debug(tag, msg string) {
	l := For(tag)
	l.Debug().Msg(msg)
}

func Info(tag, msg string) {
	l := For(tag)
	l.Info().Msg(msg)
}

// Success logs a completed step at info level.
func Success(tag, msg string) {
	l := For(tag)
	l.Info().Bool("ok", true).Msg(msg)
}

func Warn(tag, msg string) {
	l := For(tag)
	l.Warn().Msg(msg)
}

func Error(tag, msg string) {
	l := For(tag)
	l.Error().Msg(msg)
}

func writer() io.Writer {
	mu.RLock()
	defer mu.RUnlock()
	return out
}

// Banner prints the startup banner.
func Banner(version string) {
	w := writer()
	fmt.Fprintln(w, "  ╔═╗╔╦╗╔═╗╦═╗╦  ╔═╗╔╗╔╔═╗")
	fmt.Fprintln(w, "  ╚═╗ ║ ╠═╣╠╦╝║  ╠═╣║║║║╣ ")
	fmt.Fprintln(w, "  ╚═╝ ╩ ╩ ╩╩╚═╩═╝╩ ╩╝╚╝╚═╝")
	if version != "" {
		fmt.Fprintf(w, "  %s\n", version)
	}
	fmt.Fprintln(w)
}

// Section prints a heading for a block of Stats lines.
func Section(title string) {
	w := writer()
	fmt.Fprintf(w, "\n  %s\n  %s\n", title, strings.Repeat("─", len([]rune(title))))
}

// Stats prints one aligned key/value line.
func Stats(key string, val any) {
	fmt.Fprintf(writer(), "  %-24s %v\n", key, val)
}
