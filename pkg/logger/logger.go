// Package logger builds slog loggers for the command line and the server.
// Terminal output is colorized by level; snapshot persistence messages are
// highlighted in green so save-on-write activity stands out.
package logger

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
)

// Options configures NewLogger.
type Options struct {
	Level slog.Level
	// Format is "text" (default) or "json".
	Format string
	// Color forces colorized text output. When nil, color is enabled only if the
	// writer is a terminal.
	Color *bool
}

// NewDefaultLogger returns a text logger on stderr at the given level.
func NewDefaultLogger(level slog.Level) *slog.Logger {
	return NewLogger(os.Stderr, Options{Level: level})
}

// NewLogger returns a logger writing to w.
func NewLogger(w io.Writer, opts Options) *slog.Logger {
	hopts := &slog.HandlerOptions{Level: opts.Level}
	if strings.EqualFold(opts.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, hopts))
	}

	color := isTerminal(w)
	if opts.Color != nil {
		color = *opts.Color
	}
	if !color {
		return slog.New(slog.NewTextHandler(w, hopts))
	}
	return slog.New(newColorHandler(w, hopts))
}

// ParseLevel converts a level name (debug, info, warn, error) to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		level = slog.LevelInfo
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
	return level, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// colorHandler formats records with a TextHandler into a buffer and wraps the
// line in an ANSI color before writing it out.
type colorHandler struct {
	mu   *sync.Mutex
	out  io.Writer
	buf  *bytes.Buffer
	text slog.Handler
}

func newColorHandler(w io.Writer, opts *slog.HandlerOptions) *colorHandler {
	buf := &bytes.Buffer{}
	return &colorHandler{
		mu:   &sync.Mutex{},
		out:  w,
		buf:  buf,
		text: slog.NewTextHandler(buf, opts),
	}
}

func (h *colorHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.text.Enabled(ctx, level)
}

func (h *colorHandler) Handle(ctx context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.buf.Reset()
	if err := h.text.Handle(ctx, r); err != nil {
		return err
	}
	line := bytes.TrimRight(h.buf.Bytes(), "\n")

	color := colorFor(r)
	if color == "" {
		_, err := fmt.Fprintf(h.out, "%s\n", line)
		return err
	}
	_, err := fmt.Fprintf(h.out, "%s%s%s\n", color, line, colorReset)
	return err
}

func (h *colorHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &colorHandler{mu: h.mu, out: h.out, buf: h.buf, text: h.text.WithAttrs(attrs)}
}

func (h *colorHandler) WithGroup(name string) slog.Handler {
	return &colorHandler{mu: h.mu, out: h.out, buf: h.buf, text: h.text.WithGroup(name)}
}

func colorFor(r slog.Record) string {
	switch {
	case r.Level >= slog.LevelError:
		return colorRed
	case r.Level >= slog.LevelWarn:
		return colorYellow
	case isPersistMessage(r.Message):
		return colorGreen
	default:
		return ""
	}
}

func isPersistMessage(msg string) bool {
	m := strings.ToLower(msg)
	return strings.Contains(m, "persist") || strings.Contains(m, "snapshot saved")
}
