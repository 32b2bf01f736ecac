// Package slogbridge routes log/slog records into a deferred
// gourdianringlog Logger, so code written against slog can share the ring
// with native callers.
package slogbridge

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gourdian25/gourdianringlog"
)

// Options tunes the bridge.
type Options struct {
	// PersistLevel marks records at or above this slog level for
	// persistence. The zero value persists ERROR and above.
	PersistLevel slog.Leveler
}

// Handler is a slog.Handler that records into a Logger under a fixed subsystem.
type Handler struct {
	logger       *gourdianringlog.Logger
	subsystem    gourdianringlog.Subsystem
	persistLevel slog.Leveler
	attrs        []groupedAttr
	group        string
}

// groupedAttr is a WithAttrs attribute with the group path open when it was added.
type groupedAttr struct {
	group string
	attr  slog.Attr
}

// NewHandler returns a Handler recording into logger as sub.
func NewHandler(logger *gourdianringlog.Logger, sub gourdianringlog.Subsystem, opts Options) *Handler {
	persist := opts.PersistLevel
	if persist == nil {
		persist = slog.LevelError
	}
	return &Handler{logger: logger, subsystem: sub, persistLevel: persist}
}

// LevelFromSlog maps a slog level onto the closed level set. Levels above
// ERROR become CRITICAL.
func LevelFromSlog(level slog.Level) gourdianringlog.Level {
	switch {
	case level < slog.LevelInfo:
		return gourdianringlog.DEBUG
	case level < slog.LevelWarn:
		return gourdianringlog.INFO
	case level < slog.LevelError:
		return gourdianringlog.WARNING
	case level == slog.LevelError:
		return gourdianringlog.ERROR
	default:
		return gourdianringlog.CRITICAL
	}
}

// Enabled gates by the logger's threshold for the handler's subsystem.
func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return h.logger.Enabled(h.subsystem, LevelFromSlog(level))
}

// Handle renders the message and attributes as "msg key=value ..." and
// records it. The message is truncated by the logger like any other.
func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder
	b.WriteString(r.Message)

	for _, ga := range h.attrs {
		appendAttr(&b, ga.group, ga.attr)
	}
	r.Attrs(func(a slog.Attr) bool {
		appendAttr(&b, h.group, a)
		return true
	})

	persist := r.Level >= h.persistLevel.Level()
	h.logger.Record(h.subsystem, LevelFromSlog(r.Level), b.String(), persist)
	return nil
}

// appendAttr writes a as " group.key=value". Group values are inlined one
// level deeper; empty groups and zero attributes write nothing.
func appendAttr(b *strings.Builder, group string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	if a.Value.Kind() == slog.KindGroup {
		if a.Key != "" {
			group = qualify(group, a.Key)
		}
		for _, ga := range a.Value.Group() {
			appendAttr(b, group, ga)
		}
		return
	}
	b.WriteByte(' ')
	b.WriteString(qualify(group, a.Key))
	b.WriteByte('=')
	fmt.Fprint(b, a.Value.Any())
}

func qualify(group, key string) string {
	if group == "" {
		return key
	}
	return group + "." + key
}

// WithAttrs returns a copy of the handler with additional base attributes,
// qualified by the groups opened so far.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	nh := *h
	nh.attrs = append([]groupedAttr{}, h.attrs...)
	for _, a := range attrs {
		nh.attrs = append(nh.attrs, groupedAttr{group: h.group, attr: a})
	}
	return &nh
}

// WithGroup returns a copy of the handler whose later attributes are
// prefixed with name.
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	nh := *h
	nh.group = qualify(h.group, name)
	return &nh
}
