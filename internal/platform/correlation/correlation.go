// Package correlation ties together the log lines written while serving one
// request. The HTTP layer mints an identifier, stores it in the request
// context, and the slog handler below stamps it onto every record emitted
// under that context.
package correlation

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
)

type ctxKey struct{}

const attrKey = "correlation_id"

// NewID mints a request identifier: 4 random bytes, hex encoded.
func NewID() string {
	buf := make([]byte, 4)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}

// WithID stores id in ctx.
func WithID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// ID reports the identifier stored in ctx, if any.
func ID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ctxKey{}).(string)
	return id, ok && id != ""
}

// Handler decorates a slog.Handler so records written under a request
// context carry its correlation_id attribute.
type Handler struct {
	next slog.Handler
}

func NewHandler(next slog.Handler) *Handler {
	return &Handler{next: next}
}

func (h *Handler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *Handler) Handle(ctx context.Context, record slog.Record) error {
	if id, ok := ID(ctx); ok {
		record.AddAttrs(slog.String(attrKey, id))
	}
	if err := h.next.Handle(ctx, record); err != nil {
		return fmt.Errorf("write log record: %w", err)
	}
	return nil
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &Handler{next: h.next.WithAttrs(attrs)}
}

func (h *Handler) WithGroup(name string) slog.Handler {
	return &Handler{next: h.next.WithGroup(name)}
}
