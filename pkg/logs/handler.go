package logs

import (
	"context"
	"log/slog"
)

type sourceKey struct{}

// WithSource tags every record logged with ctx with the input file path.
func WithSource(ctx context.Context, path string) context.Context {
	return context.WithValue(ctx, sourceKey{}, path)
}

type Handler struct {
	slog.Handler
}

func (h *Handler) Handle(ctx context.Context, record slog.Record) error {
	if v := ctx.Value(sourceKey{}); v != nil {
		record.Add("source", v.(string))
	}
	return h.Handler.Handle(ctx, record)
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &Handler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *Handler) WithGroup(name string) slog.Handler {
	return &Handler{Handler: h.Handler.WithGroup(name)}
}
