package assistant

import (
	"context"
	"io"
	"log/slog"
	"time"
)

// AskEvent describes how one Ask was answered.
type AskEvent struct {
	Intent    string
	TripStart bool
	// Location is the effective location the weather was looked up for.
	Location      string
	Route         bool
	DistanceLines int
	PromptChars   int
	// Fallback is set when the model was skipped or failed.
	Fallback  bool
	StartedAt time.Time
	Duration  time.Duration
	Err       error
}

// Observer is told about every answered or rejected question.
type Observer interface {
	ObserveAsk(ctx context.Context, event AskEvent)
}

// NoopObserver drops events.
type NoopObserver struct{}

func (NoopObserver) ObserveAsk(context.Context, AskEvent) {}

// LogObserver writes one structured line per event. Rejected requests log
// at error level, fallback answers at warn.
type LogObserver struct {
	logger *slog.Logger
}

// NewLogObserver logs events to w with a text handler.
func NewLogObserver(w io.Writer) Observer {
	if w == nil {
		return NoopObserver{}
	}
	return &LogObserver{logger: slog.New(slog.NewTextHandler(w, nil))}
}

func (o *LogObserver) ObserveAsk(ctx context.Context, e AskEvent) {
	attrs := []slog.Attr{
		slog.String("intent", e.Intent),
		slog.Int64("duration_ms", e.Duration.Milliseconds()),
	}
	if e.TripStart {
		attrs = append(attrs, slog.Bool("trip_start", true))
	} else {
		attrs = append(attrs,
			slog.Group("context",
				slog.String("location", e.Location),
				slog.Bool("route", e.Route),
				slog.Int("distance_lines", e.DistanceLines),
			),
			slog.Int("prompt_chars", e.PromptChars),
			slog.Bool("fallback", e.Fallback),
		)
	}

	level := slog.LevelInfo
	switch {
	case e.Err != nil:
		level = slog.LevelError
		attrs = append(attrs, slog.String("error", e.Err.Error()))
	case e.Fallback:
		level = slog.LevelWarn
	}
	o.logger.LogAttrs(ctx, level, "ask", attrs...)
}

// fanOut delivers each event to every observer.
type fanOut []Observer

func (f fanOut) ObserveAsk(ctx context.Context, e AskEvent) {
	for _, o := range f {
		o.ObserveAsk(ctx, e)
	}
}

func joinObservers(observers []Observer) Observer {
	var out fanOut
	for _, o := range observers {
		if o != nil {
			out = append(out, o)
		}
	}
	switch len(out) {
	case 0:
		return NoopObserver{}
	case 1:
		return out[0]
	}
	return out
}
