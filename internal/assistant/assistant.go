// Package assistant answers chat questions: it resolves where the user is
// and where they are going, gathers weather and traffic for those places,
// renders the prompt and asks the language model.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/alexanderramin/spotsurfer/internal/enrich"
	"github.com/alexanderramin/spotsurfer/internal/geo"
	"github.com/alexanderramin/spotsurfer/internal/llm"
	"github.com/alexanderramin/spotsurfer/internal/location"
	"github.com/alexanderramin/spotsurfer/internal/prompt"
)

// IntentTripStart acknowledges a trip start without consulting the model.
const IntentTripStart = "trip_start_simple"

// FallbackAnswer is returned when the model cannot be reached.
const FallbackAnswer = "⚠️ Sorry, I couldn't get the information right now. Please try again shortly."

var (
	// ErrEmptyMessage indicates a question with no text.
	ErrEmptyMessage = errors.New("message is required")

	// ErrMissingCoordinates indicates a trip start without lat/lng.
	ErrMissingCoordinates = errors.New("lat and lng are required")
)

// Reservation is the booking the user is asking about, if any.
type Reservation struct {
	Destination string `json:"destination,omitempty"`
	Date        string `json:"date,omitempty"`
}

// AskRequest is one chat turn.
type AskRequest struct {
	Message      string       `json:"message"`
	UserLocation string       `json:"user_location,omitempty"`
	Lat          *float64     `json:"lat,omitempty"`
	Lng          *float64     `json:"lng,omitempty"`
	Intent       string       `json:"intent,omitempty"`
	Reservation  *Reservation `json:"reservation_details,omitempty"`
}

func (r AskRequest) point() *geo.Point {
	if r.Lat == nil || r.Lng == nil {
		return nil
	}
	return &geo.Point{Lat: *r.Lat, Lng: *r.Lng}
}

func (r AskRequest) reservation() Reservation {
	if r.Reservation == nil {
		return Reservation{}
	}
	return Reservation{
		Destination: strings.TrimSpace(r.Reservation.Destination),
		Date:        strings.TrimSpace(r.Reservation.Date),
	}
}

// AskResponse is the answer as markdown and rendered HTML.
type AskResponse struct {
	Response string
	HTML     string
	// Fallback is set when the model failed and FallbackAnswer was used.
	Fallback bool
}

// ContextEnricher gathers the live context sections for a prompt.
type ContextEnricher interface {
	Enrich(ctx context.Context, req enrich.Request) enrich.Sections
}

// Deps are the collaborators of an Assistant. LLM may be nil, in which
// case every question gets FallbackAnswer.
type Deps struct {
	Matcher  *geo.Matcher
	Resolver *location.Resolver
	Enricher ContextEnricher
	Composer *prompt.Composer
	LLM      llm.LLMClient
	Logger   *slog.Logger
}

// Assistant answers questions.
type Assistant struct {
	matcher  *geo.Matcher
	resolver *location.Resolver
	enricher ContextEnricher
	composer *prompt.Composer
	llm      llm.LLMClient
	logger   *slog.Logger
	observer Observer
}

// New creates an Assistant. Unset matcher, resolver and composer get
// their defaults.
func New(deps Deps, observers ...Observer) *Assistant {
	a := &Assistant{
		matcher:  deps.Matcher,
		resolver: deps.Resolver,
		enricher: deps.Enricher,
		composer: deps.Composer,
		llm:      deps.LLM,
		logger:   deps.Logger,
		observer: joinObservers(observers),
	}
	if a.logger == nil {
		a.logger = slog.New(slog.DiscardHandler)
	}
	if a.matcher == nil {
		a.matcher = geo.NewMatcher(geo.DefaultGazetteer())
	}
	if a.resolver == nil {
		a.resolver = location.NewResolver(nil, a.logger)
	}
	if a.composer == nil {
		a.composer = prompt.NewComposer(prompt.Options{})
	}
	return a
}

// Ask answers req. Provider and model failures degrade the answer rather
// than fail it; only invalid requests return an error.
func (a *Assistant) Ask(ctx context.Context, req AskRequest) (resp *AskResponse, err error) {
	ev := AskEvent{Intent: req.Intent, StartedAt: time.Now().UTC()}
	defer func() {
		ev.Duration = time.Since(ev.StartedAt)
		ev.Err = err
		if resp != nil {
			ev.Fallback = resp.Fallback
		}
		a.observer.ObserveAsk(ctx, ev)
	}()

	if req.Intent == IntentTripStart {
		ev.TripStart = true
		return a.tripStart(ctx, req)
	}

	if strings.TrimSpace(req.Message) == "" {
		return nil, ErrEmptyMessage
	}

	p := a.render(ctx, req, &ev)
	ev.PromptChars = len(p)

	answer, fallback := a.generate(ctx, p)
	html, err := RenderHTML(answer)
	if err != nil {
		return nil, err
	}
	return &AskResponse{Response: answer, HTML: html, Fallback: fallback}, nil
}

// Preview renders the prompt Ask would send, without calling the model.
func (a *Assistant) Preview(ctx context.Context, req AskRequest) (string, error) {
	if strings.TrimSpace(req.Message) == "" {
		return "", ErrEmptyMessage
	}
	return a.render(ctx, req, &AskEvent{}), nil
}

func (a *Assistant) render(ctx context.Context, req AskRequest, ev *AskEvent) string {
	msg := strings.TrimSpace(req.Message)
	rsv := req.reservation()

	res := a.resolver.Resolve(ctx, location.Input{
		Message:                msg,
		UserLocation:           req.UserLocation,
		Coordinates:            req.point(),
		ReservationDestination: rsv.Destination,
	})
	ev.Location = res.Location
	ev.Route = res.HasRoute()

	var sections enrich.Sections
	if a.enricher != nil {
		sections = a.enricher.Enrich(ctx, enrich.Request{
			Location:               res.Location,
			LocationPoint:          res.LocationPoint,
			ReservationDestination: rsv.Destination,
			Origin:                 res.Origin,
			Destination:            res.Destination,
		})
	}

	insights := a.matcher.DistanceLines(msg)
	ev.DistanceLines = len(insights)

	return a.composer.Render(prompt.Input{
		Question:         msg,
		ReservationDate:  rsv.Date,
		Weather:          sections.Weather(),
		Traffic:          sections.Traffic,
		LocationInsights: insights,
	})
}

func (a *Assistant) generate(ctx context.Context, p string) (string, bool) {
	if a.llm == nil {
		a.logger.Warn("llm not configured, answering with fallback")
		return FallbackAnswer, true
	}
	resp, err := a.llm.Generate(ctx, llm.GenerateRequest{Task: llm.TaskAnswer, UserPrompt: p})
	if err != nil {
		a.logger.Error("llm request failed", "error", err)
		return FallbackAnswer, true
	}
	return resp.Text, false
}

func (a *Assistant) tripStart(ctx context.Context, req AskRequest) (*AskResponse, error) {
	p := req.point()
	if p == nil {
		return nil, ErrMissingCoordinates
	}
	place := a.resolver.NamePoint(ctx, *p)
	text := fmt.Sprintf("📍 Trip started! Current location noted: **%s**. Ask me about parking, weather or traffic along the way.", place)
	html, err := RenderHTML(text)
	if err != nil {
		return nil, err
	}
	return &AskResponse{Response: text, HTML: html}, nil
}
