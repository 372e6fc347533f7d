package assistant

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/spotsurfer/internal/enrich"
	"github.com/alexanderramin/spotsurfer/internal/llm"
	"github.com/alexanderramin/spotsurfer/internal/prompt"
)

type fakeLLM struct {
	text  string
	err   error
	calls []llm.GenerateRequest
}

func (f *fakeLLM) Generate(ctx context.Context, req llm.GenerateRequest) (*llm.GenerateResponse, error) {
	f.calls = append(f.calls, req)
	if f.err != nil {
		return nil, f.err
	}
	return &llm.GenerateResponse{Text: f.text, Model: "test"}, nil
}

type fakeEnricher struct {
	out  enrich.Sections
	reqs []enrich.Request
}

func (f *fakeEnricher) Enrich(ctx context.Context, req enrich.Request) enrich.Sections {
	f.reqs = append(f.reqs, req)
	return f.out
}

type captureObserver struct {
	events []AskEvent
}

func (c *captureObserver) ObserveAsk(ctx context.Context, e AskEvent) {
	c.events = append(c.events, e)
}

func ptr(f float64) *float64 { return &f }

func newAssistant(model llm.LLMClient, enricher ContextEnricher, observers ...Observer) *Assistant {
	composer := prompt.NewComposer(prompt.Options{
		Now: func() time.Time { return time.Date(2025, 1, 15, 9, 30, 0, 0, time.UTC) },
	})
	return New(Deps{Enricher: enricher, Composer: composer, LLM: model}, observers...)
}

func TestAsk_ComposesPromptAndRendersHTML(t *testing.T) {
	model := &fakeLLM{text: "Park at **Arrabelle Valet**."}
	enricher := &fakeEnricher{out: enrich.Sections{
		UserWeather: "User Location Weather:\nLight snow, 28°F",
		Traffic:     "🚗 Traffic from Denver to Vail",
	}}
	a := newAssistant(model, enricher)

	resp, err := a.Ask(context.Background(), AskRequest{
		Message:      "How far is Arrabelle Valet from Lionshead Village?",
		UserLocation: "Vail",
	})

	require.NoError(t, err)
	assert.Equal(t, "Park at **Arrabelle Valet**.", resp.Response)
	assert.Equal(t, "<p>Park at <strong>Arrabelle Valet</strong>.</p>\n", resp.HTML)
	assert.False(t, resp.Fallback)

	require.Len(t, enricher.reqs, 1)
	assert.Equal(t, "Vail", enricher.reqs[0].Location)

	require.Len(t, model.calls, 1)
	assert.Equal(t, llm.TaskAnswer, model.calls[0].Task)
	p := model.calls[0].UserPrompt
	assert.Contains(t, p, "CURRENT DATE AND TIME: Wednesday, January 15, 2025 09:30 AM")
	assert.Contains(t, p, "User Location Weather:\nLight snow, 28°F")
	assert.Contains(t, p, "🚗 Traffic from Denver to Vail")
	assert.Contains(t, p, "Location Insights:\n📍 Distance from **Arrabelle Valet** to **Lionshead Village** is approximately **0.22 miles**.")
	assert.Contains(t, p, "User Question:\nHow far is Arrabelle Valet from Lionshead Village?")
}

func TestAsk_ExtractsRouteFromMessage(t *testing.T) {
	enricher := &fakeEnricher{}
	a := newAssistant(&fakeLLM{text: "ok"}, enricher)

	_, err := a.Ask(context.Background(), AskRequest{Message: "Traffic from Denver to Vail?"})

	require.NoError(t, err)
	require.Len(t, enricher.reqs, 1)
	assert.Equal(t, "Denver", enricher.reqs[0].Origin)
	assert.Equal(t, "Vail", enricher.reqs[0].Destination)
}

func TestAsk_ReservationContext(t *testing.T) {
	model := &fakeLLM{text: "ok"}
	enricher := &fakeEnricher{}
	a := newAssistant(model, enricher)

	_, err := a.Ask(context.Background(), AskRequest{
		Message:     "Where should I park?",
		Reservation: &Reservation{Destination: " Beaver Creek ", Date: "2025-02-01"},
	})

	require.NoError(t, err)
	assert.Equal(t, "Beaver Creek", enricher.reqs[0].ReservationDestination)
	assert.Contains(t, model.calls[0].UserPrompt, "USER CONTEXT:\nReservation date: 2025-02-01")
}

func TestAsk_LLMFailureFallsBack(t *testing.T) {
	obs := &captureObserver{}
	model := &fakeLLM{err: llm.ErrTimeout}
	a := newAssistant(model, &fakeEnricher{}, obs)

	resp, err := a.Ask(context.Background(), AskRequest{Message: "Is it snowing?"})

	require.NoError(t, err)
	assert.Equal(t, FallbackAnswer, resp.Response)
	assert.True(t, resp.Fallback)
	require.Len(t, obs.events, 1)
	assert.NoError(t, obs.events[0].Err)
	assert.True(t, obs.events[0].Fallback)
	assert.Equal(t, len(model.calls[0].UserPrompt), obs.events[0].PromptChars)
}

func TestAsk_WithoutLLMFallsBack(t *testing.T) {
	a := New(Deps{})

	resp, err := a.Ask(context.Background(), AskRequest{Message: "Is it snowing?"})

	require.NoError(t, err)
	assert.Equal(t, FallbackAnswer, resp.Response)
}

func TestAsk_EmptyMessage(t *testing.T) {
	obs := &captureObserver{}
	model := &fakeLLM{}
	a := newAssistant(model, &fakeEnricher{}, obs)

	_, err := a.Ask(context.Background(), AskRequest{Message: "   "})

	assert.ErrorIs(t, err, ErrEmptyMessage)
	assert.Empty(t, model.calls)
	require.Len(t, obs.events, 1)
	assert.False(t, obs.events[0].Success)
}

func TestAsk_TripStartSkipsModel(t *testing.T) {
	model := &fakeLLM{text: "unused"}
	enricher := &fakeEnricher{}
	a := newAssistant(model, enricher)

	resp, err := a.Ask(context.Background(), AskRequest{
		Intent: IntentTripStart,
		Lat:    ptr(39.64),
		Lng:    ptr(-106.37),
	})

	require.NoError(t, err)
	assert.Contains(t, resp.Response, "**39.64,-106.37**")
	assert.Contains(t, resp.HTML, "<strong>39.64,-106.37</strong>")
	assert.Empty(t, model.calls)
	assert.Empty(t, enricher.reqs)
}

func TestAsk_TripStartNeedsCoordinates(t *testing.T) {
	a := newAssistant(&fakeLLM{}, &fakeEnricher{})

	_, err := a.Ask(context.Background(), AskRequest{Intent: IntentTripStart, Lat: ptr(39.64)})

	assert.ErrorIs(t, err, ErrMissingCoordinates)
}

func TestPreview_DoesNotCallModel(t *testing.T) {
	model := &fakeLLM{}
	a := newAssistant(model, &fakeEnricher{})

	p, err := a.Preview(context.Background(), AskRequest{Message: "Weather in Vail"})

	require.NoError(t, err)
	assert.Contains(t, p, "User Question:\nWeather in Vail")
	assert.True(t, len(p) > 0 && p[len(p)-len("Answer:"):] == "Answer:")
	assert.Empty(t, model.calls)

	_, err = a.Preview(context.Background(), AskRequest{})
	assert.ErrorIs(t, err, ErrEmptyMessage)
}

func TestLogObserver(t *testing.T) {
	var buf bytes.Buffer
	obs := NewLogObserver(&buf)

	obs.ObserveAsk(context.Background(), AskEvent{
		Intent:        "chat",
		Location:      "Vail",
		Route:         true,
		DistanceLines: 2,
		Fallback:      true,
	})
	obs.ObserveAsk(context.Background(), AskEvent{TripStart: true, Err: errors.New("boom")})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "level=WARN msg=ask intent=chat")
	assert.Contains(t, lines[0], "context.location=Vail context.route=true context.distance_lines=2")
	assert.Contains(t, lines[0], "fallback=true")
	assert.Contains(t, lines[1], "level=ERROR")
	assert.Contains(t, lines[1], "trip_start=true")
	assert.Contains(t, lines[1], "error=boom")
	assert.NotContains(t, lines[1], "context.")
	assert.IsType(t, NoopObserver{}, NewLogObserver(nil))
}

func TestAsk_EventsReachEveryObserver(t *testing.T) {
	first, second := &captureObserver{}, &captureObserver{}
	a := newAssistant(&fakeLLM{text: "ok"}, &fakeEnricher{}, first, nil, second)

	_, err := a.Ask(context.Background(), AskRequest{Message: "Arrabelle Valet or Vail Village?", UserLocation: "Vail"})

	require.NoError(t, err)
	require.Len(t, first.events, 1)
	assert.Equal(t, first.events, second.events)
	assert.Equal(t, "Vail", first.events[0].Location)
	assert.Equal(t, 1, first.events[0].DistanceLines)
	assert.False(t, first.events[0].Fallback)
}

func TestAsk_TripStartEvent(t *testing.T) {
	obs := &captureObserver{}
	a := newAssistant(&fakeLLM{}, &fakeEnricher{}, obs)

	_, err := a.Ask(context.Background(), AskRequest{Intent: IntentTripStart})

	require.ErrorIs(t, err, ErrMissingCoordinates)
	require.Len(t, obs.events, 1)
	assert.True(t, obs.events[0].TripStart)
	assert.ErrorIs(t, obs.events[0].Err, ErrMissingCoordinates)
}
