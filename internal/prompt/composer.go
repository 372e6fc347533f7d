// Package prompt renders the LLM prompt for a question: a fixed framing,
// policy rules evaluated against today's date, the knowledge base and
// whatever context sections were gathered.
package prompt

import (
	"strings"
	"time"
)

// DefaultFraming introduces the assistant persona.
const DefaultFraming = `You are Spot, the official AI assistant for SpotSurfer Parking.
Your job is to give helpful, concise, SpotSurfer-focused parking advice first, then use your best knowledge to help the user.
Use the knowledge base, real-time weather, live traffic and user context below to help users make informed parking decisions and encourage them to book with SpotSurfer. Give practical tips about traffic, travel plans, local sights, attractions and restaurants.`

// TimeLayout formats the current time as "Monday, January 02, 2006 03:04 PM".
const TimeLayout = "Monday, January 02, 2006 03:04 PM"

// Input is everything a single prompt is rendered from. Empty fields
// omit their section.
type Input struct {
	Question         string
	ReservationDate  string
	Weather          string
	Traffic          string
	LocationInsights []string
}

// Options configures a Composer.
type Options struct {
	Framing       string
	Policy        PolicySource
	KnowledgeBase string
	Location      *time.Location
	Now           func() time.Time
}

// Composer renders prompts. It performs no I/O.
type Composer struct {
	framing string
	policy  PolicySource
	kb      string
	loc     *time.Location
	now     func() time.Time
}

// NewComposer fills unset options with the default framing, the default
// policy, UTC and the wall clock.
func NewComposer(opts Options) *Composer {
	c := &Composer{
		framing: opts.Framing,
		policy:  opts.Policy,
		kb:      strings.TrimSpace(opts.KnowledgeBase),
		loc:     opts.Location,
		now:     opts.Now,
	}
	if c.framing == "" {
		c.framing = DefaultFraming
	}
	if c.policy == nil {
		c.policy = StaticPolicy(DefaultPolicy())
	}
	if c.loc == nil {
		c.loc = time.UTC
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c
}

// Render builds the prompt for in.
func (c *Composer) Render(in Input) string {
	now := c.now().In(c.loc)
	policy := c.policy.Policy()

	var b strings.Builder
	b.WriteString(c.framing)
	b.WriteString("\n\n")

	b.WriteString("RULES:\n")
	for _, r := range policy.Rules {
		b.WriteString("- ")
		b.WriteString(r)
		b.WriteString("\n")
	}
	today := DateOf(now)
	for _, s := range policy.Seasonal {
		b.WriteString("- ")
		b.WriteString(s.Rule(today))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString("CURRENT DATE AND TIME: ")
	b.WriteString(now.Format(TimeLayout))
	b.WriteString("\n\n")

	if d := strings.TrimSpace(in.ReservationDate); d != "" {
		section(&b, "USER CONTEXT:", "Reservation date: "+d)
	}
	if c.kb != "" {
		section(&b, "KNOWLEDGE BASE:", c.kb)
	}
	if w := strings.TrimSpace(in.Weather); w != "" {
		b.WriteString(w)
		b.WriteString("\n\n")
	}
	if t := strings.TrimSpace(in.Traffic); t != "" {
		b.WriteString(t)
		b.WriteString("\n\n")
	}
	if len(in.LocationInsights) > 0 {
		section(&b, "Location Insights:", strings.Join(in.LocationInsights, "\n"))
	}

	section(&b, "User Question:", strings.TrimSpace(in.Question))
	b.WriteString("Answer:")
	return b.String()
}

func section(b *strings.Builder, heading, body string) {
	b.WriteString(heading)
	b.WriteString("\n")
	b.WriteString(body)
	b.WriteString("\n\n")
}
