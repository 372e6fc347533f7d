package prompt

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultRules are the behavioral rules every prompt carries unless a
// policy file replaces them.
var DefaultRules = []string{
	"Only help with parking, getting around, travel plans, local events, restaurants and attractions near SpotSurfer locations. Politely decline unrelated requests.",
	"Never mention, recommend or compare competing parking companies or apps.",
	"Offer a SpotSurfer discount code only occasionally, when it clearly makes the user's visit smoother. Never more than one per answer.",
	"Only bring up events that take place on or after the current date. Ignore past events in the knowledge base.",
	"Use the user's context to tailor suggestions, and also offer new options that suit them.",
}

// Date is a calendar day without a time or zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

const dateLayout = "2006-01-02"

// ParseDate parses "YYYY-MM-DD".
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("parsing date %q: %w", s, err)
	}
	return DateOf(t), nil
}

// DateOf returns the calendar day of t in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// IsZero reports whether d is unset.
func (d Date) IsZero() bool { return d == Date{} }

// Before reports whether d is strictly earlier than other.
func (d Date) Before(other Date) bool {
	if d.Year != other.Year {
		return d.Year < other.Year
	}
	if d.Month != other.Month {
		return d.Month < other.Month
	}
	return d.Day < other.Day
}

// Human renders d as "April 20, 2026".
func (d Date) Human() string {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC).Format("January 2, 2006")
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

func (d *Date) UnmarshalYAML(node *yaml.Node) error {
	parsed, err := ParseDate(node.Value)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) MarshalYAML() (any, error) {
	return d.String(), nil
}

// SeasonalService is a service that runs for part of the year and may be
// followed by another service.
type SeasonalService struct {
	Name             string `yaml:"name"`
	ClosesOn         Date   `yaml:"closes_on"`
	Successor        string `yaml:"successor,omitempty"`
	SuccessorOpensOn Date   `yaml:"successor_opens_on,omitempty"`
}

// Phase is where a seasonal service stands on a given day.
type Phase int

const (
	PhaseOpen Phase = iota
	PhaseClosed
	PhaseSuccessorOpen
)

// PhaseOn evaluates the service on day. The service is open through its
// close date.
func (s SeasonalService) PhaseOn(day Date) Phase {
	if !s.ClosesOn.Before(day) {
		return PhaseOpen
	}
	if s.Successor != "" && !s.SuccessorOpensOn.IsZero() && !day.Before(s.SuccessorOpensOn) {
		return PhaseSuccessorOpen
	}
	return PhaseClosed
}

// Rule renders the instruction for the service on day.
func (s SeasonalService) Rule(day Date) string {
	switch s.PhaseOn(day) {
	case PhaseOpen:
		return fmt.Sprintf("%s is operating through %s.", s.Name, s.ClosesOn.Human())
	case PhaseSuccessorOpen:
		return fmt.Sprintf("%s closed for the season on %s. Do not mention or recommend %s. %s is now open; recommend it where relevant.",
			s.Name, s.ClosesOn.Human(), s.Name, s.Successor)
	default:
		rule := fmt.Sprintf("%s closed for the season on %s. Do not mention or recommend %s.",
			s.Name, s.ClosesOn.Human(), s.Name)
		if s.Successor != "" && !s.SuccessorOpensOn.IsZero() {
			rule += fmt.Sprintf(" Do not promote %s until it opens on %s.", s.Successor, s.SuccessorOpensOn.Human())
		}
		return rule
	}
}

// Policy is the deployment-supplied rule set.
type Policy struct {
	Rules    []string          `yaml:"rules"`
	Seasonal []SeasonalService `yaml:"seasonal"`
}

// DefaultPolicy carries DefaultRules and no seasonal services.
func DefaultPolicy() Policy {
	rules := make([]string, len(DefaultRules))
	copy(rules, DefaultRules)
	return Policy{Rules: rules}
}

// Validate checks seasonal entries for required fields.
func (p Policy) Validate() error {
	for i, s := range p.Seasonal {
		if strings.TrimSpace(s.Name) == "" {
			return fmt.Errorf("seasonal entry %d: name is required", i)
		}
		if s.ClosesOn.IsZero() {
			return fmt.Errorf("seasonal entry %q: closes_on is required", s.Name)
		}
		if s.Successor != "" && !s.SuccessorOpensOn.IsZero() && s.SuccessorOpensOn.Before(s.ClosesOn) {
			return fmt.Errorf("seasonal entry %q: successor opens before the service closes", s.Name)
		}
	}
	return nil
}

// ParsePolicy decodes a YAML policy. Missing rules fall back to DefaultRules.
func ParsePolicy(data []byte) (Policy, error) {
	var p Policy
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Policy{}, fmt.Errorf("parsing policy: %w", err)
	}
	if len(p.Rules) == 0 {
		p.Rules = DefaultPolicy().Rules
	}
	if err := p.Validate(); err != nil {
		return Policy{}, err
	}
	return p, nil
}

// LoadPolicy reads a YAML policy file.
func LoadPolicy(path string) (Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, fmt.Errorf("reading policy: %w", err)
	}
	return ParsePolicy(data)
}
