// Package intent pulls a weather subject and a travel route out of a
// free-text question using fixed patterns. A miss yields empty strings.
package intent

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	weatherPattern = regexp.MustCompile(`weather\s+(?:in|at|for)?\s*([a-z\s]+)`)

	fromToPattern = regexp.MustCompile(`from ([a-z\s]+?) to ([a-z\s]+?)(?:[.,?!]|$)`)
	selfToPattern = regexp.MustCompile(`from my_location to ([a-z\s]+?)(?:[.,?!]|$)`)
	toPattern     = regexp.MustCompile(`\bto ([a-z\s]+?)(?:[.,?!]|$)`)
)

// Route is the origin and destination named in a question.
type Route struct {
	Origin      string
	Destination string
	// OriginIsSelf is set when the origin slot held the MY_LOCATION token,
	// meaning the caller's own location should stand in for it.
	OriginIsSelf bool
}

// WeatherLocation returns the place named after "weather [in|at|for]",
// title-cased, or "" when the question names none.
func WeatherLocation(text string) string {
	m := weatherPattern.FindStringSubmatch(strings.ToLower(text))
	if m == nil {
		return ""
	}
	return titleCase(m[1])
}

// ExtractRoute finds "from X to Y", "from MY_LOCATION to Y" or a bare
// "to Y" in text.
func ExtractRoute(text string) Route {
	lower := strings.ToLower(text)

	if m := fromToPattern.FindStringSubmatch(lower); m != nil {
		return Route{Origin: titleCase(m[1]), Destination: titleCase(m[2])}
	}
	if m := selfToPattern.FindStringSubmatch(lower); m != nil {
		return Route{Destination: titleCase(m[1]), OriginIsSelf: true}
	}
	if m := toPattern.FindStringSubmatch(lower); m != nil {
		return Route{Destination: titleCase(m[1])}
	}
	return Route{}
}

func titleCase(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return ""
	}
	return cases.Title(language.English).String(s)
}
