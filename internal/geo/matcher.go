package geo

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// EarthRadiusMiles is the sphere radius used for distance estimates.
const EarthRadiusMiles = 3956.0

// Matcher finds gazetteer places mentioned in free text.
// It is safe for concurrent use; the gazetteer is never modified after construction.
type Matcher struct {
	places   []Place
	patterns []*regexp.Regexp
}

// NewMatcher compiles one case-insensitive literal pattern per place.
func NewMatcher(places []Place) *Matcher {
	m := &Matcher{
		places:   make([]Place, len(places)),
		patterns: make([]*regexp.Regexp, len(places)),
	}
	copy(m.places, places)
	for i, p := range places {
		m.patterns[i] = regexp.MustCompile(`(?i)` + regexp.QuoteMeta(p.Name))
	}
	return m
}

// Places returns a copy of the gazetteer.
func (m *Matcher) Places() []Place {
	out := make([]Place, len(m.places))
	copy(out, m.places)
	return out
}

// Find returns every place whose name occurs in text, in gazetteer order.
func (m *Matcher) Find(text string) []Place {
	var found []Place
	seen := make(map[string]bool)
	for i, re := range m.patterns {
		p := m.places[i]
		if seen[p.Name] || !re.MatchString(text) {
			continue
		}
		seen[p.Name] = true
		found = append(found, p)
	}
	return found
}

// DistanceLines describes the distance between each unordered pair of
// places mentioned in text. Fewer than two matches yields nil.
func (m *Matcher) DistanceLines(text string) []string {
	return PairDistances(m.Find(text))
}

// PairDistances renders one line per pair (i<j) of places.
func PairDistances(places []Place) []string {
	if len(places) < 2 {
		return nil
	}
	var lines []string
	for i := 0; i < len(places); i++ {
		for j := i + 1; j < len(places); j++ {
			a, b := places[i], places[j]
			lines = append(lines, fmt.Sprintf("📍 Distance from **%s** to **%s** is approximately **%s miles**.",
				a.Name, b.Name, FormatMiles(Haversine(a, b))))
		}
	}
	return lines
}

// FormatMiles prints d with the fewest digits that round-trip, keeping at
// least one decimal place: 0.22, 0.2, 1.0.
func FormatMiles(d float64) string {
	s := strconv.FormatFloat(d, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// Haversine returns the great-circle distance between a and b in miles,
// rounded to two decimals.
func Haversine(a, b Place) float64 {
	lat1 := toRadians(a.Lat)
	lat2 := toRadians(b.Lat)
	dLat := lat2 - lat1
	dLng := toRadians(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return math.Round(EarthRadiusMiles*c*100) / 100
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
