package weather

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// Snapshot is the current weather at one place, in imperial units.
type Snapshot struct {
	Location    string
	Temperature float64
	FeelsLike   float64
	High        float64
	Low         float64
	Description string
	Condition   string
	Humidity    int
	WindSpeed   float64
	WindDeg     int
	WindGust    float64
	CloudCover  int
	Visibility  int // meters
	Pressure    int // hPa
	Sunrise     time.Time
	Sunset      time.Time
	UTCOffset   int // seconds east of UTC
	Lat         float64
	Lng         float64
}

// Format renders s as a Markdown block headed by label. A nil snapshot
// renders the unavailable notice.
func Format(s *Snapshot, label string) string {
	if s == nil {
		return Unavailable(label)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🌤️ **Weather in %s:**\n", label)
	fmt.Fprintf(&b, "- Temperature: %s°F (Feels like %s°F)\n", num(s.Temperature), num(s.FeelsLike))
	fmt.Fprintf(&b, "- High / Low: %s°F / %s°F\n", num(s.High), num(s.Low))
	fmt.Fprintf(&b, "- Conditions: %s (%s)\n", capitalize(s.Description), s.Condition)
	fmt.Fprintf(&b, "- Humidity: %d%%\n", s.Humidity)
	fmt.Fprintf(&b, "- Wind: %s mph", num(s.WindSpeed))
	if s.WindDeg != 0 {
		fmt.Fprintf(&b, " from %d°", s.WindDeg)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "- Cloud cover: %d%%\n", s.CloudCover)
	fmt.Fprintf(&b, "- Visibility: %.1f miles\n", float64(s.Visibility)/1000)
	fmt.Fprintf(&b, "- Pressure: %d hPa\n", s.Pressure)
	fmt.Fprintf(&b, "- Sunrise: %s\n", s.localClock(s.Sunrise))
	fmt.Fprintf(&b, "- Sunset: %s", s.localClock(s.Sunset))
	return b.String()
}

// Unavailable is the notice shown in place of a weather block.
func Unavailable(label string) string {
	return fmt.Sprintf("⚠️ Weather information for %s is currently unavailable.", label)
}

func (s *Snapshot) localClock(t time.Time) string {
	if t.IsZero() {
		return "Unknown"
	}
	return t.In(time.FixedZone("", s.UTCOffset)).Format("03:04 PM")
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}
