package cli

import (
	"strings"

	"github.com/spf13/pflag"

	"github.com/alexanderramin/spotsurfer/internal/assistant"
)

// tripFlags are the context flags shared by ask, prompt and chat.
type tripFlags struct {
	location    string
	lat, lng    float64
	destination string
	date        string
	intent      string
}

func (f *tripFlags) bind(fs *pflag.FlagSet) {
	fs.StringVarP(&f.location, "location", "l", "", "your current location")
	fs.Float64Var(&f.lat, "lat", 0, "your latitude")
	fs.Float64Var(&f.lng, "lng", 0, "your longitude")
	fs.StringVarP(&f.destination, "destination", "d", "", "reservation destination")
	fs.StringVar(&f.date, "date", "", "reservation date (YYYY-MM-DD)")
	fs.StringVar(&f.intent, "intent", "", "request intent, e.g. "+assistant.IntentTripStart)
}

// request builds an AskRequest. Coordinates are only sent when both
// flags were given.
func (f *tripFlags) request(fs *pflag.FlagSet, message string) assistant.AskRequest {
	req := assistant.AskRequest{
		Message:      strings.TrimSpace(message),
		UserLocation: strings.TrimSpace(f.location),
		Intent:       f.intent,
	}
	if fs.Changed("lat") && fs.Changed("lng") {
		lat, lng := f.lat, f.lng
		req.Lat, req.Lng = &lat, &lng
	}
	if f.destination != "" || f.date != "" {
		req.Reservation = &assistant.Reservation{Destination: f.destination, Date: f.date}
	}
	return req
}
