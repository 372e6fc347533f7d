package geo

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Place is a named point of interest with fixed coordinates.
type Place struct {
	Name string  `yaml:"name"`
	Lat  float64 `yaml:"lat"`
	Lng  float64 `yaml:"lng"`
}

// Point is a bare coordinate pair.
type Point struct {
	Lat float64
	Lng float64
}

// String renders the point as "lat,lng", the literal form used when a
// coordinate cannot be named.
func (p Point) String() string {
	return fmt.Sprintf("%g,%g", p.Lat, p.Lng)
}

// DefaultGazetteer returns the built-in Vail-area places.
func DefaultGazetteer() []Place {
	return []Place{
		{Name: "Arrabelle Valet", Lat: 39.6404, Lng: -106.3742},
		{Name: "Lionshead Village", Lat: 39.6415, Lng: -106.3780},
		{Name: "Vail Village", Lat: 39.6400, Lng: -106.3740},
		{Name: "Vail Daily building", Lat: 39.6408, Lng: -106.3792},
		{Name: "63 Willow Place", Lat: 39.6390, Lng: -106.3735},
		{Name: "Bluebird Parking", Lat: 39.6422, Lng: -106.3795},
	}
}

type gazetteerFile struct {
	Places []Place `yaml:"places"`
}

// LoadGazetteer reads a YAML document of the form
//
//	places:
//	  - name: Vail Village
//	    lat: 39.64
//	    lng: -106.374
//
// An empty path returns the default gazetteer.
func LoadGazetteer(path string) ([]Place, error) {
	if path == "" {
		return DefaultGazetteer(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading gazetteer: %w", err)
	}
	var f gazetteerFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing gazetteer: %w", err)
	}
	for i, p := range f.Places {
		if p.Name == "" {
			return nil, fmt.Errorf("gazetteer entry %d: name is required", i)
		}
	}
	return f.Places, nil
}
