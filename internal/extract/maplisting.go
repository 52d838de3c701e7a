package extract

import (
	"context"

	"github.com/flowternity/facility-assistant/internal/model"
)

// MapExtractor covers the facility's map listing. Map share URLs redirect
// through consent walls and resist direct scraping, so it returns static
// location data.
type MapExtractor struct {
	url string
}

// NewMapExtractor creates the map-listing extractor.
func NewMapExtractor(url string) *MapExtractor {
	return &MapExtractor{url: url}
}

func (e *MapExtractor) Source() model.Source { return model.SourceMapListing }

func (e *MapExtractor) Extract(_ context.Context) ([]model.Fragment, error) {
	return e.Fallback(), nil
}

func (e *MapExtractor) Fallback() []model.Fragment {
	return []model.Fragment{
		frag(e.Source(), model.BasicInfo{
			Name:        "FlowTernity Sports",
			Locality:    "Horamavu, Bengaluru",
			Address:     "1456, Old Flour Mill road Dodda Kempaih Layout, Kalkere, Horamavu, Bengaluru, Karnataka 560043",
			Coordinates: &model.LatLng{Lat: 13.035433, Lng: 77.670535},
		}),
	}
}
