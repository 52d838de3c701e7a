package extract

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowternity/facility-assistant/internal/model"
)

type stubFetcher struct {
	body string
	err  error
}

func (s stubFetcher) Fetch(_ context.Context, _ string) (string, error) {
	return s.body, s.err
}

const listingHTML = `<html><body>
<h1>FlowTernity Sports</h1><h2>Horamavu</h2>
<div><i class="fa-star"></i>4.8 (23 ratings)</div>
<p>Open 6 AM - 11 PM every day</p>
<p>1456, Old Flour Mill road, Kalkere, Horamavu</p>
<div>Play Basketball and Pickleball on international courts. Basketball coaching available.</div>
<div>Free Parking available. 20-foot floodlight setup for night games.</div>
<img src="https://playo.gumlet.io/court1.jpg">
<img src="https://playo.gumlet.io/court1.jpg">
<img src="https://playo.gumlet.io/court2.jpg">
<img src="https://cdn.other.com/banner.jpg">
</body></html>`

func fragmentsByCategory(frags []model.Fragment) map[model.Category]model.Fragment {
	out := make(map[model.Category]model.Fragment)
	for _, f := range frags {
		out[f.Category] = f
	}
	return out
}

func TestListingExtract(t *testing.T) {
	ex := NewListingExtractor(stubFetcher{body: listingHTML}, "https://example.test/venue")

	frags, err := ex.Extract(context.Background())
	require.NoError(t, err)

	byCat := fragmentsByCategory(frags)
	for _, f := range frags {
		assert.Equal(t, model.SourcePrimaryListing, f.Source)
	}

	basic, ok := byCat[model.CategoryBasicInfo].Payload.(model.BasicInfo)
	require.True(t, ok)
	assert.Equal(t, "FlowTernity Sports", basic.Name)
	assert.Equal(t, "Horamavu", basic.Locality)
	require.NotNil(t, basic.Rating)
	assert.Equal(t, 4.8, *basic.Rating)
	require.NotNil(t, basic.ReviewCount)
	assert.Equal(t, 23, *basic.ReviewCount)
	assert.Equal(t, "6 AM - 11 PM", basic.Hours)
	assert.Contains(t, basic.Address, "1456")

	sports, ok := byCat[model.CategorySports].Payload.(model.SportsInfo)
	require.True(t, ok)
	assert.ElementsMatch(t, []string{"Basketball", "Pickleball"}, sports.Sports)

	amenities, ok := byCat[model.CategoryAmenities].Payload.(model.AmenitiesInfo)
	require.True(t, ok)
	assert.Contains(t, amenities.Amenities, "Parking")
	assert.Contains(t, amenities.Amenities, "20-foot floodlights")

	images, ok := byCat[model.CategoryImages].Payload.(model.ImagesInfo)
	require.True(t, ok)
	assert.Equal(t, []string{
		"https://playo.gumlet.io/court1.jpg",
		"https://playo.gumlet.io/court2.jpg",
	}, images.Images)
}

func TestListingExtract_SparsePageUsesDefaults(t *testing.T) {
	ex := NewListingExtractor(stubFetcher{body: "<html><body><p>nothing useful</p></body></html>"}, "u")

	frags, err := ex.Extract(context.Background())
	require.NoError(t, err)

	byCat := fragmentsByCategory(frags)

	basic := byCat[model.CategoryBasicInfo].Payload.(model.BasicInfo)
	assert.Equal(t, "FlowTernity Sports", basic.Name)
	assert.Equal(t, "6 AM - 11 PM", basic.Hours)
	require.NotNil(t, basic.Rating)
	assert.Equal(t, 5.0, *basic.Rating)

	// No sports on the page: the known default list is substituted, never empty.
	sports := byCat[model.CategorySports].Payload.(model.SportsInfo)
	assert.Equal(t, model.DefaultSports(), sports.Sports)

	// Empty categories are omitted, not emitted empty.
	_, hasAmenities := byCat[model.CategoryAmenities]
	assert.False(t, hasAmenities)
	_, hasImages := byCat[model.CategoryImages]
	assert.False(t, hasImages)
}

func TestListingExtract_FetchFailure(t *testing.T) {
	ex := NewListingExtractor(stubFetcher{err: eris.New("attempts exhausted")}, "u")

	_, err := ex.Extract(context.Background())
	assert.Error(t, err)
}

func TestListingFallback_Shape(t *testing.T) {
	ex := NewListingExtractor(stubFetcher{}, "u")

	frags := ex.Fallback()
	byCat := fragmentsByCategory(frags)

	require.Contains(t, byCat, model.CategoryBasicInfo)
	require.Contains(t, byCat, model.CategorySports)
	require.Contains(t, byCat, model.CategoryPricing)
	require.Contains(t, byCat, model.CategoryAmenities)
	require.Contains(t, byCat, model.CategoryDescription)

	basic := byCat[model.CategoryBasicInfo].Payload.(model.BasicInfo)
	assert.False(t, basic.IsEmpty())
	assert.NotEmpty(t, basic.Phone)

	pricing := byCat[model.CategoryPricing].Payload.(model.PricingInfo)
	assert.Contains(t, pricing.Prices, "basketball")
}

func TestScanSports(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"case insensitive", "We offer BASKETBALL and pickleball", []string{"Basketball", "Pickleball"}},
		{"dedup aliases", "skating rink and skateboarding zone", []string{"Skating"}},
		{"none found substitutes defaults", "swimming pool only", model.DefaultSports()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, scanSports(tt.text))
		})
	}
}

func TestStaticExtractors(t *testing.T) {
	social := NewSocialExtractor("https://social.test/profile")
	frags, err := social.Extract(context.Background())
	require.NoError(t, err)
	assert.Equal(t, social.Fallback(), frags)
	for _, f := range frags {
		assert.Equal(t, model.SourceSocialProfile, f.Source)
	}

	mapEx := NewMapExtractor("https://maps.test/share")
	frags, err = mapEx.Extract(context.Background())
	require.NoError(t, err)
	require.Len(t, frags, 1)
	basic := frags[0].Payload.(model.BasicInfo)
	require.NotNil(t, basic.Coordinates)
	assert.InDelta(t, 13.035433, basic.Coordinates.Lat, 1e-6)
}
