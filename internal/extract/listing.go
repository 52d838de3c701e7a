package extract

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/flowternity/facility-assistant/internal/fetcher"
	"github.com/flowternity/facility-assistant/internal/model"
)

var (
	ratingRe = regexp.MustCompile(`(\d+(?:\.\d+)?)`)
	reviewRe = regexp.MustCompile(`\((\d+)\s*ratings?\s*\)`)
	hoursRe  = regexp.MustCompile(`\d{1,2}\s*(?:AM|PM)\s*-\s*\d{1,2}\s*(?:AM|PM)`)
)

// ListingExtractor scrapes the facility's booking-platform listing page.
type ListingExtractor struct {
	fetcher fetcher.Fetcher
	url     string
}

// NewListingExtractor creates the primary-listing extractor.
func NewListingExtractor(f fetcher.Fetcher, url string) *ListingExtractor {
	return &ListingExtractor{fetcher: f, url: url}
}

func (e *ListingExtractor) Source() model.Source { return model.SourcePrimaryListing }

// Extract fetches the listing page and parses out basic info, sports,
// amenities, and images. Parse problems degrade field by field to known
// defaults; only a failed fetch is an error.
func (e *ListingExtractor) Extract(ctx context.Context) ([]model.Fragment, error) {
	html, err := e.fetcher.Fetch(ctx, e.url)
	if err != nil {
		return nil, eris.Wrap(err, "extract: fetch listing page")
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		// Malformed content: zero fragments for this pass, never fatal.
		zap.L().Error("listing page parse failed", zap.String("url", e.url), zap.Error(err))
		return nil, nil
	}

	pageText := doc.Text()
	var frags []model.Fragment

	basic := model.BasicInfo{
		Name:     strings.TrimSpace(doc.Find("h1").First().Text()),
		Locality: strings.TrimSpace(doc.Find("h1").First().Next().Text()),
	}
	if basic.Name == "" {
		basic.Name = "FlowTernity Sports"
	}
	if basic.Locality == "" {
		basic.Locality = "Horamavu"
	}

	ratingText := doc.Find(".fa-star").Parent().Text()
	if m := ratingRe.FindStringSubmatch(ratingText); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			basic.Rating = ptrF(v)
		}
	}
	if basic.Rating == nil {
		basic.Rating = ptrF(5.0)
	}
	if m := reviewRe.FindStringSubmatch(ratingText); m != nil {
		if v, err := strconv.Atoi(m[1]); err == nil {
			basic.ReviewCount = ptrI(v)
		}
	}
	if basic.ReviewCount == nil {
		basic.ReviewCount = ptrI(5)
	}

	if m := hoursRe.FindString(pageText); m != "" {
		basic.Hours = m
	} else {
		basic.Hours = "6 AM - 11 PM"
	}

	basic.Address = findAddress(doc)
	frags = append(frags, frag(e.Source(), basic))

	frags = append(frags, frag(e.Source(), model.SportsInfo{Sports: scanSports(pageText)}))

	if amenities := detectAmenities(pageText); len(amenities) > 0 {
		frags = append(frags, frag(e.Source(), model.AmenitiesInfo{Amenities: amenities}))
	}

	if images := collectImages(doc); len(images) > 0 {
		frags = append(frags, frag(e.Source(), model.ImagesInfo{Images: images}))
	}

	return frags, nil
}

// findAddress looks for the street-number marker in the page; the known
// full address stands in when the page layout hides it.
func findAddress(doc *goquery.Document) string {
	address := ""
	doc.Find("address, p, span, div").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := strings.TrimSpace(s.Text())
		if strings.Contains(text, "1456") && len(text) < 200 {
			address = text
			return false
		}
		return true
	})
	if address == "" {
		address = "1456, Old Flour Mill road Dodda Kempaih Layout, Kalkere, Horamavu, Bengaluru, Karnataka 560043"
	}
	return address
}

func detectAmenities(pageText string) []string {
	lower := strings.ToLower(pageText)
	var amenities []string
	if strings.Contains(lower, "parking") {
		amenities = append(amenities, "Parking")
	}
	if strings.Contains(lower, "floodlight") {
		amenities = append(amenities, "20-foot floodlights")
	}
	return amenities
}

func collectImages(doc *goquery.Document) []string {
	seen := make(map[string]bool)
	var images []string
	doc.Find(`img[src*="playo.gumlet.io"]`).Each(func(_ int, s *goquery.Selection) {
		if src, ok := s.Attr("src"); ok && !seen[src] {
			seen[src] = true
			images = append(images, src)
		}
	})
	return images
}

// Fallback returns the hand-curated listing fragment set used when the
// page cannot be fetched at all.
func (e *ListingExtractor) Fallback() []model.Fragment {
	return []model.Fragment{
		frag(e.Source(), model.BasicInfo{
			Name:        "FlowTernity Sports",
			Locality:    "Horamavu, Bengaluru",
			Address:     "1456, Old Flour Mill road Dodda Kempaih Layout, Kalkere, Horamavu, Bengaluru, Karnataka 560043",
			Phone:       "+91 8123999768",
			Rating:      ptrF(5.0),
			ReviewCount: ptrI(5),
			Hours:       "6 AM - 11 PM",
			Coordinates: &model.LatLng{Lat: 13.035433, Lng: 77.670535},
		}),
		frag(e.Source(), model.SportsInfo{Sports: model.DefaultSports()}),
		frag(e.Source(), model.PricingInfo{Prices: map[string]string{
			"basketball": "₹700 onwards per session",
			"pickleball": "₹700 onwards per session",
		}}),
		frag(e.Source(), model.AmenitiesInfo{Amenities: []string{
			"Parking",
			"20-foot floodlights",
			"8-layer synthetic flooring",
			"International standard courts",
		}}),
		frag(e.Source(), model.DescriptionInfo{
			Description: "22,000 sq ft multi-sport facility with 2 international standard basketball courts and various other sports facilities.",
		}),
	}
}
