package model

import (
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"
)

// Source identifies an external facility-data source.
type Source string

const (
	SourcePrimaryListing Source = "primary-listing"
	SourceSocialProfile  Source = "social-profile"
	SourceMapListing     Source = "map-listing"
)

// Category identifies which slice of facility data a fragment carries.
type Category string

const (
	CategoryBasicInfo   Category = "basic-info"
	CategorySports      Category = "sports"
	CategoryPricing     Category = "pricing"
	CategoryAmenities   Category = "amenities"
	CategoryImages      Category = "images"
	CategoryDescription Category = "description"
)

// Payload is the category-shaped content of a fragment. Exactly one
// concrete type exists per Category so the reconciler's merge rules can
// be checked exhaustively.
type Payload interface {
	Category() Category
}

// LatLng is a geographic coordinate pair.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// BasicInfo carries identity and contact fields. All fields are optional
// in a fragment: the zero value means "not extracted". Rating and
// ReviewCount use pointers so an extracted zero is distinguishable from
// absent.
type BasicInfo struct {
	Name        string   `json:"name,omitempty"`
	Locality    string   `json:"locality,omitempty"`
	Address     string   `json:"address,omitempty"`
	Phone       string   `json:"phone,omitempty"`
	Rating      *float64 `json:"rating,omitempty"`
	ReviewCount *int     `json:"reviewCount,omitempty"`
	Hours       string   `json:"hours,omitempty"`
	Coordinates *LatLng  `json:"coordinates,omitempty"`
}

func (BasicInfo) Category() Category { return CategoryBasicInfo }

// IsEmpty reports whether no field was extracted.
func (b BasicInfo) IsEmpty() bool {
	return b.Name == "" && b.Locality == "" && b.Address == "" && b.Phone == "" &&
		b.Rating == nil && b.ReviewCount == nil && b.Hours == "" && b.Coordinates == nil
}

// SportsInfo lists sports offered at the facility.
type SportsInfo struct {
	Sports []string `json:"sports"`
}

func (SportsInfo) Category() Category { return CategorySports }

// PricingInfo maps a sport or category name to a human-readable price.
type PricingInfo struct {
	Prices map[string]string `json:"prices"`
}

func (PricingInfo) Category() Category { return CategoryPricing }

// AmenitiesInfo lists facility amenities.
type AmenitiesInfo struct {
	Amenities []string `json:"amenities"`
}

func (AmenitiesInfo) Category() Category { return CategoryAmenities }

// ImagesInfo lists image URLs.
type ImagesInfo struct {
	Images []string `json:"images"`
}

func (ImagesInfo) Category() Category { return CategoryImages }

// DescriptionInfo carries free-text facility description.
type DescriptionInfo struct {
	Description string `json:"description"`
}

func (DescriptionInfo) Category() Category { return CategoryDescription }

// Fragment is one source's contribution for one data category.
// Fragments are immutable once created; newer data appends a new fragment.
type Fragment struct {
	ID         string    `json:"id"`
	Source     Source    `json:"source"`
	Category   Category  `json:"category"`
	Payload    Payload   `json:"payload"`
	CapturedAt time.Time `json:"capturedAt"`
	Active     bool      `json:"active"`
}

// MarshalPayload serializes a fragment payload for storage.
func MarshalPayload(p Payload) ([]byte, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, eris.Wrap(err, "model: marshal payload")
	}
	return data, nil
}

// UnmarshalPayload deserializes a stored payload by category tag.
func UnmarshalPayload(category Category, data []byte) (Payload, error) {
	var (
		p   Payload
		err error
	)
	switch category {
	case CategoryBasicInfo:
		var v BasicInfo
		err = json.Unmarshal(data, &v)
		p = v
	case CategorySports:
		var v SportsInfo
		err = json.Unmarshal(data, &v)
		p = v
	case CategoryPricing:
		var v PricingInfo
		err = json.Unmarshal(data, &v)
		p = v
	case CategoryAmenities:
		var v AmenitiesInfo
		err = json.Unmarshal(data, &v)
		p = v
	case CategoryImages:
		var v ImagesInfo
		err = json.Unmarshal(data, &v)
		p = v
	case CategoryDescription:
		var v DescriptionInfo
		err = json.Unmarshal(data, &v)
		p = v
	default:
		return nil, eris.Errorf("model: unknown category %q", category)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "model: unmarshal %s payload", category)
	}
	return p, nil
}

// StatusOutcome is the result of the latest aggregation attempt for a source.
type StatusOutcome string

const (
	OutcomeSuccess StatusOutcome = "success"
	OutcomeError   StatusOutcome = "error"
	OutcomePending StatusOutcome = "pending"
)

// SourceStatus records the latest aggregation outcome for one source.
// One row per source; each attempt overwrites the previous entry.
type SourceStatus struct {
	Source        Source        `json:"source"`
	LastAttemptAt time.Time     `json:"lastAttemptAt"`
	Outcome       StatusOutcome `json:"outcome"`
	ErrorDetail   string        `json:"errorDetail,omitempty"`
	FragmentCount int           `json:"fragmentCount"`
}

// ConversationTurn is one request/response pair in a chat session.
// Append-only, ordered by OccurredAt ascending within a session.
type ConversationTurn struct {
	ID           string    `json:"id"`
	SessionID    string    `json:"sessionId"`
	UserText     string    `json:"userText"`
	ResponseText string    `json:"responseText"`
	IsError      bool      `json:"isError"`
	OccurredAt   time.Time `json:"occurredAt"`
}
