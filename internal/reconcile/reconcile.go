// Package reconcile merges persisted source fragments and built-in
// defaults into the canonical facility record.
package reconcile

import (
	"context"
	"sort"
	"time"

	"github.com/rotisserie/eris"

	"github.com/flowternity/facility-assistant/internal/model"
	"github.com/flowternity/facility-assistant/internal/store"
)

// sourcePrecedence orders sources from lowest to highest authority for
// field-level overwrites: the primary listing is the facility's own
// booking page and wins over the map listing, which wins over the
// hand-curated social profile. Unknown sources rank lowest.
var sourcePrecedence = map[model.Source]int{
	model.SourceSocialProfile:  1,
	model.SourceMapListing:     2,
	model.SourcePrimaryListing: 3,
}

// Reconciler builds the canonical facility record from active fragments.
type Reconciler struct {
	store store.Store
}

// New creates a Reconciler reading from the given store.
func New(st store.Store) *Reconciler {
	return &Reconciler{store: st}
}

// Reconcile merges all active fragments over the built-in defaults.
// Overwrite categories (basic-info, pricing) are applied in ascending
// source precedence, then ascending capture time, so the most
// authoritative and most recent value wins per field. Collection
// categories (sports, amenities, images) are set-unions with the
// defaults: entries are only ever added, never removed. The result is
// always fully populated.
func (r *Reconciler) Reconcile(ctx context.Context) (*model.FacilityRecord, error) {
	frags, err := r.store.ListActiveFragments(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "reconcile: list fragments")
	}

	sort.SliceStable(frags, func(i, j int) bool {
		pi, pj := sourcePrecedence[frags[i].Source], sourcePrecedence[frags[j].Source]
		if pi != pj {
			return pi < pj
		}
		return frags[i].CapturedAt.Before(frags[j].CapturedAt)
	})

	record := model.DefaultRecord()
	for _, f := range frags {
		apply(record, f)
	}
	record.ReconciledAt = time.Now().UTC()

	return record, nil
}

func apply(record *model.FacilityRecord, f model.Fragment) {
	switch p := f.Payload.(type) {
	case model.BasicInfo:
		mergeBasicInfo(&record.BasicInfo, p)
	case model.SportsInfo:
		record.Sports = union(record.Sports, p.Sports)
	case model.PricingInfo:
		for k, v := range p.Prices {
			record.Pricing[k] = v
		}
	case model.AmenitiesInfo:
		record.Amenities = union(record.Amenities, p.Amenities)
	case model.ImagesInfo:
		record.Images = union(record.Images, p.Images)
	case model.DescriptionInfo:
		// Descriptions are kept in fragments for audit and surfaced via
		// the grounding context; the canonical record has no field for
		// them.
	}
}

// mergeBasicInfo overwrites only the fields present in the fragment.
func mergeBasicInfo(dst *model.RecordBasicInfo, src model.BasicInfo) {
	if src.Name != "" {
		dst.Name = src.Name
	}
	if src.Locality != "" {
		dst.Locality = src.Locality
	}
	if src.Address != "" {
		dst.Address = src.Address
	}
	if src.Phone != "" {
		dst.Phone = src.Phone
	}
	if src.Rating != nil {
		dst.Rating = *src.Rating
	}
	if src.ReviewCount != nil {
		dst.ReviewCount = *src.ReviewCount
	}
	if src.Hours != "" {
		dst.Hours = src.Hours
	}
	if src.Coordinates != nil {
		dst.Coordinates = src.Coordinates
	}
}

// union appends entries of add not already in base, preserving order:
// base first, then new entries in application order.
func union(base, add []string) []string {
	seen := make(map[string]bool, len(base))
	for _, v := range base {
		seen[v] = true
	}
	for _, v := range add {
		if !seen[v] {
			seen[v] = true
			base = append(base, v)
		}
	}
	return base
}
