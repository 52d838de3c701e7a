package model

import "time"

// RecordBasicInfo is the fully-populated identity block of the canonical
// record. Unlike the fragment payload, every field always has a value.
type RecordBasicInfo struct {
	Name        string  `json:"name"`
	Locality    string  `json:"locality"`
	Address     string  `json:"address"`
	Phone       string  `json:"phone"`
	Rating      float64 `json:"rating"`
	ReviewCount int     `json:"reviewCount"`
	Hours       string  `json:"hours"`
	Coordinates *LatLng `json:"coordinates,omitempty"`
}

// Coaching describes coaching availability at the facility.
type Coaching struct {
	Available bool     `json:"available"`
	Schedule  []string `json:"schedule"`
	Programs  []string `json:"programs"`
}

// FacilityRecord is the reconciled view of all facility facts. It is
// always fully populated: every field has a built-in default, so the
// record is never partially undefined even with zero fragments.
type FacilityRecord struct {
	BasicInfo    RecordBasicInfo   `json:"basicInfo"`
	Sports       []string          `json:"sports"`
	Pricing      map[string]string `json:"pricing"`
	Amenities    []string          `json:"amenities"`
	Coaching     Coaching          `json:"coaching"`
	Images       []string          `json:"images"`
	ReconciledAt time.Time         `json:"reconciledAt"`
}

// DefaultRecord returns the built-in known-good facility record. The
// reconciler starts every merge from this baseline so missing or failed
// sources degrade to these values rather than empty fields.
func DefaultRecord() *FacilityRecord {
	return &FacilityRecord{
		BasicInfo: RecordBasicInfo{
			Name:        "FlowTernity Sports",
			Locality:    "Horamavu, Bengaluru",
			Address:     "1456, Old Flour Mill road Dodda Kempaih Layout, Kalkere, Horamavu, Bengaluru, Karnataka 560043",
			Phone:       "+91 8123999768",
			Rating:      5.0,
			ReviewCount: 5,
			Hours:       "6 AM - 11 PM",
			Coordinates: &LatLng{Lat: 13.035433, Lng: 77.670535},
		},
		Sports: []string{"Basketball", "Pickleball", "Skating", "Calisthenics"},
		Pricing: map[string]string{
			"basketball": "₹700 onwards per session",
			"pickleball": "₹700 onwards per session",
		},
		Amenities: []string{
			"Parking",
			"20-foot floodlights",
			"8-layer synthetic flooring",
			"International standard courts",
		},
		Coaching: Coaching{
			Available: true,
			Schedule:  []string{"Weekends: 8-9 AM, 5-6 PM", "Adults: Tue/Thu 7-8 PM"},
			Programs:  []string{"Basketball Training", "Skating Classes", "Calisthenics", "Summer Camps"},
		},
		Images:       []string{},
		ReconciledAt: time.Now().UTC(),
	}
}

// DefaultSports is substituted whenever sport detection finds nothing:
// the facility is known to offer these, so extraction must never report
// an empty sports list.
func DefaultSports() []string {
	return []string{"Basketball", "Pickleball", "Skating", "Calisthenics"}
}
