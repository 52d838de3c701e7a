package extract

import (
	"context"
	"strings"

	"github.com/flowternity/facility-assistant/internal/model"
)

// Extractor turns one external source into facility fragments.
type Extractor interface {
	// Source identifies which external source this extractor covers.
	Source() model.Source

	// Extract fetches and parses the source, returning one fragment per
	// non-empty category. A fetch that exhausts its retries returns an
	// error; the orchestrator then substitutes Fallback().
	Extract(ctx context.Context) ([]model.Fragment, error)

	// Fallback returns the source's hand-curated fragment set, identical
	// in shape to a successful extraction, so the canonical record
	// degrades gracefully when the source is unreachable.
	Fallback() []model.Fragment
}

func frag(source model.Source, payload model.Payload) model.Fragment {
	return model.Fragment{
		Source:   source,
		Category: payload.Category(),
		Payload:  payload,
	}
}

// sportKeywords maps a lowercase substring to its canonical sport name.
// Ordered so detection output is stable.
var sportKeywords = []struct {
	keyword   string
	canonical string
}{
	{"basketball", "Basketball"},
	{"pickleball", "Pickleball"},
	{"skating", "Skating"},
	{"skateboard", "Skating"},
	{"calisthenics", "Calisthenics"},
}

// scanSports detects known sports by case-insensitive substring match,
// de-duplicated. An empty result substitutes the default sport list: the
// facility is known to offer sports, so detection never reports none.
func scanSports(text string) []string {
	lower := strings.ToLower(text)
	seen := make(map[string]bool)
	var sports []string
	for _, sk := range sportKeywords {
		if strings.Contains(lower, sk.keyword) && !seen[sk.canonical] {
			seen[sk.canonical] = true
			sports = append(sports, sk.canonical)
		}
	}
	if len(sports) == 0 {
		return model.DefaultSports()
	}
	return sports
}

func ptrF(v float64) *float64 { return &v }
func ptrI(v int) *int         { return &v }
