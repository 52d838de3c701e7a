package extract

import (
	"context"

	"github.com/flowternity/facility-assistant/internal/model"
)

// SocialExtractor covers the facility's social profile. The profile sits
// behind anti-automation walls, so instead of attempting extraction it
// returns a static, hand-curated fragment set. This is a deliberate
// fallback, not an error.
type SocialExtractor struct {
	url string
}

// NewSocialExtractor creates the social-profile extractor.
func NewSocialExtractor(url string) *SocialExtractor {
	return &SocialExtractor{url: url}
}

func (e *SocialExtractor) Source() model.Source { return model.SourceSocialProfile }

func (e *SocialExtractor) Extract(_ context.Context) ([]model.Fragment, error) {
	return e.Fallback(), nil
}

func (e *SocialExtractor) Fallback() []model.Fragment {
	return []model.Fragment{
		frag(e.Source(), model.BasicInfo{Name: "FlowTernity Sports"}),
		frag(e.Source(), model.DescriptionInfo{
			Description: "Multi-sport facility in Horamavu, Bengaluru offering Basketball, Pickleball, Skating, and Calisthenics",
		}),
		frag(e.Source(), model.SportsInfo{Sports: model.DefaultSports()}),
	}
}
