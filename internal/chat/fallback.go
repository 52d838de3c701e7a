package chat

import (
	"fmt"
	"strings"

	"github.com/flowternity/facility-assistant/internal/model"
)

// fallbackRule pairs a keyword group with its template. Rules are checked
// in order and the first match wins, so precedence is visible here and
// nowhere else.
type fallbackRule struct {
	keywords []string
	render   func(record *model.FacilityRecord) string
}

var fallbackRules = []fallbackRule{
	{
		keywords: []string{"price", "cost", "fee"},
		render:   pricingFallback,
	},
	{
		keywords: []string{"timing", "hours", "open"},
		render: func(r *model.FacilityRecord) string {
			return fmt.Sprintf(
				"I'm having some technical issues right now, but %s is open from %s daily. For current availability and bookings, please call %s.",
				r.BasicInfo.Name, r.BasicInfo.Hours, r.BasicInfo.Phone,
			)
		},
	},
	{
		keywords: []string{"location", "address", "direction"},
		render: func(r *model.FacilityRecord) string {
			return fmt.Sprintf(
				"I'm experiencing connectivity issues, but here's our location: %s. You can also find us on Google Maps or contact us at %s for directions.",
				r.BasicInfo.Address, r.BasicInfo.Phone,
			)
		},
	},
	{
		keywords: []string{"book", "reserve", "availability"},
		render: func(r *model.FacilityRecord) string {
			return fmt.Sprintf(
				"I'm having technical difficulties right now, but you can book our courts through:\n• Playo platform\n• Hudle platform\n• Direct booking: %s\n\nOur courts are available from %s daily.",
				r.BasicInfo.Phone, r.BasicInfo.Hours,
			)
		},
	},
	{
		keywords: []string{"coach", "training", "class"},
		render: func(r *model.FacilityRecord) string {
			return fmt.Sprintf(
				"I'm experiencing some technical issues, but we do offer coaching programs! For details about our %s, please contact us at %s.",
				strings.Join(r.Coaching.Programs, ", "), r.BasicInfo.Phone,
			)
		},
	},
}

func pricingFallback(r *model.FacilityRecord) string {
	var prices []string
	for _, key := range sortedKeys(r.Pricing) {
		prices = append(prices, fmt.Sprintf("%s: %s", key, r.Pricing[key]))
	}
	return fmt.Sprintf(
		"I'm currently experiencing technical difficulties, but I can share our court pricing — %s. For detailed pricing information, please contact us directly at %s or visit our Playo page.",
		strings.Join(prices, "; "), r.BasicInfo.Phone,
	)
}

// FallbackAnswer produces a deterministic answer from the canonical
// record when the generative call fails. It lower-cases the user text and
// tests each keyword group in a fixed priority order; no match yields the
// generic contact-card reply. Always returns something.
func FallbackAnswer(userText string, record *model.FacilityRecord) string {
	lower := strings.ToLower(userText)

	for _, rule := range fallbackRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.render(record)
			}
		}
	}

	return fmt.Sprintf(
		"I apologize, but I'm experiencing technical difficulties right now. For immediate assistance with information about %s, please contact us directly:\n\n📞 Phone: %s\n📍 Address: %s\n⏰ Hours: %s\n\nYou can also book courts through Playo or Hudle platforms. Thank you for your patience!",
		record.BasicInfo.Name, record.BasicInfo.Phone, record.BasicInfo.Address, record.BasicInfo.Hours,
	)
}
