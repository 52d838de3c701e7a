package chat

import (
	"fmt"
	"sort"
	"strings"

	"github.com/flowternity/facility-assistant/internal/model"
)

// BuildGroundingContext renders every field of the canonical record into
// the structured grounding block given to the generative call. The
// generative call is instructed never to fabricate facts that are not
// listed here, so no populated field may be omitted.
func BuildGroundingContext(record *model.FacilityRecord) string {
	var b strings.Builder

	b.WriteString("You are an AI assistant for ")
	b.WriteString(record.BasicInfo.Name)
	b.WriteString(", a multi-sport facility in ")
	b.WriteString(record.BasicInfo.Locality)
	b.WriteString(". Here's the comprehensive information about our facility:\n\n")

	b.WriteString("BASIC INFORMATION:\n")
	fmt.Fprintf(&b, "- Name: %s\n", record.BasicInfo.Name)
	fmt.Fprintf(&b, "- Location: %s\n", record.BasicInfo.Locality)
	fmt.Fprintf(&b, "- Address: %s\n", record.BasicInfo.Address)
	fmt.Fprintf(&b, "- Phone: %s\n", record.BasicInfo.Phone)
	fmt.Fprintf(&b, "- Rating: %.1f/5 (%d reviews)\n", record.BasicInfo.Rating, record.BasicInfo.ReviewCount)
	fmt.Fprintf(&b, "- Operating Hours: %s\n", record.BasicInfo.Hours)
	if record.BasicInfo.Coordinates != nil {
		fmt.Fprintf(&b, "- Coordinates: %f, %f\n", record.BasicInfo.Coordinates.Lat, record.BasicInfo.Coordinates.Lng)
	}

	b.WriteString("\nSPORTS AVAILABLE:\n")
	for _, sport := range record.Sports {
		fmt.Fprintf(&b, "- %s\n", sport)
	}

	b.WriteString("\nPRICING:\n")
	for _, key := range sortedKeys(record.Pricing) {
		fmt.Fprintf(&b, "- %s: %s\n", key, record.Pricing[key])
	}

	b.WriteString("\nAMENITIES:\n")
	for _, amenity := range record.Amenities {
		fmt.Fprintf(&b, "- %s\n", amenity)
	}

	b.WriteString("\nCOACHING PROGRAMS:\n")
	if record.Coaching.Available {
		b.WriteString("- Available: Yes\n")
	} else {
		b.WriteString("- Available: No\n")
	}
	fmt.Fprintf(&b, "- Schedule: %s\n", strings.Join(record.Coaching.Schedule, ", "))
	fmt.Fprintf(&b, "- Programs: %s\n", strings.Join(record.Coaching.Programs, ", "))

	b.WriteString("\nBOOKING INFORMATION:\n")
	b.WriteString("- Book via Playo: https://playo.co/venues/horamavu-bengaluru/flowternity-sports-horamavu-bengaluru\n")
	b.WriteString("- Book via Hudle platform\n")
	fmt.Fprintf(&b, "- Direct booking: Call %s\n", record.BasicInfo.Phone)

	b.WriteString("\nKEY FEATURES:\n")
	b.WriteString("- 22,000 sq ft multi-sport facility\n")
	b.WriteString("- 2 International Standard Basketball Courts\n")
	b.WriteString("- 8-layer synthetic flooring for basketball\n")
	b.WriteString("- 20-foot floodlights for night games\n")
	b.WriteString("- 2 Pickleball courts (multi-use)\n")
	b.WriteString("- Dedicated skating/skateboarding area\n")
	b.WriteString("- Calisthenics zone\n")
	b.WriteString("- Athlete recovery corner\n")
	b.WriteString("- Inspired by New York's \"The Cage\" with 16-foot metal boundaries\n")

	b.WriteString("\nRECENT EVENTS & PROGRAMS:\n")
	b.WriteString("- Summer camps (Basketball & Skating) - April-May 2025\n")
	b.WriteString("- 3x3 Basketball Tournament - June 1, 2025\n")
	b.WriteString("- Regular coaching sessions for all age groups\n")

	b.WriteString("\nYou should respond in a friendly, helpful manner and provide accurate information about the facility. ")
	b.WriteString("Always encourage users to visit or contact the facility for bookings. ")
	b.WriteString("If asked about something not covered in the information above, politely mention that you can help them get in touch with the facility directly.\n\n")
	b.WriteString("IMPORTANT: Always provide specific, accurate information from the context above. ")
	b.WriteString("Don't make up pricing, timings, or other details not provided.\n")

	return b.String()
}

// buildPrompt wraps the user question with the grounding context.
func buildPrompt(userMessage string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "User Question: %s\n\n", userMessage)
	b.WriteString("Please provide a helpful and informative response about the facility. ")
	b.WriteString("Include relevant details like pricing, timings, contact information, or booking instructions when appropriate. ")
	b.WriteString("Keep your response conversational and encouraging.")
	return b.String()
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
