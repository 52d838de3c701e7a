package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/flowternity/facility-assistant/internal/model"
)

func TestFallbackAnswer_Pricing(t *testing.T) {
	record := model.DefaultRecord()

	got := FallbackAnswer("How much does it COST to play?", record)

	assert.Contains(t, got, "basketball")
	assert.Contains(t, got, record.Pricing["basketball"])
	assert.NotContains(t, got, record.BasicInfo.Hours)
}

func TestFallbackAnswer_Hours(t *testing.T) {
	record := model.DefaultRecord()

	got := FallbackAnswer("what are your timings, when are you open?", record)

	assert.Contains(t, got, record.BasicInfo.Hours)
	assert.Contains(t, got, record.BasicInfo.Phone)
}

func TestFallbackAnswer_Location(t *testing.T) {
	record := model.DefaultRecord()

	got := FallbackAnswer("Can you share the address?", record)

	assert.Contains(t, got, record.BasicInfo.Address)
}

func TestFallbackAnswer_Booking(t *testing.T) {
	record := model.DefaultRecord()

	got := FallbackAnswer("I want to book a court", record)

	assert.Contains(t, got, "Playo")
	assert.Contains(t, got, "Hudle")
	assert.Contains(t, got, record.BasicInfo.Phone)
}

func TestFallbackAnswer_Coaching(t *testing.T) {
	record := model.DefaultRecord()

	got := FallbackAnswer("do you have basketball training for kids?", record)

	for _, program := range record.Coaching.Programs {
		assert.Contains(t, got, program)
	}
}

func TestFallbackAnswer_RuleOrder(t *testing.T) {
	record := model.DefaultRecord()

	// "cost" and "book" both match; pricing is checked first.
	got := FallbackAnswer("what does it cost to book?", record)
	assert.Contains(t, got, record.Pricing["basketball"])
	assert.NotContains(t, got, "Hudle")
}

func TestFallbackAnswer_GenericContactCard(t *testing.T) {
	record := model.DefaultRecord()

	got := FallbackAnswer("tell me a joke", record)

	assert.Contains(t, got, record.BasicInfo.Name)
	assert.Contains(t, got, record.BasicInfo.Phone)
	assert.Contains(t, got, record.BasicInfo.Address)
	assert.Contains(t, got, record.BasicInfo.Hours)
}

func TestBuildGroundingContext_CoversRecord(t *testing.T) {
	record := model.DefaultRecord()

	ctx := BuildGroundingContext(record)

	assert.Contains(t, ctx, record.BasicInfo.Name)
	assert.Contains(t, ctx, record.BasicInfo.Address)
	assert.Contains(t, ctx, record.BasicInfo.Phone)
	assert.Contains(t, ctx, record.BasicInfo.Hours)
	for _, sport := range record.Sports {
		assert.Contains(t, ctx, sport)
	}
	for _, price := range record.Pricing {
		assert.Contains(t, ctx, price)
	}
	for _, program := range record.Coaching.Programs {
		assert.Contains(t, ctx, program)
	}
	assert.Contains(t, ctx, "Playo")
	assert.Contains(t, ctx, "Hudle")
	assert.Contains(t, ctx, `Inspired by New York's "The Cage" with 16-foot metal boundaries`)
	assert.Contains(t, ctx, "RECENT EVENTS & PROGRAMS")
	assert.Contains(t, ctx, "Summer camps (Basketball & Skating) - April-May 2025")
	assert.Contains(t, ctx, "3x3 Basketball Tournament - June 1, 2025")
}
