package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func TestSeasonContainsWrapsYear(t *testing.T) {
	wedding := Season{Start: MonthDay{time.November, 16}, End: MonthDay{time.February, 15}}

	assert.True(t, wedding.Contains(date(2026, time.November, 16)))
	assert.True(t, wedding.Contains(date(2026, time.December, 31)))
	assert.True(t, wedding.Contains(date(2027, time.January, 10)))
	assert.True(t, wedding.Contains(date(2027, time.February, 15)))
	assert.False(t, wedding.Contains(date(2027, time.February, 16)))
	assert.False(t, wedding.Contains(date(2026, time.November, 15)))
}

func TestSeasonApplies(t *testing.T) {
	s := Season{Categories: []string{"Winter Wear"}}
	assert.True(t, s.Applies("winter wear"))
	assert.False(t, s.Applies("Footwear"))
	assert.True(t, Season{}.Applies("anything"))
}

func TestDefaultCalendarFactors(t *testing.T) {
	cal := DefaultCalendar()

	factors := cal.FactorsFor(date(2026, time.July, 5), "Footwear")
	assert.Equal(t, []SeasonalFactor{
		{Name: "Monsoon slowdown", Multiplier: 0.85},
		{Name: "End of season sale", Multiplier: 1.25},
	}, factors)
	assert.InDelta(t, 1.0625, cal.MultiplierFor(date(2026, time.July, 5), "Footwear"), 1e-9)
	assert.InDelta(t, 1.875, cal.MultiplierFor(date(2026, time.July, 5), "Rainwear"), 1e-9)

	assert.Empty(t, cal.FactorsFor(date(2026, time.May, 10), "Footwear"))
	assert.Equal(t, 1.0, cal.MultiplierFor(date(2026, time.May, 10), "Footwear"))

	assert.Equal(t, 1.6, cal.MultiplierFor(date(2026, time.December, 20), "Winter Wear"))
	assert.InDelta(t, 1.3*1.25, cal.MultiplierFor(date(2027, time.January, 5), "Ethnic Wear"), 1e-9)
}

func TestNilCalendar(t *testing.T) {
	var cal *SeasonalCalendar
	assert.Nil(t, cal.FactorsFor(date(2026, time.July, 5), "Footwear"))
	assert.Equal(t, 1.0, cal.MultiplierFor(date(2026, time.July, 5), "Footwear"))
}

func TestSeasonalFactorLabel(t *testing.T) {
	assert.Equal(t, "Winter (x1.60)", SeasonalFactor{Name: "Winter", Multiplier: 1.6}.Label())
}
