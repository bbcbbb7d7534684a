package analytics

import (
	"fmt"
	"strings"
	"time"
)

// SeasonalFactor is a named demand multiplier in effect on a date.
type SeasonalFactor struct {
	Name       string  `json:"name"`
	Multiplier float64 `json:"multiplier"`
}

// Label renders the factor for recommendation output.
func (f SeasonalFactor) Label() string {
	return fmt.Sprintf("%s (x%.2f)", f.Name, f.Multiplier)
}

// MonthDay is a recurring calendar date.
type MonthDay struct {
	Month time.Month
	Day   int
}

func (md MonthDay) ordinal() int {
	return int(md.Month)*100 + md.Day
}

// Season is a recurring window that scales demand for some categories.
// Start after End means the window wraps the new year.
type Season struct {
	Name       string
	Start      MonthDay
	End        MonthDay
	Multiplier float64
	// Categories limits the season to these categories; empty applies to all.
	Categories []string
}

// Contains reports whether the date falls in the window (inclusive).
func (s Season) Contains(t time.Time) bool {
	o := MonthDay{Month: t.Month(), Day: t.Day()}.ordinal()
	start, end := s.Start.ordinal(), s.End.ordinal()
	if start <= end {
		return o >= start && o <= end
	}
	return o >= start || o <= end
}

// Applies reports whether the season affects the category.
func (s Season) Applies(category string) bool {
	if len(s.Categories) == 0 {
		return true
	}
	for _, c := range s.Categories {
		if strings.EqualFold(c, category) {
			return true
		}
	}
	return false
}

// SeasonalCalendar is an ordered list of seasons.
type SeasonalCalendar struct {
	Seasons []Season
}

// FactorsFor returns the factors active for category on date, in calendar order.
func (c *SeasonalCalendar) FactorsFor(date time.Time, category string) []SeasonalFactor {
	if c == nil {
		return nil
	}
	var out []SeasonalFactor
	for _, s := range c.Seasons {
		if s.Multiplier > 0 && s.Contains(date) && s.Applies(category) {
			out = append(out, SeasonalFactor{Name: s.Name, Multiplier: s.Multiplier})
		}
	}
	return out
}

// MultiplierFor returns the product of active factors, or 1.
func (c *SeasonalCalendar) MultiplierFor(date time.Time, category string) float64 {
	return compositeMultiplier(c.FactorsFor(date, category))
}

func compositeMultiplier(factors []SeasonalFactor) float64 {
	m := 1.0
	for _, f := range factors {
		if f.Multiplier > 0 {
			m *= f.Multiplier
		}
	}
	return m
}

// DefaultCalendar is the Indian apparel retail calendar used when none is configured.
func DefaultCalendar() *SeasonalCalendar {
	return &SeasonalCalendar{Seasons: []Season{
		{
			Name: "Diwali festive season", Start: MonthDay{time.October, 15}, End: MonthDay{time.November, 15},
			Multiplier: 1.5, Categories: []string{"Ethnic Wear", "Western Wear", "Kids Wear", "Accessories", "Home Decor"},
		},
		{
			Name: "Wedding season", Start: MonthDay{time.November, 16}, End: MonthDay{time.February, 15},
			Multiplier: 1.3, Categories: []string{"Ethnic Wear", "Accessories", "Footwear"},
		},
		{
			Name: "Winter", Start: MonthDay{time.December, 1}, End: MonthDay{time.February, 10},
			Multiplier: 1.6, Categories: []string{"Winter Wear"},
		},
		{
			Name: "Summer", Start: MonthDay{time.April, 1}, End: MonthDay{time.June, 30},
			Multiplier: 1.2, Categories: []string{"Western Wear", "Kids Wear"},
		},
		{
			Name: "Monsoon", Start: MonthDay{time.July, 1}, End: MonthDay{time.September, 15},
			Multiplier: 1.5, Categories: []string{"Rainwear"},
		},
		{
			Name: "Monsoon slowdown", Start: MonthDay{time.July, 1}, End: MonthDay{time.September, 15},
			Multiplier: 0.85, Categories: []string{"Footwear"},
		},
		{
			Name: "End of season sale", Start: MonthDay{time.January, 1}, End: MonthDay{time.January, 15},
			Multiplier: 1.25,
		},
		{
			Name: "End of season sale", Start: MonthDay{time.July, 1}, End: MonthDay{time.July, 15},
			Multiplier: 1.25,
		},
		{
			Name: "Back to school", Start: MonthDay{time.March, 20}, End: MonthDay{time.April, 15},
			Multiplier: 1.3, Categories: []string{"Kids Wear"},
		},
	}}
}
