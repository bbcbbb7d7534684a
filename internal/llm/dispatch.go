package llm

import (
	"sort"
	"strings"
	"unicode"
)

// Capability is one analysis a chat answer can draw on.
type Capability string

const (
	CapabilityCompetition Capability = "competition"
	CapabilityTrends      Capability = "trends"
	CapabilityInventory   Capability = "inventory"
	CapabilityForecast    Capability = "forecast"
	CapabilityWeather     Capability = "weather"
	CapabilityInsights    Capability = "insights"
)

// capabilityOrder is the order capabilities appear in prompt context.
var capabilityOrder = []Capability{
	CapabilityInsights, CapabilityCompetition, CapabilityTrends,
	CapabilityInventory, CapabilityForecast, CapabilityWeather,
}

// DispatchTable maps lower-case keywords to the capabilities they require.
type DispatchTable map[string][]Capability

// DefaultDispatchTable is the keyword routing used by the chat endpoint.
func DefaultDispatchTable() DispatchTable {
	return DispatchTable{
		"competitor":  {CapabilityCompetition},
		"competitors": {CapabilityCompetition},
		"competition": {CapabilityCompetition},
		"nearby":      {CapabilityCompetition},
		"rival":       {CapabilityCompetition},
		"zudio":       {CapabilityCompetition},
		"westside":    {CapabilityCompetition},
		"sales":       {CapabilityTrends},
		"trend":       {CapabilityTrends},
		"trends":      {CapabilityTrends},
		"revenue":     {CapabilityTrends},
		"growth":      {CapabilityTrends},
		"peak":        {CapabilityTrends},
		"busy":        {CapabilityTrends},
		"stock":       {CapabilityInventory},
		"inventory":   {CapabilityInventory},
		"reorder":     {CapabilityInventory},
		"restock":     {CapabilityInventory},
		"shortage":    {CapabilityInventory},
		"forecast":    {CapabilityForecast},
		"demand":      {CapabilityForecast},
		"predict":     {CapabilityForecast},
		"next":        {CapabilityForecast},
		"festival":    {CapabilityForecast, CapabilityInventory},
		"diwali":      {CapabilityForecast, CapabilityInventory},
		"weather":     {CapabilityWeather},
		"rain":        {CapabilityWeather},
		"temperature": {CapabilityWeather},
		"hot":         {CapabilityWeather},
		"cold":        {CapabilityWeather},
		"insight":     {CapabilityInsights},
		"insights":    {CapabilityInsights},
		"priority":    {CapabilityInsights},
		"action":      {CapabilityInsights},
		"recommend":   {CapabilityInsights},
	}
}

// Route returns the capabilities a message needs, in context order. Messages
// with no known keyword get the insights summary.
func (t DispatchTable) Route(message string) []Capability {
	words := strings.FieldsFunc(strings.ToLower(message), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	found := map[Capability]bool{}
	for _, w := range words {
		for _, c := range t[w] {
			found[c] = true
		}
	}
	if len(found) == 0 {
		return []Capability{CapabilityInsights}
	}
	out := make([]Capability, 0, len(found))
	for c := range found {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return rank(out[i]) < rank(out[j]) })
	return out
}

func rank(c Capability) int {
	for i, o := range capabilityOrder {
		if o == c {
			return i
		}
	}
	return len(capabilityOrder)
}
