package scoring

import "strings"

// Class groups car types sharing an efficiency range.
type Class string

const (
	ClassCommercial Class = "commercial"
	ClassCompact    Class = "compact"
	ClassMidsize    Class = "midsize"
	ClassLarge      Class = "large"
	ClassPremium    Class = "premium"
)

// Range is an efficiency band in km/kWh. Scores are 40 at Min and 100 at Max.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

var classMarkers = []struct {
	class   Class
	markers []string
}{
	{ClassCommercial, []string{"PORTER", "BONGO"}},
	{ClassCompact, []string{"KONA", "NIRO", "SOUL"}},
	{ClassMidsize, []string{"IONIQ", "K5", "SONATA"}},
	{ClassLarge, []string{"EV9", "GV90", "PALISADE"}},
	{ClassPremium, []string{"GENESIS", "GV80", "G90"}},
}

var baseRanges = map[Class]Range{
	ClassCommercial: {2.5, 6.5},
	ClassCompact:    {4.0, 8.5},
	ClassMidsize:    {3.5, 7.5},
	ClassLarge:      {3.0, 7.0},
	ClassPremium:    {3.8, 8.0},
}

// ClassOf maps a car type to its class by model name markers. Unknown types
// are midsize.
func ClassOf(carType string) Class {
	upper := strings.ToUpper(carType)
	if upper == "" {
		return ClassMidsize
	}
	for _, cm := range classMarkers {
		for _, m := range cm.markers {
			if strings.Contains(upper, m) {
				return cm.class
			}
		}
	}
	return ClassMidsize
}

// BaseRange returns the efficiency band of c for a new vehicle.
func (c Class) BaseRange() Range {
	if r, ok := baseRanges[c]; ok {
		return r
	}
	return baseRanges[ClassMidsize]
}

// MaxAgeAdjustment caps how far an old vehicle's band is relaxed.
const MaxAgeAdjustment = 0.8

// EfficiencyRange returns the band of c relaxed by 0.143 km/kWh per year of
// age. Max never drops below zero and always exceeds Min.
func EfficiencyRange(c Class, ageYears float64) Range {
	r := c.BaseRange()
	adj := ageYears * 0.143
	if adj > MaxAgeAdjustment {
		adj = MaxAgeAdjustment
	}
	if adj < 0 {
		adj = 0
	}
	r.Min -= adj
	r.Max -= adj
	if r.Max < 0 {
		r.Max = 0
	}
	if r.Max <= r.Min {
		r.Max = r.Min + 0.1
	}
	return r
}
