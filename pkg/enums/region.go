package enums

import "fmt"

// Region is the shipping destination group for online orders. Courier cost
// is keyed by region in the rate table.
type Region string

const (
	RegionLuzon    Region = "luzon"
	RegionVisayas  Region = "visayas"
	RegionMindanao Region = "mindanao"
)

var validRegions = []Region{
	RegionLuzon,
	RegionVisayas,
	RegionMindanao,
}

// String implements fmt.Stringer.
func (r Region) String() string {
	return string(r)
}

// IsValid reports whether the value is a known Region.
func (r Region) IsValid() bool {
	for _, candidate := range validRegions {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseRegion converts raw input into a Region.
func ParseRegion(value string) (Region, error) {
	for _, candidate := range validRegions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid region %q", value)
}
