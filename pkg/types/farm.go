package types

import "strings"

// Area units a farm size may be expressed in.
const (
	UnitAcres        = "acres"
	UnitHectares     = "hectares"
	UnitSquareFeet   = "square feet"
	UnitSquareMeters = "square meters"
)

// FarmUnits lists the accepted area units.
var FarmUnits = []string{UnitAcres, UnitHectares, UnitSquareFeet, UnitSquareMeters}

// Farm is a piece of land that crops, tasks, and expenses belong to.
type Farm struct {
	Record
	Name     string  `json:"name"`
	Location string  `json:"location,omitempty"`
	Size     float64 `json:"size"`
	Unit     string  `json:"unit,omitempty"`
}

// Validate applies the farm form rules: name and location are required, size
// must be positive, and unit, when set, must be a known unit.
func (f *Farm) Validate() error {
	v := NewValidationError("farm")
	if strings.TrimSpace(f.Name) == "" {
		v.Add("name", "farm name is required")
	}
	if strings.TrimSpace(f.Location) == "" {
		v.Add("location", "location is required")
	}
	if f.Size <= 0 {
		v.Add("size", "size must be greater than 0")
	}
	if f.Unit != "" && !oneOf(f.Unit, FarmUnits) {
		v.Add("unit", "unknown unit "+f.Unit)
	}
	return v.OrNil()
}
