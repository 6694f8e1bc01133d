package types

import "strings"

// Crop statuses.
const (
	CropStatusPlanning  = "planning"
	CropStatusActive    = "active"
	CropStatusHarvested = "harvested"
)

// CropStatuses lists the accepted crop statuses.
var CropStatuses = []string{CropStatusPlanning, CropStatusActive, CropStatusHarvested}

// Crop is a planting on a farm.
type Crop struct {
	Record
	FarmID          int     `json:"farmId"`
	Name            string  `json:"name"`
	Field           string  `json:"field"`
	PlantingDate    string  `json:"plantingDate"`
	ExpectedHarvest string  `json:"expectedHarvest"`
	Status          string  `json:"status"`
	Notes           string  `json:"notes,omitempty"`
	Photos          []Photo `json:"photos,omitempty"`
}

// Validate applies the crop form rules. The expected harvest must fall after
// the planting date.
func (c *Crop) Validate() error {
	v := NewValidationError("crop")
	if c.FarmID <= 0 {
		v.Add("farmId", "farm is required")
	}
	if strings.TrimSpace(c.Name) == "" {
		v.Add("name", "crop name is required")
	}
	if strings.TrimSpace(c.Field) == "" {
		v.Add("field", "field location is required")
	}
	planted, okPlanted := requireDate(v, "plantingDate", c.PlantingDate, "planting date")
	harvest, okHarvest := requireDate(v, "expectedHarvest", c.ExpectedHarvest, "expected harvest date")
	if okPlanted && okHarvest && !harvest.After(planted) {
		v.Add("expectedHarvest", "expected harvest must be after planting date")
	}
	if !oneOf(c.Status, CropStatuses) {
		v.Add("status", "status must be one of planning, active, harvested")
	}
	validatePhotos(v, c.Photos)
	return v.OrNil()
}
