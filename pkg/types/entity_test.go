package types

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func fieldErrors(t *testing.T, err error) map[string]string {
	t.Helper()
	if err == nil {
		return nil
	}
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected *ValidationError, got %T: %v", err, err)
	}
	return ve.Fields
}

func TestFarmValidate(t *testing.T) {
	tests := []struct {
		name      string
		farm      Farm
		wantField string
	}{
		{"valid", Farm{Name: "North Field", Location: "Iowa", Size: 10, Unit: UnitAcres}, ""},
		{"unit may be empty", Farm{Name: "North Field", Location: "Iowa", Size: 10}, ""},
		{"blank name", Farm{Name: "  ", Location: "Iowa", Size: 10}, "name"},
		{"zero size", Farm{Name: "North Field", Location: "Iowa"}, "size"},
		{"negative size", Farm{Name: "North Field", Location: "Iowa", Size: -2}, "size"},
		{"unknown unit", Farm{Name: "North Field", Location: "Iowa", Size: 1, Unit: "furlongs"}, "unit"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := fieldErrors(t, tt.farm.Validate())
			if tt.wantField == "" {
				if len(fields) != 0 {
					t.Fatalf("expected valid, got %v", fields)
				}
				return
			}
			if _, ok := fields[tt.wantField]; !ok {
				t.Fatalf("expected error on %q, got %v", tt.wantField, fields)
			}
		})
	}
}

func TestCropValidate(t *testing.T) {
	valid := Crop{
		FarmID:          1,
		Name:            "Sweet Corn",
		Field:           "North 40",
		PlantingDate:    "2024-04-01",
		ExpectedHarvest: "2024-08-15",
		Status:          CropStatusActive,
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("expected valid crop, got %v", err)
	}

	tests := []struct {
		name      string
		mutate    func(c *Crop)
		wantField string
	}{
		{"missing farm", func(c *Crop) { c.FarmID = 0 }, "farmId"},
		{"missing field", func(c *Crop) { c.Field = "" }, "field"},
		{"harvest before planting", func(c *Crop) { c.ExpectedHarvest = "2024-03-01" }, "expectedHarvest"},
		{"harvest same day", func(c *Crop) { c.ExpectedHarvest = c.PlantingDate }, "expectedHarvest"},
		{"bad planting date", func(c *Crop) { c.PlantingDate = "April 1" }, "plantingDate"},
		{"unknown status", func(c *Crop) { c.Status = "overdue" }, "status"},
		{"too many photos", func(c *Crop) {
			for i := 0; i < MaxPhotos+1; i++ {
				c.Photos = append(c.Photos, Photo{Filename: "p.jpg", Type: "image/jpeg", Size: 10})
			}
		}, "photos"},
		{"non-image photo", func(c *Crop) {
			c.Photos = []Photo{{Filename: "notes.txt", Type: "text/plain", Size: 10}}
		}, "photos"},
		{"oversized photo", func(c *Crop) {
			c.Photos = []Photo{{Filename: "big.png", Type: "image/png", Size: MaxPhotoBytes + 1}}
		}, "photos"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mutate(&c)
			fields := fieldErrors(t, c.Validate())
			if _, ok := fields[tt.wantField]; !ok {
				t.Fatalf("expected error on %q, got %v", tt.wantField, fields)
			}
		})
	}
}

func TestTaskValidate(t *testing.T) {
	crop := 3
	task := Task{FarmID: 1, CropID: &crop, Title: "Water corn", Type: TaskWatering, DueDate: "2024-06-01", Priority: PriorityHigh}
	if err := task.Validate(); err != nil {
		t.Fatalf("expected valid task, got %v", err)
	}

	general := Task{FarmID: 1, Title: "Fix fence", Type: TaskMaintenance, DueDate: "2024-06-01"}
	if err := general.Validate(); err != nil {
		t.Fatalf("a task without crop or priority is valid, got %v", err)
	}

	fields := fieldErrors(t, (&Task{Priority: "urgent"}).Validate())
	for _, f := range []string{"farmId", "title", "type", "dueDate", "priority"} {
		if _, ok := fields[f]; !ok {
			t.Errorf("expected error on %q, got %v", f, fields)
		}
	}
}

func TestExpenseValidate(t *testing.T) {
	e := Expense{FarmID: 2, Category: "Seeds", Amount: 120.5, Date: "2024-02-10", Description: "Corn seed"}
	if err := e.Validate(); err != nil {
		t.Fatalf("expected valid expense, got %v", err)
	}

	fields := fieldErrors(t, (&Expense{Category: "Snacks", Amount: -1}).Validate())
	for _, f := range []string{"farmId", "category", "amount", "date", "description"} {
		if _, ok := fields[f]; !ok {
			t.Errorf("expected error on %q, got %v", f, fields)
		}
	}
}

func TestTaskTemplate(t *testing.T) {
	tpl := TaskTemplate{Name: "Weekly watering", Type: TaskWatering}
	if err := tpl.Validate(); err != nil {
		t.Fatalf("expected valid template, got %v", err)
	}
	if tpl.TaskTitle() != "Weekly watering" {
		t.Errorf("title should fall back to name, got %q", tpl.TaskTitle())
	}
	tpl.Title = "Water the beds"
	if tpl.TaskTitle() != "Water the beds" {
		t.Errorf("explicit title should win, got %q", tpl.TaskTitle())
	}

	fields := fieldErrors(t, (&TaskTemplate{Type: "dancing"}).Validate())
	if _, ok := fields["name"]; !ok {
		t.Errorf("expected name error, got %v", fields)
	}
	if _, ok := fields["type"]; !ok {
		t.Errorf("expected type error, got %v", fields)
	}
}

func TestNewPhoto(t *testing.T) {
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	p := NewPhoto("leaf.png", "image/png", []byte("not really a png"), now)

	if p.ID == "" || strings.Count(p.ID, "-") != 4 {
		t.Errorf("expected a UUID id, got %q", p.ID)
	}
	if p.Size != int64(len("not really a png")) {
		t.Errorf("size = %d", p.Size)
	}
	raw, err := p.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	if string(raw) != "not really a png" {
		t.Errorf("decoded %q", raw)
	}
	if !p.UploadedAt.Equal(now) {
		t.Errorf("uploadedAt = %v", p.UploadedAt)
	}
}
