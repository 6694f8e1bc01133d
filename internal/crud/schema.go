package crud

import "github.com/mesh-intelligence/farmkeeper/pkg/types"

// Schema describes one collection.
type Schema struct {
	// Collection is the slot name the records are stored under.
	Collection string

	// ParentField is the JSON name of the foreign-key field GetByParentID
	// filters on. Empty for top-level collections.
	ParentField string

	// StampCreatedAt sets createdAt on Create for entities implementing
	// types.Stamped.
	StampCreatedAt bool

	// Latency is the artificial delay applied per operation.
	Latency Latency
}

// Standard schemas for the farm collections.
var (
	FarmSchema     = Schema{Collection: types.FarmsCollection, StampCreatedAt: true}
	CropSchema     = Schema{Collection: types.CropsCollection, ParentField: types.FieldFarmID, StampCreatedAt: true}
	TaskSchema     = Schema{Collection: types.TasksCollection, ParentField: types.FieldFarmID, StampCreatedAt: true}
	ExpenseSchema  = Schema{Collection: types.ExpensesCollection, ParentField: types.FieldFarmID, StampCreatedAt: true}
	TemplateSchema = Schema{Collection: types.TemplatesCollection, StampCreatedAt: true}
)

// WithLatency returns a copy of s using l.
func (s Schema) WithLatency(l Latency) Schema {
	s.Latency = l
	return s
}
