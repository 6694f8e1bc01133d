package types

// Standard collection names. Each collection lives in one slot of the store.
const (
	FarmsCollection     = "farms"
	CropsCollection     = "crops"
	TasksCollection     = "tasks"
	ExpensesCollection  = "expenses"
	TemplatesCollection = "task_templates"
)

// StandardCollections lists every collection for enumeration.
var StandardCollections = []string{
	FarmsCollection,
	CropsCollection,
	TasksCollection,
	ExpensesCollection,
	TemplatesCollection,
}

// Foreign-key field names.
const (
	FieldFarmID = "farmId"
	FieldCropID = "cropId"
)
