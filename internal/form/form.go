// Package form turns command-line field assignments (name=value) into typed
// record fields. Text is coerced per field the way the entry forms coerce
// their inputs: whole numbers for foreign keys, decimals for sizes and
// amounts, booleans for flags.
package form

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/mesh-intelligence/farmkeeper/pkg/types"
)

// Kind is the type a field value is coerced to.
type Kind int

const (
	String Kind = iota
	Int
	Float
	Bool
	// OptionalInt is an Int where an empty value or "none" means null.
	OptionalInt
)

// Spec maps the JSON field names a form accepts to their kinds.
type Spec map[string]Kind

// Field specs per collection. Id and createdAt are not settable.
var (
	FarmSpec = Spec{
		"name":     String,
		"location": String,
		"size":     Float,
		"unit":     String,
	}
	CropSpec = Spec{
		"farmId":          Int,
		"name":            String,
		"field":           String,
		"plantingDate":    String,
		"expectedHarvest": String,
		"status":          String,
		"notes":           String,
	}
	TaskSpec = Spec{
		"farmId":    Int,
		"cropId":    OptionalInt,
		"title":     String,
		"type":      String,
		"dueDate":   String,
		"priority":  String,
		"completed": Bool,
	}
	ExpenseSpec = Spec{
		"farmId":      Int,
		"category":    String,
		"amount":      Float,
		"date":        String,
		"description": String,
		"vendor":      String,
	}
	TemplateSpec = Spec{
		"name":     String,
		"title":    String,
		"type":     String,
		"priority": String,
		"notes":    String,
	}
)

// Specs indexes the field specs by collection name.
var Specs = map[string]Spec{
	types.FarmsCollection:     FarmSpec,
	types.CropsCollection:     CropSpec,
	types.TasksCollection:     TaskSpec,
	types.ExpensesCollection:  ExpenseSpec,
	types.TemplatesCollection: TemplateSpec,
}

// Names returns the accepted field names, sorted.
func (s Spec) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Parse coerces each "name=value" pair. Every problem is collected into one
// *types.ValidationError for entity. A later pair for the same name wins.
func Parse(spec Spec, entity string, pairs []string) (types.Fields, error) {
	fields := make(types.Fields, len(pairs))
	verr := types.NewValidationError(entity)
	for _, pair := range pairs {
		name, raw, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			verr.Add(pair, "expected name=value")
			continue
		}
		kind, known := spec[name]
		if !known {
			verr.Add(name, "unknown field; expected one of "+strings.Join(spec.Names(), ", "))
			continue
		}
		v, err := coerce(kind, raw)
		if err != nil {
			verr.Add(name, err.Error())
			continue
		}
		fields[name] = v
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	return fields, nil
}

func coerce(kind Kind, raw string) (any, error) {
	s := strings.TrimSpace(raw)
	switch kind {
	case Int:
		n, err := strconv.Atoi(s)
		if err != nil {
			return nil, fmt.Errorf("%q is not a whole number", raw)
		}
		return n, nil
	case OptionalInt:
		if s == "" || strings.EqualFold(s, "none") || strings.EqualFold(s, "null") {
			return nil, nil
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return nil, fmt.Errorf("%q is not a whole number", raw)
		}
		return n, nil
	case Float:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not a number", raw)
		}
		return f, nil
	case Bool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return nil, fmt.Errorf("%q is not true or false", raw)
		}
		return b, nil
	default:
		return raw, nil
	}
}

// Decode builds a new record of type T from fields. T is a pointer to an
// entity struct.
func Decode[T any](entity string, fields types.Fields) (T, error) {
	var out T
	raw, err := json.Marshal(fields)
	if err != nil {
		verr := types.NewValidationError(entity)
		verr.Add("fields", err.Error())
		return out, verr
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		verr := types.NewValidationError(entity)
		verr.Add("fields", err.Error())
		return out, verr
	}
	return out, nil
}
