package crud

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/mesh-intelligence/farmkeeper/pkg/types"
)

// Merge returns a new record holding base with fields laid over it. Keys are
// JSON field names matched case-insensitively, so "Name" sets the declared
// "name". A key naming the Id is ignored. Keys the record does not declare are
// kept as extra fields. base is not modified. A value whose type does not fit
// its field, or two keys naming the same field, yield a
// *types.ValidationError.
func Merge[T types.Entity](base T, fields types.Fields) (T, error) {
	var zero T

	raw, err := types.EncodeRecord(base)
	if err != nil {
		return zero, err
	}
	doc := make(map[string]any)
	if err := json.Unmarshal(raw, &doc); err != nil {
		return zero, err
	}

	entity := entityName(base)
	declared := types.DeclaredFields(base)
	verr := types.NewValidationError(entity)
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	setBy := make(map[string]string, len(keys))
	for _, k := range keys {
		if strings.EqualFold(k, types.FieldID) {
			continue
		}
		key := fieldKey(doc, declared, k)
		if prev, dup := setBy[key]; dup {
			verr.Add(key, fmt.Sprintf("set twice, as %q and %q", prev, k))
			continue
		}
		setBy[key] = k
		doc[key] = fields[k]
	}
	if err := verr.OrNil(); err != nil {
		return zero, err
	}

	raw, err = json.Marshal(doc)
	if err != nil {
		verr.Add("fields", err.Error())
		return zero, verr
	}

	out, err := types.DecodeRecord[T](raw)
	if err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			verr.Add(typeErr.Field, "expected "+typeErr.Type.String()+", got "+typeErr.Value)
		} else {
			verr.Add("fields", err.Error())
		}
		return zero, verr
	}
	return out, nil
}

// fieldKey maps an update key to the name it is stored under: the declared
// field name, else an existing extra key that differs only in case, else the
// key itself.
func fieldKey(doc map[string]any, declared map[string]string, k string) string {
	if name, ok := declared[strings.ToLower(k)]; ok {
		return name
	}
	for existing := range doc {
		if strings.EqualFold(existing, k) {
			return existing
		}
	}
	return k
}

// entityName returns the lower-cased type name of v, without pointers.
func entityName(v any) string {
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return "record"
	}
	return strings.ToLower(t.Name())
}

// clone returns a deep copy of v, extras included.
func clone[T any](v T) (T, error) {
	raw, err := types.EncodeRecord(v)
	if err != nil {
		var out T
		return out, err
	}
	return types.DecodeRecord[T](raw)
}

// isNil reports whether v is a nil pointer, map, or slice.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
