package types

import (
	"encoding/json"
	"reflect"
	"strings"
	"sync"
)

// Extensible is implemented by entities that keep stored fields their struct
// does not declare.
type Extensible interface {
	Extras() map[string]json.RawMessage
	SetExtras(map[string]json.RawMessage)
}

var declaredCache sync.Map // reflect.Type -> map[string]string

// DeclaredFields returns the JSON field names the type of v declares, keyed
// by their lower-cased form. Fields of embedded structs are included.
func DeclaredFields(v any) map[string]string {
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return map[string]string{}
	}
	if m, ok := declaredCache.Load(t); ok {
		return m.(map[string]string)
	}
	m := make(map[string]string)
	collectFields(t, m)
	declaredCache.Store(t, m)
	return m
}

func collectFields(t reflect.Type, out map[string]string) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag := f.Tag.Get("json")
		if tag == "-" {
			continue
		}
		name, _, _ := strings.Cut(tag, ",")
		if f.Anonymous && name == "" {
			ft := f.Type
			if ft.Kind() == reflect.Pointer {
				ft = ft.Elem()
			}
			if ft.Kind() == reflect.Struct {
				collectFields(ft, out)
				continue
			}
		}
		if !f.IsExported() {
			continue
		}
		if name == "" {
			name = f.Name
		}
		out[strings.ToLower(name)] = name
	}
}

// DecodeRecord decodes one stored record. Keys that match no declared field,
// compared case-insensitively as encoding/json does, are kept as extras when
// T is Extensible.
func DecodeRecord[T any](raw []byte) (T, error) {
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, err
	}
	ext, ok := any(out).(Extensible)
	if !ok || isNilPointer(out) {
		return out, nil
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		return out, nil
	}
	declared := DeclaredFields(out)
	var extra map[string]json.RawMessage
	for k, v := range doc {
		if _, ok := declared[strings.ToLower(k)]; ok {
			continue
		}
		if extra == nil {
			extra = make(map[string]json.RawMessage)
		}
		extra[k] = v
	}
	ext.SetExtras(extra)
	return out, nil
}

// EncodeRecord encodes v with its extras laid under the declared fields.
// Without extras the output is plain json.Marshal.
func EncodeRecord(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	ext, ok := v.(Extensible)
	if !ok || isNilPointer(v) || len(ext.Extras()) == 0 {
		return raw, nil
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	for k, val := range ext.Extras() {
		if _, taken := doc[k]; !taken {
			doc[k] = val
		}
	}
	return json.Marshal(doc)
}

func isNilPointer(v any) bool {
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}
