package lockbox

import (
	"reflect"
	"strings"

	"github.com/zoobzio/sentinel"
)

func init() {
	// Register the encrypt tag with sentinel
	sentinel.Tag("encrypt")
}

// Target selects which parts of a structured value are subject to
// encryption: either the whole value, or named top-level fields of an
// object value. Selection is shallow; a selected field that is itself an
// object is encrypted whole, and unselected fields pass through untouched.
//
// The zero Target selects the whole value.
type Target struct {
	fields []string
}

// WholeValue returns the target selecting the entire value.
func WholeValue() Target {
	return Target{}
}

// Fields returns a target selecting the named top-level fields of an object
// value. Selected fields that are absent are left absent.
func Fields(names ...string) Target {
	fields := make([]string, 0, len(names))
	for _, name := range names {
		if name != "" {
			fields = append(fields, name)
		}
	}
	return Target{fields: fields}
}

// whole reports whether the target selects the entire value.
func (t Target) whole() bool {
	return len(t.fields) == 0
}

// FieldsFor derives a Target from struct tags on T, selecting every field
// tagged `encrypt:"true"`. The wire name comes from the field's json tag
// when present, matching how the value appears once marshaled.
//
//	type Signup struct {
//	    Plan  string `json:"plan"`
//	    Email string `json:"email" encrypt:"true"`
//	}
//
// FieldsFor[Signup]() selects "email". A T with no tagged fields yields the
// whole-value target.
func FieldsFor[T any]() Target {
	spec := sentinel.Scan[T]()
	rt := reflect.TypeFor[T]()

	var names []string
	for _, field := range spec.Fields {
		if field.Tags["encrypt"] != "true" {
			continue
		}
		names = append(names, wireName(rt, field.Index, field.Name))
	}

	return Fields(names...)
}

// wireName resolves the marshaled name of a struct field, honoring its json
// tag when one is present.
func wireName(rt reflect.Type, index []int, fallback string) string {
	sf := rt.FieldByIndex(index)
	tag := sf.Tag.Get("json")
	if tag == "" {
		return fallback
	}
	if comma := strings.IndexByte(tag, ','); comma >= 0 {
		tag = tag[:comma]
	}
	if tag == "" || tag == "-" {
		return fallback
	}
	return tag
}
