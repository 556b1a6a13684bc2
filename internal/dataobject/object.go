// Package dataobject provides Object, the ordered attribute bag every
// domain model in this application is built on.
//
// An Object maps string keys to arbitrary values and keeps them in
// insertion order. It is the Go rendition of the "magic" models used by
// the admin: instead of generated getters/setters it exposes an explicit
// key/value API, plus Call for the few places that still dispatch on
// accessor names (getFooBar, setFooBar, unsFooBar, hasFooBar).
//
// Responsibilities:
//   - Get/Set/Unset/Has by key, with "/" separated nested lookups.
//   - Index access into lists, mappings, multi-line strings and nested objects.
//   - Template rendering of {{field}} tokens.
//   - Change tracking (original data, dirty flags, deleted flag).
//
// Objects are not safe for concurrent mutation.
package dataobject

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

const (
	// PathSeparator splits nested lookups, e.g. "address/billing/city".
	PathSeparator = "/"

	// DefaultIDFieldName is used by ID/SetID when no id field was configured.
	DefaultIDFieldName = "id"

	// FormatSeparator joins values when Format is called without a template.
	FormatSeparator = ", "
)

// ErrInvalidMethod is returned by Call for accessor names it cannot dispatch.
var ErrInvalidMethod = errors.New("invalid method")

// placeholder matches {{field_name}} tokens in Format templates.
var placeholder = regexp.MustCompile(`(?i)\{\{([a-z0-9_]+)\}\}`)

// Object is an ordered key/value container.
type Object struct {
	keys []string
	data map[string]any

	origData map[string]any
	dirty    map[string]bool

	idFieldName string
	changed     bool
	deleted     bool
}

// New returns an empty Object.
func New() *Object {
	return &Object{data: make(map[string]any)}
}

// FromMap returns an Object holding a copy of m.
//
// Go maps carry no order, so keys are inserted sorted.
func FromMap(m map[string]any) *Object {
	o := New()
	o.AddData(m)
	o.changed = false
	return o
}

// Get returns the value stored at key, or nil when it is absent.
//
// An empty key returns a copy of all data. A key containing PathSeparator
// is walked segment by segment through nested mappings.
func (o *Object) Get(key string) any {
	if key == "" {
		return o.ToMap()
	}
	if strings.Contains(key, PathSeparator) {
		return o.getByPath(key)
	}
	return o.data[key]
}

// GetIndex returns the element at index inside the value stored at key.
//
// Lists are indexed by position, mappings by key, strings by line and
// nested Objects through their own Get. Anything else, or an index that
// does not resolve, yields nil. A nil index behaves like Get.
func (o *Object) GetIndex(key string, index any) any {
	value := o.Get(key)
	if index == nil {
		return value
	}
	return valueAt(value, index)
}

// Set stores value at key and returns the Object for chaining.
//
// A key that already exists keeps its original position.
func (o *Object) Set(key string, value any) *Object {
	if _, ok := o.data[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.data[key] = value
	o.changed = true
	return o
}

// SetData replaces all data with a copy of m.
func (o *Object) SetData(m map[string]any) *Object {
	o.keys = nil
	o.data = make(map[string]any, len(m))
	return o.AddData(m)
}

// AddData merges m into the Object, overwriting existing keys.
func (o *Object) AddData(m map[string]any) *Object {
	for _, k := range sortedKeys(m) {
		o.Set(k, m[k])
	}
	return o
}

// Unset removes the given keys. Called without keys it clears all data.
func (o *Object) Unset(keys ...string) *Object {
	o.changed = true
	if len(keys) == 0 {
		o.keys = nil
		o.data = make(map[string]any)
		return o
	}
	for _, key := range keys {
		if _, ok := o.data[key]; !ok {
			continue
		}
		delete(o.data, key)
		for i, k := range o.keys {
			if k == key {
				o.keys = append(o.keys[:i], o.keys[i+1:]...)
				break
			}
		}
	}
	return o
}

// Has reports whether key is present, even when its value is nil.
func (o *Object) Has(key string) bool {
	_, ok := o.data[key]
	return ok
}

// IsEmpty reports whether the Object holds no keys.
func (o *Object) IsEmpty() bool {
	return len(o.keys) == 0
}

// Len returns the number of keys.
func (o *Object) Len() int {
	return len(o.keys)
}

// Keys returns the keys in insertion order.
func (o *Object) Keys() []string {
	out := make([]string, len(o.keys))
	copy(out, o.keys)
	return out
}

// DataSetDefault returns the value at key, storing def first when the key
// is absent.
func (o *Object) DataSetDefault(key string, def any) any {
	if !o.Has(key) {
		o.Set(key, def)
	}
	return o.data[key]
}

// ToMap returns a copy of the data. When keys are given only those are
// copied, and keys that are absent map to nil.
func (o *Object) ToMap(keys ...string) map[string]any {
	if len(keys) == 0 {
		out := make(map[string]any, len(o.data))
		for k, v := range o.data {
			out[k] = v
		}
		return out
	}
	out := make(map[string]any, len(keys))
	for _, k := range keys {
		out[k] = o.data[k]
	}
	return out
}

// Clone returns a shallow copy of the Object's data. Change tracking is
// not copied.
func (o *Object) Clone() *Object {
	c := New()
	for _, k := range o.keys {
		c.Set(k, o.data[k])
	}
	c.idFieldName = o.idFieldName
	c.changed = false
	return c
}

// Format renders template by replacing {{field}} tokens with the string
// form of the matching values. Unknown fields render empty.
//
// An empty template joins every value, in insertion order, with ", ".
func (o *Object) Format(template string) string {
	if template == "" {
		values := make([]string, 0, len(o.keys))
		for _, k := range o.keys {
			values = append(values, Stringify(o.data[k]))
		}
		return strings.Join(values, FormatSeparator)
	}

	return placeholder.ReplaceAllStringFunc(template, func(token string) string {
		match := placeholder.FindStringSubmatch(token)
		return Stringify(o.data[match[1]])
	})
}

// String implements fmt.Stringer using Format("").
func (o *Object) String() string {
	return o.Format("")
}

// Serialize renders selected attributes as key<valueSep><quote>value<quote>
// pairs joined by fieldSep. Nil attributes means every key.
func (o *Object) Serialize(attributes []string, valueSep, fieldSep, quote string) string {
	wanted := make(map[string]bool, len(attributes))
	for _, a := range attributes {
		wanted[a] = true
	}

	parts := make([]string, 0, len(o.keys))
	for _, k := range o.keys {
		if len(attributes) > 0 && !wanted[k] {
			continue
		}
		parts = append(parts, k+valueSep+quote+Stringify(o.data[k])+quote)
	}
	return strings.Join(parts, fieldSep)
}

// Offset accessors mirror Has/Get/Set/Unset for array-style consumers.
// They never walk nested paths.

func (o *Object) OffsetExists(offset string) bool { return o.Has(offset) }

func (o *Object) OffsetGet(offset string) any { return o.data[offset] }

func (o *Object) OffsetSet(offset string, value any) { o.Set(offset, value) }

func (o *Object) OffsetUnset(offset string) { o.Unset(offset) }

// Call dispatches a dynamic accessor name to the matching key operation:
//
//	getFooBar(index?) -> GetIndex("foo_bar", index)
//	setFooBar(v)      -> Set("foo_bar", v)
//	unsFooBar()       -> Unset("foo_bar")
//	hasFooBar()       -> Has("foo_bar")
//
// Any other name fails with ErrInvalidMethod.
func (o *Object) Call(method string, args ...any) (any, error) {
	if len(method) > 3 {
		key := Underscore(method[3:])
		switch method[:3] {
		case "get":
			if len(args) > 0 {
				return o.GetIndex(key, args[0]), nil
			}
			return o.Get(key), nil
		case "set":
			var value any
			if len(args) > 0 {
				value = args[0]
			}
			return o.Set(key, value), nil
		case "uns":
			return o.Unset(key), nil
		case "has":
			return o.Has(key), nil
		}
	}
	return nil, fmt.Errorf("%w %s(%s)", ErrInvalidMethod, method, formatArgs(args))
}

// ID returns the value stored under the id field.
func (o *Object) ID() any {
	return o.data[o.IDFieldName()]
}

// SetID stores v under the id field.
func (o *Object) SetID(v any) *Object {
	return o.Set(o.IDFieldName(), v)
}

// IDFieldName returns the configured id key, "id" by default.
func (o *Object) IDFieldName() string {
	if o.idFieldName == "" {
		return DefaultIDFieldName
	}
	return o.idFieldName
}

// SetIDFieldName configures which key ID/SetID use.
func (o *Object) SetIDFieldName(name string) *Object {
	o.idFieldName = name
	return o
}

func (o *Object) getByPath(path string) any {
	var current any = o.data
	for _, segment := range strings.Split(path, PathSeparator) {
		if segment == "" {
			return nil
		}
		next, ok := mapLookup(current, segment)
		if !ok {
			return nil
		}
		current = next
	}
	return current
}

// mapLookup reads key from a string-keyed mapping. Objects are not
// mappings here: nested paths stop at them.
func mapLookup(value any, key string) (any, bool) {
	switch m := value.(type) {
	case map[string]any:
		v, ok := m[key]
		return v, ok
	case *Object:
		return nil, false
	}

	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	mv := rv.MapIndex(reflect.ValueOf(key).Convert(rv.Type().Key()))
	if !mv.IsValid() {
		return nil, false
	}
	return mv.Interface(), true
}

func valueAt(value any, index any) any {
	switch v := value.(type) {
	case *Object:
		return v.Get(cast.ToString(index))
	case string:
		i, ok := toIndex(index)
		if !ok {
			return nil
		}
		lines := strings.Split(v, "\n")
		if i < 0 || i >= len(lines) {
			return nil
		}
		return lines[i]
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		i, ok := toIndex(index)
		if !ok || i < 0 || i >= rv.Len() {
			return nil
		}
		return rv.Index(i).Interface()
	case reflect.Map:
		v, _ := mapLookup(value, cast.ToString(index))
		return v
	}
	return nil
}

func toIndex(index any) (int, bool) {
	switch i := index.(type) {
	case int:
		return i, true
	case int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return cast.ToInt(i), true
	case string:
		n, err := strconv.Atoi(i)
		return n, err == nil
	}
	return 0, false
}

// Stringify renders a value the way Format does: nil is empty, nested
// Objects use their String form, scalars follow spf13/cast.
func Stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case *Object:
		return t.String()
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return s
}

func formatArgs(args []any) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = fmt.Sprintf("%v", a)
	}
	return strings.Join(parts, ", ")
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
