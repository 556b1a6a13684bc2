package dataobject

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObject_GetIndex(t *testing.T) {
	nested := map[string]any{"nested": map[string]any{"string": "string", "int": 1}}

	tests := []struct {
		name     string
		setKey   string
		setValue any
		key      string
		index    any
		expected any
	}{
		{"empty key returns all data", "empty_key", []any{"empty_value"}, "", nil, map[string]any{"empty_key": []any{"empty_value"}}},
		{"string", "string", "value", "string", nil, "value"},
		{"int", "int", 1, "int", nil, 1},
		{"numeric string", "numeric", "1", "numeric", nil, "1"},
		{"list", "array", []any{"string", 1}, "array", nil, []any{"string", 1}},
		{"list index", "array_index_int", []any{"string", 1}, "array_index_int", 0, "string"},
		{"list index out of range", "array_index_int_invalid", []any{"string", 1}, "array_index_int_invalid", 999, nil},
		{"mapping index", "array_index_string", map[string]any{"string": "string", "int": 1}, "array_index_string", "int", 1},
		{"string with missing index", "array_index_string_string", "some_string", "array_index_string_string", "not-exists", nil},
		{"object index", "array_index_string_object", FromMap(map[string]any{"array": []any{}}), "array_index_string_object", "array", []any{}},
		{"struct index", "array_index_string_struct", struct{}{}, "array_index_string_struct", "not-exists", nil},
		{"nested path", "array_nested", nested, "array_nested/nested/int", nil, 1},
		{"nested path missing key", "array_nested", nested, "array_nested/nested/invalid_key", nil, nil},
		{"nested path empty segment", "array_nested", map[string]any{"nested": map[string]any{"string": "string", "int": ""}}, "array_nested/nested/", nil, nil},
		{"nested path to string", "array_nested_string", map[string]any{"nested": "some\"\n\"string"}, "array_nested_string/nested", nil, "some\"\n\"string"},
		{"nested path through object", "array_nested_object", New(), "array_nested_object/nested", nil, nil},
		{"nested path through struct", "array_nested_struct", struct{}{}, "array_nested_struct/nested", nil, nil},
		{"nested path root missing", "array_nested_key_not_exists", nested, "array_nested_key_not_exists_test/nested/int", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := New()
			o.Set(tt.setKey, tt.setValue)
			assert.Equal(t, tt.expected, o.GetIndex(tt.key, tt.index))
		})
	}
}

func TestObject_GetIndexStringLines(t *testing.T) {
	o := New().Set("street", "1 Main St\nSuite 4")

	assert.Equal(t, "1 Main St", o.GetIndex("street", 0))
	assert.Equal(t, "Suite 4", o.GetIndex("street", "1"))
	assert.Nil(t, o.GetIndex("street", 2))
}

func TestObject_Format(t *testing.T) {
	o := New()
	_, err := o.Call("setString0", "0")
	require.NoError(t, err)
	_, err = o.Call("setString1", "one")
	require.NoError(t, err)
	_, err = o.Call("setString2", "two")
	require.NoError(t, err)
	_, err = o.Call("setString3", "three")
	require.NoError(t, err)

	tests := []struct {
		name     string
		format   string
		expected string
	}{
		{"no format", "", "0, one, two, three"},
		{"valid", "{{string0}} {{string1}} {{string2}}", "0 one two"},
		{"invalid", "{{string3}} {{string_not_exists}} {{string0}}", "three  0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, o.Format(tt.format))
		})
	}
	assert.Equal(t, "0, one, two, three", o.String())
}

func TestObject_GetSetUnset(t *testing.T) {
	o := New()
	assert.True(t, o.IsEmpty())

	mustCall := func(method string, args ...any) any {
		t.Helper()
		v, err := o.Call(method, args...)
		require.NoError(t, err)
		return v
	}

	mustCall("setABC", "abc")
	o.Set("efg", "efg")
	mustCall("set123", "123")
	o.Set("345", "345")
	mustCall("setKeyAFirst", "value_a_first")
	o.Set("key_a_2nd", "value_a_2nd")
	mustCall("setKeyA3rd", "value_a_3rd")
	o.Set("left", "over")
	assert.False(t, o.IsEmpty())

	assert.Equal(t, "abc", o.Get("a_b_c"))
	assert.Equal(t, "abc", mustCall("getABC"))
	o.Unset("a_b_c")

	assert.Equal(t, "efg", o.Get("efg"))
	assert.Equal(t, "efg", mustCall("getEfg"))
	mustCall("unsEfg")

	assert.Equal(t, "123", o.Get("123"))
	assert.Equal(t, "123", mustCall("get123"))
	mustCall("uns123")

	o.Unset("345")

	assert.Equal(t, "value_a_first", o.Get("key_a_first"))
	assert.Equal(t, "value_a_first", mustCall("getKeyAFirst"))
	o.Unset("key_a_first")

	assert.Equal(t, "value_a_2nd", o.Get("key_a_2nd"))
	assert.Equal(t, "value_a_2nd", mustCall("getKeyA_2nd"))
	o.Unset("key_a_2nd")

	assert.Equal(t, "value_a_3rd", o.Get("key_a3rd"))
	assert.Equal(t, "value_a_3rd", mustCall("getKeyA3rd"))
	o.Unset("key_a3rd")

	assert.Equal(t, map[string]any{"left": "over"}, o.Get(""))
	assert.Equal(t, true, mustCall("hasLeft"))

	o.Unset()
	assert.Equal(t, map[string]any{}, o.Get(""))
	assert.True(t, o.IsEmpty())

	_, err := o.Call("notData")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidMethod)
	assert.Contains(t, err.Error(), "notData")
}

func TestObject_Offset(t *testing.T) {
	o := New()
	assert.False(t, o.OffsetExists("off"))

	o.OffsetSet("off", "set")
	assert.True(t, o.OffsetExists("off"))
	assert.Equal(t, "set", o.OffsetGet("off"))
	assert.Nil(t, o.OffsetGet("not-exists"))

	o.OffsetUnset("off")
	assert.False(t, o.OffsetExists("off"))
}

func TestObject_HasDistinguishesNil(t *testing.T) {
	o := New().Set("nothing", nil)

	assert.True(t, o.Has("nothing"))
	assert.Nil(t, o.Get("nothing"))
	assert.False(t, o.Has("missing"))
}

func TestObject_SetKeepsPosition(t *testing.T) {
	o := New().Set("a", 1).Set("b", 2).Set("a", 3)

	assert.Equal(t, []string{"a", "b"}, o.Keys())
	assert.Equal(t, "3, 2", o.String())
}

func TestObject_ToMapWithKeys(t *testing.T) {
	o := New().Set("sku", "abc").Set("qty", 2)

	assert.Equal(t, map[string]any{"sku": "abc", "price": nil}, o.ToMap("sku", "price"))
}

func TestObject_Serialize(t *testing.T) {
	o := New().Set("code", "VAT").Set("rate", 20).Set("country", "FR")

	assert.Equal(t, `code="VAT" rate="20" country="FR"`, o.Serialize(nil, "=", " ", `"`))
	assert.Equal(t, "code:'VAT';country:'FR'", o.Serialize([]string{"country", "code"}, ":", ";", "'"))
}

func TestObject_ChangeTracking(t *testing.T) {
	o := FromMap(map[string]any{"qty": 1, "code": "a"})
	assert.False(t, o.HasDataChanges())

	o.SnapshotOrigData()
	o.Set("qty", "1")
	assert.True(t, o.HasDataChanges())
	assert.False(t, o.DataHasChangedFor("qty"))

	o.Set("code", "b")
	assert.True(t, o.DataHasChangedFor("code"))
	assert.Equal(t, "a", o.OrigData("code"))

	o.FlagDirty("code", true)
	assert.True(t, o.IsDirty("code"))
	assert.True(t, o.IsDirty(""))
	o.FlagDirty("code", false)
	assert.False(t, o.IsDirty(""))

	o.MarkDeleted(true)
	assert.True(t, o.IsDeleted())
}

func TestObject_ID(t *testing.T) {
	o := New()
	o.SetID(7)
	assert.Equal(t, 7, o.Get("id"))

	o.SetIDFieldName("wishlist_item_id").SetID(9)
	assert.Equal(t, 9, o.Get("wishlist_item_id"))
	assert.Equal(t, 9, o.ID())
}

func TestObject_DataSetDefault(t *testing.T) {
	o := New().Set("qty", 2)

	assert.Equal(t, 2, o.DataSetDefault("qty", 1))
	assert.Equal(t, "default", o.DataSetDefault("store", "default"))
	assert.True(t, o.Has("store"))
}

func TestObject_JSONKeepsOrder(t *testing.T) {
	o, err := FromJSON([]byte(`{"zeta":1,"alpha":"a","options":{"color":"red"},"list":[1,2]}`))
	require.NoError(t, err)

	assert.Equal(t, []string{"zeta", "alpha", "options", "list"}, o.Keys())
	assert.Equal(t, "red", o.Get("options/color"))
	assert.Equal(t, float64(2), o.GetIndex("list", 1))

	out, err := json.Marshal(o)
	require.NoError(t, err)
	assert.JSONEq(t, `{"zeta":1,"alpha":"a","options":{"color":"red"},"list":[1,2]}`, string(out))
	assert.Equal(t, `{"zeta":1,"alpha":"a","options":{"color":"red"},"list":[1,2]}`, string(out))
}

func TestObject_FromJSONRejectsNonObjects(t *testing.T) {
	_, err := FromJSON([]byte(`[1,2]`))
	assert.ErrorIs(t, err, ErrNotJSONObject)

	_, err = FromJSON([]byte(`{broken`))
	assert.ErrorIs(t, err, ErrNotJSONObject)
}

func TestUnderscore(t *testing.T) {
	tests := map[string]string{
		"ABC":       "a_b_c",
		"Efg":       "efg",
		"123":       "123",
		"KeyAFirst": "key_a_first",
		"KeyA_2nd":  "key_a_2nd",
		"KeyA3rd":   "key_a3rd",
		"String0":   "string0",
		"ProductId": "product_id",
	}
	for in, want := range tests {
		assert.Equal(t, want, Underscore(in), in)
	}
}

func TestLooseEqual(t *testing.T) {
	assert.True(t, LooseEqual("1", 1))
	assert.True(t, LooseEqual(nil, ""))
	assert.False(t, LooseEqual("red", "blue"))
	assert.True(t, LooseEqual([]any{1}, []any{1}))
	assert.False(t, LooseEqual([]any{1}, []any{2}))
}
