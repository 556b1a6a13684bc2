package eav

import (
	"strings"
	"testing"

	"github.com/deppfellow/go-commerce/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackendTypeByInput(t *testing.T) {
	tests := map[string]string{
		"text":        "varchar",
		"gallery":     "varchar",
		"media_image": "varchar",
		"image":       "text",
		"textarea":    "text",
		"multiselect": "text",
		"date":        "datetime",
		"select":      "int",
		"boolean":     "int",
		"price":       "decimal",
		"weight":      "",
		"":            "",
	}
	for input, want := range tests {
		assert.Equal(t, want, BackendTypeByInput(input), input)
	}
}

func TestDefaultValueFieldByInput(t *testing.T) {
	tests := map[string]string{
		"text":        "default_value_text",
		"price":       "default_value_text",
		"image":       "default_value_text",
		"weight":      "default_value_text",
		"textarea":    "default_value_textarea",
		"date":        "default_value_date",
		"boolean":     "default_value_yesno",
		"select":      "",
		"multiselect": "",
		"gallery":     "",
	}
	for input, want := range tests {
		assert.Equal(t, want, DefaultValueFieldByInput(input), input)
	}
}

func TestAttribute_DefaultModels(t *testing.T) {
	tests := []struct {
		code    string
		backend string
		source  string
	}{
		{"created_at", "eav/entity_attribute_backend_time_created", DefaultSourceModel},
		{"updated_at", "eav/entity_attribute_backend_time_updated", DefaultSourceModel},
		{"store_id", "eav/entity_attribute_backend_store", StoreSourceModel},
		{"increment_id", "eav/entity_attribute_backend_increment", DefaultSourceModel},
		{"color", DefaultBackendModel, DefaultSourceModel},
	}
	for _, tt := range tests {
		a := NewAttribute(map[string]any{"attribute_code": tt.code})
		assert.Equal(t, tt.backend, a.BackendModel(), tt.code)
		assert.Equal(t, tt.source, a.SourceModel(), tt.code)
		assert.Equal(t, DefaultFrontendModel, a.FrontendModel())
	}

	explicit := NewAttribute(map[string]any{"attribute_code": "created_at", "backend_model": "custom/backend"})
	assert.Equal(t, "custom/backend", explicit.BackendModel())
}

func TestAttribute_BeforeSaveCodeLength(t *testing.T) {
	ok := NewAttribute(map[string]any{"attribute_code": strings.Repeat("a", 30)})
	assert.NoError(t, ok.BeforeSave())

	long := NewAttribute(map[string]any{"attribute_code": strings.Repeat("a", 31)})
	err := long.BeforeSave()
	assert.Equal(t, "Maximum length of attribute code must be less then 30 symbols", errs.UserMessage(err, ""))
}

func TestAttribute_BeforeSaveDecimal(t *testing.T) {
	a := NewAttribute(map[string]any{"attribute_code": "cost", "backend_type": "decimal", "default_value": "1,234.50"})
	require.NoError(t, a.BeforeSave())
	assert.Equal(t, "1234.5", a.Get("default_value"))

	bad := NewAttribute(map[string]any{"attribute_code": "cost", "backend_type": "decimal", "default_value": "twelve"})
	assert.Equal(t, "Invalid default decimal value", errs.UserMessage(bad.BeforeSave(), ""))

	empty := NewAttribute(map[string]any{"attribute_code": "cost", "backend_type": "decimal", "default_value": ""})
	assert.NoError(t, empty.BeforeSave())
}

func TestNormalizeDecimal(t *testing.T) {
	for in, want := range map[string]string{
		"1,234.50":     "1234.5",
		"1234.5":       "1234.5",
		"-1,234":       "-1234",
		"12,345,678.9": "12345678.9",
		".5":           "0.5",
		" 42 ":         "42",
	} {
		got, err := normalizeDecimal(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, in := range []string{"1,2,3", "12,34.5", "1,23", ",123", "1,234,", "1.234,5", "-", "."} {
		_, err := normalizeDecimal(in)
		assert.Error(t, err, in)
	}
}

func TestAttribute_BeforeSaveDatetime(t *testing.T) {
	a := NewAttribute(map[string]any{"attribute_code": "news_from", "backend_type": "datetime", "default_value": "1/15/24"})
	require.NoError(t, a.BeforeSave())

	assert.Equal(t, "1705276800", a.Get("default_value"))
	assert.Equal(t, DatetimeBackendModel, a.Get("backend_model"))
	assert.Equal(t, DatetimeFrontendModel, a.Get("frontend_model"))

	kept := NewAttribute(map[string]any{"backend_type": "datetime", "backend_model": "custom/dt"})
	require.NoError(t, kept.BeforeSave())
	assert.Equal(t, "custom/dt", kept.Get("backend_model"))

	bad := NewAttribute(map[string]any{"backend_type": "datetime", "default_value": "2024-01-15"})
	assert.Equal(t, "Invalid default date", errs.UserMessage(bad.BeforeSave(), ""))
}

func TestAttribute_BeforeSaveGallery(t *testing.T) {
	a := NewAttribute(map[string]any{"backend_type": "gallery"})
	require.NoError(t, a.BeforeSave())
	assert.Equal(t, MediaBackendModel, a.Get("backend_model"))
}

func TestAttribute_ApplyFormInput(t *testing.T) {
	a := NewAttribute(map[string]any{
		"attribute_code":     "launch_date",
		"frontend_input":     "date",
		"default_value_date": "2/1/24",
		"default_value_text": "ignored",
	})
	a.ApplyFormInput()

	assert.Equal(t, "datetime", a.BackendType())
	assert.Equal(t, "2/1/24", a.Get("default_value"))

	fixed := NewAttribute(map[string]any{"frontend_input": "select", "backend_type": "varchar"})
	fixed.ApplyFormInput()
	assert.Equal(t, "varchar", fixed.BackendType())
	assert.False(t, fixed.Has("default_value"))
}

func TestAttribute_StoreLabel(t *testing.T) {
	a := NewAttribute(map[string]any{"frontend_label": "Color"})
	a.SetStoreLabels(map[int64]string{1: "Couleur"})

	assert.Equal(t, "Couleur", a.StoreLabel(1))
	assert.Equal(t, "Color", a.StoreLabel(AdminStoreID))
	assert.Equal(t, "Color", a.StoreLabel(2))

	a.Set("store_label", "Farbe")
	assert.Equal(t, "Farbe", a.StoreLabel(1))
}
