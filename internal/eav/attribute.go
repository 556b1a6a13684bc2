// Package eav holds the EAV attribute model: backend typing by input
// type, default models and the checks run before an attribute is saved.
package eav

import (
	"errors"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/deppfellow/go-commerce/internal/dataobject"
	"github.com/deppfellow/go-commerce/internal/errs"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

const (
	IDField = "attribute_id"

	// AttributeCodeMaxLength bounds attribute_code in runes.
	AttributeCodeMaxLength = 30

	// AdminStoreID is the store whose labels fall back to frontend_label.
	AdminStoreID int64 = 0

	// ShortDateLayout is the admin's short date format (en_US M/d/yy).
	ShortDateLayout = "1/2/06"
)

const (
	DefaultBackendModel  = "eav/entity_attribute_backend_default"
	DefaultFrontendModel = "eav/entity_attribute_frontend_default"
	DefaultSourceModel   = "eav/entity_attribute_source_config"

	DatetimeBackendModel  = "eav/entity_attribute_backend_datetime"
	DatetimeFrontendModel = "eav/entity_attribute_frontend_datetime"
	MediaBackendModel     = "eav/entity_attribute_backend_media"
	StoreSourceModel      = "eav/entity_attribute_source_store"
)

// Fields lists the persisted eav_attribute columns.
var Fields = []string{
	IDField,
	"entity_type_id",
	"attribute_code",
	"backend_model",
	"backend_type",
	"frontend_model",
	"frontend_input",
	"frontend_label",
	"source_model",
	"is_required",
	"is_user_defined",
	"default_value",
	"note",
}

var backendModelsByCode = map[string]string{
	"created_at":   "eav/entity_attribute_backend_time_created",
	"updated_at":   "eav/entity_attribute_backend_time_updated",
	"store_id":     "eav/entity_attribute_backend_store",
	"increment_id": "eav/entity_attribute_backend_increment",
}

// BackendTypeByInput returns the storage type for a frontend input type,
// or "" when the input has no fixed backend type.
func BackendTypeByInput(input string) string {
	switch input {
	case "text", "gallery", "media_image":
		return "varchar"
	case "image", "textarea", "multiselect":
		return "text"
	case "date":
		return "datetime"
	case "select", "boolean":
		return "int"
	case "price":
		return "decimal"
	default:
		return ""
	}
}

// DefaultValueFieldByInput names the admin form field that carries the
// default value for input, or "" when the input has none.
func DefaultValueFieldByInput(input string) string {
	switch input {
	case "text", "price", "image", "weight":
		return "default_value_text"
	case "textarea":
		return "default_value_textarea"
	case "date":
		return "default_value_date"
	case "boolean":
		return "default_value_yesno"
	default:
		return ""
	}
}

// Attribute is an eav_attribute row plus its per-store labels.
type Attribute struct {
	*dataobject.Object
}

// NewAttribute wraps posted or loaded data.
func NewAttribute(data map[string]any) *Attribute {
	obj := dataobject.FromMap(data)
	obj.SetIDFieldName(IDField)
	return &Attribute{Object: obj}
}

func (a *Attribute) AttributeID() int64 {
	return cast.ToInt64(a.ID())
}

func (a *Attribute) Code() string {
	return cast.ToString(a.Get("attribute_code"))
}

func (a *Attribute) BackendType() string {
	return cast.ToString(a.Get("backend_type"))
}

func (a *Attribute) FrontendInput() string {
	return cast.ToString(a.Get("frontend_input"))
}

// BackendModel returns the configured backend model or the default for
// the attribute code.
func (a *Attribute) BackendModel() string {
	if model := cast.ToString(a.Get("backend_model")); model != "" {
		return model
	}
	if model, ok := backendModelsByCode[a.Code()]; ok {
		return model
	}
	return DefaultBackendModel
}

// FrontendModel returns the configured frontend model or the default.
func (a *Attribute) FrontendModel() string {
	if model := cast.ToString(a.Get("frontend_model")); model != "" {
		return model
	}
	return DefaultFrontendModel
}

// SourceModel returns the configured source model or the default for the
// attribute code.
func (a *Attribute) SourceModel() string {
	if model := cast.ToString(a.Get("source_model")); model != "" {
		return model
	}
	if a.Code() == "store_id" {
		return StoreSourceModel
	}
	return DefaultSourceModel
}

// ApplyFormInput fills backend_type and default_value from the admin
// form's input-specific fields.
func (a *Attribute) ApplyFormInput() {
	input := a.FrontendInput()
	if input == "" {
		return
	}
	if a.BackendType() == "" {
		if backendType := BackendTypeByInput(input); backendType != "" {
			a.Set("backend_type", backendType)
		}
	}
	if field := DefaultValueFieldByInput(input); field != "" && a.Has(field) {
		a.Set("default_value", a.Get(field))
	}
}

// BeforeSave validates the attribute and normalizes its default value.
func (a *Attribute) BeforeSave() error {
	if a.Has("attribute_code") && utf8.RuneCountInString(a.Code()) > AttributeCodeMaxLength {
		return errs.NewException("Maximum length of attribute code must be less then %d symbols", AttributeCodeMaxLength)
	}

	defaultValue := strings.TrimSpace(dataobject.Stringify(a.Get("default_value")))
	hasDefault := defaultValue != ""

	switch a.BackendType() {
	case "decimal":
		if hasDefault {
			normalized, err := normalizeDecimal(defaultValue)
			if err != nil {
				return errs.NewException("Invalid default decimal value").Wrap(err)
			}
			a.Set("default_value", normalized)
		}

	case "datetime":
		if cast.ToString(a.Get("backend_model")) == "" {
			a.Set("backend_model", DatetimeBackendModel)
		}
		if cast.ToString(a.Get("frontend_model")) == "" {
			a.Set("frontend_model", DatetimeFrontendModel)
		}
		if hasDefault {
			date, err := time.ParseInLocation(ShortDateLayout, defaultValue, time.UTC)
			if err != nil {
				return errs.NewException("Invalid default date").Wrap(err)
			}
			a.Set("default_value", cast.ToString(date.Unix()))
		}

	case "gallery":
		if cast.ToString(a.Get("backend_model")) == "" {
			a.Set("backend_model", MediaBackendModel)
		}
	}

	return nil
}

// enUSNumber matches en_US numbers: commas only as thousands separators.
var enUSNumber = regexp.MustCompile(`^[+-]?(?:\d{1,3}(?:,\d{3})+|\d+)?(?:\.\d+)?$`)

var errNotANumber = errors.New("not an en_US number")

// normalizeDecimal accepts en_US formatted numbers ("1,234.50") and
// returns their canonical form ("1234.5").
func normalizeDecimal(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" || !enUSNumber.MatchString(value) || strings.Trim(value, "+-.") == "" {
		return "", errNotANumber
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(value, ",", ""))
	if err != nil {
		return "", err
	}
	return d.String(), nil
}

// StoreLabels returns the per-store labels keyed by store id.
func (a *Attribute) StoreLabels() map[int64]string {
	labels, _ := a.Get("store_labels").(map[int64]string)
	return labels
}

// SetStoreLabels replaces the per-store labels.
func (a *Attribute) SetStoreLabels(labels map[int64]string) *Attribute {
	a.Set("store_labels", labels)
	return a
}

// StoreLabel returns the label shown in storeID: an explicit store_label,
// else the store's own label outside the admin, else frontend_label.
func (a *Attribute) StoreLabel(storeID int64) string {
	if a.Has("store_label") {
		return cast.ToString(a.Get("store_label"))
	}
	if storeID != AdminStoreID {
		if label, ok := a.StoreLabels()[storeID]; ok {
			return label
		}
	}
	return cast.ToString(a.Get("frontend_label"))
}
