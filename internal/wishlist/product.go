package wishlist

import (
	"github.com/deppfellow/go-commerce/internal/dataobject"
	"github.com/spf13/cast"
)

// Product types.
const (
	TypeSimple       = "simple"
	TypeGrouped      = "grouped"
	TypeConfigurable = "configurable"
	TypeBundle       = "bundle"
)

// CompositeTypes are product types assembled from child products.
var CompositeTypes = []string{TypeGrouped, TypeConfigurable, TypeBundle}

const (
	StatusEnabled = 1

	VisibilityNotVisible = 1
)

// Product is the catalog_product_entity data an item needs.
type Product struct {
	*dataobject.Object

	// CustomOptions is the configuration the product was requested with,
	// keyed by option code.
	CustomOptions map[string]*Option
}

// NewProduct wraps product data.
func NewProduct(data map[string]any) *Product {
	obj := dataobject.FromMap(data)
	obj.SetIDFieldName("entity_id")
	return &Product{Object: obj, CustomOptions: map[string]*Option{}}
}

func (p *Product) ProductID() int64 {
	return cast.ToInt64(p.ID())
}

func (p *Product) TypeID() string {
	return cast.ToString(p.Get("type_id"))
}

func (p *Product) StoreID() int64 {
	return cast.ToInt64(p.Get("store_id"))
}

func (p *Product) IsEnabled() bool {
	return cast.ToInt(p.Get("status")) == StatusEnabled
}

// IsVisibleInSiteVisibility reports whether the product is listed in the
// catalog, search or both.
func (p *Product) IsVisibleInSiteVisibility() bool {
	v := cast.ToInt(p.Get("visibility"))
	return v > VisibilityNotVisible
}

func (p *Product) IsSalable() bool {
	return cast.ToBool(p.Get("is_salable"))
}

func (p *Product) HasRequiredOptions() bool {
	return cast.ToBool(p.Get("has_required_options"))
}

// IsComposite reports whether the product type is one of CompositeTypes.
func (p *Product) IsComposite() bool {
	for _, t := range CompositeTypes {
		if p.TypeID() == t {
			return true
		}
	}
	return false
}
