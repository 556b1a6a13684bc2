package dataobject

import (
	"reflect"

	"github.com/spf13/cast"
)

// SnapshotOrigData records the current data as the original (loaded) state
// and resets the change flag. Repositories call it right after a load.
func (o *Object) SnapshotOrigData() *Object {
	o.origData = o.ToMap()
	o.changed = false
	return o
}

// SetOrigData records a single original value.
func (o *Object) SetOrigData(key string, value any) *Object {
	if o.origData == nil {
		o.origData = make(map[string]any)
	}
	o.origData[key] = value
	return o
}

// OrigData returns the original value for key, or a copy of all original
// data when key is empty.
func (o *Object) OrigData(key string) any {
	if key == "" {
		out := make(map[string]any, len(o.origData))
		for k, v := range o.origData {
			out[k] = v
		}
		return out
	}
	return o.origData[key]
}

// DataHasChangedFor reports whether field differs from its original value.
func (o *Object) DataHasChangedFor(field string) bool {
	return !LooseEqual(o.data[field], o.origData[field])
}

// HasDataChanges reports whether any setter ran since the last snapshot.
func (o *Object) HasDataChanges() bool {
	return o.changed
}

// SetDataChanges forces the change flag.
func (o *Object) SetDataChanges(changed bool) *Object {
	o.changed = changed
	return o
}

// MarkDeleted flags the Object for deletion on the next save.
func (o *Object) MarkDeleted(deleted bool) *Object {
	o.deleted = deleted
	return o
}

// IsDeleted reports the deletion flag.
func (o *Object) IsDeleted() bool {
	return o.deleted
}

// FlagDirty sets the dirty flag of field. An empty field flags every
// current key.
func (o *Object) FlagDirty(field string, flag bool) *Object {
	if o.dirty == nil {
		o.dirty = make(map[string]bool)
	}
	fields := []string{field}
	if field == "" {
		fields = o.keys
	}
	for _, f := range fields {
		if flag {
			o.dirty[f] = true
		} else {
			delete(o.dirty, f)
		}
	}
	return o
}

// IsDirty reports whether field is flagged dirty. An empty field reports
// whether anything is.
func (o *Object) IsDirty(field string) bool {
	if field == "" {
		return len(o.dirty) > 0
	}
	return o.dirty[field]
}

// LooseEqual compares two values the way the admin forms expect: scalars
// are equal when their string forms match ("1" == 1, nil == ""), anything
// else falls back to reflect.DeepEqual.
func LooseEqual(a, b any) bool {
	as, aerr := cast.ToStringE(a)
	bs, berr := cast.ToStringE(b)
	if aerr == nil && berr == nil {
		return as == bs
	}
	return reflect.DeepEqual(a, b)
}
