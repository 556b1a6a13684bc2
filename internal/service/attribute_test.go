package service

import (
	"context"
	"testing"

	"github.com/deppfellow/go-commerce/internal/eav"
	"github.com/deppfellow/go-commerce/internal/errs"
	"github.com/deppfellow/go-commerce/internal/lib/flash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAttributeStore struct {
	attributes map[int64]*eav.Attribute
	saved      *eav.Attribute
}

func (f *fakeAttributeStore) GetAttribute(_ context.Context, id int64) (*eav.Attribute, error) {
	attribute, ok := f.attributes[id]
	if !ok {
		return nil, errs.NewNotFoundError("Attribute not found", true, nil)
	}
	return attribute, nil
}

func (f *fakeAttributeStore) SaveAttribute(_ context.Context, attribute *eav.Attribute) error {
	if attribute.AttributeID() == 0 {
		attribute.SetID(int64(len(f.attributes) + 1))
	}
	f.attributes[attribute.AttributeID()] = attribute
	f.saved = attribute
	return nil
}

func TestAttributeService_GetAttribute(t *testing.T) {
	store := &fakeAttributeStore{attributes: map[int64]*eav.Attribute{
		3: eav.NewAttribute(map[string]any{eav.IDField: int64(3), "frontend_label": "Color"}).
			SetStoreLabels(map[int64]string{1: "Couleur"}),
	}}
	svc := NewAttributeService(store, newTestFlash(t), newTestLogger())

	attribute, err := svc.GetAttribute(context.Background(), 3, 1)
	require.NoError(t, err)
	assert.Equal(t, "Couleur", attribute.Get("store_label"))

	_, err = svc.GetAttribute(context.Background(), 99, 1)
	assert.Equal(t, "Attribute not found", errs.UserMessage(err, ""))
}

func TestAttributeService_SaveAttribute(t *testing.T) {
	ctx := context.Background()

	t.Run("new price attribute", func(t *testing.T) {
		store := &fakeAttributeStore{attributes: map[int64]*eav.Attribute{}}
		fl := newTestFlash(t)
		svc := NewAttributeService(store, fl, newTestLogger())

		redirect, err := svc.SaveAttribute(ctx, testSession, map[string]any{
			"attribute_code":     "cost",
			"frontend_input":     "price",
			"default_value_text": "1,234.50",
		}, map[int64]string{1: "Cost"})
		require.NoError(t, err)

		assert.Equal(t, AttributesPath, redirect.Redirect)
		assert.Equal(t, []flash.Message{{Type: flash.TypeSuccess, Text: "The attribute has been saved."}}, redirect.Messages)
		require.NotNil(t, store.saved)
		assert.Equal(t, "decimal", store.saved.BackendType())
		assert.Equal(t, "1234.5", store.saved.Get("default_value"))
		assert.Equal(t, map[int64]string{1: "Cost"}, store.saved.StoreLabels())
	})

	t.Run("existing attribute keeps unposted fields", func(t *testing.T) {
		store := &fakeAttributeStore{attributes: map[int64]*eav.Attribute{
			5: eav.NewAttribute(map[string]any{
				eav.IDField:      int64(5),
				"attribute_code": "color",
				"frontend_input": "select",
				"backend_type":   "int",
				"note":           "kept",
			}),
		}}
		svc := NewAttributeService(store, newTestFlash(t), newTestLogger())

		_, err := svc.SaveAttribute(ctx, testSession, map[string]any{eav.IDField: 5, "frontend_label": "Colour"}, nil)
		require.NoError(t, err)

		assert.Equal(t, "kept", store.saved.Get("note"))
		assert.Equal(t, "Colour", store.saved.Get("frontend_label"))
		assert.Equal(t, "int", store.saved.BackendType())
	})

	t.Run("invalid default date", func(t *testing.T) {
		store := &fakeAttributeStore{attributes: map[int64]*eav.Attribute{}}
		fl := newTestFlash(t)
		svc := NewAttributeService(store, fl, newTestLogger())

		post := map[string]any{
			"attribute_code":     "launch",
			"frontend_input":     "date",
			"default_value_date": "not a date",
		}
		redirect, err := svc.SaveAttribute(ctx, testSession, post, nil)
		require.NoError(t, err)

		assert.Equal(t, AttributesPath+"/new", redirect.Redirect)
		assert.Equal(t, []flash.Message{{Type: flash.TypeError, Text: "Invalid default date"}}, redirect.Messages)
		assert.Nil(t, store.saved)

		form, err := fl.FormData(ctx, testSession, false)
		require.NoError(t, err)
		assert.Equal(t, "not a date", form["default_value_date"])
	})

	t.Run("code too long on an existing attribute", func(t *testing.T) {
		store := &fakeAttributeStore{attributes: map[int64]*eav.Attribute{
			8: eav.NewAttribute(map[string]any{eav.IDField: int64(8), "attribute_code": "short"}),
		}}
		svc := NewAttributeService(store, newTestFlash(t), newTestLogger())

		redirect, err := svc.SaveAttribute(ctx, testSession, map[string]any{
			eav.IDField:      8,
			"attribute_code": "a_very_long_attribute_code_over_limit",
		}, nil)
		require.NoError(t, err)

		assert.Equal(t, AttributesPath+"/8", redirect.Redirect)
		assert.Equal(t, "Maximum length of attribute code must be less then 30 symbols", redirect.Messages[0].Text)
	})
}
