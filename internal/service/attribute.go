package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/deppfellow/go-commerce/internal/eav"
	"github.com/deppfellow/go-commerce/internal/errs"
	"github.com/deppfellow/go-commerce/internal/lib/flash"
	"github.com/rs/zerolog"
)

// AttributesPath is the admin attribute grid.
const AttributesPath = "/admin/eav/attributes"

// AttributeStore persists EAV attributes.
type AttributeStore interface {
	GetAttribute(ctx context.Context, id int64) (*eav.Attribute, error)
	SaveAttribute(ctx context.Context, attribute *eav.Attribute) error
}

type AttributeService struct {
	attributes AttributeStore
	flash      *flash.Store
	logger     *zerolog.Logger
}

func NewAttributeService(attributes AttributeStore, store *flash.Store, logger *zerolog.Logger) *AttributeService {
	return &AttributeService{attributes: attributes, flash: store, logger: logger}
}

// GetAttribute loads the attribute with id and resolves its label for
// storeID into store_label.
func (s *AttributeService) GetAttribute(ctx context.Context, id, storeID int64) (*eav.Attribute, error) {
	attribute, err := s.attributes.GetAttribute(ctx, id)
	if err != nil {
		return nil, err
	}
	attribute.Set("store_label", attribute.StoreLabel(storeID))
	return attribute, nil
}

// SaveAttribute applies posted data to a new or existing attribute and
// stores it. labels, when not nil, replace the per-store labels.
func (s *AttributeService) SaveAttribute(ctx context.Context, session string, post map[string]any, labels map[int64]string) (*flash.Redirect, error) {
	sess := s.flash.Session(session)

	attribute := eav.NewAttribute(post)
	if id := attribute.AttributeID(); id != 0 {
		existing, err := s.attributes.GetAttribute(ctx, id)
		if err != nil {
			return nil, err
		}
		existing.AddData(post)
		attribute = existing
	}
	if labels != nil {
		attribute.SetStoreLabels(labels)
	}

	attribute.ApplyFormInput()
	err := attribute.BeforeSave()
	if err == nil {
		err = s.attributes.SaveAttribute(ctx, attribute)
	}
	if err != nil {
		s.logger.Warn().Err(err).Str("attribute_code", attribute.Code()).Msg("attribute not saved")

		var ex *errs.Exception
		if errors.As(err, &ex) {
			if err := sess.SetFormData(ctx, post); err != nil {
				return nil, err
			}
		}
		if err := sess.AddError(ctx, userMessage(err, "An error occurred while saving this attribute.")); err != nil {
			return nil, err
		}
		if id := attribute.AttributeID(); id != 0 {
			return sess.Redirect(fmt.Sprintf("%s/%d", AttributesPath, id)), nil
		}
		return sess.Redirect(AttributesPath + "/new"), nil
	}

	if err := sess.AddSuccess(ctx, "The attribute has been saved."); err != nil {
		return nil, err
	}
	return sess.Redirect(AttributesPath), nil
}
