package repository

import (
	"context"

	"github.com/deppfellow/go-commerce/internal/eav"
	"github.com/deppfellow/go-commerce/internal/server"
	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
	"github.com/spf13/cast"
)

const attributeTable = "eav_attribute"

// AttributeRepository stores eav_attribute rows and their store labels.
type AttributeRepository struct {
	server *server.Server
}

func NewAttributeRepository(s *server.Server) *AttributeRepository {
	return &AttributeRepository{server: s}
}

// GetAttribute loads the attribute with id and its per-store labels.
func (r *AttributeRepository) GetAttribute(ctx context.Context, id int64) (*eav.Attribute, error) {
	data, err := collectOne(ctx, r.server.DB.Pool,
		`SELECT `+columnSet(eav.Fields).names()+` FROM eav_attribute WHERE attribute_id = $1`, id)
	if err != nil {
		return nil, wrapMissing(err, attributeTable, "get attribute")
	}
	attribute := eav.NewAttribute(data)

	rows, err := collectAll(ctx, r.server.DB.Pool,
		`SELECT store_id, value FROM eav_attribute_label WHERE attribute_id = $1 ORDER BY store_id`, id)
	if err != nil {
		return nil, errors.Wrap(err, "get attribute labels")
	}
	labels := make(map[int64]string, len(rows))
	for _, row := range rows {
		labels[cast.ToInt64(row["store_id"])] = cast.ToString(row["value"])
	}
	attribute.SetStoreLabels(labels)

	return attribute, nil
}

// SaveAttribute writes the attribute's present columns and replaces its
// store labels in one transaction. New attributes get their id set.
func (r *AttributeRepository) SaveAttribute(ctx context.Context, attribute *eav.Attribute) error {
	var cols columnSet
	args := pgx.NamedArgs{}
	for _, field := range eav.Fields[1:] {
		if attribute.Has(field) {
			cols = append(cols, field)
			args[field] = attribute.Get(field)
		}
	}

	return pgx.BeginFunc(ctx, r.server.DB.Pool, func(tx pgx.Tx) error {
		if attribute.AttributeID() == 0 {
			var id int64
			err := tx.QueryRow(ctx,
				`INSERT INTO eav_attribute (`+cols.names()+`) VALUES (`+cols.params()+`) RETURNING attribute_id`,
				args).Scan(&id)
			if err != nil {
				return errors.Wrap(err, "insert attribute")
			}
			attribute.SetID(id)
		} else if len(cols) > 0 {
			args["id"] = attribute.AttributeID()
			tag, err := tx.Exec(ctx,
				`UPDATE eav_attribute SET `+cols.assignments()+` WHERE attribute_id = @id`, args)
			if err != nil {
				return errors.Wrap(err, "update attribute")
			}
			if tag.RowsAffected() == 0 {
				return notFound(attributeTable, "update attribute %d", attribute.AttributeID())
			}
		}

		labels := attribute.StoreLabels()
		if labels == nil {
			return nil
		}

		if _, err := tx.Exec(ctx, `DELETE FROM eav_attribute_label WHERE attribute_id = $1`, attribute.AttributeID()); err != nil {
			return errors.Wrap(err, "clear attribute labels")
		}
		for storeID, value := range labels {
			if storeID == eav.AdminStoreID || value == "" {
				continue
			}
			if _, err := tx.Exec(ctx,
				`INSERT INTO eav_attribute_label (attribute_id, store_id, value) VALUES ($1, $2, $3)`,
				attribute.AttributeID(), storeID, value); err != nil {
				return errors.Wrapf(err, "insert label for store %d", storeID)
			}
		}
		return nil
	})
}
