package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/deppfellow/go-commerce/internal/customer"
	"github.com/deppfellow/go-commerce/internal/server"
	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
	"github.com/spf13/cast"
)

const customerTable = "customer_entity"

const customerColumns = `entity_id, website_id, email, firstname, lastname, group_id, is_subscribed, password_hash`

// Columns written by SaveCustomer.
var customerSaveColumns = columnSet{"website_id", "email", "firstname", "lastname", "group_id", "is_subscribed", "password_hash"}

// CustomerRepository stores customer_entity rows. It implements
// customer.Store.
type CustomerRepository struct {
	server *server.Server
}

func NewCustomerRepository(s *server.Server) *CustomerRepository {
	return &CustomerRepository{server: s}
}

// Update locks the customers with ids, applies mutate to each and writes
// back the fields it changed. Nothing is written if any id is missing or
// mutate fails.
func (r *CustomerRepository) Update(ctx context.Context, ids []int64, mutate customer.Mutation) error {
	return pgx.BeginFunc(ctx, r.server.DB.Pool, func(tx pgx.Tx) error {
		rows, err := collectAll(ctx, tx,
			`SELECT entity_id, email, firstname, lastname, group_id, is_subscribed
			FROM customer_entity WHERE entity_id = ANY($1) ORDER BY entity_id FOR UPDATE`, ids)
		if err != nil {
			return errors.Wrap(err, "lock customers")
		}

		byID := make(map[int64]map[string]any, len(rows))
		for _, row := range rows {
			byID[cast.ToInt64(row[customer.IDField])] = row
		}

		for _, id := range ids {
			data, ok := byID[id]
			if !ok {
				return customer.NotFoundError(id)
			}

			c := customer.New(data)
			if err := mutate(c); err != nil {
				return err
			}

			changed := c.ChangedFields()
			if len(changed) == 0 {
				continue
			}

			set := make([]string, len(changed))
			args := make([]any, 0, len(changed)+1)
			for i, field := range changed {
				set[i] = fmt.Sprintf("%s = $%d", pgx.Identifier{field}.Sanitize(), i+1)
				args = append(args, c.Get(field))
			}
			args = append(args, id)

			sql := fmt.Sprintf(`UPDATE customer_entity SET %s, updated_at = NOW() WHERE entity_id = $%d`,
				strings.Join(set, ", "), len(args))
			if _, err := tx.Exec(ctx, sql, args...); err != nil {
				return errors.Wrapf(err, "update customer %d", id)
			}
		}
		return nil
	})
}

// Delete removes the customers with ids. Nothing is removed if any id is
// missing.
func (r *CustomerRepository) Delete(ctx context.Context, ids []int64) error {
	return pgx.BeginFunc(ctx, r.server.DB.Pool, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `DELETE FROM customer_entity WHERE entity_id = ANY($1) RETURNING entity_id`, ids)
		if err != nil {
			return errors.Wrap(err, "delete customers")
		}
		deleted, err := pgx.CollectRows(rows, pgx.RowTo[int64])
		if err != nil {
			return errors.Wrap(err, "delete customers")
		}

		seen := make(map[int64]bool, len(deleted))
		for _, id := range deleted {
			seen[id] = true
		}
		for _, id := range ids {
			if !seen[id] {
				return customer.NotFoundError(id)
			}
		}
		return nil
	})
}

// GetCustomer loads the customer with id.
func (r *CustomerRepository) GetCustomer(ctx context.Context, id int64) (*customer.Customer, error) {
	data, err := collectOne(ctx, r.server.DB.Pool,
		`SELECT `+customerColumns+` FROM customer_entity WHERE entity_id = $1`, id)
	if err != nil {
		return nil, wrapMissing(err, customerTable, "get customer")
	}
	return customer.New(data), nil
}

// GetCustomerByEmail loads the customer of websiteID using email. Emails
// compare case-insensitively.
func (r *CustomerRepository) GetCustomerByEmail(ctx context.Context, email string, websiteID int64) (*customer.Customer, error) {
	data, err := collectOne(ctx, r.server.DB.Pool,
		`SELECT `+customerColumns+` FROM customer_entity WHERE LOWER(email) = LOWER($1) AND website_id = $2`,
		email, websiteID)
	if err != nil {
		return nil, wrapMissing(err, customerTable, "get customer by email")
	}
	return customer.New(data), nil
}

// SaveCustomer inserts a new customer or updates an existing one. New
// customers get their id set. The password hash is kept when the model
// carries none.
func (r *CustomerRepository) SaveCustomer(ctx context.Context, c *customer.Customer) error {
	args := pgx.NamedArgs{}
	for _, col := range customerSaveColumns {
		args[col] = c.Get(col)
	}
	args["website_id"] = c.WebsiteID()
	args["is_subscribed"] = c.IsSubscribed()
	if c.GroupID() == 0 {
		args["group_id"] = customer.DefaultGroupID
	}

	if c.IsNew() {
		var id int64
		err := r.server.DB.Pool.QueryRow(ctx,
			`INSERT INTO customer_entity (`+customerSaveColumns.names()+`) VALUES (`+customerSaveColumns.params()+`)
			RETURNING entity_id`, args).Scan(&id)
		if err != nil {
			return errors.Wrap(err, "insert customer")
		}
		c.SetID(id)
		return nil
	}

	args["id"] = c.CustomerID()
	tag, err := r.server.DB.Pool.Exec(ctx,
		`UPDATE customer_entity SET website_id = @website_id, email = @email, firstname = @firstname,
			lastname = @lastname, group_id = @group_id, is_subscribed = @is_subscribed,
			password_hash = COALESCE(@password_hash, password_hash), updated_at = NOW()
		WHERE entity_id = @id`, args)
	if err != nil {
		return errors.Wrap(err, "update customer")
	}
	if tag.RowsAffected() == 0 {
		return notFound(customerTable, "update customer %d", c.CustomerID())
	}
	return nil
}
