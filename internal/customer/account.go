package customer

import (
	"strings"

	"github.com/deppfellow/go-commerce/internal/errs"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"golang.org/x/crypto/bcrypt"
)

const (
	// MinPasswordLength is the shortest password an admin may set.
	MinPasswordLength = 6

	// AutoPassword asks for a generated password.
	AutoPassword = "auto"

	// DefaultWebsiteID is used for accounts saved without a website.
	DefaultWebsiteID int64 = 1

	// DefaultGroupID is the "General" group new accounts join.
	DefaultGroupID int64 = 1

	// NotLoggedInGroupID is the group of guest buyers.
	NotLoggedInGroupID int64 = 0

	generatedPasswordLength = 10
)

// AccountFields are the account form fields copied onto a customer.
var AccountFields = []string{"firstname", "lastname", "email", "group_id", "website_id"}

var accountLabels = []struct{ field, label string }{
	{"firstname", "First Name"},
	{"lastname", "Last Name"},
	{"email", "Email"},
}

var emailValidator = validator.New()

func (c *Customer) FirstName() string {
	return cast.ToString(c.Get("firstname"))
}

func (c *Customer) LastName() string {
	return cast.ToString(c.Get("lastname"))
}

func (c *Customer) WebsiteID() int64 {
	if id := cast.ToInt64(c.Get("website_id")); id != 0 {
		return id
	}
	return DefaultWebsiteID
}

// IsNew reports whether the customer has not been stored yet.
func (c *Customer) IsNew() bool {
	return c.CustomerID() == 0
}

// ImportAccount copies the account form fields present in account onto
// the customer. Strings are trimmed.
func (c *Customer) ImportAccount(account map[string]any) {
	for _, field := range AccountFields {
		v, ok := account[field]
		if !ok {
			continue
		}
		if s, isString := v.(string); isString {
			v = strings.TrimSpace(s)
		}
		c.Set(field, v)
	}
}

// ValidateAccount returns one message per invalid account field, or nil.
func (c *Customer) ValidateAccount() []string {
	var problems []string
	for _, f := range accountLabels {
		if strings.TrimSpace(cast.ToString(c.Get(f.field))) == "" {
			problems = append(problems, `"`+f.label+`" is a required value.`)
		}
	}
	if email := c.Email(); email != "" && !IsValidEmail(email) {
		problems = append(problems, `"Email" is not a valid email address.`)
	}
	return problems
}

// SetPassword hashes password onto the customer. AutoPassword generates
// one, which is returned.
func (c *Customer) SetPassword(password string) (string, error) {
	password = strings.TrimSpace(password)
	if password == AutoPassword {
		password = GeneratePassword()
	}
	if len([]rune(password)) < MinPasswordLength {
		return "", errs.NewException("The minimum password length is %d", MinPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", errors.Wrap(err, "hash password")
	}
	c.Set("password_hash", string(hash))
	return password, nil
}

// CheckPassword reports whether password matches the stored hash.
func (c *Customer) CheckPassword(password string) bool {
	hash := cast.ToString(c.Get("password_hash"))
	return hash != "" && bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// IsValidEmail reports whether email is a well formed address.
func IsValidEmail(email string) bool {
	return emailValidator.Var(email, "required,email") == nil
}

// GeneratePassword returns a random password.
func GeneratePassword() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:generatedPasswordLength]
}
