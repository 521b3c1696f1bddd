// Package catalog holds the read-only snapshot of existing accounts,
// categories and holdings that an import session resolves references against.
package catalog

import (
	"strings"

	"github.com/google/uuid"
)

// AccountType discriminates account behavior.
type AccountType string

const (
	AccountChecking   AccountType = "checking"
	AccountSavings    AccountType = "savings"
	AccountCredit     AccountType = "credit"
	AccountInvestment AccountType = "investment"
	AccountCash       AccountType = "cash"
)

// CategoryType is the direction a category applies to.
type CategoryType string

const (
	CategoryIncome   CategoryType = "income"
	CategoryExpense  CategoryType = "expense"
	CategoryTransfer CategoryType = "transfer"
)

// Account is an existing account as known to the persistence layer.
type Account struct {
	ID   uuid.UUID
	Name string
	Type AccountType
}

// Category is an existing transaction category.
type Category struct {
	ID   uuid.UUID
	Name string
	Type CategoryType
}

// Holding is an existing instrument position keyed by its ticker.
type Holding struct {
	ID        uuid.UUID
	Ticker    string
	Name      string
	AssetType string
	Currency  string
}

// Catalog is the snapshot supplied once per import session.
type Catalog struct {
	Accounts   []Account
	Categories []Category
	Holdings   []Holding
}

// AccountByName matches case-insensitively on the display name.
func (c *Catalog) AccountByName(name string) (Account, bool) {
	name = strings.TrimSpace(name)
	for _, a := range c.Accounts {
		if strings.EqualFold(a.Name, name) {
			return a, true
		}
	}
	return Account{}, false
}

// FirstAccount returns the first catalog account, the last-resort default.
func (c *Catalog) FirstAccount() (Account, bool) {
	if len(c.Accounts) == 0 {
		return Account{}, false
	}
	return c.Accounts[0], true
}

// CategoryByName matches case-insensitively on name and, when typ is
// non-empty, on direction too.
func (c *Catalog) CategoryByName(name string, typ CategoryType) (Category, bool) {
	name = strings.TrimSpace(name)
	for _, cat := range c.Categories {
		if !strings.EqualFold(cat.Name, name) {
			continue
		}
		if typ != "" && cat.Type != typ {
			continue
		}
		return cat, true
	}
	return Category{}, false
}

// FirstCategoryOfType returns the first category with the given direction.
func (c *Catalog) FirstCategoryOfType(typ CategoryType) (Category, bool) {
	for _, cat := range c.Categories {
		if cat.Type == typ {
			return cat, true
		}
	}
	return Category{}, false
}

// HoldingByTicker matches on the uppercased ticker, the natural key for
// holdings.
func (c *Catalog) HoldingByTicker(ticker string) (Holding, bool) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	for _, h := range c.Holdings {
		if strings.ToUpper(h.Ticker) == ticker {
			return h, true
		}
	}
	return Holding{}, false
}

// ParseAccountType normalizes a free-text account type cell using bilingual
// keyword matching. Unrecognized input defaults to checking.
func ParseAccountType(raw string) AccountType {
	s := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case containsAny(s, "save", "saving", "risparmio", "deposito"):
		return AccountSavings
	case containsAny(s, "credit", "credito", "carta", "card"):
		return AccountCredit
	case containsAny(s, "invest", "investimento", "titoli", "broker"):
		return AccountInvestment
	case containsAny(s, "cash", "contant", "liquid"):
		return AccountCash
	default:
		return AccountChecking
	}
}

// ParseCategoryType normalizes a free-text category type cell. Unrecognized
// input defaults to expense.
func ParseCategoryType(raw string) CategoryType {
	s := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case containsAny(s, "income", "entrata", "entrate", "credit", "accredito"):
		return CategoryIncome
	case containsAny(s, "transfer", "trasferimento", "giro"):
		return CategoryTransfer
	default:
		return CategoryExpense
	}
}

func containsAny(s string, keywords ...string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
