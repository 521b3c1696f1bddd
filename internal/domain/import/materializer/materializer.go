// Package materializer turns raw statement rows into typed candidate
// records, each tagged with a validity verdict and non-fatal parse warnings.
//
// Materialization is a pure function of (row, mapping, catalog): entity
// creation is never triggered here, only at commit time.
package materializer

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/soldibase/soldibase/internal/domain/import/catalog"
	"github.com/soldibase/soldibase/internal/domain/import/normalizer"
	"github.com/soldibase/soldibase/internal/domain/import/resolver"
	"github.com/soldibase/soldibase/internal/domain/import/sniffer"
)

// Direction of a ledger transaction.
type Direction string

const (
	Income  Direction = "income"
	Expense Direction = "expense"
)

// Side of a brokerage trade.
type Side string

const (
	Buy  Side = "buy"
	Sell Side = "sell"
)

// Transaction is a materialized ledger transaction, not yet persisted.
// Amount is an unsigned magnitude; Direction carries the sign.
type Transaction struct {
	Date        time.Time
	Amount      decimal.Decimal
	Description string
	AccountID   uuid.UUID
	CategoryID  *uuid.UUID
	Direction   Direction
}

// TransactionCandidate pairs a transaction with its verdict.
type TransactionCandidate struct {
	Transaction
	Valid    bool
	Warnings []string
}

// Trade is a materialized brokerage trade. HoldingID is zero until the
// committer resolves the ticker.
type Trade struct {
	Ticker       string // uppercased resolution key
	HoldingID    uuid.UUID
	Date         time.Time
	Side         Side
	Quantity     decimal.Decimal
	PricePerUnit decimal.Decimal
	TotalAmount  decimal.Decimal
	Fees         decimal.Decimal
}

// TradeCandidate pairs a trade with its verdict.
type TradeCandidate struct {
	Trade
	Valid    bool
	Warnings []string
}

// AccountCandidate is a bulk-imported account row.
type AccountCandidate struct {
	Name     string
	Type     catalog.AccountType
	Balance  decimal.Decimal
	Valid    bool
	Warnings []string
}

// CategoryCandidate is a bulk-imported category row.
type CategoryCandidate struct {
	Name     string
	Type     catalog.CategoryType
	Valid    bool
	Warnings []string
}

var incomeTypeTokens = []string{"income", "credit", "entrata", "accredito", "avere"}

var buySellTokens = map[string]Side{
	"buy": Buy, "acquisto": Buy, "acq": Buy, "b": Buy, "a": Buy,
	"sell": Sell, "vendita": Sell, "vend": Sell, "s": Sell, "v": Sell,
}

// Materializer materializes rows for one import session.
type Materializer struct {
	resolver *resolver.Resolver
}

// New creates a materializer bound to a session resolver.
func New(res *resolver.Resolver) *Materializer {
	return &Materializer{resolver: res}
}

func cell(row map[string]string, column string) string {
	if column == "" {
		return ""
	}
	return strings.TrimSpace(row[column])
}

// Transaction materializes one ledger-transaction row. The candidate is
// valid only when an account resolved and the absolute amount is strictly
// positive.
func (m *Materializer) Transaction(row map[string]string, mapping sniffer.TransactionMapping) TransactionCandidate {
	var c TransactionCandidate

	if mapping.DualAmount {
		income, incomeOK := normalizer.ParseMagnitude(cell(row, mapping.IncomeAmount))
		expense, expenseOK := normalizer.ParseMagnitude(cell(row, mapping.ExpenseAmount))
		if raw := cell(row, mapping.IncomeAmount); raw != "" && !incomeOK {
			c.Warnings = append(c.Warnings, fmt.Sprintf("unparseable income amount %q", raw))
		}
		if raw := cell(row, mapping.ExpenseAmount); raw != "" && !expenseOK {
			c.Warnings = append(c.Warnings, fmt.Sprintf("unparseable expense amount %q", raw))
		}
		switch {
		case income.IsPositive():
			c.Direction = Income
			c.Amount = income
		case expense.IsPositive():
			c.Direction = Expense
			c.Amount = expense
		default:
			// Neither column carries money: the row contributes nothing.
			return c
		}
	} else {
		raw := cell(row, mapping.Amount)
		amount, ok := normalizer.ParseAmount(raw)
		if raw != "" && !ok {
			c.Warnings = append(c.Warnings, fmt.Sprintf("unparseable amount %q", raw))
		}
		if typeCell := cell(row, mapping.Type); typeCell != "" {
			c.Direction = directionFromType(typeCell)
		} else if amount.IsNegative() {
			c.Direction = Expense
		} else {
			c.Direction = Income
		}
		c.Amount = amount.Abs()
	}

	dateCell := cell(row, mapping.Date)
	date, dateOK := normalizer.ParseDate(dateCell)
	if !dateOK {
		c.Warnings = append(c.Warnings, fmt.Sprintf("unparseable date %q, using today", dateCell))
	}
	c.Date = date
	c.Description = normalizer.CleanDescription(cell(row, mapping.Description))

	accountID, err := m.resolver.ResolveAccount(cell(row, mapping.Account), mapping.Account != "")
	if err != nil {
		c.Warnings = append(c.Warnings, err.Error())
		return c
	}
	c.AccountID = accountID

	if id, ok := m.resolver.ResolveCategory(cell(row, mapping.Category), categoryDirection(c.Direction)); ok {
		c.CategoryID = &id
	}

	c.Valid = c.Amount.IsPositive()
	return c
}

// Trade materializes one brokerage-trade row. The candidate is valid only
// when the ticker is non-empty and quantity and price are strictly positive.
func (m *Materializer) Trade(row map[string]string, mapping sniffer.TradeMapping) TradeCandidate {
	var c TradeCandidate

	c.Ticker = resolver.TickerKey(cell(row, mapping.Ticker))
	c.Side = sideFromType(cell(row, mapping.Type))

	dateCell := cell(row, mapping.Date)
	date, dateOK := normalizer.ParseDate(dateCell)
	if !dateOK {
		c.Warnings = append(c.Warnings, fmt.Sprintf("unparseable date %q, using today", dateCell))
	}
	c.Date = date

	c.Quantity, _ = normalizer.ParseMagnitude(cell(row, mapping.Quantity))
	c.PricePerUnit, _ = normalizer.ParseMagnitude(cell(row, mapping.PricePerUnit))

	if raw := cell(row, mapping.TotalAmount); raw != "" {
		if total, ok := normalizer.ParseMagnitude(raw); ok && total.IsPositive() {
			c.TotalAmount = total
		}
	}
	if c.TotalAmount.IsZero() {
		c.TotalAmount = c.Quantity.Mul(c.PricePerUnit)
	}

	c.Fees, _ = normalizer.ParseMagnitude(cell(row, mapping.Fees))

	c.Valid = c.Ticker != "" && c.Quantity.IsPositive() && c.PricePerUnit.IsPositive()
	if c.Ticker == "" {
		c.Warnings = append(c.Warnings, "missing ticker")
	}
	return c
}

// Account materializes one bulk account-import row. Rows missing the name
// are invalid.
func (m *Materializer) Account(row map[string]string, mapping sniffer.AccountMapping) AccountCandidate {
	var c AccountCandidate

	c.Name = normalizer.CleanDescription(cell(row, mapping.Name))
	c.Type = catalog.ParseAccountType(cell(row, mapping.Type))
	c.Balance, _ = normalizer.ParseAmount(cell(row, mapping.Balance))

	c.Valid = c.Name != ""
	if !c.Valid {
		c.Warnings = append(c.Warnings, "missing account name")
	}
	return c
}

// Category materializes one bulk category-import row.
func (m *Materializer) Category(row map[string]string, mapping sniffer.CategoryMapping) CategoryCandidate {
	var c CategoryCandidate

	c.Name = normalizer.CleanDescription(cell(row, mapping.Name))
	c.Type = catalog.ParseCategoryType(cell(row, mapping.Type))

	c.Valid = c.Name != ""
	if !c.Valid {
		c.Warnings = append(c.Warnings, "missing category name")
	}
	return c
}

func directionFromType(typeCell string) Direction {
	s := strings.ToLower(typeCell)
	for _, token := range incomeTypeTokens {
		if strings.Contains(s, token) {
			return Income
		}
	}
	return Expense
}

func sideFromType(typeCell string) Side {
	if side, ok := buySellTokens[strings.ToLower(strings.TrimSpace(typeCell))]; ok {
		return side
	}
	return Buy
}

func categoryDirection(d Direction) catalog.CategoryType {
	if d == Income {
		return catalog.CategoryIncome
	}
	return catalog.CategoryExpense
}
