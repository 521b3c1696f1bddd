package sniffer

import (
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// TransactionMapping assigns ledger-transaction roles to column names.
// An empty string means the role is unset.
type TransactionMapping struct {
	Date          string
	Description   string
	Amount        string // single signed-amount column
	IncomeAmount  string
	ExpenseAmount string
	Type          string
	Account       string
	Category      string

	// DualAmount selects separate income/expense columns over one signed
	// amount column. Set when both an income and an expense column match.
	DualAmount bool
}

// TradeMapping assigns brokerage-trade roles to column names.
type TradeMapping struct {
	Ticker       string
	Date         string
	Type         string
	Quantity     string
	PricePerUnit string
	TotalAmount  string
	Fees         string
}

// AccountMapping assigns bulk account-import roles to column names.
type AccountMapping struct {
	Name    string
	Type    string
	Balance string
}

// CategoryMapping assigns bulk category-import roles to column names.
type CategoryMapping struct {
	Name string
	Type string
}

// Mappings is the classifier's proposal for every target shape of one
// upload. It is a best-effort guess, always confirmed or overridden by a
// human before commit.
type Mappings struct {
	Transaction TransactionMapping
	Trade       TradeMapping
	Account     AccountMapping
	Category    CategoryMapping
	Fingerprint string
}

// Keyword lists per semantic role, English and Italian. First match wins per
// role; later columns never overwrite an assigned role.
var roleKeywords = map[string][]string{
	"date":        {"date", "data", "giorno"},
	"description": {"description", "descrizione", "causale", "memo", "details", "payee", "merchant"},
	"income":      {"income", "entrata", "entrate", "accredito", "credit", "avere"},
	"expense":     {"expense", "uscita", "uscite", "addebito", "debit", "dare"},
	"amount":      {"amount", "importo", "valore", "value", "montante"},
	"type":        {"type", "tipo", "operazione", "operation", "segno"},
	"account":     {"account", "conto"},
	"category":    {"category", "categoria"},
	"ticker":      {"ticker", "symbol", "simbolo", "isin", "titolo"},
	"quantity":    {"quantity", "quantità", "quantita", "qty", "shares"},
	"price":       {"price", "prezzo", "unit"},
	"total":       {"total", "totale", "controvalore"},
	"fees":        {"fee", "commissione", "commissioni", "spese"},
	"name":        {"name", "nome"},
	"balance":     {"balance", "saldo"},
}

// Classify inspects the header names of one upload and proposes a column
// mapping for every target shape. The pass is purely deterministic: the same
// header list always yields the same proposal.
func Classify(headers []string) *Mappings {
	m := &Mappings{Fingerprint: Fingerprint(headers)}

	assign := func(target *string, role string, header string) {
		if *target == "" && matchesRole(header, role) {
			*target = header
		}
	}

	for _, header := range headers {
		h := strings.TrimSpace(header)
		if h == "" {
			continue
		}

		assign(&m.Transaction.Date, "date", h)
		assign(&m.Transaction.Description, "description", h)
		assign(&m.Transaction.IncomeAmount, "income", h)
		assign(&m.Transaction.ExpenseAmount, "expense", h)
		assign(&m.Transaction.Type, "type", h)
		assign(&m.Transaction.Account, "account", h)
		assign(&m.Transaction.Category, "category", h)
		// The generic amount role is only filled while still empty; income
		// and expense columns often contain "importo" too.
		assign(&m.Transaction.Amount, "amount", h)

		assign(&m.Trade.Ticker, "ticker", h)
		assign(&m.Trade.Date, "date", h)
		assign(&m.Trade.Type, "type", h)
		assign(&m.Trade.Quantity, "quantity", h)
		assign(&m.Trade.PricePerUnit, "price", h)
		assign(&m.Trade.TotalAmount, "total", h)
		assign(&m.Trade.Fees, "fees", h)

		assign(&m.Account.Name, "name", h)
		assign(&m.Account.Type, "type", h)
		assign(&m.Account.Balance, "balance", h)

		assign(&m.Category.Name, "name", h)
		assign(&m.Category.Type, "type", h)
	}

	m.Transaction.DualAmount = m.Transaction.IncomeAmount != "" && m.Transaction.ExpenseAmount != ""

	// Fuzzy fallback for the three roles a transaction import cannot do
	// without. Suggestion only: the keyword pass above always wins, and
	// ranking ties break on header order, keeping the proposal idempotent.
	if m.Transaction.Date == "" {
		m.Transaction.Date = fuzzyPick(headers, "date", "data")
	}
	if m.Transaction.Description == "" {
		m.Transaction.Description = fuzzyPick(headers, "description", "descrizione")
	}
	if m.Transaction.Amount == "" && !m.Transaction.DualAmount {
		m.Transaction.Amount = fuzzyPick(headers, "amount", "importo")
	}

	return m
}

func matchesRole(header, role string) bool {
	h := strings.ToLower(header)
	for _, kw := range roleKeywords[role] {
		if strings.Contains(h, kw) {
			return true
		}
	}
	return false
}

// fuzzyPick returns the header closest to any of the given targets, or ""
// when nothing ranks. Catches near-miss headers like "amnt" or "dat".
func fuzzyPick(headers []string, targets ...string) string {
	best := ""
	bestDistance := -1
	for _, header := range headers {
		h := strings.ToLower(strings.TrimSpace(header))
		if h == "" {
			continue
		}
		for _, target := range targets {
			d := fuzzy.RankMatchNormalizedFold(h, target)
			if d < 0 {
				d = fuzzy.RankMatchNormalizedFold(target, h)
			}
			if d < 0 {
				continue
			}
			if bestDistance < 0 || d < bestDistance {
				bestDistance = d
				best = strings.TrimSpace(header)
			}
		}
	}
	return best
}
