package money

import (
	"fmt"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/shopspring/decimal"
)

// StatementGenerator produces realistic raw bank-statement cells for import
// tests: localized amount strings, day-first dates and merchant noise.
type StatementGenerator struct {
	faker *gofakeit.Faker
}

// NewStatementGenerator creates a generator with a fixed seed so generated
// fixtures are reproducible across runs.
func NewStatementGenerator(seed int64) *StatementGenerator {
	return &StatementGenerator{faker: gofakeit.New(seed)}
}

// Amount generates a Money value within a minor-unit range.
func (g *StatementGenerator) Amount(currency string, minCents, maxCents int64) *Money {
	if minCents > maxCents {
		minCents, maxCents = maxCents, minCents
	}
	return New(int64(g.faker.Number(int(minCents), int(maxCents))), currency)
}

// EuropeanCell renders an amount the way Italian statements print it:
// period thousands groups, comma decimal separator.
func (g *StatementGenerator) EuropeanCell(m *Money) string {
	plain := m.ToDecimal().StringFixed(2)
	neg := strings.HasPrefix(plain, "-")
	plain = strings.TrimPrefix(plain, "-")

	parts := strings.SplitN(plain, ".", 2)
	whole := parts[0]
	var grouped []string
	for len(whole) > 3 {
		grouped = append([]string{whole[len(whole)-3:]}, grouped...)
		whole = whole[:len(whole)-3]
	}
	grouped = append([]string{whole}, grouped...)

	out := strings.Join(grouped, ".") + "," + parts[1]
	if neg {
		out = "-" + out
	}
	return out
}

// AmericanCell renders an amount with comma thousands groups and a period
// decimal separator.
func (g *StatementGenerator) AmericanCell(m *Money) string {
	plain := m.ToDecimal().StringFixed(2)
	neg := strings.HasPrefix(plain, "-")
	plain = strings.TrimPrefix(plain, "-")

	parts := strings.SplitN(plain, ".", 2)
	whole := parts[0]
	var grouped []string
	for len(whole) > 3 {
		grouped = append([]string{whole[len(whole)-3:]}, grouped...)
		whole = whole[:len(whole)-3]
	}
	grouped = append([]string{whole}, grouped...)

	out := strings.Join(grouped, ",") + "." + parts[1]
	if neg {
		out = "-" + out
	}
	return out
}

// DateCell renders a date day-first, the dominant format in the statements
// this engine ingests.
func (g *StatementGenerator) DateCell(t time.Time) string {
	return t.Format("02/01/2006")
}

// RandomDate picks a date within the last year.
func (g *StatementGenerator) RandomDate() time.Time {
	now := time.Now()
	return g.faker.DateRange(now.AddDate(-1, 0, 0), now)
}

// Merchant generates a merchant description with the uppercase noise real
// card processors add.
func (g *StatementGenerator) Merchant() string {
	name := strings.ToUpper(g.faker.Company())
	city := strings.ToUpper(g.faker.City())
	return fmt.Sprintf("%s  %s   %s", name, city, g.faker.DigitN(6))
}

// Ticker generates a plausible instrument ticker.
func (g *StatementGenerator) Ticker() string {
	return strings.ToUpper(g.faker.LetterN(4))
}

// TransactionRow generates one Italian-style statement row keyed by the
// given column names.
func (g *StatementGenerator) TransactionRow(dateCol, descCol, amountCol string) map[string]string {
	amount := g.Amount(EUR, 100, 500000)
	if g.faker.Bool() {
		amount = amount.Negate()
	}
	return map[string]string{
		dateCol:   g.DateCell(g.RandomDate()),
		descCol:   g.Merchant(),
		amountCol: g.EuropeanCell(amount),
	}
}

// TradeRow generates one brokerage-trade row keyed by the given column names.
func (g *StatementGenerator) TradeRow(tickerCol, dateCol, typeCol, qtyCol, priceCol string) map[string]string {
	side := "acquisto"
	if g.faker.Bool() {
		side = "vendita"
	}
	qty := decimal.NewFromInt(int64(g.faker.Number(1, 200)))
	price := g.Amount(EUR, 500, 100000)
	return map[string]string{
		tickerCol: g.Ticker(),
		dateCol:   g.DateCell(g.RandomDate()),
		typeCol:   side,
		qtyCol:    qty.String(),
		priceCol:  g.EuropeanCell(price),
	}
}
