package materializer

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soldibase/soldibase/internal/domain/import/catalog"
	"github.com/soldibase/soldibase/internal/domain/import/resolver"
	"github.com/soldibase/soldibase/internal/domain/import/sniffer"
)

var (
	accountID  = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	salaryID   = uuid.MustParse("22222222-2222-2222-2222-222222222222")
	expensesID = uuid.MustParse("33333333-3333-3333-3333-333333333333")
)

func testMaterializer() *Materializer {
	cat := &catalog.Catalog{
		Accounts: []catalog.Account{
			{ID: accountID, Name: "Main", Type: catalog.AccountChecking},
		},
		Categories: []catalog.Category{
			{ID: salaryID, Name: "Salary", Type: catalog.CategoryIncome},
			{ID: expensesID, Name: "Everyday", Type: catalog.CategoryExpense},
		},
	}
	return New(resolver.New(cat, uuid.Nil))
}

func singleMapping() sniffer.TransactionMapping {
	return sniffer.TransactionMapping{
		Date:        "date",
		Description: "description",
		Amount:      "amount",
	}
}

func dualMapping() sniffer.TransactionMapping {
	return sniffer.TransactionMapping{
		Date:          "data",
		Description:   "descrizione",
		IncomeAmount:  "entrata",
		ExpenseAmount: "uscita",
		DualAmount:    true,
	}
}

func TestTransaction_SingleAmountSignInference(t *testing.T) {
	m := testMaterializer()

	t.Run("negative amount is an expense", func(t *testing.T) {
		c := m.Transaction(map[string]string{
			"date": "01/02/2024", "description": "Coffee", "amount": "-25,50",
		}, singleMapping())

		require.True(t, c.Valid)
		assert.Equal(t, Expense, c.Direction)
		assert.True(t, c.Amount.Equal(decimal.RequireFromString("25.5")), "got %s", c.Amount)
		assert.Equal(t, time.Date(2024, time.February, 1, 12, 0, 0, 0, time.UTC), c.Date)
		assert.Equal(t, accountID, c.AccountID)
		require.NotNil(t, c.CategoryID)
		assert.Equal(t, expensesID, *c.CategoryID)
	})

	t.Run("positive amount is income", func(t *testing.T) {
		c := m.Transaction(map[string]string{
			"date": "02/02/2024", "description": "Salary", "amount": "1000,00",
		}, singleMapping())

		require.True(t, c.Valid)
		assert.Equal(t, Income, c.Direction)
		assert.True(t, c.Amount.Equal(decimal.NewFromInt(1000)))
		require.NotNil(t, c.CategoryID)
		assert.Equal(t, salaryID, *c.CategoryID)
	})

	t.Run("explicit type column wins over sign", func(t *testing.T) {
		mapping := singleMapping()
		mapping.Type = "tipo"
		c := m.Transaction(map[string]string{
			"date": "02/02/2024", "description": "Rimborso", "amount": "50,00", "tipo": "Entrata",
		}, mapping)

		require.True(t, c.Valid)
		assert.Equal(t, Income, c.Direction)

		c = m.Transaction(map[string]string{
			"date": "02/02/2024", "description": "Affitto", "amount": "800,00", "tipo": "Uscita",
		}, mapping)
		assert.Equal(t, Expense, c.Direction)
	})

	t.Run("zero amount is invalid", func(t *testing.T) {
		c := m.Transaction(map[string]string{
			"date": "02/02/2024", "description": "Nothing", "amount": "0",
		}, singleMapping())
		assert.False(t, c.Valid)
	})

	t.Run("garbage amount degrades to zero with warning", func(t *testing.T) {
		c := m.Transaction(map[string]string{
			"date": "02/02/2024", "description": "Odd", "amount": "n/a",
		}, singleMapping())
		assert.False(t, c.Valid)
		assert.NotEmpty(t, c.Warnings)
	})
}

func TestTransaction_DualAmountPrecedence(t *testing.T) {
	m := testMaterializer()

	t.Run("income column wins", func(t *testing.T) {
		c := m.Transaction(map[string]string{
			"data": "05/01/2024", "descrizione": "Stipendio", "entrata": "50", "uscita": "0",
		}, dualMapping())

		require.True(t, c.Valid)
		assert.Equal(t, Income, c.Direction)
		assert.True(t, c.Amount.Equal(decimal.NewFromInt(50)))
	})

	t.Run("expense column when income empty", func(t *testing.T) {
		c := m.Transaction(map[string]string{
			"data": "06/01/2024", "descrizione": "Caffè", "entrata": "", "uscita": "2,50",
		}, dualMapping())

		require.True(t, c.Valid)
		assert.Equal(t, Expense, c.Direction)
		assert.True(t, c.Amount.Equal(decimal.RequireFromString("2.5")))
	})

	t.Run("both zero contributes nothing", func(t *testing.T) {
		c := m.Transaction(map[string]string{
			"data": "06/01/2024", "descrizione": "Vuoto", "entrata": "0", "uscita": "0",
		}, dualMapping())
		assert.False(t, c.Valid)
	})
}

func TestTransaction_AccountHardFail(t *testing.T) {
	m := testMaterializer()
	mapping := singleMapping()
	mapping.Account = "account"

	c := m.Transaction(map[string]string{
		"date": "01/02/2024", "description": "Coffee", "amount": "-25,50", "account": "Nonexistent",
	}, mapping)

	assert.False(t, c.Valid, "unresolvable explicit account must invalidate the row")
	assert.NotEmpty(t, c.Warnings)

	c = m.Transaction(map[string]string{
		"date": "01/02/2024", "description": "Coffee", "amount": "-25,50", "account": "main",
	}, mapping)
	require.True(t, c.Valid)
	assert.Equal(t, accountID, c.AccountID)
}

func TestTrade(t *testing.T) {
	m := testMaterializer()
	mapping := sniffer.TradeMapping{
		Ticker: "ticker", Date: "data", Type: "tipo",
		Quantity: "quantita", PricePerUnit: "prezzo", Fees: "commissioni",
	}

	t.Run("buy with computed total", func(t *testing.T) {
		c := m.Trade(map[string]string{
			"ticker": "vwce", "data": "10/03/2024", "tipo": "Acquisto",
			"quantita": "10", "prezzo": "105,20", "commissioni": "1,50",
		}, mapping)

		require.True(t, c.Valid)
		assert.Equal(t, "VWCE", c.Ticker)
		assert.Equal(t, Buy, c.Side)
		assert.True(t, c.TotalAmount.Equal(decimal.RequireFromString("1052")), "got %s", c.TotalAmount)
		assert.True(t, c.Fees.Equal(decimal.RequireFromString("1.5")))
	})

	t.Run("sell tokens", func(t *testing.T) {
		for _, token := range []string{"sell", "Vendita", "vend", "s", "V"} {
			c := m.Trade(map[string]string{
				"ticker": "AAPL", "data": "10/03/2024", "tipo": token,
				"quantita": "1", "prezzo": "100",
			}, mapping)
			assert.Equal(t, Sell, c.Side, "token %q", token)
		}
	})

	t.Run("unknown side defaults to buy", func(t *testing.T) {
		c := m.Trade(map[string]string{
			"ticker": "AAPL", "data": "10/03/2024", "tipo": "???",
			"quantita": "1", "prezzo": "100",
		}, mapping)
		assert.Equal(t, Buy, c.Side)
	})

	t.Run("supplied total wins over computed", func(t *testing.T) {
		withTotal := mapping
		withTotal.TotalAmount = "controvalore"
		c := m.Trade(map[string]string{
			"ticker": "VWCE", "data": "10/03/2024", "tipo": "b",
			"quantita": "10", "prezzo": "105,20", "controvalore": "1.053,70",
		}, withTotal)
		assert.True(t, c.TotalAmount.Equal(decimal.RequireFromString("1053.7")), "got %s", c.TotalAmount)
	})

	t.Run("missing ticker invalid", func(t *testing.T) {
		c := m.Trade(map[string]string{
			"data": "10/03/2024", "tipo": "buy", "quantita": "10", "prezzo": "100",
		}, mapping)
		assert.False(t, c.Valid)
	})

	t.Run("zero quantity invalid", func(t *testing.T) {
		c := m.Trade(map[string]string{
			"ticker": "VWCE", "data": "10/03/2024", "tipo": "buy",
			"quantita": "0", "prezzo": "100",
		}, mapping)
		assert.False(t, c.Valid)
	})
}

func TestAccountAndCategoryRows(t *testing.T) {
	m := testMaterializer()

	t.Run("account with savings keyword", func(t *testing.T) {
		c := m.Account(map[string]string{
			"nome": "Libretto", "tipo": "Risparmio", "saldo": "1.500,00",
		}, sniffer.AccountMapping{Name: "nome", Type: "tipo", Balance: "saldo"})

		require.True(t, c.Valid)
		assert.Equal(t, catalog.AccountSavings, c.Type)
		assert.True(t, c.Balance.Equal(decimal.RequireFromString("1500")))
	})

	t.Run("account missing name invalid", func(t *testing.T) {
		c := m.Account(map[string]string{"tipo": "cash"}, sniffer.AccountMapping{Name: "nome", Type: "tipo"})
		assert.False(t, c.Valid)
	})

	t.Run("category type normalization", func(t *testing.T) {
		c := m.Category(map[string]string{
			"nome": "Stipendio", "tipo": "Entrata",
		}, sniffer.CategoryMapping{Name: "nome", Type: "tipo"})

		require.True(t, c.Valid)
		assert.Equal(t, catalog.CategoryIncome, c.Type)
	})
}
