package sniffer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify_EnglishBankHeaders(t *testing.T) {
	headers := []string{"Date", "Description", "Amount", "Category"}
	m := Classify(headers)

	assert.Equal(t, "Date", m.Transaction.Date)
	assert.Equal(t, "Description", m.Transaction.Description)
	assert.Equal(t, "Amount", m.Transaction.Amount)
	assert.Equal(t, "Category", m.Transaction.Category)
	assert.False(t, m.Transaction.DualAmount)
	assert.NotEmpty(t, m.Fingerprint)
}

func TestClassify_ItalianDualAmountHeaders(t *testing.T) {
	headers := []string{"Data", "Descrizione", "Entrata", "Uscita", "Conto"}
	m := Classify(headers)

	assert.Equal(t, "Data", m.Transaction.Date)
	assert.Equal(t, "Descrizione", m.Transaction.Description)
	assert.Equal(t, "Entrata", m.Transaction.IncomeAmount)
	assert.Equal(t, "Uscita", m.Transaction.ExpenseAmount)
	assert.Equal(t, "Conto", m.Transaction.Account)
	assert.True(t, m.Transaction.DualAmount)
}

func TestClassify_DebitCreditAreDualAmount(t *testing.T) {
	headers := []string{"Date", "Memo", "Debit", "Credit"}
	m := Classify(headers)

	assert.Equal(t, "Credit", m.Transaction.IncomeAmount)
	assert.Equal(t, "Debit", m.Transaction.ExpenseAmount)
	assert.True(t, m.Transaction.DualAmount)
}

func TestClassify_TradeHeaders(t *testing.T) {
	headers := []string{"Data", "Tipo", "Ticker", "Quantità", "Prezzo", "Controvalore", "Commissioni"}
	m := Classify(headers)

	assert.Equal(t, "Ticker", m.Trade.Ticker)
	assert.Equal(t, "Data", m.Trade.Date)
	assert.Equal(t, "Tipo", m.Trade.Type)
	assert.Equal(t, "Quantità", m.Trade.Quantity)
	assert.Equal(t, "Prezzo", m.Trade.PricePerUnit)
	assert.Equal(t, "Controvalore", m.Trade.TotalAmount)
	assert.Equal(t, "Commissioni", m.Trade.Fees)
}

func TestClassify_EntityHeaders(t *testing.T) {
	m := Classify([]string{"Nome", "Tipo", "Saldo"})

	assert.Equal(t, "Nome", m.Account.Name)
	assert.Equal(t, "Tipo", m.Account.Type)
	assert.Equal(t, "Saldo", m.Account.Balance)
	assert.Equal(t, "Nome", m.Category.Name)
	assert.Equal(t, "Tipo", m.Category.Type)
}

func TestClassify_FirstMatchWinsPerRole(t *testing.T) {
	// Two date-ish columns: the first keeps the role.
	m := Classify([]string{"Data operazione", "Data valuta", "Importo"})
	assert.Equal(t, "Data operazione", m.Transaction.Date)
	assert.Equal(t, "Importo", m.Transaction.Amount)
}

func TestClassify_Idempotent(t *testing.T) {
	headers := []string{"Data", "Descrizione", "Entrata", "Uscita", "Tipo", "Categoria"}
	first := Classify(headers)
	second := Classify(headers)
	assert.Equal(t, first, second)
}

func TestClassify_FuzzyFallbackForNearMisses(t *testing.T) {
	// No keyword matches "Amnt", but the fuzzy pass still suggests it.
	m := Classify([]string{"Dt", "Desc", "Amnt"})
	assert.Equal(t, "Amnt", m.Transaction.Amount)
	assert.Equal(t, "Desc", m.Transaction.Description)
}
