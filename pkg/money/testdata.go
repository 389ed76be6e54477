package money

import (
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/shopspring/decimal"
)

// TestDataGenerator produces realistic ledger values for property tests.
type TestDataGenerator struct {
	faker *gofakeit.Faker
}

// NewTestDataGenerator creates a generator with a random seed.
func NewTestDataGenerator() *TestDataGenerator {
	return &TestDataGenerator{faker: gofakeit.New(0)}
}

// NewTestDataGeneratorWithSeed creates a reproducible generator.
func NewTestDataGeneratorWithSeed(seed int64) *TestDataGenerator {
	return &TestDataGenerator{faker: gofakeit.New(seed)}
}

// Amount returns a whole-won amount in [min, max].
func (g *TestDataGenerator) Amount(min, max int64) int64 {
	return int64(g.faker.IntRange(int(min), int(max)))
}

// ExpenseAmount returns a typical card purchase between 1,000 and 500,000 won.
func (g *TestDataGenerator) ExpenseAmount() int64 {
	return g.Amount(1_000, 500_000)
}

// Rate returns a cashback percentage in [0, 10] with two decimals.
func (g *TestDataGenerator) Rate() decimal.Decimal {
	return decimal.New(int64(g.faker.IntRange(0, 1000)), -2)
}

// Method returns a random payment method; only credit cards carry a rate.
func (g *TestDataGenerator) Method() Method {
	types := []PaymentType{Cash, CreditCard, DebitCard, BankTransfer}
	t := types[g.faker.IntRange(0, len(types)-1)]
	if t != CreditCard {
		return Method{Type: t}
	}
	return Method{Type: t, Rate: decimal.NewNullDecimal(g.Rate())}
}

// Merchant returns a merchant name.
func (g *TestDataGenerator) Merchant() string {
	return g.faker.Company()
}

// Date returns a UTC midnight date within the last year.
func (g *TestDataGenerator) Date() time.Time {
	d := g.faker.DateRange(time.Now().AddDate(-1, 0, 0), time.Now()).UTC()
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}
