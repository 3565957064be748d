// Package randompkg provides functionality for generating random ledger fixtures.
package randompkg

import (
	"crypto/rand"
	"math/big"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	alphabet = "abcdefghijklmnopqrstuvwxyz"
	digits   = "0123456789"
)

// Intn is a shortcut for generating a random integer between 0 and max using crypto/rand.
func Intn(max int) int64 {
	nBig, err := rand.Int(rand.Reader, big.NewInt(int64(max)))
	if err != nil {
		panic(err)
	}

	return nBig.Int64()
}

// IntBetween generates a random integer in [min, max].
func IntBetween(min, max int) int32 {
	return int32(int64(min) + Intn(max-min+1))
}

func fromSet(set string, n int) string {
	var sb strings.Builder

	k := len(set)

	for i := 0; i < n; i++ {
		_ = sb.WriteByte(set[Intn(k)]) // The returned err is always nil.
	}

	return sb.String()
}

// String generates a random string of length n.
func String(n int) string {
	return fromSet(alphabet, n)
}

// TaxID generates a random 11 digit tax id.
func TaxID() string {
	return fromSet(digits, 11)
}

// Name generates a random client name.
func Name() string {
	return strings.ToUpper(String(1)) + String(7)
}

// BirthDate generates a random birth date between 18 and 90 years ago.
func BirthDate() time.Time {
	years := IntBetween(18, 90)
	days := IntBetween(0, 364)

	return time.Now().UTC().Truncate(24*time.Hour).AddDate(-int(years), 0, -int(days))
}

// MoneyAmountBetween generates a random amount of money between min and max rounded to cents.
func MoneyAmountBetween(min, max int64) decimal.Decimal {
	cents := min*100 + Intn(int((max-min)*100+1))
	return decimal.New(cents, -2)
}
