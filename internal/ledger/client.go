package ledger

import (
	"time"

	"github.com/go-petr/pet-ledger/internal/domain"
)

// Client owns accounts and enforces the daily transactions quota across them.
type Client struct {
	info     domain.Client
	quota    int
	accounts []*Account
}

// NewClient returns a client without accounts. quota is the maximum number
// of transactions per calendar day over all the client's accounts.
func NewClient(info domain.Client, quota int) *Client {
	return &Client{info: info, quota: quota}
}

// Info returns the client personal data.
func (c *Client) Info() domain.Client { return c.info }

// TaxID returns the client identity.
func (c *Client) TaxID() string { return c.info.TaxID }

// AddAccount attaches the account to the client.
func (c *Client) AddAccount(a *Account) *Account {
	c.accounts = append(c.accounts, a)
	return a
}

// Accounts returns the client accounts in creation order.
func (c *Client) Accounts() []*Account {
	out := make([]*Account, len(c.accounts))
	copy(out, c.accounts)

	return out
}

// Account returns the owned account with the given number.
func (c *Client) Account(number int32) (*Account, error) {
	for _, a := range c.accounts {
		if a.number == number {
			return a, nil
		}
	}

	return nil, domain.ErrAccountNotFound
}

// TransactionsOn counts the client's records dated on day over all accounts.
func (c *Client) TransactionsOn(day time.Time) int {
	n := 0
	for _, a := range c.accounts {
		n += len(a.history.RecordsOn(day))
	}

	return n
}

// Execute applies tx to the account unless the daily quota is reached.
func (c *Client) Execute(a *Account, tx Transaction, now time.Time) (domain.Record, error) {
	if a.owner != c.info.TaxID {
		return domain.Record{}, domain.ErrAccountNotFound
	}

	if c.TransactionsOn(now) >= c.quota {
		return domain.Record{}, domain.ErrQuotaExceeded
	}

	return tx.ApplyTo(a, now)
}
