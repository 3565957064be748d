// Package bankservice manages the ledger store: it owns clients and their
// accounts, assigns account numbers, persists every mutation and rebuilds
// balances from the persisted transaction log at startup.
package bankservice

import (
	"context"
	"iter"
	"strconv"
	"sync"
	"time"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/internal/ledger"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Operation names reported to the audit hook.
const (
	OpAddClient  = "add_client"
	OpAddAccount = "add_account"
	OpDeposit    = "deposit"
	OpWithdraw   = "withdraw"
)

// AuditFunc is called after every mutating operation, whether it failed or not.
type AuditFunc func(ctx context.Context, op domain.Operation)

// Option configures a Service.
type Option func(*Service)

// WithClock replaces time.Now as the source of transaction timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithAudit registers the post operation hook.
func WithAudit(fn AuditFunc) Option {
	return func(s *Service) {
		s.audit = fn
	}
}

// Service facilitates ledger store logic. All state is guarded by a single
// mutex, so operations are serialized including their persistence.
type Service struct {
	repos  Repos
	limits domain.Limits
	now    func() time.Time
	audit  AuditFunc

	mu         sync.Mutex
	clients    map[string]*ledger.Client
	order      []string
	accounts   map[int32]*ledger.Account
	nextNumber int32
}

// New returns an empty service.
func New(repos Repos, limits domain.Limits, opts ...Option) *Service {
	s := &Service{
		repos:      repos,
		limits:     limits,
		now:        time.Now,
		clients:    make(map[string]*ledger.Client),
		accounts:   make(map[int32]*ledger.Account),
		nextNumber: 1,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Load returns a service rebuilt from the state persisted in repos.
func Load(ctx context.Context, repos Repos, limits domain.Limits, opts ...Option) (*Service, error) {
	snap, err := LoadSnapshot(ctx, repos)
	if err != nil {
		return nil, err
	}

	s := New(repos, limits, opts...)
	s.Restore(ctx, snap)

	return s, nil
}

type accountKey struct {
	owner  string
	number int32
}

// Restore replaces the in-memory state with the one described by snap.
// Transactions are replayed with their original timestamps and without
// policy checks, so restoring the same snapshot always yields the same
// balances and histories.
func (s *Service) Restore(ctx context.Context, snap Snapshot) {
	l := zerolog.Ctx(ctx)

	records := make(map[accountKey][]domain.Record)
	for _, t := range snap.Transactions {
		k := accountKey{owner: t.Owner, number: t.AccountNumber}
		records[k] = append(records[k], t.Record())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.clients = make(map[string]*ledger.Client, len(snap.Clients))
	s.order = s.order[:0]
	s.accounts = make(map[int32]*ledger.Account, len(snap.Accounts))

	replayed := 0

	for _, info := range snap.Clients {
		if _, ok := s.clients[info.TaxID]; ok {
			l.Warn().Str("tax_id", info.TaxID).Msg("duplicate persisted client skipped")
			continue
		}

		c := ledger.NewClient(info, s.limits.MaxTransactionsPerDay)

		for _, a := range snap.Accounts {
			if a.Owner != info.TaxID {
				continue
			}

			if _, ok := s.accounts[a.Number]; ok {
				l.Warn().Int32("account", a.Number).Msg("duplicate persisted account skipped")
				continue
			}

			recs := records[accountKey{owner: a.Owner, number: a.Number}]
			acc := ledger.RestoreAccount(a.Number, a.Owner, kindOf(l, a.Kind), s.limits, recs)

			c.AddAccount(acc)
			s.accounts[a.Number] = acc
			replayed += len(recs)
		}

		s.clients[info.TaxID] = c
		s.order = append(s.order, info.TaxID)
	}

	s.nextNumber = 1
	for _, a := range snap.Accounts {
		if a.Number >= s.nextNumber {
			s.nextNumber = a.Number + 1
		}
	}

	if skipped := len(snap.Transactions) - replayed; skipped > 0 {
		l.Warn().Int("transactions", skipped).Msg("persisted transactions without a known account skipped")
	}

	l.Info().
		Int("clients", len(s.clients)).
		Int("accounts", len(s.accounts)).
		Int("transactions", replayed).
		Int32("next_account", s.nextNumber).
		Msg("ledger restored")
}

func kindOf(l *zerolog.Logger, k domain.AccountKind) domain.AccountKind {
	switch k {
	case domain.KindChecking:
		return k
	case "":
		return domain.KindChecking
	default:
		l.Warn().Str("kind", string(k)).Msg("unknown account kind restored as checking")
		return domain.KindChecking
	}
}

// AddClient registers a new client.
func (s *Service) AddClient(ctx context.Context, c domain.Client) (domain.Client, error) {
	op := s.begin(OpAddClient, map[string]string{
		"tax_id": c.TaxID,
		"name":   c.Name,
	})

	err := s.addClient(ctx, c)

	if err == nil {
		op.Result = c.TaxID
	}
	s.finish(ctx, op, err)

	if err != nil {
		return domain.Client{}, err
	}

	return c, nil
}

func (s *Service) addClient(ctx context.Context, c domain.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.clients[c.TaxID]; ok {
		return domain.ErrClientAlreadyExists
	}

	s.clients[c.TaxID] = ledger.NewClient(c, s.limits.MaxTransactionsPerDay)
	s.order = append(s.order, c.TaxID)

	if _, err := s.repos.Clients.Create(ctx, c); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("tax_id", c.TaxID).Msg("client not durably recorded")
	}

	return nil
}

// AddAccount opens a checking account with the next account number for the client.
func (s *Service) AddAccount(ctx context.Context, taxID string) (domain.Account, error) {
	op := s.begin(OpAddAccount, map[string]string{"tax_id": taxID})

	account, err := s.addAccount(ctx, taxID)

	if err == nil {
		op.Result = strconv.Itoa(int(account.Number))
	}
	s.finish(ctx, op, err)

	return account, err
}

func (s *Service) addAccount(ctx context.Context, taxID string) (domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.clients[taxID]
	if !ok {
		return domain.Account{}, domain.ErrClientNotFound
	}

	if _, ok := s.accounts[s.nextNumber]; ok {
		return domain.Account{}, domain.ErrAccountAlreadyExists
	}

	acc := ledger.NewAccount(s.nextNumber, taxID, domain.KindChecking, s.limits)
	c.AddAccount(acc)
	s.accounts[acc.Number()] = acc
	s.nextNumber++

	account := acc.Snapshot()

	if _, err := s.repos.Accounts.Create(ctx, account); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Int32("account", account.Number).Msg("account not durably recorded")
	}

	return account, nil
}

// Deposit credits amount to the client's account.
func (s *Service) Deposit(ctx context.Context, taxID string, number int32, amount decimal.Decimal) (domain.Record, error) {
	return s.execute(ctx, OpDeposit, taxID, number, amount, func(amount decimal.Decimal) (ledger.Transaction, error) {
		return ledger.NewDeposit(amount)
	})
}

// Withdraw debits amount from the client's account.
func (s *Service) Withdraw(ctx context.Context, taxID string, number int32, amount decimal.Decimal) (domain.Record, error) {
	return s.execute(ctx, OpWithdraw, taxID, number, amount, func(amount decimal.Decimal) (ledger.Transaction, error) {
		return ledger.NewWithdrawal(amount)
	})
}

func (s *Service) execute(
	ctx context.Context, name, taxID string, number int32, amount decimal.Decimal,
	build func(decimal.Decimal) (ledger.Transaction, error),
) (domain.Record, error) {
	op := s.begin(name, map[string]string{
		"tax_id":  taxID,
		"account": strconv.Itoa(int(number)),
		"amount":  amount.String(),
	})

	r, err := s.post(ctx, taxID, number, amount, build)

	if err == nil {
		op.Result = r.String()
	}
	s.finish(ctx, op, err)

	return r, err
}

func (s *Service) post(
	ctx context.Context, taxID string, number int32, amount decimal.Decimal,
	build func(decimal.Decimal) (ledger.Transaction, error),
) (domain.Record, error) {
	tx, err := build(amount)
	if err != nil {
		return domain.Record{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.clients[taxID]
	if !ok {
		return domain.Record{}, domain.ErrClientNotFound
	}

	acc, err := c.Account(number)
	if err != nil {
		return domain.Record{}, err
	}

	r, err := c.Execute(acc, tx, s.now())
	if err != nil {
		return domain.Record{}, err
	}

	t := domain.Transaction{
		Owner:         taxID,
		AccountNumber: number,
		Amount:        r.Amount,
		CreatedAt:     r.CreatedAt,
	}

	if _, err := s.repos.Transactions.Create(ctx, t); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Int32("account", number).Msg("transaction not durably recorded")
	}

	return r, nil
}

// Statement returns the account records matching filter in insertion order.
// Each iteration reads a fresh copy of the history.
func (s *Service) Statement(number int32, filter domain.StatementFilter) (iter.Seq[domain.Record], error) {
	s.mu.Lock()
	acc, ok := s.accounts[number]
	s.mu.Unlock()

	if !ok {
		return nil, domain.ErrAccountNotFound
	}

	return func(yield func(domain.Record) bool) {
		s.mu.Lock()
		records := acc.History().All()
		s.mu.Unlock()

		for _, r := range records {
			if !filter.Match(r) {
				continue
			}

			if !yield(r) {
				return
			}
		}
	}, nil
}

// Account returns the account with the given number.
func (s *Service) Account(number int32) (domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[number]
	if !ok {
		return domain.Account{}, domain.ErrAccountNotFound
	}

	return acc.Snapshot(), nil
}

// Accounts returns every account with its balance, grouped by client in
// registration order.
func (s *Service) Accounts() []domain.Account {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Account, 0, len(s.accounts))

	for _, taxID := range s.order {
		for _, acc := range s.clients[taxID].Accounts() {
			out = append(out, acc.Snapshot())
		}
	}

	return out
}

// Client returns the client registered with taxID and its accounts.
func (s *Service) Client(taxID string) (domain.Client, []domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.clients[taxID]
	if !ok {
		return domain.Client{}, nil, domain.ErrClientNotFound
	}

	accounts := []domain.Account{}
	for _, acc := range c.Accounts() {
		accounts = append(accounts, acc.Snapshot())
	}

	return c.Info(), accounts, nil
}

// Clients returns every client in registration order.
func (s *Service) Clients() []domain.Client {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Client, 0, len(s.order))
	for _, taxID := range s.order {
		out = append(out, s.clients[taxID].Info())
	}

	return out
}

func (s *Service) begin(name string, args map[string]string) domain.Operation {
	return domain.Operation{
		ID:        uuid.New(),
		Name:      name,
		Args:      args,
		StartedAt: time.Now(),
	}
}

// finish reports op to the audit hook. A failing hook never affects the operation.
func (s *Service) finish(ctx context.Context, op domain.Operation, err error) {
	if s.audit == nil {
		return
	}

	op.Err = err
	op.Latency = time.Since(op.StartedAt)

	defer func() {
		if panicVal := recover(); panicVal != nil {
			zerolog.Ctx(ctx).Error().Str("operation", op.Name).Msgf("audit hook panic: %v", panicVal)
		}
	}()

	s.audit(ctx, op)
}
