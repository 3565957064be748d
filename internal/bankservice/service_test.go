package bankservice

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/errorspkg"
	"github.com/go-petr/pet-ledger/pkg/randompkg"
	gomock "github.com/golang/mock/gomock"
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var today = time.Date(2024, time.March, 14, 9, 0, 0, 0, time.Local)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type fixture struct {
	clients      *MockClientRepo
	accounts     *MockAccountRepo
	transactions *MockTransactionRepo
	service      *Service

	mu        sync.Mutex
	now       time.Time
	persisted []domain.Transaction
}

func (f *fixture) clock() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.now = f.now.Add(time.Second)

	return f.now
}

func (f *fixture) setNow(t time.Time) {
	f.mu.Lock()
	f.now = t
	f.mu.Unlock()
}

func (f *fixture) repos() Repos {
	return Repos{Clients: f.clients, Accounts: f.accounts, Transactions: f.transactions}
}

// newFixture returns a service whose repos accept every write.
func newFixture(t *testing.T, limits domain.Limits, opts ...Option) *fixture {
	t.Helper()

	ctrl := gomock.NewController(t)

	f := &fixture{
		clients:      NewMockClientRepo(ctrl),
		accounts:     NewMockAccountRepo(ctrl),
		transactions: NewMockTransactionRepo(ctrl),
		now:          today,
	}

	f.clients.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, c domain.Client) (domain.Client, error) { return c, nil }).
		AnyTimes()
	f.accounts.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, a domain.Account) (domain.Account, error) { return a, nil }).
		AnyTimes()
	f.transactions.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, tx domain.Transaction) (domain.Transaction, error) {
			f.mu.Lock()
			f.persisted = append(f.persisted, tx)
			f.mu.Unlock()
			return tx, nil
		}).
		AnyTimes()

	f.service = New(f.repos(), limits, append([]Option{WithClock(f.clock)}, opts...)...)

	return f
}

func randomClient() domain.Client {
	return domain.Client{
		TaxID:     randompkg.TaxID(),
		Name:      randompkg.Name(),
		BirthDate: randompkg.BirthDate(),
		Address:   randompkg.String(12),
	}
}

func seedAccount(t *testing.T, s *Service) (domain.Client, domain.Account) {
	t.Helper()

	c, err := s.AddClient(context.Background(), randomClient())
	require.NoError(t, err)

	a, err := s.AddAccount(context.Background(), c.TaxID)
	require.NoError(t, err)

	return c, a
}

func balanceOf(t *testing.T, s *Service, number int32) decimal.Decimal {
	t.Helper()

	a, err := s.Account(number)
	require.NoError(t, err)

	return a.Balance
}

func statement(t *testing.T, s *Service, number int32, filter domain.StatementFilter) []domain.Record {
	t.Helper()

	seq, err := s.Statement(number, filter)
	require.NoError(t, err)

	var out []domain.Record
	for r := range seq {
		out = append(out, r)
	}

	return out
}

func requireConsistent(t *testing.T, s *Service) {
	t.Helper()

	for _, a := range s.Accounts() {
		sum := decimal.Zero
		for _, r := range statement(t, s, a.Number, domain.FilterAll) {
			sum = sum.Add(r.Amount)
		}

		require.True(t, a.Balance.Equal(sum), "account %d balance %v != history sum %v", a.Number, a.Balance, sum)
	}
}

func TestAddClient(t *testing.T) {
	ctrl := gomock.NewController(t)
	clients := NewMockClientRepo(ctrl)
	s := New(Repos{Clients: clients}, domain.DefaultLimits())

	client := randomClient()

	clients.EXPECT().Create(gomock.Any(), gomock.Eq(client)).Times(1).Return(client, nil)

	got, err := s.AddClient(context.Background(), client)
	require.NoError(t, err)

	if diff := cmp.Diff(client, got); diff != "" {
		t.Errorf("AddClient() returned unexpected difference (-want +got):\n%s", diff)
	}

	duplicate := client
	duplicate.Name = "Someone Else"

	_, err = s.AddClient(context.Background(), duplicate)
	require.ErrorIs(t, err, domain.ErrClientAlreadyExists)

	stored, accounts, err := s.Client(client.TaxID)
	require.NoError(t, err)
	require.Equal(t, client.Name, stored.Name)
	require.Empty(t, accounts)
}

func TestAddClientPersistFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	clients := NewMockClientRepo(ctrl)
	s := New(Repos{Clients: clients}, domain.DefaultLimits())

	client := randomClient()
	clients.EXPECT().Create(gomock.Any(), gomock.Any()).Times(1).Return(domain.Client{}, errorspkg.ErrInternal)

	_, err := s.AddClient(context.Background(), client)
	require.NoError(t, err)

	require.Equal(t, []domain.Client{client}, s.Clients())
}

func TestAddAccount(t *testing.T) {
	ctrl := gomock.NewController(t)
	clients := NewMockClientRepo(ctrl)
	accounts := NewMockAccountRepo(ctrl)
	s := New(Repos{Clients: clients, Accounts: accounts}, domain.DefaultLimits())

	first, second := randomClient(), randomClient()

	clients.EXPECT().Create(gomock.Any(), gomock.Any()).Times(2).
		DoAndReturn(func(_ context.Context, c domain.Client) (domain.Client, error) { return c, nil })

	var persisted []domain.Account
	accounts.EXPECT().Create(gomock.Any(), gomock.Any()).Times(3).
		DoAndReturn(func(_ context.Context, a domain.Account) (domain.Account, error) {
			persisted = append(persisted, a)
			return a, nil
		})

	_, err := s.AddAccount(context.Background(), first.TaxID)
	require.ErrorIs(t, err, domain.ErrClientNotFound)

	for _, c := range []domain.Client{first, second} {
		_, err := s.AddClient(context.Background(), c)
		require.NoError(t, err)
	}

	var got []domain.Account
	for _, taxID := range []string{first.TaxID, second.TaxID, first.TaxID} {
		a, err := s.AddAccount(context.Background(), taxID)
		require.NoError(t, err)
		got = append(got, a)
	}

	want := []domain.Account{
		{Number: 1, Owner: first.TaxID, Branch: domain.Branch, Kind: domain.KindChecking, Balance: decimal.Zero},
		{Number: 2, Owner: second.TaxID, Branch: domain.Branch, Kind: domain.KindChecking, Balance: decimal.Zero},
		{Number: 3, Owner: first.TaxID, Branch: domain.Branch, Kind: domain.KindChecking, Balance: decimal.Zero},
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("AddAccount() returned unexpected difference (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff(want, persisted); diff != "" {
		t.Errorf("persisted accounts unexpected difference (-want +got):\n%s", diff)
	}

	// Listing groups accounts by client in registration order.
	listed := s.Accounts()
	require.Equal(t, []int32{1, 3, 2}, []int32{listed[0].Number, listed[1].Number, listed[2].Number})
}

func TestDepositAndWithdraw(t *testing.T) {
	f := newFixture(t, domain.DefaultLimits())
	ctx := context.Background()
	c, a := seedAccount(t, f.service)

	r, err := f.service.Deposit(ctx, c.TaxID, a.Number, dec("1000.00"))
	require.NoError(t, err)
	require.True(t, r.Amount.Equal(dec("1000.00")))
	require.True(t, balanceOf(t, f.service, a.Number).Equal(dec("1000.00")))
	require.Len(t, statement(t, f.service, a.Number, domain.FilterAll), 1)

	_, err = f.service.Withdraw(ctx, c.TaxID, a.Number, dec("2000.00"))
	require.ErrorIs(t, err, domain.ErrPolicyViolation)
	require.True(t, balanceOf(t, f.service, a.Number).Equal(dec("1000.00")))

	r, err = f.service.Withdraw(ctx, c.TaxID, a.Number, dec("300.00"))
	require.NoError(t, err)
	require.True(t, r.Amount.Equal(dec("-300.00")))
	require.True(t, balanceOf(t, f.service, a.Number).Equal(dec("700.00")))
	require.Len(t, statement(t, f.service, a.Number, domain.FilterAll), 2)

	// Only successful operations reach the transaction log, with signed amounts.
	require.Len(t, f.persisted, 2)
	require.True(t, f.persisted[0].Amount.Equal(dec("1000.00")))
	require.True(t, f.persisted[1].Amount.Equal(dec("-300.00")))
	require.Equal(t, c.TaxID, f.persisted[1].Owner)
	require.Equal(t, a.Number, f.persisted[1].AccountNumber)

	requireConsistent(t, f.service)
}

func TestDepositErrors(t *testing.T) {
	f := newFixture(t, domain.DefaultLimits())
	c, a := seedAccount(t, f.service)
	other, otherAccount := seedAccount(t, f.service)

	testCases := []struct {
		name    string
		taxID   string
		number  int32
		amount  string
		wantErr error
	}{
		{name: "ZeroAmount", taxID: c.TaxID, number: a.Number, amount: "0", wantErr: domain.ErrInvalidAmount},
		{name: "NegativeAmount", taxID: c.TaxID, number: a.Number, amount: "-5", wantErr: domain.ErrInvalidAmount},
		{name: "UnknownClient", taxID: "00000000000", number: a.Number, amount: "5", wantErr: domain.ErrClientNotFound},
		{name: "UnknownAccount", taxID: c.TaxID, number: 999, amount: "5", wantErr: domain.ErrAccountNotFound},
		{name: "ForeignAccount", taxID: other.TaxID, number: a.Number, amount: "5", wantErr: domain.ErrAccountNotFound},
		{name: "OwnAccountOfOther", taxID: c.TaxID, number: otherAccount.Number, amount: "5", wantErr: domain.ErrAccountNotFound},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			_, err := f.service.Deposit(context.Background(), tc.taxID, tc.number, dec(tc.amount))
			require.ErrorIs(t, err, tc.wantErr)
		})
	}

	require.Empty(t, f.persisted)
	require.True(t, balanceOf(t, f.service, a.Number).IsZero())
}

func TestWithdrawDailyCap(t *testing.T) {
	f := newFixture(t, domain.DefaultLimits())
	ctx := context.Background()
	c, a := seedAccount(t, f.service)

	_, err := f.service.Deposit(ctx, c.TaxID, a.Number, dec("1000.00"))
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := f.service.Withdraw(ctx, c.TaxID, a.Number, dec("10.00"))
		require.NoError(t, err)
	}

	_, err = f.service.Withdraw(ctx, c.TaxID, a.Number, dec("10.00"))
	require.ErrorIs(t, err, domain.ErrPolicyViolation)
	require.ErrorIs(t, err, domain.ErrWithdrawalCountLimit)
	require.True(t, balanceOf(t, f.service, a.Number).Equal(dec("970.00")))

	f.setNow(today.AddDate(0, 0, 1))

	_, err = f.service.Withdraw(ctx, c.TaxID, a.Number, dec("10.00"))
	require.NoError(t, err)
	require.True(t, balanceOf(t, f.service, a.Number).Equal(dec("960.00")))
}

func TestClientQuotaAcrossAccounts(t *testing.T) {
	f := newFixture(t, domain.DefaultLimits())
	ctx := context.Background()
	c, first := seedAccount(t, f.service)

	second, err := f.service.AddAccount(ctx, c.TaxID)
	require.NoError(t, err)

	for i := 0; i < 6; i++ {
		_, err := f.service.Deposit(ctx, c.TaxID, first.Number, dec("50"))
		require.NoError(t, err)
	}

	for i := 0; i < 2; i++ {
		_, err := f.service.Deposit(ctx, c.TaxID, second.Number, dec("50"))
		require.NoError(t, err)
	}

	for i := 0; i < 2; i++ {
		_, err := f.service.Withdraw(ctx, c.TaxID, second.Number, dec("10"))
		require.NoError(t, err)
	}

	for _, number := range []int32{first.Number, second.Number} {
		_, err := f.service.Deposit(ctx, c.TaxID, number, dec("1"))
		require.ErrorIs(t, err, domain.ErrQuotaExceeded)

		_, err = f.service.Withdraw(ctx, c.TaxID, number, dec("1"))
		require.ErrorIs(t, err, domain.ErrQuotaExceeded)
	}

	require.Len(t, f.persisted, 10)
	require.True(t, balanceOf(t, f.service, first.Number).Equal(dec("300")))
	require.True(t, balanceOf(t, f.service, second.Number).Equal(dec("80")))

	// Another client is not affected.
	other, otherAccount := seedAccount(t, f.service)
	_, err = f.service.Deposit(ctx, other.TaxID, otherAccount.Number, dec("1"))
	require.NoError(t, err)
}

func TestTransactionPersistFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	clients := NewMockClientRepo(ctrl)
	accounts := NewMockAccountRepo(ctrl)
	transactions := NewMockTransactionRepo(ctrl)

	clients.EXPECT().Create(gomock.Any(), gomock.Any()).Return(domain.Client{}, nil)
	accounts.EXPECT().Create(gomock.Any(), gomock.Any()).Return(domain.Account{}, nil)
	transactions.EXPECT().Create(gomock.Any(), gomock.Any()).Return(domain.Transaction{}, errorspkg.ErrInternal)

	s := New(Repos{Clients: clients, Accounts: accounts, Transactions: transactions}, domain.DefaultLimits())
	c, a := seedAccount(t, s)

	_, err := s.Deposit(context.Background(), c.TaxID, a.Number, dec("10"))
	require.NoError(t, err)
	require.True(t, balanceOf(t, s, a.Number).Equal(dec("10")))
}

func TestStatement(t *testing.T) {
	f := newFixture(t, domain.DefaultLimits())
	ctx := context.Background()
	c, a := seedAccount(t, f.service)

	for _, op := range []struct {
		deposit bool
		amount  string
	}{
		{true, "100"}, {false, "20"}, {true, "5.5"}, {false, "1.25"},
	} {
		var err error
		if op.deposit {
			_, err = f.service.Deposit(ctx, c.TaxID, a.Number, dec(op.amount))
		} else {
			_, err = f.service.Withdraw(ctx, c.TaxID, a.Number, dec(op.amount))
		}
		require.NoError(t, err)
	}

	amounts := func(records []domain.Record) []string {
		var out []string
		for _, r := range records {
			out = append(out, r.Amount.String())
		}
		return out
	}

	testCases := []struct {
		name   string
		filter domain.StatementFilter
		want   []string
	}{
		{name: "All", filter: domain.FilterAll, want: []string{"100", "-20", "5.5", "-1.25"}},
		{name: "Deposits", filter: domain.FilterDeposits, want: []string{"100", "5.5"}},
		{name: "Withdrawals", filter: domain.FilterWithdrawals, want: []string{"-20", "-1.25"}},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			got := amounts(statement(t, f.service, a.Number, tc.filter))
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("Statement(%v) returned unexpected difference (-want +got):\n%s", tc.filter, diff)
			}
		})
	}

	_, err := f.service.Statement(404, domain.FilterAll)
	require.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestStatementIsRecomputedOnEachIteration(t *testing.T) {
	f := newFixture(t, domain.DefaultLimits())
	ctx := context.Background()
	c, a := seedAccount(t, f.service)

	_, err := f.service.Deposit(ctx, c.TaxID, a.Number, dec("1"))
	require.NoError(t, err)

	seq, err := f.service.Statement(a.Number, domain.FilterAll)
	require.NoError(t, err)

	count := func() int {
		n := 0
		for range seq {
			n++
		}
		return n
	}

	require.Equal(t, 1, count())
	require.Equal(t, 1, count())

	_, err = f.service.Deposit(ctx, c.TaxID, a.Number, dec("2"))
	require.NoError(t, err)
	require.Equal(t, 2, count())

	// Stopping early is allowed.
	for range seq {
		break
	}
}

func restoreSnapshot() Snapshot {
	ana := domain.Client{TaxID: "11111111111", Name: "Ana", Address: "Rua A", BirthDate: time.Date(1990, 1, 2, 0, 0, 0, 0, time.UTC)}
	bia := domain.Client{TaxID: "22222222222", Name: "Bia", Address: "Rua B", BirthDate: time.Date(1985, 5, 6, 0, 0, 0, 0, time.UTC)}

	at := func(minutes int) time.Time { return today.Add(time.Duration(minutes) * time.Minute) }

	return Snapshot{
		Clients: []domain.Client{ana, bia},
		Accounts: []domain.Account{
			{Number: 1, Owner: ana.TaxID, Kind: domain.KindChecking},
			{Number: 2, Owner: bia.TaxID, Kind: domain.KindChecking},
			{Number: 5, Owner: ana.TaxID},
		},
		Transactions: []domain.Transaction{
			{Owner: ana.TaxID, AccountNumber: 1, Amount: dec("1000"), CreatedAt: at(0).AddDate(0, 0, -1)},
			{Owner: bia.TaxID, AccountNumber: 2, Amount: dec("50"), CreatedAt: at(1)},
			{Owner: ana.TaxID, AccountNumber: 1, Amount: dec("-750"), CreatedAt: at(2)},
			{Owner: ana.TaxID, AccountNumber: 5, Amount: dec("10.10"), CreatedAt: at(3)},
			{Owner: ana.TaxID, AccountNumber: 1, Amount: dec("-100"), CreatedAt: at(4)},
			// Mismatched owner: not part of any account.
			{Owner: bia.TaxID, AccountNumber: 1, Amount: dec("999"), CreatedAt: at(5)},
		},
	}
}

func TestRestore(t *testing.T) {
	// Stricter than the limits the log was recorded under.
	limits := domain.Limits{MaxWithdrawalsPerDay: 1, MaxWithdrawalAmount: dec("100"), MaxTransactionsPerDay: 2}
	f := newFixture(t, limits)
	f.setNow(today.Add(time.Hour))

	f.service.Restore(context.Background(), restoreSnapshot())

	want := map[int32]string{1: "150", 2: "50", 5: "10.1"}
	for number, balance := range want {
		require.True(t, balanceOf(t, f.service, number).Equal(dec(balance)), "account %d", number)
	}

	history := statement(t, f.service, 1, domain.FilterAll)
	require.Len(t, history, 3)
	require.True(t, history[0].CreatedAt.Equal(today.AddDate(0, 0, -1)))
	require.True(t, history[2].Amount.Equal(dec("-100")))

	requireConsistent(t, f.service)

	// The next number follows the highest persisted one.
	a, err := f.service.AddAccount(context.Background(), "22222222222")
	require.NoError(t, err)
	require.Equal(t, int32(6), a.Number)

	// Replayed records count for today's limits.
	_, err = f.service.Withdraw(context.Background(), "11111111111", 1, dec("1"))
	require.ErrorIs(t, err, domain.ErrQuotaExceeded)
}

func TestRestoreIsIdempotent(t *testing.T) {
	f := newFixture(t, domain.DefaultLimits())
	snap := restoreSnapshot()

	type state struct {
		Accounts   []domain.Account
		Histories  map[int32][]domain.Record
		NextNumber int32
	}

	capture := func() state {
		s := state{Accounts: f.service.Accounts(), Histories: map[int32][]domain.Record{}, NextNumber: f.service.nextNumber}
		for _, a := range s.Accounts {
			s.Histories[a.Number] = statement(t, f.service, a.Number, domain.FilterAll)
		}
		return s
	}

	f.service.Restore(context.Background(), snap)
	first := capture()

	f.service.Restore(context.Background(), snap)
	second := capture()

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("second Restore() produced a different state (-first +second):\n%s", diff)
	}

	require.Len(t, second.Accounts, 3)
	require.Equal(t, int32(6), second.NextNumber)
}

func TestRestoreEmpty(t *testing.T) {
	f := newFixture(t, domain.DefaultLimits())
	f.service.Restore(context.Background(), Snapshot{})

	c, a := seedAccount(t, f.service)
	require.Equal(t, int32(1), a.Number)
	require.NotEmpty(t, c.TaxID)
}

func TestLoad(t *testing.T) {
	snap := restoreSnapshot()

	testCases := []struct {
		name       string
		buildStubs func(f *fixture)
		wantErr    error
	}{
		{
			name: "OK",
			buildStubs: func(f *fixture) {
				f.clients.EXPECT().List(gomock.Any()).Times(1).Return(snap.Clients, nil)
				f.accounts.EXPECT().List(gomock.Any()).Times(1).Return(snap.Accounts, nil)
				f.transactions.EXPECT().List(gomock.Any()).Times(1).Return(snap.Transactions, nil)
			},
		},
		{
			name: "ClientsErr",
			buildStubs: func(f *fixture) {
				f.clients.EXPECT().List(gomock.Any()).Times(1).Return(nil, errorspkg.ErrInternal)
				f.accounts.EXPECT().List(gomock.Any()).Times(0)
				f.transactions.EXPECT().List(gomock.Any()).Times(0)
			},
			wantErr: errorspkg.ErrInternal,
		},
		{
			name: "TransactionsErr",
			buildStubs: func(f *fixture) {
				f.clients.EXPECT().List(gomock.Any()).Times(1).Return(snap.Clients, nil)
				f.accounts.EXPECT().List(gomock.Any()).Times(1).Return(snap.Accounts, nil)
				f.transactions.EXPECT().List(gomock.Any()).Times(1).Return(nil, errorspkg.ErrInternal)
			},
			wantErr: errorspkg.ErrInternal,
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, domain.DefaultLimits())
			tc.buildStubs(f)

			s, err := Load(context.Background(), f.repos(), domain.DefaultLimits())
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				require.Nil(t, s)
				return
			}

			require.NoError(t, err)
			require.Len(t, s.Clients(), 2)
			require.Len(t, s.Accounts(), 3)
		})
	}
}

func TestAudit(t *testing.T) {
	var ops []domain.Operation

	f := newFixture(t, domain.DefaultLimits(), WithAudit(func(_ context.Context, op domain.Operation) {
		ops = append(ops, op)
	}))

	ctx := context.Background()
	c, a := seedAccount(t, f.service)

	_, err := f.service.Deposit(ctx, c.TaxID, a.Number, dec("10"))
	require.NoError(t, err)

	_, err = f.service.Withdraw(ctx, c.TaxID, a.Number, dec("20"))
	require.ErrorIs(t, err, domain.ErrInsufficientBalance)

	_, err = f.service.Statement(a.Number, domain.FilterAll)
	require.NoError(t, err)

	require.Len(t, ops, 4)

	names := []string{ops[0].Name, ops[1].Name, ops[2].Name, ops[3].Name}
	require.Equal(t, []string{OpAddClient, OpAddAccount, OpDeposit, OpWithdraw}, names)

	require.NoError(t, ops[2].Err)
	require.Equal(t, "10", ops[2].Args["amount"])
	require.Equal(t, c.TaxID, ops[2].Args["tax_id"])
	require.NotEmpty(t, ops[2].Result)
	require.True(t, errors.Is(ops[3].Err, domain.ErrInsufficientBalance))
	require.Empty(t, ops[3].Result)
	require.NotEqual(t, ops[2].ID, ops[3].ID)
}

func TestAuditPanicDoesNotAffectOperation(t *testing.T) {
	f := newFixture(t, domain.DefaultLimits(), WithAudit(func(context.Context, domain.Operation) {
		panic("audit sink down")
	}))

	c, a := seedAccount(t, f.service)

	_, err := f.service.Deposit(context.Background(), c.TaxID, a.Number, dec("10"))
	require.NoError(t, err)
	require.True(t, balanceOf(t, f.service, a.Number).Equal(dec("10")))
}

func TestConcurrentOperations(t *testing.T) {
	limits := domain.Limits{MaxWithdrawalsPerDay: 1000, MaxWithdrawalAmount: dec("500"), MaxTransactionsPerDay: 10_000}
	f := newFixture(t, limits)
	ctx := context.Background()
	c, a := seedAccount(t, f.service)

	_, err := f.service.Deposit(ctx, c.TaxID, a.Number, dec("100"))
	require.NoError(t, err)

	const n = 200

	var (
		wg          sync.WaitGroup
		mu          sync.Mutex
		withdrawals int
	)

	wg.Add(2 * n)

	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			if _, err := f.service.Deposit(ctx, c.TaxID, a.Number, dec("1")); err != nil {
				t.Errorf("Deposit: %v", err)
			}
		}()

		go func() {
			defer wg.Done()
			_, err := f.service.Withdraw(ctx, c.TaxID, a.Number, dec("2"))
			if err == nil {
				mu.Lock()
				withdrawals++
				mu.Unlock()
				return
			}
			if !errors.Is(err, domain.ErrInsufficientBalance) {
				t.Errorf("Withdraw: %v", err)
			}
		}()
	}

	wg.Wait()

	balance := balanceOf(t, f.service, a.Number)
	want := dec("100").Add(decimal.NewFromInt(n)).Sub(decimal.NewFromInt(int64(2 * withdrawals)))
	require.True(t, balance.Equal(want), "balance = %v, want %v", balance, want)
	require.False(t, balance.IsNegative())
	requireConsistent(t, f.service)
}
