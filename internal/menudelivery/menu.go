// Package menudelivery manages the text menu delivery layer of the ledger.
package menudelivery

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/errorspkg"
	"github.com/go-petr/pet-ledger/pkg/validatepkg"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Service provides service layer interface needed by menu delivery layer.
//
//go:generate mockgen -source menu.go -destination menu_mock.go -package menudelivery
type Service interface {
	AddClient(ctx context.Context, c domain.Client) (domain.Client, error)
	AddAccount(ctx context.Context, taxID string) (domain.Account, error)
	Deposit(ctx context.Context, taxID string, number int32, amount decimal.Decimal) (domain.Record, error)
	Withdraw(ctx context.Context, taxID string, number int32, amount decimal.Decimal) (domain.Record, error)
	Statement(number int32, filter domain.StatementFilter) (iter.Seq[domain.Record], error)
	Accounts() []domain.Account
}

const menu = `
	[d]  Deposit
	[s]  Withdraw
	[e]  Statement
	[au] Add client
	[ac] Add account
	[la] List accounts
	[q]  Quit

	=> `

// BirthDateLayout is the accepted birth date format, DD/MM/YYYY.
const BirthDateLayout = "02/01/2006"

const statementWidth = 50

var (
	errInvalidOption = errors.New("invalid option")
	nonDigits        = regexp.MustCompile(`\D`)
)

// Handler facilitates menu delivery layer logic.
type Handler struct {
	service  Service
	in       *bufio.Scanner
	out      io.Writer
	validate *validator.Validate
}

// NewHandler returns menu handler reading commands from in and writing to out.
func NewHandler(s Service, in io.Reader, out io.Writer) *Handler {
	return &Handler{
		service:  s,
		in:       bufio.NewScanner(in),
		out:      out,
		validate: validatepkg.New(),
	}
}

// Run serves the menu until the user quits, the input ends or ctx is done.
func (h *Handler) Run(ctx context.Context) error {
	l := zerolog.Ctx(ctx)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		option, err := h.ask(menu)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		if option == "q" {
			return nil
		}

		err = h.dispatch(ctx, option)

		switch {
		case err == nil:
		case errors.Is(err, io.EOF):
			return nil
		case errors.Is(err, errorspkg.ErrInternal):
			l.Error().Err(err).Str("option", option).Send()
			h.printf("Error: %v\n", errorspkg.ErrInternal)
		default:
			l.Debug().Err(err).Str("option", option).Send()
			h.printf("Error: %s\n", validatepkg.Message(err))
		}
	}
}

func (h *Handler) dispatch(ctx context.Context, option string) error {
	switch option {
	case "d":
		return h.deposit(ctx)
	case "s":
		return h.withdraw(ctx)
	case "e":
		return h.statement()
	case "au":
		return h.addClient(ctx)
	case "ac":
		return h.addAccount(ctx)
	case "la":
		h.listAccounts()
		return nil
	}

	return errInvalidOption
}

type transactionForm struct {
	TaxID   string `label:"Tax ID" validate:"required,numeric,len=11"`
	Account string `label:"Account number" validate:"required,number"`
	Amount  string `label:"Amount" validate:"required,decimal"`
}

func (h *Handler) readTransaction(amountPrompt string) (string, int32, decimal.Decimal, error) {
	var (
		f   transactionForm
		err error
	)

	if f.TaxID, err = h.ask("Tax ID: "); err != nil {
		return "", 0, decimal.Zero, err
	}
	f.TaxID = normalizeTaxID(f.TaxID)

	if f.Account, err = h.ask("Account number: "); err != nil {
		return "", 0, decimal.Zero, err
	}

	if f.Amount, err = h.ask(amountPrompt); err != nil {
		return "", 0, decimal.Zero, err
	}

	if err := h.validate.Struct(f); err != nil {
		return "", 0, decimal.Zero, err
	}

	number, err := parseAccountNumber(f.Account)
	if err != nil {
		return "", 0, decimal.Zero, err
	}

	return f.TaxID, number, decimal.RequireFromString(f.Amount), nil
}

func (h *Handler) deposit(ctx context.Context) error {
	taxID, number, amount, err := h.readTransaction("Deposit amount: R$ ")
	if err != nil {
		return err
	}

	if _, err := h.service.Deposit(ctx, taxID, number, amount); err != nil {
		return err
	}

	h.printf("R$ %s deposited successfully!\n", amount.StringFixed(2))

	return nil
}

func (h *Handler) withdraw(ctx context.Context) error {
	taxID, number, amount, err := h.readTransaction("Withdrawal amount: R$ ")
	if err != nil {
		return err
	}

	if _, err := h.service.Withdraw(ctx, taxID, number, amount); err != nil {
		return err
	}

	h.printf("R$ %s withdrawn successfully!\n", amount.StringFixed(2))

	return nil
}

type statementForm struct {
	Account string `label:"Account number" validate:"required,number"`
	Filter  string `label:"Filter" validate:"omitempty,oneof=a d w"`
}

var filters = map[string]domain.StatementFilter{
	"":  domain.FilterAll,
	"a": domain.FilterAll,
	"d": domain.FilterDeposits,
	"w": domain.FilterWithdrawals,
}

func (h *Handler) statement() error {
	var (
		f   statementForm
		err error
	)

	if f.Account, err = h.ask("Account number: "); err != nil {
		return err
	}

	if f.Filter, err = h.ask("Show [a]ll, [d]eposits or [w]ithdrawals (default a): "); err != nil {
		return err
	}
	f.Filter = strings.ToLower(f.Filter)

	if err := h.validate.Struct(f); err != nil {
		return err
	}

	number, err := parseAccountNumber(f.Account)
	if err != nil {
		return err
	}

	records, err := h.service.Statement(number, filters[f.Filter])
	if err != nil {
		return err
	}

	h.printf("\n%s\n", center("STATEMENT", statementWidth, '-'))

	empty := true
	for r := range records {
		empty = false
		h.printf("%s\n", r)
	}

	if empty {
		h.printf("No transactions.\n")
	}

	h.printf("%s\n", strings.Repeat("-", statementWidth))

	return nil
}

type clientForm struct {
	TaxID     string `label:"Tax ID" validate:"required,numeric,len=11"`
	Name      string `label:"Name" validate:"required"`
	BirthDate string `label:"Birth date" validate:"required,datetime=02/01/2006"`
	Address   string `label:"Address" validate:"required"`
}

func (h *Handler) addClient(ctx context.Context) error {
	var (
		f   clientForm
		err error
	)

	if f.TaxID, err = h.ask("Tax ID: "); err != nil {
		return err
	}
	f.TaxID = normalizeTaxID(f.TaxID)

	if f.Name, err = h.ask("Name: "); err != nil {
		return err
	}

	if f.BirthDate, err = h.ask("Birth date (DD/MM/YYYY): "); err != nil {
		return err
	}

	if f.Address, err = h.ask("Address: "); err != nil {
		return err
	}

	if err := h.validate.Struct(f); err != nil {
		return err
	}

	birthDate, err := time.Parse(BirthDateLayout, f.BirthDate)
	if err != nil {
		return err
	}

	_, err = h.service.AddClient(ctx, domain.Client{
		TaxID:     f.TaxID,
		Name:      f.Name,
		BirthDate: birthDate,
		Address:   f.Address,
	})
	if err != nil {
		return err
	}

	h.printf("Client added successfully!\n")

	return nil
}

type accountForm struct {
	TaxID string `label:"Tax ID" validate:"required,numeric,len=11"`
}

func (h *Handler) addAccount(ctx context.Context) error {
	var (
		f   accountForm
		err error
	)

	if f.TaxID, err = h.ask("Tax ID: "); err != nil {
		return err
	}
	f.TaxID = normalizeTaxID(f.TaxID)

	if err := h.validate.Struct(f); err != nil {
		return err
	}

	acc, err := h.service.AddAccount(ctx, f.TaxID)
	if err != nil {
		return err
	}

	h.printf("Account %s/%d opened successfully!\n", acc.Branch, acc.Number)

	return nil
}

func (h *Handler) listAccounts() {
	accounts := h.service.Accounts()
	if len(accounts) == 0 {
		h.printf("No accounts.\n")
		return
	}

	for _, a := range accounts {
		h.printf("Branch: %s\tAccount: %d\tHolder: %s\tBalance: R$ %s\n",
			a.Branch, a.Number, a.Owner, a.Balance.StringFixed(2))
	}
}

// ask prints prompt and returns the next trimmed input line.
func (h *Handler) ask(prompt string) (string, error) {
	h.printf("%s", prompt)

	if !h.in.Scan() {
		if err := h.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}

	return strings.TrimSpace(h.in.Text()), nil
}

func (h *Handler) printf(format string, args ...any) {
	fmt.Fprintf(h.out, format, args...)
}

func normalizeTaxID(s string) string {
	return nonDigits.ReplaceAllString(s, "")
}

func parseAccountNumber(s string) (int32, error) {
	n, err := strconv.ParseInt(s, 10, 32)
	if err != nil || n < 1 {
		return 0, domain.ErrAccountNotFound
	}

	return int32(n), nil
}

func center(s string, width int, fill rune) string {
	pad := width - len(s)
	if pad <= 0 {
		return s
	}

	left := pad / 2
	f := string(fill)

	return strings.Repeat(f, left) + s + strings.Repeat(f, pad-left)
}
