package domain

import (
	"errors"
	"time"
)

var (
	// ErrClientAlreadyExists indicates that the client with the given tax id already exists.
	ErrClientAlreadyExists = errors.New("client already exists")
	// ErrClientNotFound indicates that the client is not registered.
	ErrClientNotFound = errors.New("client not found")
)

// Client holds the natural person data of an account owner.
type Client struct {
	TaxID     string    `json:"tax_id"`
	Name      string    `json:"name"`
	BirthDate time.Time `json:"birth_date"`
	Address   string    `json:"address"`
}
