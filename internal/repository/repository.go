package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/coachbook/coachbook/internal/store"
)

// ErrNotFound indicates the requested entity does not exist.
var ErrNotFound = errors.New("repository: not found")

// ErrDuplicateEmail indicates a user with the given email already exists.
var ErrDuplicateEmail = errors.New("repository: email already exists")

// Repository aggregates all domain-specific repositories.
type Repository struct {
	Users      *UsersRepository
	Sessions   *SessionsRepository
	Aggregates *AggregatesRepository
}

// New constructs a Repository backed by the provided store.
func New(st *store.Store) *Repository {
	return NewWithPool(st.Pool())
}

// NewWithPool allows constructing repositories directly from a pgx pool.
func NewWithPool(pool *pgxpool.Pool) *Repository {
	return &Repository{
		Users:      &UsersRepository{pool: pool},
		Sessions:   &SessionsRepository{pool: pool},
		Aggregates: &AggregatesRepository{pool: pool},
	}
}
