package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"finbank/internal/users/models"
	"finbank/pkg/domain"
	"finbank/pkg/platform/sentinel"
)

// PostgresStore persists users in PostgreSQL. Pure I/O: domain rules (blank
// skips, self-only access) belong to the service.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

const userColumns = `id, email, password_hash, name, address_line1, address_line2, address_line3, town, county, postcode, phone, created_at, updated_at`

func scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(
		(*userIDScanner)(&u.ID), &u.Email, &u.PasswordHash, &u.Name,
		&u.Address.Line1, &u.Address.Line2, &u.Address.Line3,
		&u.Address.Town, &u.Address.County, &u.Address.Postcode,
		&u.Phone, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateIfEmailAvailable inserts the user; the unique index on LOWER(email)
// is the real uniqueness guarantee under concurrency.
func (s *PostgresStore) CreateIfEmailAvailable(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, email, password_hash, name, address_line1, address_line2, address_line3, town, county, postcode, phone, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := s.db.ExecContext(ctx, query,
		user.ID.String(), user.Email, user.PasswordHash, user.Name,
		user.Address.Line1, user.Address.Line2, user.Address.Line3,
		user.Address.Town, user.Address.County, user.Address.Postcode,
		user.Phone, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id domain.UserID) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := scanUser(s.db.QueryRowContext(ctx, query, id.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return user, nil
}

func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = LOWER($1)`
	user, err := scanUser(s.db.QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return user, nil
}

func (s *PostgresStore) Update(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users
		SET email = $2, name = $3, address_line1 = $4, address_line2 = $5, address_line3 = $6,
		    town = $7, county = $8, postcode = $9, phone = $10, updated_at = $11
		WHERE id = $1
	`
	res, err := s.db.ExecContext(ctx, query,
		user.ID.String(), user.Email, user.Name,
		user.Address.Line1, user.Address.Line2, user.Address.Line3,
		user.Address.Town, user.Address.County, user.Address.Postcode,
		user.Phone, user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("update user: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, id domain.UserID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id.String())
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

// userIDScanner lets a typed UserID be scanned from its text representation.
type userIDScanner domain.UserID

func (s *userIDScanner) Scan(src any) error {
	var raw string
	switch v := src.(type) {
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("unsupported user id type %T", src)
	}
	id, err := domain.ParseUserID(raw)
	if err != nil {
		return err
	}
	*s = userIDScanner(id)
	return nil
}
