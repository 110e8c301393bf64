package models

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type Registration struct {
	ID        int
	Name      string
	Phone     string
	Comment   string
	CreatedAt time.Time
}

const registrationColumns = "id, name, phone, comment, created_at"

// ListRegistrations returns every registration, newest first.
func ListRegistrations(ctx context.Context, db *sql.DB) ([]Registration, error) {
	rows, err := db.QueryContext(ctx, "SELECT "+registrationColumns+" FROM registrations ORDER BY id DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to query registrations: %w", err)
	}
	return scanRegistrations(rows)
}

func GetRegistrationsPaginated(ctx context.Context, db *sql.DB, limit, offset int) ([]Registration, error) {
	rows, err := db.QueryContext(ctx,
		"SELECT "+registrationColumns+" FROM registrations ORDER BY id DESC LIMIT ? OFFSET ?",
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query registrations: %w", err)
	}
	return scanRegistrations(rows)
}

func CountRegistrations(ctx context.Context, db *sql.DB) (int, error) {
	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM registrations").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count registrations: %w", err)
	}
	return count, nil
}

// InsertRegistration stores r and sets its ID. It reports false without an
// error when a registration with the same name and phone already exists.
func InsertRegistration(ctx context.Context, db *sql.DB, r *Registration) (bool, error) {
	result, err := db.ExecContext(ctx,
		"INSERT INTO registrations (name, phone, comment) VALUES (?, ?, ?) ON CONFLICT (name, phone) DO NOTHING",
		r.Name, r.Phone, r.Comment,
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert registration: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return false, nil
	}

	id, err := result.LastInsertId()
	if err != nil {
		return false, fmt.Errorf("failed to get last insert id: %w", err)
	}
	r.ID = int(id)
	return true, nil
}

func scanRegistrations(rows *sql.Rows) ([]Registration, error) {
	defer rows.Close()

	var registrations []Registration
	for rows.Next() {
		var r Registration
		if err := rows.Scan(&r.ID, &r.Name, &r.Phone, &r.Comment, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan registration: %w", err)
		}
		registrations = append(registrations, r)
	}
	return registrations, rows.Err()
}

// RegistrationStore adapts the package functions to a handle bound to one
// database, for callers that take the store as an interface.
type RegistrationStore struct {
	db *sql.DB
}

func NewRegistrationStore(db *sql.DB) *RegistrationStore {
	return &RegistrationStore{db: db}
}

func (s *RegistrationStore) List(ctx context.Context) ([]Registration, error) {
	return ListRegistrations(ctx, s.db)
}

func (s *RegistrationStore) Insert(ctx context.Context, r *Registration) (bool, error) {
	return InsertRegistration(ctx, s.db, r)
}

func (s *RegistrationStore) Count(ctx context.Context) (int, error) {
	return CountRegistrations(ctx, s.db)
}

func (s *RegistrationStore) Page(ctx context.Context, limit, offset int) ([]Registration, error) {
	return GetRegistrationsPaginated(ctx, s.db, limit, offset)
}
