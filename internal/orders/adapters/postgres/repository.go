package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/KyleRui0202/acme-wines/internal/orders/domain"
	"github.com/KyleRui0202/acme-wines/internal/orders/ports"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Create(ctx context.Context, rec domain.Record) error {
	query := `
		INSERT INTO orders (id, name, email, state, zipcode, birthday, valid, validation_failure)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	var failureJSON []byte
	if len(rec.ValidationFailure) > 0 {
		var err error
		failureJSON, err = json.Marshal(rec.ValidationFailure)
		if err != nil {
			return fmt.Errorf("encode validation failure: %w", err)
		}
	}

	_, err := r.pool.Exec(ctx, query,
		rec.ID,
		rec.Name,
		rec.Email,
		rec.State,
		rec.Zipcode,
		rec.Birthday,
		rec.Valid,
		failureJSON,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ports.ErrDuplicateID
		}
		return fmt.Errorf("insert order: %w", err)
	}

	return nil
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Record, error) {
	query := `
		SELECT id, name, email, state, zipcode, birthday, valid, validation_failure, created_at, updated_at
		FROM orders
		WHERE id = $1
	`

	rec, err := scanRecord(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ports.ErrNotFound
		}
		return nil, fmt.Errorf("select order: %w", err)
	}

	return rec, nil
}

func (r *Repository) List(ctx context.Context, filter ports.ListFilter) ([]domain.Record, error) {
	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Valid != nil {
		conds = append(conds, "valid = "+arg(*filter.Valid))
	}
	// Field names come from the closed field enum, never from user input.
	for _, f := range ports.EqualsFields {
		if v, ok := filter.Equals[f]; ok {
			conds = append(conds, fmt.Sprintf("%s = %s", f, arg(v)))
		}
	}
	for _, f := range ports.ContainsFields {
		if v, ok := filter.Contains[f]; ok {
			conds = append(conds, fmt.Sprintf("%s ILIKE %s", f, arg("%"+v+"%")))
		}
	}

	query := `
		SELECT id, name, email, state, zipcode, birthday, valid, validation_failure, created_at, updated_at
		FROM orders
	`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY id ASC"
	if filter.Limit != nil {
		query += " LIMIT " + arg(*filter.Limit)
	}
	if filter.Offset != nil {
		query += " OFFSET " + arg(*filter.Offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	records := []domain.Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		records = append(records, *rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}

	return records, nil
}

func scanRecord(row pgx.Row) (*domain.Record, error) {
	var (
		rec         domain.Record
		failureJSON []byte
	)
	if err := row.Scan(
		&rec.ID,
		&rec.Name,
		&rec.Email,
		&rec.State,
		&rec.Zipcode,
		&rec.Birthday,
		&rec.Valid,
		&failureJSON,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	); err != nil {
		return nil, err
	}

	if len(failureJSON) > 0 {
		if err := json.Unmarshal(failureJSON, &rec.ValidationFailure); err != nil {
			return nil, fmt.Errorf("decode validation failure: %w", err)
		}
	}

	return &rec, nil
}
