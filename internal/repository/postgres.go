// Package repository содержит реализацию доступа к данным в PostgreSQL.
package repository

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/mmeshcher/invoice-admin/internal/model"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ErrInvoiceNotFound возвращается, если счёт с указанным идентификатором не найден.
var ErrInvoiceNotFound = errors.New("invoice not found")

// PostgresRepository предоставляет доступ к хранилищу счетов в PostgreSQL.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository создаёт новый репозиторий и инициализирует схему БД через миграции.
func NewPostgresRepository(dsn string) (*PostgresRepository, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse pool config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	r := &PostgresRepository{pool: pool}

	if err := r.runMigrations(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return r, nil
}

func (r *PostgresRepository) runMigrations(ctx context.Context) error {
	db := stdlib.OpenDBFromPool(r.pool)
	defer db.Close()

	goose.SetBaseFS(migrationsFS)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}

func (r *PostgresRepository) withRetry(ctx context.Context, fn func() error) error {
	var err error
	delays := []time.Duration{1 * time.Second, 3 * time.Second, 5 * time.Second}

	for i := 0; i <= len(delays); i++ {
		err = fn()
		if err == nil {
			return nil
		}

		// Если ошибка контекста — выходим сразу
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}

		// Ретраи полезны для Serialization Failure и Deadlocks.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == pgerrcode.SerializationFailure || pgErr.Code == pgerrcode.DeadlockDetected {
				if i < len(delays) {
					time.Sleep(delays[i])
					continue
				}
			}
		}

		// Если это не pg-ошибка, но сетевая
		if isConnectionError(err) {
			if i < len(delays) {
				time.Sleep(delays[i])
				continue
			}
		}

		break
	}
	return err
}

func isConnectionError(err error) bool {
	// Упрощенная проверка на ошибки соединения
	return strings.Contains(err.Error(), "connection refused") ||
		strings.Contains(err.Error(), "broken pipe") ||
		strings.Contains(err.Error(), "connection reset by peer")
}

// Close закрывает пул соединений с БД.
func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}

// CreateInvoice сохраняет новый счёт. Дата выставления проставляется СУБД
// как текущий день и далее не меняется.
func (r *PostgresRepository) CreateInvoice(ctx context.Context, customerID string, amountCents int64, status model.InvoiceStatus) (uuid.UUID, error) {
	id := uuid.New()

	err := r.withRetry(ctx, func() error {
		_, execErr := r.pool.Exec(ctx,
			`INSERT INTO invoices (id, customer_id, amount, status) VALUES ($1, $2, $3, $4)`,
			id, customerID, amountCents, string(status),
		)
		return execErr
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert invoice: %w", err)
	}

	return id, nil
}

// UpdateInvoice меняет клиента, сумму и статус счёта. Идентификатор и дата
// выставления остаются неизменными.
func (r *PostgresRepository) UpdateInvoice(ctx context.Context, id uuid.UUID, customerID string, amountCents int64, status model.InvoiceStatus) error {
	var cmdTag pgconn.CommandTag

	err := r.withRetry(ctx, func() error {
		var execErr error
		cmdTag, execErr = r.pool.Exec(ctx,
			`UPDATE invoices SET customer_id = $2, amount = $3, status = $4 WHERE id = $1`,
			id, customerID, amountCents, string(status),
		)
		return execErr
	})
	if err != nil {
		return fmt.Errorf("update invoice: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return ErrInvoiceNotFound
	}

	return nil
}

// DeleteInvoice удаляет счёт. Удаление несуществующего счёта не является ошибкой.
func (r *PostgresRepository) DeleteInvoice(ctx context.Context, id uuid.UUID) error {
	err := r.withRetry(ctx, func() error {
		_, execErr := r.pool.Exec(ctx,
			`DELETE FROM invoices WHERE id = $1`,
			id,
		)
		return execErr
	})
	if err != nil {
		return fmt.Errorf("delete invoice: %w", err)
	}

	return nil
}

// GetInvoice возвращает счёт по идентификатору.
func (r *PostgresRepository) GetInvoice(ctx context.Context, id uuid.UUID) (*model.Invoice, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, customer_id, amount, status, date FROM invoices WHERE id = $1`,
		id,
	)

	var (
		inv    model.Invoice
		status string
	)
	err := row.Scan(&inv.ID, &inv.CustomerID, &inv.AmountCents, &status, &inv.Date)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}

	inv.Status = model.InvoiceStatus(status)

	return &inv, nil
}

// ListInvoices возвращает все счета, начиная с последних по дате выставления.
func (r *PostgresRepository) ListInvoices(ctx context.Context) ([]model.Invoice, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, customer_id, amount, status, date
		 FROM invoices
		 ORDER BY date DESC, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("select invoices: %w", err)
	}
	defer rows.Close()

	var invoices []model.Invoice
	for rows.Next() {
		var (
			inv    model.Invoice
			status string
		)
		if err := rows.Scan(&inv.ID, &inv.CustomerID, &inv.AmountCents, &status, &inv.Date); err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}

		inv.Status = model.InvoiceStatus(status)
		invoices = append(invoices, inv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return invoices, nil
}
