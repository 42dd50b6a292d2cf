// Package repository содержит реализацию доступа к данным в PostgreSQL.
package repository

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/mmeshcher/receipt-loyalty-system/internal/model"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ErrUserExists возвращается при попытке создать пользователя с уже существующим логином.
var (
	ErrUserExists = errors.New("user already exists")
	// ErrUserNotFound возвращается, если пользователь не найден.
	ErrUserNotFound = errors.New("user not found")
	// ErrUnavailable возвращается при ошибке хранилища в проверке дубликатов или
	// начислении: чек нельзя ни молча принять, ни молча отклонить, вызывающая
	// сторона должна получить повторяемую ошибку.
	ErrUnavailable = errors.New("storage unavailable")
)

// PostgresRepository предоставляет доступ к хранилищу данных в PostgreSQL.
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

		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}

		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == pgerrcode.SerializationFailure || pgErr.Code == pgerrcode.DeadlockDetected {
				if i < len(delays) {
					time.Sleep(delays[i])
					continue
				}
			}
		}

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
	return strings.Contains(err.Error(), "connection refused") ||
		strings.Contains(err.Error(), "broken pipe") ||
		strings.Contains(err.Error(), "connection reset by peer")
}

// Close закрывает пул соединений с БД.
func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}

// CreateUser создаёт нового пользователя с нулевым балансом баллов.
func (r *PostgresRepository) CreateUser(ctx context.Context, login string, passwordHash []byte) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO users (login, password_hash) VALUES ($1, $2) RETURNING id`,
		login, passwordHash,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return 0, fmt.Errorf("%w: %s", ErrUserExists, login)
		}
		return 0, fmt.Errorf("create user: %w", err)
	}
	return id, nil
}

// GetUserByLogin возвращает пользователя по логину.
func (r *PostgresRepository) GetUserByLogin(ctx context.Context, login string) (*model.User, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, login, password_hash, created_at FROM users WHERE login = $1`,
		login,
	)

	var u model.User
	err := row.Scan(&u.ID, &u.Login, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	return &u, nil
}

// HasDuplicateReceipt проверяет, не был ли чек принят ранее. Дубликатом
// считается совпадение любых двух из трёх полей с уже принятым чеком:
// (номер, дата), (номер, время) или (дата, время). Совпадение одного поля
// дубликатом не считается.
func (r *PostgresRepository) HasDuplicateReceipt(ctx context.Context, orderNumber, orderDate, orderTime string) (bool, error) {
	var exists bool

	err := r.withRetry(ctx, func() error {
		return r.pool.QueryRow(ctx,
			`SELECT EXISTS (
			 	SELECT 1 FROM receipts
			 	WHERE (order_number = $1 AND order_date = $2)
			 	   OR (order_number = $1 AND order_time = $3)
			 	   OR (order_date = $2 AND order_time = $3)
			 )`,
			orderNumber, orderDate, orderTime,
		).Scan(&exists)
	})
	if err != nil {
		return false, fmt.Errorf("%w: select duplicates: %w", ErrUnavailable, err)
	}

	return exists, nil
}

// CreateReceiptAndAward атомарно сохраняет принятый чек и увеличивает баланс
// пользователя. Запись в журнал и инкремент баланса выполняются в одной
// транзакции: частичное применение недопустимо. Возвращает новый баланс.
func (r *PostgresRepository) CreateReceiptAndAward(ctx context.Context, userID int64, receipt *model.ValidatedReceipt, points int64) (int64, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: begin tx: %w", ErrUnavailable, err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO receipts (user_id, order_number, order_date, order_time, points_awarded)
		 VALUES ($1, $2, $3, $4, $5)`,
		userID, receipt.OrderNumber, receipt.OrderDate, receipt.OrderTime, points,
	)
	if err != nil {
		return 0, fmt.Errorf("%w: insert receipt: %w", ErrUnavailable, err)
	}

	var newBalance int64
	err = tx.QueryRow(ctx,
		`UPDATE users SET points_balance = points_balance + $2 WHERE id = $1 RETURNING points_balance`,
		userID, points,
	).Scan(&newBalance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrUserNotFound
		}
		return 0, fmt.Errorf("%w: increment balance: %w", ErrUnavailable, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("%w: commit tx: %w", ErrUnavailable, err)
	}

	return newBalance, nil
}

// GetBalance возвращает текущий баланс баллов пользователя.
func (r *PostgresRepository) GetBalance(ctx context.Context, userID int64) (int64, error) {
	var balance int64
	err := r.pool.QueryRow(ctx,
		`SELECT points_balance FROM users WHERE id = $1`,
		userID,
	).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrUserNotFound
		}
		return 0, fmt.Errorf("get balance: %w", err)
	}
	return balance, nil
}

// GetReceiptsByUser возвращает принятые чеки пользователя, новые первыми.
func (r *PostgresRepository) GetReceiptsByUser(ctx context.Context, userID int64) ([]model.LedgerEntry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT order_number, order_date, order_time, points_awarded, accepted_at
		 FROM receipts
		 WHERE user_id = $1
		 ORDER BY accepted_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("select receipts: %w", err)
	}
	defer rows.Close()

	var res []model.LedgerEntry
	for rows.Next() {
		var e model.LedgerEntry
		if err := rows.Scan(&e.OrderNumber, &e.OrderDate, &e.OrderTime, &e.PointsAwarded, &e.AcceptedAt); err != nil {
			return nil, fmt.Errorf("scan receipt: %w", err)
		}
		res = append(res, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return res, nil
}
