package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/lnstable/internal/domain"
	"github.com/iho/lnstable/internal/usecase"
)

var (
	_ usecase.LedgerStore    = (*Store)(nil)
	_ usecase.UserRepository = (*Store)(nil)
)

// Store is a single-file ledger for small deployments. Amounts are kept as
// decimal strings. The pool holds one connection, so every transaction runs
// alone and read-modify-write updates of a balance are serialized.
type Store struct {
	db     *sql.DB
	logger zerolog.Logger
	now    func() time.Time
}

// Open opens (creating if needed) the database at path and applies the schema.
// Use ":memory:" for a throwaway database.
func Open(ctx context.Context, path string, logger zerolog.Logger) (*Store, error) {
	if path == "" {
		return nil, errors.New("sqlite path cannot be empty")
	}

	dsn := path
	if path != ":memory:" {
		dsn = "file:" + path + "?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000&_txlock=immediate"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("unable to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("unable to initialize schema: %w", err)
	}

	logger.Info().Str("file", path).Msg("sqlite ledger opened")

	return &Store{
		db:     db,
		logger: logger.With().Str("component", "sqlite_store").Logger(),
		now:    func() time.Time { return time.Now().UTC() },
	}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) GetBalance(ctx context.Context, username string, currency domain.Currency) (decimal.Decimal, error) {
	var amount decimal.Decimal
	err := s.db.QueryRowContext(ctx,
		`SELECT balance FROM balances WHERE username = ? AND currency = ?`,
		username, currency.String(),
	).Scan(&amount)
	if errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("get balance %s/%s: %w", username, currency, err)
	}
	return amount, nil
}

func (s *Store) EnsureBalance(ctx context.Context, username string, currency domain.Currency) error {
	now := s.now()
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO balances (username, currency, balance, created_at, updated_at) VALUES (?, ?, '0', ?, ?)`,
		username, currency.String(), now, now,
	)
	if err != nil {
		return fmt.Errorf("ensure balance %s/%s: %w", username, currency, err)
	}
	return nil
}

func (s *Store) ListBalances(ctx context.Context, username string) ([]*domain.Balance, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT currency, balance, created_at, updated_at FROM balances WHERE username = ? ORDER BY currency`,
		username,
	)
	if err != nil {
		return nil, fmt.Errorf("list balances %s: %w", username, err)
	}
	defer rows.Close()

	var balances []*domain.Balance
	for rows.Next() {
		b := &domain.Balance{Username: username}
		var currency string
		if err := rows.Scan(&currency, &b.Amount, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		b.Currency = domain.Currency(currency)
		balances = append(balances, b)
	}
	return balances, rows.Err()
}

func (s *Store) AdjustBalance(ctx context.Context, username string, currency domain.Currency, delta decimal.Decimal) (decimal.Decimal, error) {
	var next decimal.Decimal
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		next, err = s.adjust(ctx, tx, domain.BalanceKey{Username: username, Currency: currency}, delta)
		return err
	})
	return next, err
}

func (s *Store) adjust(ctx context.Context, tx *sql.Tx, key domain.BalanceKey, delta decimal.Decimal) (decimal.Decimal, error) {
	var current decimal.Decimal
	err := tx.QueryRowContext(ctx,
		`SELECT balance FROM balances WHERE username = ? AND currency = ?`,
		key.Username, key.Currency.String(),
	).Scan(&current)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, fmt.Errorf("read balance %s: %w", key, err)
	}

	next := current.Add(delta)
	if next.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: %s holds %s, cannot absorb %s", domain.ErrInsufficientFunds, key, current, delta)
	}

	now := s.now()
	_, err = tx.ExecContext(ctx,
		`INSERT INTO balances (username, currency, balance, created_at, updated_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (username, currency) DO UPDATE SET balance = excluded.balance, updated_at = excluded.updated_at`,
		key.Username, key.Currency.String(), next.String(), now, now,
	)
	if err != nil {
		return decimal.Zero, fmt.Errorf("write balance %s: %w", key, err)
	}
	return next, nil
}

func (s *Store) RecordTransaction(ctx context.Context, tx *domain.Transaction) (string, error) {
	if err := tx.Validate(); err != nil {
		return "", err
	}
	if err := insertTransaction(ctx, s.db, tx); err != nil {
		return "", err
	}
	return tx.ID, nil
}

// Apply commits batch in one transaction.
func (s *Store) Apply(ctx context.Context, batch domain.LedgerBatch) error {
	for _, tx := range batch.Transactions {
		if err := tx.Validate(); err != nil {
			return err
		}
	}

	adjustments := append([]domain.Adjustment(nil), batch.Adjustments...)
	sort.SliceStable(adjustments, func(i, j int) bool { return adjustments[i].Key.Less(adjustments[j].Key) })

	return s.withTx(ctx, func(sqlTx *sql.Tx) error {
		for _, adj := range adjustments {
			if _, err := s.adjust(ctx, sqlTx, adj.Key, adj.Delta); err != nil {
				return err
			}
		}
		for _, tx := range batch.Transactions {
			if err := insertTransaction(ctx, sqlTx, tx); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) GetTransaction(ctx context.Context, username, txid string) (*domain.Transaction, error) {
	row := s.db.QueryRowContext(ctx, selectTransactions+` WHERE username = ? AND id = ?`, username, txid)
	tx, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrTransactionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get transaction %s: %w", txid, err)
	}
	return tx, nil
}

func (s *Store) ListTransactions(ctx context.Context, username string, offset, limit int) ([]*domain.Transaction, error) {
	return s.queryTransactions(ctx,
		selectTransactions+` WHERE username = ? ORDER BY created_at, id LIMIT ? OFFSET ?`,
		username, limit, offset,
	)
}

func (s *Store) ListAllTransactions(ctx context.Context, username string) ([]*domain.Transaction, error) {
	return s.queryTransactions(ctx, selectTransactions+` WHERE username = ? ORDER BY created_at, id`, username)
}

func (s *Store) Create(ctx context.Context, user *domain.User) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (username, password_hash, created_at) VALUES (?, ?, ?)`,
		user.Username, user.HashedPassword, user.CreatedAt,
	)
	if isConstraint(err, sqlite3.ErrConstraintPrimaryKey) || isConstraint(err, sqlite3.ErrConstraintUnique) {
		return domain.ErrUserExists
	}
	if err != nil {
		return fmt.Errorf("create user %s: %w", user.Username, err)
	}
	return nil
}

func (s *Store) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	user := &domain.User{}
	err := s.db.QueryRowContext(ctx,
		`SELECT username, password_hash, created_at FROM users WHERE username = ?`, username,
	).Scan(&user.Username, &user.HashedPassword, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user %s: %w", username, err)
	}
	return user, nil
}

func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			s.logger.Error().Err(rbErr).Msg("rollback failed")
		}
		return err
	}

	return tx.Commit()
}

const selectTransactions = `SELECT id, username, destination, description, currency, status, kind, value, fee, created_at, updated_at FROM transactions`

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func insertTransaction(ctx context.Context, db execer, tx *domain.Transaction) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO transactions (id, username, destination, description, currency, status, kind, value, fee, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.ID, tx.Username, tx.Destination, tx.Description, tx.Currency.String(),
		string(tx.Status), string(tx.Kind), tx.Value.String(), tx.Fee.String(), tx.CreatedAt, tx.UpdatedAt,
	)
	if isConstraint(err, sqlite3.ErrConstraintPrimaryKey) {
		return fmt.Errorf("transaction %s already recorded: %w", tx.ID, err)
	}
	if err != nil {
		return fmt.Errorf("insert transaction %s: %w", tx.ID, err)
	}
	return nil
}

func (s *Store) queryTransactions(ctx context.Context, query string, args ...any) ([]*domain.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	txs := []*domain.Transaction{}
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

func scanTransaction(row rowScanner) (*domain.Transaction, error) {
	var (
		tx                     domain.Transaction
		currency, status, kind string
	)
	err := row.Scan(&tx.ID, &tx.Username, &tx.Destination, &tx.Description, &currency, &status, &kind,
		&tx.Value, &tx.Fee, &tx.CreatedAt, &tx.UpdatedAt)
	if err != nil {
		return nil, err
	}
	tx.Currency = domain.Currency(currency)
	tx.Status = domain.TransactionStatus(status)
	tx.Kind = domain.TransactionKind(kind)
	return &tx, nil
}

func isConstraint(err error, code sqlite3.ErrNoExtended) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == code
}
