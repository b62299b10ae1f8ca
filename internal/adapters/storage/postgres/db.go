package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	_ "embed"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"pet-clinic-api/internal/apperr"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
)

//go:embed schema.sql
var schema string

// Open abre una conexión pool a Postgres usando pgx (database/sql).
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// Migrate crea las tablas si no existen. Es idempotente.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type txKey struct{}

// Store agrupa los repositorios sobre un mismo *sql.DB. Dentro de RunInTx
// todas las queries usan la transacción que viaja en el context.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) conn(ctx context.Context) querier {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return tx
	}
	return s.db
}

func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if _, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return fn(ctx)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storeErr(err)
	}
	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback()
			panic(r)
		}
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return storeErr(err)
	}
	return nil
}

// storeErr traduce errores del driver a errores tipados. Lo que no se
// reconoce sale envuelto tal cual y termina como 500.
func storeErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) || errors.Is(err, driver.ErrBadConn) {
		return apperr.Wrap(apperr.KindStoreUnavailable, "store unavailable", err)
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return apperr.Wrap(apperr.KindStoreUnavailable, "store unavailable", err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return apperr.Wrap(apperr.KindConflict, conflictMessage(pgErr.ConstraintName), err)
		case "23503":
			return apperr.Wrap(apperr.KindInvalidInput, "referenced record does not exist", err)
		}
	}
	return fmt.Errorf("postgres: %w", err)
}

// deleteErr: en un DELETE la violación de FK significa que quedan filas hijas.
func deleteErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23503" {
		return apperr.Wrap(apperr.KindConflict, "record still has dependent rows", err)
	}
	return storeErr(err)
}

func conflictMessage(constraint string) string {
	switch {
	case strings.Contains(constraint, "username"):
		return "username already taken"
	case strings.Contains(constraint, "email"):
		return "email already registered"
	default:
		return "already exists"
	}
}

// notFound convierte sql.ErrNoRows en el error de dominio.
func notFound(err, domainErr error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domainErr
	}
	return storeErr(err)
}

func mustAffect(res sql.Result, domainErr error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return storeErr(err)
	}
	if n == 0 {
		return domainErr
	}
	return nil
}

// where arma cláusulas AND con placeholders numerados.
type where struct {
	sb   strings.Builder
	args []any
}

// and agrega una condición; cada %d se reemplaza por el número del
// argumento recién agregado.
func (w *where) and(cond string, arg any) {
	w.args = append(w.args, arg)
	n := len(w.args)
	w.sb.WriteString(" AND ")
	w.sb.WriteString(strings.ReplaceAll(cond, "%d", itoa(n)))
}

func (w *where) String() string { return w.sb.String() }

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time.UTC()
	return &t
}

func itoa(n int) string { return strconv.Itoa(n) }
