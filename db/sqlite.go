package db

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/reflectx"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"listing-scout/config"

	// Turso "remote only" driver (no embedded replicas)
	_ "github.com/tursodatabase/libsql-client-go/libsql"
)

var ErrSQLiteDisabled = errors.New("turso sqlite disabled: set TURSO_DATABASE_URL (and TURSO_AUTH_TOKEN)")

// Conn is the subset of sqlx the stores need. When Turso is not configured a
// disabled Conn is provided instead so the app still boots; every call on it
// fails fast with ErrSQLiteDisabled.
type Conn interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	Queryx(query string, args ...any) (*sqlx.Rows, error)
	QueryRowx(query string, args ...any) *sqlx.Row
	Rebind(query string) string
}

// --- disabled connection (keeps app booting, but fails fast when used) ---

type sqliteErrConnector struct{}

func (sqliteErrConnector) Connect(context.Context) (driver.Conn, error) {
	return nil, ErrSQLiteDisabled
}
func (sqliteErrConnector) Driver() driver.Driver { return sqliteErrDriver{} }

type sqliteErrDriver struct{}

func (sqliteErrDriver) Open(string) (driver.Conn, error) { return nil, ErrSQLiteDisabled }

type disabledSQLiteConn struct {
	db *sql.DB
	x  *sqlx.DB
}

func newDisabledSQLiteConn() disabledSQLiteConn {
	db := sql.OpenDB(sqliteErrConnector{})
	return disabledSQLiteConn{
		db: db,
		x:  sqlx.NewDb(db, "libsql"),
	}
}

func (c disabledSQLiteConn) Exec(query string, args ...any) (sql.Result, error) {
	return nil, ErrSQLiteDisabled
}
func (c disabledSQLiteConn) Query(query string, args ...any) (*sql.Rows, error) {
	return nil, ErrSQLiteDisabled
}
func (c disabledSQLiteConn) Queryx(query string, args ...any) (*sqlx.Rows, error) {
	return nil, ErrSQLiteDisabled
}
func (c disabledSQLiteConn) QueryRowx(query string, args ...any) *sqlx.Row {
	return c.x.QueryRowx(query, args...)
}
func (c disabledSQLiteConn) Rebind(query string) string { return c.x.Rebind(query) }

// --- Fx output ---

type SQLiteSQLXOut struct {
	fx.Out

	DB   *sqlx.DB `name:"sqlite"`
	Conn Conn     `name:"sqlite"`
}

type NewSQLXSQLiteDBParams struct {
	fx.In

	Lc     fx.Lifecycle
	Cfg    *config.Config
	Logger *zap.SugaredLogger
}

// NewSQLXSQLiteDB connects to Turso remote (libsql://...) using libsql-client-go.
func NewSQLXSQLiteDB(p NewSQLXSQLiteDBParams) (SQLiteSQLXOut, error) {
	dsn := strings.TrimSpace(p.Cfg.TursoDatabaseURL)
	if dsn == "" {
		p.Logger.Infow("turso sqlite disabled (missing TURSO_DATABASE_URL)")
		return SQLiteSQLXOut{DB: nil, Conn: newDisabledSQLiteConn()}, nil
	}

	dsn = EnsureAuthTokenQuery(dsn, strings.TrimSpace(p.Cfg.TursoAuthToken))

	db, err := sqlx.Open("libsql", dsn)
	if err != nil {
		return SQLiteSQLXOut{}, fmt.Errorf("open turso db: %w", err)
	}

	// Reasonable defaults for remote DB:
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.Mapper = reflectx.NewMapperFunc("json", strings.ToLower)

	p.Lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			if err := db.PingContext(pingCtx); err != nil {
				_ = db.Close()
				return fmt.Errorf("ping turso db: %w", err)
			}
			p.Logger.Infow("turso_sqlite_enabled", "driver", "libsql")
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return db.Close()
		},
	})

	return SQLiteSQLXOut{DB: db, Conn: db}, nil
}

// EnsureAuthTokenQuery appends the Turso auth token as an authToken query
// param for remote DSNs. Local sqlite/file DSNs are left untouched.
func EnsureAuthTokenQuery(dsn, token string) string {
	if token == "" {
		return dsn
	}

	u, err := url.Parse(dsn)
	if err != nil || u.Scheme == "" {
		return dsn
	}

	if strings.EqualFold(u.Scheme, "file") || strings.EqualFold(u.Scheme, "sqlite") {
		return dsn
	}

	q := u.Query()
	if q.Get("authToken") != "" {
		return dsn
	}

	q.Set("authToken", token)
	u.RawQuery = q.Encode()
	return u.String()
}
