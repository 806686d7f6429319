package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/shopspring/decimal"
	"github.com/trinodb/trino-go-client/trino"
	"go.uber.org/zap"
)

const (
	TypePostgres = "postgres"
	TypeTrino    = "trino"
)

// Config holds configuration for the rates store connection
type Config struct {
	Type            string        `koanf:"type"`
	ServerURI       string        `koanf:"server_uri"`
	Catalog         string        `koanf:"catalog"`
	Schema          string        `koanf:"schema"`
	SchemaFile      string        `koanf:"schema_file"`
	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
}

// Queryer is the subset of *sql.DB and *sql.Tx the repositories run statements on
type Queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Database provides a connection to PostgreSQL or Trino
type Database struct {
	*sql.DB
	Config Config
	Logger *zap.Logger
}

// New opens the connection, verifies it and executes the schema file when
// one is configured
func New(config Config, logger *zap.Logger) (*Database, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var dsn string
	switch config.Type {
	case TypePostgres:
		dsn = config.ServerURI
	case TypeTrino:
		dsn = fmt.Sprintf("%s?catalog=%s&schema=%s", config.ServerURI, config.Catalog, config.Schema)
	default:
		return nil, fmt.Errorf("unsupported database type: %s", config.Type)
	}

	db, err := sql.Open(config.Type, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s connection: %w", config.Type, err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)
	db.SetConnMaxLifetime(config.ConnMaxLifetime)

	// Verify connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping %s: %w", config.Type, err)
	}

	database := &Database{DB: db, Config: config, Logger: logger}

	if config.SchemaFile != "" {
		if err := database.ExecuteSchema(config.SchemaFile); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to execute schema: %w", err)
		}
	}

	return database, nil
}

// ExecuteSchema loads and executes a schema file statement by statement.
// ${catalog} and ${schema} expand to the configured names and ${prefix} to
// the qualifier Table puts in front of table names.
func (db *Database) ExecuteSchema(filePath string) error {
	logger := db.logger()
	logger.Info("executing schema", zap.String("file", filePath))

	schemaSQL, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read schema file: %w", err)
	}

	expanded := os.Expand(string(schemaSQL), func(name string) string {
		switch name {
		case "catalog":
			return db.Config.Catalog
		case "schema":
			return db.Config.Schema
		case "prefix":
			return db.Table("")
		}
		return "$" + name
	})

	// Trino does not support multi-statement execution
	queries := strings.Split(expanded, ";")

	for _, query := range queries {
		query = strings.TrimSpace(query)
		if query == "" {
			continue
		}

		logger.Debug("executing schema statement", zap.String("query", query))
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("failed to execute query: %s, error: %w", query, err)
		}
	}

	logger.Info("schema executed", zap.String("file", filePath))
	return nil
}

// Table returns the name a table is addressed by in queries. Trino needs the
// catalog and schema; PostgreSQL only the schema, if one is set.
func (db *Database) Table(name string) string {
	if db.Config.Type == TypeTrino {
		return db.Config.Catalog + "." + db.Config.Schema + "." + name
	}
	if db.Config.Schema != "" {
		return db.Config.Schema + "." + name
	}
	return name
}

// Rebind rewrites ? placeholders into the numbered form PostgreSQL expects
func (db *Database) Rebind(query string) string {
	if db.Config.Type == TypeTrino {
		return query
	}

	var sb strings.Builder
	sb.Grow(len(query) + 8)
	n := 0
	for _, ch := range query {
		if ch == '?' {
			n++
			sb.WriteByte('$')
			sb.WriteString(strconv.Itoa(n))
			continue
		}
		sb.WriteRune(ch)
	}
	return sb.String()
}

// Decimal returns the bind argument for a DECIMAL column. The Trino driver
// quotes every argument except trino.Numeric, and Trino does not cast
// varchar literals into decimal columns.
func (db *Database) Decimal(d decimal.Decimal) any {
	if db.Config.Type == TypeTrino {
		return trino.Numeric(d.String())
	}
	return d
}

// NullDecimal is Decimal for nullable columns
func (db *Database) NullDecimal(d decimal.NullDecimal) any {
	if !d.Valid {
		return nil
	}
	return db.Decimal(d.Decimal)
}

// Transactional reports whether statements can be grouped in a transaction
func (db *Database) Transactional() bool {
	return db.Config.Type != TypeTrino
}

// WithTx runs fn inside a transaction, committing when it returns nil.
// Trino has no transactions, so there fn runs directly on the pool.
func (db *Database) WithTx(ctx context.Context, fn func(q Queryer) error) error {
	if !db.Transactional() {
		return fn(db.DB)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			db.logger().Warn("rollback failed", zap.Error(rbErr))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (db *Database) logger() *zap.Logger {
	if db.Logger == nil {
		return zap.NewNop()
	}
	return db.Logger
}
