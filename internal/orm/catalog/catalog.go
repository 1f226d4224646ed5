// Package catalog probes a relational database for the tables backing the classes of
// the relational backend. Classes mapped on views become read-only, missing tables and
// columns are reported, and every successful probe issues a new schema version token
// that resolved metadata caches use as a key suffix.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	"github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3" // SQLite driver
	"go.uber.org/zap"

	"github.com/conduit-lang/resourcemeta/internal/orm/schema"
	utilstrings "github.com/conduit-lang/resourcemeta/internal/util/strings"
)

var (
	// ErrUnsupportedDatabase is returned for a database url no driver handles
	ErrUnsupportedDatabase = errors.New("unsupported database")

	// ErrPermissionDenied is returned when the catalog tables cannot be read
	ErrPermissionDenied = errors.New("permission denied reading the database catalog")

	// ErrDatabaseNotFound is returned when the database does not exist
	ErrDatabaseNotFound = errors.New("database not found")
)

// Dialect selects the catalog queries
type Dialect int

const (
	DialectSQLite Dialect = iota
	DialectPostgres
)

// String returns the string representation of the dialect
func (d Dialect) String() string {
	if d == DialectPostgres {
		return "postgres"
	}
	return "sqlite"
}

// TableKind tells how a class is backed
type TableKind int

const (
	KindMissing TableKind = iota
	KindTable
	KindView
)

// String returns the string representation of the table kind
func (k TableKind) String() string {
	switch k {
	case KindTable:
		return "table"
	case KindView:
		return "view"
	default:
		return "missing"
	}
}

// MarshalText implements encoding.TextMarshaler
func (k TableKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Table is the probe result of one class
type Table struct {
	Class          string    `json:"class"`
	Name           string    `json:"table"`
	Kind           TableKind `json:"kind"`
	Columns        []string  `json:"columns,omitempty"`
	MissingColumns []string  `json:"missing_columns,omitempty"`
}

// Report is the result of one probe
type Report struct {
	Version string  `json:"version"`
	Tables  []Table `json:"tables"`
}

// Missing returns the classes whose table was not found
func (r *Report) Missing() []string {
	var classes []string
	for _, t := range r.Tables {
		if t.Kind == KindMissing {
			classes = append(classes, t.Class)
		}
	}
	return classes
}

// Views returns the classes mapped on views
func (r *Report) Views() []string {
	var classes []string
	for _, t := range r.Tables {
		if t.Kind == KindView {
			classes = append(classes, t.Class)
		}
	}
	return classes
}

// Catalog reads table metadata from a database
type Catalog struct {
	db      *sql.DB
	dialect Dialect
	schema  string
	logger  *zap.Logger

	mu      sync.RWMutex
	version string
}

// New creates a catalog on an open database. For postgres, tables are looked up in the
// public schema.
func New(db *sql.DB, dialect Dialect, logger *zap.Logger) *Catalog {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Catalog{db: db, dialect: dialect, schema: "public", logger: logger}
}

// Open connects to the database named by url. postgres:// and postgresql:// urls use
// pgx, sqlite:// urls and plain paths use sqlite3.
func Open(ctx context.Context, url string, logger *zap.Logger) (*Catalog, error) {
	driver, dsn, dialect, err := parseURL(url)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", convertError(err))
	}
	return New(db, dialect, logger), nil
}

func parseURL(url string) (driver, dsn string, dialect Dialect, err error) {
	switch {
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return "pgx", url, DialectPostgres, nil
	case strings.HasPrefix(url, "sqlite://"):
		return "sqlite3", strings.TrimPrefix(url, "sqlite://"), DialectSQLite, nil
	case url == "", strings.Contains(url, "://"):
		return "", "", 0, fmt.Errorf("%w: %q", ErrUnsupportedDatabase, url)
	default:
		return "sqlite3", url, DialectSQLite, nil
	}
}

// Close closes the database
func (c *Catalog) Close() error {
	return c.db.Close()
}

// Version returns the token issued by the last successful probe, "" before any probe.
// It fits factory.CacheOptions.Version.
func (c *Catalog) Version() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.version
}

// Probe looks up the table of every class of registry. Classes backed by a view are
// marked read-only in the registry.
func (c *Catalog) Probe(ctx context.Context, registry *schema.Registry) (*Report, error) {
	classes := registry.List()
	tableOf := make(map[string]string, len(classes))
	names := make([]string, 0, len(classes))
	for _, class := range classes {
		s, _ := registry.Get(class)
		tableOf[class] = s.TableName
		names = append(names, s.TableName)
	}

	kinds, err := c.tableKinds(ctx, names)
	if err != nil {
		return nil, convertError(err)
	}

	report := &Report{Tables: make([]Table, 0, len(classes))}
	for _, class := range classes {
		t := Table{Class: class, Name: tableOf[class], Kind: kinds[tableOf[class]]}

		if t.Kind != KindMissing {
			t.Columns, err = c.columns(ctx, t.Name)
			if err != nil {
				return nil, fmt.Errorf("failed to read columns of %s: %w", t.Name, convertError(err))
			}
			s, _ := registry.Get(class)
			t.MissingColumns = missingColumns(s, t.Columns)
		}

		if t.Kind == KindView && !registry.IsReadOnly(class) {
			if err := registry.MarkReadOnly(class, true); err != nil {
				return nil, err
			}
			c.logger.Debug("class is backed by a view, marking it read only",
				zap.String("class", class),
				zap.String("view", t.Name),
			)
		}
		if t.Kind == KindMissing {
			c.logger.Warn("table not found", zap.String("class", class), zap.String("table", t.Name))
		}

		report.Tables = append(report.Tables, t)
	}

	report.Version = uuid.NewString()
	c.mu.Lock()
	c.version = report.Version
	c.mu.Unlock()

	c.logger.Info("probed database catalog",
		zap.String("dialect", c.dialect.String()),
		zap.Int("classes", len(classes)),
		zap.String("version", report.Version),
	)
	return report, nil
}

func (c *Catalog) tableKinds(ctx context.Context, names []string) (map[string]TableKind, error) {
	kinds := make(map[string]TableKind, len(names))
	if len(names) == 0 {
		return kinds, nil
	}

	var (
		rows *sql.Rows
		err  error
	)
	switch c.dialect {
	case DialectPostgres:
		query := `
SELECT table_name, table_type
FROM information_schema.tables
WHERE table_schema = $1 AND table_name = ANY($2)
`
		rows, err = c.db.QueryContext(ctx, query, c.schema, pq.Array(names))
	default:
		query := `
SELECT name, type
FROM sqlite_master
WHERE type IN ('table', 'view')
`
		rows, err = c.db.QueryContext(ctx, query)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query tables: %w", err)
	}
	defer rows.Close()

	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[n] = true
	}

	for rows.Next() {
		var name, typ string
		if err := rows.Scan(&name, &typ); err != nil {
			return nil, fmt.Errorf("failed to scan table: %w", err)
		}
		if !wanted[name] {
			continue
		}
		if strings.EqualFold(typ, "view") {
			kinds[name] = KindView
		} else {
			kinds[name] = KindTable
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tables: %w", err)
	}
	return kinds, nil
}

func (c *Catalog) columns(ctx context.Context, table string) ([]string, error) {
	var (
		rows *sql.Rows
		err  error
	)
	switch c.dialect {
	case DialectPostgres:
		query := `
SELECT column_name
FROM information_schema.columns
WHERE table_schema = $1 AND table_name = $2
ORDER BY ordinal_position
`
		rows, err = c.db.QueryContext(ctx, query, c.schema, table)
	default:
		query := `SELECT name FROM pragma_table_info(?) ORDER BY cid`
		rows, err = c.db.QueryContext(ctx, query, table)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		columns = append(columns, name)
	}
	return columns, rows.Err()
}

// missingColumns lists the mapped fields and owning-side foreign keys without a column
func missingColumns(s *schema.ResourceSchema, columns []string) []string {
	present := make(map[string]bool, len(columns))
	for _, c := range columns {
		present[c] = true
	}

	var missing []string
	for _, property := range s.PropertyNames() {
		column := ""
		if _, ok := s.Fields[property]; ok {
			column = utilstrings.ToSnakeCase(property)
		} else if rel := s.Relationships[property]; rel != nil && rel.Type == schema.RelationshipBelongsTo {
			column = rel.ForeignKey
			if column == "" {
				column = utilstrings.ToSnakeCase(property) + "_id"
			}
		}
		if column != "" && !present[column] {
			missing = append(missing, column)
		}
	}
	return missing
}

func convertError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "42501": // insufficient_privilege
			return fmt.Errorf("%w: %s", ErrPermissionDenied, pgErr.Message)
		case "3D000": // invalid_catalog_name
			return fmt.Errorf("%w: %s", ErrDatabaseNotFound, pgErr.Message)
		}
	}
	return err
}
