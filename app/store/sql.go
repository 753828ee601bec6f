package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"todoapi/app/models"

	_ "github.com/lib/pq"           // PostgreSQL driver
	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Dialect captures the SQL differences between supported databases.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite3"
	DialectPostgres Dialect = "postgres"
)

// ParseDialect maps a driver name onto a Dialect.
func ParseDialect(driver string) (Dialect, error) {
	switch strings.ToLower(driver) {
	case "sqlite", "sqlite3":
		return DialectSQLite, nil
	case "postgres", "postgresql":
		return DialectPostgres, nil
	default:
		return "", fmt.Errorf("unsupported sql dialect %q", driver)
	}
}

// Rebind rewrites ? placeholders into the dialect's form.
func (d Dialect) Rebind(query string) string {
	if d != DialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (d Dialect) schema() string {
	if d == DialectPostgres {
		return `CREATE TABLE IF NOT EXISTS todo_items (
			id BIGSERIAL PRIMARY KEY,
			title TEXT NOT NULL DEFAULT '',
			description TEXT
		)`
	}
	return `CREATE TABLE IF NOT EXISTS todo_items (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL DEFAULT '',
			description TEXT
		)`
}

const (
	sqlSelectAll  = "SELECT id, title, description FROM todo_items ORDER BY id"
	sqlSelectByID = "SELECT id, title, description FROM todo_items WHERE id = ?"
	sqlInsert     = "INSERT INTO todo_items (title, description) VALUES (?, ?) RETURNING id"
	sqlUpdate     = "UPDATE todo_items SET title = ?, description = ? WHERE id = ?"
	sqlDelete     = "DELETE FROM todo_items WHERE id = ?"
)

// SQLStore keeps items in a relational table through database/sql.
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
}

// NewSQLStore wraps an open database handle.
func NewSQLStore(db *sql.DB, dialect Dialect) *SQLStore {
	return &SQLStore{db: db, dialect: dialect}
}

// OpenSQLStore opens and pings a database for the given driver name.
func OpenSQLStore(ctx context.Context, driver, dsn string) (*SQLStore, error) {
	dialect, err := ParseDialect(driver)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(string(dialect), dsn)
	if err != nil {
		return nil, persistenceError("open", err)
	}
	if dialect == DialectSQLite {
		// Each sqlite :memory: connection is its own database.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, persistenceError("ping", err)
	}
	return NewSQLStore(db, dialect), nil
}

// Migrate creates the todo_items table if it does not exist.
func (s *SQLStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, s.dialect.schema()); err != nil {
		return persistenceError("migrate", err)
	}
	return nil
}

func (s *SQLStore) NewContext() Context {
	return &sqlContext{store: s}
}

func (s *SQLStore) Ping(ctx context.Context) error {
	return persistenceError("ping", s.db.PingContext(ctx))
}

func (s *SQLStore) Close(ctx context.Context) error {
	return persistenceError("close", s.db.Close())
}

type sqlContext struct {
	changeSet
	store *SQLStore
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTodoItem(row rowScanner) (models.TodoItem, error) {
	var (
		item        models.TodoItem
		description sql.NullString
	)
	if err := row.Scan(&item.ID, &item.Title, &description); err != nil {
		return models.TodoItem{}, err
	}
	if description.Valid {
		item.Description = models.StringPtr(description.String)
	}
	return item, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func (c *sqlContext) List(ctx context.Context) ([]models.TodoItem, error) {
	rows, err := c.store.db.QueryContext(ctx, sqlSelectAll)
	if err != nil {
		return nil, persistenceError("list", err)
	}
	defer rows.Close()

	items := make([]models.TodoItem, 0)
	for rows.Next() {
		item, err := scanTodoItem(rows)
		if err != nil {
			return nil, persistenceError("list", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, persistenceError("list", err)
	}
	return items, nil
}

func (c *sqlContext) Find(ctx context.Context, id int64) (*models.TodoItem, error) {
	row := c.store.db.QueryRowContext(ctx, c.store.dialect.Rebind(sqlSelectByID), id)
	item, err := scanTodoItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, persistenceError("find", err)
	}
	return &item, nil
}

func (c *sqlContext) Commit(ctx context.Context) error {
	pending := c.take()
	if len(pending) == 0 {
		return nil
	}

	tx, err := c.store.db.BeginTx(ctx, nil)
	if err != nil {
		return persistenceError("commit", err)
	}
	assigned := make(map[*models.TodoItem]int64)
	for _, ch := range pending {
		if err := c.apply(ctx, tx, ch, assigned); err != nil {
			tx.Rollback()
			return persistenceError("commit", fmt.Errorf("%s item: %w", ch.kind, err))
		}
	}
	if err := tx.Commit(); err != nil {
		return persistenceError("commit", err)
	}
	for item, id := range assigned {
		item.ID = id
	}
	return nil
}

func (c *sqlContext) apply(ctx context.Context, tx *sql.Tx, ch change, assigned map[*models.TodoItem]int64) error {
	d := c.store.dialect
	switch ch.kind {
	case changeAdd:
		var id int64
		err := tx.QueryRowContext(ctx, d.Rebind(sqlInsert), ch.item.Title, nullString(ch.item.Description)).Scan(&id)
		if err != nil {
			return err
		}
		assigned[ch.item] = id
		return nil
	case changeUpdate:
		res, err := tx.ExecContext(ctx, d.Rebind(sqlUpdate), ch.item.Title, nullString(ch.item.Description), ch.item.ID)
		if err != nil {
			return err
		}
		return requireAffected(res)
	case changeRemove:
		res, err := tx.ExecContext(ctx, d.Rebind(sqlDelete), ch.item.ID)
		if err != nil {
			return err
		}
		return requireAffected(res)
	default:
		return fmt.Errorf("unknown change %d", ch.kind)
	}
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
