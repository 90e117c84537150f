package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrDuplicate     = errors.New("duplicate title and author")
	ErrInvalidNumber = errors.New("not a valid number")
	ErrInvalidField  = errors.New("unknown field")
)

const bookColumns = `id,title,author,qty`

type Repository struct {
	DB    *sql.DB
	cache *bookCache

	seed    []Book
	idFloor int64
	nextID  int64
	seeded  int
}

func NewRepository(ctx context.Context, cfg Config) (*Repository, error) {
	db, err := openSQLite(cfg.DBDriver, cfg.DBPath)
	if err != nil {
		return nil, err
	}
	cache, err := newBookCache(cfg.CacheSize)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	floor := cfg.IDFloor
	if floor <= 0 {
		floor = defaultIDFloor
	}

	r := &Repository{DB: db, cache: cache, seed: seedBooks, idFloor: floor}
	if err := r.initialize(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := r.ResetCounter(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return r, nil
}

// initialize crea la tabla y, solo si acaba de crearse, carga los libros
// semilla. Todo ocurre en una transacción: si algo falla no queda nada a medias.
func (r *Repository) initialize(ctx context.Context) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var existing int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='books'`).Scan(&existing); err != nil {
		return fmt.Errorf("inspect schema: %w", err)
	}

	schema := `
CREATE TABLE IF NOT EXISTS books(
  id     INTEGER PRIMARY KEY,
  title  TEXT,
  author TEXT,
  qty    INTEGER,
  UNIQUE(title, author)
);`
	if _, err := tx.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create books table: %w", err)
	}

	seeded := 0
	if existing == 0 {
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO books(`+bookColumns+`) VALUES(?,?,?,?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, b := range r.seed {
			if _, err := stmt.ExecContext(ctx, b.ID, b.Title, b.Author, b.Qty); err != nil {
				return fmt.Errorf("seed book %d: %w", b.ID, err)
			}
			seeded++
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	r.seeded = seeded
	return nil
}

func (r *Repository) Close() error { return r.DB.Close() }

// Seeded returns how many seed rows were written when the table was created
// by this process. Zero when the database already existed.
func (r *Repository) Seeded() int { return r.seeded }

// NextID is the id the next Add will use.
func (r *Repository) NextID() int64 { return r.nextID }

// ResetCounter re-reads the highest stored id. The counter never goes below
// the configured floor.
func (r *Repository) ResetCounter(ctx context.Context) error {
	var maxID sql.NullInt64
	if err := r.DB.QueryRowContext(ctx, `SELECT MAX(id) FROM books`).Scan(&maxID); err != nil {
		return fmt.Errorf("read max id: %w", err)
	}
	next := r.idFloor
	if maxID.Valid && maxID.Int64+1 > next {
		next = maxID.Int64 + 1
	}
	r.nextID = next
	return nil
}

func (r *Repository) allocateID() int64 {
	id := r.nextID
	r.nextID++
	return id
}

// Add inserts a new book with the next session id. The id is consumed even
// when the insert is rejected as a duplicate.
func (r *Repository) Add(ctx context.Context, title, author string, qty int64) (Book, error) {
	b := Book{ID: r.allocateID(), Title: title, Author: author, Qty: qty}
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO books(`+bookColumns+`) VALUES(?,?,?,?)`, b.ID, b.Title, b.Author, b.Qty)
	if err != nil {
		if isUniqueViolation(err) {
			log.Debug().Int64("id", b.ID).Msg("add rejected: duplicate")
			return Book{}, ErrDuplicate
		}
		return Book{}, fmt.Errorf("insert book: %w", err)
	}
	r.cache.put(b)
	return b, nil
}

var updateStatements = map[Field]string{
	FieldTitle:  `UPDATE books SET title=? WHERE id=?`,
	FieldAuthor: `UPDATE books SET author=? WHERE id=?`,
	FieldQty:    `UPDATE books SET qty=? WHERE id=?`,
}

// Update changes one column of an existing row.
func (r *Repository) Update(ctx context.Context, id int64, field Field, value string) (Book, error) {
	stmt, ok := updateStatements[field]
	if !ok {
		return Book{}, ErrInvalidField
	}
	b, err := r.FindByID(ctx, id)
	if err != nil {
		return Book{}, err
	}

	var arg any = value
	switch field {
	case FieldTitle:
		b.Title = value
	case FieldAuthor:
		b.Author = value
	case FieldQty:
		n, err := parseInt(value)
		if err != nil {
			return Book{}, err
		}
		b.Qty, arg = n, n
	}

	if _, err := r.DB.ExecContext(ctx, stmt, arg, id); err != nil {
		if isUniqueViolation(err) {
			return Book{}, ErrDuplicate
		}
		return Book{}, fmt.Errorf("update book %d: %w", id, err)
	}
	r.cache.forget(id)
	return b, nil
}

func (r *Repository) Delete(ctx context.Context, id int64) (Book, error) {
	b, err := r.FindByID(ctx, id)
	if err != nil {
		return Book{}, err
	}
	if _, err := r.DB.ExecContext(ctx, `DELETE FROM books WHERE id=?`, id); err != nil {
		return Book{}, fmt.Errorf("delete book %d: %w", id, err)
	}
	r.cache.forget(id)
	return b, nil
}

func (r *Repository) FindByID(ctx context.Context, id int64) (Book, error) {
	if b, ok := r.cache.get(id); ok {
		return b, nil
	}
	var b Book
	err := r.DB.QueryRowContext(ctx, `SELECT `+bookColumns+` FROM books WHERE id=?`, id).
		Scan(&b.ID, &b.Title, &b.Author, &b.Qty)
	if errors.Is(err, sql.ErrNoRows) {
		return Book{}, ErrNotFound
	}
	if err != nil {
		return Book{}, fmt.Errorf("find book %d: %w", id, err)
	}
	r.cache.put(b)
	return b, nil
}

// SearchText matches term as a case-insensitive substring of title or author.
func (r *Repository) SearchText(ctx context.Context, term string) ([]Book, error) {
	qp := "%" + escapeLike(foldCase(term)) + "%"
	return r.query(ctx, `SELECT `+bookColumns+` FROM books
		WHERE `+ulowerFunc+`(title) LIKE ? ESCAPE '\' OR `+ulowerFunc+`(author) LIKE ? ESCAPE '\'
		ORDER BY id`, qp, qp)
}

func (r *Repository) SearchQuantity(ctx context.Context, low, high int64) ([]Book, error) {
	return r.query(ctx, `SELECT `+bookColumns+` FROM books WHERE qty BETWEEN ? AND ? ORDER BY id`, low, high)
}

func (r *Repository) List(ctx context.Context) ([]Book, error) {
	return r.query(ctx, `SELECT `+bookColumns+` FROM books ORDER BY id`)
}

func (r *Repository) query(ctx context.Context, q string, args ...any) ([]Book, error) {
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Book
	for rows.Next() {
		var b Book
		if err := rows.Scan(&b.ID, &b.Title, &b.Author, &b.Qty); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// helpers
func parseInt(s string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, ErrInvalidNumber
	}
	return n, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }
