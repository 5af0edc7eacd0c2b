// internal/storage/postgres.go
package storage

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect import
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

//go:embed schema.sql
var schema string

var dialect = goqu.Dialect("postgres")

const (
	tableBooks   = "books"
	tableRecords = "borrow_records"

	pqUniqueViolation = "23505"
)

// PostgresStore implements Store on top of a PostgreSQL database.
// OpenLoan and CloseLoan run in serializable transactions so the record
// write and the counter adjustment commit or roll back together.
type PostgresStore struct {
	db     *sqlx.DB
	tracer trace.Tracer
}

// NewPostgresStore wraps an open sqlx handle.
func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{
		db:     db,
		tracer: otel.Tracer("libracore/storage"),
	}
}

// Migrate creates the books and borrow_records tables if they do not exist.
func (p *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

func (p *PostgresStore) BookByID(ctx context.Context, id int64) (*Book, error) {
	query, args, err := dialect.From(tableBooks).
		Select("id", "title", "author", "isbn", "total_copies", "available_copies").
		Where(goqu.C("id").Eq(id)).
		Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build book query: %w", err)
	}

	var b Book
	if err := p.db.GetContext(ctx, &b, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("query book %d: %w", id, err)
	}
	return &b, nil
}

func (p *PostgresStore) BookByISBN(ctx context.Context, isbn string) (*Book, error) {
	query, args, err := dialect.From(tableBooks).
		Select("id", "title", "author", "isbn", "total_copies", "available_copies").
		Where(goqu.C("isbn").Eq(isbn)).
		Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build book query: %w", err)
	}

	var b Book
	if err := p.db.GetContext(ctx, &b, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("query book by isbn: %w", err)
	}
	return &b, nil
}

func (p *PostgresStore) AllBooks(ctx context.Context) ([]*Book, error) {
	query, args, err := dialect.From(tableBooks).
		Select("id", "title", "author", "isbn", "total_copies", "available_copies").
		Order(goqu.C("id").Asc()).
		Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build catalog query: %w", err)
	}

	books := []*Book{}
	if err := p.db.SelectContext(ctx, &books, query, args...); err != nil {
		return nil, fmt.Errorf("query catalog: %w", err)
	}
	return books, nil
}

func (p *PostgresStore) InsertBook(ctx context.Context, title, author, isbn string, totalCopies int) (*Book, error) {
	query, args, err := dialect.Insert(tableBooks).
		Rows(goqu.Record{
			"title":            title,
			"author":           author,
			"isbn":             isbn,
			"total_copies":     totalCopies,
			"available_copies": totalCopies,
		}).
		Returning("id").
		Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build insert query: %w", err)
	}

	var id int64
	if err := p.db.QueryRowxContext(ctx, query, args...).Scan(&id); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			return nil, ErrDuplicateISBN
		}
		return nil, fmt.Errorf("insert book: %w", err)
	}

	return &Book{
		ID:              id,
		Title:           title,
		Author:          author,
		ISBN:            isbn,
		TotalCopies:     totalCopies,
		AvailableCopies: totalCopies,
	}, nil
}

func (p *PostgresStore) OpenLoanCount(ctx context.Context, patronID string) (int, error) {
	query, args, err := dialect.From(tableRecords).
		Select(goqu.COUNT("*")).
		Where(goqu.C("patron_id").Eq(patronID), goqu.C("return_date").IsNull()).
		Prepared(true).ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build loan count query: %w", err)
	}

	var count int
	if err := p.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("count open loans: %w", err)
	}
	return count, nil
}

func (p *PostgresStore) OpenLoan(ctx context.Context, patronID string, bookID int64, borrowDate, dueDate time.Time) (*BorrowRecord, error) {
	ctx, span := p.tracer.Start(ctx, "storage.open_loan",
		trace.WithAttributes(
			attribute.String("patron.id", patronID),
			attribute.Int64("book.id", bookID),
		),
	)
	defer span.End()

	tx, err := p.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	available, _, err := p.lockBook(ctx, tx, bookID)
	if err != nil {
		return nil, err
	}
	if available <= 0 {
		return nil, ErrBookUnavailable
	}

	if err := p.adjustAvailability(ctx, tx, bookID, -1); err != nil {
		return nil, err
	}

	query, args, err := dialect.Insert(tableRecords).
		Rows(goqu.Record{
			"patron_id":   patronID,
			"book_id":     bookID,
			"borrow_date": borrowDate,
			"due_date":    dueDate,
		}).
		Returning("id").
		Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build insert query: %w", err)
	}

	var recordID int64
	if err := tx.QueryRowxContext(ctx, query, args...).Scan(&recordID); err != nil {
		return nil, fmt.Errorf("insert borrow record: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	span.SetAttributes(attribute.Int64("record.id", recordID))
	return &BorrowRecord{
		ID:         recordID,
		PatronID:   patronID,
		BookID:     bookID,
		BorrowDate: borrowDate,
		DueDate:    dueDate,
	}, nil
}

func (p *PostgresStore) CloseLoan(ctx context.Context, patronID string, bookID int64, returnDate time.Time) (*BorrowRecord, error) {
	ctx, span := p.tracer.Start(ctx, "storage.close_loan",
		trace.WithAttributes(
			attribute.String("patron.id", patronID),
			attribute.Int64("book.id", bookID),
		),
	)
	defer span.End()

	tx, err := p.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Most recent open record for this patron and book; exactly one is closed.
	query, args, err := dialect.From(tableRecords).
		Select("id", "patron_id", "book_id", "borrow_date", "due_date", "return_date").
		Where(
			goqu.C("patron_id").Eq(patronID),
			goqu.C("book_id").Eq(bookID),
			goqu.C("return_date").IsNull(),
		).
		Order(goqu.C("borrow_date").Desc()).
		Limit(1).
		ForUpdate(exp.Wait).
		Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build open record query: %w", err)
	}

	var rec BorrowRecord
	if err := tx.GetContext(ctx, &rec, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoOpenLoan
		}
		return nil, fmt.Errorf("query open record: %w", err)
	}

	available, total, err := p.lockBook(ctx, tx, bookID)
	if err != nil {
		return nil, err
	}
	if available >= total {
		return nil, ErrCopiesExceedTotal
	}

	update, args, err := dialect.Update(tableRecords).
		Set(goqu.Record{"return_date": returnDate}).
		Where(goqu.C("id").Eq(rec.ID)).
		Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build close query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, update, args...); err != nil {
		return nil, fmt.Errorf("close borrow record: %w", err)
	}

	if err := p.adjustAvailability(ctx, tx, bookID, +1); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	span.SetAttributes(attribute.Int64("record.id", rec.ID))
	rec.ReturnDate = &returnDate
	return &rec, nil
}

func (p *PostgresStore) OpenLoansFor(ctx context.Context, patronID string) ([]*OpenLoan, error) {
	query, args, err := dialect.From(goqu.T(tableRecords).As("br")).
		Join(goqu.T(tableBooks).As("b"), goqu.On(goqu.I("b.id").Eq(goqu.I("br.book_id")))).
		Select(
			goqu.I("br.book_id").As("book_id"),
			goqu.I("b.title").As("title"),
			goqu.I("br.borrow_date").As("borrow_date"),
			goqu.I("br.due_date").As("due_date"),
		).
		Where(goqu.I("br.patron_id").Eq(patronID), goqu.I("br.return_date").IsNull()).
		Order(goqu.I("br.borrow_date").Asc()).
		Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build open loans query: %w", err)
	}

	loans := []*OpenLoan{}
	if err := p.db.SelectContext(ctx, &loans, query, args...); err != nil {
		return nil, fmt.Errorf("query open loans: %w", err)
	}
	return loans, nil
}

func (p *PostgresStore) LatestLoan(ctx context.Context, patronID string, bookID int64) (*BorrowRecord, error) {
	query, args, err := dialect.From(tableRecords).
		Select("id", "patron_id", "book_id", "borrow_date", "due_date", "return_date").
		Where(goqu.C("patron_id").Eq(patronID), goqu.C("book_id").Eq(bookID)).
		Order(goqu.C("borrow_date").Desc()).
		Limit(1).
		Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build latest loan query: %w", err)
	}

	var rec BorrowRecord
	if err := p.db.GetContext(ctx, &rec, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoLoanHistory
		}
		return nil, fmt.Errorf("query latest loan: %w", err)
	}
	return &rec, nil
}

func (p *PostgresStore) HistoryFor(ctx context.Context, patronID string) ([]*HistoryEntry, error) {
	query, args, err := dialect.From(goqu.T(tableRecords).As("br")).
		Join(goqu.T(tableBooks).As("b"), goqu.On(goqu.I("b.id").Eq(goqu.I("br.book_id")))).
		Select(
			goqu.I("br.book_id").As("book_id"),
			goqu.I("b.title").As("title"),
			goqu.I("br.borrow_date").As("borrow_date"),
			goqu.I("br.return_date").As("return_date"),
		).
		Where(goqu.I("br.patron_id").Eq(patronID)).
		Order(goqu.I("br.borrow_date").Asc()).
		Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build history query: %w", err)
	}

	history := []*HistoryEntry{}
	if err := p.db.SelectContext(ctx, &history, query, args...); err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	return history, nil
}

// lockBook reads and row-locks the availability counters for bookID.
func (p *PostgresStore) lockBook(ctx context.Context, tx *sqlx.Tx, bookID int64) (available, total int, err error) {
	query, args, err := dialect.From(tableBooks).
		Select("available_copies", "total_copies").
		Where(goqu.C("id").Eq(bookID)).
		ForUpdate(exp.Wait).
		Prepared(true).ToSQL()
	if err != nil {
		return 0, 0, fmt.Errorf("build lock query: %w", err)
	}

	row := tx.QueryRowxContext(ctx, query, args...)
	if err := row.Scan(&available, &total); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, 0, ErrBookNotFound
		}
		return 0, 0, fmt.Errorf("lock book %d: %w", bookID, err)
	}
	return available, total, nil
}

func (p *PostgresStore) adjustAvailability(ctx context.Context, tx *sqlx.Tx, bookID int64, delta int) error {
	query, args, err := dialect.Update(tableBooks).
		Set(goqu.Record{"available_copies": goqu.L("available_copies + ?", delta)}).
		Where(goqu.C("id").Eq(bookID)).
		Prepared(true).ToSQL()
	if err != nil {
		return fmt.Errorf("build availability update: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("adjust availability for book %d: %w", bookID, err)
	}
	return nil
}
