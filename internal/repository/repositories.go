package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Repositories holds all repository instances
type Repositories struct {
	db          *gorm.DB
	User        UserRepository
	Roster      RosterRepository
	Fee         FeeRepository
	Invoice     InvoiceRepository
	Payment     PaymentRepository
	Transaction TransactionRepository
}

// NewRepositories creates all repository instances
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		db:          db,
		User:        NewUserRepository(db),
		Roster:      NewRosterRepository(db),
		Fee:         NewFeeRepository(db),
		Invoice:     NewInvoiceRepository(db),
		Payment:     NewPaymentRepository(db),
		Transaction: NewTransactionRepository(db),
	}
}

// WithTx runs fn with every repository bound to one database transaction.
// Returning an error from fn rolls everything back.
func (r *Repositories) WithTx(ctx context.Context, fn func(tx *Repositories) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx))
	})
}

// DB returns the underlying handle
func (r *Repositories) DB() *gorm.DB {
	return r.db
}

// ListQuery holds pagination, search and filter parameters
type ListQuery struct {
	Page    int
	PerPage int
	Search  string
	SortBy  string
	SortDir string
	Filters map[string]string
}

// NewListQuery creates a ListQuery with defaults
func NewListQuery() *ListQuery {
	return &ListQuery{
		Page:    1,
		PerPage: 20,
		Filters: make(map[string]string),
	}
}

// Offset returns the row offset for the current page
func (q *ListQuery) Offset() int {
	if q.Page < 1 {
		return 0
	}
	return (q.Page - 1) * q.PerPage
}

// orderClause builds an ORDER BY from a whitelisted column set, falling back to def
func (q *ListQuery) orderClause(allowed map[string]string, def string) string {
	column, ok := allowed[q.SortBy]
	if !ok {
		return def
	}
	if strings.ToLower(q.SortDir) == "desc" {
		return column + " DESC"
	}
	return column + " ASC"
}

func paginate(db *gorm.DB, query *ListQuery) *gorm.DB {
	if query.PerPage > 0 {
		return db.Offset(query.Offset()).Limit(query.PerPage)
	}
	return db
}

// likeTerm builds a case-insensitive LIKE operand; callers compare against LOWER(column)
func likeTerm(search string) string {
	return "%" + strings.ToLower(strings.TrimSpace(search)) + "%"
}

// IsDuplicateKeyError reports whether err is a unique-constraint violation.
// constraintName is optional; when set, PostgreSQL errors must name that constraint.
func IsDuplicateKeyError(err error, constraintName string) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" && (constraintName == "" || pgErr.ConstraintName == constraintName)
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
