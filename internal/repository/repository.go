package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"campus-market/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Lookups return (nil, nil) when the row does not exist; callers translate
// that into the appropriate domain error.

// UserRepository defines data access for user accounts.
type UserRepository interface {
	// Create inserts a user. Returns model.ErrUserExists on a duplicate email.
	Create(ctx context.Context, user *model.User) error

	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)

	// List returns every user ordered by creation date.
	List(ctx context.Context) ([]model.User, error)

	// UpdateProfile persists name and email. Returns model.ErrUserExists if the
	// new email belongs to someone else.
	UpdateProfile(ctx context.Context, user *model.User) error

	// SetRole changes the role of the user with the given email. Returns false
	// when no such user exists.
	SetRole(ctx context.Context, email string, role model.Role) (bool, error)

	SetProfilePicture(ctx context.Context, id uuid.UUID, url string) error

	// ClearProfilePicture removes url from any profile referencing it.
	ClearProfilePicture(ctx context.Context, url string) (int64, error)

	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

// CategoryRepository defines data access for the category taxonomy.
type CategoryRepository interface {
	// Create inserts a category. Returns model.ErrCategoryExists on a duplicate name.
	Create(ctx context.Context, category *model.Category) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Category, error)
	List(ctx context.Context) ([]model.Category, error)
	// Rename returns model.ErrCategoryExists on a duplicate name and false if
	// the category does not exist.
	Rename(ctx context.Context, id uuid.UUID, nombre string) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

// ProductRepository defines data access for catalogue listings.
type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error)

	// GetByIDs retrieves multiple products keyed by id. Missing ids are absent from the map.
	GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]model.Product, error)

	List(ctx context.Context) ([]model.Product, error)

	// Search applies every non-zero field of filter.
	Search(ctx context.Context, filter model.ProductFilter) ([]model.Product, error)

	Update(ctx context.Context, product *model.Product) error
	Delete(ctx context.Context, id uuid.UUID) (bool, error)

	SetImage(ctx context.Context, id uuid.UUID, url string) error
	ClearImage(ctx context.Context, url string) (int64, error)

	// DecrementStock subtracts quantity from a tracked stock count only when
	// enough stock remains. Returns false when the row was left unchanged.
	DecrementStock(ctx context.Context, tx pgx.Tx, id uuid.UUID, quantity int) (bool, error)
}

// CartRepository defines data access for per-user carts.
type CartRepository interface {
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// GetOrCreate returns the user's cart with every line resolved to its
	// product, creating an empty cart on first access.
	GetOrCreate(ctx context.Context, userID uuid.UUID) (*model.Cart, error)

	// AddItem merges quantity into the existing line for productID or appends a new one.
	AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int) error

	// RemoveItem deletes the line for productID; absent lines are not an error.
	RemoveItem(ctx context.Context, userID, productID uuid.UUID) error

	// LockForCheckout locks the user's cart row inside tx and returns it with
	// resolved lines. Returns nil when the user has no cart.
	LockForCheckout(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (*model.Cart, error)

	// Clear removes every line of the cart inside tx.
	Clear(ctx context.Context, tx pgx.Tx, cartID uuid.UUID) error
}

// OrderRepository defines the interface for order data access operations.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// CreateOrder inserts a new order within the provided transaction.
	CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// CreateOrderLines inserts multiple order lines within the provided transaction.
	CreateOrderLines(ctx context.Context, tx pgx.Tx, lines []model.OrderLine) error

	// GetByID retrieves an order by its ID along with its lines.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, []model.OrderLine, error)

	// GetForUpdate locks an order row inside tx.
	GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Order, error)

	// ListByUser returns the user's orders, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Order, error)
	ListAll(ctx context.Context) ([]model.Order, error)

	Update(ctx context.Context, order *model.Order) error
	UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status model.OrderStatus) error
	Delete(ctx context.Context, id uuid.UUID) (bool, error)

	CreateLine(ctx context.Context, line *model.OrderLine) error
	GetLine(ctx context.Context, id uuid.UUID) (*model.OrderLine, error)
	ListLines(ctx context.Context, orderID uuid.UUID) ([]model.OrderLine, error)
	// UpdateLineQuantity changes only the quantity; the unit price is never written.
	UpdateLineQuantity(ctx context.Context, id uuid.UUID, quantity int) (*model.OrderLine, error)
	DeleteLine(ctx context.Context, id uuid.UUID) (bool, error)

	// SaleLines loads the order's lines joined to their products and sellers inside tx.
	SaleLines(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) ([]model.SaleLine, error)
}

// PaymentRepository defines data access for payment attempts.
type PaymentRepository interface {
	BeginTx(ctx context.Context) (pgx.Tx, error)

	Create(ctx context.Context, payment *model.Payment) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Payment, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Payment, error)
	// ActiveForOrder returns the order's pendiente or completado payment, if any.
	// At most one exists per order.
	ActiveForOrder(ctx context.Context, orderID uuid.UUID) (*model.Payment, error)

	SetProviderSession(ctx context.Context, id uuid.UUID, sessionID string) error
	MarkFailed(ctx context.Context, id uuid.UUID) error

	// MarkCompleted flips a non-completed payment to completado inside tx and
	// returns the updated row. Returns (nil, false, nil) when no row changed.
	MarkCompleted(ctx context.Context, tx pgx.Tx, id uuid.UUID, paidAt time.Time) (*model.Payment, bool, error)

	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

// ReportRepository defines data access for abuse reports.
type ReportRepository interface {
	Create(ctx context.Context, report *model.Report) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Report, error)
	// List returns reports newest first; unresolvedOnly drops resolved ones.
	List(ctx context.Context, unresolvedOnly bool) ([]model.Report, error)
	Resolve(ctx context.Context, id uuid.UUID) (*model.Report, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

// NotificationRepository is the outbox of pending email and real-time deliveries.
type NotificationRepository interface {
	// Enqueue inserts notifications within the provided transaction.
	Enqueue(ctx context.Context, tx pgx.Tx, notifications []model.Notification) error

	// Claim leases up to limit pending rows whose previous claim is older than
	// staleBefore and increments their attempt counters.
	Claim(ctx context.Context, limit int, staleBefore time.Time) ([]model.Notification, error)

	MarkSent(ctx context.Context, id uuid.UUID, sentAt time.Time) error

	// MarkAttemptFailed records err and releases the lease. When final is true
	// the row is marked failed and never claimed again.
	MarkAttemptFailed(ctx context.Context, id uuid.UUID, errMsg string, final bool) error

	// RequeueFailed resets failed rows to pending with a fresh attempt budget.
	RequeueFailed(ctx context.Context) (int64, error)

	CountByStatus(ctx context.Context) (map[model.NotificationStatus]int64, error)
}

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

func isPgError(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}

func isUniqueViolation(err error) bool {
	return isPgError(err, pgUniqueViolation)
}

func isForeignKeyViolation(err error) bool {
	return isPgError(err, pgForeignKeyViolation)
}

// scanner is satisfied by pgx.Row and pgx.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// querier is satisfied by *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// prefixed qualifies every column of a comma separated list with alias.
func prefixed(alias, columns string) string {
	parts := strings.Split(columns, ",")
	for i, p := range parts {
		parts[i] = alias + "." + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}
