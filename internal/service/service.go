package service

import (
	"context"

	"campus-market/internal/model"

	"github.com/google/uuid"
)

// Operations marked "owner" take the caller's identity and allow the
// resource owner or an admin; anyone else gets model.ErrForbidden.

// AuthService defines account operations.
type AuthService interface {
	// Register creates a user with the "usuario" role.
	Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error)

	// Login checks credentials and returns a signed token.
	Login(ctx context.Context, req *model.LoginRequest) (string, error)

	Profile(ctx context.Context, caller model.Identity) (*model.User, error)
	UpdateProfile(ctx context.Context, caller model.Identity, req *model.UpdateProfileRequest) (*model.User, error)
	DeleteAccount(ctx context.Context, caller model.Identity) error

	// Promote grants the admin role. It is only reachable from the CLI.
	Promote(ctx context.Context, email string) error
}

// ProductService defines operations for the catalogue.
type ProductService interface {
	List(ctx context.Context) ([]model.Product, error)
	Search(ctx context.Context, filter model.ProductFilter) ([]model.Product, error)
	ListByCategory(ctx context.Context, categoryID uuid.UUID) ([]model.Product, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error)

	Create(ctx context.Context, caller model.Identity, req *model.CreateProductRequest) (*model.Product, error)
	// Update and Delete are owner operations.
	Update(ctx context.Context, caller model.Identity, id uuid.UUID, req *model.UpdateProductRequest) (*model.Product, error)
	Delete(ctx context.Context, caller model.Identity, id uuid.UUID) error
}

// CategoryService defines operations for the category taxonomy.
type CategoryService interface {
	Create(ctx context.Context, req *model.CategoryRequest) (*model.Category, error)
	List(ctx context.Context) ([]model.Category, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Category, error)
	Rename(ctx context.Context, id uuid.UUID, req *model.CategoryRequest) (*model.Category, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// CartService defines operations on the caller's cart.
type CartService interface {
	View(ctx context.Context, caller model.Identity) (*model.CartView, error)
	Add(ctx context.Context, caller model.Identity, req *model.AddToCartRequest) error
	Remove(ctx context.Context, caller model.Identity, productID uuid.UUID) error

	// Checkout converts the cart into a pending order and empties the cart
	// in a single transaction.
	Checkout(ctx context.Context, caller model.Identity, req *model.CheckoutRequest) (*model.Order, error)

	History(ctx context.Context, caller model.Identity) ([]model.Order, error)
}

// OrderService defines operations for orders and their lines.
type OrderService interface {
	// Create places an order with unit prices taken from the current catalogue.
	Create(ctx context.Context, caller model.Identity, req *model.CreateOrderRequest) (*model.Order, error)
	ListMine(ctx context.Context, caller model.Identity) ([]model.Order, error)
	ListAll(ctx context.Context) ([]model.Order, error)

	// Get, Update and Delete are owner operations.
	Get(ctx context.Context, caller model.Identity, id uuid.UUID) (*model.Order, error)
	Update(ctx context.Context, caller model.Identity, id uuid.UUID, req *model.UpdateOrderRequest) (*model.Order, error)
	Delete(ctx context.Context, caller model.Identity, id uuid.UUID) error

	CreateLine(ctx context.Context, req *model.CreateOrderLineRequest) (*model.OrderLine, error)
	// ListLines and GetLine are owner operations on the parent order.
	ListLines(ctx context.Context, caller model.Identity, orderID uuid.UUID) ([]model.OrderLine, error)
	GetLine(ctx context.Context, caller model.Identity, id uuid.UUID) (*model.OrderLine, error)
	// UpdateLine only changes the quantity; a request carrying a unit price
	// fails with model.ErrUnitPriceImmutable.
	UpdateLine(ctx context.Context, id uuid.UUID, req *model.UpdateOrderLineRequest) (*model.OrderLine, error)
	DeleteLine(ctx context.Context, id uuid.UUID) error
}

// PaymentService defines the payment lifecycle.
type PaymentService interface {
	// Checkout records a pending payment for the order total and opens a
	// provider session. It returns the payment and the session URL.
	Checkout(ctx context.Context, caller model.Identity, req *model.PaymentCheckoutRequest) (*model.Payment, string, error)

	// Confirm completes the payment, decrements stock, marks the order paid
	// and enqueues seller and buyer notifications. Confirming twice has no
	// further effect and reports AlreadyConfirmed.
	Confirm(ctx context.Context, caller model.Identity, id uuid.UUID) (*model.PaymentConfirmation, error)

	History(ctx context.Context, caller model.Identity) ([]model.Payment, error)
	Get(ctx context.Context, caller model.Identity, id uuid.UUID) (*model.Payment, error)
	Delete(ctx context.Context, caller model.Identity, id uuid.UUID) error
}

// ReportService defines abuse report operations.
type ReportService interface {
	Create(ctx context.Context, caller model.Identity, req *model.CreateReportRequest) (*model.Report, error)
	List(ctx context.Context) ([]model.Report, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Report, error)
	Resolve(ctx context.Context, id uuid.UUID) (*model.Report, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// AdminService defines moderation operations.
type AdminService interface {
	ListUsers(ctx context.Context) ([]model.User, error)
	DeleteUser(ctx context.Context, id uuid.UUID) error
	// ReportedProducts returns unresolved reports.
	ReportedProducts(ctx context.Context) ([]model.Report, error)
	// DeleteProduct removes a product together with its reports.
	DeleteProduct(ctx context.Context, id uuid.UUID) error
}

// FileService defines object storage operations.
type FileService interface {
	// UploadProfilePicture replaces the caller's picture and returns its URL.
	UploadProfilePicture(ctx context.Context, caller model.Identity, upload model.Upload) (string, error)
	// UploadProductImage is an owner operation on the product.
	UploadProductImage(ctx context.Context, caller model.Identity, productID uuid.UUID, upload model.Upload) (string, error)
	// Delete removes an object and clears every reference to it.
	Delete(ctx context.Context, caller model.Identity, key string) error
	SignedURL(ctx context.Context, key string) (string, error)
}
