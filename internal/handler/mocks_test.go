package handler

import (
	"context"
	"net/http"

	"campus-market/internal/auth"
	"campus-market/internal/model"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockProductService is a mock implementation of ProductService.
type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) List(ctx context.Context) ([]model.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *MockProductService) Search(ctx context.Context, filter model.ProductFilter) ([]model.Product, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *MockProductService) ListByCategory(ctx context.Context, categoryID uuid.UUID) ([]model.Product, error) {
	args := m.Called(ctx, categoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *MockProductService) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockProductService) Create(ctx context.Context, caller model.Identity, req *model.CreateProductRequest) (*model.Product, error) {
	args := m.Called(ctx, caller, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockProductService) Update(ctx context.Context, caller model.Identity, id uuid.UUID, req *model.UpdateProductRequest) (*model.Product, error) {
	args := m.Called(ctx, caller, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockProductService) Delete(ctx context.Context, caller model.Identity, id uuid.UUID) error {
	return m.Called(ctx, caller, id).Error(0)
}

// MockCartService is a mock implementation of CartService.
type MockCartService struct {
	mock.Mock
}

func (m *MockCartService) View(ctx context.Context, caller model.Identity) (*model.CartView, error) {
	args := m.Called(ctx, caller)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CartView), args.Error(1)
}

func (m *MockCartService) Add(ctx context.Context, caller model.Identity, req *model.AddToCartRequest) error {
	return m.Called(ctx, caller, req).Error(0)
}

func (m *MockCartService) Remove(ctx context.Context, caller model.Identity, productID uuid.UUID) error {
	return m.Called(ctx, caller, productID).Error(0)
}

func (m *MockCartService) Checkout(ctx context.Context, caller model.Identity, req *model.CheckoutRequest) (*model.Order, error) {
	args := m.Called(ctx, caller, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockCartService) History(ctx context.Context, caller model.Identity) ([]model.Order, error) {
	args := m.Called(ctx, caller)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Order), args.Error(1)
}

// MockPaymentService is a mock implementation of PaymentService.
type MockPaymentService struct {
	mock.Mock
}

func (m *MockPaymentService) Checkout(ctx context.Context, caller model.Identity, req *model.PaymentCheckoutRequest) (*model.Payment, string, error) {
	args := m.Called(ctx, caller, req)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).(*model.Payment), args.String(1), args.Error(2)
}

func (m *MockPaymentService) Confirm(ctx context.Context, caller model.Identity, id uuid.UUID) (*model.PaymentConfirmation, error) {
	args := m.Called(ctx, caller, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PaymentConfirmation), args.Error(1)
}

func (m *MockPaymentService) History(ctx context.Context, caller model.Identity) ([]model.Payment, error) {
	args := m.Called(ctx, caller)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Payment), args.Error(1)
}

func (m *MockPaymentService) Get(ctx context.Context, caller model.Identity, id uuid.UUID) (*model.Payment, error) {
	args := m.Called(ctx, caller, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Payment), args.Error(1)
}

func (m *MockPaymentService) Delete(ctx context.Context, caller model.Identity, id uuid.UUID) error {
	return m.Called(ctx, caller, id).Error(0)
}

// MockFileService is a mock implementation of FileService.
type MockFileService struct {
	mock.Mock
}

func (m *MockFileService) UploadProfilePicture(ctx context.Context, caller model.Identity, upload model.Upload) (string, error) {
	args := m.Called(ctx, caller, upload)
	return args.String(0), args.Error(1)
}

func (m *MockFileService) UploadProductImage(ctx context.Context, caller model.Identity, productID uuid.UUID, upload model.Upload) (string, error) {
	args := m.Called(ctx, caller, productID, upload)
	return args.String(0), args.Error(1)
}

func (m *MockFileService) Delete(ctx context.Context, caller model.Identity, key string) error {
	return m.Called(ctx, caller, key).Error(0)
}

func (m *MockFileService) SignedURL(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

// MockAuthService is a mock implementation of AuthService.
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, req *model.LoginRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func (m *MockAuthService) Profile(ctx context.Context, caller model.Identity) (*model.User, error) {
	args := m.Called(ctx, caller)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockAuthService) UpdateProfile(ctx context.Context, caller model.Identity, req *model.UpdateProfileRequest) (*model.User, error) {
	args := m.Called(ctx, caller, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockAuthService) DeleteAccount(ctx context.Context, caller model.Identity) error {
	return m.Called(ctx, caller).Error(0)
}

func (m *MockAuthService) Promote(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

// withIdentity attaches an authenticated caller to the request.
func withIdentity(r *http.Request, id model.Identity) *http.Request {
	return r.WithContext(auth.WithIdentity(r.Context(), id))
}

// withParams attaches chi URL parameters to the request.
func withParams(r *http.Request, kv ...string) *http.Request {
	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(kv); i += 2 {
		rctx.URLParams.Add(kv[i], kv[i+1])
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func testIdentity() model.Identity {
	return model.Identity{UserID: uuid.New(), Email: "ana@iteso.mx", Role: model.RoleUser}
}

// MockOrderService is a mock implementation of OrderService.
type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) Create(ctx context.Context, caller model.Identity, req *model.CreateOrderRequest) (*model.Order, error) {
	args := m.Called(ctx, caller, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderService) ListMine(ctx context.Context, caller model.Identity) ([]model.Order, error) {
	args := m.Called(ctx, caller)
	orders, _ := args.Get(0).([]model.Order)
	return orders, args.Error(1)
}

func (m *MockOrderService) ListAll(ctx context.Context) ([]model.Order, error) {
	args := m.Called(ctx)
	orders, _ := args.Get(0).([]model.Order)
	return orders, args.Error(1)
}

func (m *MockOrderService) Get(ctx context.Context, caller model.Identity, id uuid.UUID) (*model.Order, error) {
	args := m.Called(ctx, caller, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderService) Update(ctx context.Context, caller model.Identity, id uuid.UUID, req *model.UpdateOrderRequest) (*model.Order, error) {
	args := m.Called(ctx, caller, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderService) Delete(ctx context.Context, caller model.Identity, id uuid.UUID) error {
	return m.Called(ctx, caller, id).Error(0)
}

func (m *MockOrderService) CreateLine(ctx context.Context, req *model.CreateOrderLineRequest) (*model.OrderLine, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OrderLine), args.Error(1)
}

func (m *MockOrderService) ListLines(ctx context.Context, caller model.Identity, orderID uuid.UUID) ([]model.OrderLine, error) {
	args := m.Called(ctx, caller, orderID)
	lines, _ := args.Get(0).([]model.OrderLine)
	return lines, args.Error(1)
}

func (m *MockOrderService) GetLine(ctx context.Context, caller model.Identity, id uuid.UUID) (*model.OrderLine, error) {
	args := m.Called(ctx, caller, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OrderLine), args.Error(1)
}

func (m *MockOrderService) UpdateLine(ctx context.Context, id uuid.UUID, req *model.UpdateOrderLineRequest) (*model.OrderLine, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OrderLine), args.Error(1)
}

func (m *MockOrderService) DeleteLine(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

// MockCategoryService is a mock implementation of CategoryService.
type MockCategoryService struct {
	mock.Mock
}

func (m *MockCategoryService) Create(ctx context.Context, req *model.CategoryRequest) (*model.Category, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Category), args.Error(1)
}

func (m *MockCategoryService) List(ctx context.Context) ([]model.Category, error) {
	args := m.Called(ctx)
	categories, _ := args.Get(0).([]model.Category)
	return categories, args.Error(1)
}

func (m *MockCategoryService) GetByID(ctx context.Context, id uuid.UUID) (*model.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Category), args.Error(1)
}

func (m *MockCategoryService) Rename(ctx context.Context, id uuid.UUID, req *model.CategoryRequest) (*model.Category, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Category), args.Error(1)
}

func (m *MockCategoryService) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

// MockReportService is a mock implementation of ReportService.
type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) Create(ctx context.Context, caller model.Identity, req *model.CreateReportRequest) (*model.Report, error) {
	args := m.Called(ctx, caller, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Report), args.Error(1)
}

func (m *MockReportService) List(ctx context.Context) ([]model.Report, error) {
	args := m.Called(ctx)
	reports, _ := args.Get(0).([]model.Report)
	return reports, args.Error(1)
}

func (m *MockReportService) GetByID(ctx context.Context, id uuid.UUID) (*model.Report, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Report), args.Error(1)
}

func (m *MockReportService) Resolve(ctx context.Context, id uuid.UUID) (*model.Report, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Report), args.Error(1)
}

func (m *MockReportService) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

// MockAdminService is a mock implementation of AdminService.
type MockAdminService struct {
	mock.Mock
}

func (m *MockAdminService) ListUsers(ctx context.Context) ([]model.User, error) {
	args := m.Called(ctx)
	users, _ := args.Get(0).([]model.User)
	return users, args.Error(1)
}

func (m *MockAdminService) DeleteUser(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockAdminService) ReportedProducts(ctx context.Context) ([]model.Report, error) {
	args := m.Called(ctx)
	reports, _ := args.Get(0).([]model.Report)
	return reports, args.Error(1)
}

func (m *MockAdminService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}
