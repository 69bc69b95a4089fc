package router

import (
	"net/http"

	"campus-market/internal/auth"
	"campus-market/internal/handler"
	"campus-market/internal/metrics"
	"campus-market/internal/middleware"
	"campus-market/internal/model"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Policy is the access rule applied to a route before its handler runs.
type Policy int

const (
	Public Policy = iota
	Authenticated
	Admin
)

// Handlers groups every HTTP handler the router mounts.
type Handlers struct {
	Auth       *handler.AuthHandler
	Products   *handler.ProductHandler
	Categories *handler.CategoryHandler
	Cart       *handler.CartHandler
	Orders     *handler.OrderHandler
	Payments   *handler.PaymentHandler
	Reports    *handler.ReportHandler
	Admin      *handler.AdminHandler
	Files      *handler.FileHandler
	// Realtime serves the WebSocket endpoint; nil leaves /ws unmounted.
	Realtime http.Handler
}

type route struct {
	method  string
	pattern string
	policy  Policy
	handler http.HandlerFunc
}

func routes(h Handlers) []route {
	return []route{
		{http.MethodPost, "/auth/register", Public, h.Auth.Register},
		{http.MethodPost, "/auth/login", Public, h.Auth.Login},
		{http.MethodPost, "/auth/logout", Authenticated, h.Auth.Logout},
		{http.MethodGet, "/auth/perfil", Authenticated, h.Auth.Profile},
		{http.MethodPatch, "/auth/perfil", Authenticated, h.Auth.UpdateProfile},
		{http.MethodDelete, "/auth/eliminar-cuenta", Authenticated, h.Auth.DeleteAccount},

		{http.MethodGet, "/productos", Public, h.Products.List},
		{http.MethodGet, "/productos/busqueda", Public, h.Products.Search},
		{http.MethodGet, "/productos/categoria/{categoria}", Public, h.Products.ByCategory},
		{http.MethodGet, "/productos/{id}", Public, h.Products.GetByID},
		{http.MethodPost, "/productos", Authenticated, h.Products.Create},
		{http.MethodPatch, "/productos/{id}", Authenticated, h.Products.Update},
		{http.MethodDelete, "/productos/{id}", Authenticated, h.Products.Delete},

		{http.MethodPost, "/categorias", Admin, h.Categories.Create},
		{http.MethodGet, "/categorias", Public, h.Categories.List},
		{http.MethodGet, "/categorias/{id}", Public, h.Categories.GetByID},
		{http.MethodPatch, "/categorias/{id}", Admin, h.Categories.Rename},
		{http.MethodDelete, "/categorias/{id}", Admin, h.Categories.Delete},

		{http.MethodGet, "/carrito", Authenticated, h.Cart.View},
		{http.MethodPost, "/carrito/agregar", Authenticated, h.Cart.Add},
		{http.MethodDelete, "/carrito/eliminar/{id}", Authenticated, h.Cart.Remove},
		{http.MethodPost, "/carrito/comprar", Authenticated, h.Cart.Checkout},
		{http.MethodGet, "/carrito/historial", Authenticated, h.Cart.History},

		{http.MethodPost, "/ordenes", Authenticated, h.Orders.Create},
		{http.MethodGet, "/ordenes/usuario", Authenticated, h.Orders.ListMine},
		{http.MethodGet, "/ordenes/admin", Admin, h.Orders.ListAll},
		{http.MethodGet, "/ordenes/{id}", Authenticated, h.Orders.GetByID},
		{http.MethodPatch, "/ordenes/{id}", Authenticated, h.Orders.Update},
		{http.MethodDelete, "/ordenes/{id}", Authenticated, h.Orders.Delete},

		{http.MethodPost, "/detalles-orden", Admin, h.Orders.CreateLine},
		{http.MethodGet, "/detalles-orden/orden/{orden_id}", Authenticated, h.Orders.ListLines},
		{http.MethodGet, "/detalles-orden/{id}", Authenticated, h.Orders.GetLine},
		{http.MethodPatch, "/detalles-orden/{id}", Admin, h.Orders.UpdateLine},
		{http.MethodDelete, "/detalles-orden/{id}", Admin, h.Orders.DeleteLine},

		{http.MethodPost, "/pagos/checkout", Authenticated, h.Payments.Checkout},
		{http.MethodGet, "/pagos/confirmar/{id}", Authenticated, h.Payments.Confirm},
		{http.MethodGet, "/pagos/historial", Authenticated, h.Payments.History},
		{http.MethodGet, "/pagos/{id}", Authenticated, h.Payments.GetByID},
		{http.MethodDelete, "/pagos/{id}", Authenticated, h.Payments.Delete},

		{http.MethodPost, "/reportes", Authenticated, h.Reports.Create},
		{http.MethodGet, "/reportes", Admin, h.Reports.List},
		{http.MethodGet, "/reportes/{id}", Admin, h.Reports.GetByID},
		{http.MethodPatch, "/reportes/{id}/resolver", Admin, h.Reports.Resolve},
		{http.MethodDelete, "/reportes/{id}", Admin, h.Reports.Delete},

		{http.MethodGet, "/admin/usuarios", Admin, h.Admin.ListUsers},
		{http.MethodDelete, "/admin/usuarios/{id}", Admin, h.Admin.DeleteUser},
		{http.MethodGet, "/admin/productos-reportados", Admin, h.Admin.ReportedProducts},
		{http.MethodDelete, "/admin/productos/{id}", Admin, h.Admin.DeleteProduct},

		{http.MethodPost, "/files/upload-profile", Authenticated, h.Files.UploadProfile},
		{http.MethodPost, "/files/upload-product/{productId}", Authenticated, h.Files.UploadProduct},
		{http.MethodDelete, "/files/delete-file", Authenticated, h.Files.Delete},
		{http.MethodGet, "/files/signed-url", Authenticated, h.Files.SignedURL},
	}
}

// New creates a new HTTP router with all routes and middleware configured.
// m may be nil, in which case /metrics is not mounted.
func New(h Handlers, verifier auth.TokenVerifier, m *metrics.Metrics, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	// Apply middleware in order: Recovery -> RequestID -> Logging -> Metrics -> CORS
	r.Use(
		middleware.Recovery(logger),
		middleware.RequestID,
		middleware.Logging(logger),
		m.Middleware,
		middleware.CORS,
	)

	authenticate := middleware.Authenticate(verifier, logger)
	requireAdmin := middleware.RequireRole(model.RoleAdmin, logger)

	// Health check endpoint (no authentication required)
	r.Get("/health", handler.Health)
	if m != nil {
		r.Method(http.MethodGet, "/metrics", m.Handler())
	}
	if h.Realtime != nil {
		r.Method(http.MethodGet, "/ws", h.Realtime)
	}

	for _, rt := range routes(h) {
		switch rt.policy {
		case Public:
			r.Method(rt.method, rt.pattern, rt.handler)
		case Authenticated:
			r.With(authenticate).Method(rt.method, rt.pattern, rt.handler)
		case Admin:
			r.With(authenticate, requireAdmin).Method(rt.method, rt.pattern, rt.handler)
		}
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"Ruta no encontrada"}`))
	})

	return r
}
