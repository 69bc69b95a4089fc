package model

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error   string `json:"error,omitempty"`
	Message string `json:"message"`
}

// MessageResponse is the body of successful operations that only report a message.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorKind classifies a DomainError so the transport layer can pick a status code.
type ErrorKind int

const (
	KindInvalid ErrorKind = iota + 1
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
	KindInvalidState
	KindInternal
)

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON       = "INVALID_JSON"
	ErrCodeValidation        = "VALIDATION_FAILED"
	ErrCodeUnauthorised      = "UNAUTHORIZED"
	ErrCodeForbidden         = "FORBIDDEN"
	ErrCodeUserExists        = "USER_EXISTS"
	ErrCodeBadCredentials    = "BAD_CREDENTIALS"
	ErrCodeUserNotFound      = "USER_NOT_FOUND"
	ErrCodeProductNotFound   = "PRODUCT_NOT_FOUND"
	ErrCodeCategoryNotFound  = "CATEGORY_NOT_FOUND"
	ErrCodeCategoryExists    = "CATEGORY_EXISTS"
	ErrCodeCategoryInUse     = "CATEGORY_IN_USE"
	ErrCodeEmptyCart         = "EMPTY_CART"
	ErrCodeEmptyOrder        = "EMPTY_ORDER"
	ErrCodeOrderNotFound     = "ORDER_NOT_FOUND"
	ErrCodeOrderLineNotFound = "ORDER_LINE_NOT_FOUND"
	ErrCodeUnitPriceLocked   = "UNIT_PRICE_IMMUTABLE"
	ErrCodeOrderNotPending   = "ORDER_NOT_PENDING"
	ErrCodeAmountMismatch    = "AMOUNT_MISMATCH"
	ErrCodePaymentNotFound   = "PAYMENT_NOT_FOUND"
	ErrCodeReportNotFound    = "REPORT_NOT_FOUND"
	ErrCodeInvalidQuantity   = "INVALID_QUANTITY"
	ErrCodeInvalidPrice      = "INVALID_PRICE"
	ErrCodeInvalidStatus     = "INVALID_STATUS"
	ErrCodeFileRequired      = "FILE_REQUIRED"
	ErrCodeFileKeyRequired   = "FILE_KEY_REQUIRED"
	ErrCodeFileTooLarge      = "FILE_TOO_LARGE"
	ErrCodePaymentCompleted  = "PAYMENT_COMPLETED"
	ErrCodePaymentInProgress = "PAYMENT_IN_PROGRESS"
	ErrCodeOrderAlreadyPaid  = "ORDER_ALREADY_PAID"
	ErrCodeStorageDisabled   = "STORAGE_DISABLED"
	ErrCodeInternalError     = "INTERNAL_ERROR"
)

// Domain errors for business logic
type DomainError struct {
	Kind    ErrorKind
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(kind ErrorKind, code, message string) *DomainError {
	return &DomainError{
		Kind:    kind,
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrTokenRequired      = NewDomainError(KindUnauthorized, ErrCodeUnauthorised, "Acceso no autorizado. Token requerido.")
	ErrInvalidToken       = NewDomainError(KindUnauthorized, ErrCodeUnauthorised, "Token inválido.")
	ErrForbidden          = NewDomainError(KindForbidden, ErrCodeForbidden, "No tienes permisos para realizar esta acción.")
	ErrUserExists         = NewDomainError(KindConflict, ErrCodeUserExists, "El usuario ya está registrado")
	ErrInvalidCredentials = NewDomainError(KindInvalid, ErrCodeBadCredentials, "Credenciales incorrectas")
	ErrUserNotFound       = NewDomainError(KindNotFound, ErrCodeUserNotFound, "Usuario no encontrado")
	ErrProductNotFound    = NewDomainError(KindNotFound, ErrCodeProductNotFound, "Producto no encontrado")
	ErrCategoryNotFound   = NewDomainError(KindNotFound, ErrCodeCategoryNotFound, "Categoría no encontrada")
	ErrCategoryExists     = NewDomainError(KindConflict, ErrCodeCategoryExists, "La categoría ya existe")
	ErrCategoryInUse      = NewDomainError(KindConflict, ErrCodeCategoryInUse, "La categoría tiene productos asociados")
	ErrEmptyCart          = NewDomainError(KindInvalidState, ErrCodeEmptyCart, "Carrito vacío")
	ErrEmptyOrder         = NewDomainError(KindInvalid, ErrCodeEmptyOrder, "No hay productos en la orden")
	ErrOrderNotFound      = NewDomainError(KindNotFound, ErrCodeOrderNotFound, "Orden no encontrada")
	ErrOrderLineNotFound  = NewDomainError(KindNotFound, ErrCodeOrderLineNotFound, "Detalle de orden no encontrado")
	ErrUnitPriceImmutable = NewDomainError(KindInvalid, ErrCodeUnitPriceLocked, "El precio unitario no puede modificarse")
	ErrOrderNotPending    = NewDomainError(KindInvalidState, ErrCodeOrderNotPending, "La orden no está pendiente de pago")
	ErrAmountMismatch     = NewDomainError(KindInvalidState, ErrCodeAmountMismatch, "El monto no coincide con el total de la orden")
	ErrPaymentNotFound    = NewDomainError(KindNotFound, ErrCodePaymentNotFound, "Pago no encontrado")
	ErrReportNotFound     = NewDomainError(KindNotFound, ErrCodeReportNotFound, "Reporte no encontrado")
	ErrInvalidQuantity    = NewDomainError(KindInvalid, ErrCodeInvalidQuantity, "La cantidad debe ser mayor a cero")
	ErrInvalidPrice       = NewDomainError(KindInvalid, ErrCodeInvalidPrice, "El precio no puede ser negativo")
	ErrInvalidStatus      = NewDomainError(KindInvalid, ErrCodeInvalidStatus, "Estado no válido")
	ErrFileRequired       = NewDomainError(KindInvalid, ErrCodeFileRequired, "No se ha subido ningún archivo")
	ErrFileKeyRequired    = NewDomainError(KindInvalid, ErrCodeFileKeyRequired, "La clave del archivo es requerida")
	ErrPaymentCompleted   = NewDomainError(KindInvalidState, ErrCodePaymentCompleted, "No se puede eliminar un pago completado")
	ErrPaymentInProgress  = NewDomainError(KindConflict, ErrCodePaymentInProgress, "Ya hay un pago en curso para esta orden")
	ErrOrderAlreadyPaid   = NewDomainError(KindInvalidState, ErrCodeOrderAlreadyPaid, "La orden ya fue pagada")
	ErrInternal           = NewDomainError(KindInternal, ErrCodeInternalError, "Error en el servidor")
	ErrStorageDisabled    = NewDomainError(KindInvalidState, ErrCodeStorageDisabled, "El almacenamiento de archivos no está configurado")
)
