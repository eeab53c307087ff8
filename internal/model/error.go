package model

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error    string `json:"error"`
	Message  string `json:"message"`
	Redirect string `json:"redirect,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON      = "INVALID_JSON"
	ErrCodeValidation       = "VALIDATION_FAILED"
	ErrCodeProductNotFound  = "PRODUCT_NOT_FOUND"
	ErrCodeOrderNotFound    = "ORDER_NOT_FOUND"
	ErrCodeUserNotFound     = "USER_NOT_FOUND"
	ErrCodeEmptyCart        = "EMPTY_CART"
	ErrCodeIdentityRequired = "IDENTITY_REQUIRED"
	ErrCodeInvalidStatus    = "INVALID_STATUS"
	ErrCodeStatusConflict   = "STATUS_CONFLICT"
	ErrCodeCommentExists    = "COMMENT_EXISTS"
	ErrCodeTotalMismatch    = "TOTAL_MISMATCH"
	ErrCodeInvalidQuantity  = "INVALID_QUANTITY"
	ErrCodeCartIndex        = "CART_INDEX_OUT_OF_RANGE"
	ErrCodeUnauthorised     = "UNAUTHORIZED"
	ErrCodeForbidden        = "FORBIDDEN"
	ErrCodeInternalError    = "INTERNAL_ERROR"
)

// Domain errors for business logic
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrProductNameRequired = NewDomainError(ErrCodeValidation, "El nombre del producto es obligatorio")
	ErrNegativePrice       = NewDomainError(ErrCodeValidation, "El precio no puede ser negativo")
	ErrProductNotFound     = NewDomainError(ErrCodeProductNotFound, "Producto no encontrado")
	ErrOrderNotFound       = NewDomainError(ErrCodeOrderNotFound, "Pedido no encontrado")
	ErrUserNotFound        = NewDomainError(ErrCodeUserNotFound, "Usuario no encontrado")
	ErrEmptyCart           = NewDomainError(ErrCodeEmptyCart, "El carrito está vacío")
	ErrIdentityRequired    = NewDomainError(ErrCodeIdentityRequired, "Debes iniciar sesión para continuar")
	ErrInvalidStatus       = NewDomainError(ErrCodeInvalidStatus, "Estado de pedido inválido")
	ErrStatusConflict      = NewDomainError(ErrCodeStatusConflict, "El estado del pedido cambió, recarga e intenta de nuevo")
	ErrCommentExists       = NewDomainError(ErrCodeCommentExists, "Este pedido ya tiene un comentario")
	ErrCommentRequired     = NewDomainError(ErrCodeValidation, "El comentario no puede estar vacío")
	ErrTotalMismatch       = NewDomainError(ErrCodeTotalMismatch, "El total no coincide con la suma de los productos")
	ErrInvalidQuantity     = NewDomainError(ErrCodeInvalidQuantity, "La cantidad debe ser mayor que cero")
	ErrCartIndex           = NewDomainError(ErrCodeCartIndex, "El producto no está en el carrito")
	ErrNotOrderOwner       = NewDomainError(ErrCodeForbidden, "Este pedido no te pertenece")
	ErrEmailTaken          = NewDomainError(ErrCodeValidation, "Este correo ya está registrado")
	ErrNotCustomer         = NewDomainError(ErrCodeForbidden, "Este usuario no es un cliente")
	ErrImageEmpty          = NewDomainError(ErrCodeValidation, "La imagen está vacía")
	ErrImageTooLarge       = NewDomainError(ErrCodeValidation, "La imagen supera 5 MB")
)
