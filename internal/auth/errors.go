package auth

import "errors"

// Backend error codes. They mirror the codes clients already know how to display.
const (
	CodeEmailAlreadyInUse   = "auth/email-already-in-use"
	CodeInvalidEmail        = "auth/invalid-email"
	CodeOperationNotAllowed = "auth/operation-not-allowed"
	CodeWeakPassword        = "auth/weak-password"
	CodeUserDisabled        = "auth/user-disabled"
	CodeUserNotFound        = "auth/user-not-found"
	CodeWrongPassword       = "auth/wrong-password"
	CodeInvalidCredential   = "auth/invalid-credential"
	CodeTooManyRequests     = "auth/too-many-requests"
)

var messages = map[string]string{
	CodeEmailAlreadyInUse:   "Este correo ya está registrado",
	CodeInvalidEmail:        "Correo inválido",
	CodeOperationNotAllowed: "Operación no permitida",
	CodeWeakPassword:        "La contraseña es muy débil (mín. 6 caracteres)",
	CodeUserDisabled:        "Usuario deshabilitado",
	CodeUserNotFound:        "Usuario no encontrado",
	CodeWrongPassword:       "Contraseña incorrecta",
	CodeInvalidCredential:   "Credenciales inválidas",
	CodeTooManyRequests:     "Demasiados intentos de acceso. Intenta más tarde",
}

// Error is an authentication failure tagged with a backend code.
type Error struct {
	Code string
}

func (e *Error) Error() string {
	return Message(e.Code)
}

func newError(code string) *Error {
	return &Error{Code: code}
}

// Message translates a backend code into the user-facing text. Unknown codes are passed
// through with a generic prefix.
func Message(code string) string {
	if msg, ok := messages[code]; ok {
		return msg
	}
	return "Error de autenticación: " + code
}

// CodeOf returns the backend code carried by err, or "" when err is not an *Error.
func CodeOf(err error) string {
	var authErr *Error
	if errors.As(err, &authErr) {
		return authErr.Code
	}
	return ""
}

// ErrInvalidToken is returned when an access token is malformed, expired or revoked.
var ErrInvalidToken = errors.New("invalid or expired session token")
