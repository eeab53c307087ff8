package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"

	"restaurant-orders/internal/auth"
	"restaurant-orders/internal/identity"
	"restaurant-orders/internal/model"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" || tag == "-" {
			return f.Name
		}
		return tag
	})
	return v
}

var errInvalidJSON = model.NewDomainError(model.ErrCodeInvalidJSON, "El cuerpo de la solicitud no es JSON válido")

// statusByCode maps domain error codes to HTTP statuses.
var statusByCode = map[string]int{
	model.ErrCodeInvalidJSON:      http.StatusBadRequest,
	model.ErrCodeValidation:       http.StatusBadRequest,
	model.ErrCodeProductNotFound:  http.StatusNotFound,
	model.ErrCodeOrderNotFound:    http.StatusNotFound,
	model.ErrCodeUserNotFound:     http.StatusNotFound,
	model.ErrCodeEmptyCart:        http.StatusBadRequest,
	model.ErrCodeIdentityRequired: http.StatusUnauthorized,
	model.ErrCodeInvalidStatus:    http.StatusBadRequest,
	model.ErrCodeStatusConflict:   http.StatusConflict,
	model.ErrCodeCommentExists:    http.StatusConflict,
	model.ErrCodeTotalMismatch:    http.StatusBadRequest,
	model.ErrCodeInvalidQuantity:  http.StatusBadRequest,
	model.ErrCodeCartIndex:        http.StatusNotFound,
	model.ErrCodeUnauthorised:     http.StatusUnauthorized,
	model.ErrCodeForbidden:        http.StatusForbidden,
}

// statusByAuthCode maps authentication backend codes to HTTP statuses. Unlisted codes are 401.
var statusByAuthCode = map[string]int{
	auth.CodeEmailAlreadyInUse:   http.StatusConflict,
	auth.CodeInvalidEmail:        http.StatusBadRequest,
	auth.CodeWeakPassword:        http.StatusBadRequest,
	auth.CodeOperationNotAllowed: http.StatusForbidden,
	auth.CodeUserDisabled:        http.StatusForbidden,
	auth.CodeTooManyRequests:     http.StatusTooManyRequests,
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but don't expose it to the client
		return
	}
}

// writeError writes an error response with the given status code, code and message.
func writeError(w http.ResponseWriter, status int, code, message string, logger zerolog.Logger) {
	event := logger.Warn()
	if status >= http.StatusInternalServerError {
		event = logger.Error()
	}
	event.Str("code", code).Str("error", message).Int("status", status).Msg("handler error")
	writeJSON(w, status, model.ErrorResponse{Error: code, Message: message})
}

// respondError translates err into an error response. Domain and authentication errors keep
// their message; anything else is reported as an internal error.
func respondError(w http.ResponseWriter, err error, logger zerolog.Logger) {
	var domainErr *model.DomainError
	if errors.As(err, &domainErr) {
		status, ok := statusByCode[domainErr.Code]
		if !ok {
			status = http.StatusInternalServerError
		}
		writeError(w, status, domainErr.Code, domainErr.Message, logger)
		return
	}

	if code := auth.CodeOf(err); code != "" {
		status, ok := statusByAuthCode[code]
		if !ok {
			status = http.StatusUnauthorized
		}
		writeError(w, status, code, auth.Message(code), logger)
		return
	}

	logger.Error().Err(err).Msg("unexpected error")
	writeError(w, http.StatusInternalServerError, model.ErrCodeInternalError, "Ocurrió un error inesperado", logger)
}

// decodeJSON decodes the request body into dst and validates its struct tags.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := decoder.Decode(dst); err != nil {
		return errInvalidJSON
	}
	if err := validate.Struct(dst); err != nil {
		return validationError(err)
	}
	return nil
}

func validationError(err error) *model.DomainError {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return model.NewDomainError(model.ErrCodeValidation, "Datos inválidos")
	}
	fields := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		fields = append(fields, fe.Field())
	}
	return model.NewDomainError(model.ErrCodeValidation, "Datos inválidos: "+strings.Join(fields, ", "))
}

// withValidationMessage replaces the message of a validation failure. Other errors pass through.
func withValidationMessage(err error, message string) error {
	var domainErr *model.DomainError
	if errors.As(err, &domainErr) && domainErr.Code == model.ErrCodeValidation {
		return model.NewDomainError(model.ErrCodeValidation, message)
	}
	return err
}

// currentPrincipal waits for the request session to resolve and returns its principal, or
// nil when anonymous or when the request is cancelled first.
func currentPrincipal(r *http.Request) identity.Principal {
	s := identity.FromContext(r.Context())
	if s == nil {
		return nil
	}
	p, err := s.WaitResolved(r.Context())
	if err != nil {
		return nil
	}
	return p
}
