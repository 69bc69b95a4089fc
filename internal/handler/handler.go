package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"campus-market/internal/auth"
	"campus-market/internal/model"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report field names as clients send them.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
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

// writeMessage writes a {"message": ...} body.
func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, model.MessageResponse{Message: message})
}

// writeError writes an error response with the given status code, error code and message.
func writeError(w http.ResponseWriter, status int, code, message string, logger zerolog.Logger) {
	event := logger.Debug()
	if status >= http.StatusInternalServerError {
		event = logger.Error()
	}
	event.Str("code", code).Str("error", message).Int("status", status).Msg("handler error")
	writeJSON(w, status, model.ErrorResponse{Error: code, Message: message})
}

// statusFor maps a domain error kind to an HTTP status.
func statusFor(kind model.ErrorKind) int {
	switch kind {
	case model.KindUnauthorized:
		return http.StatusUnauthorized
	case model.KindForbidden:
		return http.StatusForbidden
	case model.KindNotFound:
		return http.StatusNotFound
	case model.KindInvalid, model.KindConflict, model.KindInvalidState:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as a JSON error. Domain errors carry their own
// message; anything else is logged and reported with fallback.
func respondError(w http.ResponseWriter, err error, fallback string, logger zerolog.Logger) {
	var de *model.DomainError
	if errors.As(err, &de) {
		writeError(w, statusFor(de.Kind), de.Code, de.Message, logger)
		return
	}
	logger.Error().Err(err).Msg(fallback)
	writeError(w, http.StatusInternalServerError, model.ErrCodeInternalError, fallback, logger)
}

// decodeJSON decodes and validates the request body into dst. It writes the
// error response itself and reports whether the handler may continue.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}, logger zerolog.Logger) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	// An empty body decodes to the zero request and is left to validation.
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "Cuerpo de la solicitud inválido", logger)
		return false
	}
	if err := validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeValidation, validationMessage(err), logger)
		return false
	}
	return true
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Datos inválidos"
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("El campo %s es requerido", fe.Field())
	case "email":
		return fmt.Sprintf("El campo %s debe ser un correo válido", fe.Field())
	default:
		return fmt.Sprintf("El campo %s no es válido", fe.Field())
	}
}

// pathUUID parses a UUID URL parameter, writing a 400 when it is malformed.
func pathUUID(w http.ResponseWriter, r *http.Request, name string, logger zerolog.Logger) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeValidation, "Identificador inválido", logger)
		return uuid.Nil, false
	}
	return id, true
}

// caller returns the authenticated identity, writing a 401 when absent.
func caller(w http.ResponseWriter, r *http.Request, logger zerolog.Logger) (model.Identity, bool) {
	id, ok := auth.IdentityFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, model.ErrTokenRequired.Code, model.ErrTokenRequired.Message, logger)
		return model.Identity{}, false
	}
	return id, true
}

// Health handles GET /health requests.
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}
