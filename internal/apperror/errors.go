package apperror

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidInput solo lo producen las rutas de escritura (create/update)
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound indica que el id solicitado no existe
	ErrNotFound = errors.New("product not found")
	// ErrStoreUnavailable envuelve cualquier fallo del almacenamiento
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrAggregationFailed indica que una de las sub-consultas del reporte falló
	ErrAggregationFailed = errors.New("aggregation failed")
)

// FieldError describe un campo inválido
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError agrupa los campos inválidos de una petición de escritura
type ValidationError struct {
	Message string
	Fields  []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return e.Message + " (" + strings.Join(parts, "; ") + ")"
}

func (e *ValidationError) Is(target error) bool { return target == ErrInvalidInput }

// InvalidInput construye un ValidationError
func InvalidInput(message string, fields ...FieldError) error {
	return &ValidationError{Message: message, Fields: fields}
}

// StoreError envuelve un error del driver conservando la operación que falló.
// errors.Is(err, ErrStoreUnavailable) es siempre true; Unwrap expone el error original
// para que context.DeadlineExceeded siga siendo detectable.
type StoreError struct {
	Op      string
	Err     error
	Timeout bool
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrStoreUnavailable, e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

func (e *StoreError) Is(target error) bool { return target == ErrStoreUnavailable }

// AggregationError indica qué etapa del reporte falló
type AggregationError struct {
	Stage string
	Err   error
}

func (e *AggregationError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrAggregationFailed, e.Stage, e.Err)
}

func (e *AggregationError) Unwrap() error { return e.Err }

func (e *AggregationError) Is(target error) bool { return target == ErrAggregationFailed }
