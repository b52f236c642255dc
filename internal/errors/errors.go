// Package errors provides the engine's typed error taxonomy.
//
// Every error surfaced to a serving-layer client carries a stable Code,
// a human Message, and an optional Hint naming a concrete recovery step.
package errors

import (
	"fmt"
	"runtime"
	"strings"
)

// ErrorType represents the category of error.
type ErrorType int

const (
	// ErrorTypeConfig - missing or invalid configuration.
	ErrorTypeConfig ErrorType = iota
	// ErrorTypeValidation - invalid input data.
	ErrorTypeValidation
	// ErrorTypeDatabase - database connection or query failures.
	ErrorTypeDatabase
	// ErrorTypeNetwork - network connectivity issues.
	ErrorTypeNetwork
	// ErrorTypeFileSystem - file I/O failures.
	ErrorTypeFileSystem
	// ErrorTypeExternal - external service failures.
	ErrorTypeExternal
	// ErrorTypeInternal - unexpected internal state.
	ErrorTypeInternal
	// ErrorTypeSecurity - security-related failures.
	ErrorTypeSecurity

	// ErrorTypeInvalidInput - malformed request, unknown tool, out-of-range option.
	ErrorTypeInvalidInput
	// ErrorTypeNotFound - missing node, resource, or file.
	ErrorTypeNotFound
	// ErrorTypeStale - on-disk Genome incompatible or hash mismatch.
	ErrorTypeStale
	// ErrorTypeContractViolation - Agent Contract rule breached by the session.
	ErrorTypeContractViolation
	// ErrorTypeAnalysisError - one or more analyzers failed.
	ErrorTypeAnalysisError
	// ErrorTypeInvariantViolation - merge produced an inconsistent Genome.
	ErrorTypeInvariantViolation
	// ErrorTypeIO - general I/O failure distinct from FileSystem (e.g. export targets).
	ErrorTypeIO
	// ErrorTypeTimeout - deadline elapsed mid-operation.
	ErrorTypeTimeout
	// ErrorTypeCancelled - operation was cooperatively cancelled.
	ErrorTypeCancelled
)

// Severity represents how critical an error is.
type Severity int

const (
	// SeverityLow - can continue with degraded functionality.
	SeverityLow Severity = iota
	// SeverityMedium - should be addressed but not fatal.
	SeverityMedium
	// SeverityHigh - significant issue, may impact functionality.
	SeverityHigh
	// SeverityCritical - must be addressed, stops execution.
	SeverityCritical
)

// Error represents a structured error with context.
type Error struct {
	Type       ErrorType
	Severity   Severity
	Message    string
	Cause      error
	Context    map[string]interface{}
	StackTrace string
	Code       string // stable machine-readable code, e.g. "missing-load"
	Hint       string // concrete recovery step, e.g. "run `scan incremental=true`"
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error.
func (e *Error) WithContext(key string, value interface{}) *Error {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithCode sets the stable machine-readable code.
func (e *Error) WithCode(code string) *Error {
	e.Code = code
	return e
}

// WithHint sets the recovery-step hint.
func (e *Error) WithHint(hint string) *Error {
	e.Hint = hint
	return e
}

// Is checks if this error matches the target error type.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// IsFatal returns true if this error should stop execution.
func (e *Error) IsFatal() bool {
	return e.Severity == SeverityCritical
}

// DetailedString returns a detailed error message with context.
func (e *Error) DetailedString() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("[%s] [%s] %s\n",
		severityString(e.Severity),
		typeString(e.Type),
		e.Message))

	if e.Code != "" {
		sb.WriteString(fmt.Sprintf("Code: %s\n", e.Code))
	}
	if e.Cause != nil {
		sb.WriteString(fmt.Sprintf("Caused by: %v\n", e.Cause))
	}
	if e.Hint != "" {
		sb.WriteString(fmt.Sprintf("Hint: %s\n", e.Hint))
	}
	if len(e.Context) > 0 {
		sb.WriteString("Context:\n")
		for k, v := range e.Context {
			sb.WriteString(fmt.Sprintf("  %s: %v\n", k, v))
		}
	}
	if e.StackTrace != "" {
		sb.WriteString(fmt.Sprintf("Stack trace:\n%s\n", e.StackTrace))
	}

	return sb.String()
}

func typeString(t ErrorType) string {
	switch t {
	case ErrorTypeConfig:
		return "CONFIG"
	case ErrorTypeValidation:
		return "VALIDATION"
	case ErrorTypeDatabase:
		return "DATABASE"
	case ErrorTypeNetwork:
		return "NETWORK"
	case ErrorTypeFileSystem:
		return "FILESYSTEM"
	case ErrorTypeExternal:
		return "EXTERNAL"
	case ErrorTypeInternal:
		return "INTERNAL"
	case ErrorTypeSecurity:
		return "SECURITY"
	case ErrorTypeInvalidInput:
		return "INVALID_INPUT"
	case ErrorTypeNotFound:
		return "NOT_FOUND"
	case ErrorTypeStale:
		return "STALE"
	case ErrorTypeContractViolation:
		return "CONTRACT_VIOLATION"
	case ErrorTypeAnalysisError:
		return "ANALYSIS_ERROR"
	case ErrorTypeInvariantViolation:
		return "INVARIANT_VIOLATION"
	case ErrorTypeIO:
		return "IO_ERROR"
	case ErrorTypeTimeout:
		return "TIMEOUT"
	case ErrorTypeCancelled:
		return "CANCELLED"
	default:
		return "UNKNOWN"
	}
}

func severityString(s Severity) string {
	switch s {
	case SeverityLow:
		return "LOW"
	case SeverityMedium:
		return "MEDIUM"
	case SeverityHigh:
		return "HIGH"
	case SeverityCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

func captureStackTrace(skip int) string {
	var sb strings.Builder
	for i := skip; i < skip+10; i++ {
		pc, file, line, ok := runtime.Caller(i)
		if !ok {
			break
		}
		fn := runtime.FuncForPC(pc)
		if fn == nil {
			break
		}
		sb.WriteString(fmt.Sprintf("  %s:%d %s\n", file, line, fn.Name()))
	}
	return sb.String()
}

// New creates a new error with the given type, severity, and message.
func New(errType ErrorType, severity Severity, message string) *Error {
	return &Error{
		Type:       errType,
		Severity:   severity,
		Message:    message,
		Context:    make(map[string]interface{}),
		StackTrace: captureStackTrace(2),
	}
}

// Wrap wraps an existing error with additional context.
func Wrap(err error, errType ErrorType, severity Severity, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{
		Type:       errType,
		Severity:   severity,
		Message:    message,
		Cause:      err,
		Context:    make(map[string]interface{}),
		StackTrace: captureStackTrace(2),
	}
}

// Convenience constructors for common error types.

func ConfigError(message string) *Error  { return New(ErrorTypeConfig, SeverityCritical, message) }
func ConfigErrorf(format string, args ...interface{}) *Error {
	return New(ErrorTypeConfig, SeverityCritical, fmt.Sprintf(format, args...))
}

func ValidationError(message string) *Error { return New(ErrorTypeValidation, SeverityHigh, message) }
func ValidationErrorf(format string, args ...interface{}) *Error {
	return New(ErrorTypeValidation, SeverityHigh, fmt.Sprintf(format, args...))
}

func DatabaseError(err error, message string) *Error {
	return Wrap(err, ErrorTypeDatabase, SeverityCritical, message)
}
func DatabaseErrorf(err error, format string, args ...interface{}) *Error {
	return Wrap(err, ErrorTypeDatabase, SeverityCritical, fmt.Sprintf(format, args...))
}

func NetworkError(err error, message string) *Error {
	return Wrap(err, ErrorTypeNetwork, SeverityHigh, message)
}

func FileSystemError(err error, message string) *Error {
	return Wrap(err, ErrorTypeFileSystem, SeverityHigh, message)
}

func ExternalError(err error, message string) *Error {
	return Wrap(err, ErrorTypeExternal, SeverityMedium, message)
}

func InternalError(message string) *Error { return New(ErrorTypeInternal, SeverityCritical, message) }
func InternalErrorf(format string, args ...interface{}) *Error {
	return New(ErrorTypeInternal, SeverityCritical, fmt.Sprintf(format, args...))
}

// InvalidInput creates an InvalidInput error with a code.
func InvalidInput(code, message string) *Error {
	return New(ErrorTypeInvalidInput, SeverityHigh, message).WithCode(code)
}

// NotFound creates a NotFound error with a code.
func NotFound(code, message string) *Error {
	return New(ErrorTypeNotFound, SeverityMedium, message).WithCode(code)
}

// Stale creates a Stale error with a code and hint.
func Stale(code, message, hint string) *Error {
	return New(ErrorTypeStale, SeverityHigh, message).WithCode(code).WithHint(hint)
}

// ContractViolation creates a ContractViolation error with a code and hint.
func ContractViolation(code, message, hint string) *Error {
	return New(ErrorTypeContractViolation, SeverityHigh, message).WithCode(code).WithHint(hint)
}

// AnalysisError creates an AnalysisError error with the "analysis-error" code.
func AnalysisError(message string) *Error {
	return New(ErrorTypeAnalysisError, SeverityMedium, message).WithCode("analysis-error")
}

// InvariantViolation creates an error naming the failing invariant and offending id.
func InvariantViolation(invariant, offendingID string) *Error {
	return New(ErrorTypeInvariantViolation, SeverityCritical,
		fmt.Sprintf("invariant violated: %s (id=%s)", invariant, offendingID)).
		WithCode("invariant-violation").
		WithContext("invariant", invariant).
		WithContext("id", offendingID)
}

// IOError wraps a general I/O failure.
func IOError(err error, message string) *Error {
	return Wrap(err, ErrorTypeIO, SeverityHigh, message).WithCode("io-error")
}

// TimeoutError creates a Timeout error.
func TimeoutError(message string) *Error {
	return New(ErrorTypeTimeout, SeverityMedium, message).WithCode("timeout")
}

// CancelledError creates a Cancelled error.
func CancelledError(message string) *Error {
	return New(ErrorTypeCancelled, SeverityLow, message).WithCode("cancelled")
}

// IsFatal checks if an error is fatal (should stop execution).
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	if e, ok := err.(*Error); ok {
		return e.IsFatal()
	}
	return false
}

// GetSeverity returns the severity of an error.
func GetSeverity(err error) Severity {
	if err == nil {
		return SeverityLow
	}
	if e, ok := err.(*Error); ok {
		return e.Severity
	}
	return SeverityMedium
}

// GetType returns the type of an error.
func GetType(err error) ErrorType {
	if err == nil {
		return ErrorTypeInternal
	}
	if e, ok := err.(*Error); ok {
		return e.Type
	}
	return ErrorTypeInternal
}

// ExitCode maps an error's type to the thin driver's exit code contract.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	e, ok := err.(*Error)
	if !ok {
		return 1
	}
	switch e.Type {
	case ErrorTypeInvalidInput, ErrorTypeValidation, ErrorTypeConfig:
		return 2
	case ErrorTypeInvariantViolation:
		return 3
	case ErrorTypeAnalysisError:
		return 4
	case ErrorTypeIO, ErrorTypeFileSystem, ErrorTypeDatabase, ErrorTypeNetwork:
		return 5
	case ErrorTypeContractViolation:
		return 64
	default:
		return 1
	}
}
