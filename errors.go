package memtile

import "fmt"

// ConfigErrorCode categorizes a fatal construction-time configuration
// failure (spec.md section 7).
type ConfigErrorCode string

const (
	ErrCodeUnknownTimingParam ConfigErrorCode = "unknown timing parameter"
	ErrCodeTimingOutOfRange   ConfigErrorCode = "timing out of range"
	ErrCodeUnknownPolicy      ConfigErrorCode = "unknown policy"
	ErrCodeInvalidGeometry    ConfigErrorCode = "invalid geometry"
)

// ConfigError is a structured configuration error, grounded on the
// teacher's *Error type (Op/Code/Msg/Inner with errors.Is/As support) but
// scoped to this model's fatal, construction-time failure modes (spec.md
// section 7): an unknown mem_spec timing name, a timing value that
// doesn't fit a u16, an unknown value in a mandatory policy field, or
// geometry that can't be decoded (e.g. a zero bank count).
type ConfigError struct {
	Op    string
	Code  ConfigErrorCode
	Msg   string
	Inner error
}

func (e *ConfigError) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("memtile: %s: %s (%s)", e.Op, e.Msg, e.Code)
	}
	return fmt.Sprintf("memtile: %s: %s", e.Op, e.Code)
}

func (e *ConfigError) Unwrap() error { return e.Inner }

func (e *ConfigError) Is(target error) bool {
	te, ok := target.(*ConfigError)
	if !ok {
		return false
	}
	return e.Code == te.Code
}

func newConfigError(op string, code ConfigErrorCode, msg string) *ConfigError {
	return &ConfigError{Op: op, Code: code, Msg: msg}
}

func wrapConfigError(op string, code ConfigErrorCode, inner error) *ConfigError {
	return &ConfigError{Op: op, Code: code, Msg: inner.Error(), Inner: inner}
}
