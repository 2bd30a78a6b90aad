// Package diagnostic defines the compile-time error kinds of spec §7 and
// the Diagnostic type the pipeline converts them into at the pipeline
// boundary. Nothing is caught inside a pass; a pass returns a *Diagnostic
// (or panics with one, for deeply nested recursive-descent code, which
// frontend.Parse recovers) and the pipeline stops there.
package diagnostic

import "fmt"

// Kind is one of the compile-time error categories of spec §7.
type Kind int

const (
	InvalidSyntax Kind = iota
	SemanticViolation
	TypeViolation
	UnknownError
)

func (k Kind) String() string {
	switch k {
	case InvalidSyntax:
		return "InvalidSyntax"
	case SemanticViolation:
		return "SemanticViolation"
	case TypeViolation:
		return "TypeViolation"
	default:
		return "UnknownError"
	}
}

// Diagnostic is a single compile-time failure: its Kind, a human message,
// and the name/type/site it is about. It implements error so it composes
// with errors.Is/errors.As and with github.com/pkg/errors wraps.
type Diagnostic struct {
	Kind    Kind
	Message string
	Site    string // the offending name or type, e.g. "x", "Box{Int}"
	Cause   error
}

func (d *Diagnostic) Error() string {
	if d.Site != "" {
		return fmt.Sprintf("%s: %s: %s", d.Kind, d.Message, d.Site)
	}
	return fmt.Sprintf("%s: %s", d.Kind, d.Message)
}

func (d *Diagnostic) Unwrap() error { return d.Cause }

func New(kind Kind, site, format string, args ...interface{}) *Diagnostic {
	return &Diagnostic{Kind: kind, Message: fmt.Sprintf(format, args...), Site: site}
}

func Syntax(site, format string, args ...interface{}) *Diagnostic {
	return New(InvalidSyntax, site, format, args...)
}

func Semantic(site, format string, args ...interface{}) *Diagnostic {
	return New(SemanticViolation, site, format, args...)
}

func TypeErr(site, format string, args ...interface{}) *Diagnostic {
	return New(TypeViolation, site, format, args...)
}

// Fatal is the error value internal/vm returns for an unrecoverable
// runtime abort (spec §7 VMFatal). It is returned, not panicked, up
// through vm.Run and pipeline.Execute, and cmd/venom prints it and exits.
type Fatal struct {
	Message string
}

func (f *Fatal) Error() string { return f.Message }
