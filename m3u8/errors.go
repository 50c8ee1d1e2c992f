package m3u8

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies an Error.
type ErrorKind int

const (
	EncodingError ErrorKind = iota + 1
	FormatError
	SyntaxError
	ValueError
	StructuralError
	ValidationError
)

// Sentinels matched by errors.Is for each ErrorKind
var (
	ErrEncoding   = errors.New("encoding error")
	ErrFormat     = errors.New("format error")
	ErrSyntax     = errors.New("syntax error")
	ErrValue      = errors.New("value error")
	ErrStructural = errors.New("structural error")
	ErrValidation = errors.New("validation error")
)

func (k ErrorKind) sentinel() error {
	switch k {
	case EncodingError:
		return ErrEncoding
	case FormatError:
		return ErrFormat
	case SyntaxError:
		return ErrSyntax
	case ValueError:
		return ErrValue
	case StructuralError:
		return ErrStructural
	case ValidationError:
		return ErrValidation
	}
	return nil
}

func (k ErrorKind) String() string {
	if err := k.sentinel(); err != nil {
		return err.Error()
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Error describes a problem found in a playlist. Every kind except
// ValidationError aborts the parse.
type Error struct {
	Kind  ErrorKind
	Line  int    // 1-based line number, 0 if unknown
	Tag   string // tag name without the leading '#', if any
	Field string // attribute or scalar field, if any
	Msg   string
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	if e.Line > 0 {
		fmt.Fprintf(&b, " on line %d", e.Line)
	}
	b.WriteString(": ")
	if e.Tag != "" {
		b.WriteString(e.Tag)
		if e.Field != "" {
			b.WriteString(" " + e.Field)
		}
		b.WriteString(": ")
	}
	b.WriteString(e.Msg)
	return b.String()
}

// Unwrap makes errors.Is(err, ErrValue) and friends work.
func (e *Error) Unwrap() error {
	return e.Kind.sentinel()
}

func newError(kind ErrorKind, tag, field, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Tag: tag, Field: field, Msg: fmt.Sprintf(format, args...)}
}

// Diagnostics is the list of soft validation failures for a playlist.
type Diagnostics []*Error

func (d Diagnostics) Error() string {
	switch len(d) {
	case 0:
		return "no diagnostics"
	case 1:
		return d[0].Error()
	}
	msgs := make([]string, len(d))
	for i, e := range d {
		msgs[i] = e.Error()
	}
	return fmt.Sprintf("%d validation errors: %s", len(d), strings.Join(msgs, "; "))
}

// Unwrap exposes the individual entries to errors.Is and errors.As.
func (d Diagnostics) Unwrap() []error {
	errs := make([]error, len(d))
	for i, e := range d {
		errs[i] = e
	}
	return errs
}
