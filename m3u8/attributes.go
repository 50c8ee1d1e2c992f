package m3u8

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

// AttributeValue is the typed value of one attribute in an attribute-list
// (RFC 8216 section 4.2). The concrete type is one of QuotedString,
// EnumeratedString, DecimalInteger, HexSequence, DecimalFloat,
// SignedDecimalFloat or Resolution. String returns the value the way it is
// written in a playlist.
type AttributeValue interface {
	String() string
	attributeValue()
}

// QuotedString holds the text between the quotes
type QuotedString string

// EnumeratedString is an unquoted keyword such as AUDIO or YES
type EnumeratedString string

// DecimalInteger is an unsigned base-10 integer
type DecimalInteger uint64

// HexSequence is the byte string of a 0x-prefixed hexadecimal value
type HexSequence []byte

// DecimalFloat is a non-negative decimal number
type DecimalFloat float64

// SignedDecimalFloat is a decimal number that may be negative
type SignedDecimalFloat float64

// Resolution is a decimal-resolution such as 1280x720
type Resolution struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (QuotedString) attributeValue()       {}
func (EnumeratedString) attributeValue()   {}
func (DecimalInteger) attributeValue()     {}
func (HexSequence) attributeValue()        {}
func (DecimalFloat) attributeValue()       {}
func (SignedDecimalFloat) attributeValue() {}
func (Resolution) attributeValue()         {}

func (s QuotedString) String() string     { return `"` + string(s) + `"` }
func (s EnumeratedString) String() string { return string(s) }
func (n DecimalInteger) String() string   { return strconv.FormatUint(uint64(n), 10) }
func (h HexSequence) String() string      { return "0x" + strings.ToUpper(hex.EncodeToString(h)) }
func (f DecimalFloat) String() string     { return formatFloat(float64(f)) }
func (f SignedDecimalFloat) String() string {
	return formatFloat(float64(f))
}
func (r Resolution) String() string { return fmt.Sprintf("%dx%d", r.Width, r.Height) }

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Attribute is one NAME=VALUE pair
type Attribute struct {
	Name  string
	Value AttributeValue
}

// AttributeList keeps attributes in the order they were written, including
// ones this package does not know about.
type AttributeList []Attribute

// Get returns the value of the named attribute
func (l AttributeList) Get(name string) (AttributeValue, bool) {
	for _, attr := range l {
		if attr.Name == name {
			return attr.Value, true
		}
	}
	return nil, false
}

// Has reports whether the named attribute is present
func (l AttributeList) Has(name string) bool {
	_, ok := l.Get(name)
	return ok
}

func (l AttributeList) String() string {
	parts := make([]string, len(l))
	for i, attr := range l {
		parts[i] = attr.Name + "=" + attr.Value.String()
	}
	return strings.Join(parts, ",")
}

func (l AttributeList) quoted(name string) string {
	v, _ := l.Get(name)
	switch v := v.(type) {
	case QuotedString:
		return string(v)
	case EnumeratedString:
		return string(v)
	}
	return ""
}

func (l AttributeList) enum(name string) string {
	v, _ := l.Get(name)
	if v, ok := v.(EnumeratedString); ok {
		return string(v)
	}
	return ""
}

func (l AttributeList) integer(name string) uint64 {
	v, _ := l.Get(name)
	if v, ok := v.(DecimalInteger); ok {
		return uint64(v)
	}
	return 0
}

func (l AttributeList) float(name string) float64 {
	v, _ := l.Get(name)
	switch v := v.(type) {
	case DecimalFloat:
		return float64(v)
	case SignedDecimalFloat:
		return float64(v)
	}
	return 0
}

func (l AttributeList) hex(name string) []byte {
	v, _ := l.Get(name)
	if v, ok := v.(HexSequence); ok {
		return []byte(v)
	}
	return nil
}

func (l AttributeList) resolution(name string) *Resolution {
	v, _ := l.Get(name)
	if v, ok := v.(Resolution); ok {
		return &v
	}
	return nil
}

func (l AttributeList) yes(name string) bool {
	return l.enum(name) == "YES"
}

// valueKind is the type an attribute is declared with for a given tag
type valueKind int

const (
	kindQuoted valueKind = iota
	kindEnum
	kindInteger
	kindHex
	kindFloat
	kindSignedFloat
	kindResolution
	kindQuotedOrNone // CLOSED-CAPTIONS
)

func (k valueKind) String() string {
	return [...]string{
		"quoted-string",
		"enumerated-string",
		"decimal-integer",
		"hexadecimal-sequence",
		"decimal-floating-point",
		"signed-decimal-floating-point",
		"decimal-resolution",
		"quoted-string or NONE",
	}[k]
}

type rawAttr struct {
	name   string
	value  string
	quoted bool
}

type attrState int

const (
	stateName attrState = iota
	stateValue
	stateQuoted
	stateAfterQuote
)

// splitAttributes tokenizes an attribute-list without splitting inside
// quoted-strings.
func splitAttributes(tag, body string) ([]rawAttr, error) {
	var (
		attrs []rawAttr
		cur   rawAttr
		start int
		state = stateName
	)

	for i := 0; i < len(body); i++ {
		c := body[i]
		switch state {
		case stateName:
			switch c {
			case '=':
				cur.name = strings.TrimSpace(body[start:i])
				if cur.name == "" {
					return nil, newError(SyntaxError, tag, "", "attribute name missing before '=' at offset %d", i)
				}
				state, start = stateValue, i+1
			case ',':
				return nil, newError(SyntaxError, tag, strings.TrimSpace(body[start:i]), "attribute has no value")
			case '"':
				return nil, newError(SyntaxError, tag, "", "unexpected '\"' in attribute name at offset %d", i)
			}
		case stateValue:
			switch {
			case c == '"' && strings.TrimSpace(body[start:i]) == "":
				state, start = stateQuoted, i+1
			case c == '"':
				return nil, newError(SyntaxError, tag, cur.name, "unexpected '\"' inside unquoted value")
			case c == ',':
				cur.value = strings.TrimSpace(body[start:i])
				attrs = append(attrs, cur)
				cur, state, start = rawAttr{}, stateName, i+1
			}
		case stateQuoted:
			if c == '"' {
				cur.value, cur.quoted = body[start:i], true
				state = stateAfterQuote
			}
		case stateAfterQuote:
			switch c {
			case ',':
				attrs = append(attrs, cur)
				cur, state, start = rawAttr{}, stateName, i+1
			case ' ', '\t':
			default:
				return nil, newError(SyntaxError, tag, cur.name, "unexpected %q after quoted-string", c)
			}
		}
	}

	switch state {
	case stateName:
		// A trailing comma leaves an empty name which is tolerated
		if rest := strings.TrimSpace(body[start:]); rest != "" {
			return nil, newError(SyntaxError, tag, rest, "attribute has no value")
		}
	case stateValue:
		cur.value = strings.TrimSpace(body[start:])
		attrs = append(attrs, cur)
	case stateQuoted:
		return nil, newError(SyntaxError, tag, cur.name, "unterminated quoted-string")
	case stateAfterQuote:
		attrs = append(attrs, cur)
	}
	return attrs, nil
}

// parseAttributeList types every attribute exactly once. Attributes named in
// schema must have the declared type; others are typed by their shape and
// never fail.
func parseAttributeList(tag, body string, schema map[string]valueKind) (AttributeList, error) {
	raw, err := splitAttributes(tag, body)
	if err != nil {
		return nil, err
	}

	list := make(AttributeList, 0, len(raw))
	seen := make(map[string]bool, len(raw))
	for _, attr := range raw {
		if seen[attr.name] {
			return nil, newError(SyntaxError, tag, attr.name, "duplicate attribute")
		}
		seen[attr.name] = true

		var value AttributeValue
		if kind, known := schema[attr.name]; known {
			if value, err = parseValue(attr, kind); err != nil {
				return nil, newError(ValueError, tag, attr.name, "%v", err)
			}
		} else {
			value = inferValue(attr)
		}
		list = append(list, Attribute{Name: attr.name, Value: value})
	}
	return list, nil
}

func parseValue(attr rawAttr, kind valueKind) (AttributeValue, error) {
	if attr.quoted {
		if kind == kindQuoted || kind == kindQuotedOrNone {
			return QuotedString(attr.value), nil
		}
		return nil, fmt.Errorf("expected %s, got quoted-string", kind)
	}

	switch kind {
	case kindQuoted:
		return nil, fmt.Errorf("expected quoted-string, got %q", attr.value)
	case kindQuotedOrNone:
		if attr.value != "NONE" {
			return nil, fmt.Errorf("expected %s, got %q", kind, attr.value)
		}
		return EnumeratedString(attr.value), nil
	case kindEnum:
		if attr.value == "" || strings.ContainsAny(attr.value, " \t") {
			return nil, fmt.Errorf("invalid enumerated-string %q", attr.value)
		}
		return EnumeratedString(attr.value), nil
	case kindInteger:
		n, err := parseDecimalInteger(attr.value)
		return DecimalInteger(n), err
	case kindHex:
		return parseHexSequence(attr.value)
	case kindFloat:
		f, err := parseDecimalFloat(attr.value)
		return DecimalFloat(f), err
	case kindSignedFloat:
		f, err := parseSignedDecimalFloat(attr.value)
		return SignedDecimalFloat(f), err
	case kindResolution:
		return parseResolution(attr.value)
	}
	return nil, fmt.Errorf("unknown value kind %d", kind)
}

func inferValue(attr rawAttr) AttributeValue {
	if attr.quoted {
		return QuotedString(attr.value)
	}
	if v, err := parseHexSequence(attr.value); err == nil {
		return v
	}
	if n, err := parseDecimalInteger(attr.value); err == nil {
		return DecimalInteger(n)
	}
	if r, err := parseResolution(attr.value); err == nil {
		return r
	}
	if f, err := parseDecimalFloat(attr.value); err == nil {
		return DecimalFloat(f)
	}
	if f, err := parseSignedDecimalFloat(attr.value); err == nil {
		return SignedDecimalFloat(f)
	}
	return EnumeratedString(attr.value)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func parseDecimalInteger(s string) (uint64, error) {
	if !isDigits(s) || len(s) > 20 {
		return 0, fmt.Errorf("invalid decimal-integer %q", s)
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid decimal-integer %q: out of range", s)
	}
	return n, nil
}

func parseHexSequence(s string) (HexSequence, error) {
	if len(s) < 3 || s[0] != '0' || (s[1] != 'x' && s[1] != 'X') {
		return nil, fmt.Errorf("invalid hexadecimal-sequence %q", s)
	}

	digits := s[2:]
	if len(digits)%2 == 1 {
		digits = "0" + digits
	}
	b, err := hex.DecodeString(digits)
	if err != nil {
		return nil, fmt.Errorf("invalid hexadecimal-sequence %q", s)
	}
	return HexSequence(b), nil
}

func parseDecimalFloat(s string) (float64, error) {
	whole, frac, _ := strings.Cut(s, ".")
	if (whole != "" && !isDigits(whole)) || (frac != "" && !isDigits(frac)) || whole+frac == "" {
		return 0, fmt.Errorf("invalid decimal-floating-point %q", s)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid decimal-floating-point %q", s)
	}
	return f, nil
}

func parseSignedDecimalFloat(s string) (float64, error) {
	f, err := parseDecimalFloat(strings.TrimPrefix(s, "-"))
	if err != nil {
		return 0, fmt.Errorf("invalid signed-decimal-floating-point %q", s)
	}
	if strings.HasPrefix(s, "-") {
		f = -f
	}
	return f, nil
}

func parseResolution(s string) (Resolution, error) {
	w, h, ok := strings.Cut(s, "x")
	if !ok || !isDigits(w) || !isDigits(h) {
		return Resolution{}, fmt.Errorf("invalid decimal-resolution %q", s)
	}

	width, errW := strconv.Atoi(w)
	height, errH := strconv.Atoi(h)
	if errW != nil || errH != nil {
		return Resolution{}, fmt.Errorf("invalid decimal-resolution %q", s)
	}
	return Resolution{Width: width, Height: height}, nil
}
