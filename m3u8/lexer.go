package m3u8

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
)

// LineKind is the classification the lexer gives to a line
type LineKind int

const (
	LineBlank LineKind = iota
	LineTag
	LineComment
	LineURI
)

func (k LineKind) String() string {
	switch k {
	case LineBlank:
		return "blank"
	case LineTag:
		return "tag"
	case LineComment:
		return "comment"
	case LineURI:
		return "uri"
	}
	return fmt.Sprintf("LineKind(%d)", int(k))
}

// Line is a single classified line of a playlist. Name and Body are set for
// tag lines (Name without the leading '#', Body is everything after the first
// ':'), Text for comments (without '#') and URIs.
type Line struct {
	Kind LineKind
	Num  int
	Name string
	Body string
	Text string
}

// Lexer splits playlist text into classified lines on demand.
// Use it the way bufio.Scanner is used:
//
//	for lex.Next() {
//		line := lex.Line()
//	}
//	if err := lex.Err(); err != nil { ... }
type Lexer struct {
	rest   string
	num    int
	eof    bool
	header bool
	line   Line
	err    error
}

// NewLexer checks that text is valid UTF-8 and drops a single leading
// byte order mark.
func NewLexer(text string) (*Lexer, error) {
	if !utf8.ValidString(text) {
		return nil, &Error{Kind: EncodingError, Msg: "input is not valid UTF-8"}
	}

	text, err := unicode.UTF8BOM.NewDecoder().String(text)
	if err != nil {
		return nil, &Error{Kind: EncodingError, Msg: fmt.Sprintf("removing byte order mark: %v", err)}
	}
	return &Lexer{rest: text}, nil
}

// Next advances to the next line. It returns false at the end of input or
// when the first non-blank line is not #EXTM3U, in which case Err reports it.
func (l *Lexer) Next() bool {
	if l.err != nil {
		return false
	}

	for !l.eof {
		raw, rest, found := strings.Cut(l.rest, "\n")
		l.rest = rest
		if !found {
			l.eof = true
			if raw == "" {
				break
			}
		}

		l.num++
		l.line = classify(strings.TrimSuffix(raw, "\r"), l.num)
		if !l.header {
			if l.line.Kind == LineBlank {
				continue
			}
			if l.line.Kind != LineTag || l.line.Name != "EXTM3U" {
				l.err = &Error{Kind: FormatError, Line: l.num, Msg: "missing #EXTM3U header"}
				return false
			}
			l.header = true
		}
		return true
	}

	if !l.header {
		l.err = &Error{Kind: FormatError, Msg: "missing #EXTM3U header"}
	}
	return false
}

// Line returns the line produced by the last call to Next
func (l *Lexer) Line() Line {
	return l.line
}

// Err returns the error that stopped the lexer, if any
func (l *Lexer) Err() error {
	return l.err
}

func classify(raw string, num int) Line {
	// Surrounding whitespace never carries meaning and shows up in hand-written playlists
	text := strings.TrimSpace(raw)
	switch {
	case text == "":
		return Line{Kind: LineBlank, Num: num}
	case strings.HasPrefix(text, "#EXT"):
		name, body, _ := strings.Cut(text[1:], ":")
		return Line{Kind: LineTag, Num: num, Name: name, Body: body}
	case text[0] == '#':
		return Line{Kind: LineComment, Num: num, Text: text[1:]}
	}
	return Line{Kind: LineURI, Num: num, Text: text}
}
