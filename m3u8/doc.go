/*
Package m3u8 parses HTTP Live Streaming playlists (RFC 8216 section 4).

Parsing happens in four steps. A Lexer classifies each line as a tag, URI,
comment or blank. ParseTag turns a tag line into a typed Tag. An assembler
folds the tags and URIs into either a *MultivariantPlaylist or a
*MediaPlaylist, carrying EXT-X-KEY and EXT-X-MAP forward to every following
segment. Validate then checks the rules that do not stop parsing.

	playlist, err := m3u8.Parse(text)
	if err != nil {
		return err
	}
	switch p := playlist.(type) {
	case *m3u8.MediaPlaylist:
		...
	case *m3u8.MultivariantPlaylist:
		...
	}

Parse rejects a playlist with any validation failure. ParseWithDiagnostics
returns them next to the playlist so the caller can decide. Hard failures are
*Error values whose Kind unwraps to ErrEncoding, ErrFormat, ErrSyntax,
ErrValue or ErrStructural. Tags this package does not know are skipped.

Attribute values (section 4.2) are typed once, when the attribute-list is read:

o  decimal-integer: an unquoted string of characters from the set
   [0..9] expressing an integer in base-10 arithmetic in the range
   from 0 to 2^64-1 (18446744073709551615).  A decimal-integer may be
   from 1 to 20 characters long.                              DecimalInteger

o  hexadecimal-sequence: an unquoted string of characters from the
   set [0..9] and [A..F] that is prefixed with 0x or 0X.      HexSequence

o  decimal-floating-point: an unquoted string of characters from the
   set [0..9] and '.' that expresses a non-negative floating-point
   number in decimal positional notation.                     DecimalFloat

o  signed-decimal-floating-point: an unquoted string of characters
   from the set [0..9], '-', and '.'.                         SignedDecimalFloat

o  quoted-string: a string of characters within a pair of double
   quotes (0x22). Commas inside the quotes do not separate
   attributes.                                                QuotedString

o  enumerated-string: an unquoted character string from a set that is
   explicitly defined by the AttributeName.                   EnumeratedString

o  decimal-resolution: two decimal-integers separated by the "x"
   character.                                                 Resolution

Attributes a tag does not define are typed by their shape and kept, so they
survive Encode.
*/
package m3u8
