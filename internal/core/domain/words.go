package domain

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

// WordSeparators are the bytes that end an unquoted word. They are shared
// by the rule file grammar and the persisted dependency file format.
const WordSeparators = " \t\r\n:$(),=\"+"

// Characters that must be backslash-escaped inside a quoted word.
const escapedChars = "\"\\$!"

// Characters that force quoting but need no escape. Any separator that can
// legally appear inside a quoted word is listed so that escaping round-trips.
const quotedChars = ",: '\t\r\n=()+"

// IsWordSeparator reports whether c ends an unquoted word.
func IsWordSeparator(c byte) bool {
	return strings.IndexByte(WordSeparators, c) >= 0
}

// ReadWord reads one word from r. A word is either a run of non-separator
// bytes or a double-quoted string in which a backslash escapes the next
// byte verbatim. When the stream is positioned at a separator or at EOF,
// ReadWord returns an empty word and leaves the stream untouched. An
// unterminated quote ends at EOF with the bytes read so far.
func ReadWord(r *bufio.Reader) (string, error) {
	c, err := r.ReadByte()
	if err != nil {
		return "", eofOK(err)
	}
	var b strings.Builder
	quoted := c == '"'
	if !quoted {
		if IsWordSeparator(c) {
			_ = r.UnreadByte()
			return "", nil
		}
		b.WriteByte(c)
	}
	for {
		c, err = r.ReadByte()
		if err != nil {
			return b.String(), eofOK(err)
		}
		if quoted {
			switch c {
			case '\\':
				e, err := r.ReadByte()
				if err != nil {
					return b.String(), eofOK(err)
				}
				b.WriteByte(e)
			case '"':
				return b.String(), nil
			default:
				b.WriteByte(c)
			}
			continue
		}
		if IsWordSeparator(c) {
			_ = r.UnreadByte()
			return b.String(), nil
		}
		b.WriteByte(c)
	}
}

// EscapeWord renders a word so that ReadWord parses it back verbatim:
// words containing separators or escape-sensitive bytes are double-quoted,
// with ", \, $ and ! backslash-escaped inside the quotes.
func EscapeWord(s string) string {
	needQuotes := false
	for i := 0; i < len(s); i++ {
		if strings.IndexByte(escapedChars, s[i]) >= 0 || strings.IndexByte(quotedChars, s[i]) >= 0 {
			needQuotes = true
			break
		}
	}
	if !needQuotes {
		return s
	}
	var b strings.Builder
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		if strings.IndexByte(escapedChars, s[i]) >= 0 {
			b.WriteByte('\\')
		}
		b.WriteByte(s[i])
	}
	b.WriteByte('"')
	return b.String()
}

func eofOK(err error) error {
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
