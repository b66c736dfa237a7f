// Package rulefile parses rule files into the domain rule set.
package rulefile

import (
	"bufio"
	"errors"
	"io"
	"strings"

	"github.com/remake-build/remake/internal/core/domain"
)

type token int

const (
	tokWord token = iota
	tokColon
	tokComma
	tokEqual
	tokPlusEqual
	tokDollarParen
	tokRightParen
	tokEol
	tokEof
)

// lexer classifies the upcoming input without consuming it, so the parser
// can dispatch on token kind and then read exactly what it expects.
type lexer struct {
	in *bufio.Reader
}

// next skips horizontal whitespace and reports the kind of the next
// token, leaving it in the stream. A backslash immediately before a line
// end splices the lines and the scan continues.
func (l *lexer) next() (token, error) {
	for {
		if err := l.skipSpaces(); err != nil {
			return tokEof, err
		}
		b, err := l.in.Peek(1)
		if err != nil {
			return tokEof, eofOK(err)
		}
		switch b[0] {
		case ':':
			return tokColon, nil
		case ',':
			return tokComma, nil
		case '=':
			return tokEqual, nil
		case '+':
			return tokPlusEqual, nil
		case '$':
			return tokDollarParen, nil
		case ')':
			return tokRightParen, nil
		case '\r', '\n':
			return tokEol, nil
		case '\\':
			two, err := l.in.Peek(2)
			if err == nil && len(two) == 2 && (two[1] == '\r' || two[1] == '\n') {
				_, _ = l.in.Discard(1)
				if err := l.skipEOL(); err != nil {
					return tokEof, err
				}
				continue
			}
			return tokWord, nil
		default:
			return tokWord, nil
		}
	}
}

// peek returns the next raw byte without consuming it.
func (l *lexer) peek() (byte, error) {
	b, err := l.in.Peek(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// discard consumes n bytes already classified by next or peek.
func (l *lexer) discard(n int) {
	_, _ = l.in.Discard(n)
}

// word reads one possibly quoted word.
func (l *lexer) word() (string, error) {
	return domain.ReadWord(l.in)
}

// skipSpaces consumes a run of spaces and tabs.
func (l *lexer) skipSpaces() error {
	for {
		c, err := l.in.ReadByte()
		if err != nil {
			return eofOK(err)
		}
		if c != ' ' && c != '\t' {
			return l.in.UnreadByte()
		}
	}
}

// skipEOL consumes a run of carriage returns and newlines.
func (l *lexer) skipEOL() error {
	for {
		c, err := l.in.ReadByte()
		if err != nil {
			return eofOK(err)
		}
		if c != '\r' && c != '\n' {
			return l.in.UnreadByte()
		}
	}
}

// skipLine consumes the rest of a comment line including its newline run.
func (l *lexer) skipLine() error {
	if _, err := l.in.ReadString('\n'); err != nil {
		return eofOK(err)
	}
	return l.skipEOL()
}

// script captures a rule body: the maximal run of lines whose first byte
// is a tab or space. The indent byte is dropped and the rest of each line
// is kept verbatim, line ends included.
func (l *lexer) script() (string, error) {
	var b strings.Builder
	for {
		c, err := l.in.ReadByte()
		if err != nil {
			return b.String(), eofOK(err)
		}
		switch {
		case c == '\t' || c == ' ':
			line, err := l.in.ReadString('\n')
			b.WriteString(line)
			if err != nil {
				return b.String(), eofOK(err)
			}
		case c == '\r' || c == '\n':
			b.WriteByte(c)
		default:
			if err := l.in.UnreadByte(); err != nil {
				return b.String(), err
			}
			return b.String(), nil
		}
	}
}

func eofOK(err error) error {
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
