package domain

import (
	"bufio"
	"io"

	"go.trai.ch/zerr"
)

// ReadDependencies parses a dependency listing from r. Each line names the
// targets of one record, a colon, then the recorded prerequisites. All
// targets of a line share one record, preserving the co-built grouping
// that was saved. Blank lines are skipped; parsing stops at end of input.
func ReadDependencies(r io.Reader) (*DependencySet, error) {
	in := bufio.NewReader(r)
	deps := NewDependencySet()
	for {
		targets, err := readWordList(in)
		if err != nil {
			return nil, err
		}
		if len(targets) == 0 {
			return deps, nil
		}
		c, err := in.ReadByte()
		if err != nil || c != ':' {
			return nil, zerr.With(zerr.Wrap(ErrSyntax, "malformed dependency listing"), "target", targets[0])
		}
		prereqs, err := readWordList(in)
		if err != nil {
			return nil, err
		}
		rec := NewDependencyRecord(targets, prereqs)
		for _, t := range targets {
			deps.Bind(t, rec)
		}
		if err := skipNewlines(in); err != nil {
			return nil, err
		}
	}
}

// WriteDependencies renders deps in the format ReadDependencies parses.
// Records are written once each, ordered by their lexically least bound
// target, with every name escaped so it survives a round trip.
func WriteDependencies(w io.Writer, deps *DependencySet) error {
	out := bufio.NewWriter(w)
	written := make(map[*DependencyRecord]struct{}, deps.Len())
	for _, t := range deps.Targets() {
		rec, ok := deps.Lookup(t)
		if !ok {
			continue
		}
		if _, ok := written[rec]; ok {
			continue
		}
		written[rec] = struct{}{}
		for _, target := range rec.Targets {
			_, _ = out.WriteString(EscapeWord(target))
			_ = out.WriteByte(' ')
		}
		_ = out.WriteByte(':')
		for _, p := range rec.Prereqs() {
			_ = out.WriteByte(' ')
			_, _ = out.WriteString(EscapeWord(p))
		}
		_ = out.WriteByte('\n')
	}
	return out.Flush()
}

// readWordList reads words until the next non-word byte. The terminating
// byte stays in the stream.
func readWordList(in *bufio.Reader) ([]string, error) {
	var words []string
	for {
		if err := skipBlanks(in); err != nil {
			return words, err
		}
		b, err := in.Peek(1)
		if err != nil {
			return words, eofOK(err)
		}
		if b[0] != '"' && IsWordSeparator(b[0]) {
			return words, nil
		}
		w, err := ReadWord(in)
		if err != nil {
			return words, err
		}
		words = append(words, w)
	}
}

func skipBlanks(in *bufio.Reader) error {
	for {
		c, err := in.ReadByte()
		if err != nil {
			return eofOK(err)
		}
		if c != ' ' && c != '\t' {
			return in.UnreadByte()
		}
	}
}

func skipNewlines(in *bufio.Reader) error {
	for {
		c, err := in.ReadByte()
		if err != nil {
			return eofOK(err)
		}
		if c != '\r' && c != '\n' {
			return in.UnreadByte()
		}
	}
}
