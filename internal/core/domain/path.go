package domain

import (
	"runtime"
	"strings"
)

// Normalizer canonicalizes target names relative to a fixed working
// directory, so that "a", "./a", and "d/../a" name the same target.
// Normalization never touches the filesystem and never follows symlinks.
type Normalizer struct {
	workDir string
	seps    string
}

// NewNormalizer returns a Normalizer rooted at workDir, which must be an
// absolute path without a trailing separator.
func NewNormalizer(workDir string) *Normalizer {
	seps := "/"
	if runtime.GOOS == "windows" {
		seps = "/\\"
	}
	return &Normalizer{workDir: workDir, seps: seps}
}

// WorkDir returns the directory names are normalized against.
func (n *Normalizer) WorkDir() string {
	return n.workDir
}

// Normalize canonicalizes a single name: it folds "." and empty segments,
// folds ".." against prior segments, re-roots a ".." underflow of a
// relative name against the working directory, and re-expresses absolute
// names under the working directory tree as relative ones. Names outside
// the tree keep their absolute form. The result is idempotent.
func (n *Normalizer) Normalize(s string) string {
	pos := strings.IndexAny(s, n.seps)
	if pos < 0 {
		return s
	}
	absolute := pos == 0
	var segs []string
	prev := 0
	for {
		if pos != prev {
			switch seg := s[prev:pos]; seg {
			case "..":
				if len(segs) > 0 {
					segs = segs[:len(segs)-1]
				} else if !absolute {
					// The name escapes the working directory; resolve it
					// absolutely and fold back below.
					return n.Normalize(n.workDir + "/" + s)
				}
			case ".":
			default:
				segs = append(segs, seg)
			}
		}
		pos++
		if pos >= len(s) {
			break
		}
		prev = pos
		if i := strings.IndexAny(s[prev:], n.seps); i >= 0 {
			pos = prev + i
		} else {
			pos = len(s)
		}
	}
	if len(segs) == 0 {
		if absolute {
			return "/"
		}
		return "."
	}
	joined := strings.Join(segs, "/")
	if absolute {
		return n.relativize("/" + joined)
	}
	return joined
}

// NormalizeAll returns the normalization of every name, preserving order.
func (n *Normalizer) NormalizeAll(names []string) []string {
	out := make([]string, len(names))
	for i, s := range names {
		out[i] = n.Normalize(s)
	}
	return out
}

// relativize re-expresses an absolute, already-folded path relative to the
// working directory when it lies inside that tree. The prefix must match at
// a path-segment boundary; /work/dirx is outside /work/dir.
func (n *Normalizer) relativize(s string) string {
	l := len(n.workDir)
	if len(s) < l || s[:l] != n.workDir {
		return s
	}
	if len(s) == l {
		return "."
	}
	if s[l] != '/' {
		return s
	}
	if len(s) == l+1 {
		return "."
	}
	return s[l+1:]
}
