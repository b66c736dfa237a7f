package domain

import "strings"

// PrepareScript renders a rule's script for the shell. Automatic variables
// describe the effective rule: $< is the first prerequisite, $^ all of
// them, $@ the first target, and $$ a literal dollar. A $(NAME) whose NAME
// is bound by a local assignment or a global variable expands to its words
// joined with spaces; any other $(...) is emitted verbatim so shell command
// substitution keeps working.
func PrepareScript(r *Rule, globals *VarTable) string {
	s := r.Script
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		c := s[i]
		if c != '$' {
			b.WriteByte(c)
			i++
			continue
		}
		if i+1 >= len(s) {
			b.WriteByte('$')
			break
		}
		switch s[i+1] {
		case '$':
			b.WriteByte('$')
			i += 2
		case '<':
			if len(r.Prereqs) > 0 {
				b.WriteString(r.Prereqs[0])
			}
			i += 2
		case '^':
			b.WriteString(strings.Join(r.Prereqs, " "))
			i += 2
		case '@':
			if len(r.Targets) > 0 {
				b.WriteString(r.Targets[0])
			}
			i += 2
		case '(':
			name, end, ok := scanParen(s, i+2)
			if !ok {
				b.WriteString(s[i:])
				return b.String()
			}
			if val, bound := LocalValue(r.Assigns, globals, name); bound {
				b.WriteString(strings.Join(val, " "))
			} else {
				b.WriteString(s[i : end+1])
			}
			i = end + 1
		default:
			b.WriteByte('$')
			i++
		}
	}
	return b.String()
}

// scanParen finds the parenthesis matching an opening one already consumed,
// with start indexing the first byte after it. Nested pairs are balanced.
func scanParen(s string, start int) (content string, end int, ok bool) {
	depth := 1
	for j := start; j < len(s); j++ {
		switch s[j] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return s[start:j], j, true
			}
		}
	}
	return "", 0, false
}
