package shell

import (
	"strings"
)

// Tokenize splits line on runs of whitespace and substitutes variables in
// each word, including the command name.
//
// The argument vector has room for MaxArgs entries including its
// terminator, so at most MaxArgs-1 words are kept; the rest are dropped.
// A blank line yields an empty vector. A MaxArgs below 1 disables the limit.
func (s *Shell) Tokenize(line string) []string {
	words := strings.Fields(line)
	if limit := s.MaxArgs - 1; limit >= 0 && len(words) > limit {
		words = words[:limit]
	}

	argv := make([]string, 0, len(words))
	for _, word := range words {
		argv = append(argv, Substitute(s.Env, word))
	}
	return argv
}
