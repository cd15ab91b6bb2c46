package shell

import (
	"strings"

	"github.com/josephlewis42/accsh/core/env"
)

// Substitute replaces a word starting with "$" by the value of the variable
// named by the rest of the word, or the empty string if it isn't set.
// Other words are returned unchanged. There is no quoting, escaping or
// nested substitution: "$" only has meaning as the first character.
func Substitute(store env.Store, word string) string {
	if !strings.HasPrefix(word, SubstitutionMarker) {
		return word
	}

	return store.Getenv(word[len(SubstitutionMarker):])
}
