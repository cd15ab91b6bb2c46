package shell

import (
	"testing"

	"github.com/josephlewis42/accsh/core/env"
	"github.com/stretchr/testify/assert"
)

func TestSubstitute(t *testing.T) {
	store := env.NewMapEnvFromEnvList([]string{"A=alpha", "EMPTY=", "?=3"})

	cases := map[string]struct {
		word string
		want string
	}{
		"plain":        {"word", "word"},
		"set":          {"$A", "alpha"},
		"unset":        {"$MISSING", ""},
		"empty":        {"$EMPTY", ""},
		"status":       {"$?", "3"},
		"bare-marker":  {"$", ""},
		"not-leading":  {"a$A", "a$A"},
		"no-recursion": {"$$A", ""},
		"suffix-kept":  {"$A/b", ""},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			assert.Equal(t, tc.want, Substitute(store, tc.word))
		})
	}
}
