// Package env holds the interpreter's variable store.
//
// The store is the single source of truth for variables: the interpreter
// reads and writes it, and children are started with its Environ() as their
// complete environment. The interpreter never touches its own process
// environment after startup.
package env

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

const (
	// KeyStatus holds the decimal exit status of the most recent command.
	KeyStatus = "?"
	// KeyAccumulator holds the integer accumulator touched by addacc.
	KeyAccumulator = "ACC"
	// KeyName holds the name the interpreter was invoked with.
	KeyName = "0"
	// KeyHome is the target of a bare cd.
	KeyHome = "HOME"
	// KeyNoEcho suppresses the trace line of external commands when non-empty.
	KeyNoEcho = "NOECHO"
	// KeyPath is the executable search path.
	KeyPath = "PATH"
)

// ErrInvalidKey is returned when setting a variable with an unusable name.
var ErrInvalidKey = errors.New("invalid variable name")

// Store represents a mutable set of variables.
type Store interface {
	// Unsetenv removes a single variable, it's a no-op if the key is absent.
	Unsetenv(key string) error

	// Setenv sets the value of the variable named by the key, creating it if
	// needed. It returns an error, if any.
	Setenv(key, value string) error

	// LookupEnv retrieves the value of the variable named by the key.
	// If the variable is present the value (which may be empty) is returned
	// and the boolean is true. Otherwise the returned value will be empty and
	// the boolean will be false.
	LookupEnv(key string) (string, bool)

	// Getenv retrieves the value of the variable named by the key.
	// It returns the value, which will be empty if the variable is not present.
	// To distinguish between an empty value and an unset value, use LookupEnv.
	Getenv(key string) string

	// Environ returns a copy of strings representing the store, in the
	// form "key=value".
	Environ() []string

	// Clearenv deletes all variables.
	Clearenv()
}

// EnvironFetcher is anything that can list variables as "key=value" pairs.
type EnvironFetcher interface {
	Environ() []string
}

// ValidKey reports whether key can be stored.
func ValidKey(key string) bool {
	return key != "" && !strings.Contains(key, "=")
}

func splitEntry(entry string) (key, value string) {
	split := strings.SplitN(entry, "=", 2)
	key = split[0]
	if len(split) > 1 {
		value = split[1]
	}
	return key, value
}

// CopyEnv copies all the variables from src to dst.
func CopyEnv(dst Store, src EnvironFetcher) error {
	for _, e := range src.Environ() {
		if err := dst.Setenv(splitEntry(e)); err != nil {
			return err
		}
	}

	return nil
}

// EnvList adapts a list of "key=value" strings to an EnvironFetcher.
type EnvList []string

// Environ implements EnvironFetcher.Environ.
func (e EnvList) Environ() []string {
	return e
}

// NewMapEnv creates a new empty store.
func NewMapEnv() *MapEnv {
	return &MapEnv{}
}

// NewMapEnvFromEnvList creates a store from a list of "key=value" strings
// such as os.Environ(). Malformed entries are skipped.
func NewMapEnvFromEnvList(environ []string) *MapEnv {
	out := &MapEnv{}

	for _, e := range environ {
		// Invalid keys (e.g. Windows' "=C:" entries) are dropped.
		_ = out.Setenv(splitEntry(e))
	}

	return out
}

// MapEnv is an in-memory Store that remembers the order keys were created in.
type MapEnv struct {
	rw    sync.RWMutex
	env   map[string]string
	order []string
}

var _ Store = (*MapEnv)(nil)

// Unsetenv implements Store.Unsetenv.
func (m *MapEnv) Unsetenv(key string) error {
	m.rw.Lock()
	defer m.rw.Unlock()

	if _, ok := m.env[key]; !ok {
		return nil
	}
	delete(m.env, key)
	for i, k := range m.order {
		if k == key {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

// Setenv implements Store.Setenv.
func (m *MapEnv) Setenv(key, value string) error {
	if !ValidKey(key) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}

	m.rw.Lock()
	defer m.rw.Unlock()

	if m.env == nil {
		m.env = make(map[string]string)
	}
	if _, ok := m.env[key]; !ok {
		m.order = append(m.order, key)
	}
	m.env[key] = value
	return nil
}

// LookupEnv implements Store.LookupEnv.
func (m *MapEnv) LookupEnv(key string) (string, bool) {
	m.rw.RLock()
	defer m.rw.RUnlock()

	val, ok := m.env[key]
	return val, ok
}

// Getenv implements Store.Getenv.
func (m *MapEnv) Getenv(key string) string {
	val, _ := m.LookupEnv(key)
	return val
}

// Environ implements Store.Environ.
func (m *MapEnv) Environ() []string {
	m.rw.RLock()
	defer m.rw.RUnlock()

	env := make([]string, 0, len(m.order))
	for _, k := range m.order {
		env = append(env, fmt.Sprintf("%s=%s", k, m.env[k]))
	}

	return env
}

// Clearenv implements Store.Clearenv.
func (m *MapEnv) Clearenv() {
	m.rw.Lock()
	defer m.rw.Unlock()
	m.env = make(map[string]string)
	m.order = nil
}
