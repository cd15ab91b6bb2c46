package logger

import (
	"encoding/json"
	"sort"
	"strconv"
)

// Report holds statistics about the logged events.
type Report struct {
	LogEntries int        `json:"log_entries"`
	Sessions   StrCounter `json:"sessions"`
	Kinds      StrCounter `json:"kinds"`

	Builtins BuiltinReport  `json:"builtin_report"`
	External ExternalReport `json:"external_report"`
}

// Update adds the event to the report.
func (r *Report) Update(e *Event) {
	r.LogEntries++
	r.Sessions.Increment(e.SessionID)
	r.Kinds.Increment(string(e.Kind))

	switch e.Kind {
	case KindBuiltin:
		r.Builtins.update(e)
	case KindExternal:
		r.External.update(e)
	}
}

type BuiltinReport struct {
	CommandNames StrCounter `json:"command_names"`
}

func (r *BuiltinReport) update(e *Event) {
	if len(e.Argv) > 0 {
		r.CommandNames.Increment(e.Argv[0])
	}
}

type ExternalReport struct {
	CommandNames StrCounter `json:"command_names"`
	// Failures counts non-zero exits by command and status.
	Failures *PathCounter `json:"failures"`
}

func (r *ExternalReport) update(e *Event) {
	if len(e.Argv) == 0 {
		return
	}
	r.CommandNames.Increment(e.Argv[0])

	if e.Status != 0 {
		if r.Failures == nil {
			r.Failures = NewPathCounter("command", "status")
		}
		r.Failures.Increment(e.Argv[0], strconv.Itoa(e.Status))
	}
}

// StrCounter counts the number of strings seen.
type StrCounter struct {
	internal map[string]int
}

// Increment adds one to the given key.
func (s *StrCounter) Increment(toAdd string) {
	if s.internal == nil {
		s.internal = make(map[string]int)
	}

	s.internal[toAdd]++
}

// Count returns the number of times key was seen.
func (s *StrCounter) Count(key string) int {
	return s.internal[key]
}

// MarshalJSON implements custom JSON marshaler.
func (s StrCounter) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.internal)
}

func NewPathCounter(cols ...string) *PathCounter {
	return &PathCounter{
		cols:     cols,
		internal: make(map[string]int),
	}
}

// PathCounter counts the number of tuples seen.
type PathCounter struct {
	cols     []string
	internal map[string]int
}

// Increment adds one to the given key.
func (ctr *PathCounter) Increment(toAdd ...string) {
	if len(toAdd) != len(ctr.cols) {
		panic("wrong number of columns to add")
	}

	ctr.internal[toKey(toAdd...)]++
}

// Count returns the number of times the tuple was seen.
func (ctr *PathCounter) Count(vals ...string) int {
	if ctr == nil {
		return 0
	}
	return ctr.internal[toKey(vals...)]
}

// MarshalJSON implements custom JSON marshaler.
func (ctr *PathCounter) MarshalJSON() ([]byte, error) {
	type Count struct {
		Count  int               `json:"count"`
		Fields map[string]string `json:"event"`
		Path   string            `json:"-"`
	}

	out := []Count{}
	for k, v := range ctr.internal {
		count := Count{
			Count:  v,
			Path:   k,
			Fields: make(map[string]string),
		}

		splitPath := fromKey(k)
		for colNum, colVal := range ctr.cols {
			count.Fields[colVal] = splitPath[colNum]
		}

		out = append(out, count)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Count == out[j].Count {
			return out[i].Path < out[j].Path
		}
		return out[i].Count > out[j].Count
	})

	return json.Marshal(out)
}

func toKey(vals ...string) string {
	key, _ := json.Marshal(vals)
	return string(key)
}

func fromKey(key string) (out []string) {
	json.Unmarshal([]byte(key), &out)
	return
}
