package simplifiedtax

import "fmt"

// TraceEntry records one rule evaluation.
type TraceEntry struct {
	Rule    string
	Passed  bool
	Details string
	Article string
}

// trace is append-only for the duration of one evaluation.
type trace struct {
	entries []TraceEntry
}

func (t *trace) record(rule string, passed bool, article, format string, args ...any) {
	t.entries = append(t.entries, TraceEntry{
		Rule:    rule,
		Passed:  passed,
		Details: fmt.Sprintf(format, args...),
		Article: article,
	})
}

// snapshot hands out a copy so the result never aliases the recorder.
func (t *trace) snapshot() []TraceEntry {
	out := make([]TraceEntry, len(t.entries))
	copy(out, t.entries)
	return out
}
