package script

import (
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/maxnordlund/future"
	"github.com/maxnordlund/future/internal/trace"
)

// Snapshot is the golden-file view of a scenario run: the scenario
// name, the per-step results, and the recorded trace.
type Snapshot struct {
	Name   string
	Result *Result
}

// Marshal renders the snapshot as canonical JSON, the stable byte
// form golden files are compared against.
func (s Snapshot) Marshal() ([]byte, error) {
	return trace.MarshalCanonical(s.canonicalMap())
}

func (s Snapshot) canonicalMap() map[string]any {
	steps := make([]any, len(s.Result.Steps))
	for i, sr := range s.Result.Steps {
		m := map[string]any{
			"step": sr.Step,
			"op":   sr.Op,
		}
		if sr.Of != "" {
			m["of"] = sr.Of
		}
		if sr.Key != "" {
			m["key"] = sr.Key
		}
		if sr.As != "" {
			m["as"] = sr.As
		}
		if sr.Value != nil {
			m["value"] = sr.Value
		}
		if sr.OK != nil {
			m["ok"] = *sr.OK
		}
		if sr.Error != "" {
			m["error"] = sr.Error
		}
		steps[i] = m
	}

	events := make([]any, len(s.Result.Events))
	for i, ev := range s.Result.Events {
		events[i] = eventMap(ev)
	}

	return map[string]any{
		"name":   s.Name,
		"steps":  steps,
		"events": events,
	}
}

func eventMap(ev future.Event) map[string]any {
	m := map[string]any{
		"seq":       ev.Seq,
		"token":     ev.Token,
		"future_id": ev.FutureID,
		"phase":     ev.Phase,
		"kind":      ev.Kind,
	}
	if ev.Key != "" {
		m["key"] = ev.Key
	}
	if ev.Operands > 0 {
		m["operands"] = ev.Operands
	}
	if ev.Outcome != "" {
		m["outcome"] = ev.Outcome
	}
	if ev.Result != nil {
		m["result"] = decodeResult(ev.Result)
	}
	if ev.Err != "" {
		m["error"] = ev.Err
	}
	return m
}

// decodeResult turns the stored canonical JSON text back into plain
// data so snapshots show values rather than escaped JSON strings.
// Events that never round-tripped through the store pass through.
func decodeResult(r any) any {
	text, ok := r.(trace.Raw)
	if !ok {
		return r
	}
	var v any
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return string(text)
	}
	return v
}

// RunWithGolden executes the scenario and compares its snapshot
// against testdata/golden/<name>.golden. Regenerate goldens with
// go test ./internal/script -update.
func RunWithGolden(t *testing.T, sc *Scenario) error {
	t.Helper()

	result, err := Run(sc)
	if err != nil {
		return err
	}

	data, err := Snapshot{Name: sc.Name, Result: result}.Marshal()
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, sc.Name, data)
	return nil
}
