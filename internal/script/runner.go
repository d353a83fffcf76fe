package script

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/maxnordlund/future"
	"github.com/maxnordlund/future/internal/trace"
	"github.com/maxnordlund/future/promise"
)

// StepResult captures the observable outcome of one scripted step.
// Value holds the awaited result for steps that block (await, all,
// next, collect); OK holds the boolean returned by set and delete.
type StepResult struct {
	Step  int    `json:"step"`
	Op    string `json:"op"`
	Of    string `json:"of,omitempty"`
	Key   string `json:"key,omitempty"`
	As    string `json:"as,omitempty"`
	Value any    `json:"value,omitempty"`
	OK    *bool  `json:"ok,omitempty"`
	Error string `json:"error,omitempty"`
}

// Result is the outcome of running a scenario: the per-step results
// and the full recorded trace, in seq order.
type Result struct {
	Steps  []StepResult   `json:"steps"`
	Events []future.Event `json:"events"`
}

// builtins are the callables available to seed_func. YAML cannot
// express functions, so callable scenarios pick one of these.
var builtins = map[string]any{
	"concat": func(parts ...string) string { return strings.Join(parts, "") },
	"sum": func(nums ...int) int {
		total := 0
		for _, n := range nums {
			total += n
		}
		return total
	},
	"shout": func(s string) string { return strings.ToUpper(s) },
	"fail":  func() (any, error) { return nil, errors.New("builtin failure") },
}

// runner holds the per-run state: the arena, the trace store acting
// as its recorder, and the name-to-handle bindings steps refer to.
type runner struct {
	arena     *future.Arena
	store     *trace.Store
	bindings  map[string]*future.Handle
	iterators map[string]*future.Iterator
	tracked   []*future.Handle
	logger    *slog.Logger
}

// Run executes a scenario and returns its result.
//
// Each run gets a fresh arena wired to a fresh in-memory trace store,
// with fixed op tokens for reproducible traces. After the last step
// every bound handle is awaited, so the returned trace contains the
// settled event for every issued operation.
func Run(sc *Scenario) (*Result, error) {
	st, err := trace.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory trace store: %w", err)
	}
	defer st.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	st.SetLogger(logger)

	arena := future.NewArena(
		future.WithFixedTokens(),
		future.WithRecorder(st),
		future.WithLogger(logger),
	)

	r := &runner{
		arena:     arena,
		store:     st,
		bindings:  make(map[string]*future.Handle),
		iterators: make(map[string]*future.Iterator),
		logger:    logger,
	}

	root := arena.From(r.seed(sc))
	r.bind("root", root)

	result := &Result{Steps: []StepResult{}}
	for i, step := range sc.Steps {
		sr, err := r.execute(i, step)
		if err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i, step.Op, err)
		}
		result.Steps = append(result.Steps, sr)
	}

	// Flush: wait for every issued op to settle so the trace is
	// complete before reading it back.
	for _, h := range r.tracked {
		_, _ = h.Result() // chain failures are part of the trace
	}

	events, err := st.List(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to read trace: %w", err)
	}
	result.Events = events
	return result, nil
}

// seed builds the root future's seed promise from the scenario's
// seed fields, applying the settlement delay when one is set.
func (r *runner) seed(sc *Scenario) *promise.Promise {
	p, resolver := promise.New()
	settle := func() {
		switch {
		case sc.FailWith != "":
			resolver(nil, errors.New(sc.FailWith))
		case sc.SeedFunc != "":
			fn, ok := builtins[sc.SeedFunc]
			if !ok {
				resolver(nil, fmt.Errorf("unknown seed_func %q", sc.SeedFunc))
				return
			}
			resolver(fn, nil)
		default:
			resolver(sc.Seed, nil)
		}
	}
	if sc.DelayMS > 0 {
		time.AfterFunc(time.Duration(sc.DelayMS)*time.Millisecond, settle)
	} else {
		settle()
	}
	return p
}

// bind registers a handle under name and tracks it for the flush.
func (r *runner) bind(name string, h *future.Handle) {
	if name != "" {
		r.bindings[name] = h
	}
	r.tracked = append(r.tracked, h)
}

// target resolves a step's of field to a handle, defaulting to root.
func (r *runner) target(of string) (*future.Handle, error) {
	name := of
	if name == "" {
		name = "root"
	}
	h, ok := r.bindings[name]
	if !ok {
		return nil, fmt.Errorf("unknown binding %q", name)
	}
	return h, nil
}

// operand resolves a step argument: {ref: name} maps reference a
// bound handle, everything else passes through as a plain value.
func (r *runner) operand(v any) (any, error) {
	m, ok := v.(map[string]any)
	if !ok || len(m) != 1 {
		return v, nil
	}
	name, ok := m["ref"].(string)
	if !ok {
		return v, nil
	}
	h, found := r.bindings[name]
	if !found {
		return nil, fmt.Errorf("unknown binding %q in ref", name)
	}
	return h, nil
}

func (r *runner) operands(vs []any) ([]any, error) {
	out := make([]any, len(vs))
	for i, v := range vs {
		o, err := r.operand(v)
		if err != nil {
			return nil, err
		}
		out[i] = o
	}
	return out, nil
}

// execute runs one step. Errors returned here abort the run; errors
// that are part of the scripted behavior (chain failures, rejected
// awaits) land in the step result instead.
func (r *runner) execute(i int, step Step) (StepResult, error) {
	sr := StepResult{Step: i, Op: step.Op, Of: step.Of, Key: step.Key, As: step.As}

	switch step.Op {
	case OpGet, OpHas, OpKeys, OpDescriptor, OpCall, OpNew:
		h, err := r.target(step.Of)
		if err != nil {
			return sr, err
		}
		var out *future.Handle
		switch step.Op {
		case OpGet:
			out = h.Get(step.Key)
		case OpHas:
			out = h.Has(step.Key)
		case OpKeys:
			out = h.OwnKeys()
		case OpDescriptor:
			out = h.GetOwnPropertyDescriptor(step.Key)
		case OpCall, OpNew:
			args, err := r.operands(step.Args)
			if err != nil {
				return sr, err
			}
			if step.Op == OpCall {
				out = h.Call(args...)
			} else {
				out = h.New(args...)
			}
		}
		r.bind(step.As, out)

	case OpSet:
		h, err := r.target(step.Of)
		if err != nil {
			return sr, err
		}
		v, err := r.operand(step.Value)
		if err != nil {
			return sr, err
		}
		ok := h.Set(step.Key, v)
		sr.OK = &ok

	case OpDelete:
		h, err := r.target(step.Of)
		if err != nil {
			return sr, err
		}
		ok := h.Delete(step.Key)
		sr.OK = &ok

	case OpAwait:
		h, err := r.target(step.Of)
		if err != nil {
			return sr, err
		}
		v, err := h.Result()
		if err != nil {
			sr.Error = err.Error()
		} else {
			sr.Value = v
		}

	case OpAll:
		args, err := r.operands(step.Args)
		if err != nil {
			return sr, err
		}
		v, err := future.All(args...).Result()
		if err != nil {
			sr.Error = err.Error()
		} else {
			sr.Value = v
		}

	case OpEnumerate:
		h, err := r.target(step.Of)
		if err != nil {
			return sr, err
		}
		name := step.As
		if name == "" {
			return sr, fmt.Errorf("enumerate requires as")
		}
		r.iterators[name] = h.Enumerate()

	case OpNext:
		it, ok := r.iterators[step.Of]
		if !ok {
			return sr, fmt.Errorf("unknown iterator %q", step.Of)
		}
		count := step.Count
		if count == 0 {
			count = 1
		}
		// Request all steps up front, then await them in order. With
		// count > 1 and a delayed seed this exercises the backlog of
		// outstanding requests.
		handles := make([]*future.Handle, count)
		for j := range handles {
			handles[j] = it.Next()
		}
		values := make([]any, 0, count)
		for _, nh := range handles {
			v, err := nh.Result()
			if err != nil {
				sr.Error = err.Error()
				break
			}
			values = append(values, v)
		}
		sr.Value = values

	case OpCollect:
		it, ok := r.iterators[step.Of]
		if !ok {
			return sr, fmt.Errorf("unknown iterator %q", step.Of)
		}
		values, err := it.Collect()
		if err != nil {
			sr.Error = err.Error()
		} else {
			sr.Value = values
		}

	case OpRelease:
		h, err := r.target(step.Of)
		if err != nil {
			return sr, err
		}
		ok := h.Release()
		sr.OK = &ok

	default:
		return sr, fmt.Errorf("unknown op %q", step.Op)
	}

	return sr, nil
}
