package runtime

import (
	"github.com/ormasoftchile/inquest/pkg/schema"
)

// parameterStore holds the resolution state: the immutable initial context
// and the ordered list of current results. A parameter has at most one
// current result; recording again supersedes in place, keeping the original
// position. Initial values are visible until a result shadows them —
// falsy values (false, 0, "") are legitimate resolved values.
type parameterStore struct {
	initial map[string]any
	results []Result
	index   map[string]int // parameter → position in results
}

func newParameterStore(initial map[string]any) *parameterStore {
	st := &parameterStore{
		initial: make(map[string]any, len(initial)),
		index:   make(map[string]int),
	}
	for k, v := range initial {
		st.initial[k] = schema.CloneValue(v)
	}
	return st
}

// get returns the current value of a parameter: its result value if resolved,
// otherwise its initial value.
func (st *parameterStore) get(name string) (any, bool) {
	if i, ok := st.index[name]; ok {
		return st.results[i].Value, true
	}
	v, ok := st.initial[name]
	return v, ok
}

// has reports whether the parameter currently holds a value from any origin.
func (st *parameterStore) has(name string) bool {
	_, ok := st.get(name)
	return ok
}

// resolved returns the current result for a parameter, if one exists.
func (st *parameterStore) resolved(name string) (Result, bool) {
	if i, ok := st.index[name]; ok {
		return st.results[i], true
	}
	return Result{}, false
}

// record stores a result, superseding any previous result for the same
// parameter in place.
func (st *parameterStore) record(r Result) {
	if i, ok := st.index[r.Parameter]; ok {
		st.results[i] = r
		return
	}
	st.index[r.Parameter] = len(st.results)
	st.results = append(st.results, r)
}

// remove deletes the current result for a parameter. The initial value, if
// any, becomes visible again.
func (st *parameterStore) remove(name string) {
	i, ok := st.index[name]
	if !ok {
		return
	}
	st.results = append(st.results[:i], st.results[i+1:]...)
	delete(st.index, name)
	for k, v := range st.index {
		if v > i {
			st.index[k] = v - 1
		}
	}
}

// evalContext builds the merged name→value environment for expression
// evaluation: initial values overlaid with resolved values. A skipped
// question that recorded no result leaves the parameter absent, so
// expressions see it as undefined.
func (st *parameterStore) evalContext() map[string]any {
	env := make(map[string]any, len(st.initial)+len(st.results))
	for k, v := range st.initial {
		env[k] = v
	}
	for _, r := range st.results {
		env[r.Parameter] = r.Value
	}
	return env
}

// values returns a defensive copy of the merged context.
func (st *parameterStore) values() map[string]any {
	env := st.evalContext()
	out := make(map[string]any, len(env))
	for k, v := range env {
		out[k] = schema.CloneValue(v)
	}
	return out
}

// snapshotResults returns defensive copies of all current results in
// recording order.
func (st *parameterStore) snapshotResults() []Result {
	out := make([]Result, len(st.results))
	for i, r := range st.results {
		out[i] = r.Clone()
	}
	return out
}
