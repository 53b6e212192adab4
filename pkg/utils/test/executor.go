package testutils

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// Call is one request seen by a RecordingExecutor.
type Call struct {
	Path    string
	Payload json.RawMessage
}

// Decode unmarshals the recorded payload into v.
func (c Call) Decode(v any) error {
	return json.Unmarshal(c.Payload, v)
}

type response struct {
	result any
	err    error
}

// RecordingExecutor is a transport.Executor that records every request and
// answers from responses queued per path. The last queued response for a
// path is reused once the queue drains.
type RecordingExecutor struct {
	mu        sync.Mutex
	calls     []Call
	responses map[string][]response
}

// NewRecordingExecutor creates an executor with no queued responses.
func NewRecordingExecutor() *RecordingExecutor {
	return &RecordingExecutor{responses: make(map[string][]response)}
}

// On queues result as the next answer for path.
func (r *RecordingExecutor) On(path string, result any) *RecordingExecutor {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.responses[path] = append(r.responses[path], response{result: result})
	return r
}

// OnError queues err as the next answer for path.
func (r *RecordingExecutor) OnError(path string, err error) *RecordingExecutor {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.responses[path] = append(r.responses[path], response{err: err})
	return r
}

// Execute implements transport.Executor.
func (r *RecordingExecutor) Execute(_ context.Context, path string, payload, out any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling %s request: %w", path, err)
	}

	r.mu.Lock()
	r.calls = append(r.calls, Call{Path: path, Payload: raw})
	queue := r.responses[path]
	if len(queue) == 0 {
		r.mu.Unlock()
		return fmt.Errorf("no response queued for %s", path)
	}
	resp := queue[0]
	if len(queue) > 1 {
		r.responses[path] = queue[1:]
	}
	r.mu.Unlock()

	if resp.err != nil {
		return resp.err
	}
	if out == nil {
		return nil
	}
	data, err := json.Marshal(resp.result)
	if err != nil {
		return fmt.Errorf("marshaling %s result: %w", path, err)
	}
	return json.Unmarshal(data, out)
}

// Calls returns every recorded request in order.
func (r *RecordingExecutor) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// CallsTo returns the recorded requests sent to path.
func (r *RecordingExecutor) CallsTo(path string) []Call {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []Call
	for _, c := range r.calls {
		if c.Path == path {
			out = append(out, c)
		}
	}
	return out
}
