package cliui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/papercomputeco/upvector/pkg/vector"
)

// ParseDense parses a comma separated list of floats, e.g. "0.1,0.2,0.3".
// An empty string yields nil.
func ParseDense(s string) (vector.DenseVector, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	parts := strings.Split(s, ",")
	out := make(vector.DenseVector, len(parts))
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return nil, fmt.Errorf("invalid vector element %d %q: %w", i, p, err)
		}
		out[i] = float32(f)
	}
	return out, nil
}

// ParseSparse parses comma separated index:value pairs, e.g. "1:0.5,7:0.2".
// An empty string yields nil.
func ParseSparse(s string) (*vector.SparseVector, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	parts := strings.Split(s, ",")
	sv := &vector.SparseVector{
		Indices: make([]int32, len(parts)),
		Values:  make([]float32, len(parts)),
	}
	for i, p := range parts {
		idx, val, ok := strings.Cut(strings.TrimSpace(p), ":")
		if !ok {
			return nil, fmt.Errorf("invalid sparse element %q: expected index:value", p)
		}
		n, err := strconv.ParseInt(idx, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid sparse index %q: %w", idx, err)
		}
		f, err := strconv.ParseFloat(val, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid sparse value %q: %w", val, err)
		}
		sv.Indices[i] = int32(n)
		sv.Values[i] = float32(f)
	}
	return sv, nil
}

// ParseIDs converts positional arguments to record ids.
func ParseIDs(args []string) []vector.ID {
	ids := make([]vector.ID, len(args))
	for i, a := range args {
		ids[i] = vector.ID(a)
	}
	return ids
}
