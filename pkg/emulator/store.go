package emulator

import (
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/papercomputeco/upvector/pkg/vector"
)

// record is a stored vector with its optional parts.
type record struct {
	id       vector.ID
	vec      vector.DenseVector
	sparse   *vector.SparseVector
	metadata vector.Metadata
	data     *string
}

func (r *record) fetchResult(includeVectors, includeMetadata, includeData bool) *vector.FetchResult {
	out := &vector.FetchResult{ID: r.id}
	if includeVectors {
		out.Vector = slices.Clone(r.vec)
		if r.sparse != nil {
			sv := r.sparse.Clone()
			out.SparseVector = &sv
		}
	}
	if includeMetadata {
		out.Metadata = maps.Clone(r.metadata)
	}
	if includeData && r.data != nil {
		out.Data = *r.data
	}
	return out
}

func (r *record) queryResult(score float32, includeVectors, includeMetadata, includeData bool) vector.QueryResult {
	f := r.fetchResult(includeVectors, includeMetadata, includeData)
	return vector.QueryResult{
		ID:           f.ID,
		Score:        score,
		Vector:       f.Vector,
		SparseVector: f.SparseVector,
		Metadata:     f.Metadata,
		Data:         f.Data,
	}
}

// size is a rough byte footprint used for the index size counter.
func (r *record) size() int64 {
	n := int64(len(r.id)) + int64(4*len(r.vec))
	if r.sparse != nil {
		n += int64(8 * r.sparse.Len())
	}
	if r.data != nil {
		n += int64(len(*r.data))
	}
	return n
}

type namespace struct {
	records map[vector.ID]*record
}

func newNamespace() *namespace {
	return &namespace{records: make(map[vector.ID]*record)}
}

// sorted returns the records ordered by id.
func (ns *namespace) sorted() []*record {
	ids := slices.Sorted(maps.Keys(ns.records))
	out := make([]*record, len(ids))
	for i, id := range ids {
		out[i] = ns.records[id]
	}
	return out
}

func (ns *namespace) matching(f filter) []*record {
	all := ns.sorted()
	if f == nil {
		return all
	}
	out := all[:0]
	for _, r := range all {
		if f.match(r.metadata) {
			out = append(out, r)
		}
	}
	return out
}

func (ns *namespace) withPrefix(prefix string) []*record {
	var out []*record
	for _, r := range ns.sorted() {
		if strings.HasPrefix(string(r.id), prefix) {
			out = append(out, r)
		}
	}
	return out
}

// session is server-held resumable query state. The full ranking is
// rendered when the session starts and handed out in order.
type session struct {
	results    []vector.QueryResult
	offset     int
	maxIdle    time.Duration
	lastAccess time.Time
}

func (s *session) next(k int) []vector.QueryResult {
	end := min(s.offset+k, len(s.results))
	out := s.results[s.offset:end]
	s.offset = end
	return out
}

// store holds every namespace and session of the emulated index.
type store struct {
	mu         sync.Mutex
	namespaces map[string]*namespace
	sessions   map[string]*session
}

func newStore() *store {
	return &store{
		namespaces: map[string]*namespace{"": newNamespace()},
		sessions:   make(map[string]*session),
	}
}

// namespace returns the named namespace, creating it when create is set.
// The caller holds mu.
func (s *store) namespace(name string, create bool) *namespace {
	ns, ok := s.namespaces[name]
	if !ok && create {
		ns = newNamespace()
		s.namespaces[name] = ns
	}
	return ns
}

// session returns a live session, dropping expired ones first. The caller
// holds mu.
func (s *store) session(id string, now time.Time) (*session, bool) {
	for key, sess := range s.sessions {
		if now.Sub(sess.lastAccess) > sess.maxIdle {
			delete(s.sessions, key)
		}
	}
	sess, ok := s.sessions[id]
	if ok {
		sess.lastAccess = now
	}
	return sess, ok
}
