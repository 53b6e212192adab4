package emulator

import (
	"context"
	"maps"
	"slices"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/papercomputeco/upvector/pkg/embeddings"
	"github.com/papercomputeco/upvector/pkg/vector"
	"github.com/papercomputeco/upvector/pkg/vector/payload"
)

func (s *Server) wantsDense() bool  { return s.config.IndexType != IndexSparse }
func (s *Server) wantsSparse() bool { return s.config.IndexType != IndexDense }

func (s *Server) checkVectors(dense vector.DenseVector, sparse *vector.SparseVector, required bool) error {
	if dense != nil {
		if !s.wantsDense() {
			return badRequest("This index does not support dense vectors")
		}
		if len(dense) != s.config.Dimension {
			return badRequest("Invalid vector dimension: %d, expected: %d", len(dense), s.config.Dimension)
		}
	}
	if sparse != nil {
		if !s.wantsSparse() {
			return badRequest("This index does not support sparse vectors")
		}
		if len(sparse.Indices) != len(sparse.Values) {
			return badRequest("Sparse vector indices and values must have the same length")
		}
	}
	if !required {
		return nil
	}
	if s.wantsDense() && dense == nil {
		return badRequest("This index requires dense vectors")
	}
	if s.wantsSparse() && sparse == nil {
		return badRequest("This index requires sparse vectors")
	}
	return nil
}

// embed turns text into the halves selected by dense and sparse.
func (s *Server) embed(ctx context.Context, text string, dense, sparse bool) (vector.DenseVector, *vector.SparseVector, error) {
	if s.config.Embedder == nil {
		return nil, nil, badRequest("Embedding data for this index is not supported")
	}

	var dv vector.DenseVector
	if dense {
		emb, err := s.config.Embedder.Embed(ctx, text)
		if err != nil {
			return nil, nil, err
		}
		if len(emb) != s.config.Dimension {
			return nil, nil, badRequest("Embedding dimension %d does not match index dimension %d", len(emb), s.config.Dimension)
		}
		dv = emb
	}

	var sv *vector.SparseVector
	if sparse {
		se, ok := s.config.Embedder.(embeddings.SparseEmbedder)
		if !ok {
			return nil, nil, badRequest("Sparse embedding is not supported by the configured embedder")
		}
		emb, err := se.EmbedSparse(ctx, text)
		if err != nil {
			return nil, nil, err
		}
		sv = &emb
	}

	return dv, sv, nil
}

func (s *Server) upsert(ns string, items []payload.VectorPayload) error {
	recs := make([]*record, 0, len(items))
	for _, it := range items {
		if it.ID == "" {
			return badRequest("Vector id is required")
		}
		if err := s.checkVectors(it.Vector, it.SparseVector, true); err != nil {
			return err
		}
		recs = append(recs, &record{
			id:       it.ID,
			vec:      it.Vector,
			sparse:   it.SparseVector,
			metadata: it.Metadata,
			data:     it.Data,
		})
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	space := s.store.namespace(ns, true)
	for _, r := range recs {
		space.records[r.id] = r
	}
	return nil
}

func (s *Server) upsertData(ctx context.Context, ns string, items []payload.DataPayload) error {
	recs := make([]*record, 0, len(items))
	for _, it := range items {
		if it.ID == "" {
			return badRequest("Vector id is required")
		}
		dv, sv, err := s.embed(ctx, it.Data, s.wantsDense(), s.wantsSparse())
		if err != nil {
			return err
		}
		data := it.Data
		recs = append(recs, &record{id: it.ID, vec: dv, sparse: sv, metadata: it.Metadata, data: &data})
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	space := s.store.namespace(ns, true)
	for _, r := range recs {
		space.records[r.id] = r
	}
	return nil
}

// queryVectors resolves the dense and sparse halves of q, embedding data
// queries.
func (s *Server) queryVectors(ctx context.Context, q payload.QueryPayload, data bool) (vector.DenseVector, *vector.SparseVector, error) {
	if !data {
		if q.Data != "" {
			return nil, nil, badRequest("Data queries must be sent to the query-data endpoint")
		}
		if q.Vector == nil && q.SparseVector == nil {
			return nil, nil, badRequest("Query must contain a vector or a sparse vector")
		}
		if err := s.checkVectors(q.Vector, q.SparseVector, false); err != nil {
			return nil, nil, err
		}
		return q.Vector, q.SparseVector, nil
	}

	if q.Data == "" {
		return nil, nil, badRequest("Query data is required")
	}
	dense, sparse := s.wantsDense(), s.wantsSparse()
	if s.config.IndexType == IndexHybrid {
		switch q.QueryMode {
		case payload.QueryModeDense:
			sparse = false
		case payload.QueryModeSparse:
			dense = false
		}
	}
	return s.embed(ctx, q.Data, dense, sparse)
}

// search ranks every record of ns matching q's filter.
func (s *Server) search(ctx context.Context, ns string, q payload.QueryPayload, data bool) ([]scored, error) {
	if q.TopK <= 0 {
		return nil, badRequest("topK must be greater than 0")
	}
	f, err := parseFilter(q.Filter)
	if err != nil {
		return nil, badRequest("Invalid filter: %v", err)
	}
	dv, sv, err := s.queryVectors(ctx, q, data)
	if err != nil {
		return nil, err
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	space := s.store.namespace(ns, false)
	if space == nil {
		return nil, nil
	}
	recs := space.matching(f)

	var denseList, sparseList []scored
	if dv != nil {
		for _, r := range recs {
			if r.vec != nil {
				denseList = append(denseList, scored{rec: r, score: denseScore(s.config.Similarity, dv, r.vec)})
			}
		}
		rank(denseList)
	}
	if sv != nil {
		var weights map[int32]float64
		if q.WeightingStrategy == payload.IDF {
			weights = idfWeights(sv, recs)
		}
		for _, r := range recs {
			if r.sparse != nil && overlaps(sv, r.sparse) {
				sparseList = append(sparseList, scored{rec: r, score: sparseScore(sv, r.sparse, weights)})
			}
		}
		rank(sparseList)
	}

	switch {
	case dv != nil && sv != nil:
		return fuse(q.FusionAlgorithm, denseList, sparseList), nil
	case dv != nil:
		return denseList, nil
	default:
		return sparseList, nil
	}
}

func overlaps(a, b *vector.SparseVector) bool {
	for _, idx := range a.Indices {
		if containsIndex(b, idx) {
			return true
		}
	}
	return false
}

func render(list []scored, q payload.QueryPayload) []vector.QueryResult {
	out := make([]vector.QueryResult, len(list))
	for i, c := range list {
		out[i] = c.rec.queryResult(c.score, q.IncludeVectors, q.IncludeMetadata, q.IncludeData)
	}
	return out
}

func (s *Server) query(ctx context.Context, ns string, q payload.QueryPayload, data bool) ([]vector.QueryResult, error) {
	list, err := s.search(ctx, ns, q, data)
	if err != nil {
		return nil, err
	}
	return render(list[:min(q.TopK, len(list))], q), nil
}

func (s *Server) startResumable(ctx context.Context, ns string, q payload.ResumableQueryPayload, data bool) (payload.ResumableStartResult, error) {
	if q.MaxIdle < 0 {
		return payload.ResumableStartResult{}, badRequest("maxIdle must not be negative")
	}
	list, err := s.search(ctx, ns, q.QueryPayload, data)
	if err != nil {
		return payload.ResumableStartResult{}, err
	}

	maxIdle := DefaultMaxIdle
	if q.MaxIdle > 0 {
		maxIdle = time.Duration(q.MaxIdle) * time.Second
	}

	sess := &session{
		results:    render(list, q.QueryPayload),
		maxIdle:    maxIdle,
		lastAccess: s.config.Now(),
	}
	first := sess.next(q.TopK)

	id := uuid.NewString()
	s.store.mu.Lock()
	s.store.sessions[id] = sess
	s.store.mu.Unlock()

	s.logger.Debug("resumable query started", "session", id, "results", len(sess.results))
	return payload.ResumableStartResult{UUID: id, Scores: first}, nil
}

func (s *Server) nextResumable(p payload.ResumableNextPayload) ([]vector.QueryResult, error) {
	if p.AdditionalK <= 0 {
		return nil, badRequest("additionalK must be greater than 0")
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	sess, found := s.store.session(p.UUID, s.config.Now())
	if !found {
		return nil, notFound("Resumable query not found: %s", p.UUID)
	}
	return sess.next(p.AdditionalK), nil
}

func (s *Server) endResumable(p payload.ResumableEndPayload) (string, error) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	if _, found := s.store.session(p.UUID, s.config.Now()); !found {
		return "", notFound("Resumable query not found: %s", p.UUID)
	}
	delete(s.store.sessions, p.UUID)
	return "Success", nil
}

func (s *Server) fetch(ns string, p payload.FetchPayload) ([]*vector.FetchResult, error) {
	if (len(p.IDs) == 0) == (p.Prefix == "") {
		return nil, badRequest("Exactly one of ids or prefix is required")
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	space := s.store.namespace(ns, false)
	if p.Prefix != "" {
		out := []*vector.FetchResult{}
		if space == nil {
			return out, nil
		}
		for _, r := range space.withPrefix(p.Prefix) {
			out = append(out, r.fetchResult(p.IncludeVectors, p.IncludeMetadata, p.IncludeData))
		}
		return out, nil
	}

	out := make([]*vector.FetchResult, len(p.IDs))
	if space == nil {
		return out, nil
	}
	for i, id := range p.IDs {
		if r, found := space.records[id]; found {
			out[i] = r.fetchResult(p.IncludeVectors, p.IncludeMetadata, p.IncludeData)
		}
	}
	return out, nil
}

func (s *Server) deleteRecords(ns string, p payload.DeletePayload) (payload.DeleteResult, error) {
	var f filter
	if p.Filter != "" {
		var err error
		if f, err = parseFilter(p.Filter); err != nil {
			return payload.DeleteResult{}, badRequest("Invalid filter: %v", err)
		}
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	space := s.store.namespace(ns, false)
	if space == nil {
		return payload.DeleteResult{}, nil
	}

	var victims []*record
	switch {
	case len(p.IDs) > 0:
		for _, id := range p.IDs {
			if r, found := space.records[id]; found {
				victims = append(victims, r)
			}
		}
	case p.Prefix != "":
		victims = space.withPrefix(p.Prefix)
	case f != nil:
		victims = space.matching(f)
	default:
		return payload.DeleteResult{}, badRequest("One of ids, prefix or filter is required")
	}

	for _, r := range victims {
		delete(space.records, r.id)
	}
	return payload.DeleteResult{Deleted: len(victims)}, nil
}

func (s *Server) rangeScan(ns string, p payload.RangePayload) (vector.RangeResult, error) {
	if p.Limit <= 0 {
		return vector.RangeResult{}, badRequest("limit must be greater than 0")
	}
	offset := 0
	if p.Cursor != "" {
		n, err := strconv.Atoi(p.Cursor)
		if err != nil || n < 0 {
			return vector.RangeResult{}, badRequest("Invalid cursor: %s", p.Cursor)
		}
		offset = n
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	result := vector.RangeResult{Vectors: []*vector.FetchResult{}}
	space := s.store.namespace(ns, false)
	if space == nil {
		return result, nil
	}

	recs := space.sorted()
	if p.Prefix != "" {
		recs = space.withPrefix(p.Prefix)
	}
	if offset >= len(recs) {
		return result, nil
	}

	end := min(offset+p.Limit, len(recs))
	for _, r := range recs[offset:end] {
		result.Vectors = append(result.Vectors, r.fetchResult(p.IncludeVectors, p.IncludeMetadata, p.IncludeData))
	}
	if end < len(recs) {
		result.NextCursor = strconv.Itoa(end)
	}
	return result, nil
}

func (s *Server) update(ns string, p payload.UpdatePayload) (payload.UpdateResult, error) {
	if p.ID == "" {
		return payload.UpdateResult{}, badRequest("Vector id is required")
	}
	if err := s.checkVectors(p.Vector, p.SparseVector, false); err != nil {
		return payload.UpdateResult{}, err
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	space := s.store.namespace(ns, false)
	if space == nil {
		return payload.UpdateResult{}, nil
	}
	r, found := space.records[p.ID]
	if !found {
		return payload.UpdateResult{}, nil
	}

	if p.Vector != nil {
		r.vec = p.Vector
	}
	if p.SparseVector != nil {
		r.sparse = p.SparseVector
	}
	if p.Data != nil {
		data := *p.Data
		r.data = &data
	}
	if p.Metadata != nil {
		if p.MetadataUpdateMode == payload.MetadataPatch {
			r.metadata = mergePatch(r.metadata, p.Metadata)
		} else {
			r.metadata = p.Metadata
		}
	}
	return payload.UpdateResult{Updated: 1}, nil
}

// mergePatch applies patch to dst following JSON merge patch rules.
func mergePatch(dst, patch map[string]any) map[string]any {
	if dst == nil {
		dst = make(map[string]any, len(patch))
	} else {
		dst = maps.Clone(dst)
	}
	for k, v := range patch {
		switch pv := v.(type) {
		case nil:
			delete(dst, k)
		case map[string]any:
			existing, _ := dst[k].(map[string]any)
			dst[k] = mergePatch(existing, pv)
		default:
			dst[k] = v
		}
	}
	return dst
}

func (s *Server) info() vector.IndexInfo {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	info := vector.IndexInfo{
		Dimension:          s.config.Dimension,
		SimilarityFunction: s.config.Similarity,
		IndexType:          s.config.IndexType,
		Namespaces:         make(map[string]vector.NamespaceInfo, len(s.store.namespaces)),
	}
	for name, space := range s.store.namespaces {
		info.Namespaces[name] = vector.NamespaceInfo{VectorCount: len(space.records)}
		info.VectorCount += len(space.records)
		for _, r := range space.records {
			info.IndexSize += r.size()
		}
	}
	if s.wantsDense() {
		info.DenseIndex = &vector.DenseIndexInfo{
			Dimension:          s.config.Dimension,
			SimilarityFunction: s.config.Similarity,
			EmbeddingModel:     s.config.EmbeddingModel,
		}
	}
	if s.wantsSparse() {
		info.SparseIndex = &vector.SparseIndexInfo{EmbeddingModel: s.config.EmbeddingModel}
	}
	return info
}

func (s *Server) reset(ns string, all bool) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	if all {
		s.store.namespaces = map[string]*namespace{"": newNamespace()}
		return
	}
	if space := s.store.namespace(ns, false); space != nil {
		space.records = make(map[vector.ID]*record)
	}
}

func (s *Server) listNamespaces() []string {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	names := make([]string, 0, len(s.store.namespaces))
	for name := range s.store.namespaces {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (s *Server) deleteNamespace(ns string) error {
	if ns == "" {
		return badRequest("Cannot delete the default namespace")
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	if _, found := s.store.namespaces[ns]; !found {
		return notFound("Namespace %s does not exist", ns)
	}
	delete(s.store.namespaces, ns)
	return nil
}
