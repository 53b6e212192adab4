package emulator

import (
	"math"
	"sort"

	"github.com/papercomputeco/upvector/pkg/vector"
	"github.com/papercomputeco/upvector/pkg/vector/payload"
)

// Similarity functions of a dense index.
const (
	SimilarityCosine     = "COSINE"
	SimilarityEuclidean  = "EUCLIDEAN"
	SimilarityDotProduct = "DOT_PRODUCT"
)

// rrfK is the rank offset of reciprocal rank fusion.
const rrfK = 60

type scored struct {
	rec   *record
	score float32
}

// denseScore maps the similarity of a and b into a score where higher is
// more similar. Cosine and dot product land in [0, 1] for unit vectors.
func denseScore(similarity string, a, b vector.DenseVector) float32 {
	switch similarity {
	case SimilarityEuclidean:
		var d float64
		for i := range a {
			diff := float64(a[i]) - float64(b[i])
			d += diff * diff
		}
		return float32(1 / (1 + d))
	case SimilarityDotProduct:
		return float32((1 + dot(a, b)) / 2)
	default:
		na, nb := norm(a), norm(b)
		if na == 0 || nb == 0 {
			return 0.5
		}
		return float32((1 + dot(a, b)/(na*nb)) / 2)
	}
}

func dot(a, b vector.DenseVector) float64 {
	var s float64
	for i := range a {
		s += float64(a[i]) * float64(b[i])
	}
	return s
}

func norm(a vector.DenseVector) float64 {
	return math.Sqrt(dot(a, a))
}

// sparseScore is the dot product over shared indices. weights, when set,
// scales each query dimension.
func sparseScore(query, doc *vector.SparseVector, weights map[int32]float64) float32 {
	docValues := make(map[int32]float32, doc.Len())
	for i, idx := range doc.Indices {
		docValues[idx] = doc.Values[i]
	}

	var s float64
	for i, idx := range query.Indices {
		v, ok := docValues[idx]
		if !ok {
			continue
		}
		w := 1.0
		if weights != nil {
			w = weights[idx]
		}
		s += w * float64(query.Values[i]) * float64(v)
	}
	return float32(s)
}

// idfWeights computes inverse document frequency for the query dimensions
// over recs.
func idfWeights(query *vector.SparseVector, recs []*record) map[int32]float64 {
	n := float64(len(recs))
	weights := make(map[int32]float64, query.Len())
	for _, idx := range query.Indices {
		var df float64
		for _, r := range recs {
			if r.sparse != nil && containsIndex(r.sparse, idx) {
				df++
			}
		}
		weights[idx] = math.Log((n-df+0.5)/(df+0.5) + 1)
	}
	return weights
}

func containsIndex(sv *vector.SparseVector, idx int32) bool {
	for _, i := range sv.Indices {
		if i == idx {
			return true
		}
	}
	return false
}

// rank sorts candidates by descending score, breaking ties by id so result
// order is stable across calls.
func rank(cands []scored) {
	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].score != cands[j].score {
			return cands[i].score > cands[j].score
		}
		return cands[i].rec.id < cands[j].rec.id
	})
}

// fuse combines a dense and a sparse ranking of the same records.
func fuse(algo payload.FusionAlgorithm, dense, sparse []scored) []scored {
	total := make(map[vector.ID]float32, len(dense))
	recs := make(map[vector.ID]*record, len(dense))

	switch algo {
	case payload.DBSF:
		for _, list := range [][]scored{dense, sparse} {
			lo, hi := distributionBounds(list)
			for _, c := range list {
				recs[c.rec.id] = c.rec
				v := float32(0.5)
				if hi > lo {
					v = float32((float64(c.score) - lo) / (hi - lo))
					v = min(max(v, 0), 1)
				}
				total[c.rec.id] += v
			}
		}
	default:
		for _, list := range [][]scored{dense, sparse} {
			for i, c := range list {
				recs[c.rec.id] = c.rec
				total[c.rec.id] += float32(1 / float64(rrfK+i+1))
			}
		}
	}

	out := make([]scored, 0, len(total))
	for id, s := range total {
		out = append(out, scored{rec: recs[id], score: s})
	}
	rank(out)
	return out
}

// distributionBounds returns mean minus and plus three standard deviations
// of the scores in list.
func distributionBounds(list []scored) (float64, float64) {
	if len(list) == 0 {
		return 0, 0
	}
	var mean float64
	for _, c := range list {
		mean += float64(c.score)
	}
	mean /= float64(len(list))

	var variance float64
	for _, c := range list {
		d := float64(c.score) - mean
		variance += d * d
	}
	sd := math.Sqrt(variance / float64(len(list)))
	return mean - 3*sd, mean + 3*sd
}
