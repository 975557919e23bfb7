package codec2

// M-best search through a multi-stage vector quantizer. Rather than taking
// the greedy winner at each stage, the search carries the mbestEntries best
// partial paths forward, which recovers most of the loss of a full joint
// search at a fraction of the cost.

const mbestEntries = 5

type mbestCandidate struct {
	indexes []int     // chosen index per completed stage
	resid   []float64 // target minus the chosen entries so far
	err     float64   // squared norm of resid
}

// searchStages quantizes target (dimension k) through the given stage
// tables, returning one index per stage.
func searchStages(stages [][]float64, k int, target []float64) []int {
	resid := make([]float64, k)
	copy(resid, target)
	cands := []mbestCandidate{{indexes: []int{}, resid: resid}}

	for _, stage := range stages {
		entries := len(stage) / k
		var next []mbestCandidate
		for _, cand := range cands {
			for j := 0; j < entries; j++ {
				e := 0.0
				for i := 0; i < k; i++ {
					diff := cand.resid[i] - stage[j*k+i]
					e += diff * diff
				}
				next = mbestInsert(next, cand, j, e, k, stage)
			}
		}
		cands = next
	}

	best := cands[0]
	for _, cand := range cands[1:] {
		if cand.err < best.err {
			best = cand
		}
	}
	return best.indexes
}

// mbestInsert keeps the candidate list sorted by error, bounded at
// mbestEntries. The residual for a new entry is only materialized when the
// candidate actually makes the list.
func mbestInsert(list []mbestCandidate, parent mbestCandidate, index int, err float64, k int, stage []float64) []mbestCandidate {
	if len(list) >= mbestEntries && err >= list[len(list)-1].err {
		return list
	}

	resid := make([]float64, k)
	for i := 0; i < k; i++ {
		resid[i] = parent.resid[i] - stage[index*k+i]
	}
	indexes := make([]int, len(parent.indexes)+1)
	copy(indexes, parent.indexes)
	indexes[len(parent.indexes)] = index
	cand := mbestCandidate{indexes: indexes, resid: resid, err: err}

	pos := len(list)
	for pos > 0 && list[pos-1].err > err {
		pos--
	}
	list = append(list, mbestCandidate{})
	copy(list[pos+1:], list[pos:])
	list[pos] = cand
	if len(list) > mbestEntries {
		list = list[:mbestEntries]
	}
	return list
}
