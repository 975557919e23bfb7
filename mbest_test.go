package codec2

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchStagesExactMatch(t *testing.T) {
	// Two stages over 2-dimensional vectors. The target is exactly the sum
	// of one entry from each stage, and the search must find that pair.
	stage1 := []float64{
		0, 0,
		10, 10,
		20, 20,
		-10, 5,
	}
	stage2 := []float64{
		0, 0,
		1, -1,
		2, 2,
	}

	indexes := searchStages([][]float64{stage1, stage2}, 2, []float64{21, 19})
	require.Len(t, indexes, 2)
	assert.Equal(t, 2, indexes[0])
	assert.Equal(t, 1, indexes[1])
}

func TestSearchStagesSingleStage(t *testing.T) {
	stage := []float64{
		100, 200,
		300, 400,
		150, 250,
	}
	indexes := searchStages([][]float64{stage}, 2, []float64{160, 240})
	require.Len(t, indexes, 1)
	assert.Equal(t, 2, indexes[0])
}

// The staged search must beat (or match) a greedy stage-by-stage search,
// that being the point of keeping multiple survivors per stage.
func TestSearchStagesBeatsGreedy(t *testing.T) {
	// Greedy picks stage1 entry {10, 0} (distance 2 to target {9, 1}) but
	// the best pair is {8, 8} + {1, -7} = {9, 1} exactly.
	stage1 := []float64{
		10, 0,
		8, 8,
	}
	stage2 := []float64{
		0, 0,
		1, -7,
	}
	target := []float64{9, 1}

	indexes := searchStages([][]float64{stage1, stage2}, 2, target)
	require.Len(t, indexes, 2)

	got := make([]float64, 2)
	stages := [][]float64{stage1, stage2}
	for s, stage := range stages {
		for i := 0; i < 2; i++ {
			got[i] += stage[indexes[s]*2+i]
		}
	}
	assert.InDeltaSlice(t, target, got, 1e-12)
}

func TestMbestInsertKeepsSorted(t *testing.T) {
	stage := []float64{1, 2, 3}
	list := make([]mbestCandidate, 0, mbestEntries)
	parent := mbestCandidate{resid: []float64{10.0}}

	for _, e := range []float64{5.0, 1.0, 3.0, 0.5, 9.0, 2.0} {
		list = mbestInsert(list, parent, 0, e, 1, stage)
	}

	require.Len(t, list, mbestEntries)
	for i := 1; i < len(list); i++ {
		assert.LessOrEqual(t, list[i-1].err, list[i].err)
	}
	assert.Equal(t, 0.5, list[0].err)
}
