package ingestion

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
)

var errTooFewRows = errors.New("dataset too small to split")

// TrainTestSplit partitions row positions 0..n-1 into train and test sets.
// The test set gets ceil(testSize*n) rows taken from the front of a seeded
// permutation and the train set gets the rest, so the same (n, testSize,
// seed) always yields the same partition.
func TrainTestSplit(n int, testSize float64, seed int64) (train, test []int, err error) {
	if testSize <= 0 || testSize >= 1 {
		return nil, nil, fmt.Errorf("test size %v outside (0, 1)", testSize)
	}
	// The epsilon keeps products like 0.2*15 = 3.0000000000000004 at 3.
	nTest := int(math.Ceil(testSize*float64(n) - 1e-9))
	nTrain := n - nTest
	if nTest == 0 || nTrain <= 0 {
		return nil, nil, fmt.Errorf("%w: %d rows with test size %v", errTooFewRows, n, testSize)
	}

	perm := rand.New(rand.NewSource(seed)).Perm(n)
	return perm[nTest:], perm[:nTest], nil
}
