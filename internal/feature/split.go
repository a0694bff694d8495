package feature

import "math/rand"

// Split shuffles the dataset with the given seed and cuts it into train and
// test parts. The same seed over the same rows always yields the same
// partition; rows never appear in both parts.
func Split(ds *Dataset, testRatio float64, seed int64) (train, test *Dataset) {
	n := len(ds.X)
	perm := rand.New(rand.NewSource(seed)).Perm(n)

	nTest := int(float64(n) * testRatio)
	train = &Dataset{Names: ds.Names}
	test = &Dataset{Names: ds.Names}
	for i, idx := range perm {
		if i < nTest {
			test.X = append(test.X, ds.X[idx])
			test.Y = append(test.Y, ds.Y[idx])
		} else {
			train.X = append(train.X, ds.X[idx])
			train.Y = append(train.Y, ds.Y[idx])
		}
	}
	return train, test
}
