package knowledge

import "errors"

// Sentinel errors for knowledge store operations.
// Both are fatal at startup: the service cannot answer without a corpus.
var (
	// ErrDataset indicates the dataset snapshot is unreadable or corrupt.
	ErrDataset = errors.New("dataset load failed")

	// ErrEmptyCorpus indicates no valid items remain to index.
	ErrEmptyCorpus = errors.New("empty corpus")
)
