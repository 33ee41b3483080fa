// Package errs collects the sentinel errors shared across the hasher,
// clusterizer and persistence layers.
package errs

import "errors"

// Common errors used throughout the perceptual hashing and clustering library.
var (
	ErrPreprocessFailed  = errors.New("image preprocessing failed")
	ErrImageDecodeFailed = errors.New("failed to decode image data")
	ErrImageTooSmall     = errors.New("image dimensions too small for analysis")
	ErrLengthMismatch    = errors.New("fingerprints have different word lengths")
	ErrInvalidBitBudget  = errors.New("bit budget needs a coefficient block larger than the DCT grid")

	ErrStoreOpenFailed  = errors.New("failed to open store")
	ErrStoreReadFailed  = errors.New("failed to read from store")
	ErrStoreWriteFailed = errors.New("failed to write to store")
	ErrStoreClosed      = errors.New("store is closed")
	ErrHashNotFound      = errors.New("hash not found in store")

	ErrParseFingerprint = errors.New("malformed fingerprint text")
	ErrParseLine        = errors.New("malformed hash line")

	ErrInvalidConfig = errors.New("invalid configuration")
)
