package composition

import (
	"crypto/rand"
	"math/big"
)

// Source produces uniformly distributed ints in [0, n).
// *math/rand.Rand satisfies Source.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}

// cryptoSource implements Source using crypto/rand.
type cryptoSource struct{}

// NewCryptoSource returns an unseeded Source backed by crypto/rand, safe
// for concurrent use.
func NewCryptoSource() Source {
	return cryptoSource{}
}

// Intn panics when n <= 0 or crypto/rand fails.
func (cryptoSource) Intn(n int) int {
	if n <= 0 {
		panic("composition: Intn called with n <= 0")
	}
	val, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic("composition: crypto/rand failure: " + err.Error())
	}
	return int(val.Int64())
}
