package passengerhash

import "math"

// Load factor tiers. Larger tables run sparser to keep chains short.
const (
	DefaultLoadFactor = 0.7
	LargeLoadFactor   = 0.6 // above LargeThreshold entries
	HugeLoadFactor    = 0.5 // above HugeThreshold entries

	LargeThreshold = 100_000
	HugeThreshold  = 1_000_000
)

// LoadFactor returns the target load factor for a table holding n entries.
func LoadFactor(n int) float64 {
	switch {
	case n > HugeThreshold:
		return HugeLoadFactor
	case n > LargeThreshold:
		return LargeLoadFactor
	default:
		return DefaultLoadFactor
	}
}

// TableSize returns the bucket count for a table expected to hold desired
// entries: the smallest prime >= ceil(desired / LoadFactor(desired)).
func TableSize(desired int) int {
	desired = max(desired, 1)
	return NextPrime(int(math.Ceil(float64(desired) / LoadFactor(desired))))
}

// NextPrime returns the smallest prime >= n.
func NextPrime(n int) int {
	if n <= 2 {
		return 2
	}
	if n%2 == 0 {
		n++
	}
	for !IsPrime(n) {
		n += 2
	}
	return n
}

// IsPrime reports whether n is prime using trial division by 6k±1.
func IsPrime(n int) bool {
	switch {
	case n < 2:
		return false
	case n < 4:
		return true
	case n%2 == 0 || n%3 == 0:
		return false
	}
	for i := 5; i*i <= n; i += 6 {
		if n%i == 0 || n%(i+2) == 0 {
			return false
		}
	}
	return true
}
