package service

// panPrefix is the fixed issuer prefix every generated PAN starts with.
const (
	panPrefix       = "4000"
	panRandomDigits = 12
)

// GeneratePAN produces a 16-digit card number: the fixed prefix followed by
// 12 random digits. Candidates already present in the store are discarded
// and regenerated. The loop has no retry bound on purpose: over a 12-digit
// space collisions are vanishingly rare, and the store's unique constraint
// remains the final arbiter for candidates that race past the check.
//
// Both the digit source and the existence predicate are injected so the
// retry path is testable without randomness or a store.
func GeneratePAN(randomDigits func(n int) string, exists func(pan string) (bool, error)) (string, error) {
	for {
		digits := randomDigits(panRandomDigits)
		if len(digits) > panRandomDigits {
			digits = digits[:panRandomDigits]
		}
		pan := panPrefix + digits
		taken, err := exists(pan)
		if err != nil {
			return "", err
		}
		if !taken {
			return pan, nil
		}
	}
}
