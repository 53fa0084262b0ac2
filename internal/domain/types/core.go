package types

// Fingerprint is a short identifier for public keys presented to users.
type Fingerprint string

// String returns the string form of the fingerprint.
func (f Fingerprint) String() string { return string(f) }

// Lamports per SOL, the unit used for balances and fees.
const LamportsPerSOL uint64 = 1_000_000_000
