package ledger

const (
	// FeePerSignature is charged to the fee payer for every signature.
	FeePerSignature uint64 = 5000

	// MaxRecentBlockhashes is how many slots a blockhash stays usable.
	MaxRecentBlockhashes = 150

	// MaxPermittedDataLength bounds the size of a single account.
	MaxPermittedDataLength uint64 = 10 * 1024 * 1024

	accountStorageOverhead  uint64 = 128
	lamportsPerByteYear     uint64 = 3480
	exemptionThresholdYears uint64 = 2
)

// RentExemptMinimum is the balance an account of space bytes must hold.
func RentExemptMinimum(space uint64) uint64 {
	return (accountStorageOverhead + space) * lamportsPerByteYear * exemptionThresholdYears
}
