// Package election is the client handle for the deployed voting program.
//
// Each mutating call builds the program instruction, fetches a recent
// blockhash, signs with the wallet keypair, submits the transaction once and
// then polls the signature status until the cluster reports it confirmed,
// reports a failure, the blockhash expires or the context is cancelled.
// Failures unwrap to the program and ledger sentinel errors.
//
// Read calls fetch and decode program accounts. Candidates lists every
// candidate account of the program and keeps the ones whose address derives
// from the given election.
package election
