// Package ledger is the single-node runtime behind the local cluster.
//
// A Bank owns the accounts database, the recent blockhash queue and the
// signature status cache. It verifies signed legacy transactions, charges
// fees, executes instructions against working copies of the referenced
// accounts and commits the result atomically. Programs plug in through the
// Program interface; the system program is always registered.
//
// # Execution rules
//
//   - The fee payer is writable and no account key appears twice.
//   - Every required signature must verify over the serialised message.
//   - The recent blockhash must be one of the last MaxRecentBlockhashes.
//   - A signature may be processed once (AlreadyProcessed otherwise).
//   - The fee is charged even when execution fails; instruction effects are
//     rolled back as a unit.
//   - After each instruction: read-only accounts are unchanged, only the
//     owning program changed account data, and lamports balance.
//   - System program failures surface as custom error codes (SystemError).
package ledger
