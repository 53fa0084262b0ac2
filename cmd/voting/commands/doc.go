// Package commands defines the voting CLI and wires dependencies for subcommands.
//
// Commands
//
//   - keygen           Create the wallet keypair
//   - address          Print the wallet address and fingerprint
//   - airdrop          Request lamports from the cluster faucet
//   - balance          Print an account balance
//   - initialize       Call the program's initialize instruction
//   - create-election  Create an election with the wallet as initiator
//   - apply            Apply as a candidate
//   - stage            Move an election to the voting or closed stage
//   - vote             Vote for a candidate
//   - election         Show an election account
//   - candidates       List the candidates of an election
//   - status           Show the outcome and logs of a transaction
//
// # Implementation
//
// The root command loads the layered configuration (workspace file, .env,
// ANCHOR_PROVIDER_URL and ANCHOR_WALLET, flags) and builds the dependency
// graph before any subcommand runs. Every network call runs under the
// configured timeout and is cancelled on interrupt.
package commands
