// Package main runs a single-node local cluster for the voting program.
//
// The node keeps accounts in memory, verifies and executes signed
// transactions against the system program and the voting program, and
// serves a Solana-compatible JSON-RPC API.
//
// HTTP API
//
//	POST /
//	    JSON-RPC 2.0. Supported methods: getHealth, getSlot, getVersion,
//	    getBalance, getLatestBlockhash, isBlockhashValid, sendTransaction,
//	    simulateTransaction, getSignatureStatuses, getTransaction,
//	    getAccountInfo, getProgramAccounts, requestAirdrop.
//
//	GET /healthz
//	    Liveness probe, returns "ok".
//
// Behaviour
//
//   - The slot advances every --slot-interval; blockhashes older than 150
//     slots are rejected.
//   - With --ledger the bank snapshot and the faucet keypair are kept in that
//     directory and reloaded on restart. Without it all state is lost on exit.
//   - The default listen address is :8899, matching solana-test-validator,
//     so ANCHOR_PROVIDER_URL=http://127.0.0.1:8899 works unchanged.
package main
