// Package rpc carries the cluster's JSON-RPC 2.0 API over HTTP.
//
// The method names and result shapes follow the Solana JSON-RPC API so that
// standard tooling can talk to a local cluster: transactions travel as
// base64 wire bytes, account data as [base64, "base64"] pairs and results
// that depend on ledger state are wrapped in {context: {slot}, value}.
//
// Server exposes a Ledger through a chi router. HTTPClient adapts the
// solana-go RPC client to domain.ClusterClient for any compatible endpoint.
// Its JSON-RPC errors unwrap to the ledger and program sentinel errors, so
// callers can use errors.Is on the result of SendTransaction. Cause does the
// same for the error recorded in a signature status.
package rpc
