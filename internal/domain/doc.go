// Package domain defines core data models and interfaces shared across the app.
// It contains plain types (on-chain state, ledger records) and contracts
// (interfaces) only.
package domain
