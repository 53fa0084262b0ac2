// Package program implements the voting program: its account layouts, the
// instruction encoding shared by client and cluster, and the native processor
// the cluster runs for the program ID.
//
// An election is created by an initiator, collects candidates while in the
// application stage, accepts one vote per signer while in the voting stage
// and is closed by the initiator. The running leader is tracked on the
// election account as votes arrive.
package program
