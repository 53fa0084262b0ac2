package ledger

import (
	"encoding/binary"

	"github.com/gagliardetto/solana-go"
	"github.com/zeebo/blake3"
)

type blockhashEntry struct {
	hash solana.Hash
	slot uint64
}

// blockhashQueue keeps the most recent blockhashes, oldest first.
type blockhashQueue struct {
	entries []blockhashEntry
}

func (q *blockhashQueue) push(h solana.Hash, slot uint64) {
	q.entries = append(q.entries, blockhashEntry{hash: h, slot: slot})
	if over := len(q.entries) - MaxRecentBlockhashes; over > 0 {
		q.entries = append(q.entries[:0:0], q.entries[over:]...)
	}
}

func (q *blockhashQueue) latest() blockhashEntry {
	if len(q.entries) == 0 {
		return blockhashEntry{}
	}
	return q.entries[len(q.entries)-1]
}

func (q *blockhashQueue) contains(h solana.Hash) bool {
	for _, e := range q.entries {
		if e.hash == h {
			return true
		}
	}
	return false
}

// nextBlockhash chains the previous hash with the new slot number.
func nextBlockhash(prev solana.Hash, slot uint64) solana.Hash {
	var buf [40]byte
	copy(buf[:32], prev[:])
	binary.LittleEndian.PutUint64(buf[32:], slot)
	return solana.Hash(blake3.Sum256(buf[:]))
}

func genesisBlockhash() solana.Hash {
	return solana.Hash(blake3.Sum256([]byte("wsos23-voting-localnet genesis")))
}
