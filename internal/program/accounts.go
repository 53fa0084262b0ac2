package program

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/FME849/wsos23-voting-app/internal/domain"
)

// Discriminator is the 8-byte prefix identifying an account type or an
// instruction.
type Discriminator [8]byte

func discriminator(namespace, name string) Discriminator {
	sum := sha256.Sum256([]byte(namespace + ":" + name))
	var d Discriminator
	copy(d[:], sum[:8])
	return d
}

// Account discriminators.
var (
	ElectionDataDiscriminator  = discriminator("account", "ElectionData")
	CandidateDataDiscriminator = discriminator("account", "CandidateData")
	MyVoteDiscriminator        = discriminator("account", "MyVote")
)

// EncodeElection serialises an election account including its discriminator.
func EncodeElection(e domain.ElectionData) ([]byte, error) {
	var buf bytes.Buffer
	enc := bin.NewBorshEncoder(&buf)
	if err := enc.WriteBytes(ElectionDataDiscriminator[:], false); err != nil {
		return nil, err
	}
	if err := writeString(enc, e.ID); err != nil {
		return nil, err
	}
	if err := enc.WriteUint64(e.Candidates, binary.LittleEndian); err != nil {
		return nil, err
	}
	if err := enc.WriteUint8(uint8(e.Stage)); err != nil {
		return nil, err
	}
	if err := enc.WriteBytes(e.Initiator[:], false); err != nil {
		return nil, err
	}
	if err := enc.WriteUint64(e.WinnersID, binary.LittleEndian); err != nil {
		return nil, err
	}
	if err := enc.WriteUint64(e.WinnersVotes, binary.LittleEndian); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeElection parses account data written by EncodeElection.
func DecodeElection(data []byte) (domain.ElectionData, error) {
	var e domain.ElectionData
	dec, err := accountDecoder(data, ElectionDataDiscriminator)
	if err != nil {
		return e, err
	}
	if e.ID, err = readString(dec); err != nil {
		return e, ErrAccountDidNotDeserialize
	}
	if e.Candidates, err = dec.ReadUint64(binary.LittleEndian); err != nil {
		return e, ErrAccountDidNotDeserialize
	}
	stage, err := dec.ReadUint8()
	if err != nil || !domain.ElectionStage(stage).Valid() {
		return e, ErrAccountDidNotDeserialize
	}
	e.Stage = domain.ElectionStage(stage)
	if e.Initiator, err = readPublicKey(dec); err != nil {
		return e, ErrAccountDidNotDeserialize
	}
	if e.WinnersID, err = dec.ReadUint64(binary.LittleEndian); err != nil {
		return e, ErrAccountDidNotDeserialize
	}
	if e.WinnersVotes, err = dec.ReadUint64(binary.LittleEndian); err != nil {
		return e, ErrAccountDidNotDeserialize
	}
	return e, nil
}

// EncodeCandidate serialises a candidate account including its discriminator.
func EncodeCandidate(c domain.CandidateData) ([]byte, error) {
	var buf bytes.Buffer
	enc := bin.NewBorshEncoder(&buf)
	if err := enc.WriteBytes(CandidateDataDiscriminator[:], false); err != nil {
		return nil, err
	}
	if err := enc.WriteUint64(c.ID, binary.LittleEndian); err != nil {
		return nil, err
	}
	if err := enc.WriteBytes(c.Pubkey[:], false); err != nil {
		return nil, err
	}
	if err := enc.WriteUint64(c.Votes, binary.LittleEndian); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeCandidate parses account data written by EncodeCandidate.
func DecodeCandidate(data []byte) (domain.CandidateData, error) {
	var c domain.CandidateData
	dec, err := accountDecoder(data, CandidateDataDiscriminator)
	if err != nil {
		return c, err
	}
	if c.ID, err = dec.ReadUint64(binary.LittleEndian); err != nil {
		return c, ErrAccountDidNotDeserialize
	}
	if c.Pubkey, err = readPublicKey(dec); err != nil {
		return c, ErrAccountDidNotDeserialize
	}
	if c.Votes, err = dec.ReadUint64(binary.LittleEndian); err != nil {
		return c, ErrAccountDidNotDeserialize
	}
	return c, nil
}

// EncodeMyVote serialises a vote receipt including its discriminator.
func EncodeMyVote(v domain.MyVote) ([]byte, error) {
	var buf bytes.Buffer
	enc := bin.NewBorshEncoder(&buf)
	if err := enc.WriteBytes(MyVoteDiscriminator[:], false); err != nil {
		return nil, err
	}
	if err := enc.WriteUint64(v.ID, binary.LittleEndian); err != nil {
		return nil, err
	}
	if err := enc.WriteBytes(v.Pubkey[:], false); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeMyVote parses account data written by EncodeMyVote.
func DecodeMyVote(data []byte) (domain.MyVote, error) {
	var v domain.MyVote
	dec, err := accountDecoder(data, MyVoteDiscriminator)
	if err != nil {
		return v, err
	}
	if v.ID, err = dec.ReadUint64(binary.LittleEndian); err != nil {
		return v, ErrAccountDidNotDeserialize
	}
	if v.Pubkey, err = readPublicKey(dec); err != nil {
		return v, ErrAccountDidNotDeserialize
	}
	return v, nil
}

func accountDecoder(data []byte, want Discriminator) (*bin.Decoder, error) {
	if len(data) < len(want) {
		return nil, ErrAccountDiscriminatorNotFound
	}
	if !bytes.Equal(data[:len(want)], want[:]) {
		return nil, ErrAccountDiscriminatorMismatch
	}
	return bin.NewBorshDecoder(data[len(want):]), nil
}

func writeString(enc *bin.Encoder, s string) error {
	if err := enc.WriteUint32(uint32(len(s)), binary.LittleEndian); err != nil {
		return err
	}
	return enc.WriteBytes([]byte(s), false)
}

func readString(dec *bin.Decoder) (string, error) {
	n, err := dec.ReadUint32(binary.LittleEndian)
	if err != nil {
		return "", err
	}
	b, err := dec.ReadNBytes(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func readPublicKey(dec *bin.Decoder) (solana.PublicKey, error) {
	b, err := dec.ReadNBytes(solana.PublicKeyLength)
	if err != nil {
		return solana.PublicKey{}, err
	}
	return solana.PublicKeyFromBytes(b), nil
}
