package solana

import (
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/mr-tron/base58"
)

// MaxTransactionSize is the largest serialized transaction the network accepts.
const MaxTransactionSize = 1232

var (
	// ErrNoInstructions is returned when compiling an empty transaction.
	ErrNoInstructions = errors.New("transaction has no instructions")

	// ErrNoFeePayer is returned when compiling without a fee payer.
	ErrNoFeePayer = errors.New("transaction has no fee payer")

	// ErrNoBlockhash is returned when compiling without a recent blockhash.
	ErrNoBlockhash = errors.New("transaction has no recent blockhash")

	// ErrMissingSignature is returned when serializing before every
	// required signer has signed.
	ErrMissingSignature = errors.New("transaction is missing a required signature")

	// ErrTransactionTooLarge is returned when the serialized form exceeds
	// MaxTransactionSize.
	ErrTransactionTooLarge = errors.New("transaction too large")
)

// AccountMeta describes how an instruction uses an account.
type AccountMeta struct {
	PublicKey  PublicKey
	IsSigner   bool
	IsWritable bool
}

// Instruction is a single program invocation.
type Instruction struct {
	ProgramID PublicKey
	Accounts  []AccountMeta
	Data      []byte
}

// Transaction is a legacy (non-versioned) transaction.
// Instructions execute in append order.
type Transaction struct {
	FeePayer        PublicKey
	RecentBlockhash string
	Instructions    []Instruction

	message    []byte
	signers    []PublicKey
	signatures []Signature
}

// Add appends instructions and invalidates any previous compilation.
func (tx *Transaction) Add(ixs ...Instruction) {
	tx.Instructions = append(tx.Instructions, ixs...)
	tx.message = nil
	tx.signatures = nil
}

// Message holds the compiled message layout.
type Message struct {
	NumRequiredSignatures       uint8
	NumReadonlySignedAccounts   uint8
	NumReadonlyUnsignedAccounts uint8
	AccountKeys                 []PublicKey
	RecentBlockhash             [32]byte
	Instructions                []CompiledInstruction
}

// CompiledInstruction references accounts by index into Message.AccountKeys.
type CompiledInstruction struct {
	ProgramIDIndex uint8
	AccountIndexes []uint8
	Data           []byte
}

// CompileMessage orders the accounts (fee payer, writable signers, readonly
// signers, writable non-signers, readonly non-signers) and compiles the
// instructions against that table.
func (tx *Transaction) CompileMessage() (*Message, error) {
	if len(tx.Instructions) == 0 {
		return nil, ErrNoInstructions
	}
	if tx.FeePayer.IsZero() {
		return nil, ErrNoFeePayer
	}
	if tx.RecentBlockhash == "" {
		return nil, ErrNoBlockhash
	}

	blockhash, err := base58.Decode(tx.RecentBlockhash)
	if err != nil || len(blockhash) != 32 {
		return nil, fmt.Errorf("invalid recent blockhash %q", tx.RecentBlockhash)
	}

	type entry struct {
		key      PublicKey
		signer   bool
		writable bool
	}
	var order []PublicKey
	seen := make(map[PublicKey]*entry)
	touch := func(key PublicKey, signer, writable bool) {
		e, ok := seen[key]
		if !ok {
			e = &entry{key: key}
			seen[key] = e
			order = append(order, key)
		}
		e.signer = e.signer || signer
		e.writable = e.writable || writable
	}

	touch(tx.FeePayer, true, true)
	for _, ix := range tx.Instructions {
		for _, acc := range ix.Accounts {
			touch(acc.PublicKey, acc.IsSigner, acc.IsWritable)
		}
	}
	for _, ix := range tx.Instructions {
		touch(ix.ProgramID, false, false)
	}

	var writableSigners, readonlySigners, writableOthers, readonlyOthers []PublicKey
	for _, key := range order {
		e := seen[key]
		switch {
		case e.signer && e.writable:
			writableSigners = append(writableSigners, key)
		case e.signer:
			readonlySigners = append(readonlySigners, key)
		case e.writable:
			writableOthers = append(writableOthers, key)
		default:
			readonlyOthers = append(readonlyOthers, key)
		}
	}

	keys := make([]PublicKey, 0, len(order))
	keys = append(keys, writableSigners...)
	keys = append(keys, readonlySigners...)
	keys = append(keys, writableOthers...)
	keys = append(keys, readonlyOthers...)
	if len(keys) > 256 {
		return nil, fmt.Errorf("%w: %d accounts", ErrTransactionTooLarge, len(keys))
	}

	index := make(map[PublicKey]uint8, len(keys))
	for i, key := range keys {
		index[key] = uint8(i)
	}

	msg := &Message{
		NumRequiredSignatures:       uint8(len(writableSigners) + len(readonlySigners)),
		NumReadonlySignedAccounts:   uint8(len(readonlySigners)),
		NumReadonlyUnsignedAccounts: uint8(len(readonlyOthers)),
		AccountKeys:                 keys,
	}
	copy(msg.RecentBlockhash[:], blockhash)

	for _, ix := range tx.Instructions {
		ci := CompiledInstruction{
			ProgramIDIndex: index[ix.ProgramID],
			AccountIndexes: make([]uint8, len(ix.Accounts)),
			Data:           ix.Data,
		}
		for i, acc := range ix.Accounts {
			ci.AccountIndexes[i] = index[acc.PublicKey]
		}
		msg.Instructions = append(msg.Instructions, ci)
	}

	return msg, nil
}

// Serialize encodes the message in wire format.
func (m *Message) Serialize() []byte {
	buf := []byte{m.NumRequiredSignatures, m.NumReadonlySignedAccounts, m.NumReadonlyUnsignedAccounts}
	buf = appendShortVecLen(buf, len(m.AccountKeys))
	for _, key := range m.AccountKeys {
		buf = append(buf, key[:]...)
	}
	buf = append(buf, m.RecentBlockhash[:]...)
	buf = appendShortVecLen(buf, len(m.Instructions))
	for _, ix := range m.Instructions {
		buf = append(buf, ix.ProgramIDIndex)
		buf = appendShortVecLen(buf, len(ix.AccountIndexes))
		buf = append(buf, ix.AccountIndexes...)
		buf = appendShortVecLen(buf, len(ix.Data))
		buf = append(buf, ix.Data...)
	}
	return buf
}

// Signers returns the accounts whose signatures are required, in order.
func (m *Message) Signers() []PublicKey {
	return m.AccountKeys[:m.NumRequiredSignatures]
}

// Sign compiles the message and signs it with the given keypairs. Every
// required signer must be among them; extra keypairs are an error.
func (tx *Transaction) Sign(signers ...*Keypair) error {
	msg, err := tx.CompileMessage()
	if err != nil {
		return err
	}

	byKey := make(map[PublicKey]*Keypair, len(signers))
	for _, kp := range signers {
		byKey[kp.PublicKey()] = kp
	}

	required := msg.Signers()
	isRequired := make(map[PublicKey]bool, len(required))
	for _, key := range required {
		isRequired[key] = true
	}
	for key := range byKey {
		if !isRequired[key] {
			return fmt.Errorf("unexpected signer %s", key)
		}
	}

	data := msg.Serialize()
	sigs := make([]Signature, len(required))
	for i, key := range required {
		kp, ok := byKey[key]
		if !ok {
			return fmt.Errorf("%w: %s", ErrMissingSignature, key)
		}
		sigs[i] = kp.Sign(data)
	}

	tx.message = data
	tx.signers = required
	tx.signatures = sigs
	return nil
}

// Signature returns the first signature, which identifies the transaction.
func (tx *Transaction) Signature() (Signature, bool) {
	if len(tx.signatures) == 0 {
		return Signature{}, false
	}
	return tx.signatures[0], true
}

// Signers returns the accounts that signed, in message order.
func (tx *Transaction) Signers() []PublicKey {
	return tx.signers
}

// Serialize returns the signed wire form. The transaction must be signed.
func (tx *Transaction) Serialize() ([]byte, error) {
	if tx.message == nil {
		return nil, ErrMissingSignature
	}
	for i, sig := range tx.signatures {
		if sig.IsZero() {
			return nil, fmt.Errorf("%w: %s", ErrMissingSignature, tx.signers[i])
		}
	}

	buf := appendShortVecLen(nil, len(tx.signatures))
	for _, sig := range tx.signatures {
		buf = append(buf, sig[:]...)
	}
	buf = append(buf, tx.message...)

	if len(buf) > MaxTransactionSize {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrTransactionTooLarge, len(buf), MaxTransactionSize)
	}
	return buf, nil
}

// SerializeBase64 returns the signed wire form as base64.
func (tx *Transaction) SerializeBase64() (string, error) {
	raw, err := tx.Serialize()
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// appendShortVecLen appends n in compact-u16 encoding.
func appendShortVecLen(buf []byte, n int) []byte {
	v := uint16(n)
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v == 0 {
			return append(buf, b)
		}
		buf = append(buf, b|0x80)
	}
}

// decodeShortVecLen reads a compact-u16 from data, returning the value and
// the number of bytes consumed.
func decodeShortVecLen(data []byte) (int, int, error) {
	var v, size int
	for {
		if size >= len(data) {
			return 0, 0, errors.New("short vec: unexpected end of data")
		}
		if size >= 3 {
			return 0, 0, errors.New("short vec: too long")
		}
		b := data[size]
		v |= int(b&0x7f) << (7 * size)
		size++
		if b&0x80 == 0 {
			return v, size, nil
		}
	}
}

// DecodeTransaction parses a signed legacy transaction from its wire form.
// The returned transaction carries the decompiled instructions, the
// signatures and the exact message bytes that were signed.
func DecodeTransaction(raw []byte) (*Transaction, error) {
	n, size, err := decodeShortVecLen(raw)
	if err != nil {
		return nil, fmt.Errorf("decode signature count: %w", err)
	}
	raw = raw[size:]
	if len(raw) < n*SignatureSize {
		return nil, errors.New("decode signatures: unexpected end of data")
	}
	sigs := make([]Signature, n)
	for i := range sigs {
		copy(sigs[i][:], raw[i*SignatureSize:])
	}
	message := raw[n*SignatureSize:]

	msg, err := decodeMessage(message)
	if err != nil {
		return nil, err
	}
	if int(msg.NumRequiredSignatures) != n {
		return nil, fmt.Errorf("message requires %d signatures, found %d", msg.NumRequiredSignatures, n)
	}

	numKeys := len(msg.AccountKeys)
	isSigner := func(i int) bool { return i < int(msg.NumRequiredSignatures) }
	isWritable := func(i int) bool {
		if isSigner(i) {
			return i < int(msg.NumRequiredSignatures-msg.NumReadonlySignedAccounts)
		}
		return i < numKeys-int(msg.NumReadonlyUnsignedAccounts)
	}

	tx := &Transaction{
		FeePayer:        msg.AccountKeys[0],
		RecentBlockhash: base58.Encode(msg.RecentBlockhash[:]),
		message:         append([]byte(nil), message...),
		signers:         msg.Signers(),
		signatures:      sigs,
	}
	for _, ci := range msg.Instructions {
		ix := Instruction{
			ProgramID: msg.AccountKeys[ci.ProgramIDIndex],
			Data:      ci.Data,
		}
		for _, idx := range ci.AccountIndexes {
			i := int(idx)
			ix.Accounts = append(ix.Accounts, AccountMeta{
				PublicKey:  msg.AccountKeys[i],
				IsSigner:   isSigner(i),
				IsWritable: isWritable(i),
			})
		}
		tx.Instructions = append(tx.Instructions, ix)
	}
	return tx, nil
}

// MessageBytes returns the signed message bytes, or nil if unsigned.
func (tx *Transaction) MessageBytes() []byte {
	return tx.message
}

// Signatures returns all signatures in signer order.
func (tx *Transaction) Signatures() []Signature {
	return tx.signatures
}

func decodeMessage(data []byte) (*Message, error) {
	errShort := errors.New("decode message: unexpected end of data")
	if len(data) < 3 {
		return nil, errShort
	}
	msg := &Message{
		NumRequiredSignatures:       data[0],
		NumReadonlySignedAccounts:   data[1],
		NumReadonlyUnsignedAccounts: data[2],
	}
	data = data[3:]

	n, size, err := decodeShortVecLen(data)
	if err != nil {
		return nil, fmt.Errorf("decode account count: %w", err)
	}
	data = data[size:]
	if n == 0 || len(data) < n*PublicKeySize+32 {
		return nil, errShort
	}
	msg.AccountKeys = make([]PublicKey, n)
	for i := range msg.AccountKeys {
		copy(msg.AccountKeys[i][:], data[i*PublicKeySize:])
	}
	data = data[n*PublicKeySize:]
	copy(msg.RecentBlockhash[:], data[:32])
	data = data[32:]

	count, size, err := decodeShortVecLen(data)
	if err != nil {
		return nil, fmt.Errorf("decode instruction count: %w", err)
	}
	data = data[size:]
	for i := 0; i < count; i++ {
		if len(data) < 1 {
			return nil, errShort
		}
		ci := CompiledInstruction{ProgramIDIndex: data[0]}
		data = data[1:]

		accLen, size, err := decodeShortVecLen(data)
		if err != nil {
			return nil, fmt.Errorf("decode instruction %d accounts: %w", i, err)
		}
		data = data[size:]
		if len(data) < accLen {
			return nil, errShort
		}
		ci.AccountIndexes = append([]uint8(nil), data[:accLen]...)
		data = data[accLen:]

		dataLen, size, err := decodeShortVecLen(data)
		if err != nil {
			return nil, fmt.Errorf("decode instruction %d data: %w", i, err)
		}
		data = data[size:]
		if len(data) < dataLen {
			return nil, errShort
		}
		ci.Data = append([]byte(nil), data[:dataLen]...)
		data = data[dataLen:]

		if int(ci.ProgramIDIndex) >= n {
			return nil, fmt.Errorf("instruction %d: program index %d out of range", i, ci.ProgramIDIndex)
		}
		for _, idx := range ci.AccountIndexes {
			if int(idx) >= n {
				return nil, fmt.Errorf("instruction %d: account index %d out of range", i, idx)
			}
		}
		msg.Instructions = append(msg.Instructions, ci)
	}
	return msg, nil
}
