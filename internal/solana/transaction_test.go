package solana

import (
	"bytes"
	"encoding/base64"
	"errors"
	"testing"
)

func TestShortVecLen(t *testing.T) {
	tests := []struct {
		n    int
		want []byte
	}{
		{0, []byte{0x00}},
		{5, []byte{0x05}},
		{0x7f, []byte{0x7f}},
		{0x80, []byte{0x80, 0x01}},
		{0x3fff, []byte{0xff, 0x7f}},
		{0x4000, []byte{0x80, 0x80, 0x01}},
		{0xffff, []byte{0xff, 0xff, 0x03}},
	}

	for _, tt := range tests {
		got := appendShortVecLen(nil, tt.n)
		if !bytes.Equal(got, tt.want) {
			t.Errorf("encode %d: expected %x, got %x", tt.n, tt.want, got)
		}
		n, size, err := decodeShortVecLen(got)
		if err != nil {
			t.Fatalf("decode %x: %v", got, err)
		}
		if n != tt.n || size != len(tt.want) {
			t.Errorf("decode %x: expected (%d, %d), got (%d, %d)", got, tt.n, len(tt.want), n, size)
		}
	}

	if _, _, err := decodeShortVecLen([]byte{0x80}); err == nil {
		t.Error("expected error for truncated short vec")
	}
}

func TestCompileMessage_AccountOrdering(t *testing.T) {
	payer := testKeypair(t, 1)
	owner := testKeypair(t, 2)
	dest := testKeypair(t, 3).PublicKey()
	source := testKeypair(t, 4).PublicKey()
	destATA := testKeypair(t, 5).PublicKey()

	tx := &Transaction{FeePayer: payer.PublicKey(), RecentBlockhash: testBlockhash}
	tx.Add(
		TokenTransfer(source, destATA, owner.PublicKey(), 10),
		SystemTransfer(owner.PublicKey(), dest, 1),
	)

	msg, err := tx.CompileMessage()
	if err != nil {
		t.Fatalf("CompileMessage: %v", err)
	}

	if msg.NumRequiredSignatures != 2 {
		t.Errorf("expected 2 signatures, got %d", msg.NumRequiredSignatures)
	}
	if msg.NumReadonlySignedAccounts != 0 {
		t.Errorf("expected 0 readonly signers, got %d", msg.NumReadonlySignedAccounts)
	}
	// Token program and system program.
	if msg.NumReadonlyUnsignedAccounts != 2 {
		t.Errorf("expected 2 readonly non-signers, got %d", msg.NumReadonlyUnsignedAccounts)
	}

	want := []PublicKey{payer.PublicKey(), owner.PublicKey(), source, destATA, dest, TokenProgramID, SystemProgramID}
	if len(msg.AccountKeys) != len(want) {
		t.Fatalf("expected %d keys, got %d", len(want), len(msg.AccountKeys))
	}
	for i := range want {
		if msg.AccountKeys[i] != want[i] {
			t.Errorf("key %d: expected %s, got %s", i, want[i], msg.AccountKeys[i])
		}
	}

	// The owner was readonly in the token transfer but writable in the
	// system transfer; the stronger permission wins.
	signers := msg.Signers()
	if signers[1] != owner.PublicKey() {
		t.Errorf("expected owner as second signer, got %s", signers[1])
	}
}

func TestCompileMessage_Errors(t *testing.T) {
	payer := testKeypair(t, 1).PublicKey()
	ix := SystemTransfer(payer, payer, 1)

	tests := []struct {
		name string
		tx   *Transaction
		want error
	}{
		{"no instructions", &Transaction{FeePayer: payer, RecentBlockhash: testBlockhash}, ErrNoInstructions},
		{"no fee payer", &Transaction{RecentBlockhash: testBlockhash, Instructions: []Instruction{ix}}, ErrNoFeePayer},
		{"no blockhash", &Transaction{FeePayer: payer, Instructions: []Instruction{ix}}, ErrNoBlockhash},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.tx.CompileMessage(); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}

	bad := &Transaction{FeePayer: payer, RecentBlockhash: "abc", Instructions: []Instruction{ix}}
	if _, err := bad.CompileMessage(); err == nil {
		t.Error("expected error for short blockhash")
	}
}

func TestTransaction_SignSerializeDecode(t *testing.T) {
	payer := testKeypair(t, 1)
	owner := testKeypair(t, 2)
	dest := testKeypair(t, 3).PublicKey()
	mint := testKeypair(t, 4).PublicKey()
	source := testKeypair(t, 5).PublicKey()

	destATA, err := FindAssociatedTokenAddress(dest, mint)
	if err != nil {
		t.Fatalf("FindAssociatedTokenAddress: %v", err)
	}

	tx := &Transaction{FeePayer: payer.PublicKey(), RecentBlockhash: testBlockhash}
	tx.Add(
		CreateAssociatedTokenAccount(payer.PublicKey(), destATA, dest, mint),
		TokenTransfer(source, destATA, owner.PublicKey(), 1_000_000),
		TokenCloseAccount(source, dest, owner.PublicKey()),
		SystemTransfer(owner.PublicKey(), dest, 2_000_000_000),
	)

	// Order of keypairs does not matter.
	if err := tx.Sign(owner, payer); err != nil {
		t.Fatalf("Sign: %v", err)
	}

	raw, err := tx.Serialize()
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if len(raw) > MaxTransactionSize {
		t.Fatalf("transaction is %d bytes", len(raw))
	}

	encoded, err := tx.SerializeBase64()
	if err != nil {
		t.Fatalf("SerializeBase64: %v", err)
	}
	if encoded != base64.StdEncoding.EncodeToString(raw) {
		t.Error("base64 form does not match raw bytes")
	}

	decoded, err := DecodeTransaction(raw)
	if err != nil {
		t.Fatalf("DecodeTransaction: %v", err)
	}

	if decoded.FeePayer != payer.PublicKey() {
		t.Errorf("expected fee payer %s, got %s", payer.PublicKey(), decoded.FeePayer)
	}
	if decoded.RecentBlockhash != testBlockhash {
		t.Errorf("expected blockhash %s, got %s", testBlockhash, decoded.RecentBlockhash)
	}

	sigs := decoded.Signatures()
	if len(sigs) != 2 {
		t.Fatalf("expected 2 signatures, got %d", len(sigs))
	}
	signers := decoded.Signers()
	if signers[0] != payer.PublicKey() || signers[1] != owner.PublicKey() {
		t.Errorf("unexpected signer order: %v", signers)
	}
	for i, sig := range sigs {
		if !sig.Verify(signers[i], decoded.MessageBytes()) {
			t.Errorf("signature %d does not verify", i)
		}
	}

	first, ok := tx.Signature()
	if !ok || first != sigs[0] {
		t.Error("transaction ID must be the fee payer signature")
	}

	kinds := []InstructionKind{KindCreateATA, KindTokenTransfer, KindCloseAccount, KindSystemTransfer}
	if len(decoded.Instructions) != len(kinds) {
		t.Fatalf("expected %d instructions, got %d", len(kinds), len(decoded.Instructions))
	}
	for i, kind := range kinds {
		if got := decoded.Instructions[i].Kind(); got != kind {
			t.Errorf("instruction %d: expected %s, got %s", i, kind, got)
		}
	}

	transfer := decoded.Instructions[1]
	if amount, _ := transfer.Amount(); amount != 1_000_000 {
		t.Errorf("expected token amount 1000000, got %d", amount)
	}
	if !transfer.Accounts[2].IsSigner || transfer.Accounts[2].PublicKey != owner.PublicKey() {
		t.Errorf("token transfer authority must be the signing owner")
	}
	if !transfer.Accounts[0].IsWritable || !transfer.Accounts[1].IsWritable {
		t.Errorf("token transfer source and destination must be writable")
	}

	create := decoded.Instructions[0]
	if create.Accounts[0].PublicKey != payer.PublicKey() || !create.Accounts[0].IsSigner {
		t.Errorf("associated account creation must be funded by the fee payer")
	}
}

func TestTransaction_SignerErrors(t *testing.T) {
	payer := testKeypair(t, 1)
	owner := testKeypair(t, 2)
	stranger := testKeypair(t, 3)

	newTx := func() *Transaction {
		tx := &Transaction{FeePayer: payer.PublicKey(), RecentBlockhash: testBlockhash}
		tx.Add(SystemTransfer(owner.PublicKey(), payer.PublicKey(), 1))
		return tx
	}

	if err := newTx().Sign(payer); !errors.Is(err, ErrMissingSignature) {
		t.Errorf("expected ErrMissingSignature, got %v", err)
	}
	if err := newTx().Sign(payer, owner, stranger); err == nil {
		t.Error("expected error for unexpected signer")
	}

	if _, err := newTx().Serialize(); !errors.Is(err, ErrMissingSignature) {
		t.Errorf("expected ErrMissingSignature for unsigned transaction, got %v", err)
	}

	tx := newTx()
	if err := tx.Sign(payer, owner); err != nil {
		t.Fatalf("Sign: %v", err)
	}
	tx.Add(SystemTransfer(owner.PublicKey(), payer.PublicKey(), 2))
	if _, err := tx.Serialize(); !errors.Is(err, ErrMissingSignature) {
		t.Errorf("adding instructions must invalidate signatures, got %v", err)
	}
}

func TestTransaction_TooLarge(t *testing.T) {
	payer := testKeypair(t, 1)
	owner := testKeypair(t, 2)

	tx := &Transaction{FeePayer: payer.PublicKey(), RecentBlockhash: testBlockhash}
	// Each transfer adds a distinct 32-byte destination key.
	for i := 0; i < 40; i++ {
		tx.Add(SystemTransfer(owner.PublicKey(), testKeypair(t, byte(10+i)).PublicKey(), 1))
	}
	if err := tx.Sign(payer, owner); err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if _, err := tx.Serialize(); !errors.Is(err, ErrTransactionTooLarge) {
		t.Errorf("expected ErrTransactionTooLarge, got %v", err)
	}
}

func TestDecodeTransaction_Truncated(t *testing.T) {
	payer := testKeypair(t, 1)
	tx := &Transaction{FeePayer: payer.PublicKey(), RecentBlockhash: testBlockhash}
	tx.Add(SystemTransfer(payer.PublicKey(), testKeypair(t, 2).PublicKey(), 1))
	if err := tx.Sign(payer); err != nil {
		t.Fatalf("Sign: %v", err)
	}
	raw, err := tx.Serialize()
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}

	for _, n := range []int{0, 1, 40, 100, len(raw) - 1} {
		if _, err := DecodeTransaction(raw[:n]); err == nil {
			t.Errorf("expected error decoding %d of %d bytes", n, len(raw))
		}
	}
}
