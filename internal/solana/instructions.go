package solana

import "encoding/binary"

// System program instruction index for Transfer.
const systemTransferIndex uint32 = 2

// Token program instruction tags.
const (
	tokenTransferTag     byte = 3
	tokenCloseAccountTag byte = 9
)

// SystemTransfer moves lamports between two system accounts.
func SystemTransfer(from, to PublicKey, lamports uint64) Instruction {
	data := make([]byte, 12)
	binary.LittleEndian.PutUint32(data[0:4], systemTransferIndex)
	binary.LittleEndian.PutUint64(data[4:12], lamports)

	return Instruction{
		ProgramID: SystemProgramID,
		Accounts: []AccountMeta{
			{PublicKey: from, IsSigner: true, IsWritable: true},
			{PublicKey: to, IsWritable: true},
		},
		Data: data,
	}
}

// TokenTransfer moves amount base units between token accounts of the same
// mint, authorized by owner.
func TokenTransfer(source, destination, owner PublicKey, amount uint64) Instruction {
	data := make([]byte, 9)
	data[0] = tokenTransferTag
	binary.LittleEndian.PutUint64(data[1:], amount)

	return Instruction{
		ProgramID: TokenProgramID,
		Accounts: []AccountMeta{
			{PublicKey: source, IsWritable: true},
			{PublicKey: destination, IsWritable: true},
			{PublicKey: owner, IsSigner: true},
		},
		Data: data,
	}
}

// TokenCloseAccount closes an empty token account and sends its rent
// deposit to destination.
func TokenCloseAccount(account, destination, owner PublicKey) Instruction {
	return Instruction{
		ProgramID: TokenProgramID,
		Accounts: []AccountMeta{
			{PublicKey: account, IsWritable: true},
			{PublicKey: destination, IsWritable: true},
			{PublicKey: owner, IsSigner: true},
		},
		Data: []byte{tokenCloseAccountTag},
	}
}

// CreateAssociatedTokenAccount creates the associated token account for
// (wallet, mint), funded by payer.
func CreateAssociatedTokenAccount(payer, associated, wallet, mint PublicKey) Instruction {
	return Instruction{
		ProgramID: AssociatedTokenProgramID,
		Accounts: []AccountMeta{
			{PublicKey: payer, IsSigner: true, IsWritable: true},
			{PublicKey: associated, IsWritable: true},
			{PublicKey: wallet},
			{PublicKey: mint},
			{PublicKey: SystemProgramID},
			{PublicKey: TokenProgramID},
		},
		Data: []byte{},
	}
}

// InstructionKind classifies an instruction built by this package.
type InstructionKind string

// Instruction kinds.
const (
	KindUnknown        InstructionKind = "unknown"
	KindSystemTransfer InstructionKind = "system_transfer"
	KindTokenTransfer  InstructionKind = "token_transfer"
	KindCloseAccount   InstructionKind = "close_account"
	KindCreateATA      InstructionKind = "create_associated_account"
)

// Kind reports which builder produced ix.
func (ix Instruction) Kind() InstructionKind {
	switch ix.ProgramID {
	case SystemProgramID:
		if len(ix.Data) == 12 && binary.LittleEndian.Uint32(ix.Data) == systemTransferIndex {
			return KindSystemTransfer
		}
	case TokenProgramID:
		if len(ix.Data) == 9 && ix.Data[0] == tokenTransferTag {
			return KindTokenTransfer
		}
		if len(ix.Data) == 1 && ix.Data[0] == tokenCloseAccountTag {
			return KindCloseAccount
		}
	case AssociatedTokenProgramID:
		if len(ix.Data) == 0 {
			return KindCreateATA
		}
	}
	return KindUnknown
}

// Amount returns the lamports or token amount carried by a transfer.
func (ix Instruction) Amount() (uint64, bool) {
	switch ix.Kind() {
	case KindSystemTransfer:
		return binary.LittleEndian.Uint64(ix.Data[4:]), true
	case KindTokenTransfer:
		return binary.LittleEndian.Uint64(ix.Data[1:]), true
	}
	return 0, false
}
