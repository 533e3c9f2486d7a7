package dex

import (
	"github.com/gagliardetto/solana-go"
)

// DeriveAssociatedTokenAccount derives the SPL associated-token-account PDA
// for owner/mint, the way the fee-account derivations in the swap
// instruction do (swap fee, host fee, manager fee all share this seed
// shape, varying only the owner).
func DeriveAssociatedTokenAccount(owner, mint solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress(
		[][]byte{owner.Bytes(), solana.TokenProgramID.Bytes(), mint.Bytes()},
		solana.SPLAssociatedTokenAccountProgramID,
	)
}

// DeriveSwapFeeAccount derives the protocol's fee-collection ATA for mint,
// owned by the program's fixed swap-fee authority.
func DeriveSwapFeeAccount(swapFeeAuthority, mint solana.PublicKey) (solana.PublicKey, uint8, error) {
	return DeriveAssociatedTokenAccount(swapFeeAuthority, mint)
}

// DeriveHostFeeAccount derives the integrating host's fee-collection ATA for
// mint.
func DeriveHostFeeAccount(hostPubkey, mint solana.PublicKey) (solana.PublicKey, uint8, error) {
	return DeriveAssociatedTokenAccount(hostPubkey, mint)
}

// DeriveManagerFeeAccount derives the fund manager's fee-collection ATA for
// mint.
func DeriveManagerFeeAccount(managerPubkey, mint solana.PublicKey) (solana.PublicKey, uint8, error) {
	return DeriveAssociatedTokenAccount(managerPubkey, mint)
}
