package vm

import (
	"errors"
	"fmt"
)

// VaultError 金库协议错误，Code 从 6000 起按声明顺序编号
// 用 errors.Is 与下面的哨兵比较；用 AsVaultError 取出编号写入回执
type VaultError struct {
	Code uint32
	Name string
	Msg  string
}

func (e *VaultError) Error() string {
	return fmt.Sprintf("%s (%d): %s", e.Name, e.Code, e.Msg)
}

const vaultErrorBase = 6000

var vaultErrors []*VaultError

func newVaultError(name, msg string) *VaultError {
	e := &VaultError{Code: vaultErrorBase + uint32(len(vaultErrors)), Name: name, Msg: msg}
	vaultErrors = append(vaultErrors, e)
	return e
}

var (
	ErrInvalidVault            = newVaultError("InvalidVault", "vault record missing, undecodable or not at its derived address")
	ErrMintMismatch            = newVaultError("MintMismatch", "asset mint does not match the vault")
	ErrVaultAccountMismatch    = newVaultError("VaultAccountMismatch", "escrow account does not match the vault")
	ErrTransferServiceMismatch = newVaultError("TransferServiceMismatch", "transfer service does not match the vault")
	ErrNotOwner                = newVaultError("NotOwner", "signer does not own the token account")
	ErrVoucherMintMismatch     = newVaultError("VoucherMintMismatch", "voucher account holds a different mint")
	ErrNoVoucherHeld           = newVaultError("NoVoucherHeld", "voucher account holds no voucher")
	ErrInvalidVoucherRecord    = newVaultError("InvalidVoucherRecord", "voucher record does not belong to this vault and voucher")
	ErrAlreadyRedeemed         = newVaultError("AlreadyRedeemed", "voucher already redeemed")
	ErrInvalidAmount           = newVaultError("InvalidAmount", "amount must be greater than zero")
)

// VaultErrors 全部协议错误，按编号排列
func VaultErrors() []*VaultError {
	out := make([]*VaultError, len(vaultErrors))
	copy(out, vaultErrors)
	return out
}

// AsVaultError 从错误链中取出协议错误
func AsVaultError(err error) (*VaultError, bool) {
	var ve *VaultError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
