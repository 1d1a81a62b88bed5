package vm_test

import (
	"fmt"
	"testing"

	"creatorvault/vm"

	"github.com/stretchr/testify/assert"
)

func TestVaultErrorCodes(t *testing.T) {
	want := []string{
		"InvalidVault", "MintMismatch", "VaultAccountMismatch", "TransferServiceMismatch",
		"NotOwner", "VoucherMintMismatch", "NoVoucherHeld", "InvalidVoucherRecord",
		"AlreadyRedeemed", "InvalidAmount",
	}
	all := vm.VaultErrors()
	assert.Len(t, all, len(want))
	for i, e := range all {
		assert.Equal(t, want[i], e.Name)
		assert.Equal(t, uint32(6000+i), e.Code)
	}
}

func TestAsVaultError(t *testing.T) {
	err := fmt.Errorf("escrow account: %w", vm.ErrVaultAccountMismatch)
	ve, ok := vm.AsVaultError(err)
	assert.True(t, ok)
	assert.Equal(t, uint32(6002), ve.Code)
	assert.ErrorIs(t, err, vm.ErrVaultAccountMismatch)
	assert.NotErrorIs(t, err, vm.ErrMintMismatch)

	_, ok = vm.AsVaultError(vm.ErrAccountInUse)
	assert.False(t, ok)
}
