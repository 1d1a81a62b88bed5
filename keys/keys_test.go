// keys/keys_test.go
package keys

import (
	"testing"

	"creatorvault/types"

	"github.com/stretchr/testify/assert"
)

func testAddr(b byte) types.Address {
	var a types.Address
	for i := range a {
		a[i] = b
	}
	return a
}

func TestRecordKeys(t *testing.T) {
	addr := testAddr(7)

	t.Run("KeyRecord", func(t *testing.T) {
		key := KeyRecord(addr)
		assert.Equal(t, "v1_record_"+addr.String(), key)
	})

	t.Run("AddressFromRecordKey", func(t *testing.T) {
		got, ok := AddressFromRecordKey(KeyRecord(addr))
		assert.True(t, ok)
		assert.Equal(t, addr, got)

		_, ok = AddressFromRecordKey("v1_receipt_tx1")
		assert.False(t, ok)

		_, ok = AddressFromRecordKey("v1_record_notbase58!")
		assert.False(t, ok)
	})
}

func TestVaultVoucherKeys(t *testing.T) {
	vault := testAddr(1)
	mint := testAddr(2)

	key := KeyVaultVoucher(vault, mint)
	assert.Equal(t, "v1_vault_voucher_"+vault.String()+"_"+mint.String(), key)
	assert.True(t, len(key) > len(NameOfKeyVaultVouchers(vault)))
	assert.Equal(t, NameOfKeyVaultVouchers(vault), key[:len(NameOfKeyVaultVouchers(vault))])
}

func TestMetaKeys(t *testing.T) {
	assert.Equal(t, "v1_vm_applied_tx_tx_001", KeyAppliedTx("tx_001"))
	assert.Equal(t, "v1_receipt_tx_001", KeyReceipt("tx_001"))
	assert.Equal(t, "receipt_tx_001", StripVersion(KeyReceipt("tx_001")))
}
