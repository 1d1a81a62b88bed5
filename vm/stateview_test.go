package vm_test

import (
	"testing"

	"creatorvault/keys"
	"creatorvault/vm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestView(base map[string][]byte) vm.StateView {
	read := func(key string) ([]byte, error) {
		return base[key], nil
	}
	scan := func(prefix string) (map[string][]byte, error) {
		out := make(map[string][]byte)
		for k, v := range base {
			if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
				out[k] = v
			}
		}
		return out, nil
	}
	return vm.NewStateView(read, scan)
}

func TestStateViewSnapshotRevert(t *testing.T) {
	sv := newTestView(map[string][]byte{"a": []byte("1")})

	snap := sv.Snapshot()
	sv.Set("a", []byte("2"))
	sv.Set("b", []byte("3"))
	sv.Del("a")

	_, ok, err := sv.Get("a")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, sv.Revert(snap))
	v, ok, err := sv.Get("a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("1"), v)
	_, ok, _ = sv.Get("b")
	assert.False(t, ok)
	assert.Empty(t, sv.Diff())

	assert.ErrorIs(t, sv.Revert(5), vm.ErrInvalidSnapshot)
}

func TestStateViewDiffIsSortedAndCategorized(t *testing.T) {
	recA, recB := keys.KeyRecord(addr("a")), keys.KeyRecord(addr("b"))
	first := recA
	if recB < recA {
		first = recB
	}

	sv := newTestView(nil)
	sv.Set("v1_receipt_x", []byte("r"))
	sv.Set(recB, []byte("2"))
	sv.Set(recA, []byte("1"))
	sv.Del("v1_vault_voucher_z")

	diff := sv.Diff()
	require.Len(t, diff, 4)
	assert.Equal(t, "v1_receipt_x", diff[0].Key)
	assert.Equal(t, "receipt", diff[0].Category)
	assert.Equal(t, first, diff[1].Key)
	assert.Equal(t, "record", diff[1].Category)
	assert.Equal(t, "record", diff[2].Category)
	assert.True(t, diff[3].Del)
	assert.Equal(t, "index", diff[3].Category)
}

func TestStateViewScanMergesOverlay(t *testing.T) {
	sv := newTestView(map[string][]byte{
		"p_1": []byte("base1"),
		"p_2": []byte("base2"),
		"q_1": []byte("other"),
	})
	sv.Set("p_3", []byte("new"))
	sv.Set("p_1", []byte("changed"))
	sv.Del("p_2")

	got, err := sv.Scan("p_")
	require.NoError(t, err)
	assert.Equal(t, map[string][]byte{
		"p_1": []byte("changed"),
		"p_3": []byte("new"),
	}, got)
}

func TestStateViewGetReturnsCopy(t *testing.T) {
	sv := newTestView(nil)
	sv.Set("k", []byte("abc"))
	v, _, _ := sv.Get("k")
	v[0] = 'z'
	again, _, _ := sv.Get("k")
	assert.Equal(t, []byte("abc"), again)
}
