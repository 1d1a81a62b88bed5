package db

import (
	"testing"

	"creatorvault/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	mgr, err := NewManager(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(mgr.Close)
	return mgr
}

func TestWritesInvisibleUntilFlush(t *testing.T) {
	mgr := newTestManager(t)

	mgr.EnqueueSet("v1_record_a", "alpha")
	val, err := mgr.Get("v1_record_a")
	require.NoError(t, err)
	assert.Nil(t, val, "pending write must not be readable")

	require.NoError(t, mgr.ForceFlush())
	val, err = mgr.Get("v1_record_a")
	require.NoError(t, err)
	assert.Equal(t, []byte("alpha"), val)
	assert.True(t, mgr.Exists("v1_record_a"))
}

func TestDeleteAndCacheInvalidation(t *testing.T) {
	mgr := newTestManager(t)

	mgr.EnqueueSet("k", "1")
	require.NoError(t, mgr.ForceFlush())
	_, err := mgr.Get("k") // 填充缓存
	require.NoError(t, err)

	mgr.EnqueueDel("k")
	require.NoError(t, mgr.ForceFlush())
	val, err := mgr.Get("k")
	require.NoError(t, err)
	assert.Nil(t, val)
	assert.False(t, mgr.Exists("k"))
}

func TestGetReturnsCopy(t *testing.T) {
	mgr := newTestManager(t)
	mgr.EnqueueSet("k", "abc")
	require.NoError(t, mgr.ForceFlush())

	v1, err := mgr.Get("k")
	require.NoError(t, err)
	v1[0] = 'z'

	v2, err := mgr.Get("k")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), v2)
}

func TestScanPrefix(t *testing.T) {
	mgr := newTestManager(t)
	mgr.EnqueueSet("v1_vault_voucher_A_1", "r1")
	mgr.EnqueueSet("v1_vault_voucher_A_2", "r2")
	mgr.EnqueueSet("v1_vault_voucher_B_1", "r3")
	require.NoError(t, mgr.ForceFlush())

	got, err := mgr.Scan("v1_vault_voucher_A_")
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, []byte("r1"), got["v1_vault_voucher_A_1"])
	assert.Equal(t, []byte("r2"), got["v1_vault_voucher_A_2"])
}

func TestBatchTooLargeWritesNothing(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Database.InMemory = true
	cfg.Database.MaxCountPerTxn = 2
	mgr, err := NewManagerWithConfig(cfg)
	require.NoError(t, err)
	defer mgr.Close()

	mgr.EnqueueSet("a", "1")
	mgr.EnqueueSet("b", "2")
	mgr.EnqueueSet("c", "3")
	err = mgr.ForceFlush()
	require.ErrorIs(t, err, ErrBatchTooLarge)

	for _, k := range []string{"a", "b", "c"} {
		assert.False(t, mgr.Exists(k), "key %s should not be committed", k)
	}
}

func TestDiscard(t *testing.T) {
	mgr := newTestManager(t)
	mgr.EnqueueSet("a", "1")
	mgr.EnqueueSet("b", "2")
	assert.Equal(t, 2, mgr.discard())
	require.NoError(t, mgr.ForceFlush())
	assert.False(t, mgr.Exists("a"))
}

func TestClosedManager(t *testing.T) {
	mgr, err := NewManager(t.TempDir())
	require.NoError(t, err)
	mgr.Close()

	_, err = mgr.Get("missing")
	assert.ErrorIs(t, err, ErrClosed)
}
