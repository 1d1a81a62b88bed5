package vm_test

import (
	"crypto/sha256"
	"fmt"
	"strings"
	"sync"
	"testing"

	"creatorvault/config"
	"creatorvault/keys"
	"creatorvault/token"
	"creatorvault/types"
	"creatorvault/vm"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/stretchr/testify/require"
)

// ========== Mock数据库实现 ==========

type MockDB struct {
	mu      sync.RWMutex
	data    map[string][]byte
	pending []func()
}

func NewMockDB() *MockDB {
	return &MockDB{
		data:    make(map[string][]byte),
		pending: make([]func(), 0),
	}
}

func (db *MockDB) Get(key string) ([]byte, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	val, exists := db.data[key]
	if !exists {
		return nil, nil
	}
	return append([]byte(nil), val...), nil
}

func (db *MockDB) Scan(prefix string) (map[string][]byte, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	out := make(map[string][]byte)
	for k, v := range db.data {
		if strings.HasPrefix(k, prefix) {
			out[k] = append([]byte(nil), v...)
		}
	}
	return out, nil
}

func (db *MockDB) EnqueueSet(key, value string) {
	db.pending = append(db.pending, func() {
		db.mu.Lock()
		defer db.mu.Unlock()
		db.data[key] = []byte(value)
	})
}

func (db *MockDB) EnqueueDel(key string) {
	db.pending = append(db.pending, func() {
		db.mu.Lock()
		defer db.mu.Unlock()
		delete(db.data, key)
	})
}

func (db *MockDB) ForceFlush() error {
	for _, op := range db.pending {
		op()
	}
	db.pending = db.pending[:0]
	return nil
}

// records 所有记录 key 的副本，用于比较执行前后是否有变化
func (db *MockDB) records() map[string]string {
	db.mu.RLock()
	defer db.mu.RUnlock()
	out := make(map[string]string)
	for k, v := range db.data {
		if keys.IsRecordKey(k) {
			out[k] = string(v)
		}
	}
	return out
}

// ========== 测试夹具 ==========

// addr 由名字派生私钥，取其公钥 x 坐标作为地址，保证可以作为交易签名者
func addr(name string) types.Address {
	seed := sha256.Sum256([]byte(name))
	_, pub := btcec.PrivKeyFromBytes(seed[:])
	var a types.Address
	copy(a[:], pub.SerializeCompressed()[1:])
	return a
}

const initialBalance = 1_000_000

type fixture struct {
	t    *testing.T
	db   *MockDB
	exec *vm.Executor
	prog *vm.Program
	tok  *token.Program
	alt  *token.Program // 另一种转账服务实现

	issuer    types.Address
	asset     types.Address
	altAsset  types.Address // alt 服务下的资产
	creator   types.Address
	depositor types.Address
	other     types.Address

	depositorAcc types.Address
	otherAcc     types.Address

	vault  types.Address
	escrow types.Address

	seq int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cfg := config.DefaultConfig()
	progs, err := cfg.Programs()
	require.NoError(t, err)

	f := &fixture{
		t:         t,
		db:        NewMockDB(),
		tok:       token.NewProgram(progs.TokenProgram, progs.AssociatedProgram),
		alt:       token.NewProgram(addr("alt-token-program"), progs.AssociatedProgram),
		issuer:    addr("issuer"),
		asset:     addr("asset-mint"),
		altAsset:  addr("alt-asset-mint"),
		creator:   addr("creator"),
		depositor: addr("depositor"),
		other:     addr("other"),
	}
	f.prog, err = vm.NewProgram(cfg, f.tok, f.alt)
	require.NoError(t, err)

	reg := vm.NewHandlerRegistry()
	require.NoError(t, vm.RegisterDefaultHandlers(reg, f.prog))
	f.exec = vm.NewExecutor(f.db, reg, f.prog)

	issuer := types.NewSigners(f.issuer)
	require.NoError(t, f.exec.ApplyGenesis(func(sv vm.StateView) error {
		if err := f.tok.InitializeMint(sv, f.asset, 6, f.issuer); err != nil {
			return err
		}
		if err := f.alt.InitializeMint(sv, f.altAsset, 2, f.issuer); err != nil {
			return err
		}
		if f.depositorAcc, err = f.tok.EnsureAssociatedAccount(sv, f.depositor, f.asset); err != nil {
			return err
		}
		if f.otherAcc, err = f.tok.EnsureAssociatedAccount(sv, f.other, f.asset); err != nil {
			return err
		}
		return f.tok.MintTo(sv, f.asset, f.depositorAcc, initialBalance, issuer)
	}))
	return f
}

func (f *fixture) nextTxID() string {
	f.seq++
	return fmt.Sprintf("tx_%03d", f.seq)
}

func (f *fixture) initVault() {
	f.t.Helper()
	rc, err := f.exec.ExecuteTx(&vm.AnyTx{
		TxID:    f.nextTxID(),
		Signers: []types.Address{f.creator},
		Content: &vm.InitializeVaultTx{Creator: f.creator, AssetMint: f.asset, TransferService: f.tok.ID()},
	})
	require.NoError(f.t, err)
	require.True(f.t, rc.Succeeded())

	f.vault, _, err = f.prog.FindVaultAddress(f.creator, f.asset)
	require.NoError(f.t, err)
	f.escrow, err = f.tok.AssociatedAccount(f.vault, f.asset)
	require.NoError(f.t, err)
}

// depositTx 构造存款交易，凭证 mint 是新的地址并随交易签名
func (f *fixture) depositTx(amount uint64) (*vm.AnyTx, *vm.DepositAndMintVoucherTx) {
	voucherMint := addr(fmt.Sprintf("voucher-%d", f.seq+1))
	body := &vm.DepositAndMintVoucherTx{
		Vault:            f.vault,
		AssetMint:        f.asset,
		DepositorAccount: f.depositorAcc,
		EscrowAccount:    f.escrow,
		VoucherMint:      voucherMint,
		TransferService:  f.tok.ID(),
		Amount:           amount,
	}
	return &vm.AnyTx{
		TxID:    f.nextTxID(),
		Signers: []types.Address{f.depositor, voucherMint},
		Content: body,
	}, body
}

func (f *fixture) deposit(amount uint64) types.Address {
	f.t.Helper()
	tx, body := f.depositTx(amount)
	_, err := f.exec.ExecuteTx(tx)
	require.NoError(f.t, err)
	return body.VoucherMint
}

func (f *fixture) voucherRecordAddr(voucherMint types.Address) types.Address {
	a, _, err := f.prog.FindVoucherRecordAddress(f.vault, voucherMint)
	require.NoError(f.t, err)
	return a
}

func (f *fixture) voucherAccount(holder, voucherMint types.Address) types.Address {
	a, err := f.tok.AssociatedAccount(holder, voucherMint)
	require.NoError(f.t, err)
	return a
}

// redeemTx holder 用自己的资产账户 payout 赎回 voucherMint
func (f *fixture) redeemTx(holder, payout, voucherMint types.Address) (*vm.AnyTx, *vm.BurnAndRedeemTx) {
	body := &vm.BurnAndRedeemTx{
		Vault:           f.vault,
		AssetMint:       f.asset,
		EscrowAccount:   f.escrow,
		RedeemerAccount: payout,
		VoucherMint:     voucherMint,
		VoucherAccount:  f.voucherAccount(holder, voucherMint),
		VoucherRecord:   f.voucherRecordAddr(voucherMint),
		TransferService: f.tok.ID(),
	}
	return &vm.AnyTx{
		TxID:    f.nextTxID(),
		Signers: []types.Address{holder},
		Content: body,
	}, body
}

func (f *fixture) redeem(holder, payout, voucherMint types.Address) (*vm.Receipt, error) {
	tx, _ := f.redeemTx(holder, payout, voucherMint)
	return f.exec.ExecuteTx(tx)
}

func (f *fixture) balance(account types.Address) uint64 {
	f.t.Helper()
	acc, err := f.tok.Account(f.exec.View(), account)
	require.NoError(f.t, err)
	return acc.Amount
}

func (f *fixture) totalDeposited() uint64 {
	f.t.Helper()
	v, err := f.exec.Vault(f.vault)
	require.NoError(f.t, err)
	return v.TotalDeposited
}

func (f *fixture) voucherRecord(voucherMint types.Address) *types.VoucherRecord {
	f.t.Helper()
	r, err := f.exec.VoucherRecord(f.voucherRecordAddr(voucherMint))
	require.NoError(f.t, err)
	return r
}
