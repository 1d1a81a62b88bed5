package vm

import (
	"fmt"
	"sort"

	"creatorvault/keys"
	"creatorvault/types"
)

// RecordScanner 可以按前缀扫描的记录存储
type RecordScanner interface {
	types.RecordStore
	Scan(prefix string) (map[string][]byte, error)
}

// LoadVoucherRecord 读取凭证记录，并确认 addr 由记录里的 (vault, voucher_mint, bump) 推导
func (p *Program) LoadVoucherRecord(st types.RecordStore, addr types.Address) (*types.VoucherRecord, error) {
	data, ok, err := st.Get(keys.KeyRecord(addr))
	if err != nil {
		return nil, err
	}
	if !ok || len(data) == 0 {
		return nil, fmt.Errorf("%w: no record at %s", ErrInvalidVoucherRecord, addr)
	}
	var r types.VoucherRecord
	if err := r.Unmarshal(data); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidVoucherRecord, addr, err)
	}
	derived, err := p.deriver.CreateProgramAddress(p.voucherSeed, r.Vault[:], r.VoucherMint[:], []byte{r.Bump})
	if err != nil || derived != addr {
		return nil, fmt.Errorf("%w: %s is not derived from its vault and voucher", ErrInvalidVoucherRecord, addr)
	}
	return &r, nil
}

// createVoucherRecord 在推导地址上分配新的凭证记录并写入金库索引
func (p *Program) createVoucherRecord(st types.RecordStore, vault, voucherMint, depositor types.Address, amount uint64) (types.Address, *types.VoucherRecord, error) {
	if amount == 0 {
		return types.ZeroAddress, nil, ErrInvalidAmount
	}
	addr, bump, err := p.FindVoucherRecordAddress(vault, voucherMint)
	if err != nil {
		return types.ZeroAddress, nil, err
	}
	r := &types.VoucherRecord{
		Vault:         vault,
		VoucherMint:   voucherMint,
		Depositor:     depositor,
		DepositAmount: amount,
		Bump:          bump,
	}
	if err := allocate(st, addr, r.Marshal()); err != nil {
		return types.ZeroAddress, nil, err
	}
	st.Set(keys.KeyVaultVoucher(vault, voucherMint), addr.Bytes())
	return addr, r, nil
}

// markRedeemed false -> true，只发生一次
func markRedeemed(st types.RecordStore, addr types.Address, r *types.VoucherRecord) error {
	if r.IsRedeemed {
		return ErrAlreadyRedeemed
	}
	r.IsRedeemed = true
	st.Set(keys.KeyRecord(addr), r.Marshal())
	return nil
}

// VoucherEntry 金库下的一条凭证
type VoucherEntry struct {
	Address types.Address
	Record  *types.VoucherRecord
}

// ListVouchers 按凭证 mint 排序列出金库下的所有凭证记录
func (p *Program) ListVouchers(st RecordScanner, vault types.Address) ([]VoucherEntry, error) {
	idx, err := st.Scan(keys.NameOfKeyVaultVouchers(vault))
	if err != nil {
		return nil, err
	}
	idxKeys := make([]string, 0, len(idx))
	for k := range idx {
		idxKeys = append(idxKeys, k)
	}
	sort.Strings(idxKeys)

	out := make([]VoucherEntry, 0, len(idxKeys))
	for _, k := range idxKeys {
		addr, err := types.AddressFromBytes(idx[k])
		if err != nil {
			return nil, fmt.Errorf("voucher index %s: %w", k, err)
		}
		r, err := p.LoadVoucherRecord(st, addr)
		if err != nil {
			return nil, err
		}
		out = append(out, VoucherEntry{Address: addr, Record: r})
	}
	return out, nil
}
