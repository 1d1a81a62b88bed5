package vm

import (
	"fmt"

	"creatorvault/keys"
	"creatorvault/logs"
	"creatorvault/types"
)

// LoadVault 读取金库记录，并确认 addr 能由记录里的 (creator, asset, bump) 重新推导出来
// 记录缺失、类型不对或地址不匹配都归为 ErrInvalidVault
func (p *Program) LoadVault(st types.RecordStore, addr types.Address) (*types.CreatorVault, error) {
	data, ok, err := st.Get(keys.KeyRecord(addr))
	if err != nil {
		return nil, err
	}
	if !ok || len(data) == 0 {
		return nil, fmt.Errorf("%w: no record at %s", ErrInvalidVault, addr)
	}
	var v types.CreatorVault
	if err := v.Unmarshal(data); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidVault, addr, err)
	}
	derived, err := p.deriver.CreateProgramAddress(p.vaultSeed, v.Creator[:], v.AssetMint[:], []byte{v.Bump})
	if err != nil || derived != addr {
		return nil, fmt.Errorf("%w: %s is not derived from its creator and asset", ErrInvalidVault, addr)
	}
	return &v, nil
}

func saveVault(st types.RecordStore, addr types.Address, v *types.CreatorVault) {
	st.Set(keys.KeyRecord(addr), v.Marshal())
}

// creditVault 存款入账，饱和加
func creditVault(st types.RecordStore, addr types.Address, v *types.CreatorVault, amount uint64) {
	v.TotalDeposited = SaturatingAdd(v.TotalDeposited, amount)
	saveVault(st, addr, v)
	logs.Trace("[Vault] credit %s +%d -> %d", addr.Short(), amount, v.TotalDeposited)
}

// debitVault 赎回出账，饱和减，永不为负
func debitVault(st types.RecordStore, addr types.Address, v *types.CreatorVault, amount uint64) {
	v.TotalDeposited = SaturatingSub(v.TotalDeposited, amount)
	saveVault(st, addr, v)
	logs.Trace("[Vault] debit %s -%d -> %d", addr.Short(), amount, v.TotalDeposited)
}

// ensureFree 记录创建服务：目标地址已有记录则拒绝
func ensureFree(st types.RecordStore, addr types.Address) error {
	data, ok, err := st.Get(keys.KeyRecord(addr))
	if err != nil {
		return err
	}
	if ok && len(data) > 0 {
		return fmt.Errorf("%w: %s", ErrAccountInUse, addr)
	}
	return nil
}

// allocate 在空地址上写入新记录
func allocate(st types.RecordStore, addr types.Address, data []byte) error {
	if err := ensureFree(st, addr); err != nil {
		return err
	}
	st.Set(keys.KeyRecord(addr), data)
	return nil
}
