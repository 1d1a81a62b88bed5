package types

import "fmt"

var (
	CreatorVaultDiscriminator  = Discriminator("CreatorVault")
	VoucherRecordDiscriminator = Discriminator("VoucherRecord")
)

// CreatorVault 每个 (creator, asset) 一个托管金库
type CreatorVault struct {
	Creator         Address
	AssetMint       Address
	TransferService Address // 允许移动该资产的转账服务（支持多种实现）
	EscrowAccount   Address // 由金库确定性地址持有的托管账户
	TotalDeposited  uint64  // 未赎回存款总额，赎回时饱和减
	Bump            uint8   // 金库地址的推导参数
}

func (v *CreatorVault) Marshal() []byte {
	w := newRecordWriter(CreatorVaultDiscriminator)
	w.address(1, v.Creator)
	w.address(2, v.AssetMint)
	w.address(3, v.TransferService)
	w.address(4, v.EscrowAccount)
	w.uint64(5, v.TotalDeposited)
	w.uint64(6, uint64(v.Bump))
	return w.bytes()
}

func (v *CreatorVault) Unmarshal(data []byte) error {
	f, err := readRecord(data, CreatorVaultDiscriminator)
	if err != nil {
		return err
	}
	var out CreatorVault
	if out.Creator, err = f.address(1); err != nil {
		return err
	}
	if out.AssetMint, err = f.address(2); err != nil {
		return err
	}
	if out.TransferService, err = f.address(3); err != nil {
		return err
	}
	if out.EscrowAccount, err = f.address(4); err != nil {
		return err
	}
	out.TotalDeposited = f.uint64(5)
	if out.Bump, err = f.uint8(6); err != nil {
		return err
	}
	*v = out
	return nil
}

func (v *CreatorVault) String() string {
	return fmt.Sprintf("CreatorVault{creator=%s asset=%s escrow=%s total=%d}",
		v.Creator.Short(), v.AssetMint.Short(), v.EscrowAccount.Short(), v.TotalDeposited)
}

// VoucherState 凭证记录的生命周期
type VoucherState string

const (
	VoucherIssued   VoucherState = "ISSUED"
	VoucherRedeemed VoucherState = "REDEEMED"
)

// VoucherRecord 每个凭证 token 对应一条记录
type VoucherRecord struct {
	Vault         Address // 所属金库（仅引用）
	VoucherMint   Address // 唯一、供应量为 1 的凭证 token
	Depositor     Address // 存款人（发行时）；赎回只看凭证持有
	DepositAmount uint64  // 发行时固定，之后不可变
	IsRedeemed    bool
	Bump          uint8
}

func (r *VoucherRecord) State() VoucherState {
	if r.IsRedeemed {
		return VoucherRedeemed
	}
	return VoucherIssued
}

func (r *VoucherRecord) Marshal() []byte {
	w := newRecordWriter(VoucherRecordDiscriminator)
	w.address(1, r.Vault)
	w.address(2, r.VoucherMint)
	w.address(3, r.Depositor)
	w.uint64(4, r.DepositAmount)
	w.bool(5, r.IsRedeemed)
	w.uint64(6, uint64(r.Bump))
	return w.bytes()
}

func (r *VoucherRecord) Unmarshal(data []byte) error {
	f, err := readRecord(data, VoucherRecordDiscriminator)
	if err != nil {
		return err
	}
	var out VoucherRecord
	if out.Vault, err = f.address(1); err != nil {
		return err
	}
	if out.VoucherMint, err = f.address(2); err != nil {
		return err
	}
	if out.Depositor, err = f.address(3); err != nil {
		return err
	}
	out.DepositAmount = f.uint64(4)
	out.IsRedeemed = f.bool(5)
	if out.Bump, err = f.uint8(6); err != nil {
		return err
	}
	*r = out
	return nil
}
