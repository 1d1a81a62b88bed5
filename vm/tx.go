package vm

import "creatorvault/types"

// 三种对外交易类型，除此之外没有其他可变更状态的入口
const (
	KindInitializeVault       = "initialize_vault"
	KindDepositAndMintVoucher = "deposit_and_mint_voucher"
	KindBurnAndRedeem         = "burn_and_redeem"
)

// TxContent 交易内容，按 Kind 路由到 Handler
type TxContent interface {
	Kind() string
}

// AnyTx 交易信封
// Signers 是宿主已验证过签名的地址，第一个为发起人
type AnyTx struct {
	TxID    string
	Signers []types.Address
	Content TxContent
}

func (tx *AnyTx) GetTxId() string {
	if tx == nil {
		return ""
	}
	return tx.TxID
}

// Signer 发起人；没有签名者时返回零地址
func (tx *AnyTx) Signer() types.Address {
	if tx == nil || len(tx.Signers) == 0 {
		return types.ZeroAddress
	}
	return tx.Signers[0]
}

func (tx *AnyTx) SignerSet() types.Signers {
	return types.NewSigners(tx.Signers...)
}

// InitializeVaultTx 为 (creator, asset) 开一个金库，creator 必须签名
type InitializeVaultTx struct {
	Creator         types.Address
	AssetMint       types.Address
	TransferService types.Address
}

func (*InitializeVaultTx) Kind() string { return KindInitializeVault }

// DepositAndMintVoucherTx 存入 Amount 并铸造一枚凭证
// VoucherMint 由客户端生成，必须是未使用的新地址
type DepositAndMintVoucherTx struct {
	Vault            types.Address
	AssetMint        types.Address
	DepositorAccount types.Address
	EscrowAccount    types.Address
	VoucherMint      types.Address
	TransferService  types.Address
	Amount           uint64
}

func (*DepositAndMintVoucherTx) Kind() string { return KindDepositAndMintVoucher }

// BurnAndRedeemTx 销毁持有的凭证并取回对应存款
type BurnAndRedeemTx struct {
	Vault           types.Address
	AssetMint       types.Address
	EscrowAccount   types.Address
	RedeemerAccount types.Address
	VoucherMint     types.Address
	VoucherAccount  types.Address // 赎回人持有凭证的账户
	VoucherRecord   types.Address
	TransferService types.Address
}

func (*BurnAndRedeemTx) Kind() string { return KindBurnAndRedeem }
