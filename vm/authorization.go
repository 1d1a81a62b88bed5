package vm

import (
	"fmt"

	"creatorvault/keys"
	"creatorvault/logs"
	"creatorvault/types"
)

// authorization.go 每种交易的校验是一张有序的谓词表
// 在任何写入之前按顺序执行，返回第一个失败谓词的错误

// predicate 一条命名校验；check 返回 nil 表示通过
type predicate struct {
	name  string
	check func() error
}

func expect(cond bool, kind error) error {
	if cond {
		return nil
	}
	return kind
}

// validate 按顺序执行，遇到第一个失败立即返回
func validate(preds []predicate) error {
	for _, p := range preds {
		if err := p.check(); err != nil {
			logs.Debug("[Vault] check %q failed: %v", p.name, err)
			return fmt.Errorf("%s: %w", p.name, err)
		}
	}
	return nil
}

// vaultAccounts 交易中出现的金库侧记录
// 加载阶段不报错，错误留给对应谓词，保证报错顺序与谓词表一致
type vaultAccounts struct {
	addr       types.Address
	vault      *types.CreatorVault
	vaultErr   error
	gateway    TransferGateway
	gatewayErr error
	escrow     *types.TokenAccount
	escrowErr  error
}

func (p *Program) loadVaultAccounts(st types.RecordStore, vaultAddr, escrowAddr types.Address) *vaultAccounts {
	a := &vaultAccounts{addr: vaultAddr}
	if a.vault, a.vaultErr = p.LoadVault(st, vaultAddr); a.vaultErr != nil {
		return a
	}
	if a.gateway, a.gatewayErr = p.Gateway(a.vault.TransferService); a.gatewayErr != nil {
		return a
	}
	a.escrow, a.escrowErr = loadTokenAccount(a.gateway, st, escrowAddr)
	return a
}

func loadTokenAccount(gw TransferGateway, st types.RecordStore, addr types.Address) (*types.TokenAccount, error) {
	if gw == nil {
		return nil, ErrUnknownTransferService
	}
	acc, err := gw.Account(st, addr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAccountNotInitialized, err)
	}
	return acc, nil
}

// vaultPredicates 金库本身、资产、转账服务、托管账户
func vaultPredicates(a *vaultAccounts, assetMint, transferService, escrowAddr types.Address) []predicate {
	return []predicate{
		{"vault", func() error { return a.vaultErr }},
		{"asset mint", func() error {
			return expect(assetMint == a.vault.AssetMint, ErrMintMismatch)
		}},
		{"transfer service", func() error {
			return expect(transferService == a.vault.TransferService, ErrTransferServiceMismatch)
		}},
		{"transfer service registered", func() error { return a.gatewayErr }},
		{"escrow account", func() error {
			return expect(escrowAddr == a.vault.EscrowAccount, ErrVaultAccountMismatch)
		}},
		{"escrow account initialized", func() error { return a.escrowErr }},
		{"escrow account mint", func() error {
			return expect(a.escrow.Mint == a.vault.AssetMint, ErrMintMismatch)
		}},
	}
}

// ownedAccountPredicates 发起人必须拥有其操作的 token 账户，且账户 mint 正确
func ownedAccountPredicates(label string, acc *types.TokenAccount, accErr error, owner, mint types.Address, mintKind error) []predicate {
	return []predicate{
		{label + " initialized", func() error { return accErr }},
		{label + " owner", func() error { return expect(acc.Owner == owner, ErrNotOwner) }},
		{label + " mint", func() error { return expect(acc.Mint == mint, mintKind) }},
	}
}

// ========== initialize_vault ==========

func (p *Program) initializeVaultPredicates(st types.RecordStore, signers types.Signers, body *InitializeVaultTx, vaultAddr types.Address) []predicate {
	return []predicate{
		{"creator signed", func() error { return expect(signers.Has(body.Creator), ErrMissingSignature) }},
		{"transfer service registered", func() error {
			_, err := p.Gateway(body.TransferService)
			return err
		}},
		{"asset mint", func() error {
			data, ok, err := st.Get(keys.KeyRecord(body.AssetMint))
			if err != nil {
				return err
			}
			var m types.Mint
			if !ok || m.Unmarshal(data) != nil {
				return fmt.Errorf("%w: mint %s", ErrAccountNotInitialized, body.AssetMint)
			}
			return expect(m.Program == body.TransferService, ErrTransferServiceMismatch)
		}},
		{"vault address unused", func() error { return ensureFree(st, vaultAddr) }},
	}
}

// ========== deposit_and_mint_voucher ==========

type depositAccounts struct {
	*vaultAccounts
	depositor    *types.TokenAccount
	depositorErr error
}

func (p *Program) loadDepositAccounts(st types.RecordStore, body *DepositAndMintVoucherTx) *depositAccounts {
	a := &depositAccounts{vaultAccounts: p.loadVaultAccounts(st, body.Vault, body.EscrowAccount)}
	a.depositor, a.depositorErr = loadTokenAccount(a.gateway, st, body.DepositorAccount)
	return a
}

func depositPredicates(st types.RecordStore, signers types.Signers, signer types.Address, body *DepositAndMintVoucherTx, a *depositAccounts) []predicate {
	preds := vaultPredicates(a.vaultAccounts, body.AssetMint, body.TransferService, body.EscrowAccount)
	preds = append(preds, ownedAccountPredicates("depositor account", a.depositor, a.depositorErr, signer, body.AssetMint, ErrMintMismatch)...)
	preds = append(preds,
		predicate{"amount", func() error { return expect(body.Amount > 0, ErrInvalidAmount) }},
		predicate{"voucher mint signed", func() error { return expect(signers.Has(body.VoucherMint), ErrMissingSignature) }},
		predicate{"voucher mint unused", func() error { return ensureFree(st, body.VoucherMint) }},
	)
	return preds
}

// ========== burn_and_redeem ==========

type redeemAccounts struct {
	*vaultAccounts
	redeemer    *types.TokenAccount
	redeemerErr error
	record      *types.VoucherRecord
	recordErr   error
	voucher     *types.TokenAccount
	voucherErr  error
}

func (p *Program) loadRedeemAccounts(st types.RecordStore, body *BurnAndRedeemTx) *redeemAccounts {
	a := &redeemAccounts{vaultAccounts: p.loadVaultAccounts(st, body.Vault, body.EscrowAccount)}
	a.redeemer, a.redeemerErr = loadTokenAccount(a.gateway, st, body.RedeemerAccount)
	a.record, a.recordErr = p.LoadVoucherRecord(st, body.VoucherRecord)
	a.voucher, a.voucherErr = loadTokenAccount(a.gateway, st, body.VoucherAccount)
	return a
}

// redeemPredicates 记录状态检查排在持有检查之前：
// 已赎回的凭证余额为 0，重复赎回要报 AlreadyRedeemed 而不是 NoVoucherHeld
func redeemPredicates(signer types.Address, body *BurnAndRedeemTx, a *redeemAccounts) []predicate {
	preds := vaultPredicates(a.vaultAccounts, body.AssetMint, body.TransferService, body.EscrowAccount)
	preds = append(preds, ownedAccountPredicates("redeemer account", a.redeemer, a.redeemerErr, signer, body.AssetMint, ErrMintMismatch)...)
	preds = append(preds,
		predicate{"voucher record", func() error { return a.recordErr }},
		predicate{"voucher record vault", func() error {
			return expect(a.record.Vault == a.addr, ErrInvalidVoucherRecord)
		}},
		predicate{"voucher record mint", func() error {
			return expect(a.record.VoucherMint == body.VoucherMint, ErrInvalidVoucherRecord)
		}},
		predicate{"voucher not redeemed", func() error { return expect(!a.record.IsRedeemed, ErrAlreadyRedeemed) }},
	)
	preds = append(preds, ownedAccountPredicates("voucher account", a.voucher, a.voucherErr, signer, body.VoucherMint, ErrVoucherMintMismatch)...)
	preds = append(preds,
		predicate{"voucher held", func() error { return expect(a.voucher.Amount >= 1, ErrNoVoucherHeld) }},
		predicate{"deposit amount", func() error { return expect(a.record.DepositAmount > 0, ErrInvalidAmount) }},
	)
	return preds
}
