package vm

import (
	"errors"
	"fmt"

	"creatorvault/logs"
	"creatorvault/types"
)

// DepositAndMintVoucherTxHandler 存入资产并铸造一枚供应量永久为 1 的凭证
type DepositAndMintVoucherTxHandler struct {
	Program *Program
}

func (h *DepositAndMintVoucherTxHandler) Kind() string {
	return KindDepositAndMintVoucher
}

func (h *DepositAndMintVoucherTxHandler) DryRun(tx *AnyTx, sv StateView) (*Receipt, error) {
	rc := newReceipt(tx, h.Kind())
	body, ok := tx.Content.(*DepositAndMintVoucherTx)
	if !ok || body == nil {
		return failReceipt(rc, errors.New("not a deposit_and_mint_voucher transaction"))
	}
	depositor := tx.Signer()
	signers := tx.SignerSet()

	a := h.Program.loadDepositAccounts(sv, body)
	if err := validate(depositPredicates(sv, signers, depositor, body, a)); err != nil {
		return failReceipt(rc, err)
	}
	gw := a.gateway

	// 1. 资产从存款人账户转入托管账户
	if err := gw.Transfer(sv, body.DepositorAccount, body.EscrowAccount, body.Amount, signers); err != nil {
		return failReceipt(rc, fmt.Errorf("deposit transfer: %w", err))
	}

	// 2. 累计存款
	creditVault(sv, body.Vault, a.vault, body.Amount)

	// 3. 凭证记录
	recordAddr, _, err := h.Program.createVoucherRecord(sv, body.Vault, body.VoucherMint, depositor, body.Amount)
	if err != nil {
		return failReceipt(rc, fmt.Errorf("create voucher record: %w", err))
	}

	// 4. 新建凭证 mint，给存款人铸 1 枚
	if err := gw.InitializeMint(sv, body.VoucherMint, h.Program.voucherDecimals, depositor); err != nil {
		return failReceipt(rc, fmt.Errorf("create voucher mint: %w", err))
	}
	holder, err := gw.EnsureAssociatedAccount(sv, depositor, body.VoucherMint)
	if err != nil {
		return failReceipt(rc, fmt.Errorf("create voucher account: %w", err))
	}
	if err := gw.MintTo(sv, body.VoucherMint, holder, 1, signers); err != nil {
		return failReceipt(rc, fmt.Errorf("mint voucher: %w", err))
	}

	// 5. 撤销铸币权限，供应量固定为 1
	if err := gw.RevokeMintAuthority(sv, body.VoucherMint, signers); err != nil {
		return failReceipt(rc, fmt.Errorf("revoke voucher mint authority: %w", err))
	}

	display := fmt.Sprintf("%d", body.Amount)
	if m, err := gw.Mint(sv, body.AssetMint); err == nil {
		display = types.FormatAmount(body.Amount, m.Decimals)
	}
	rc.Logs = append(rc.Logs,
		fmt.Sprintf("voucher_record=%s voucher_account=%s", recordAddr, holder),
		fmt.Sprintf("deposited=%s total=%d", display, a.vault.TotalDeposited),
	)
	logs.Info("[Vault] deposit %s into %s, voucher %s", display, body.Vault.Short(), body.VoucherMint.Short())
	return rc, nil
}
