package vm

import (
	"errors"
	"fmt"

	"creatorvault/logs"
)

// BurnAndRedeemTxHandler 销毁凭证、标记已赎回、由金库地址签名把存款转给持有人
// 赎回只看凭证持有，不要求是原存款人
type BurnAndRedeemTxHandler struct {
	Program *Program
}

func (h *BurnAndRedeemTxHandler) Kind() string {
	return KindBurnAndRedeem
}

func (h *BurnAndRedeemTxHandler) DryRun(tx *AnyTx, sv StateView) (*Receipt, error) {
	rc := newReceipt(tx, h.Kind())
	body, ok := tx.Content.(*BurnAndRedeemTx)
	if !ok || body == nil {
		return failReceipt(rc, errors.New("not a burn_and_redeem transaction"))
	}
	redeemer := tx.Signer()
	signers := tx.SignerSet()

	a := h.Program.loadRedeemAccounts(sv, body)
	if err := validate(redeemPredicates(redeemer, body, a)); err != nil {
		return failReceipt(rc, err)
	}
	gw := a.gateway
	amount := a.record.DepositAmount

	// 1. 先销毁凭证，失败则什么都不付
	if err := gw.Burn(sv, body.VoucherAccount, body.VoucherMint, 1, signers); err != nil {
		return failReceipt(rc, fmt.Errorf("burn voucher: %w", err))
	}

	// 2. 防止重复赎回的唯一标记
	if err := markRedeemed(sv, body.VoucherRecord, a.record); err != nil {
		return failReceipt(rc, err)
	}

	// 3. 金库地址重新推导出签名权，从托管账户付款
	vaultSigners, err := h.Program.vaultSigners(signers, body.Vault, a.vault)
	if err != nil {
		return failReceipt(rc, fmt.Errorf("vault authority: %w", err))
	}
	if err := gw.Transfer(sv, body.EscrowAccount, body.RedeemerAccount, amount, vaultSigners); err != nil {
		return failReceipt(rc, fmt.Errorf("payout transfer: %w", err))
	}

	// 4. 饱和减
	debitVault(sv, body.Vault, a.vault, amount)

	rc.Logs = append(rc.Logs, fmt.Sprintf("redeemed=%d total=%d", amount, a.vault.TotalDeposited))
	logs.Info("[Vault] redeem %d from %s, voucher %s", amount, body.Vault.Short(), body.VoucherMint.Short())
	return rc, nil
}
