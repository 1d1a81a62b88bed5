package vm

import (
	"errors"
	"fmt"

	"creatorvault/logs"
	"creatorvault/types"
)

// InitializeVaultTxHandler 开金库：推导地址、创建托管账户、写入金库记录
// 同一 (creator, asset) 第二次初始化会因地址已占用而失败
type InitializeVaultTxHandler struct {
	Program *Program
}

func (h *InitializeVaultTxHandler) Kind() string {
	return KindInitializeVault
}

func (h *InitializeVaultTxHandler) DryRun(tx *AnyTx, sv StateView) (*Receipt, error) {
	rc := newReceipt(tx, h.Kind())
	body, ok := tx.Content.(*InitializeVaultTx)
	if !ok || body == nil {
		return failReceipt(rc, errors.New("not an initialize_vault transaction"))
	}

	vaultAddr, bump, err := h.Program.FindVaultAddress(body.Creator, body.AssetMint)
	if err != nil {
		return failReceipt(rc, err)
	}
	if err := validate(h.Program.initializeVaultPredicates(sv, tx.SignerSet(), body, vaultAddr)); err != nil {
		return failReceipt(rc, err)
	}

	gw, err := h.Program.Gateway(body.TransferService)
	if err != nil {
		return failReceipt(rc, err)
	}
	// 托管账户归金库地址所有；已存在的关联账户只要 mint/owner 正确就复用
	escrow, err := gw.EnsureAssociatedAccount(sv, vaultAddr, body.AssetMint)
	if err != nil {
		return failReceipt(rc, fmt.Errorf("create escrow account: %w", err))
	}

	v := &types.CreatorVault{
		Creator:         body.Creator,
		AssetMint:       body.AssetMint,
		TransferService: body.TransferService,
		EscrowAccount:   escrow,
		Bump:            bump,
	}
	if err := allocate(sv, vaultAddr, v.Marshal()); err != nil {
		return failReceipt(rc, err)
	}

	rc.Logs = append(rc.Logs, fmt.Sprintf("vault=%s escrow=%s", vaultAddr, escrow))
	logs.Info("[Vault] initialized %s creator=%s asset=%s", vaultAddr.Short(), body.Creator.Short(), body.AssetMint.Short())
	return rc, nil
}
