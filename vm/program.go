package vm

import (
	"fmt"

	"creatorvault/config"
	"creatorvault/pda"
	"creatorvault/types"
)

// Program 金库程序：程序 ID、seed 标签和已注册的转账服务
// 启动时由配置构造一次，之后只读
type Program struct {
	deriver         *pda.Deriver
	vaultSeed       []byte
	voucherSeed     []byte
	voucherDecimals uint8
	gateways        map[types.Address]TransferGateway
}

// NewProgram 用配置里的程序 ID 和 seed 标签构造；gateways 是宿主提供的转账服务实现
func NewProgram(cfg *config.Config, gateways ...TransferGateway) (*Program, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	progs, err := cfg.Programs()
	if err != nil {
		return nil, err
	}
	p := &Program{
		deriver:         pda.NewDeriver(progs.VaultProgram),
		vaultSeed:       []byte(cfg.Program.VaultSeed),
		voucherSeed:     []byte(cfg.Program.VoucherSeed),
		voucherDecimals: cfg.Program.VoucherDecimals,
		gateways:        make(map[types.Address]TransferGateway, len(gateways)),
	}
	for _, g := range gateways {
		if g == nil {
			continue
		}
		if _, dup := p.gateways[g.ID()]; dup {
			return nil, fmt.Errorf("duplicate transfer service %s", g.ID())
		}
		p.gateways[g.ID()] = g
	}
	return p, nil
}

func (p *Program) ID() types.Address {
	return p.deriver.ProgramID()
}

// Gateway 按程序 ID 取转账服务
func (p *Program) Gateway(id types.Address) (TransferGateway, error) {
	g, ok := p.gateways[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTransferService, id)
	}
	return g, nil
}

// FindVaultAddress 金库地址 = derive(vault_seed, creator, asset)
func (p *Program) FindVaultAddress(creator, assetMint types.Address) (types.Address, uint8, error) {
	return p.deriver.FindProgramAddress(p.vaultSeed, creator[:], assetMint[:])
}

// FindVoucherRecordAddress 凭证记录地址 = derive(voucher_seed, vault, voucher_mint)
func (p *Program) FindVoucherRecordAddress(vault, voucherMint types.Address) (types.Address, uint8, error) {
	return p.deriver.FindProgramAddress(p.voucherSeed, vault[:], voucherMint[:])
}

// vaultSigners 重新推导金库地址，证明对托管账户的签名权
func (p *Program) vaultSigners(signers types.Signers, vaultAddr types.Address, v *types.CreatorVault) (types.Signers, error) {
	return p.deriver.SignAs(signers, vaultAddr, v.Bump, p.vaultSeed, v.Creator[:], v.AssetMint[:])
}
