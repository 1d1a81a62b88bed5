// token/program.go
// 参考实现的同质化资产转账服务：mint / transfer / burn / 撤销铸币权限
// 金库核心只通过 vm.TransferGateway 接口调用它
package token

import (
	"errors"
	"fmt"
	"math"

	"creatorvault/keys"
	"creatorvault/logs"
	"creatorvault/pda"
	"creatorvault/types"
)

var (
	ErrAccountNotFound      = errors.New("token account not found")
	ErrMintNotFound         = errors.New("mint not found")
	ErrAlreadyInUse         = errors.New("address already in use")
	ErrNotTokenRecord       = errors.New("record is not owned by this token program")
	ErrMintMismatch         = errors.New("account mint mismatch")
	ErrMissingSignature     = errors.New("missing required signature")
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrOverflow             = errors.New("amount overflow")
	ErrMintAuthorityRevoked = errors.New("mint authority revoked, supply is fixed")
)

// State 转账服务读写的记录存储
type State = types.RecordStore

// Program 一个转账服务实例，由自己的程序 ID 标识
type Program struct {
	id         types.Address
	associated *pda.Deriver
}

// NewProgram 关联账户地址在 associatedProgramID 下由 (owner, 本程序 ID, mint) 推导
func NewProgram(id, associatedProgramID types.Address) *Program {
	return &Program{
		id:         id,
		associated: pda.NewDeriver(associatedProgramID),
	}
}

func (p *Program) ID() types.Address {
	return p.id
}

// AssociatedAccount 计算 owner 持有 mint 的关联账户地址
func (p *Program) AssociatedAccount(owner, mint types.Address) (types.Address, error) {
	addr, _, err := p.associated.FindProgramAddress(owner[:], p.id[:], mint[:])
	return addr, err
}

// Mint 读取 mint 记录
func (p *Program) Mint(st State, addr types.Address) (*types.Mint, error) {
	data, ok, err := st.Get(keys.KeyRecord(addr))
	if err != nil {
		return nil, err
	}
	if !ok || len(data) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrMintNotFound, addr)
	}
	var m types.Mint
	if err := m.Unmarshal(data); err != nil {
		return nil, fmt.Errorf("%w: mint %s: %v", ErrNotTokenRecord, addr, err)
	}
	if m.Program != p.id {
		return nil, fmt.Errorf("%w: mint %s belongs to %s", ErrNotTokenRecord, addr, m.Program)
	}
	return &m, nil
}

// Account 读取 token 账户记录
func (p *Program) Account(st State, addr types.Address) (*types.TokenAccount, error) {
	data, ok, err := st.Get(keys.KeyRecord(addr))
	if err != nil {
		return nil, err
	}
	if !ok || len(data) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, addr)
	}
	var a types.TokenAccount
	if err := a.Unmarshal(data); err != nil {
		return nil, fmt.Errorf("%w: account %s: %v", ErrNotTokenRecord, addr, err)
	}
	if a.Program != p.id {
		return nil, fmt.Errorf("%w: account %s belongs to %s", ErrNotTokenRecord, addr, a.Program)
	}
	return &a, nil
}

// InitializeMint 在空地址上创建 mint
func (p *Program) InitializeMint(st State, mint types.Address, decimals uint8, authority types.Address) error {
	if err := ensureFree(st, mint); err != nil {
		return err
	}
	m := &types.Mint{MintAuthority: authority, Decimals: decimals, Program: p.id}
	st.Set(keys.KeyRecord(mint), m.Marshal())
	return nil
}

// InitializeAccount 在空地址上创建 token 账户
func (p *Program) InitializeAccount(st State, account, mint, owner types.Address) error {
	if _, err := p.Mint(st, mint); err != nil {
		return err
	}
	if err := ensureFree(st, account); err != nil {
		return err
	}
	a := &types.TokenAccount{Mint: mint, Owner: owner, Program: p.id}
	st.Set(keys.KeyRecord(account), a.Marshal())
	return nil
}

// EnsureAssociatedAccount 关联账户不存在则创建；已存在时校验 mint 和 owner
func (p *Program) EnsureAssociatedAccount(st State, owner, mint types.Address) (types.Address, error) {
	addr, err := p.AssociatedAccount(owner, mint)
	if err != nil {
		return types.ZeroAddress, err
	}
	existing, err := p.Account(st, addr)
	switch {
	case err == nil:
		if existing.Mint != mint {
			return types.ZeroAddress, fmt.Errorf("%w: associated account %s", ErrMintMismatch, addr)
		}
		if existing.Owner != owner {
			return types.ZeroAddress, fmt.Errorf("%w: associated account %s has owner %s", ErrAlreadyInUse, addr, existing.Owner)
		}
		return addr, nil
	case errors.Is(err, ErrAccountNotFound):
		return addr, p.InitializeAccount(st, addr, mint, owner)
	default:
		return types.ZeroAddress, err
	}
}

// Transfer 从 from 转 amount 到 to，需要 from 的 owner 签名
func (p *Program) Transfer(st State, from, to types.Address, amount uint64, signers types.Signers) error {
	src, err := p.Account(st, from)
	if err != nil {
		return err
	}
	dst, err := p.Account(st, to)
	if err != nil {
		return err
	}
	if src.Mint != dst.Mint {
		return fmt.Errorf("%w: %s -> %s", ErrMintMismatch, src.Mint, dst.Mint)
	}
	if !signers.Has(src.Owner) {
		return fmt.Errorf("%w: owner %s of %s", ErrMissingSignature, src.Owner, from)
	}
	if src.Amount < amount {
		return fmt.Errorf("%w: has %d, need %d", ErrInsufficientFunds, src.Amount, amount)
	}
	if from == to {
		return nil
	}
	if dst.Amount > math.MaxUint64-amount {
		return fmt.Errorf("%w: %s", ErrOverflow, to)
	}
	src.Amount -= amount
	dst.Amount += amount
	st.Set(keys.KeyRecord(from), src.Marshal())
	st.Set(keys.KeyRecord(to), dst.Marshal())
	logs.Trace("[Token] transfer %d %s -> %s", amount, from.Short(), to.Short())
	return nil
}

// MintTo 增发，需要 mint authority 签名；authority 已撤销则永久失败
func (p *Program) MintTo(st State, mint, to types.Address, amount uint64, signers types.Signers) error {
	m, err := p.Mint(st, mint)
	if err != nil {
		return err
	}
	if !m.HasMintAuthority() {
		return fmt.Errorf("%w: %s", ErrMintAuthorityRevoked, mint)
	}
	if !signers.Has(m.MintAuthority) {
		return fmt.Errorf("%w: mint authority %s", ErrMissingSignature, m.MintAuthority)
	}
	dst, err := p.Account(st, to)
	if err != nil {
		return err
	}
	if dst.Mint != mint {
		return fmt.Errorf("%w: %s is not a %s account", ErrMintMismatch, to, mint)
	}
	if m.Supply > math.MaxUint64-amount || dst.Amount > math.MaxUint64-amount {
		return fmt.Errorf("%w: mint %s", ErrOverflow, mint)
	}
	m.Supply += amount
	dst.Amount += amount
	st.Set(keys.KeyRecord(mint), m.Marshal())
	st.Set(keys.KeyRecord(to), dst.Marshal())
	return nil
}

// Burn 销毁 account 中的 amount，需要账户 owner 签名
func (p *Program) Burn(st State, account, mint types.Address, amount uint64, signers types.Signers) error {
	src, err := p.Account(st, account)
	if err != nil {
		return err
	}
	if src.Mint != mint {
		return fmt.Errorf("%w: %s is not a %s account", ErrMintMismatch, account, mint)
	}
	m, err := p.Mint(st, mint)
	if err != nil {
		return err
	}
	if !signers.Has(src.Owner) {
		return fmt.Errorf("%w: owner %s of %s", ErrMissingSignature, src.Owner, account)
	}
	if src.Amount < amount {
		return fmt.Errorf("%w: has %d, burn %d", ErrInsufficientFunds, src.Amount, amount)
	}
	src.Amount -= amount
	// 供应量始终 >= 任一账户余额，这里不会下溢
	m.Supply -= amount
	st.Set(keys.KeyRecord(account), src.Marshal())
	st.Set(keys.KeyRecord(mint), m.Marshal())
	return nil
}

// RevokeMintAuthority 永久撤销铸币权限
func (p *Program) RevokeMintAuthority(st State, mint types.Address, signers types.Signers) error {
	m, err := p.Mint(st, mint)
	if err != nil {
		return err
	}
	if !m.HasMintAuthority() {
		return fmt.Errorf("%w: %s", ErrMintAuthorityRevoked, mint)
	}
	if !signers.Has(m.MintAuthority) {
		return fmt.Errorf("%w: mint authority %s", ErrMissingSignature, m.MintAuthority)
	}
	m.MintAuthority = types.ZeroAddress
	st.Set(keys.KeyRecord(mint), m.Marshal())
	return nil
}

func ensureFree(st State, addr types.Address) error {
	data, ok, err := st.Get(keys.KeyRecord(addr))
	if err != nil {
		return err
	}
	if ok && len(data) > 0 {
		return fmt.Errorf("%w: %s", ErrAlreadyInUse, addr)
	}
	return nil
}
