package types

import (
	"math/big"

	"github.com/shopspring/decimal"
)

var (
	MintDiscriminator         = Discriminator("Mint")
	TokenAccountDiscriminator = Discriminator("TokenAccount")
)

// Mint 同质化资产或凭证 token 的类型记录
type Mint struct {
	MintAuthority Address // 零地址表示铸币权限已撤销，供应量永久固定
	Supply        uint64
	Decimals      uint8
	Program       Address // 创建该 mint 的转账服务
}

func (m *Mint) HasMintAuthority() bool {
	return !m.MintAuthority.IsZero()
}

func (m *Mint) Marshal() []byte {
	w := newRecordWriter(MintDiscriminator)
	w.address(1, m.MintAuthority)
	w.uint64(2, m.Supply)
	w.uint64(3, uint64(m.Decimals))
	w.address(4, m.Program)
	return w.bytes()
}

func (m *Mint) Unmarshal(data []byte) error {
	f, err := readRecord(data, MintDiscriminator)
	if err != nil {
		return err
	}
	var out Mint
	if out.MintAuthority, err = f.address(1); err != nil {
		return err
	}
	out.Supply = f.uint64(2)
	if out.Decimals, err = f.uint8(3); err != nil {
		return err
	}
	if out.Program, err = f.address(4); err != nil {
		return err
	}
	*m = out
	return nil
}

// TokenAccount 某个 owner 持有某种 mint 的余额
type TokenAccount struct {
	Mint    Address
	Owner   Address
	Amount  uint64
	Program Address // 创建该账户的转账服务
}

func (a *TokenAccount) Marshal() []byte {
	w := newRecordWriter(TokenAccountDiscriminator)
	w.address(1, a.Mint)
	w.address(2, a.Owner)
	w.uint64(3, a.Amount)
	w.address(4, a.Program)
	return w.bytes()
}

func (a *TokenAccount) Unmarshal(data []byte) error {
	f, err := readRecord(data, TokenAccountDiscriminator)
	if err != nil {
		return err
	}
	var out TokenAccount
	if out.Mint, err = f.address(1); err != nil {
		return err
	}
	if out.Owner, err = f.address(2); err != nil {
		return err
	}
	out.Amount = f.uint64(3)
	if out.Program, err = f.address(4); err != nil {
		return err
	}
	*a = out
	return nil
}

// FormatAmount 按 mint 精度把最小单位金额转成可读字符串，例如 (123000000, 6) -> "123.000000"
func FormatAmount(amount uint64, decimals uint8) string {
	d := decimal.NewFromBigInt(new(big.Int).SetUint64(amount), -int32(decimals))
	return d.StringFixed(int32(decimals))
}
