// types/address.go
// 32 字节地址：账户、记录、程序 ID 统一使用，文本形式为 base58
package types

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcutil/base58"
)

// AddressLength 地址字节长度
const AddressLength = 32

var (
	ErrInvalidAddress = errors.New("invalid address")
)

// Address 确定性地址或普通账户地址
type Address [AddressLength]byte

// ZeroAddress 空地址，用于表示"无"（例如已撤销的铸币权限）
var ZeroAddress Address

// ParseAddress 从 base58 字符串解析地址
func ParseAddress(s string) (Address, error) {
	var a Address
	raw := base58.Decode(s)
	if len(raw) != AddressLength {
		return a, fmt.Errorf("%w: %q decodes to %d bytes", ErrInvalidAddress, s, len(raw))
	}
	copy(a[:], raw)
	return a, nil
}

// AddressFromBytes 从原始字节构造地址
func AddressFromBytes(b []byte) (Address, error) {
	var a Address
	if len(b) != AddressLength {
		return a, fmt.Errorf("%w: length %d", ErrInvalidAddress, len(b))
	}
	copy(a[:], b)
	return a, nil
}

func (a Address) String() string {
	return base58.Encode(a[:])
}

// Short 日志里用的缩写形式
func (a Address) Short() string {
	s := a.String()
	if len(s) <= 8 {
		return s
	}
	return s[:4] + ".." + s[len(s)-4:]
}

func (a Address) Bytes() []byte {
	b := make([]byte, AddressLength)
	copy(b, a[:])
	return b
}

func (a Address) IsZero() bool {
	return a == ZeroAddress
}

func (a Address) Equal(o Address) bool {
	return bytes.Equal(a[:], o[:])
}

// MarshalText 让配置和 JSON 回执直接输出 base58
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Address) UnmarshalText(text []byte) error {
	parsed, err := ParseAddress(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Signers 一笔交易中已被授权的签名者集合
// 交易签名者由宿主验证后放入，宿主拒绝曲线外的确定性地址作为交易签名者；
// 确定性地址只能在执行中通过 pda.Deriver.SignAs 放入
type Signers map[Address]struct{}

func NewSigners(addrs ...Address) Signers {
	s := make(Signers, len(addrs))
	for _, a := range addrs {
		s[a] = struct{}{}
	}
	return s
}

func (s Signers) Has(a Address) bool {
	_, ok := s[a]
	return ok
}

// With 返回包含额外签名者的新集合，不修改原集合
func (s Signers) With(addrs ...Address) Signers {
	out := make(Signers, len(s)+len(addrs))
	for a := range s {
		out[a] = struct{}{}
	}
	for _, a := range addrs {
		out[a] = struct{}{}
	}
	return out
}
