// pda/deriver.go
// 确定性地址推导：地址由固定 seed 和程序 ID 算出，不存在对应私钥
package pda

import (
	"crypto/sha256"
	"errors"
	"fmt"

	"creatorvault/types"

	"github.com/btcsuite/btcd/btcec/v2"
)

const (
	// MaxSeeds 单次推导最多的 seed 数（含 bump）
	MaxSeeds = 16
	// MaxSeedLength 单个 seed 的最大字节数
	MaxSeedLength = 32

	domainMarker = "ProgramDerivedAddress"
)

var (
	ErrMaxSeedLength   = errors.New("seed length or count exceeded")
	ErrInvalidSeeds    = errors.New("seeds produce an on-curve address")
	ErrNoViableBump    = errors.New("unable to find a viable bump")
	ErrAuthorityDenied = errors.New("seeds do not derive the requested authority")
)

// Deriver 绑定某个程序 ID 的地址推导器
type Deriver struct {
	programID types.Address
}

func NewDeriver(programID types.Address) *Deriver {
	return &Deriver{programID: programID}
}

func (d *Deriver) ProgramID() types.Address {
	return d.programID
}

// CreateProgramAddress 用完整 seed（最后一个通常是 bump）计算地址
// 结果若恰好是合法的 secp256k1 公钥 x 坐标则拒绝，保证无人持有私钥
func (d *Deriver) CreateProgramAddress(seeds ...[]byte) (types.Address, error) {
	if len(seeds) > MaxSeeds {
		return types.ZeroAddress, fmt.Errorf("%w: %d seeds", ErrMaxSeedLength, len(seeds))
	}
	h := sha256.New()
	for i, s := range seeds {
		if len(s) > MaxSeedLength {
			return types.ZeroAddress, fmt.Errorf("%w: seed %d is %d bytes", ErrMaxSeedLength, i, len(s))
		}
		h.Write(s)
	}
	h.Write(d.programID[:])
	h.Write([]byte(domainMarker))

	var addr types.Address
	copy(addr[:], h.Sum(nil))
	if IsOnCurve(addr) {
		return types.ZeroAddress, ErrInvalidSeeds
	}
	return addr, nil
}

// FindProgramAddress 从 bump=255 向下搜索第一个离曲线的地址
func (d *Deriver) FindProgramAddress(seeds ...[]byte) (types.Address, uint8, error) {
	if len(seeds) >= MaxSeeds {
		return types.ZeroAddress, 0, fmt.Errorf("%w: %d seeds", ErrMaxSeedLength, len(seeds))
	}
	withBump := make([][]byte, len(seeds)+1)
	copy(withBump, seeds)
	for bump := 255; bump >= 0; bump-- {
		withBump[len(seeds)] = []byte{byte(bump)}
		addr, err := d.CreateProgramAddress(withBump...)
		if err == nil {
			return addr, uint8(bump), nil
		}
		if !errors.Is(err, ErrInvalidSeeds) {
			return types.ZeroAddress, 0, err
		}
	}
	return types.ZeroAddress, 0, ErrNoViableBump
}

// SignAs 通过重新推导证明对 want 地址的签名权，成功后返回带该地址的签名者集合
// 这是确定性地址进入 Signers 的唯一途径
func (d *Deriver) SignAs(signers types.Signers, want types.Address, bump uint8, seeds ...[]byte) (types.Signers, error) {
	withBump := make([][]byte, len(seeds)+1)
	copy(withBump, seeds)
	withBump[len(seeds)] = []byte{bump}
	got, err := d.CreateProgramAddress(withBump...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAuthorityDenied, err)
	}
	if got != want {
		return nil, fmt.Errorf("%w: derived %s, want %s", ErrAuthorityDenied, got, want)
	}
	return signers.With(want), nil
}

// IsOnCurve 把 32 字节当作压缩公钥的 x 坐标尝试解析
// 返回 false 的地址没有对应私钥，不能作为交易签名者
func IsOnCurve(addr types.Address) bool {
	var compressed [33]byte
	compressed[0] = 0x02
	copy(compressed[1:], addr[:])
	_, err := btcec.ParsePubKey(compressed[:])
	return err == nil
}
