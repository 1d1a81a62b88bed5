// keys/keys.go
// 统一的 Key 定义包，供 VM 和 DB 模块共同使用
package keys

import (
	"strings"

	"creatorvault/types"
)

// ===================== 版本控制 =====================
// 全局 Key 版本前缀（例如 "v1" → 产出 "v1_<key>"）
const KeyVersion = "v1"

// withVer 把版本号拼到最前面（保持下划线风格：v1_<...>）
func withVer(s string) string {
	if KeyVersion == "" {
		return s
	}
	return KeyVersion + "_" + s
}

// StripVersion 把带版本的键去掉版本前缀
func StripVersion(prefixed string) string {
	if KeyVersion == "" {
		return prefixed
	}
	return strings.TrimPrefix(prefixed, KeyVersion+"_")
}

// ===================== 记录（按地址寻址） =====================

// KeyRecord 任意持久记录：金库、凭证记录、mint、token 账户
// 所有记录都按确定性地址或账户地址存放，没有额外的查找表
// 例：v1_record_<base58>
func KeyRecord(addr types.Address) string {
	return withVer("record_" + addr.String())
}

// NameOfKeyRecord 记录前缀
func NameOfKeyRecord() string {
	return withVer("record_")
}

// AddressFromRecordKey 从记录 key 中还原地址
func AddressFromRecordKey(key string) (types.Address, bool) {
	p := NameOfKeyRecord()
	if !strings.HasPrefix(key, p) {
		return types.ZeroAddress, false
	}
	a, err := types.ParseAddress(strings.TrimPrefix(key, p))
	if err != nil {
		return types.ZeroAddress, false
	}
	return a, true
}

// ===================== 索引 =====================

// KeyVaultVoucher 金库下的凭证索引，值为凭证记录地址
// 例：v1_vault_voucher_<vault>_<voucherMint>
func KeyVaultVoucher(vault, voucherMint types.Address) string {
	return withVer("vault_voucher_" + vault.String() + "_" + voucherMint.String())
}

// NameOfKeyVaultVouchers 某金库全部凭证索引的前缀
func NameOfKeyVaultVouchers(vault types.Address) string {
	return withVer("vault_voucher_" + vault.String() + "_")
}

// ===================== 执行元数据 =====================

// KeyAppliedTx 交易已执行标记（幂等）
// 例：v1_vm_applied_tx_<txID>
func KeyAppliedTx(txID string) string {
	return withVer("vm_applied_tx_" + txID)
}

// KeyReceipt 交易回执
// 例：v1_receipt_<txID>
func KeyReceipt(txID string) string {
	return withVer("receipt_" + txID)
}
