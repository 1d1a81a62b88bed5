// keys/category.go
// Key 分类：用于 WriteOp.Category 和 DB 统计
package keys

import "strings"

const (
	CategoryRecord  = "record"
	CategoryIndex   = "index"
	CategoryReceipt = "receipt"
	CategoryMeta    = "meta"
)

// CategorizeKey 判断 key 属于哪类数据
// 只有后缀能解析成地址的 record_ key 才算记录
func CategorizeKey(key string) string {
	if _, ok := AddressFromRecordKey(key); ok {
		return CategoryRecord
	}
	rest := StripVersion(key)
	switch {
	case strings.HasPrefix(rest, "vault_voucher_"):
		return CategoryIndex
	case strings.HasPrefix(rest, "receipt_"):
		return CategoryReceipt
	default:
		return CategoryMeta
	}
}

// IsRecordKey 可变状态记录
func IsRecordKey(key string) bool {
	return CategorizeKey(key) == CategoryRecord
}
