package vm

import "errors"

// ========== 错误定义 ==========

var (
	ErrNilTx                  = errors.New("nil transaction")
	ErrInvalidSnapshot        = errors.New("invalid snapshot index")
	ErrTxAlreadyApplied       = errors.New("transaction already applied")
	ErrMissingSignature       = errors.New("required signer missing")
	ErrDerivedSigner          = errors.New("derived address cannot sign a transaction")
	ErrAccountInUse           = errors.New("account address already in use")
	ErrUnknownTransferService = errors.New("transfer service not registered")
	ErrAccountNotInitialized  = errors.New("account not initialized")
	ErrReceiptNotFound        = errors.New("receipt not found")
)

const (
	ReceiptSucceed = "SUCCEED"
	ReceiptFailed  = "FAILED"
)

// ========== 基础类型定义 ==========

// “要怎么改状态”的清单
type WriteOp struct {
	Key      string // 完整的 key（包括命名空间前缀）
	Value    []byte // 序列化后的值
	Del      bool   // true表示删除操作
	Category string // 数据分类：record, index, receipt, meta，便于追踪和调试
}

// 记录执行结果
type Receipt struct {
	TxID       string   `json:"tx_id"`
	Kind       string   `json:"kind"`
	Status     string   `json:"status"` // "SUCCEED" or "FAILED"
	Error      string   `json:"error,omitempty"`
	ErrorCode  uint32   `json:"error_code,omitempty"` // VaultError 的编号，其他错误为 0
	Timestamp  int64    `json:"timestamp"`
	Logs       []string `json:"logs,omitempty"`
	WriteCount int      `json:"write_count"`
}

// Succeeded 是否执行成功
func (r *Receipt) Succeeded() bool {
	return r != nil && r.Status == ReceiptSucceed
}
