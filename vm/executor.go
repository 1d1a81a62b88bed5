package vm

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"creatorvault/keys"
	"creatorvault/logs"
	"creatorvault/pda"
	"creatorvault/stats"
	"creatorvault/types"
)

// Executor VM执行器
// 所有交易经 mu 串行执行；每笔交易在独立的 StateView 上运行，
// 成功时写集、回执和已执行标记在同一批次落库，失败时只落回执
type Executor struct {
	mu      sync.Mutex
	DB      DBManager
	Reg     *HandlerRegistry
	Program *Program
	KFn     KindFn
	ReadFn  ReadThroughFn
	ScanFn  ScanFn
	Now     func() time.Time
	Stats   *stats.Recorder
}

func NewExecutor(db DBManager, reg *HandlerRegistry, program *Program) *Executor {
	if reg == nil {
		reg = NewHandlerRegistry()
	}

	executor := &Executor{
		DB:      db,
		Reg:     reg,
		Program: program,
		KFn:     DefaultKindFn,
		Now:     time.Now,
		Stats:   stats.NewRecorder(256),
	}

	// 设置ReadFn
	executor.ReadFn = func(key string) ([]byte, error) {
		return db.Get(key)
	}

	// 设置ScanFn
	executor.ScanFn = func(prefix string) (map[string][]byte, error) {
		return db.Scan(prefix)
	}

	return executor
}

// ExecuteTx 执行并提交一笔交易
// 返回的 error 是交易本身的失败原因（可用 errors.Is 判断协议错误），或落库失败
func (x *Executor) ExecuteTx(tx *AnyTx) (*Receipt, error) {
	if tx == nil {
		return nil, ErrNilTx
	}
	x.mu.Lock()
	defer x.mu.Unlock()

	if x.isTxApplied(tx.TxID) {
		rc, err := x.getReceipt(tx.TxID)
		if err != nil {
			return nil, err
		}
		return rc, fmt.Errorf("%w: %s", ErrTxAlreadyApplied, tx.TxID)
	}

	start := time.Now()
	sv := NewStateView(x.ReadFn, x.ScanFn)
	rc, execErr := x.run(tx, sv)
	if rc == nil {
		return nil, execErr
	}
	x.Stats.Record(rc.Kind, execErr == nil, time.Since(start))

	var ws []WriteOp
	if execErr == nil {
		ws = sv.Diff()
	} else {
		logs.Verbose("[VM] tx %s (%s) FAILED: %v", tx.TxID, rc.Kind, execErr)
	}
	if err := x.commit(rc, ws); err != nil {
		return rc, fmt.Errorf("commit tx %s: %w", tx.TxID, err)
	}
	return rc, execErr
}

// Simulate 在当前已落库状态上预执行，不写数据库
func (x *Executor) Simulate(tx *AnyTx) (*Receipt, []WriteOp, error) {
	if tx == nil {
		return nil, nil, ErrNilTx
	}
	x.mu.Lock()
	defer x.mu.Unlock()

	sv := NewStateView(x.ReadFn, x.ScanFn)
	rc, err := x.run(tx, sv)
	if err != nil {
		return rc, nil, err
	}
	ws := sv.Diff()
	rc.WriteCount = len(ws)
	return rc, ws, nil
}

// ApplyGenesis 在协议之外写入初始状态（例如资产 mint 和已注资的账户）
// fn 返回错误时什么都不写
func (x *Executor) ApplyGenesis(fn func(sv StateView) error) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	sv := NewStateView(x.ReadFn, x.ScanFn)
	if err := fn(sv); err != nil {
		return fmt.Errorf("genesis: %w", err)
	}
	ws := sv.Diff()
	x.enqueue(ws)
	if err := x.DB.ForceFlush(); err != nil {
		return fmt.Errorf("genesis flush: %w", err)
	}
	logs.Info("[VM] genesis applied, %d writes", len(ws))
	return nil
}

func (x *Executor) run(tx *AnyTx, sv StateView) (*Receipt, error) {
	kind, err := x.KFn(tx)
	if err != nil {
		return failReceipt(newReceipt(tx, ""), err)
	}
	rc := newReceipt(tx, kind)
	if len(tx.Signers) == 0 {
		return failReceipt(rc, ErrMissingSignature)
	}
	// 确定性地址没有私钥，只能在执行中经 SignAs 获得签名权
	for _, s := range tx.Signers {
		if !pda.IsOnCurve(s) {
			return failReceipt(rc, fmt.Errorf("%w: %s", ErrDerivedSigner, s))
		}
	}
	h, ok := x.Reg.Get(kind)
	if !ok {
		return failReceipt(rc, fmt.Errorf("no handler for tx kind: %s", kind))
	}

	// 创建快照点，用于失败时回滚
	snapshot := sv.Snapshot()
	out, err := h.DryRun(tx, sv)
	if out != nil {
		rc = out
	}
	if err != nil {
		if rerr := sv.Revert(snapshot); rerr != nil {
			return nil, rerr
		}
		if rc.Status != ReceiptFailed {
			return failReceipt(rc, err)
		}
		return rc, err
	}
	return rc, nil
}

func (x *Executor) enqueue(ws []WriteOp) {
	for _, w := range ws {
		if w.Del {
			x.DB.EnqueueDel(w.Key)
		} else {
			x.DB.EnqueueSet(w.Key, string(w.Value))
		}
	}
}

// commit 写集、回执、已执行标记一次 flush
func (x *Executor) commit(rc *Receipt, ws []WriteOp) error {
	rc.WriteCount = len(ws)
	rc.Timestamp = x.Now().Unix()
	x.enqueue(ws)
	if rc.TxID != "" {
		data, err := json.Marshal(rc)
		if err != nil {
			return err
		}
		x.DB.EnqueueSet(keys.KeyReceipt(rc.TxID), string(data))
		x.DB.EnqueueSet(keys.KeyAppliedTx(rc.TxID), rc.Status)
	}
	return x.DB.ForceFlush()
}

func (x *Executor) isTxApplied(txID string) bool {
	if txID == "" {
		return false
	}
	status, err := x.DB.Get(keys.KeyAppliedTx(txID))
	if err != nil || status == nil {
		return false
	}
	return true
}

// GetTransactionStatus 获取交易状态
func (x *Executor) GetTransactionStatus(txID string) (string, error) {
	status, err := x.DB.Get(keys.KeyAppliedTx(txID))
	if err != nil {
		return "", err
	}
	if status == nil {
		return "PENDING", nil
	}
	return string(status), nil
}

// GetReceipt 读取已落库的回执，不存在返回 ErrReceiptNotFound
func (x *Executor) GetReceipt(txID string) (*Receipt, error) {
	return x.getReceipt(txID)
}

func (x *Executor) getReceipt(txID string) (*Receipt, error) {
	data, err := x.DB.Get(keys.KeyReceipt(txID))
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, fmt.Errorf("%w: %s", ErrReceiptNotFound, txID)
	}
	var rc Receipt
	if err := json.Unmarshal(data, &rc); err != nil {
		return nil, fmt.Errorf("decode receipt %s: %w", txID, err)
	}
	return &rc, nil
}

// View 基于已落库状态的只读视图
func (x *Executor) View() StateView {
	return NewStateView(x.ReadFn, x.ScanFn)
}

// Vault 读取金库记录
func (x *Executor) Vault(addr types.Address) (*types.CreatorVault, error) {
	return x.Program.LoadVault(x.View(), addr)
}

// VoucherRecord 读取凭证记录
func (x *Executor) VoucherRecord(addr types.Address) (*types.VoucherRecord, error) {
	return x.Program.LoadVoucherRecord(x.View(), addr)
}

// ListVouchers 列出金库下的所有凭证
func (x *Executor) ListVouchers(vault types.Address) ([]VoucherEntry, error) {
	return x.Program.ListVouchers(x.View(), vault)
}
