package vm

import "creatorvault/types"

// ========== 核心接口定义 ==========

// StateView 状态视图接口
type StateView interface {
	//读/写/删某个 key 的状态；写入只写进这个视图，不直接落到底层 DB。
	Get(key string) ([]byte, bool, error)
	Set(key string, val []byte)
	Del(key string)
	//做一个快照点、必要时回滚到该点，实现预执行与失败回滚。
	Snapshot() int
	Revert(snap int) error
	//把这段预执行期间累积的写入集合（写集）导出来，给后续“真正落库”用。
	Diff() []WriteOp
	// 扫描指定前缀下的所有键值对（overlay 优先）
	Scan(prefix string) (map[string][]byte, error)
}

// TxHandler 交易处理器接口
type TxHandler interface {
	//标识这个 Handler 处理哪种交易类型（比如 "burn_and_redeem"）。
	Kind() string
	//在给定 StateView 上执行：先跑完全部校验，再写状态并调用转账服务。
	//返回 error 时 StateView 由执行器回滚，Receipt 记录失败原因。
	DryRun(tx *AnyTx, sv StateView) (*Receipt, error)
}

// DBManager 数据库管理器接口
type DBManager interface {
	EnqueueSet(key, value string)
	EnqueueDel(key string)
	ForceFlush() error
	Get(key string) ([]byte, error)
	// 前缀扫描，返回所有以 prefix 开头的键值对
	Scan(prefix string) (map[string][]byte, error)
}

// TransferGateway 外部转账服务：金库只通过它移动资产、铸造和销毁凭证
// 签名者集合显式传入；金库地址只能经 pda.Deriver.SignAs 进入集合
type TransferGateway interface {
	ID() types.Address
	AssociatedAccount(owner, mint types.Address) (types.Address, error)
	EnsureAssociatedAccount(st types.RecordStore, owner, mint types.Address) (types.Address, error)
	Account(st types.RecordStore, addr types.Address) (*types.TokenAccount, error)
	Mint(st types.RecordStore, addr types.Address) (*types.Mint, error)
	InitializeMint(st types.RecordStore, mint types.Address, decimals uint8, authority types.Address) error
	InitializeAccount(st types.RecordStore, account, mint, owner types.Address) error
	Transfer(st types.RecordStore, from, to types.Address, amount uint64, signers types.Signers) error
	MintTo(st types.RecordStore, mint, to types.Address, amount uint64, signers types.Signers) error
	Burn(st types.RecordStore, account, mint types.Address, amount uint64, signers types.Signers) error
	RevokeMintAuthority(st types.RecordStore, mint types.Address, signers types.Signers) error
}

// （读穿函数）
// 当 StateView.Get 本地 overlay 没命中时，定义“如何从底层存储读真实值”的函数签名
type ReadThroughFn func(key string) ([]byte, error)

// ScanFn 用于 StateView 从底层存储做前缀扫描
type ScanFn func(prefix string) (map[string][]byte, error)

// （交易类型提取函数）
// 给 AnyTx 提取“交易种类”，VM 用它路由到正确的 TxHandler
type KindFn func(tx *AnyTx) (string, error)
