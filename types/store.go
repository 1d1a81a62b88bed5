package types

// RecordStore 按 key 读写记录的最小接口
// vm.StateView 满足它；转账服务只依赖这个接口
type RecordStore interface {
	Get(key string) ([]byte, bool, error)
	Set(key string, val []byte)
}
