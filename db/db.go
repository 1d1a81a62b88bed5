package db

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"creatorvault/config"
	"creatorvault/logs"

	"github.com/dgraph-io/badger/v2"
	lru "github.com/hashicorp/golang-lru"
)

var (
	ErrClosed        = errors.New("database is not initialized or closed")
	ErrBatchTooLarge = errors.New("write batch exceeds max count per txn")
)

// Manager 封装 BadgerDB 的管理器
// 写入先进入 pending，ForceFlush 时在一个 badger 事务里整体提交
type Manager struct {
	Db  *badger.DB
	mu  sync.RWMutex
	cfg *config.Config

	pendingMu sync.Mutex
	pending   []WriteTask

	// 已落库记录的读缓存，只在 flush 成功后更新
	cache *lru.Cache
}

// NewManager 创建一个新的 DBManager 实例
func NewManager(path string) (*Manager, error) {
	cfg := config.DefaultConfig()
	cfg.Database.Path = path
	return NewManagerWithConfig(cfg)
}

// NewManagerWithConfig 创建 DBManager，可选注入整份 Config
func NewManagerWithConfig(cfg *config.Config) (*Manager, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	dbCfg := cfg.Database

	var opts badger.Options
	if dbCfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		// badger v2 不自动创建父目录，需要手动创建
		if err := os.MkdirAll(dbCfg.Path, 0755); err != nil {
			return nil, fmt.Errorf("failed to create db dir: %w", err)
		}
		opts = badger.DefaultOptions(dbCfg.Path)
		if dbCfg.ValueLogFileSize > 0 {
			opts.ValueLogFileSize = dbCfg.ValueLogFileSize
		}
	}
	opts = opts.WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	size := dbCfg.RecordCacheSize
	if size <= 0 {
		size = 1024
	}
	cache, err := lru.New(size)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create record cache: %w", err)
	}

	return &Manager{
		Db:    db,
		cfg:   cfg,
		cache: cache,
	}, nil
}

// Get 读取已落库的值；不存在时返回 (nil, nil)
func (manager *Manager) Get(key string) ([]byte, error) {
	if v, ok := manager.cache.Get(key); ok {
		return copyBytes(v.([]byte)), nil
	}

	manager.mu.RLock()
	db := manager.Db
	manager.mu.RUnlock()
	if db == nil {
		return nil, ErrClosed
	}

	var value []byte
	err := db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	manager.cache.Add(key, copyBytes(value))
	return value, nil
}

// Exists 判断 key 是否已落库
func (manager *Manager) Exists(key string) bool {
	v, err := manager.Get(key)
	return err == nil && v != nil
}

// Scan 前缀扫描已落库的键值对
func (manager *Manager) Scan(prefix string) (map[string][]byte, error) {
	manager.mu.RLock()
	db := manager.Db
	manager.mu.RUnlock()
	if db == nil {
		return nil, ErrClosed
	}

	result := make(map[string][]byte)
	err := db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		p := []byte(prefix)
		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			item := it.Item()
			k := item.KeyCopy(nil)
			v, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			result[string(k)] = v
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Close 丢弃未提交的写入并关闭数据库
func (manager *Manager) Close() {
	if n := manager.discard(); n > 0 {
		logs.Warn("[DB] closing with %d unflushed writes, discarding", n)
	}

	manager.mu.Lock()
	defer manager.mu.Unlock()
	if manager.Db == nil {
		return
	}
	if err := manager.Db.Close(); err != nil {
		logs.Error("[DB] close failed: %v", err)
	}
	manager.Db = nil
	manager.cache.Purge()
}

func copyBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
