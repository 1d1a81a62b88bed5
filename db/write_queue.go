package db

import (
	"fmt"

	"creatorvault/keys"
	"creatorvault/logs"

	"github.com/dgraph-io/badger/v2"
)

// WriteTask 一条待提交的写请求
type WriteTask struct {
	Key   []byte
	Value []byte // OpDelete 时为空
	Op    TaskOp
}

type TaskOp int

const (
	OpSet TaskOp = iota
	OpDelete
)

// EnqueueSet 投递写请求，ForceFlush 前不可见
func (manager *Manager) EnqueueSet(key, value string) {
	manager.pendingMu.Lock()
	defer manager.pendingMu.Unlock()
	manager.pending = append(manager.pending, WriteTask{Key: []byte(key), Value: []byte(value), Op: OpSet})
}

func (manager *Manager) EnqueueDelete(key string) {
	manager.pendingMu.Lock()
	defer manager.pendingMu.Unlock()
	manager.pending = append(manager.pending, WriteTask{Key: []byte(key), Op: OpDelete})
}

func (manager *Manager) EnqueueDel(key string) {
	manager.EnqueueDelete(key)
}

// discard 丢弃尚未提交的写请求，返回丢弃的条数
func (manager *Manager) discard() int {
	manager.pendingMu.Lock()
	defer manager.pendingMu.Unlock()
	n := len(manager.pending)
	manager.pending = nil
	return n
}

// ForceFlush 把 pending 在一个 badger 事务里整体提交：要么全部落库，要么全部不落
func (manager *Manager) ForceFlush() error {
	manager.pendingMu.Lock()
	batch := manager.pending
	manager.pending = nil
	manager.pendingMu.Unlock()

	if len(batch) == 0 {
		return nil
	}
	if err := manager.flushBatch(batch); err != nil {
		return err
	}

	for _, task := range batch {
		key := string(task.Key)
		if task.Op == OpDelete {
			manager.cache.Remove(key)
			continue
		}
		manager.cache.Add(key, copyBytes(task.Value))
	}
	return nil
}

func (manager *Manager) flushBatch(batch []WriteTask) error {
	if limit := manager.cfg.Database.MaxCountPerTxn; limit > 0 && len(batch) > limit {
		return fmt.Errorf("%w: %d > %d", ErrBatchTooLarge, len(batch), limit)
	}

	manager.mu.RLock()
	db := manager.Db
	manager.mu.RUnlock()
	if db == nil {
		return ErrClosed
	}

	records := 0
	err := db.Update(func(txn *badger.Txn) error {
		for _, task := range batch {
			var err error
			switch task.Op {
			case OpSet:
				err = txn.Set(task.Key, task.Value)
			case OpDelete:
				err = txn.Delete(task.Key)
			}
			if err != nil {
				return fmt.Errorf("key %s: %w", task.Key, err)
			}
			if keys.IsRecordKey(string(task.Key)) {
				records++
			}
		}
		return nil
	})
	if err != nil {
		logs.Error("[DB] flush of %d writes failed: %v", len(batch), err)
		return err
	}
	logs.Trace("[DB] flushed %d writes (%d records)", len(batch), records)
	return nil
}
