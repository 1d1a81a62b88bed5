// config/config.go
package config

import (
	"errors"
	"fmt"
	"os"

	"creatorvault/types"

	"gopkg.in/yaml.v3"
)

// Config 主配置结构，进程启动时加载一次，之后只读
type Config struct {
	Program  ProgramConfig  `yaml:"program"`
	Database DatabaseConfig `yaml:"database"`
	Log      LogConfig      `yaml:"log"`
}

// ProgramConfig 程序身份与 seed 标签
type ProgramConfig struct {
	ProgramID                  string   `yaml:"program_id"`                    // 金库程序 ID（base58）
	TokenProgramID             string   `yaml:"token_program_id"`              // 默认转账服务
	ExtraTokenProgramIDs       []string `yaml:"extra_token_program_ids"`       // 其他可用的转账服务实现
	AssociatedAccountProgramID string   `yaml:"associated_account_program_id"` // 关联账户推导用的程序 ID

	VaultSeed       string `yaml:"vault_seed"`       // "creator_vault"
	VoucherSeed     string `yaml:"voucher_seed"`     // "voucher_record"
	VoucherDecimals uint8  `yaml:"voucher_decimals"` // 0
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	// BadgerDB配置
	Path             string `yaml:"path"`
	InMemory         bool   `yaml:"in_memory"`
	ValueLogFileSize int64  `yaml:"value_log_file_size"` // 64 << 20 (64MB)

	// 读缓存（记录 LRU）
	RecordCacheSize int `yaml:"record_cache_size"` // 4096
	// 单个 badger 事务最多写入条数，超过则拒绝提交以保持原子性
	MaxCountPerTxn int `yaml:"max_count_per_txn"` // 500
}

// LogConfig 日志配置
type LogConfig struct {
	Level string `yaml:"level"` // trace/debug/verbose/info/warn/error
}

// Programs 解析后的程序地址
type Programs struct {
	VaultProgram      types.Address
	TokenProgram      types.Address
	ExtraTokenProgram []types.Address
	AssociatedProgram types.Address
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		Program: ProgramConfig{
			ProgramID:                  "GzfCdcY959JzTZMp741SF79eX2YkkYdCv4ZjcwNj5imB",
			TokenProgramID:             "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA",
			AssociatedAccountProgramID: "ATokenGPvbdGVxr1b2hvZbsiqW5xWH25efTNsLJA8knL",
			VaultSeed:                  "creator_vault",
			VoucherSeed:                "voucher_record",
			VoucherDecimals:            0,
		},
		Database: DatabaseConfig{
			Path:             "./data",
			ValueLogFileSize: 64 << 20,
			RecordCacheSize:  4096,
			MaxCountPerTxn:   500,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load 读取 YAML 文件并覆盖到默认配置之上
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate 检查 seed 与程序 ID
func (c *Config) Validate() error {
	p := c.Program
	if p.VaultSeed == "" || p.VoucherSeed == "" {
		return errors.New("vault_seed and voucher_seed must be set")
	}
	if p.VaultSeed == p.VoucherSeed {
		return fmt.Errorf("vault_seed and voucher_seed must differ, both are %q", p.VaultSeed)
	}
	if len(p.VaultSeed) > types.AddressLength || len(p.VoucherSeed) > types.AddressLength {
		return errors.New("seed tags must be at most 32 bytes")
	}
	if _, err := c.Programs(); err != nil {
		return err
	}
	if c.Database.MaxCountPerTxn <= 0 {
		return errors.New("max_count_per_txn must be greater than 0")
	}
	return nil
}

// Programs 把配置里的 base58 字符串解析成地址
func (c *Config) Programs() (*Programs, error) {
	p := c.Program
	out := &Programs{}
	var err error
	if out.VaultProgram, err = types.ParseAddress(p.ProgramID); err != nil {
		return nil, fmt.Errorf("program_id: %w", err)
	}
	if out.TokenProgram, err = types.ParseAddress(p.TokenProgramID); err != nil {
		return nil, fmt.Errorf("token_program_id: %w", err)
	}
	if out.AssociatedProgram, err = types.ParseAddress(p.AssociatedAccountProgramID); err != nil {
		return nil, fmt.Errorf("associated_account_program_id: %w", err)
	}
	for i, s := range p.ExtraTokenProgramIDs {
		a, err := types.ParseAddress(s)
		if err != nil {
			return nil, fmt.Errorf("extra_token_program_ids[%d]: %w", i, err)
		}
		out.ExtraTokenProgram = append(out.ExtraTokenProgram, a)
	}
	return out, nil
}
