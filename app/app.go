// app/app.go
package app

import (
	"fmt"

	"creatorvault/config"
	"creatorvault/db"
	"creatorvault/logs"
	"creatorvault/token"
	"creatorvault/types"
	"creatorvault/vm"
)

// Container 依赖注入容器
// 按配置一次性组装：数据库、转账服务、金库程序、执行器
type Container struct {
	Config   *config.Config
	DB       *db.Manager
	Tokens   []*token.Program
	Program  *vm.Program
	Registry *vm.HandlerRegistry
	Executor *vm.Executor
}

// NewContainer 创建新的依赖容器
func NewContainer(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	level, err := logs.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	logs.SetLevel(level)

	progs, err := cfg.Programs()
	if err != nil {
		return nil, err
	}
	tokens := []*token.Program{token.NewProgram(progs.TokenProgram, progs.AssociatedProgram)}
	for _, id := range progs.ExtraTokenProgram {
		tokens = append(tokens, token.NewProgram(id, progs.AssociatedProgram))
	}
	gateways := make([]vm.TransferGateway, 0, len(tokens))
	for _, t := range tokens {
		gateways = append(gateways, t)
	}

	program, err := vm.NewProgram(cfg, gateways...)
	if err != nil {
		return nil, err
	}
	reg := vm.NewHandlerRegistry()
	if err := vm.RegisterDefaultHandlers(reg, program); err != nil {
		return nil, err
	}

	mgr, err := db.NewManagerWithConfig(cfg)
	if err != nil {
		return nil, err
	}

	c := &Container{
		Config:   cfg,
		DB:       mgr,
		Tokens:   tokens,
		Program:  program,
		Registry: reg,
		Executor: vm.NewExecutor(mgr, reg, program),
	}
	logs.Info("[App] vault program %s ready, %d transfer service(s), db=%s",
		program.ID(), len(tokens), dbLocation(cfg))
	return c, nil
}

// NewContainerFromFile 读取 YAML 配置后组装
func NewContainerFromFile(path string) (*Container, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	return NewContainer(cfg)
}

// TokenProgram 按程序 ID 找转账服务
func (c *Container) TokenProgram(id types.Address) (*token.Program, bool) {
	for _, t := range c.Tokens {
		if t.ID() == id {
			return t, true
		}
	}
	return nil, false
}

// Close 关闭数据库
func (c *Container) Close() {
	if c.DB != nil {
		c.DB.Close()
	}
}

func dbLocation(cfg *config.Config) string {
	if cfg.Database.InMemory {
		return "memory"
	}
	return cfg.Database.Path
}
