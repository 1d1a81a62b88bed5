package vm

// RegisterDefaultHandlers 注册金库的三种交易处理器
func RegisterDefaultHandlers(reg *HandlerRegistry, p *Program) error {
	handlers := []TxHandler{
		&InitializeVaultTxHandler{Program: p},       // 开金库
		&DepositAndMintVoucherTxHandler{Program: p}, // 存款并铸凭证
		&BurnAndRedeemTxHandler{Program: p},         // 销毁凭证并赎回
	}

	for _, h := range handlers {
		if err := reg.Register(h); err != nil {
			return err
		}
	}
	return nil
}
