package vm

func newReceipt(tx *AnyTx, kind string) *Receipt {
	return &Receipt{
		TxID:   tx.GetTxId(),
		Kind:   kind,
		Status: ReceiptSucceed,
	}
}

// failReceipt 把错误写进回执；协议错误同时带上编号
func failReceipt(rc *Receipt, err error) (*Receipt, error) {
	rc.Status = ReceiptFailed
	rc.Error = err.Error()
	if ve, ok := AsVaultError(err); ok {
		rc.ErrorCode = ve.Code
	}
	return rc, err
}
