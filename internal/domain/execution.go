package domain

// EVMTransaction is an unsigned EVM call descriptor the caller's wallet
// signs and broadcasts. Numeric fields stay as decimal/hex strings exactly
// as the upstream produced them.
type EVMTransaction struct {
	To       string `json:"to"`
	Data     string `json:"data"`
	Value    string `json:"value"`
	Gas      string `json:"gas"`
	GasPrice string `json:"gasPrice,omitempty"`
}

// FeeTransfer is a separate protocol-fee transfer the caller's wallet must
// also submit alongside the swap transaction.
type FeeTransfer struct {
	To    string `json:"to"`
	Value uint64 `json:"value"`
}

// BitcoinDeposit instructs the caller to fund a cross-chain swap manually:
// send AmountAfterFee to DepositAddress with Memo attached.
type BitcoinDeposit struct {
	DepositAddress string `json:"depositAddress"`
	Memo           string `json:"memo"`
	Amount         uint64 `json:"amount"`
	ToAsset        string `json:"toAsset"`
	FeeDestination string `json:"feeDestination"`
}

// Execution is the chain-appropriate signable artifact produced by the
// execution builder. Exactly one of SerializedTx, SwapTx, or Deposit is set
// depending on Network.
type Execution struct {
	Network        NetworkClass
	Fee            uint64
	AmountAfterFee uint64

	// Solana: base64 serialized unsigned transaction.
	SerializedTx string

	// EVM: swap call plus a separate fee transfer.
	SwapTx      *EVMTransaction
	FeeTransfer *FeeTransfer

	// Bitcoin: manual deposit instruction.
	Deposit *BitcoinDeposit
}
