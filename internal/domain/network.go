package domain

// NetworkClass represents the settlement network family a trade belongs to.
// It is derived once from the shape of the asset identifiers and never
// changes for the lifetime of a request.
type NetworkClass string

const (
	NetworkSolana  NetworkClass = "SOL"
	NetworkEVM     NetworkClass = "EVM"
	NetworkBitcoin NetworkClass = "BTC"
)

// String returns the string representation of NetworkClass.
func (n NetworkClass) String() string {
	return string(n)
}

// IsValid checks if the network class is a known value.
func (n NetworkClass) IsValid() bool {
	return n == NetworkSolana || n == NetworkEVM || n == NetworkBitcoin
}
