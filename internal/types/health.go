package types

// ConnectionStatus summarises a tenant's payment-provider integration health.
type ConnectionStatus string

const (
	ConnectionStatusOK      ConnectionStatus = "ok"
	ConnectionStatusWarning ConnectionStatus = "warning"
	ConnectionStatusError   ConnectionStatus = "error"
)

func (s ConnectionStatus) String() string {
	return string(s)
}

// Worst returns the more severe of the two statuses.
func (s ConnectionStatus) Worst(other ConnectionStatus) ConnectionStatus {
	rank := map[ConnectionStatus]int{
		ConnectionStatusOK:      0,
		ConnectionStatusWarning: 1,
		ConnectionStatusError:   2,
	}
	if rank[other] > rank[s] {
		return other
	}
	return s
}
