package publisher

type PaymentEvent struct {
	PaymentID   string `json:"payment_id"`
	ServiceName string `json:"service_name"`
	Status      string `json:"status"`
	Amount      string `json:"amount"`
	Chain       string `json:"chain,omitempty"`
	TxHash      string `json:"tx_hash,omitempty"`
	Reason      string `json:"reason,omitempty"`
}
