package models

const (
	ResultSuccess = "SUCCESS"
	ResultError   = "ERROR"
)

// Envelope is the body shape shared by every endpoint.
type Envelope struct {
	ErrCode string `json:"errCode"`
	Reason  string `json:"reason"`
	Result  string `json:"result"`
	Data    any    `json:"data,omitempty"`
}
