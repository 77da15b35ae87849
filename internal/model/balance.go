package model

// Balance is the stock aggregate for a site/equipment/date-range filter.
type Balance struct {
	OpeningBalance int64 `json:"opening_balance"`
	Purchases      int64 `json:"purchases"`
	TransferIn     int64 `json:"transfer_in"`
	TransferOut    int64 `json:"transfer_out"`
	NetMovement    int64 `json:"net_movement"`
	ClosingBalance int64 `json:"closing_balance"`
	Assigned       int64 `json:"assigned"`
	Expended       int64 `json:"expended"`
}
