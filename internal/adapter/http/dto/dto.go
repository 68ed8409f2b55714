package dto

import "time"

// TransferRequest is the request body for ledger transfers.
type TransferRequest struct {
	FromOwner      string     `json:"from_owner" binding:"required,max=100,safe_id"`
	FromSubaccount string     `json:"from_subaccount,omitempty" binding:"omitempty,max=100,safe_id"`
	ToOwner        string     `json:"to_owner" binding:"required,max=100,safe_id"`
	ToSubaccount   string     `json:"to_subaccount,omitempty" binding:"omitempty,max=100,safe_id"`
	Amount         uint64     `json:"amount" binding:"required,gt=0"`
	Fee            *uint64    `json:"fee,omitempty"`
	Memo           string     `json:"memo,omitempty" binding:"max=64"`
	CreatedAt      *time.Time `json:"created_at,omitempty"`
}

// TransferResponse is the response body for an admitted transfer.
type TransferResponse struct {
	BlockIndex uint64 `json:"block_index"`
}

// RetrieveRequest is the request body for withdrawals to the external
// network.
type RetrieveRequest struct {
	Address string  `json:"address" binding:"required,max=128"`
	Amount  uint64  `json:"amount" binding:"required,gt=0"`
	Fee     *uint64 `json:"fee,omitempty"`
}

// RetrieveResponse is the response body for an accepted withdrawal.
type RetrieveResponse struct {
	BlockIndex  uint64 `json:"block_index"`
	ExternalRef string `json:"external_ref"`
}

// UpdateBalanceRequest is the request body for a deposit scan.
type UpdateBalanceRequest struct {
	Subaccount string `json:"subaccount,omitempty" binding:"omitempty,max=100,safe_id"`
}

// UpdateBalanceResponse reports a deposit scan that minted new value.
type UpdateBalanceResponse struct {
	BlockIndex uint64 `json:"block_index"`
	Amount     uint64 `json:"amount"`
}

// AddressResponse carries an external deposit address.
type AddressResponse struct {
	Address string `json:"address"`
}

// DepositAccountResponse carries the ledger account credited for
// deposits to a subaccount.
type DepositAccountResponse struct {
	Owner      string `json:"owner"`
	Subaccount string `json:"subaccount,omitempty"`
}

// BalanceResponse is the response body for a balance query.
type BalanceResponse struct {
	Owner      string `json:"owner"`
	Subaccount string `json:"subaccount,omitempty"`
	Balance    uint64 `json:"balance"`
}

// BlockResponse is the response body for a block lookup. Either the
// block fields or the archive segment are populated.
type BlockResponse struct {
	Index     uint64           `json:"index"`
	Archived  bool             `json:"archived"`
	Block     *BlockBody       `json:"block,omitempty"`
	Segment   *SegmentResponse `json:"segment,omitempty"`
	Timestamp *time.Time       `json:"timestamp,omitempty"`
}

// BlockBody holds the decoded contents of a block.
type BlockBody struct {
	ParentHash string     `json:"parent_hash"`
	Hash       string     `json:"hash"`
	Operation  string     `json:"operation"`
	From       string     `json:"from"`
	To         string     `json:"to"`
	Amount     uint64     `json:"amount"`
	Fee        uint64     `json:"fee"`
	Memo       string     `json:"memo,omitempty"`
	CreatedAt  *time.Time `json:"created_at,omitempty"`
}

// SegmentResponse describes an archived block range.
type SegmentResponse struct {
	Start    uint64 `json:"start"`
	End      uint64 `json:"end"`
	Checksum string `json:"checksum"`
}
