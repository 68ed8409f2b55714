package handler

import (
	"encoding/hex"
	"strconv"

	"token-ledger/internal/adapter/http/dto"
	"token-ledger/internal/core/domain"
	"token-ledger/internal/core/ports"
	"token-ledger/pkg/apperror"
	"token-ledger/pkg/response"

	"github.com/gin-gonic/gin"
)

// LedgerHandler handles transfer and block query endpoints.
type LedgerHandler struct {
	ledgerSvc ports.LedgerService
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(ledgerSvc ports.LedgerService) *LedgerHandler {
	return &LedgerHandler{ledgerSvc: ledgerSvc}
}

// Transfer handles POST /api/v1/transfers.
func (h *LedgerHandler) Transfer(c *gin.Context) {
	var req dto.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	var memo []byte
	if req.Memo != "" {
		memo = []byte(req.Memo)
	}

	index, err := h.ledgerSvc.Transfer(c.Request.Context(), domain.TransferRequest{
		From:      domain.Account{Owner: req.FromOwner, Subaccount: req.FromSubaccount},
		To:        domain.Account{Owner: req.ToOwner, Subaccount: req.ToSubaccount},
		Amount:    req.Amount,
		Fee:       req.Fee,
		Memo:      memo,
		CreatedAt: req.CreatedAt,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.TransferResponse{BlockIndex: index})
}

// GetBalance handles GET /api/v1/accounts/:owner/balance.
func (h *LedgerHandler) GetBalance(c *gin.Context) {
	owner := c.Param("owner")
	subaccount := c.Query("subaccount")

	balance := h.ledgerSvc.BalanceOf(domain.Account{Owner: owner, Subaccount: subaccount})
	response.OK(c, dto.BalanceResponse{
		Owner:      owner,
		Subaccount: subaccount,
		Balance:    balance,
	})
}

// GetBlock handles GET /api/v1/blocks/:index.
func (h *LedgerHandler) GetBlock(c *gin.Context) {
	index, err := strconv.ParseUint(c.Param("index"), 10, 64)
	if err != nil {
		response.Error(c, apperror.Validation("block index must be a non-negative integer"))
		return
	}

	loc, err := h.ledgerSvc.BlockAt(c.Request.Context(), index)
	if err != nil {
		response.Error(c, err)
		return
	}
	if loc == nil {
		response.Error(c, apperror.ErrNotFound("block"))
		return
	}

	response.OK(c, toBlockResponse(index, loc))
}

// GetStats handles GET /api/v1/ledger/stats.
func (h *LedgerHandler) GetStats(c *gin.Context) {
	response.OK(c, h.ledgerSvc.Stats())
}

// toBlockResponse converts a block location to its DTO.
func toBlockResponse(index uint64, loc *ports.BlockLocation) dto.BlockResponse {
	resp := dto.BlockResponse{
		Index:    index,
		Archived: loc.Segment != nil,
	}
	if loc.Segment != nil {
		resp.Segment = &dto.SegmentResponse{
			Start:    loc.Segment.Start,
			End:      loc.Segment.End,
			Checksum: loc.Segment.ChecksumHex(),
		}
	}
	if loc.Block != nil {
		b := loc.Block
		hash := b.Hash()
		body := &dto.BlockBody{
			ParentHash: hex.EncodeToString(b.ParentHash[:]),
			Hash:       hex.EncodeToString(hash[:]),
			Operation:  string(b.Transfer.Operation),
			From:       b.Transfer.From.String(),
			To:         b.Transfer.To.String(),
			Amount:     b.Transfer.Amount,
			Fee:        b.Transfer.Fee,
			CreatedAt:  b.Transfer.CreatedAt,
		}
		if len(b.Transfer.Memo) > 0 {
			body.Memo = string(b.Transfer.Memo)
		}
		resp.Block = body
		ts := b.Timestamp
		resp.Timestamp = &ts
	}
	return resp
}
