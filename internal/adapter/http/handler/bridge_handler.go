package handler

import (
	"errors"

	"token-ledger/internal/adapter/http/dto"
	"token-ledger/internal/core/domain"
	"token-ledger/internal/core/ports"
	"token-ledger/pkg/apperror"
	"token-ledger/pkg/response"

	"github.com/gin-gonic/gin"
)

// BridgeHandler handles deposit and withdrawal endpoints.
type BridgeHandler struct {
	bridgeSvc ports.BridgeService
}

// NewBridgeHandler creates a new BridgeHandler.
func NewBridgeHandler(bridgeSvc ports.BridgeService) *BridgeHandler {
	return &BridgeHandler{bridgeSvc: bridgeSvc}
}

// GetAddress handles GET /api/v1/address.
func (h *BridgeHandler) GetAddress(c *gin.Context) {
	addr, err := h.bridgeSvc.GetAddress(c.Query("subaccount"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.AddressResponse{Address: addr})
}

// GetDepositAccount handles GET /api/v1/deposit-account.
func (h *BridgeHandler) GetDepositAccount(c *gin.Context) {
	acct := h.bridgeSvc.GetDepositAccount(c.Query("subaccount"))
	response.OK(c, dto.DepositAccountResponse{
		Owner:      acct.Owner,
		Subaccount: acct.Subaccount,
	})
}

// UpdateBalance handles POST /api/v1/balances/update.
func (h *BridgeHandler) UpdateBalance(c *gin.Context) {
	var req dto.UpdateBalanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	result, err := h.bridgeSvc.UpdateBalance(c.Request.Context(), req.Subaccount)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.UpdateBalanceResponse{
		BlockIndex: result.BlockIndex,
		Amount:     result.Amount,
	})
}

// Retrieve handles POST /api/v1/retrievals.
func (h *BridgeHandler) Retrieve(c *gin.Context) {
	var req dto.RetrieveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	result, err := h.bridgeSvc.Retrieve(c.Request.Context(), req.Address, req.Amount, req.Fee)
	if err != nil {
		// A result alongside the error means the burn committed before the
		// external submission failed; its block index must reach the caller
		// as the reconciliation hint.
		var ext domain.ErrExternalConnection
		if result != nil && errors.As(err, &ext) {
			response.Error(c, apperror.ErrSubmissionFailed(result.BlockIndex, ext.Code, ext.Message))
			return
		}
		response.Error(c, err)
		return
	}

	response.Created(c, dto.RetrieveResponse{
		BlockIndex:  result.BlockIndex,
		ExternalRef: result.ExternalRef,
	})
}
