package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tow/internal/domain"
	"tow/internal/service"
)

// WalletHandler handles HTTP requests for driver wallets.
type WalletHandler struct {
	walletService *service.WalletService
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(walletService *service.WalletService) *WalletHandler {
	return &WalletHandler{walletService: walletService}
}

// RechargeRequest is the HTTP request body for topping up a wallet.
type RechargeRequest struct {
	Amount int64  `json:"amount"`
	Method string `json:"method"`
}

// TransactionResponse is the HTTP representation of a ledger entry.
type TransactionResponse struct {
	TransactionID string `json:"transaction_id"`
	DriverID      string `json:"driver_id"`
	Type          string `json:"type"`
	Amount        int64  `json:"amount"`
	Description   string `json:"description"`
	CreatedAt     string `json:"created_at"`
}

// WalletResponse is the HTTP representation of a wallet snapshot.
type WalletResponse struct {
	DriverID     string                `json:"driver_id"`
	Balance      int64                 `json:"balance"`
	Transactions []TransactionResponse `json:"transactions"`
}

func transactionResponse(tx domain.Transaction) TransactionResponse {
	return TransactionResponse{
		TransactionID: tx.ID,
		DriverID:      tx.DriverID,
		Type:          string(tx.Type),
		Amount:        tx.Amount,
		Description:   tx.Description,
		CreatedAt:     tx.CreatedAt.Format(timeLayout),
	}
}

func walletResponse(wallet *domain.Wallet) WalletResponse {
	resp := WalletResponse{
		DriverID:     wallet.DriverID,
		Balance:      wallet.Balance,
		Transactions: make([]TransactionResponse, 0, len(wallet.Transactions)),
	}
	for _, tx := range wallet.Transactions {
		resp.Transactions = append(resp.Transactions, transactionResponse(tx))
	}
	return resp
}

// Summary handles GET /v1/drivers/:id/wallet
func (h *WalletHandler) Summary(c *gin.Context) {
	wallet, err := h.walletService.Summary(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, walletResponse(wallet))
}

// Recharge handles POST /v1/drivers/:id/wallet/recharge
func (h *WalletHandler) Recharge(c *gin.Context) {
	var req RechargeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	wallet, err := h.walletService.Recharge(c.Request.Context(), c.Param("id"), req.Amount, req.Method)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, walletResponse(wallet))
}
