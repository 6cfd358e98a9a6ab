package wallet

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/GlebRadaev/servicehub/internal/domain"
	"github.com/GlebRadaev/servicehub/internal/dto"
	"github.com/GlebRadaev/servicehub/internal/service/walletservice"
	"github.com/GlebRadaev/servicehub/pkg/utils"
)

//go:generate mockgen -source=wallet.go -destination=mock_wallet.go -package=wallet

type Service interface {
	GetWallet(ctx context.Context, userID string) (*domain.Wallet, error)
	Statement(ctx context.Context, userID string, limit int) (*walletservice.Statement, error)
}

type WalletHandler struct {
	walletService Service
}

func New(walletService Service) *WalletHandler {
	return &WalletHandler{
		walletService: walletService,
	}
}

// GetWallet godoc
//
//	@Summary		Get wallet balances
//	@Description	Returns the available and pending balance of a provider wallet.
//	@Tags			Wallets
//	@Produce		json
//	@Param			userID	path		string					true	"Wallet owner"
//	@Success		200		{object}	dto.WalletResponseDTO	"Wallet"
//	@Failure		404		{object}	utils.Response			"Wallet not found"
//	@Failure		500		{object}	utils.Response			"Internal server error"
//	@Router			/api/wallets/{userID} [get]
func (h *WalletHandler) GetWallet(w http.ResponseWriter, r *http.Request) {
	wallet, err := h.walletService.GetWallet(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewWalletResponseDTO(*wallet))
}

// GetTransactions godoc
//
//	@Summary		Get wallet statement
//	@Description	Returns the wallet with its latest transactions, newest first.
//	@Tags			Wallets
//	@Produce		json
//	@Param			userID	path		string						true	"Wallet owner"
//	@Param			limit	query		int							false	"Max transactions, 1..500"	default(50)
//	@Success		200		{object}	dto.StatementResponseDTO	"Statement"
//	@Failure		400		{object}	utils.Response				"Invalid limit"
//	@Failure		404		{object}	utils.Response				"Wallet not found"
//	@Failure		500		{object}	utils.Response				"Internal server error"
//	@Router			/api/wallets/{userID}/transactions [get]
func (h *WalletHandler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid limit")
		return
	}

	statement, err := h.walletService.Statement(r.Context(), chi.URLParam(r, "userID"), limit)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	response := dto.StatementResponseDTO{
		Wallet:       dto.NewWalletResponseDTO(statement.Wallet),
		Transactions: make([]dto.TransactionResponseDTO, len(statement.Transactions)),
	}
	for i, tx := range statement.Transactions {
		response.Transactions[i] = dto.NewTransactionResponseDTO(tx)
	}
	utils.RespondWithJSON(w, http.StatusOK, response)
}

func parseLimit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0, errors.New("invalid limit")
	}
	return limit, nil
}

func respondWithServiceError(w http.ResponseWriter, err error) {
	if errors.Is(err, walletservice.ErrWalletNotFound) {
		utils.RespondWithError(w, http.StatusNotFound, "Wallet not found")
		return
	}
	utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
}
