package dto

import (
	"saldo/internal/core/types"
)

// BalanceResponse represents an account balance.
type BalanceResponse struct {
	AccountID string      `json:"accountId"`
	Balance   types.Money `json:"balance"`
}

// EntryHistoryResponse represents a page of ledger entries.
type EntryHistoryResponse struct {
	AccountID string                 `json:"accountId"`
	Entries   []*LedgerEntryResponse `json:"entries"`
}
