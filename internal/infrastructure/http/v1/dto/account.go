package dto

import (
	"saldo/internal/core/entity"
	"saldo/internal/core/types"
	"saldo/internal/domain/catalogs/account"
)

// --- Request DTOs ---

// CreateAccountRequest is the request body for creating an account.
type CreateAccountRequest struct {
	Code             string            `json:"code"`
	Name             string            `json:"name" binding:"required"`
	Kind             account.Kind      `json:"kind" binding:"required"`
	CreditLimit      *types.Money      `json:"creditLimit"`
	PaymentTermsDays int               `json:"paymentTermsDays"`
	ContactPerson    *string           `json:"contactPerson"`
	Phone            *string           `json:"phone"`
	Email            *string           `json:"email"`
	Comment          *string           `json:"comment"`
	ParentID         *string           `json:"parentId"`
	IsFolder         bool              `json:"isFolder"`
	Attributes       entity.Attributes `json:"attributes"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateAccountRequest) ToEntity() *account.Account {
	a := account.NewAccount(r.Code, r.Name, r.Kind)
	if r.CreditLimit != nil {
		a.CreditLimit = *r.CreditLimit
	} else {
		a.CreditLimit = types.Zero()
	}
	a.PaymentTermsDays = r.PaymentTermsDays
	a.ContactPerson = r.ContactPerson
	a.Phone = r.Phone
	a.Email = r.Email
	a.Comment = r.Comment
	a.ParentID = r.ParentID
	a.IsFolder = r.IsFolder
	a.Attributes = r.Attributes
	return a
}

// UpdateAccountRequest is the request body for updating an account.
type UpdateAccountRequest struct {
	Code             string            `json:"code"`
	Name             string            `json:"name" binding:"required"`
	Kind             account.Kind      `json:"kind" binding:"required"`
	CreditLimit      *types.Money      `json:"creditLimit"`
	PaymentTermsDays int               `json:"paymentTermsDays"`
	ContactPerson    *string           `json:"contactPerson"`
	Phone            *string           `json:"phone"`
	Email            *string           `json:"email"`
	Comment          *string           `json:"comment"`
	ParentID         *string           `json:"parentId"`
	IsFolder         bool              `json:"isFolder"`
	Attributes       entity.Attributes `json:"attributes"`
	Version          int               `json:"version" binding:"required"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdateAccountRequest) ApplyTo(a *account.Account) {
	a.Code = r.Code
	a.Name = r.Name
	a.Kind = r.Kind
	if r.CreditLimit != nil {
		a.CreditLimit = *r.CreditLimit
	}
	a.PaymentTermsDays = r.PaymentTermsDays
	a.ContactPerson = r.ContactPerson
	a.Phone = r.Phone
	a.Email = r.Email
	a.Comment = r.Comment
	a.ParentID = r.ParentID
	a.IsFolder = r.IsFolder
	a.Attributes = r.Attributes
	a.Version = r.Version
}

// --- Response DTOs ---

// AccountResponse is the response body for an account.
type AccountResponse struct {
	ID               string            `json:"id"`
	Code             string            `json:"code"`
	Name             string            `json:"name"`
	Kind             account.Kind      `json:"kind"`
	CreditLimit      types.Money       `json:"creditLimit"`
	PaymentTermsDays int               `json:"paymentTermsDays"`
	ContactPerson    *string           `json:"contactPerson,omitempty"`
	Phone            *string           `json:"phone,omitempty"`
	Email            *string           `json:"email,omitempty"`
	Comment          *string           `json:"comment,omitempty"`
	ParentID         *string           `json:"parentId,omitempty"`
	IsFolder         bool              `json:"isFolder"`
	DeletionMark     bool              `json:"deletionMark"`
	Version          int               `json:"version"`
	Attributes       entity.Attributes `json:"attributes,omitempty"`
}

// FromAccount creates response DTO from domain entity.
func FromAccount(a *account.Account) *AccountResponse {
	return &AccountResponse{
		ID:               a.ID.String(),
		Code:             a.Code,
		Name:             a.Name,
		Kind:             a.Kind,
		CreditLimit:      a.CreditLimit,
		PaymentTermsDays: a.PaymentTermsDays,
		ContactPerson:    a.ContactPerson,
		Phone:            a.Phone,
		Email:            a.Email,
		Comment:          a.Comment,
		ParentID:         a.ParentID,
		IsFolder:         a.IsFolder,
		DeletionMark:     a.DeletionMark,
		Version:          a.Version,
		Attributes:       a.Attributes,
	}
}
