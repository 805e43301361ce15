package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"saldo/internal/domain"
	"saldo/internal/domain/catalogs/account"
	"saldo/internal/infrastructure/http/v1/dto"
)

// AccountHandler handles HTTP requests for the account catalog.
// Embeds the generic catalog handler for CRUD and adds kind-scoped listings.
type AccountHandler struct {
	*CatalogHandler[*account.Account, dto.CreateAccountRequest, dto.UpdateAccountRequest]
	service *account.Service
}

// NewAccountHandler creates a new account handler.
func NewAccountHandler(base *BaseHandler, service *account.Service) *AccountHandler {
	return &AccountHandler{
		CatalogHandler: NewCatalogHandler(base, CatalogHandlerConfig[*account.Account, dto.CreateAccountRequest, dto.UpdateAccountRequest]{
			Service:    service.CatalogService,
			EntityName: "account",
			MapCreateDTO: func(req dto.CreateAccountRequest) *account.Account {
				return req.ToEntity()
			},
			MapUpdateDTO: func(req dto.UpdateAccountRequest, existing *account.Account) *account.Account {
				req.ApplyTo(existing)
				return existing
			},
			MapToDTO: func(a *account.Account) any {
				return dto.FromAccount(a)
			},
		}),
		service: service,
	}
}

// ListCustomers handles GET /accounts/customers
func (h *AccountHandler) ListCustomers(c *gin.Context) {
	h.listByKind(c, h.service.ListCustomers)
}

// ListSuppliers handles GET /accounts/suppliers
func (h *AccountHandler) ListSuppliers(c *gin.Context) {
	h.listByKind(c, h.service.ListSuppliers)
}

func (h *AccountHandler) listByKind(
	c *gin.Context,
	list func(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*account.Account], error),
) {
	ctx := c.Request.Context()

	filter := domain.DefaultListFilter()
	filter.Search = c.Query("search")
	filter.Limit = h.ParseIntQuery(c, "limit", 50)
	filter.Offset = h.ParseIntQuery(c, "offset", 0)
	filter.OrderBy = c.DefaultQuery("orderBy", "name")

	result, err := list(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]any, len(result.Items))
	for i, item := range result.Items {
		items[i] = dto.FromAccount(item)
	}

	c.JSON(http.StatusOK, dto.ListResponse{
		Items:      items,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}
