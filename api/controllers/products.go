package controllers

import (
	"net/http"

	"github.com/angelmondragon/dzorders-backend/api/responses"
	"github.com/angelmondragon/dzorders-backend/api/validators"
	productsvc "github.com/angelmondragon/dzorders-backend/internal/products"
	"github.com/angelmondragon/dzorders-backend/pkg/logger"
	"github.com/shopspring/decimal"
)

func ListProducts(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("product"))
			return
		}
		list, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func GetProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("product"))
			return
		}
		sku, err := validators.ParseStringParam(r, "sku", maxSKULen)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		product, err := svc.Get(r.Context(), sku)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

type createProductRequest struct {
	ProductName  string           `json:"product_name" validate:"required"`
	SKU          string           `json:"sku" validate:"required"`
	Description  *string          `json:"description,omitempty"`
	Price        *decimal.Decimal `json:"price" validate:"required"`
	CostPrice    *decimal.Decimal `json:"cost_price,omitempty"`
	CurrentStock int              `json:"current_stock" validate:"min=0"`
	InitialStock *int             `json:"initial_stock,omitempty" validate:"omitempty,min=0"`
}

func (p createProductRequest) toInput() productsvc.CreateInput {
	return productsvc.CreateInput{
		ProductName:  validators.SanitizeString(p.ProductName, maxNameLen),
		SKU:          validators.SanitizeString(p.SKU, maxSKULen),
		Description:  trimmedPtr(p.Description, maxNoteLen),
		Price:        *p.Price,
		CostPrice:    p.CostPrice,
		CurrentStock: p.CurrentStock,
		InitialStock: p.InitialStock,
	}
}

func CreateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("product"))
			return
		}
		var payload createProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		product, err := svc.Create(r.Context(), payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessMessage(w, http.StatusCreated, "product created", product)
	}
}

type updateProductRequest struct {
	ProductName  *string          `json:"product_name,omitempty"`
	Description  *string          `json:"description,omitempty"`
	Price        *decimal.Decimal `json:"price,omitempty"`
	CostPrice    *decimal.Decimal `json:"cost_price,omitempty"`
	InitialStock *int             `json:"initial_stock,omitempty" validate:"omitempty,min=0"`
}

func UpdateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("product"))
			return
		}
		sku, err := validators.ParseStringParam(r, "sku", maxSKULen)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload updateProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		product, err := svc.Update(r.Context(), sku, productsvc.UpdateInput{
			ProductName:  trimmedPtr(payload.ProductName, maxNameLen),
			Description:  trimmedPtr(payload.Description, maxNoteLen),
			Price:        payload.Price,
			CostPrice:    payload.CostPrice,
			InitialStock: payload.InitialStock,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessMessage(w, http.StatusOK, "product updated", product)
	}
}

type setStockRequest struct {
	CurrentStock *int `json:"current_stock" validate:"required,min=0"`
}

func SetProductStock(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("product"))
			return
		}
		sku, err := validators.ParseStringParam(r, "sku", maxSKULen)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload setStockRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		change, err := svc.SetStock(r.Context(), sku, *payload.CurrentStock)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessMessage(w, http.StatusOK, "stock updated", change)
	}
}

func DeleteProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("product"))
			return
		}
		sku, err := validators.ParseStringParam(r, "sku", maxSKULen)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), sku); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessMessage(w, http.StatusOK, "product deleted", nil)
	}
}
