package controllers

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/dzorders-backend/api/responses"
	"github.com/angelmondragon/dzorders-backend/api/validators"
	pricelistsvc "github.com/angelmondragon/dzorders-backend/internal/pricelists"
	"github.com/angelmondragon/dzorders-backend/pkg/logger"
	"github.com/shopspring/decimal"
)

func ListPriceLists(svc pricelistsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("price list"))
			return
		}
		var filters pricelistsvc.ListFilters
		if raw := strings.TrimSpace(r.URL.Query().Get("product_id")); raw != "" {
			id, err := parseUUIDField("product_id", raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			filters.ProductID = &id
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("delivery_company_id")); raw != "" {
			id, err := parseUUIDField("delivery_company_id", raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			filters.DeliveryCompanyID = &id
		}
		list, err := svc.List(r.Context(), filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func GetPriceList(svc pricelistsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("price list"))
			return
		}
		id, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

type createPriceListRequest struct {
	PriceListName     string           `json:"price_list_name" validate:"required"`
	ProductID         string           `json:"product_id" validate:"required"`
	DeliveryCompanyID string           `json:"delivery_company_id" validate:"required"`
	PricePerUnit      *decimal.Decimal `json:"price_per_unit" validate:"required"`
	Region            string           `json:"region,omitempty"`
	IsActive          *bool            `json:"is_active,omitempty"`
}

func CreatePriceList(svc pricelistsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("price list"))
			return
		}
		var payload createPriceListRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		productID, err := parseUUIDField("product_id", payload.ProductID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		companyID, err := parseUUIDField("delivery_company_id", payload.DeliveryCompanyID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, err := svc.Create(r.Context(), pricelistsvc.CreateInput{
			PriceListName:     validators.SanitizeString(payload.PriceListName, maxNameLen),
			ProductID:         productID,
			DeliveryCompanyID: companyID,
			PricePerUnit:      *payload.PricePerUnit,
			Region:            validators.SanitizeString(payload.Region, maxNameLen),
			IsActive:          payload.IsActive,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessMessage(w, http.StatusCreated, "price list created", list)
	}
}

type updatePriceListRequest struct {
	PriceListName *string          `json:"price_list_name,omitempty"`
	PricePerUnit  *decimal.Decimal `json:"price_per_unit,omitempty"`
	Region        *string          `json:"region,omitempty"`
	IsActive      *bool            `json:"is_active,omitempty"`
}

func UpdatePriceList(svc pricelistsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("price list"))
			return
		}
		id, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload updatePriceListRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, err := svc.Update(r.Context(), id, pricelistsvc.UpdateInput{
			PriceListName: trimmedPtr(payload.PriceListName, maxNameLen),
			PricePerUnit:  payload.PricePerUnit,
			Region:        trimmedPtr(payload.Region, maxNameLen),
			IsActive:      payload.IsActive,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessMessage(w, http.StatusOK, "price list updated", list)
	}
}

func DeletePriceList(svc pricelistsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("price list"))
			return
		}
		id, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessMessage(w, http.StatusOK, "price list deleted", nil)
	}
}

type calculatePriceRequest struct {
	ProductID         string `json:"product_id" validate:"required"`
	DeliveryCompanyID string `json:"delivery_company_id" validate:"required"`
	Quantity          int    `json:"quantity" validate:"required,min=1"`
	Region            string `json:"region,omitempty"`
}

func CalculateDeliveryPrice(svc pricelistsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("price list"))
			return
		}
		var payload calculatePriceRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		productID, err := parseUUIDField("product_id", payload.ProductID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		companyID, err := parseUUIDField("delivery_company_id", payload.DeliveryCompanyID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		quote, err := svc.Calculate(r.Context(), pricelistsvc.CalculateInput{
			ProductID:         productID,
			DeliveryCompanyID: companyID,
			Quantity:          payload.Quantity,
			Region:            validators.SanitizeString(payload.Region, maxNameLen),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, quote)
	}
}
