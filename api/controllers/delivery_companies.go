package controllers

import (
	"net/http"

	"github.com/angelmondragon/dzorders-backend/api/responses"
	"github.com/angelmondragon/dzorders-backend/api/validators"
	companysvc "github.com/angelmondragon/dzorders-backend/internal/deliverycompanies"
	"github.com/angelmondragon/dzorders-backend/pkg/logger"
)

const maxURLLen = 2048

func ListDeliveryCompanies(svc companysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("delivery company"))
			return
		}
		activeOnly, err := validators.ParseQueryBool(r, "active_only", false)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var list []companysvc.CompanyDTO
		if activeOnly {
			list, err = svc.ListActive(r.Context())
		} else {
			list, err = svc.List(r.Context())
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func GetDeliveryCompany(svc companysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("delivery company"))
			return
		}
		id, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		company, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, company)
	}
}

type deliveryCompanyRequest struct {
	CompanyName   *string `json:"company_name,omitempty"`
	APIEndpoint   *string `json:"api_endpoint,omitempty"`
	APIKey        *string `json:"api_key,omitempty"`
	ContactPerson *string `json:"contact_person,omitempty"`
	ContactPhone  *string `json:"contact_phone,omitempty"`
	IsActive      *bool   `json:"is_active,omitempty"`
}

func CreateDeliveryCompany(svc companysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("delivery company"))
			return
		}
		var payload deliveryCompanyRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input := companysvc.CreateInput{
			APIEndpoint:   trimmedPtr(payload.APIEndpoint, maxURLLen),
			APIKey:        trimmedPtr(payload.APIKey, 0),
			ContactPerson: trimmedPtr(payload.ContactPerson, maxNameLen),
			ContactPhone:  trimmedPtr(payload.ContactPhone, maxPhoneLen),
			IsActive:      payload.IsActive,
		}
		if name := trimmedPtr(payload.CompanyName, maxNameLen); name != nil {
			input.CompanyName = *name
		}
		company, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessMessage(w, http.StatusCreated, "delivery company created", company)
	}
}

func UpdateDeliveryCompany(svc companysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("delivery company"))
			return
		}
		id, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload deliveryCompanyRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		company, err := svc.Update(r.Context(), id, companysvc.UpdateInput{
			CompanyName:   trimmedPtr(payload.CompanyName, maxNameLen),
			APIEndpoint:   trimmedPtr(payload.APIEndpoint, maxURLLen),
			APIKey:        trimmedPtr(payload.APIKey, 0),
			ContactPerson: trimmedPtr(payload.ContactPerson, maxNameLen),
			ContactPhone:  trimmedPtr(payload.ContactPhone, maxPhoneLen),
			IsActive:      payload.IsActive,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessMessage(w, http.StatusOK, "delivery company updated", company)
	}
}

func DeleteDeliveryCompany(svc companysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("delivery company"))
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
		responses.WriteSuccessMessage(w, http.StatusOK, "delivery company deleted", nil)
	}
}
