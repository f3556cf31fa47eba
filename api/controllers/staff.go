package controllers

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/dzorders-backend/api/responses"
	"github.com/angelmondragon/dzorders-backend/api/validators"
	staffsvc "github.com/angelmondragon/dzorders-backend/internal/staff"
	"github.com/angelmondragon/dzorders-backend/pkg/logger"
)

func ListStaff(svc staffsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("staff"))
			return
		}
		var filters staffsvc.ListFilters
		if role := strings.TrimSpace(r.URL.Query().Get("role")); role != "" {
			filters.Role = &role
		}
		if r.URL.Query().Has("is_active") {
			active, err := validators.ParseQueryBool(r, "is_active", true)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			filters.IsActive = &active
		}
		list, err := svc.List(r.Context(), filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func GetStaff(svc staffsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("staff"))
			return
		}
		id, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		member, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, member)
	}
}

type createStaffRequest struct {
	StaffName    string  `json:"staff_name" validate:"required,notblank"`
	Role         *string `json:"role,omitempty"`
	ContactPhone *string `json:"contact_phone,omitempty" validate:"omitempty,phone"`
	IsActive     *bool   `json:"is_active,omitempty"`
}

func CreateStaff(svc staffsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("staff"))
			return
		}
		var payload createStaffRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		member, err := svc.Create(r.Context(), staffsvc.CreateInput{
			StaffName:    validators.SanitizeString(payload.StaffName, maxNameLen),
			Role:         trimmedPtr(payload.Role, maxNameLen),
			ContactPhone: trimmedPtr(payload.ContactPhone, maxPhoneLen),
			IsActive:     payload.IsActive,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessMessage(w, http.StatusCreated, "staff member created", member)
	}
}

type updateStaffRequest struct {
	StaffName    *string `json:"staff_name,omitempty"`
	Role         *string `json:"role,omitempty"`
	ContactPhone *string `json:"contact_phone,omitempty" validate:"omitempty,phone"`
	IsActive     *bool   `json:"is_active,omitempty"`
}

func UpdateStaff(svc staffsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("staff"))
			return
		}
		id, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload updateStaffRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		member, err := svc.Update(r.Context(), id, staffsvc.UpdateInput{
			StaffName:    trimmedPtr(payload.StaffName, maxNameLen),
			Role:         trimmedPtr(payload.Role, maxNameLen),
			ContactPhone: trimmedPtr(payload.ContactPhone, maxPhoneLen),
			IsActive:     payload.IsActive,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessMessage(w, http.StatusOK, "staff member updated", member)
	}
}

func DeleteStaff(svc staffsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("staff"))
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
		responses.WriteSuccessMessage(w, http.StatusOK, "staff member deleted", nil)
	}
}

func StaffOrders(svc staffsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("staff"))
			return
		}
		id, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		out, err := svc.Orders(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, out)
	}
}
