package controllers

import (
	"strings"

	pkgerrors "github.com/angelmondragon/dzorders-backend/pkg/errors"
	"github.com/google/uuid"
)

const (
	maxNameLen  = 255
	maxSKULen   = 100
	maxNoteLen  = 2000
	maxPhoneLen = 32
)

func serviceUnavailable(name string) error {
	return pkgerrors.New(pkgerrors.CodeInternal, name+" service unavailable")
}

func parseUUIDField(field, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, field+" must be a uuid").
			WithDetails(map[string]any{"field": field})
	}
	return id, nil
}

// parseOptionalUUID keeps nil as nil and maps an empty string to uuid.Nil,
// which the services read as "clear the link".
func parseOptionalUUID(field string, raw *string) (*uuid.UUID, error) {
	if raw == nil {
		return nil, nil
	}
	if strings.TrimSpace(*raw) == "" {
		id := uuid.Nil
		return &id, nil
	}
	id, err := parseUUIDField(field, *raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func trimmedPtr(v *string, maxLen int) *string {
	if v == nil {
		return nil
	}
	s := strings.TrimSpace(*v)
	if maxLen > 0 {
		if runes := []rune(s); len(runes) > maxLen {
			s = string(runes[:maxLen])
		}
	}
	return &s
}
