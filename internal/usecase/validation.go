package usecase

import (
	"fmt"
	"net/mail"
	"strings"

	"github.com/xavierca1/ligue-leads/internal/entity"
)

const (
	maxNameLen    = 200
	maxEmailLen   = 254
	maxShortLen   = 200
	maxMessageLen = 5000
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func ValidateCreateLeadInput(input CreateLeadInput) []ValidationError {
	var errors []ValidationError

	if strings.TrimSpace(input.Name) == "" {
		errors = append(errors, ValidationError{"name", "is required"})
	} else if len(input.Name) > maxNameLen {
		errors = append(errors, ValidationError{"name", fmt.Sprintf("must not exceed %d characters", maxNameLen)})
	}

	errors = append(errors, validateEmail(input.Email)...)

	if input.Source != "" && !entity.Source(input.Source).Valid() {
		errors = append(errors, ValidationError{"source", "must be one of " + joinSources()})
	}

	optional := []struct{ field, value string }{
		{"phone", input.Phone},
		{"company", input.Company},
		{"subject", input.Subject},
		{"platform", input.Platform},
		{"campaign", input.Campaign},
		{"adSet", input.AdSet},
		{"adName", input.AdName},
	}
	for _, o := range optional {
		if len(o.value) > maxShortLen {
			errors = append(errors, ValidationError{o.field, fmt.Sprintf("must not exceed %d characters", maxShortLen)})
		}
	}

	if len(input.Message) > maxMessageLen {
		errors = append(errors, ValidationError{"message", fmt.Sprintf("must not exceed %d characters", maxMessageLen)})
	}

	return errors
}

func validateEmail(email string) []ValidationError {
	email = strings.TrimSpace(email)
	if email == "" {
		return []ValidationError{{"email", "is required"}}
	}
	if len(email) > maxEmailLen {
		return []ValidationError{{"email", fmt.Sprintf("must not exceed %d characters", maxEmailLen)}}
	}
	if _, ok := normalizeEmail(email); !ok {
		return []ValidationError{{"email", "is invalid"}}
	}
	return nil
}

// normalizeEmail accepts a bare address only ("Jane <jane@x.com>" is rejected).
func normalizeEmail(email string) (string, bool) {
	email = strings.TrimSpace(email)
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Name != "" || addr.Address != email {
		return "", false
	}
	at := strings.LastIndex(addr.Address, "@")
	if at < 1 || !strings.Contains(addr.Address[at+1:], ".") {
		return "", false
	}
	return addr.Address, true
}

func joinSources() string {
	parts := make([]string, 0, 7)
	for _, s := range entity.Sources() {
		parts = append(parts, string(s))
	}
	return strings.Join(parts, ", ")
}

func joinStatuses() string {
	parts := make([]string, 0, 5)
	for _, s := range entity.Statuses() {
		parts = append(parts, string(s))
	}
	return strings.Join(parts, ", ")
}
