package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/andresuchdata/joyeria/backend-go/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// respondError maps domain errors to HTTP statuses. Server errors are
// logged with the underlying cause and returned as a generic message.
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.FullPath()).Msg("Request failed")
		c.AbortWithStatusJSON(status, gin.H{"error": "internal server error"})
		return
	}

	log.Warn().Err(err).Str("path", c.FullPath()).Int("status", status).Msg("Request rejected")
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrAlreadyExists),
		errors.Is(err, domain.ErrInUse),
		errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrInsufficientStock):
		return http.StatusConflict
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// bindJSON decodes the request body into v. Malformed bodies are reported
// as validation errors.
func bindJSON(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			respondError(c, err)
			return false
		}
		respondError(c, domain.NewValidationError("body", "invalid JSON: %v", err))
		return false
	}
	return true
}

// pathID reads the :id route parameter. Every row is keyed by a uuid, so
// anything else cannot exist and is answered with 404.
func pathID(c *gin.Context) (string, bool) {
	raw := c.Param("id")
	id, err := uuid.Parse(raw)
	if err != nil {
		respondError(c, fmt.Errorf("%w: %s", domain.ErrNotFound, raw))
		return "", false
	}
	return id.String(), true
}

// checkID rejects an id field of a request that is not a uuid. Empty
// values pass so input validation can report them as required.
func checkID(field, raw string) error {
	if raw == "" {
		return nil
	}
	if _, err := uuid.Parse(raw); err != nil {
		return domain.NewValidationError(field, "must be a valid id")
	}
	return nil
}

func parsePositiveIntWithDefault(value string, fallback int) int {
	if v, err := strconv.Atoi(strings.TrimSpace(value)); err == nil && v > 0 {
		return v
	}
	return fallback
}

func parsePage(c *gin.Context) domain.Page {
	return domain.Page{
		Page:     parsePositiveIntWithDefault(c.Query("page"), 1),
		PageSize: parsePositiveIntWithDefault(c.Query("page_size"), 0),
	}
}

// parseDateRange reads from/to query parameters as YYYY-MM-DD or RFC3339.
// A date-only "to" includes that whole day.
func parseDateRange(c *gin.Context) (from, to *time.Time, err error) {
	if raw := strings.TrimSpace(c.Query("from")); raw != "" {
		t, _, perr := parseDate(raw)
		if perr != nil {
			return nil, nil, domain.NewValidationError("from", "expected YYYY-MM-DD or RFC3339, got %q", raw)
		}
		from = &t
	}
	if raw := strings.TrimSpace(c.Query("to")); raw != "" {
		t, dateOnly, perr := parseDate(raw)
		if perr != nil {
			return nil, nil, domain.NewValidationError("to", "expected YYYY-MM-DD or RFC3339, got %q", raw)
		}
		if dateOnly {
			t = t.AddDate(0, 0, 1)
		}
		to = &t
	}
	return from, to, nil
}

func parseDate(raw string) (time.Time, bool, error) {
	if t, err := time.Parse(domain.DateLayout, raw); err == nil {
		return t, true, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	return t, false, err
}

type listResponse struct {
	Items    any `json:"items"`
	Total    int `json:"total"`
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

func paged(items any, total int, page domain.Page, defaultSize int) listResponse {
	page = page.Normalize(defaultSize)
	return listResponse{Items: items, Total: total, Page: page.Page, PageSize: page.PageSize}
}
