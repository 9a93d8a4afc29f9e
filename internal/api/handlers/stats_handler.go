package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/andresuchdata/joyeria/backend-go/internal/domain"
	"github.com/gin-gonic/gin"
)

type StatsService interface {
	Dashboard(ctx context.Context) (*domain.Dashboard, error)
	Statistics(ctx context.Context, filter domain.StatsFilter) (*domain.Statistics, error)
}

type AuditService interface {
	List(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditEntry, error)
}

type StatsHandler struct {
	stats StatsService
	audit AuditService
}

func NewStatsHandler(stats StatsService, audit AuditService) *StatsHandler {
	return &StatsHandler{stats: stats, audit: audit}
}

func (h *StatsHandler) Dashboard(c *gin.Context) {
	dashboard, err := h.stats.Dashboard(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

func (h *StatsHandler) Summary(c *gin.Context) {
	from, to, err := parseDateRange(c)
	if err != nil {
		respondError(c, err)
		return
	}
	stats, err := h.stats.Statistics(c.Request.Context(), domain.StatsFilter{From: from, To: to})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// Audit lists audit entries. entity_type may repeat or hold a comma
// separated list.
func (h *StatsHandler) Audit(c *gin.Context) {
	from, to, err := parseDateRange(c)
	if err != nil {
		respondError(c, err)
		return
	}

	var types []string
	for _, raw := range c.QueryArray("entity_type") {
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				types = append(types, t)
			}
		}
	}

	entries, err := h.audit.List(c.Request.Context(), domain.AuditFilter{
		EntityTypes: types,
		From:        from,
		To:          to,
		Limit:       parsePositiveIntWithDefault(c.Query("limit"), 0),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}
