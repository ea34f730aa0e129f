package apihandlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"admatch/internal/app"
	"admatch/internal/services"
)

type APIHandler struct {
	App *app.App
}

func NewAPIHandler(a *app.App) *APIHandler {
	return &APIHandler{App: a}
}

func (h *APIHandler) HealthHandler(c *gin.Context) {
	g := h.App.MatchService.Graph()
	c.JSON(http.StatusOK, gin.H{
		"status":        "ok",
		"instance":      h.App.InstanceID,
		"graph_version": g.Version(),
		"snapshot_id":   g.SnapshotID(),
		"inventory":     h.App.MatchService.HasInventory(),
	})
}

func (h *APIHandler) ListCategoriesHandler(c *gin.Context) {
	c.JSON(http.StatusOK, h.App.MatchService.ListCategories())
}

// ScoreInterestHandler handles GET /score?interest=&category=.
func (h *APIHandler) ScoreInterestHandler(c *gin.Context) {
	interest, category := c.Query("interest"), c.Query("category")
	if strings.TrimSpace(category) == "" {
		BadRequest(c, "query parameter 'category' is required")
		return
	}
	c.JSON(http.StatusOK, h.App.MatchService.ScoreInterest(interest, category))
}

// ScoreAdHandler handles POST /score.
func (h *APIHandler) ScoreAdHandler(c *gin.Context) {
	var req ScoreAdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Category) == "" {
		BadRequest(c, "missing required field: category")
		return
	}
	result, err := h.App.MatchService.ScoreAd(req.Ad, req.Category)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *APIHandler) RankHandler(c *gin.Context) {
	var req RankRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Category) == "" {
		BadRequest(c, "missing required field: category")
		return
	}
	limit, err := h.resolveLimit(req.Limit)
	if err != nil {
		BadRequest(c, err.Error())
		return
	}

	outcome := h.App.MatchService.Rank(req.Category, req.Ads, services.RankOptions{
		Limit:       limit,
		ExcludeZero: req.ExcludeZero,
	})
	c.JSON(http.StatusOK, outcome)
}

// ScoreStoredAdHandler handles GET /ads/:id/score?category=.
func (h *APIHandler) ScoreStoredAdHandler(c *gin.Context) {
	category := c.Query("category")
	if strings.TrimSpace(category) == "" {
		BadRequest(c, "query parameter 'category' is required")
		return
	}
	outcome, err := h.App.MatchService.ScoreStoredAd(c.Request.Context(), c.Param("id"), category)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, outcome)
}

// ContentAdsHandler handles GET /content/:id/ads.
func (h *APIHandler) ContentAdsHandler(c *gin.Context) {
	var requested *int
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			BadRequest(c, "Invalid limit: "+raw)
			return
		}
		requested = &n
	}
	limit, err := h.resolveLimit(requested)
	if err != nil {
		BadRequest(c, err.Error())
		return
	}
	excludeZero := false
	if raw := c.Query("exclude_zero"); raw != "" {
		if excludeZero, err = strconv.ParseBool(raw); err != nil {
			BadRequest(c, "Invalid exclude_zero: "+raw)
			return
		}
	}

	outcome, err := h.App.MatchService.RankForContent(c.Request.Context(), c.Param("id"), services.RankOptions{
		Limit:       limit,
		ExcludeZero: excludeZero,
	})
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, outcome)
}

func (h *APIHandler) CoverageHandler(c *gin.Context) {
	var req CoverageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	if len(req.Interests) == 0 {
		BadRequest(c, "missing required field: interests")
		return
	}
	outcome, err := h.App.MatchService.ValidateInterests(c.Request.Context(), req.Interests, req.AvailableCategories)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, outcome)
}

func (h *APIHandler) resolveLimit(requested *int) (int, error) {
	cfg := h.App.Config.Ranking
	if requested == nil {
		return cfg.DefaultLimit, nil
	}
	n := *requested
	if n <= 0 {
		return 0, fmt.Errorf("limit must be positive, got %d", n)
	}
	if n > cfg.MaxLimit {
		return 0, fmt.Errorf("limit %d exceeds the maximum of %d", n, cfg.MaxLimit)
	}
	return n, nil
}
