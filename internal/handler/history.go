package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/maxviazov/volleyball-scoreboard/internal/repository"
	"github.com/maxviazov/volleyball-scoreboard/internal/service"
	"github.com/maxviazov/volleyball-scoreboard/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// HistoryHandler serves stored matches, careers and scorecards.
type HistoryHandler struct {
	history    service.HistoryService
	scorecards service.ScorecardService
}

func NewHistoryHandler(history service.HistoryService, scorecards service.ScorecardService) *HistoryHandler {
	return &HistoryHandler{history: history, scorecards: scorecards}
}

func (h *HistoryHandler) Register(r *gin.RouterGroup) {
	g := r.Group("/history")
	{
		g.GET("", h.list)
		g.GET("/:match_id", h.getMatch)
	}
	r.GET("/leaderboard", h.leaderboard)
	r.GET("/players/:name", h.playerProfile)
	r.GET("/scorecards/:match_id", h.scorecard)
}

// queryInt reads an optional integer query parameter; absent means zero.
func queryInt(c *gin.Context, name string) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, service.InvalidField(name, "must be an integer")
	}
	return v, nil
}

func matchIDParam(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("match_id"), 10, 64)
	if err != nil {
		return 0, service.InvalidField("match_id", "must be a numeric id")
	}
	return id, nil
}

func (h *HistoryHandler) list(c *gin.Context) {
	limit, err := queryInt(c, "limit")
	if err != nil {
		response.WriteError(c, err)
		return
	}
	offset, err := queryInt(c, "offset")
	if err != nil {
		response.WriteError(c, err)
		return
	}
	res, err := h.history.GetHistory(c.Request.Context(), repository.Page{Limit: limit, Offset: offset})
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, res)
}

func (h *HistoryHandler) getMatch(c *gin.Context) {
	id, err := matchIDParam(c)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	d, err := h.history.GetMatch(c.Request.Context(), id)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, d)
}

func (h *HistoryHandler) leaderboard(c *gin.Context) {
	limit, err := queryInt(c, "limit")
	if err != nil {
		response.WriteError(c, err)
		return
	}
	entries, err := h.history.GetLeaderboard(c.Request.Context(), limit)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, entries)
}

func (h *HistoryHandler) playerProfile(c *gin.Context) {
	p, err := h.history.GetPlayerProfile(c.Request.Context(), c.Param("name"))
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, p)
}

func (h *HistoryHandler) scorecard(c *gin.Context) {
	id, err := matchIDParam(c)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	ctx := c.Request.Context()

	switch c.DefaultQuery("format", "text") {
	case "xlsx":
		data, err := h.scorecards.Workbook(ctx, id)
		if err != nil {
			response.WriteError(c, err)
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="scorecard_%d.xlsx"`, id))
		c.Data(http.StatusOK, xlsxContentType, data)
	case "text":
		text, err := h.scorecards.Text(ctx, id)
		if err != nil {
			response.WriteError(c, err)
			return
		}
		c.String(http.StatusOK, text)
	default:
		response.WriteError(c, service.ErrInvalidInput)
	}
}
