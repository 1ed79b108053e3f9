package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/maxviazov/volleyball-scoreboard/internal/service"
	"github.com/maxviazov/volleyball-scoreboard/pkg/response"
)

// MatchHandler exposes the scorer workflow and the public live view.
type MatchHandler struct {
	svc  service.ScoreboardService
	opts Options
}

func NewMatchHandler(svc service.ScoreboardService, opts Options) *MatchHandler {
	if opts.CookieName == "" {
		opts.CookieName = "scoreboard_session"
	}
	return &MatchHandler{svc: svc, opts: opts}
}

func (h *MatchHandler) Register(r *gin.RouterGroup) {
	g := r.Group("/match")
	{
		g.GET("", h.current)
		g.POST("/configure", h.configure)
		g.POST("/teams", h.setTeams)
		g.POST("/rosters", h.setRosters)
		g.POST("/actions", h.applyAction)
		g.POST("/reset", h.reset)
	}
	r.GET("/live-match", h.liveMatch)
}

type configureRequest struct {
	MatchType    string `json:"match_type"`
	SetsToPlay   *int   `json:"sets_to_play"`
	PointsPerSet *int   `json:"points_per_set"`
}

type configureResponse struct {
	SessionToken string `json:"session_token"`
}

type teamsRequest struct {
	TeamA string `json:"team_a"`
	TeamB string `json:"team_b"`
}

type rostersRequest struct {
	RosterA []string `json:"roster_a"`
	RosterB []string `json:"roster_b"`
}

type actionRequest struct {
	Team   string `json:"team"`
	Player string `json:"player"`
	Action string `json:"action"`
}

type actionResponse struct {
	Winner  string            `json:"winner,omitempty"`
	MatchID int64             `json:"match_id,omitempty"`
	SetWon  string            `json:"set_won_by,omitempty"`
	Match   service.MatchView `json:"match"`
}

// token reads the session token from the header first, then the cookie.
func (h *MatchHandler) token(c *gin.Context) string {
	if t := strings.TrimSpace(c.GetHeader(SessionHeader)); t != "" {
		return t
	}
	t, _ := c.Cookie(h.opts.CookieName)
	return t
}

func (h *MatchHandler) setCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.opts.CookieName, token, maxAge, "/", "", false, true)
}

func (h *MatchHandler) configure(c *gin.Context) {
	var req configureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.WriteError(c, service.ErrInvalidInput)
		return
	}
	token, err := h.svc.ConfigureMatch(c.Request.Context(), h.token(c), service.ConfigureInput{
		MatchType:    req.MatchType,
		SetsToPlay:   req.SetsToPlay,
		PointsPerSet: req.PointsPerSet,
	})
	if err != nil {
		response.WriteError(c, err)
		return
	}
	h.setCookie(c, token, int(h.opts.CookieTTL.Seconds()))
	c.Header(SessionHeader, token)
	response.WriteData(c, http.StatusCreated, configureResponse{SessionToken: token})
}

func (h *MatchHandler) setTeams(c *gin.Context) {
	var req teamsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.WriteError(c, service.ErrInvalidInput)
		return
	}
	view, err := h.svc.SetTeams(c.Request.Context(), h.token(c), req.TeamA, req.TeamB)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, view)
}

func (h *MatchHandler) setRosters(c *gin.Context) {
	var req rostersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.WriteError(c, service.ErrInvalidInput)
		return
	}
	view, err := h.svc.SetRosters(c.Request.Context(), h.token(c), req.RosterA, req.RosterB)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, view)
}

func (h *MatchHandler) applyAction(c *gin.Context) {
	var req actionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.WriteError(c, service.ErrInvalidInput)
		return
	}
	res, err := h.svc.ApplyAction(c.Request.Context(), h.token(c), req.Team, req.Player, req.Action)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, actionResponse{
		Winner:  res.Outcome.Winner,
		MatchID: res.MatchID,
		SetWon:  string(res.Outcome.SetWinner),
		Match:   res.Match,
	})
}

func (h *MatchHandler) current(c *gin.Context) {
	view, err := h.svc.CurrentMatch(c.Request.Context(), h.token(c))
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, view)
}

func (h *MatchHandler) reset(c *gin.Context) {
	if err := h.svc.ResetSession(c.Request.Context(), h.token(c)); err != nil {
		response.WriteError(c, err)
		return
	}
	h.setCookie(c, "", -1)
	c.Status(http.StatusNoContent)
}

func (h *MatchHandler) liveMatch(c *gin.Context) {
	snap, err := h.svc.LiveSnapshot(c.Request.Context(), c.Query("session_id"))
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, snap)
}
