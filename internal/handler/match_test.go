package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxviazov/volleyball-scoreboard/internal/handler"
	"github.com/maxviazov/volleyball-scoreboard/internal/match"
	"github.com/maxviazov/volleyball-scoreboard/internal/service"
	"github.com/maxviazov/volleyball-scoreboard/internal/session"
)

const testCookie = "scoreboard_session"

// fakeInvalid replicates aggregated validation error semantics.
type fakeInvalid struct{ fe []service.FieldError }

func (f *fakeInvalid) Error() string                { return service.ErrInvalidInput.Error() }
func (f *fakeInvalid) Unwrap() error                { return service.ErrInvalidInput }
func (f *fakeInvalid) Fields() []service.FieldError { return f.fe }

// stubScoreboard records the token it was called with and returns canned results.
type stubScoreboard struct {
	gotToken   string
	gotAction  [3]string
	gotConfig  service.ConfigureInput
	gotSession string

	configureToken string
	view           service.MatchView
	result         service.ActionResult
	snapshot       match.Snapshot
	err            error
}

func (s *stubScoreboard) ConfigureMatch(ctx context.Context, token string, in service.ConfigureInput) (string, error) {
	s.gotToken, s.gotConfig = token, in
	return s.configureToken, s.err
}
func (s *stubScoreboard) SetTeams(ctx context.Context, token, teamA, teamB string) (service.MatchView, error) {
	s.gotToken = token
	return s.view, s.err
}
func (s *stubScoreboard) SetRosters(ctx context.Context, token string, rosterA, rosterB []string) (service.MatchView, error) {
	s.gotToken = token
	return s.view, s.err
}
func (s *stubScoreboard) ApplyAction(ctx context.Context, token, team, player, action string) (service.ActionResult, error) {
	s.gotToken = token
	s.gotAction = [3]string{team, player, action}
	return s.result, s.err
}
func (s *stubScoreboard) CurrentMatch(ctx context.Context, token string) (service.MatchView, error) {
	s.gotToken = token
	return s.view, s.err
}
func (s *stubScoreboard) ResetSession(ctx context.Context, token string) error {
	s.gotToken = token
	return s.err
}
func (s *stubScoreboard) LiveSnapshot(ctx context.Context, sessionID string) (match.Snapshot, error) {
	s.gotSession = sessionID
	return s.snapshot, s.err
}

func newMatchRouter(sb service.ScoreboardService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler.Register(r, stubPinger{}, handler.Services{Scoreboard: sb}, handler.Options{
		CookieName: testCookie,
		CookieTTL:  time.Hour,
	})
	return r
}

func postJSON(t *testing.T, r *gin.Engine, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.AddCookie(&http.Cookie{Name: testCookie, Value: token})
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestMatchHandler_ConfigureSetsCookie(t *testing.T) {
	stub := &stubScoreboard{configureToken: "tok-1"}
	r := newMatchRouter(stub)

	sets, points := 5, 25
	w := postJSON(t, r, "/api/v1/match/configure", map[string]any{
		"match_type": "set", "sets_to_play": sets, "points_per_set": points,
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		SessionToken string `json:"session_token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "tok-1", resp.SessionToken)
	assert.Equal(t, "tok-1", w.Header().Get(handler.SessionHeader))

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, testCookie, cookies[0].Name)
	assert.Equal(t, "tok-1", cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)

	assert.Equal(t, "set", stub.gotConfig.MatchType)
	require.NotNil(t, stub.gotConfig.SetsToPlay)
	assert.Equal(t, 5, *stub.gotConfig.SetsToPlay)
	require.NotNil(t, stub.gotConfig.PointsPerSet)
	assert.Equal(t, 25, *stub.gotConfig.PointsPerSet)
}

func TestMatchHandler_ConfigureInvalid(t *testing.T) {
	stub := &stubScoreboard{err: &fakeInvalid{fe: []service.FieldError{{Field: "match_type", Message: "unknown"}}}}
	r := newMatchRouter(stub)

	w := postJSON(t, r, "/api/v1/match/configure", map[string]any{"match_type": "beach"}, "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "match_type")
	assert.Empty(t, w.Result().Cookies())
}

func TestMatchHandler_MalformedBody(t *testing.T) {
	r := newMatchRouter(&stubScoreboard{})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/match/teams", bytes.NewBufferString("{"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMatchHandler_TokenFromHeaderWinsOverCookie(t *testing.T) {
	stub := &stubScoreboard{view: service.MatchView{SessionID: "hdr"}}
	r := newMatchRouter(stub)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/match", nil)
	req.Header.Set(handler.SessionHeader, "hdr")
	req.AddCookie(&http.Cookie{Name: testCookie, Value: "cookie"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "hdr", stub.gotToken)
}

func TestMatchHandler_ActionPassesFieldsThrough(t *testing.T) {
	stub := &stubScoreboard{result: service.ActionResult{
		Outcome: match.Outcome{Concluded: true, Winner: "Hawks"},
		MatchID: 7,
	}}
	r := newMatchRouter(stub)

	w := postJSON(t, r, "/api/v1/match/actions", map[string]string{
		"team": "A", "player": "Ann", "action": "ace",
	}, "tok")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "tok", stub.gotToken)
	assert.Equal(t, [3]string{"A", "Ann", "ace"}, stub.gotAction)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Hawks", resp["winner"])
	assert.EqualValues(t, 7, resp["match_id"])
}

func TestMatchHandler_ErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"unknown session", session.ErrNotFound, http.StatusNotFound},
		{"wrong phase", match.ErrInvalidState, http.StatusConflict},
		{"unknown player", match.ErrUnknownPlayer, http.StatusBadRequest},
		{"bad action", match.ErrInvalidAction, http.StatusBadRequest},
		{"store down", service.ErrPersistence, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newMatchRouter(&stubScoreboard{err: tc.err})
			w := postJSON(t, r, "/api/v1/match/actions", map[string]string{
				"team": "A", "player": "Ann", "action": "ace",
			}, "tok")
			assert.Equal(t, tc.code, w.Code)
		})
	}
}

func TestMatchHandler_ResetClearsCookie(t *testing.T) {
	stub := &stubScoreboard{}
	r := newMatchRouter(stub)

	w := postJSON(t, r, "/api/v1/match/reset", map[string]string{}, "tok")
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "tok", stub.gotToken)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "", cookies[0].Value)
	assert.True(t, cookies[0].MaxAge < 0)
}

func TestMatchHandler_LiveMatch(t *testing.T) {
	stub := &stubScoreboard{snapshot: match.Snapshot{TeamA: "Hawks", TeamB: "Sharks", ScoreA: 3, Serving: "A"}}
	r := newMatchRouter(stub)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/live-match", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var snap map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	assert.Equal(t, "Hawks", snap["teamA"])
	assert.EqualValues(t, 3, snap["scoreA"])
	assert.Equal(t, "A", snap["serve"])
	assert.Equal(t, "", stub.gotSession)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/live-match?session_id=court-2", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "court-2", stub.gotSession)
}

func TestMatchHandler_LiveMatchNothingYet(t *testing.T) {
	r := newMatchRouter(&stubScoreboard{err: service.ErrNoLiveMatch})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/live-match", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
