package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxviazov/volleyball-scoreboard/internal/handler"
	"github.com/maxviazov/volleyball-scoreboard/internal/model"
	"github.com/maxviazov/volleyball-scoreboard/internal/repository"
	"github.com/maxviazov/volleyball-scoreboard/internal/service"
)

type stubHistory struct {
	gotPage  repository.Page
	gotID    int64
	gotLimit int
	gotName  string

	page    repository.PageResult[model.MatchRecord]
	detail  model.MatchDetail
	board   []model.LeaderboardEntry
	profile model.PlayerProfile
	err     error
}

func (s *stubHistory) GetHistory(ctx context.Context, page repository.Page) (repository.PageResult[model.MatchRecord], error) {
	s.gotPage = page
	return s.page, s.err
}
func (s *stubHistory) GetMatch(ctx context.Context, id int64) (model.MatchDetail, error) {
	s.gotID = id
	return s.detail, s.err
}
func (s *stubHistory) GetLeaderboard(ctx context.Context, limit int) ([]model.LeaderboardEntry, error) {
	s.gotLimit = limit
	return s.board, s.err
}
func (s *stubHistory) GetPlayerProfile(ctx context.Context, name string) (model.PlayerProfile, error) {
	s.gotName = name
	return s.profile, s.err
}

type stubScorecards struct {
	text string
	xlsx []byte
	err  error
}

func (s *stubScorecards) Text(ctx context.Context, matchID int64) (string, error) { return s.text, s.err }
func (s *stubScorecards) Workbook(ctx context.Context, matchID int64) ([]byte, error) {
	return s.xlsx, s.err
}

func newHistoryRouter(h service.HistoryService, sc service.ScorecardService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler.Register(r, stubPinger{}, handler.Services{History: h, Scorecards: sc}, handler.Options{})
	return r
}

func get(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestHistoryHandler_ListPassesPage(t *testing.T) {
	stub := &stubHistory{page: repository.PageResult[model.MatchRecord]{
		Items: []model.MatchRecord{{ID: 2, TeamA: "Hawks", TeamB: "Sharks", Winner: "Hawks"}},
		Total: 1,
	}}
	r := newHistoryRouter(stub, nil)

	w := get(r, "/api/v1/history?limit=10&offset=20")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, repository.Page{Limit: 10, Offset: 20}, stub.gotPage)

	var resp struct {
		Items []model.MatchRecord `json:"items"`
		Total int                 `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "Hawks", resp.Items[0].Winner)
	assert.Equal(t, 1, resp.Total)
}

func TestHistoryHandler_GetMatchNotFound(t *testing.T) {
	stub := &stubHistory{err: repository.ErrNotFound}
	r := newHistoryRouter(stub, nil)

	w := get(r, "/api/v1/history/42")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, int64(42), stub.gotID)
}

func TestHistoryHandler_Leaderboard(t *testing.T) {
	stub := &stubHistory{board: []model.LeaderboardEntry{{Name: "Ann", Points: 12, MVPCount: 2}}}
	r := newHistoryRouter(stub, nil)

	w := get(r, "/api/v1/leaderboard?limit=5")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 5, stub.gotLimit)
	assert.Contains(t, w.Body.String(), `"mvp_count":2`)
}

func TestHistoryHandler_PlayerProfile(t *testing.T) {
	stub := &stubHistory{profile: model.PlayerProfile{Career: model.PlayerCareer{Name: "Ann"}}}
	r := newHistoryRouter(stub, nil)

	w := get(r, "/api/v1/players/Ann")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Ann", stub.gotName)
}

func TestHistoryHandler_ScorecardFormats(t *testing.T) {
	sc := &stubScorecards{text: "Match #1: Hawks vs Sharks\n", xlsx: []byte("PK\x03\x04")}
	r := newHistoryRouter(&stubHistory{}, sc)

	w := get(r, "/api/v1/scorecards/1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")
	assert.Equal(t, sc.text, w.Body.String())

	w = get(r, "/api/v1/scorecards/1?format=xlsx")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "scorecard_1.xlsx")
	assert.Equal(t, sc.xlsx, w.Body.Bytes())

	w = get(r, "/api/v1/scorecards/1?format=pdf")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHistoryHandler_MalformedParams(t *testing.T) {
	stub := &stubHistory{}
	r := newHistoryRouter(stub, &stubScorecards{})

	for _, tc := range []struct {
		path  string
		field string
	}{
		{"/api/v1/history/abc", "match_id"},
		{"/api/v1/scorecards/1x?format=xlsx", "match_id"},
		{"/api/v1/history?limit=ten", "limit"},
		{"/api/v1/history?offset=-x", "offset"},
		{"/api/v1/leaderboard?limit=many", "limit"},
	} {
		w := get(r, tc.path)
		require.Equal(t, http.StatusBadRequest, w.Code, tc.path)

		var body struct {
			Error       string               `json:"error"`
			FieldErrors []service.FieldError `json:"field_errors"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "invalid_input", body.Error)
		require.Len(t, body.FieldErrors, 1, tc.path)
		assert.Equal(t, tc.field, body.FieldErrors[0].Field)
	}
	assert.Zero(t, stub.gotID, "service is not called with a malformed id")
}
