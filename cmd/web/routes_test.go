package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/AdamBeresnev/trivia-tournament/internal/bracket"
	"github.com/AdamBeresnev/trivia-tournament/internal/config"
	"github.com/AdamBeresnev/trivia-tournament/internal/db"
	"github.com/AdamBeresnev/trivia-tournament/internal/httputil"
	"github.com/AdamBeresnev/trivia-tournament/internal/metrics"
	"github.com/AdamBeresnev/trivia-tournament/internal/notify"
	"github.com/AdamBeresnev/trivia-tournament/internal/service"
	"github.com/AdamBeresnev/trivia-tournament/internal/store"
	"github.com/alexedwards/scs/v2"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testClient struct {
	t      *testing.T
	app    *application
	server *httptest.Server
	client *http.Client
}

func newTestServer(t *testing.T) *testClient {
	t.Helper()

	database := db.InitDB("file::memory:")
	t.Cleanup(func() { database.Close() })
	require.NoError(t, db.RunMigrations(database.DB))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &config.Config{CORSAllowedOrigins: []string{"http://localhost:3000"}}
	hub := notify.NewHub(logger, cfg.CORSAllowedOrigins)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	tournamentStore := store.NewTournamentStore(database)
	hostStore := store.NewHostStore(database)
	deps := service.Deps{Notifier: hub, Metrics: metrics.New(), Logger: logger}

	app := &application{
		cfg:            cfg,
		sessionManager: scs.New(),
		hostStore:      hostStore,
		tournaments:    service.NewTournamentService(database, tournamentStore, deps),
		matches:        service.NewMatchService(database, tournamentStore, deps),
		hosts:          service.NewHostService(hostStore),
		hub:            hub,
		metrics:        deps.Metrics,
	}

	server := httptest.NewServer(app.routes())
	t.Cleanup(server.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &testClient{t: t, app: app, server: server, client: &http.Client{Jar: jar}}
}

func (c *testClient) do(method, path string, body any) *http.Response {
	c.t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequest(method, c.server.URL+path, reader)
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	require.NoError(c.t, err)
	c.t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestRoutes_RequireHost(t *testing.T) {
	c := newTestServer(t)

	resp := c.do(http.MethodPost, "/tournaments", map[string]any{"name": "Quiz Night", "format": "single_elimination"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRoutes_TournamentFlow(t *testing.T) {
	c := newTestServer(t)

	resp := c.do(http.MethodPost, "/auth/guest", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = c.do(http.MethodPost, "/tournaments", map[string]any{"name": "Quiz Night", "format": "single_elimination"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	tournament := decode[bracket.Tournament](t, resp)
	assert.Equal(t, bracket.TournamentDraft, tournament.Status)
	base := "/tournaments/" + tournament.ID.String()

	resp = c.do(http.MethodPost, base+"/participants", map[string]any{"team_ref": "Too Early"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "REGISTRATION_CLOSED", decode[httputil.ErrorBody](t, resp).Code)

	resp = c.do(http.MethodPost, base+"/open", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	for _, team := range []string{"Alpha", "Bravo", "Charlie", "Delta"} {
		resp = c.do(http.MethodPost, base+"/participants", map[string]any{"team_ref": team})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	resp = c.do(http.MethodPost, base+"/start", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, bracket.TournamentInProgress, decode[bracket.Tournament](t, resp).Status)

	resp = c.do(http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data := decode[service.TournamentData](t, resp)
	require.Len(t, data.Matches, 3)
	require.NotNil(t, data.NextMatchID)
	matchPath := "/matches/" + data.NextMatchID.String()

	resp = c.do(http.MethodPost, matchPath+"/result", map[string]any{"team_1_score": 4, "team_2_score": 4})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "DRAW_NOT_ALLOWED", decode[httputil.ErrorBody](t, resp).Code)

	resp = c.do(http.MethodPost, matchPath+"/result", map[string]any{"team_1_score": 4})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = c.do(http.MethodPost, matchPath+"/result", map[string]any{"team_1_score": 9, "team_2_score": 4})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	result := decode[bracket.Result](t, resp)
	assert.NotEqual(t, result.WinnerID, result.LoserID)

	resp = c.do(http.MethodGet, matchPath, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	match := decode[service.MatchData](t, resp)
	assert.Equal(t, bracket.MatchCompleted, match.Match.Status)
	assert.Equal(t, bracket.Assigned(result.WinnerID), winnerSlot(match))

	resp = c.do(http.MethodGet, base+"/standings", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]bracket.StandingEntry](t, resp), 4)

	resp = c.do(http.MethodGet, base+"/layout", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	geometry := decode[bracket.Geometry](t, resp)
	assert.Len(t, geometry.Matches, 3)
	assert.Len(t, geometry.Connectors, 2)

	resp = c.do(http.MethodGet, base+"/bracket", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	page, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(page), "<svg")
	assert.Contains(t, string(page), "Final")

	resp = c.do(http.MethodGet, base+"/standings.xlsx", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "standings-"+tournament.ID.String()+".xlsx")
	workbook, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(workbook, []byte("PK")), "xlsx is a zip archive")

	resp = c.do(http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]bracket.Tournament](t, resp), 1)
}

func winnerSlot(data service.MatchData) bracket.Slot {
	if data.Match.IsWinner(1) {
		return data.Match.Slot1
	}
	return data.Match.Slot2
}

func TestRoutes_ErrorMapping(t *testing.T) {
	c := newTestServer(t)

	resp := c.do(http.MethodGet, "/tournaments/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = c.do(http.MethodGet, "/tournaments/00000000-0000-0000-0000-00000000abcd", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "TOURNAMENT_NOT_FOUND", decode[httputil.ErrorBody](t, resp).Code)

	resp = c.do(http.MethodGet, "/matches/00000000-0000-0000-0000-00000000abcd", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = c.do(http.MethodPost, "/auth/guest", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = c.do(http.MethodPost, "/tournaments", map[string]any{"name": "League", "format": "round_robin"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	tournament := decode[bracket.Tournament](t, resp)

	resp = c.do(http.MethodGet, "/tournaments/"+tournament.ID.String()+"/layout", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "LAYOUT_UNAVAILABLE", decode[httputil.ErrorBody](t, resp).Code)

	resp = c.do(http.MethodPost, "/tournaments/"+tournament.ID.String()+"/start", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = c.do(http.MethodPost, "/tournaments", map[string]any{"name": "", "format": "swiss"})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "INVALID_CONFIG", decode[httputil.ErrorBody](t, resp).Code)

	resp = c.do(http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "go_goroutines")
}

func TestRoutes_LiveUpdates(t *testing.T) {
	c := newTestServer(t)
	wsURL := "ws" + strings.TrimPrefix(c.server.URL, "http")

	_, resp, err := websocket.DefaultDialer.Dial(wsURL+"/tournaments/00000000-0000-0000-0000-00000000abcd/live", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = c.do(http.MethodPost, "/auth/guest", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp = c.do(http.MethodPost, "/tournaments", map[string]any{"name": "Quiz Night", "format": "single_elimination"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	tournament := decode[bracket.Tournament](t, resp)

	conn, resp, err := websocket.DefaultDialer.Dial(wsURL+"/tournaments/"+tournament.ID.String()+"/live", nil)
	require.NoError(t, err)
	defer conn.Close()
	assert.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)

	require.Eventually(t, func() bool {
		return c.app.hub.Viewers(tournament.ID) == 1
	}, time.Second, 10*time.Millisecond)

	resp = c.do(http.MethodPost, "/tournaments/"+tournament.ID.String()+"/open", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var event notify.Event
	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, notify.TypeTournamentUpdated, event.Type)
	assert.Equal(t, tournament.ID, event.TournamentID)
	assert.Equal(t, "status_registration_open", event.Reason)
}
