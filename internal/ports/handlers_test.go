package ports_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/solhaug/tribescore/internal/adapters/cache"
	"github.com/solhaug/tribescore/internal/adapters/sessionrepository"
	"github.com/solhaug/tribescore/internal/adapters/triberepository"
	"github.com/solhaug/tribescore/internal/app"
	"github.com/solhaug/tribescore/internal/domain"
	"github.com/solhaug/tribescore/internal/domaintest"
	"github.com/solhaug/tribescore/internal/ports"
	"github.com/stretchr/testify/require"
)

func noopMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return next
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testOrigins(t *testing.T) *ports.DomainSuffixes {
	t.Helper()

	origins, err := ports.NewDomainSuffixes("example.com")
	require.NoError(t, err)
	return origins
}

func TestRecordSessionHandler(t *testing.T) {
	t.Parallel()

	makeBody := func(t *testing.T, tribeID string, profileIDs ...string) string {
		t.Helper()

		players := make([]map[string]any, 0, len(profileIDs))
		for i, profileID := range profileIDs {
			players = append(players, map[string]any{
				"profileId": profileID,
				"placement": i + 1,
				"winner":    i == 0,
			})
		}
		body, err := json.Marshal(map[string]any{
			"tribeId":    tribeID,
			"gameId":     domaintest.NewUUID(t),
			"gameName":   "Everdell",
			"gameWeight": 2.8,
			"gameLength": 80,
			"playedAt":   "2024-11-02T19:00:00Z",
			"players":    players,
		})
		require.NoError(t, err)
		return string(body)
	}

	t.Run("records a session", func(t *testing.T) {
		t.Parallel()

		repo := sessionrepository.NewStubSessionRepository()
		handler := ports.MakeRecordSessionHandler(
			app.BuildRecordSession(repo),
			testOrigins(t),
			testLogger(),
			noopMiddleware,
		)

		tribeID := domaintest.NewUUID(t)
		body := makeBody(t, tribeID, domaintest.NewUUID(t), domaintest.NewUUID(t))

		r := httptest.NewRequest("POST", "/v1/sessions", strings.NewReader(body))
		w := httptest.NewRecorder()
		handler(w, r)

		require.Equal(t, http.StatusCreated, w.Code)

		var response struct {
			SessionID string `json:"sessionId"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		require.NotEmpty(t, response.SessionID)

		rows, err := repo.GetTribeRows(context.Background(), tribeID)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		require.Equal(t, response.SessionID, rows[0].SessionID)
	})

	t.Run("invalid json", func(t *testing.T) {
		t.Parallel()

		handler := ports.MakeRecordSessionHandler(
			app.BuildRecordSession(sessionrepository.NewStubSessionRepository()),
			testOrigins(t),
			testLogger(),
			noopMiddleware,
		)

		r := httptest.NewRequest("POST", "/v1/sessions", strings.NewReader("{not json"))
		w := httptest.NewRecorder()
		handler(w, r)

		require.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("invalid tribe id", func(t *testing.T) {
		t.Parallel()

		handler := ports.MakeRecordSessionHandler(
			app.BuildRecordSession(sessionrepository.NewStubSessionRepository()),
			testOrigins(t),
			testLogger(),
			noopMiddleware,
		)

		body := makeBody(t, "not-a-uuid", domaintest.NewUUID(t))

		r := httptest.NewRequest("POST", "/v1/sessions", strings.NewReader(body))
		w := httptest.NewRecorder()
		handler(w, r)

		require.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("session with no players", func(t *testing.T) {
		t.Parallel()

		handler := ports.MakeRecordSessionHandler(
			app.BuildRecordSession(sessionrepository.NewStubSessionRepository()),
			testOrigins(t),
			testLogger(),
			noopMiddleware,
		)

		body := makeBody(t, domaintest.NewUUID(t))

		r := httptest.NewRequest("POST", "/v1/sessions", strings.NewReader(body))
		w := httptest.NewRecorder()
		handler(w, r)

		require.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestGetTribeLeaderboardHandler(t *testing.T) {
	t.Parallel()

	makeHandler := func(t *testing.T, tribeRepo *triberepository.StubTribeRepository, sessionRepo *sessionrepository.StubSessionRepository) http.HandlerFunc {
		t.Helper()

		return ports.MakeGetTribeLeaderboardHandler(
			app.BuildGetTribeLeaderboard(cache.NewBasicCache[[]domain.TribeMember](), tribeRepo, sessionRepo),
			testOrigins(t),
			testLogger(),
			noopMiddleware,
		)
	}

	t.Run("returns ranked members", func(t *testing.T) {
		t.Parallel()

		tribeID := domaintest.NewUUID(t)
		alice := domaintest.NewUUID(t)
		bob := domaintest.NewUUID(t)

		tribeRepo := triberepository.NewStubTribeRepository()
		tribeRepo.AddTribe(tribeID, []domain.TribeMember{
			{ProfileID: alice, DisplayName: "Alice"},
			{ProfileID: bob, DisplayName: "Bob"},
		})

		sessionRepo := sessionrepository.NewStubSessionRepository()
		sessionID := domaintest.NewUUID(t)
		playedAt := time.Date(2024, time.August, 1, 19, 0, 0, 0, time.UTC)
		require.NoError(t, sessionRepo.StoreSession(context.Background(), []domain.SessionLogRow{
			domaintest.NewRowBuilder(sessionID, playedAt).WithTribeID(tribeID).WithProfileID(alice).WithPlacement(1).Build(),
			domaintest.NewRowBuilder(sessionID, playedAt).WithTribeID(tribeID).WithProfileID(bob).WithPlacement(2).Build(),
		}))

		handler := makeHandler(t, tribeRepo, sessionRepo)

		r := httptest.NewRequest("GET", fmt.Sprintf("/v1/tribes/%s/leaderboard", tribeID), nil)
		r.SetPathValue("tribe", tribeID)
		w := httptest.NewRecorder()
		handler(w, r)

		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, "application/json", w.Header().Get("Content-Type"))

		var response struct {
			TribeID string `json:"tribeId"`
			Members []struct {
				ProfileID   string `json:"profileId"`
				DisplayName string `json:"displayName"`
				GamesPlayed int    `json:"gamesPlayed"`
				Wins        int    `json:"wins"`
				WinRate     int    `json:"winRate"`
			} `json:"members"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))

		require.Equal(t, tribeID, response.TribeID)
		require.Len(t, response.Members, 2)
		require.Equal(t, "Alice", response.Members[0].DisplayName)
		require.Equal(t, 1, response.Members[0].Wins)
		require.Equal(t, 100, response.Members[0].WinRate)
		require.Equal(t, "Bob", response.Members[1].DisplayName)
		require.Equal(t, 0, response.Members[1].Wins)
	})

	t.Run("unknown tribe", func(t *testing.T) {
		t.Parallel()

		handler := makeHandler(t, triberepository.NewStubTribeRepository(), sessionrepository.NewStubSessionRepository())

		tribeID := domaintest.NewUUID(t)
		r := httptest.NewRequest("GET", fmt.Sprintf("/v1/tribes/%s/leaderboard", tribeID), nil)
		r.SetPathValue("tribe", tribeID)
		w := httptest.NewRecorder()
		handler(w, r)

		require.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("invalid tribe id", func(t *testing.T) {
		t.Parallel()

		handler := makeHandler(t, triberepository.NewStubTribeRepository(), sessionrepository.NewStubSessionRepository())

		r := httptest.NewRequest("GET", "/v1/tribes/not-a-uuid/leaderboard", nil)
		r.SetPathValue("tribe", "not-a-uuid")
		w := httptest.NewRecorder()
		handler(w, r)

		require.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestGetTribeSessionsHandler(t *testing.T) {
	t.Parallel()

	storeSession := func(t *testing.T, repo *sessionrepository.StubSessionRepository, tribeID string, playedAt time.Time) string {
		t.Helper()

		sessionID := domaintest.NewUUID(t)
		require.NoError(t, repo.StoreSession(context.Background(), []domain.SessionLogRow{
			domaintest.NewRowBuilder(sessionID, playedAt).WithTribeID(tribeID).WithPlacement(1).Build(),
			domaintest.NewRowBuilder(sessionID, playedAt).WithTribeID(tribeID).WithProfileID(domaintest.NewUUID(t)).WithPlacement(2).Build(),
		}))
		return sessionID
	}

	t.Run("returns sessions in the window", func(t *testing.T) {
		t.Parallel()

		tribeID := domaintest.NewUUID(t)
		repo := sessionrepository.NewStubSessionRepository()

		storeSession(t, repo, tribeID, time.Date(2024, time.March, 1, 19, 0, 0, 0, time.UTC))
		inWindow := storeSession(t, repo, tribeID, time.Date(2024, time.June, 1, 19, 0, 0, 0, time.UTC))

		handler := ports.MakeGetTribeSessionsHandler(
			app.BuildGetTribeSessions(repo),
			testOrigins(t),
			testLogger(),
			noopMiddleware,
		)

		url := fmt.Sprintf("/v1/tribes/%s/sessions?start=2024-05-01T00:00:00Z&end=2024-07-01T00:00:00Z", tribeID)
		r := httptest.NewRequest("GET", url, nil)
		r.SetPathValue("tribe", tribeID)
		w := httptest.NewRecorder()
		handler(w, r)

		require.Equal(t, http.StatusOK, w.Code)

		var response struct {
			TribeID  string `json:"tribeId"`
			Sessions []struct {
				SessionID  string `json:"sessionId"`
				NumPlayers int    `json:"numPlayers"`
			} `json:"sessions"`
			DroppedSessions int `json:"droppedSessions"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))

		require.Equal(t, tribeID, response.TribeID)
		require.Len(t, response.Sessions, 1)
		require.Equal(t, inWindow, response.Sessions[0].SessionID)
		require.Equal(t, 2, response.Sessions[0].NumPlayers)
		require.Zero(t, response.DroppedSessions)
	})

	t.Run("invalid start time", func(t *testing.T) {
		t.Parallel()

		tribeID := domaintest.NewUUID(t)
		handler := ports.MakeGetTribeSessionsHandler(
			app.BuildGetTribeSessions(sessionrepository.NewStubSessionRepository()),
			testOrigins(t),
			testLogger(),
			noopMiddleware,
		)

		r := httptest.NewRequest("GET", fmt.Sprintf("/v1/tribes/%s/sessions?start=yesterday", tribeID), nil)
		r.SetPathValue("tribe", tribeID)
		w := httptest.NewRecorder()
		handler(w, r)

		require.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestPlayerStatsHandlers(t *testing.T) {
	t.Parallel()

	playedAt := time.Date(2024, time.April, 1, 19, 0, 0, 0, time.UTC)

	viewer := domaintest.NewUUID(t)
	opponent := domaintest.NewUUID(t)
	gameID := domaintest.NewUUID(t)

	repo := sessionrepository.NewStubSessionRepository()
	sessionID := domaintest.NewUUID(t)
	require.NoError(t, repo.StoreSession(context.Background(), []domain.SessionLogRow{
		domaintest.NewRowBuilder(sessionID, playedAt).
			WithProfileID(viewer).WithGame(gameID, "Cascadia").WithPlacement(1).Build(),
		domaintest.NewRowBuilder(sessionID, playedAt).
			WithProfileID(opponent).WithProfileName("Opponent").WithGame(gameID, "Cascadia").WithPlacement(2).Build(),
	}))

	t.Run("top opponents", func(t *testing.T) {
		t.Parallel()

		handler := ports.MakeGetTopOpponentsHandler(
			app.BuildGetTopOpponents(repo),
			testOrigins(t),
			testLogger(),
			noopMiddleware,
		)

		r := httptest.NewRequest("GET", fmt.Sprintf("/v1/players/%s/opponents", viewer), nil)
		r.SetPathValue("profile", viewer)
		w := httptest.NewRecorder()
		handler(w, r)

		require.Equal(t, http.StatusOK, w.Code)

		var response struct {
			ProfileID string `json:"profileId"`
			Opponents []struct {
				Count       int    `json:"count"`
				ProfileID   string `json:"profileId"`
				DisplayName string `json:"displayName"`
			} `json:"opponents"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))

		require.Equal(t, viewer, response.ProfileID)
		require.Len(t, response.Opponents, 1)
		require.Equal(t, opponent, response.Opponents[0].ProfileID)
		require.Equal(t, "Opponent", response.Opponents[0].DisplayName)
		require.Equal(t, 1, response.Opponents[0].Count)
	})

	t.Run("top games", func(t *testing.T) {
		t.Parallel()

		handler := ports.MakeGetTopGamesHandler(
			app.BuildGetTopGames(repo),
			testOrigins(t),
			testLogger(),
			noopMiddleware,
		)

		r := httptest.NewRequest("GET", fmt.Sprintf("/v1/players/%s/games", viewer), nil)
		r.SetPathValue("profile", viewer)
		w := httptest.NewRecorder()
		handler(w, r)

		require.Equal(t, http.StatusOK, w.Code)

		var response struct {
			ProfileID string `json:"profileId"`
			Games     []struct {
				Count    int    `json:"count"`
				Wins     int    `json:"wins"`
				WinRate  int    `json:"winRate"`
				GameID   string `json:"gameId"`
				GameName string `json:"gameName"`
			} `json:"games"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))

		require.Equal(t, viewer, response.ProfileID)
		require.Len(t, response.Games, 1)
		require.Equal(t, "Cascadia", response.Games[0].GameName)
		require.Equal(t, 1, response.Games[0].Count)
		require.Equal(t, 1, response.Games[0].Wins)
		require.Equal(t, 100, response.Games[0].WinRate)
	})

	t.Run("invalid profile id", func(t *testing.T) {
		t.Parallel()

		handler := ports.MakeGetTopOpponentsHandler(
			app.BuildGetTopOpponents(repo),
			testOrigins(t),
			testLogger(),
			noopMiddleware,
		)

		r := httptest.NewRequest("GET", "/v1/players/not-a-uuid/opponents", nil)
		r.SetPathValue("profile", "not-a-uuid")
		w := httptest.NewRecorder()
		handler(w, r)

		require.Equal(t, http.StatusBadRequest, w.Code)
	})
}
