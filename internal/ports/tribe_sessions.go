package ports

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/solhaug/tribescore/internal/app"
	"github.com/solhaug/tribescore/internal/domain"
	"github.com/solhaug/tribescore/internal/logging"
	"github.com/solhaug/tribescore/internal/ratelimiting"
	"github.com/solhaug/tribescore/internal/reporting"
	"github.com/solhaug/tribescore/internal/strutils"
)

type sessionPlayerResponse struct {
	ProfileID     string  `json:"profileId"`
	DisplayName   string  `json:"displayName"`
	AvatarURL     string  `json:"avatarUrl"`
	Placement     int     `json:"placement"`
	VictoryPoints *int    `json:"victoryPoints"`
	Winner        bool    `json:"winner"`
	Tie           bool    `json:"tie"`
	Score         float64 `json:"score"`
	WinContrib    int     `json:"winContribution"`
	FirstPlay     bool    `json:"firstPlay"`
	HighScore     bool    `json:"highScore"`
}

type sessionResponse struct {
	SessionID  string                  `json:"sessionId"`
	PlayedAt   time.Time               `json:"playedAt"`
	GameID     string                  `json:"gameId"`
	GameName   string                  `json:"gameName"`
	GameWeight float64                 `json:"gameWeight"`
	GameLength int                     `json:"gameLength"`
	NumPlayers int                     `json:"numPlayers"`
	Players    []sessionPlayerResponse `json:"players"`
}

type tribeSessionsResponse struct {
	TribeID         string            `json:"tribeId"`
	Sessions        []sessionResponse `json:"sessions"`
	DroppedSessions int               `json:"droppedSessions"`
}

func MakeGetTribeSessionsHandler(
	getTribeSessions app.GetTribeSessions,
	allowedOrigins *DomainSuffixes,
	rootLogger *slog.Logger,
	sentryMiddleware func(http.HandlerFunc) http.HandlerFunc,
) http.HandlerFunc {
	ipLimiter, _ := ratelimiting.NewTokenBucketRateLimiter(
		ratelimiting.RefillPerSecond(4),
		ratelimiting.BurstSize(80),
	)
	ipRateLimiter := ratelimiting.NewRequestBasedRateLimiter(
		ipLimiter,
		ratelimiting.IPKeyFunc,
	)

	middleware := ComposeMiddlewares(
		buildMetricsMiddleware("tribesessions"),
		logging.NewRequestLoggerMiddleware(rootLogger),
		sentryMiddleware,
		reporting.NewAddMetaMiddleware("tribesessions"),
		BuildCORSMiddleware(allowedOrigins),
		NewRateLimitMiddleware(ipRateLimiter, makeOnLimitExceeded(ipRateLimiter)),
	)

	handler := func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		rawTribeID := r.PathValue("tribe")

		tribeID, err := strutils.NormalizeUUID(rawTribeID)
		if err != nil {
			statusCode := http.StatusBadRequest
			logging.FromContext(ctx).Info("Invalid tribe id. Returning error", "statusCode", statusCode, "reason", "invalid tribe id")
			http.Error(w, "Invalid tribe id", statusCode)
			return
		}

		ctx = logging.AddMetaToContext(ctx, slog.String("tribeID", tribeID))
		ctx = reporting.AddExtrasToContext(ctx,
			map[string]string{
				"tribeID": tribeID,
			},
		)

		var start, end time.Time
		if rawStart := r.URL.Query().Get("start"); rawStart != "" {
			start, err = time.Parse(time.RFC3339, rawStart)
			if err != nil {
				http.Error(w, "Invalid start time", http.StatusBadRequest)
				return
			}
		}
		if rawEnd := r.URL.Query().Get("end"); rawEnd != "" {
			end, err = time.Parse(time.RFC3339, rawEnd)
			if err != nil {
				http.Error(w, "Invalid end time", http.StatusBadRequest)
				return
			}
		}

		sessions, dropped, err := getTribeSessions(ctx, tribeID, start, end)
		if errors.Is(err, domain.ErrTribeNotFound) {
			logging.FromContext(ctx).Info("Tribe not found. Returning error", "error", err)
			http.Error(w, "Tribe not found", http.StatusNotFound)
			return
		} else if err != nil {
			logging.FromContext(ctx).Error("Error getting tribe sessions", "error", err)
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		response := tribeSessionsResponse{
			TribeID:         tribeID,
			Sessions:        make([]sessionResponse, 0, len(sessions)),
			DroppedSessions: dropped,
		}
		for _, session := range sessions {
			players := make([]sessionPlayerResponse, 0, len(session.Players))
			for _, player := range session.Players {
				players = append(players, sessionPlayerResponse{
					ProfileID:     player.ProfileID,
					DisplayName:   player.ProfileName,
					AvatarURL:     player.ProfileAvatar,
					Placement:     player.Placement,
					VictoryPoints: player.VictoryPoints,
					Winner:        player.Winner,
					Tie:           player.Tie,
					Score:         player.Score,
					WinContrib:    player.WinContribution,
					FirstPlay:     player.FirstPlay,
					HighScore:     player.HighScore,
				})
			}
			response.Sessions = append(response.Sessions, sessionResponse{
				SessionID:  session.SessionID,
				PlayedAt:   session.PlayedAt,
				GameID:     session.GameID,
				GameName:   session.GameName,
				GameWeight: session.GameWeight,
				GameLength: session.GameLength,
				NumPlayers: session.NumPlayers,
				Players:    players,
			})
		}

		responseData, err := json.Marshal(response)
		if err != nil {
			logging.FromContext(ctx).Error("Failed to marshal response", "error", err)
			reporting.Report(ctx, fmt.Errorf("failed to marshal tribe sessions response: %w", err))
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if _, err = w.Write(responseData); err != nil {
			logging.FromContext(ctx).Error("Failed to write response", "error", err)
			reporting.Report(ctx, fmt.Errorf("failed to write tribe sessions response: %w", err))
			return
		}
	}

	return middleware(handler)
}
