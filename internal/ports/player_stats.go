package ports

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/solhaug/tribescore/internal/app"
	"github.com/solhaug/tribescore/internal/logging"
	"github.com/solhaug/tribescore/internal/ratelimiting"
	"github.com/solhaug/tribescore/internal/reporting"
	"github.com/solhaug/tribescore/internal/strutils"
)

type opponentCountResponse struct {
	Count       int    `json:"count"`
	ProfileID   string `json:"profileId"`
	DisplayName string `json:"displayName"`
	AvatarURL   string `json:"avatarUrl"`
}

type opponentsResponse struct {
	ProfileID string                  `json:"profileId"`
	Opponents []opponentCountResponse `json:"opponents"`
}

type gameCountResponse struct {
	Count    int    `json:"count"`
	Wins     int    `json:"wins"`
	WinRate  int    `json:"winRate"`
	GameID   string `json:"gameId"`
	GameName string `json:"gameName"`
}

type gamesResponse struct {
	ProfileID string              `json:"profileId"`
	Games     []gameCountResponse `json:"games"`
}

func buildPlayerStatsMiddleware(
	port string,
	allowedOrigins *DomainSuffixes,
	rootLogger *slog.Logger,
	sentryMiddleware func(http.HandlerFunc) http.HandlerFunc,
) func(http.HandlerFunc) http.HandlerFunc {
	ipLimiter, _ := ratelimiting.NewTokenBucketRateLimiter(
		ratelimiting.RefillPerSecond(4),
		ratelimiting.BurstSize(80),
	)
	ipRateLimiter := ratelimiting.NewRequestBasedRateLimiter(
		ipLimiter,
		ratelimiting.IPKeyFunc,
	)
	userIDLimiter, _ := ratelimiting.NewTokenBucketRateLimiter(
		ratelimiting.RefillPerSecond(1),
		ratelimiting.BurstSize(20),
	)
	userIDRateLimiter := ratelimiting.NewRequestBasedRateLimiter(
		// NOTE: Rate limiting based on user controlled value
		userIDLimiter,
		ratelimiting.UserIDKeyFunc,
	)

	return ComposeMiddlewares(
		buildMetricsMiddleware(port),
		logging.NewRequestLoggerMiddleware(rootLogger),
		sentryMiddleware,
		reporting.NewAddMetaMiddleware(port),
		BuildCORSMiddleware(allowedOrigins),
		NewRateLimitMiddleware(ipRateLimiter, makeOnLimitExceeded(ipRateLimiter)),
		NewRateLimitMiddleware(userIDRateLimiter, makeOnLimitExceeded(userIDRateLimiter)),
	)
}

func MakeGetTopOpponentsHandler(
	getTopOpponents app.GetTopOpponents,
	allowedOrigins *DomainSuffixes,
	rootLogger *slog.Logger,
	sentryMiddleware func(http.HandlerFunc) http.HandlerFunc,
) http.HandlerFunc {
	middleware := buildPlayerStatsMiddleware("topopponents", allowedOrigins, rootLogger, sentryMiddleware)

	handler := func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		rawProfileID := r.PathValue("profile")

		profileID, err := strutils.NormalizeUUID(rawProfileID)
		if err != nil {
			statusCode := http.StatusBadRequest
			logging.FromContext(ctx).Info("Invalid profile id. Returning error", "statusCode", statusCode, "reason", "invalid profile id")
			http.Error(w, "Invalid profile id", statusCode)
			return
		}

		ctx = logging.AddMetaToContext(ctx, slog.String("profileID", profileID))
		ctx = reporting.AddExtrasToContext(ctx,
			map[string]string{
				"profileID": profileID,
			},
		)

		opponents, err := getTopOpponents(ctx, profileID)
		if err != nil {
			logging.FromContext(ctx).Error("Error getting top opponents", "error", err)
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		response := opponentsResponse{
			ProfileID: profileID,
			Opponents: make([]opponentCountResponse, 0, len(opponents)),
		}
		for _, opponent := range opponents {
			response.Opponents = append(response.Opponents, opponentCountResponse{
				Count:       opponent.Count,
				ProfileID:   opponent.ProfileID,
				DisplayName: opponent.DisplayName,
				AvatarURL:   opponent.AvatarURL,
			})
		}

		responseData, err := json.Marshal(response)
		if err != nil {
			logging.FromContext(ctx).Error("Failed to marshal response", "error", err)
			reporting.Report(ctx, fmt.Errorf("failed to marshal opponents response: %w", err))
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if _, err = w.Write(responseData); err != nil {
			logging.FromContext(ctx).Error("Failed to write response", "error", err)
			reporting.Report(ctx, fmt.Errorf("failed to write opponents response: %w", err))
			return
		}
	}

	return middleware(handler)
}

func MakeGetTopGamesHandler(
	getTopGames app.GetTopGames,
	allowedOrigins *DomainSuffixes,
	rootLogger *slog.Logger,
	sentryMiddleware func(http.HandlerFunc) http.HandlerFunc,
) http.HandlerFunc {
	middleware := buildPlayerStatsMiddleware("topgames", allowedOrigins, rootLogger, sentryMiddleware)

	handler := func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		rawProfileID := r.PathValue("profile")

		profileID, err := strutils.NormalizeUUID(rawProfileID)
		if err != nil {
			statusCode := http.StatusBadRequest
			logging.FromContext(ctx).Info("Invalid profile id. Returning error", "statusCode", statusCode, "reason", "invalid profile id")
			http.Error(w, "Invalid profile id", statusCode)
			return
		}

		ctx = logging.AddMetaToContext(ctx, slog.String("profileID", profileID))
		ctx = reporting.AddExtrasToContext(ctx,
			map[string]string{
				"profileID": profileID,
			},
		)

		games, err := getTopGames(ctx, profileID)
		if err != nil {
			logging.FromContext(ctx).Error("Error getting top games", "error", err)
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		response := gamesResponse{
			ProfileID: profileID,
			Games:     make([]gameCountResponse, 0, len(games)),
		}
		for _, game := range games {
			response.Games = append(response.Games, gameCountResponse{
				Count:    game.Count,
				Wins:     game.Wins,
				WinRate:  game.WinRate,
				GameID:   game.GameID,
				GameName: game.GameName,
			})
		}

		responseData, err := json.Marshal(response)
		if err != nil {
			logging.FromContext(ctx).Error("Failed to marshal response", "error", err)
			reporting.Report(ctx, fmt.Errorf("failed to marshal games response: %w", err))
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if _, err = w.Write(responseData); err != nil {
			logging.FromContext(ctx).Error("Failed to write response", "error", err)
			reporting.Report(ctx, fmt.Errorf("failed to write games response: %w", err))
			return
		}
	}

	return middleware(handler)
}
