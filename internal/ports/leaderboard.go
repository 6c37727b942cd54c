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

type leaderboardMemberResponse struct {
	ProfileID   string    `json:"profileId"`
	DisplayName string    `json:"displayName"`
	AvatarURL   string    `json:"avatarUrl"`
	Role        string    `json:"role"`
	JoinedAt    time.Time `json:"joinedAt"`
	GamesPlayed int       `json:"gamesPlayed"`
	Wins        int       `json:"wins"`
	WinRate     int       `json:"winRate"`
}

type leaderboardResponse struct {
	TribeID string                      `json:"tribeId"`
	Members []leaderboardMemberResponse `json:"members"`
}

func MakeGetTribeLeaderboardHandler(
	getTribeLeaderboard app.GetTribeLeaderboard,
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
	userIDLimiter, _ := ratelimiting.NewTokenBucketRateLimiter(
		ratelimiting.RefillPerSecond(1),
		ratelimiting.BurstSize(20),
	)
	userIDRateLimiter := ratelimiting.NewRequestBasedRateLimiter(
		// NOTE: Rate limiting based on user controlled value
		userIDLimiter,
		ratelimiting.UserIDKeyFunc,
	)

	middleware := ComposeMiddlewares(
		buildMetricsMiddleware("leaderboard"),
		logging.NewRequestLoggerMiddleware(rootLogger),
		sentryMiddleware,
		reporting.NewAddMetaMiddleware("leaderboard"),
		BuildCORSMiddleware(allowedOrigins),
		NewRateLimitMiddleware(ipRateLimiter, makeOnLimitExceeded(ipRateLimiter)),
		NewRateLimitMiddleware(userIDRateLimiter, makeOnLimitExceeded(userIDRateLimiter)),
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

		leaderboard, err := getTribeLeaderboard(ctx, tribeID)
		if errors.Is(err, domain.ErrTribeNotFound) {
			logging.FromContext(ctx).Info("Tribe not found. Returning error", "error", err)
			http.Error(w, "Tribe not found", http.StatusNotFound)
			return
		} else if err != nil {
			logging.FromContext(ctx).Error("Error getting leaderboard", "error", err)
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		response := leaderboardResponse{
			TribeID: tribeID,
			Members: make([]leaderboardMemberResponse, 0, len(leaderboard)),
		}
		for _, member := range leaderboard {
			response.Members = append(response.Members, leaderboardMemberResponse{
				ProfileID:   member.ProfileID,
				DisplayName: member.DisplayName,
				AvatarURL:   member.AvatarURL,
				Role:        member.Role,
				JoinedAt:    member.JoinedAt,
				GamesPlayed: member.Stats.GamesPlayed,
				Wins:        member.Stats.Wins,
				WinRate:     member.Stats.WinRate,
			})
		}

		responseData, err := json.Marshal(response)
		if err != nil {
			logging.FromContext(ctx).Error("Failed to marshal response", "error", err)
			reporting.Report(ctx, fmt.Errorf("failed to marshal leaderboard response: %w", err))
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if _, err = w.Write(responseData); err != nil {
			logging.FromContext(ctx).Error("Failed to write response", "error", err)
			reporting.Report(ctx, fmt.Errorf("failed to write leaderboard response: %w", err))
			return
		}
	}

	return middleware(handler)
}
