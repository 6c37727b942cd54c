package ports

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
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

type recordSessionPlayerRequest struct {
	ProfileID     string `json:"profileId"`
	Placement     int    `json:"placement"`
	VictoryPoints *int   `json:"victoryPoints"`
	Winner        bool   `json:"winner"`
	Tie           bool   `json:"tie"`
	FirstPlay     bool   `json:"firstPlay"`
	HighScore     bool   `json:"highScore"`
	Rating        *int   `json:"rating"`
}

type recordSessionRequest struct {
	TribeID    string                       `json:"tribeId"`
	GameID     string                       `json:"gameId"`
	GameName   string                       `json:"gameName"`
	GameWeight float64                      `json:"gameWeight"`
	GameLength int                          `json:"gameLength"`
	PlayedAt   time.Time                    `json:"playedAt"`
	UsesVP     bool                         `json:"usesVp"`
	Players    []recordSessionPlayerRequest `json:"players"`
}

type recordSessionResponse struct {
	SessionID string `json:"sessionId"`
}

func MakeRecordSessionHandler(
	recordSession app.RecordSession,
	allowedOrigins *DomainSuffixes,
	rootLogger *slog.Logger,
	sentryMiddleware func(http.HandlerFunc) http.HandlerFunc,
) http.HandlerFunc {
	ipLimiter, _ := ratelimiting.NewTokenBucketRateLimiter(
		ratelimiting.RefillPerSecond(1),
		ratelimiting.BurstSize(20),
	)
	ipRateLimiter := ratelimiting.NewRequestBasedRateLimiter(
		ipLimiter,
		ratelimiting.IPKeyFunc,
	)

	middleware := ComposeMiddlewares(
		buildMetricsMiddleware("recordsession"),
		logging.NewRequestLoggerMiddleware(rootLogger),
		sentryMiddleware,
		reporting.NewAddMetaMiddleware("recordsession"),
		BuildCORSMiddleware(allowedOrigins),
		NewRateLimitMiddleware(ipRateLimiter, makeOnLimitExceeded(ipRateLimiter)),
	)

	handler := func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		defer r.Body.Close()
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request body", http.StatusBadRequest)
			return
		}

		request := recordSessionRequest{}
		err = json.Unmarshal(body, &request)
		if err != nil {
			http.Error(w, "Failed to parse request body", http.StatusBadRequest)
			return
		}

		tribeID, err := strutils.NormalizeUUID(request.TribeID)
		if err != nil {
			statusCode := http.StatusBadRequest
			logging.FromContext(ctx).Info("Invalid tribe id. Returning error", "statusCode", statusCode, "reason", "invalid tribe id")
			http.Error(w, "Invalid tribe id", statusCode)
			return
		}

		ctx = logging.AddMetaToContext(ctx,
			slog.String("tribeID", tribeID),
			slog.String("gameID", request.GameID),
		)
		ctx = reporting.AddExtrasToContext(ctx,
			map[string]string{
				"tribeID": tribeID,
				"gameID":  request.GameID,
			},
		)
		if userID := r.Header.Get("X-User-Id"); userID != "" {
			ctx = reporting.SetUserIDInContext(ctx, userID)
		}

		newSession := app.NewSession{
			TribeID:    tribeID,
			GameID:     request.GameID,
			GameName:   request.GameName,
			GameWeight: request.GameWeight,
			GameLength: request.GameLength,
			PlayedAt:   request.PlayedAt,
			UsesVP:     request.UsesVP,
			Players:    make([]app.NewSessionPlayer, 0, len(request.Players)),
		}
		for _, player := range request.Players {
			profileID, err := strutils.NormalizeUUID(player.ProfileID)
			if err != nil {
				statusCode := http.StatusBadRequest
				logging.FromContext(ctx).Info("Invalid profile id. Returning error", "statusCode", statusCode, "reason", "invalid profile id")
				http.Error(w, "Invalid profile id", statusCode)
				return
			}
			newSession.Players = append(newSession.Players, app.NewSessionPlayer{
				ProfileID:     profileID,
				Placement:     player.Placement,
				VictoryPoints: player.VictoryPoints,
				Winner:        player.Winner,
				Tie:           player.Tie,
				FirstPlay:     player.FirstPlay,
				HighScore:     player.HighScore,
				Rating:        player.Rating,
			})
		}

		sessionID, err := recordSession(ctx, newSession)
		if errors.Is(err, domain.ErrInvalidPlacement) || errors.Is(err, domain.ErrInvalidGameInfo) {
			logging.FromContext(ctx).Info("Invalid session. Returning error", "error", err)
			http.Error(w, "Invalid session", http.StatusBadRequest)
			return
		} else if errors.Is(err, domain.ErrSessionAlreadyRecorded) {
			logging.FromContext(ctx).Info("Session already recorded. Returning error", "error", err)
			http.Error(w, "Session already recorded", http.StatusConflict)
			return
		} else if err != nil {
			logging.FromContext(ctx).Error("Error recording session", "error", err)
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		responseData, err := json.Marshal(recordSessionResponse{SessionID: sessionID})
		if err != nil {
			logging.FromContext(ctx).Error("Failed to marshal response", "error", err)
			reporting.Report(ctx, fmt.Errorf("failed to marshal record session response: %w", err))
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		if _, err = w.Write(responseData); err != nil {
			logging.FromContext(ctx).Error("Failed to write response", "error", err)
			reporting.Report(ctx, fmt.Errorf("failed to write record session response: %w", err))
			return
		}
	}

	return middleware(handler)
}
