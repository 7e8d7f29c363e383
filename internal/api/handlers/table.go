package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/billiards/internal/game"
	"github.com/playmatatu/billiards/internal/journal"
	"github.com/playmatatu/billiards/internal/models"
	"github.com/playmatatu/billiards/internal/session"
)

// Table is the session as seen by the HTTP layer.
type Table interface {
	ID() string
	Snapshot() session.Snapshot
	RefreshCueBall(ctx context.Context) (bool, error)
	ForceAiming(ctx context.Context) error
	ForceReady(ctx context.Context) error
	Rerack(ctx context.Context) error
	SwitchCamera(ctx context.Context, c game.Camera) error
	ResetCamera(ctx context.Context) error
	ToggleManualControl(ctx context.Context) (bool, error)
}

// ShotLog is the read side of the shot journal.
type ShotLog interface {
	Enabled() bool
	Recent(ctx context.Context, sessionID string, limit int) ([]models.Shot, error)
}

// GetTableState returns the latest snapshot of the table.
func GetTableState(t Table) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, t.Snapshot())
	}
}

// GetRecentShots lists the most recent journaled shots of this table.
func GetRecentShots(t Table, shots ShotLog) gin.HandlerFunc {
	return func(c *gin.Context) {
		if shots == nil || !shots.Enabled() {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "shot journal is not configured"})
			return
		}

		limit := journal.DefaultRecent
		if raw := c.Query("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n <= 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
				return
			}
			limit = min(n, journal.MaxRecent)
		}

		list, err := shots.Recent(c.Request.Context(), t.ID(), limit)
		if err != nil {
			log.Printf("[API] Failed to fetch shots: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch shots"})
			return
		}
		if list == nil {
			list = []models.Shot{}
		}
		c.JSON(http.StatusOK, gin.H{"session_id": t.ID(), "shots": list})
	}
}

// commandStatus maps a session command error to an HTTP status.
func commandStatus(err error) int {
	switch {
	case errors.Is(err, session.ErrNoCueBall):
		return http.StatusConflict
	case errors.Is(err, session.ErrStopped):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

var _ ShotLog = (*journal.Journal)(nil)
