package handlers

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/billiards/internal/admin"
	"github.com/playmatatu/billiards/internal/config"
	"github.com/playmatatu/billiards/internal/game"
)

// AdminLogin exchanges the admin password for a bearer token.
func AdminLogin(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Password string `json:"password" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}

		if err := admin.VerifyPassword(cfg.AdminPasswordHash, strings.TrimSpace(req.Password)); err != nil {
			log.Printf("[ADMIN] Login failed from %s: %v", c.ClientIP(), err)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}

		ttl := time.Duration(cfg.SessionTimeoutMin) * time.Minute
		token, exp, err := admin.IssueToken(cfg.JWTSecret, ttl, time.Now())
		if err != nil {
			log.Printf("[ADMIN] Failed to sign token: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		log.Printf("[ADMIN] Login from %s", c.ClientIP())
		c.JSON(http.StatusOK, gin.H{
			"token":      token,
			"expires_at": exp.Format(time.RFC3339),
		})
	}
}

// AdminAuthMiddleware requires a bearer token issued by AdminLogin.
func AdminAuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}
		if err := admin.ParseToken(cfg.JWTSecret, strings.TrimPrefix(auth, "Bearer ")); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Next()
	}
}

func commandFailed(c *gin.Context, op string, err error) {
	log.Printf("[ADMIN] %s failed: %v", op, err)
	c.JSON(commandStatus(err), gin.H{"error": err.Error()})
}

// RefreshCueBall re-resolves the cue ball from the registry.
func RefreshCueBall(t Table) gin.HandlerFunc {
	return func(c *gin.Context) {
		found, err := t.RefreshCueBall(c.Request.Context())
		if err != nil {
			commandFailed(c, "refresh cue ball", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"cue_ball_found": found})
	}
}

// ForceAiming puts the table into Aiming regardless of its state.
func ForceAiming(t Table) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := t.ForceAiming(c.Request.Context()); err != nil {
			commandFailed(c, "force aiming", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"state": game.StateAiming})
	}
}

// ForceReady puts the table into Ready regardless of its state.
func ForceReady(t Table) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := t.ForceReady(c.Request.Context()); err != nil {
			commandFailed(c, "force ready", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"state": game.StateReady})
	}
}

// Rerack clears the table and racks a fresh frame.
func Rerack(t Table) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := t.Rerack(c.Request.Context()); err != nil {
			commandFailed(c, "rerack", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"reracked": true})
	}
}

// GetCamera reports which camera is live and how control is assigned.
func GetCamera(t Table) gin.HandlerFunc {
	return func(c *gin.Context) {
		snap := t.Snapshot()
		c.JSON(http.StatusOK, gin.H{
			"active":         snap.ActiveCamera,
			"priorities":     snap.Priorities,
			"manual_control": snap.ManualControl,
			"overhead":       snap.Overhead,
		})
	}
}

// SwitchCamera makes the camera named in the path live.
func SwitchCamera(t Table) gin.HandlerFunc {
	return func(c *gin.Context) {
		cam := game.Camera(c.Param("camera"))
		if cam != game.CameraAim && cam != game.CameraOverhead {
			c.JSON(http.StatusBadRequest, gin.H{"error": "camera must be aim or overhead"})
			return
		}
		if err := t.SwitchCamera(c.Request.Context(), cam); err != nil {
			commandFailed(c, "switch camera", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"active": cam})
	}
}

// ResetCamera returns the overhead camera to its initial pose.
func ResetCamera(t Table) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := t.ResetCamera(c.Request.Context()); err != nil {
			commandFailed(c, "reset camera", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"reset": true})
	}
}

// ToggleManualControl flips between automatic and manual camera control.
func ToggleManualControl(t Table) gin.HandlerFunc {
	return func(c *gin.Context) {
		manual, err := t.ToggleManualControl(c.Request.Context())
		if err != nil {
			commandFailed(c, "toggle manual control", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"manual_control": manual})
	}
}
