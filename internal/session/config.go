package session

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/playmatatu/billiards/internal/config"
	"github.com/playmatatu/billiards/internal/game"
	"github.com/playmatatu/billiards/internal/sim"
)

// Config is everything a Session needs to build its table.
type Config struct {
	TickRate       int
	Table          game.Settings
	World          sim.WorldConfig
	OverheadHeight float64
	Seed           int64 // 0 = time seeded
	Debug          bool
}

// ConfigFrom maps the environment configuration onto a session configuration.
func ConfigFrom(cfg *config.Config) Config {
	world := sim.DefaultWorldConfig()
	world.BallRadius = cfg.BallDiameter / 2
	world.BallMass = cfg.BallMass
	world.HalfLength = cfg.TableLength / 2
	world.HalfWidth = cfg.TableWidth / 2
	world.PocketRadius = cfg.BallDiameter

	seconds := func(s float64) time.Duration { return time.Duration(s * float64(time.Second)) }

	return Config{
		TickRate: cfg.TickRate,
		Table: game.Settings{
			Cue: game.CueConfig{
				MaxPower:        cfg.MaxPower,
				ChargeRate:      cfg.ChargeRate,
				ForceMultiplier: cfg.ForceMultiplier,
				RotationSpeed:   cfg.RotationSpeed,
				MaxPullBack:     cfg.MaxPullBack,
				LineSegments:    cfg.AimLineSegments,
				LineLength:      cfg.AimLineLength,
				RestOffset:      mgl64.Vec3{0, 0, cfg.BallDiameter},
			},
			Rest: game.RestConfig{
				StopThreshold: cfg.BallStopThreshold,
				GracePeriod:   seconds(cfg.GracePeriod),
				ConfirmWindow: seconds(cfg.ConfirmWindow),
				MinCueSpeed:   cfg.MinCueSpeed,
			},
			Camera: game.CameraConfig{
				HighPriority:     cfg.CameraHighPriority,
				LowPriority:      cfg.CameraLowPriority,
				MoveSpeed:        cfg.CameraMoveSpeed,
				RotationSpeed:    cfg.CameraRotationSpeed,
				Bounds:           mgl64.Vec3{cfg.CameraBoundsX, cfg.CameraBoundsY, cfg.CameraBoundsZ},
				MovementEnabled:  cfg.OverheadMovementOn,
				ManualSwitchKeys: cfg.ManualCameraSwitchOn,
			},
			Rack: game.RackLayout{
				Diameter: cfg.BallDiameter,
				CueSpot:  mgl64.Vec3{0, 0, cfg.TableLength / 4},
				ApexSpot: mgl64.Vec3{0, 0, -cfg.TableLength / 4},
			},
			CueBallCheckInterval: seconds(cfg.CueBallCheckInterval),
			Debug:                cfg.DebugLogging,
		},
		World:          world,
		OverheadHeight: 3,
		Seed:           cfg.RackSeed,
		Debug:          cfg.DebugLogging,
	}
}
