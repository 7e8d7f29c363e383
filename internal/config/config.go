package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Environment
	Environment  string
	DebugLogging bool

	// Database (shot journal, optional)
	DatabaseURL    string
	MigrateOnStart bool

	// Redis (event publisher, optional)
	RedisURL string

	// Server
	Port        string
	FrontendURL string

	// Security
	JWTSecret         string
	AdminPasswordHash string
	SessionTimeoutMin int

	// Simulation loop
	TickRate int // ticks per second

	// Cue / shot tuning
	MaxPower             float64
	ChargeRate           float64 // power units per second
	ForceMultiplier      float64 // impulse (N·s) per power unit
	RotationSpeed        float64 // degrees per second per unit of pointer delta
	MaxPullBack          float64
	AimLineSegments      int
	AimLineLength        float64
	CueBallCheckInterval float64 // seconds

	// Rest detection
	BallStopThreshold float64
	GracePeriod       float64 // seconds
	ConfirmWindow     float64 // seconds
	MinCueSpeed       float64

	// Cameras
	CameraHighPriority   int
	CameraLowPriority    int
	CameraMoveSpeed      float64
	CameraRotationSpeed  float64 // degrees per second
	CameraBoundsX        float64
	CameraBoundsY        float64
	CameraBoundsZ        float64
	OverheadMovementOn   bool
	ManualCameraSwitchOn bool

	// Table / rack
	BallDiameter float64
	BallMass     float64
	TableLength  float64
	TableWidth   float64
	RackSeed     int64 // 0 = time seeded
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	return &Config{
		// Environment
		Environment:  getEnv("APP_ENV", "development"),
		DebugLogging: getEnvBool("DEBUG_LOGGING", true),

		// Database
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		MigrateOnStart: getEnvBool("MIGRATE_ON_START", false),

		// Redis
		RedisURL: getEnv("REDIS_URL", ""),

		// Server
		Port:        getEnv("APP_PORT", "8080"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),

		// Security
		JWTSecret:         getEnv("JWT_SECRET", "change-me-in-production"),
		AdminPasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),
		SessionTimeoutMin: getEnvInt("SESSION_TIMEOUT_MINUTES", 30),

		// Simulation loop
		TickRate: getEnvInt("TICK_RATE", 60),

		// Cue / shot tuning
		MaxPower:             getEnvFloat("CUE_MAX_POWER", 100),
		ChargeRate:           getEnvFloat("CUE_CHARGE_RATE", 50),
		ForceMultiplier:      getEnvFloat("CUE_FORCE_MULTIPLIER", 0.01),
		RotationSpeed:        getEnvFloat("CUE_ROTATION_SPEED", 100),
		MaxPullBack:          getEnvFloat("CUE_MAX_PULL_BACK", 0.5),
		AimLineSegments:      getEnvInt("AIM_LINE_SEGMENTS", 50),
		AimLineLength:        getEnvFloat("AIM_LINE_LENGTH", 5),
		CueBallCheckInterval: getEnvFloat("CUE_BALL_CHECK_INTERVAL_SECONDS", 1),

		// Rest detection
		BallStopThreshold: getEnvFloat("BALL_STOP_THRESHOLD", 0.01),
		GracePeriod:       getEnvFloat("STRIKE_GRACE_SECONDS", 0.5),
		ConfirmWindow:     getEnvFloat("STRIKE_CONFIRM_SECONDS", 1),
		MinCueSpeed:       getEnvFloat("MIN_CUE_SPEED", 0.1),

		// Cameras
		CameraHighPriority:   getEnvInt("CAMERA_HIGH_PRIORITY", 20),
		CameraLowPriority:    getEnvInt("CAMERA_LOW_PRIORITY", 10),
		CameraMoveSpeed:      getEnvFloat("CAMERA_MOVE_SPEED", 5),
		CameraRotationSpeed:  getEnvFloat("CAMERA_ROTATION_SPEED", 100),
		CameraBoundsX:        getEnvFloat("CAMERA_BOUNDS_X", 10),
		CameraBoundsY:        getEnvFloat("CAMERA_BOUNDS_Y", 5),
		CameraBoundsZ:        getEnvFloat("CAMERA_BOUNDS_Z", 10),
		OverheadMovementOn:   getEnvBool("CAMERA_OVERHEAD_MOVEMENT", true),
		ManualCameraSwitchOn: getEnvBool("CAMERA_MANUAL_SWITCH", true),

		// Table / rack
		BallDiameter: getEnvFloat("BALL_DIAMETER", 0.06),
		BallMass:     getEnvFloat("BALL_MASS", 0.17),
		TableLength:  getEnvFloat("TABLE_LENGTH", 2.54),
		TableWidth:   getEnvFloat("TABLE_WIDTH", 1.27),
		RackSeed:     int64(getEnvInt("RACK_SEED", 0)),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
