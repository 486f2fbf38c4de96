package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	ServerAddress string

	MongoURI string
	MongoDB  string

	JWTSecret     string
	JWTExpiration time.Duration

	// Firebase ID-token verification is used instead of local JWTs when a
	// project ID is configured.
	FirebaseProjectID       string
	FirebaseCredentialsJSON string

	// Text similarity oracle.
	MatcherURL     string
	MatcherTimeout time.Duration

	// Face verification oracle.
	FaceAPIURL string
	FaceAPIKey string

	// Minimum similarity score for a candidate pair to become a match.
	MatchThreshold float64

	MaxUploadSizeMB int64

	// Login rate limiting: LoginMaxAttempts per LoginWindow per client IP.
	LoginMaxAttempts int
	LoginWindow      time.Duration
}

func Load() *Config {
	return &Config{
		ServerAddress: getEnv("SERVER_ADDRESS", ":5000"),

		MongoURI: getEnv("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDB:  getEnv("MONGODB_DB", "findit"),

		JWTSecret:     getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		JWTExpiration: 7 * 24 * time.Hour,

		FirebaseProjectID:       getEnv("FIREBASE_PROJECT_ID", ""),
		FirebaseCredentialsJSON: getEnv("FIREBASE_CREDENTIALS_JSON", ""),

		MatcherURL:     getEnv("MATCHER_URL", "http://localhost:5001"),
		MatcherTimeout: getEnvDuration("MATCHER_TIMEOUT", 8*time.Second),

		FaceAPIURL: getEnv("FACE_API_URL", "http://localhost:5002"),
		FaceAPIKey: getEnv("FACE_API_KEY", ""),

		MatchThreshold: getEnvFloat("MATCH_THRESHOLD", 0.3),

		MaxUploadSizeMB: 5,

		LoginMaxAttempts: getEnvInt("LOGIN_MAX_ATTEMPTS", 5),
		LoginWindow:      getEnvDuration("LOGIN_WINDOW", 15*time.Minute),
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
