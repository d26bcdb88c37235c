package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port                    string
	Env                     string
	JWTSecret               string
	FirebaseCredentialsPath string
	PostgresConnStr         string
	MongoURI                string
	AWSRegion               string
	SNSApplicationARN       string
	Notification            NotificationConfig
}

// NotificationConfig carries the notification core's tunables. The defaults
// match the production values the service has always run with: a page of 50
// alerts, and at most 5 pushes per kind/subject within a 10 minute window.
type NotificationConfig struct {
	PageSize       int
	PushThreshold  int
	PushWindow     time.Duration
	PublishTimeout time.Duration
}

func Load() *Config {
	return &Config{
		Port:                    getEnv("PORT", "8080"),
		Env:                     getEnv("ENV", "development"),
		JWTSecret:               getEnv("JWT_SECRET", "supersecretjwtkey"),
		FirebaseCredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", "./firebase_credentials.json"),
		PostgresConnStr:         getEnv("POSTGRES_CONN_STR", ""),
		MongoURI:                getEnv("MONGO_URI", ""),
		AWSRegion:               getEnv("AWS_REGION", "us-east-1"),
		SNSApplicationARN:       getEnv("SNS_APPLICATION_ARN", ""),
		Notification: NotificationConfig{
			PageSize:       getEnvInt("NOTIFICATION_PAGE_SIZE", 50),
			PushThreshold:  getEnvInt("NOTIFICATION_PUSH_THRESHOLD", 5),
			PushWindow:     time.Duration(getEnvInt("NOTIFICATION_PUSH_WINDOW_MINUTES", 10)) * time.Minute,
			PublishTimeout: time.Duration(getEnvInt("NOTIFICATION_PUBLISH_TIMEOUT_SECONDS", 10)) * time.Second,
		},
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
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
