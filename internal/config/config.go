package config

import (
	"os"
)

type Config struct {
	Port       string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	// Token settings
	JWTSecret             string
	RefreshJWTSecret      string
	AccessTokenTTLMinutes string // minutes
	RefreshTokenTTLDays   string // days
	// Initial admin seed
	AdminUsername  string
	AdminEmail     string
	AdminPassword  string
	AdminFirstName string
	AdminLastName  string
	// Submission uploads
	UploadFolder string
	MaxUploadMB  string
	// External meeting provider base URL; rooms resolve to <base>/<room_name>
	MeetingBaseURL string
}

func Load() *Config {
	return &Config{
		Port:       getenv("PORT", "8080"),
		DBHost:     getenv("DB_HOST", "localhost"),
		DBPort:     getenv("DB_PORT", "5432"),
		DBUser:     getenv("DB_USER", "postgres"),
		DBPassword: getenv("DB_PASSWORD", "postgres"),
		DBName:     getenv("DB_NAME", "lms_db"),
		DBSSLMode:  getenv("DB_SSLMODE", "disable"),

		JWTSecret:             getenv("JWT_SECRET", "supersecret_change_me"),
		RefreshJWTSecret:      getenv("REFRESH_JWT_SECRET", getenv("JWT_SECRET", "supersecret_change_me")),
		AccessTokenTTLMinutes: getenv("ACCESS_TOKEN_TTL_MINUTES", "60"),
		RefreshTokenTTLDays:   getenv("REFRESH_TOKEN_TTL_DAYS", "30"),

		AdminUsername:  getenv("ADMIN_USERNAME", "admin"),
		AdminEmail:     getenv("ADMIN_EMAIL", "admin@example.com"),
		AdminPassword:  getenv("ADMIN_PASSWORD", "admin123"),
		AdminFirstName: getenv("ADMIN_FIRST_NAME", "System"),
		AdminLastName:  getenv("ADMIN_LAST_NAME", "Administrator"),

		UploadFolder: getenv("UPLOAD_FOLDER", "uploads"),
		MaxUploadMB:  getenv("MAX_UPLOAD_MB", "16"),

		MeetingBaseURL: getenv("MEETING_BASE_URL", "https://meet.jit.si"),
	}
}

func getenv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}
