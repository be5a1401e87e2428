package config

import (
	"fmt"
	"net/http"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// DefaultMaxUploadBytes is the upload ceiling used when MAX_UPLOAD_BYTES is unset.
const DefaultMaxUploadBytes = 50 << 20 // 50 MiB

// Config holds the project config values
type Config struct {
	URL            string
	DatabaseName   string
	BaseURL        string
	Port           string
	FrontendDir    string
	AdminJWTSecret string

	FilebaseKey      string
	FilebaseSecret   string
	FilebaseBucket   string
	FilebaseEndpoint string
	IPFSGatewayURL   string
	MaxUploadBytes   int64
}

// New sets up all config related services
func New() *Config {
	// .env is optional, real env vars win either way
	_ = godotenv.Load()

	//setup zap logger and replace default logger
	logger := zap.NewExample()
	defer logger.Sync()
	_ = zap.ReplaceGlobals(logger)

	return &Config{
		URL:            os.Getenv("DB_URI"),
		DatabaseName:   os.Getenv("DB_NAME"),
		BaseURL:        os.Getenv("BASE_URL"),
		Port:           os.Getenv("PORT"),
		FrontendDir:    getEnv("FRONTEND_DIR", "./frontend"),
		AdminJWTSecret: os.Getenv("ADMIN_JWT_SECRET"),

		FilebaseKey:      os.Getenv("FILEBASE_API_KEY"),
		FilebaseSecret:   os.Getenv("FILEBASE_SECRET_KEY"),
		FilebaseBucket:   os.Getenv("FILEBASE_BUCKET"),
		FilebaseEndpoint: getEnv("FILEBASE_ENDPOINT", "https://s3.filebase.com"),
		IPFSGatewayURL:   getEnv("IPFS_GATEWAY_URL", "https://ipfs.filebase.io/ipfs"),
		MaxUploadBytes:   getEnvInt64("MAX_UPLOAD_BYTES", DefaultMaxUploadBytes),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		zap.S().Warnw("invalid integer env var, using fallback",
			"key", key,
			"value", v,
		)
		return fallback
	}
	return n
}

// ErrorStatus is a useful function that will log, write http headers and body for a
// give message, status code and err
func ErrorStatus(message string, httpStatusCode int, w http.ResponseWriter, err error) {
	zap.S().With(err).Error(message)
	w.WriteHeader(httpStatusCode)
	w.Write([]byte(fmt.Sprintf(`{"response": "%s, %v"}`, message, err)))
	return
}
