package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

// Configはアプリ全体の設定
type Config struct {
	Port string // サーバーポート（8080）

	StoreDriver string // postgres / memory
	DatabaseURL string // 空ならPOSTGRES_*から組み立てる
	RedisURL    string // 空ならカートとフィードはプロセス内

	JWTSecret      string        // JWT署名シークレット
	AccessTokenTTL time.Duration // 1シフト分（12h）

	TxMaxAttempts int            // 直列化失敗時の再試行回数
	Location      *time.Location // 日次集計のタイムゾーン

	LogLevel  string
	LogFormat string
	LogOutput string
	LogFile   string

	CORSOrigins []string

	//初回起動用の管理者
	AdminEmail    string
	AdminPassword string
	AdminName     string

	GoEnv string // dev/prod
}

// Loadは環境変数
func Load() (Config, error) {
	attempts, err := atoiDefault("TX_MAX_ATTEMPTS", 5)
	if err != nil {
		return Config{}, err
	}
	ttl, err := durationDefault("ACCESS_TOKEN_TTL", 12*time.Hour)
	if err != nil {
		return Config{}, err
	}
	loc, err := time.LoadLocation(getenv("STORE_TIMEZONE", "Local"))
	if err != nil {
		return Config{}, fmt.Errorf("STORE_TIMEZONE is invalid: %w", err)
	}

	cfg := Config{
		Port: getenv("PORT", "8080"),

		StoreDriver: getenv("STORE_DRIVER", StoreDriverPostgres),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    os.Getenv("REDIS_URL"),

		JWTSecret:      os.Getenv("JWT_SECRET"),
		AccessTokenTTL: ttl,

		TxMaxAttempts: attempts,
		Location:      loc,

		LogLevel:  getenv("LOG_LEVEL", "info"),
		LogFormat: getenv("LOG_FORMAT", "json"),
		LogOutput: getenv("LOG_OUTPUT", "stdout"),
		LogFile:   getenv("LOG_FILE", "logs/app.log"),

		CORSOrigins: splitList(os.Getenv("CORS_ORIGINS")),

		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		AdminName:     getenv("ADMIN_NAME", "Administrador"),

		GoEnv: getenv("GO_ENV", "dev"),
	}

	//必須チェック
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}
	if len(cfg.JWTSecret) < 16 {
		return Config{}, fmt.Errorf("JWT_SECRET must be at least 16 characters")
	}
	switch cfg.StoreDriver {
	case StoreDriverPostgres, StoreDriverMemory:
	default:
		return Config{}, fmt.Errorf("STORE_DRIVER must be %q or %q", StoreDriverPostgres, StoreDriverMemory)
	}
	if cfg.TxMaxAttempts < 1 {
		return Config{}, fmt.Errorf("TX_MAX_ATTEMPTS must be >= 1")
	}
	if (cfg.AdminEmail == "") != (cfg.AdminPassword == "") {
		return Config{}, fmt.Errorf("ADMIN_EMAIL and ADMIN_PASSWORD must be set together")
	}

	return cfg, nil
}

func getenv(key string, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func atoiDefault(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return i, nil
}

func durationDefault(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be duration: %w", key, err)
	}
	return d, nil
}

func splitList(v string) []string {
	out := []string{}
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
