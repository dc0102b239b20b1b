package wordquiz

import (
	"log"
	"os"
	"strconv"
)

// Config is the process configuration, read from the environment with
// defaults suitable for local development.
type Config struct {
	SecretKey string

	StorageRoot  string
	FontsDir     string
	DBPath       string
	TemplatesDir string

	// MaxContentLength bounds uploaded request bodies, in bytes.
	MaxContentLength int64

	// MaxSetsPerRequest is the per-request ceiling handed to the generator;
	// AbsoluteMaxSetsPerRequest is the hard cap it is clamped to. Zero or
	// negative MaxSetsPerRequest means "use the absolute cap".
	MaxSetsPerRequest         int
	AbsoluteMaxSetsPerRequest int

	AllowedUploadExts   map[string]bool
	AllowedDownloadExts map[string]bool
}

// LoadConfig reads the environment. Call after godotenv has had its chance.
func LoadConfig() Config {
	cfg := Config{
		SecretKey:                 envStr("SECRET_KEY", "change-me"),
		StorageRoot:               envStr("STORAGE_ROOT", "data"),
		FontsDir:                  envStr("FONTS_DIR", "fonts"),
		DBPath:                    envStr("DB_PATH", "wordquiz.db"),
		TemplatesDir:              envStr("TEMPLATES_DIR", "templates"),
		MaxContentLength:          16 << 20,
		MaxSetsPerRequest:         envInt("MAX_SETS_PER_REQUEST", 10),
		AbsoluteMaxSetsPerRequest: envInt("ABSOLUTE_MAX_SETS_PER_REQUEST", 100),
		AllowedUploadExts:         map[string]bool{".xlsx": true},
		AllowedDownloadExts:       map[string]bool{".pdf": true, ".xlsx": true, ".zip": true},
	}
	if cfg.MaxSetsPerRequest <= 0 || cfg.MaxSetsPerRequest > cfg.AbsoluteMaxSetsPerRequest {
		cfg.MaxSetsPerRequest = cfg.AbsoluteMaxSetsPerRequest
	}
	return cfg
}

// LogEnv prints the effective configuration, masking the secret.
func (c Config) LogEnv() {
	log.Printf("[ENV] STORAGE_ROOT: %s", c.StorageRoot)
	log.Printf("[ENV] FONTS_DIR: %s", c.FontsDir)
	log.Printf("[ENV] DB_PATH: %s", c.DBPath)
	log.Printf("[ENV] SECRET_KEY: %s", mask(c.SecretKey))
	log.Printf("[ENV] MAX_SETS_PER_REQUEST: %d", c.MaxSetsPerRequest)
	log.Printf("[ENV] ABSOLUTE_MAX_SETS_PER_REQUEST: %d", c.AbsoluteMaxSetsPerRequest)
}

func envStr(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}

func envInt(name string, fallback int) int {
	v := os.Getenv(name)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("[ENV] %s=%q is not an integer, using %d", name, v, fallback)
		return fallback
	}
	return n
}

func mask(s string) string {
	if s == "" {
		return "(unset)"
	}
	if len(s) <= 4 {
		return "..."
	}
	return s[:4] + "..."
}
