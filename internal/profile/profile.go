package profile

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pkg/errors"
)

// Profile is the configuration to start main server.
type Profile struct {
	// Mode can be "prod" or "dev" or "demo"
	Mode string
	// Addr is the binding address for server
	Addr string
	// Port is the binding port for server
	Port int
	// Data is the data directory
	Data string
	// DSN points to where insightink stores its own data
	DSN string
	// Driver is the database driver (sqlite or postgres)
	Driver string
	// Version is the current version of server
	Version string

	// AI Configuration
	AIEnabled        bool   // INSIGHTINK_AI_ENABLED
	AIBaseURL        string // INSIGHTINK_AI_BASE_URL (default: https://api.openai.com/v1)
	AIAPIKey         string // INSIGHTINK_AI_API_KEY
	AIEmbeddingModel string // INSIGHTINK_AI_EMBEDDING_MODEL (default: text-embedding-3-small)
	AIChatModel      string // INSIGHTINK_AI_CHAT_MODEL (default: gpt-4o-mini)
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// IsAIEnabled returns true if AI is enabled and an API key is configured.
func (p *Profile) IsAIEnabled() bool {
	return p.AIEnabled && p.AIAPIKey != ""
}

// getEnvOrDefault returns the environment variable value or the default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// FromEnv loads AI configuration from environment variables.
func (p *Profile) FromEnv() {
	p.AIEnabled = os.Getenv("INSIGHTINK_AI_ENABLED") == "true"
	p.AIBaseURL = getEnvOrDefault("INSIGHTINK_AI_BASE_URL", "https://api.openai.com/v1")
	p.AIAPIKey = os.Getenv("INSIGHTINK_AI_API_KEY")
	p.AIEmbeddingModel = getEnvOrDefault("INSIGHTINK_AI_EMBEDDING_MODEL", "text-embedding-3-small")
	p.AIChatModel = getEnvOrDefault("INSIGHTINK_AI_CHAT_MODEL", "gpt-4o-mini")
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		relativeDir := filepath.Join(filepath.Dir(os.Args[0]), dataDir)
		absDir, err := filepath.Abs(relativeDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	// Trim trailing \ or / in case user supplies
	dataDir = strings.TrimRight(dataDir, "\\/")
	if _, err := os.Stat(dataDir); err != nil {
		return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
	}
	return dataDir, nil
}

func (p *Profile) Validate() error {
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "demo"
	}

	if p.Driver != "sqlite" && p.Driver != "postgres" {
		return errors.Errorf("unknown db driver %q: only 'sqlite' and 'postgres' are supported", p.Driver)
	}

	if p.Mode == "prod" && p.Data == "" {
		if runtime.GOOS == "windows" {
			p.Data = filepath.Join(os.Getenv("ProgramData"), "insightink")
			if _, err := os.Stat(p.Data); os.IsNotExist(err) {
				if err := os.MkdirAll(p.Data, 0770); err != nil {
					slog.Error("failed to create data directory", slog.String("data", p.Data), slog.String("error", err.Error()))
					return err
				}
			}
		} else {
			p.Data = "/var/opt/insightink"
		}
	}

	dataDir, err := checkDataDir(p.Data)
	if err != nil {
		slog.Error("failed to check data dir", slog.String("data", dataDir), slog.String("error", err.Error()))
		return err
	}

	p.Data = dataDir
	if p.Driver == "sqlite" && p.DSN == "" {
		dbFile := fmt.Sprintf("insightink_%s.db", p.Mode)
		p.DSN = filepath.Join(dataDir, dbFile)
	}
	if p.Driver == "postgres" && p.DSN == "" {
		return errors.New("dsn is required for postgres driver")
	}

	return nil
}
