package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds process-wide settings. It is read from the environment once at startup
// and treated as immutable.
type Config struct {
	Port string
	Mode string

	GeminiAPIKey     string
	GeminiModel      string
	GeneratorBackend string

	AuthMode string
	Firebase FirebaseConfig
	// DevSubject is the fallback subject for AUTH_MODE=dev requests without X-Debug-Subject.
	DevSubject string

	StaticDir          string
	CORSAllowedOrigins []string

	RoadmapsPerMinute int

	OTelEnabled  bool
	OTelEndpoint string
}

const (
	ModeDevelopment = "development"
	ModeProduction  = "production"

	AuthModeFirebase = "firebase"
	AuthModeDev      = "dev"

	GeneratorGemini = "gemini"
	GeneratorStatic = "static"
)

// NormalizeMode maps NODE_ENV/APP_ENV values onto ModeDevelopment or ModeProduction.
// "dev" is accepted as shorthand; anything unrecognized is production.
func NormalizeMode(v string) string {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case ModeDevelopment, "dev":
		return ModeDevelopment
	}
	return ModeProduction
}

// IsDevelopment reports whether internal error detail may be echoed to clients.
func (c Config) IsDevelopment() bool { return c.Mode == ModeDevelopment }

// GeminiConfigured is a presence check only; no liveness probe is made.
func (c Config) GeminiConfigured() bool { return c.GeminiAPIKey != "" }

func Load() (Config, error) {
	cfg := Config{
		Port:               getenv("PORT", "3000"),
		Mode:               NormalizeMode(getenv("NODE_ENV", getenv("APP_ENV", ModeProduction))),
		GeminiAPIKey:       strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		GeminiModel:        getenv("GEMINI_MODEL", "gemini-1.5-flash"),
		GeneratorBackend:   strings.ToLower(getenv("GENERATOR_BACKEND", GeneratorGemini)),
		AuthMode:           strings.ToLower(getenv("AUTH_MODE", AuthModeFirebase)),
		DevSubject:         strings.TrimSpace(os.Getenv("DEV_SUBJECT")),
		StaticDir:          getenv("STATIC_DIR", "public"),
		CORSAllowedOrigins: splitList(getenv("CORS_ALLOWED_ORIGINS", "*")),
		RoadmapsPerMinute:  0,
		OTelEnabled:        parseBool(os.Getenv("OTEL_ENABLED")),
		OTelEndpoint:       strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")),
	}

	switch cfg.GeneratorBackend {
	case GeneratorGemini, GeneratorStatic:
	default:
		return Config{}, fmt.Errorf("GENERATOR_BACKEND must be %q or %q, got %q", GeneratorGemini, GeneratorStatic, cfg.GeneratorBackend)
	}

	if v := os.Getenv("RATE_LIMIT_ROADMAPS_PER_MINUTE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return Config{}, fmt.Errorf("RATE_LIMIT_ROADMAPS_PER_MINUTE must be a non-negative integer, got %q", v)
		}
		cfg.RoadmapsPerMinute = n
	}

	switch cfg.AuthMode {
	case AuthModeDev:
	case AuthModeFirebase:
		fb, err := LoadFirebaseConfigFromEnv()
		if err != nil {
			return Config{}, fmt.Errorf("invalid auth config: %w", err)
		}
		cfg.Firebase = fb
	default:
		return Config{}, fmt.Errorf("AUTH_MODE must be %q or %q, got %q", AuthModeFirebase, AuthModeDev, cfg.AuthMode)
	}

	return cfg, nil
}

func getenv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
