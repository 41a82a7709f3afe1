package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
)

// Config aggregates every subsystem's configuration.
type Config struct {
	Server  ServerConfig
	AI      AIConfig
	Captcha CaptchaConfig
	Mail    MailConfig
	Store   StoreConfig
	Session SessionConfig
	Speech  SpeechConfig
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	captcha, err := loadCaptchaConfig()
	if err != nil {
		return nil, err
	}

	session, err := loadSessionConfig()
	if err != nil {
		return nil, err
	}

	speech, err := loadSpeechConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Server:  server,
		AI:      ai,
		Captcha: captcha,
		Mail:    loadMailConfig(),
		Store:   loadStoreConfig(),
		Session: session,
		Speech:  speech,
	}, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr           string
	AllowedOrigins []string
	RatePerMinute  int
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	addr := port
	if !strings.Contains(port, ":") {
		if strings.Contains(port, " ") {
			return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
		}
		addr = ":" + port
	}

	origins := splitList(os.Getenv("ALLOWED_ORIGINS"))
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173"}
	}

	rate := 60
	if override, err := parseOptionalIntEnv("RATE_LIMIT_PER_MINUTE"); err != nil {
		return ServerConfig{}, err
	} else if override != nil && *override > 0 {
		rate = *override
	}

	return ServerConfig{Addr: addr, AllowedOrigins: origins, RatePerMinute: rate}, nil
}

// AIConfig describes the completion provider.
type AIConfig struct {
	APIKey      string
	AccessKey   string
	SecretKey   string
	Model       string
	BaseURL     string
	Region      string
	Temperature *float64
	MaxTokens   int
	HistorySize int
}

// Enabled reports whether the required provider credentials are present.
func (c AIConfig) Enabled() bool {
	return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
}

// NewChatModel builds a model instance from the configuration.
func (c AIConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("completion provider credentials missing: set AI_API_KEY + AI_MODEL, or AK/SK")
	}

	var temperature *float32
	if c.Temperature != nil {
		val := float32(*c.Temperature)
		temperature = &val
	}

	maxTokens := c.MaxTokens

	cfg := &ark.ChatModelConfig{
		BaseURL:     c.BaseURL,
		Region:      c.Region,
		APIKey:      c.APIKey,
		AccessKey:   c.AccessKey,
		SecretKey:   c.SecretKey,
		Model:       c.Model,
		MaxTokens:   &maxTokens,
		Temperature: temperature,
	}

	return ark.NewChatModel(ctx, cfg)
}

func loadAIConfig() (AIConfig, error) {
	temperature, err := parseOptionalFloatEnv("AI_TEMPERATURE")
	if err != nil {
		return AIConfig{}, err
	}

	maxTokens := 500
	if override, err := parseOptionalIntEnv("AI_MAX_TOKENS"); err != nil {
		return AIConfig{}, err
	} else if override != nil && *override > 0 {
		maxTokens = *override
	}

	history := 10
	if override, err := parseOptionalIntEnv("AI_HISTORY_SIZE"); err != nil {
		return AIConfig{}, err
	} else if override != nil && *override > 0 {
		history = *override
	}

	return AIConfig{
		APIKey:      strings.TrimSpace(os.Getenv("AI_API_KEY")),
		AccessKey:   strings.TrimSpace(os.Getenv("AI_ACCESS_KEY")),
		SecretKey:   strings.TrimSpace(os.Getenv("AI_SECRET_KEY")),
		Model:       strings.TrimSpace(os.Getenv("AI_MODEL")),
		BaseURL:     getEnvOrDefault("AI_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
		Region:      getEnvOrDefault("AI_REGION", "cn-beijing"),
		Temperature: temperature,
		MaxTokens:   maxTokens,
		HistorySize: history,
	}, nil
}

// CaptchaConfig describes the bot-score verification service.
type CaptchaConfig struct {
	Secret    string
	VerifyURL string
	MinScore  float64
}

// Enabled reports whether verification is configured. Submissions are
// rejected when it is not; a missing secret must fail closed.
func (c CaptchaConfig) Enabled() bool {
	return c.Secret != ""
}

func loadCaptchaConfig() (CaptchaConfig, error) {
	minScore := 0.5
	if raw := strings.TrimSpace(os.Getenv("RECAPTCHA_MIN_SCORE")); raw != "" {
		val, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return CaptchaConfig{}, fmt.Errorf("invalid RECAPTCHA_MIN_SCORE value %q: %w", raw, err)
		}
		minScore = val
	}

	return CaptchaConfig{
		Secret:    strings.TrimSpace(os.Getenv("RECAPTCHA_SECRET_KEY")),
		VerifyURL: getEnvOrDefault("RECAPTCHA_VERIFY_URL", "https://www.google.com/recaptcha/api/siteverify"),
		MinScore:  minScore,
	}, nil
}

// MailConfig describes the transactional email provider.
type MailConfig struct {
	APIKey     string
	BaseURL    string
	From       string
	InternalTo string
	Fallback   string
}

// Enabled reports whether email dispatch is configured.
func (c MailConfig) Enabled() bool {
	return c.APIKey != ""
}

func loadMailConfig() MailConfig {
	return MailConfig{
		APIKey:     strings.TrimSpace(os.Getenv("RESEND_API_KEY")),
		BaseURL:    getEnvOrDefault("RESEND_BASE_URL", "https://api.resend.com"),
		From:       getEnvOrDefault("MAIL_FROM", "HYRX Studio <onboarding@resend.dev>"),
		InternalTo: getEnvOrDefault("MAIL_INTERNAL_TO", "hyrx.aistudio@gmail.com"),
		Fallback:   getEnvOrDefault("MAIL_FALLBACK", "hyrx.aistudio@gmail.com"),
	}
}

// StoreConfig describes the durable submission store.
type StoreConfig struct {
	SupabaseURL string
	SupabaseKey string
	Table       string
}

// Enabled reports whether the hosted store is configured. Persistence is
// best-effort; the pipeline runs without it.
func (c StoreConfig) Enabled() bool {
	return c.SupabaseURL != "" && c.SupabaseKey != ""
}

func loadStoreConfig() StoreConfig {
	return StoreConfig{
		SupabaseURL: strings.TrimSpace(os.Getenv("SUPABASE_URL")),
		SupabaseKey: strings.TrimSpace(os.Getenv("SUPABASE_SERVICE_KEY")),
		Table:       getEnvOrDefault("SUPABASE_CONTACT_TABLE", "contact_submissions"),
	}
}

// SessionConfig describes where conversation sessions live.
type SessionConfig struct {
	Driver        string // "memory" or "redis"
	RedisAddr     string
	RedisPassword string
	TTL           time.Duration
}

func loadSessionConfig() (SessionConfig, error) {
	driver := getEnvOrDefault("SESSION_STORE", "memory")
	if driver != "memory" && driver != "redis" {
		return SessionConfig{}, fmt.Errorf("invalid SESSION_STORE value %q: want memory or redis", driver)
	}

	ttl := 24 * time.Hour
	if override, err := parseOptionalIntEnv("SESSION_TTL_MINUTES"); err != nil {
		return SessionConfig{}, err
	} else if override != nil && *override > 0 {
		ttl = time.Duration(*override) * time.Minute
	}

	return SessionConfig{
		Driver:        driver,
		RedisAddr:     getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
		RedisPassword: strings.TrimSpace(os.Getenv("REDIS_PASSWORD")),
		TTL:           ttl,
	}, nil
}

// SpeechConfig describes the external speech engine.
type SpeechConfig struct {
	EngineURL    string
	AccessToken  string
	Language     string
	VoicePrefs   []string
	Sensitivity  float64
	SkipCapture  bool
	Timeout      int
	VoiceEnabled bool
	Enabled      bool
}

func loadSpeechConfig() (SpeechConfig, error) {
	timeout := 30
	if override, err := parseOptionalIntEnv("SPEECH_TIMEOUT"); err != nil {
		return SpeechConfig{}, err
	} else if override != nil && *override > 0 {
		timeout = *override
	}

	sensitivity := 1.5
	if raw := strings.TrimSpace(os.Getenv("SPEECH_SENSITIVITY")); raw != "" {
		val, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return SpeechConfig{}, fmt.Errorf("invalid SPEECH_SENSITIVITY value %q: %w", raw, err)
		}
		sensitivity = val
	}

	skipCapture, err := parseBoolEnv("SPEECH_SKIP_CAPTURE", false)
	if err != nil {
		return SpeechConfig{}, err
	}

	voiceEnabled, err := parseBoolEnv("SPEECH_VOICE_OUTPUT", true)
	if err != nil {
		return SpeechConfig{}, err
	}

	engineURL := strings.TrimSpace(os.Getenv("SPEECH_ENGINE_URL"))
	token := strings.TrimSpace(os.Getenv("SPEECH_ACCESS_TOKEN"))

	prefs := splitList(os.Getenv("SPEECH_VOICE_PREFS"))
	if len(prefs) == 0 {
		prefs = []string{"Google", "Samantha", "Daniel"}
	}

	return SpeechConfig{
		EngineURL:    engineURL,
		AccessToken:  token,
		Language:     getEnvOrDefault("SPEECH_LANGUAGE", "en-US"),
		VoicePrefs:   prefs,
		Sensitivity:  sensitivity,
		SkipCapture:  skipCapture,
		Timeout:      timeout,
		VoiceEnabled: voiceEnabled,
		Enabled:      engineURL != "" && token != "",
	}, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
