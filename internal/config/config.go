package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"greenleaf/internal/authz"
	"greenleaf/internal/menu"
)

const DefaultMaxCompletedRetained = 10

type ServerConfig struct {
	Port int    `yaml:"port"`
	Mode string `yaml:"mode"` // gin mode: debug, release, test
}

type DatabaseConfig struct {
	DSN string `yaml:"url"`
}

type TelegramConfig struct {
	Token           string  `yaml:"token"`
	OperatorChatIDs []int64 `yaml:"operator_chat_ids"`
	// Mode: "webhook" или "polling".
	Mode          string `yaml:"mode"`
	WebhookURL    string `yaml:"webhook_url"`
	WebhookSecret string `yaml:"webhook_secret"`
	Debug         bool   `yaml:"debug"`
}

type LeadsConfig struct {
	MaxCompletedRetained int  `yaml:"max_completed_retained"`
	CleanupOnStart       bool `yaml:"cleanup_on_start"`
}

type EmailConfig struct {
	Enabled      bool     `yaml:"enabled"`
	SMTPHost     string   `yaml:"smtp_host"`
	SMTPPort     int      `yaml:"smtp_port"`
	SMTPUser     string   `yaml:"smtp_user"`
	SMTPPassword string   `yaml:"smtp_password"`
	FromEmail    string   `yaml:"from_email"`
	To           []string `yaml:"to"`
}

type AMQPConfig struct {
	URL        string `yaml:"url"`
	Exchange   string `yaml:"exchange"`
	RoutingKey string `yaml:"routing_key"`
}

// AdminUser is an admin API account. Role is "admin" (default) or
// "viewer" (read-only); any other value fails Load.
type AdminUser struct {
	Username     string `yaml:"username"`
	PasswordHash string `yaml:"password_hash"`
	Role         string `yaml:"role"`
}

type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
	Admins    []AdminUser   `yaml:"admins"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type RateLimitConfig struct {
	Requests int           `yaml:"requests"`
	Window   time.Duration `yaml:"window"`
}

type ReportsConfig struct {
	FontPath string `yaml:"font_path"`
}

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Telegram  TelegramConfig  `yaml:"telegram"`
	Leads     LeadsConfig     `yaml:"leads"`
	Email     EmailConfig     `yaml:"email"`
	AMQP      AMQPConfig      `yaml:"amqp"`
	Auth      AuthConfig      `yaml:"auth"`
	Log       LogConfig       `yaml:"log"`
	CORS      CORSConfig      `yaml:"cors"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Reports   ReportsConfig   `yaml:"reports"`
	Menu      menu.Labels     `yaml:"menu"`
}

// Load читает YAML, поверх накладывает переменные окружения и
// заполняет значения по умолчанию. Отсутствие файла не ошибка, если
// всё задано через окружение.
func Load(path string) (*Config, error) {
	cfg := Config{
		Leads: LeadsConfig{CleanupOnStart: true},
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	if err := validateAdmins(cfg.Auth.Admins); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validateAdmins(admins []AdminUser) error {
	for _, a := range admins {
		if !authz.Valid(a.Role) {
			return fmt.Errorf("auth.admins: user %q has unknown role %q", a.Username, a.Role)
		}
	}
	return nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("BOT_TOKEN"); v != "" {
		cfg.Telegram.Token = v
	}
	if v := os.Getenv("CHAT_ID"); v != "" {
		ids, err := parseChatIDs(v)
		if err != nil {
			return fmt.Errorf("CHAT_ID: %w", err)
		}
		cfg.Telegram.OperatorChatIDs = ids
	}
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if v := os.Getenv("MAX_COMPLETED_RETAINED"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("MAX_COMPLETED_RETAINED: %w", err)
		}
		cfg.Leads.MaxCompletedRetained = n
	}
	if v := os.Getenv("AMQP_URL"); v != "" {
		cfg.AMQP.URL = v
	}
	return nil
}

func parseChatIDs(s string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 3001
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = "release"
	}
	if cfg.Telegram.Mode == "" {
		cfg.Telegram.Mode = "polling"
	}
	if cfg.Leads.MaxCompletedRetained <= 0 {
		cfg.Leads.MaxCompletedRetained = DefaultMaxCompletedRetained
	}
	if cfg.Email.SMTPPort == 0 {
		cfg.Email.SMTPPort = 587
	}
	if cfg.AMQP.Exchange == "" {
		cfg.AMQP.Exchange = "ex.leads"
	}
	if cfg.AMQP.RoutingKey == "" {
		cfg.AMQP.RoutingKey = "k.lead"
	}
	if cfg.Auth.TokenTTL == 0 {
		cfg.Auth.TokenTTL = 12 * time.Hour
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
	if len(cfg.CORS.AllowedOrigins) == 0 {
		cfg.CORS.AllowedOrigins = []string{"*"}
	}
	if cfg.RateLimit.Requests == 0 {
		cfg.RateLimit.Requests = 10
	}
	if cfg.RateLimit.Window == 0 {
		cfg.RateLimit.Window = time.Minute
	}
	if cfg.Reports.FontPath == "" {
		cfg.Reports.FontPath = "assets/fonts/DejaVuSans.ttf"
	}
	cfg.Menu = menu.DefaultLabels().Merge(cfg.Menu)
}

// FindAdmin ищет админа по логину.
func (c *Config) FindAdmin(username string) *AdminUser {
	for i := range c.Auth.Admins {
		if c.Auth.Admins[i].Username == username {
			return &c.Auth.Admins[i]
		}
	}
	return nil
}

// IsOperator: может ли чат управлять меню заявок.
func (c *Config) IsOperator(chatID int64) bool {
	for _, id := range c.Telegram.OperatorChatIDs {
		if id == chatID {
			return true
		}
	}
	return false
}
