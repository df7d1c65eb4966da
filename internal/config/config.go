package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Supported inference backends.
const (
	ProviderWorkersAI = "workers-ai"
	ProviderOpenAI    = "openai"
)

// DefaultSystemPrompt is used when no prompt is configured.
const DefaultSystemPrompt = "You are a helpful, friendly assistant. Provide concise and accurate responses."

// Config is built once at startup and handed to every component that needs it.
// Nothing reads configuration after that.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Chat    ChatConfig    `mapstructure:"chat"`
	Backend BackendConfig `mapstructure:"backend"`
	Assets  AssetsConfig  `mapstructure:"assets"`
	Log     LogConfig     `mapstructure:"log"`
}

type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// ChatConfig holds the constants the chat handler works with.
type ChatConfig struct {
	// ModelID is the inference model every request is sent to.
	ModelID string `mapstructure:"model_id"`
	// SystemPrompt is prepended when a conversation carries no system message.
	SystemPrompt string `mapstructure:"system_prompt"`
	// SystemPromptFile, when set, replaces SystemPrompt with the file contents.
	SystemPromptFile string `mapstructure:"system_prompt_file"`
	// MaxTokens is the generation budget sent with every request.
	MaxTokens int `mapstructure:"max_tokens"`
}

// BackendConfig selects and authenticates the inference backend.
type BackendConfig struct {
	Provider  string        `mapstructure:"provider"`
	BaseURL   string        `mapstructure:"base_url"`
	AccountID string        `mapstructure:"account_id"`
	APIToken  string        `mapstructure:"api_token"`
	Gateway   GatewayConfig `mapstructure:"gateway"`
}

// GatewayConfig routes Workers AI calls through a Cloudflare AI Gateway.
// An empty ID means calls go straight to the Workers AI REST API.
type GatewayConfig struct {
	ID        string `mapstructure:"id"`
	BaseURL   string `mapstructure:"base_url"`
	SkipCache bool   `mapstructure:"skip_cache"`
	// CacheTTL is in seconds; zero leaves the gateway default.
	CacheTTL int `mapstructure:"cache_ttl"`
}

// AssetsConfig picks where static assets come from. At most one may be set;
// with neither the embedded front end is served.
type AssetsConfig struct {
	Dir    string `mapstructure:"dir"`
	Origin string `mapstructure:"origin"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

// Load reads configuration from defaults, an optional config file, a .env
// file and the environment, in increasing order of precedence.
func Load(path string) (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("server.port", "PORT", "SERVER_PORT")
	_ = v.BindEnv("backend.account_id", "BACKEND_ACCOUNT_ID", "CLOUDFLARE_ACCOUNT_ID")
	_ = v.BindEnv("backend.api_token", "BACKEND_API_TOKEN", "CLOUDFLARE_API_TOKEN")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "could not read config file %s", path)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, "could not decode config")
	}

	if cfg.Chat.SystemPromptFile != "" {
		prompt, err := os.ReadFile(cfg.Chat.SystemPromptFile)
		if err != nil {
			return nil, errors.Wrap(err, "could not read system prompt file")
		}
		cfg.Chat.SystemPrompt = string(prompt)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8787")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("chat.model_id", "@cf/meta/llama-3.3-70b-instruct-fp8-fast")
	v.SetDefault("chat.system_prompt", DefaultSystemPrompt)
	v.SetDefault("chat.system_prompt_file", "")
	v.SetDefault("chat.max_tokens", 1024)

	v.SetDefault("backend.provider", ProviderWorkersAI)
	v.SetDefault("backend.base_url", "")
	v.SetDefault("backend.account_id", "")
	v.SetDefault("backend.api_token", "")
	v.SetDefault("backend.gateway.id", "")
	v.SetDefault("backend.gateway.base_url", "https://gateway.ai.cloudflare.com/v1")
	v.SetDefault("backend.gateway.skip_cache", false)
	v.SetDefault("backend.gateway.cache_ttl", 0)

	v.SetDefault("assets.dir", "")
	v.SetDefault("assets.origin", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.file", "")
}

// Validate checks that everything needed to serve requests is present.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return errors.New("server port is required")
	}

	if strings.TrimSpace(c.Chat.ModelID) == "" {
		return errors.New("chat model id is required")
	}
	if strings.TrimSpace(c.Chat.SystemPrompt) == "" {
		return errors.New("chat system prompt must not be empty")
	}
	if c.Chat.MaxTokens <= 0 {
		return errors.Errorf("chat max tokens must be positive, got %d", c.Chat.MaxTokens)
	}

	switch c.Backend.Provider {
	case ProviderWorkersAI:
		if c.Backend.AccountID == "" {
			return errors.New("backend account id is required for workers-ai")
		}
		if c.Backend.APIToken == "" {
			return errors.New("backend api token is required for workers-ai")
		}
	case ProviderOpenAI:
		if c.Backend.APIToken == "" {
			return errors.New("backend api token is required for openai")
		}
	default:
		return errors.Errorf("unsupported backend provider: %q", c.Backend.Provider)
	}

	if c.Backend.Gateway.CacheTTL < 0 {
		return errors.New("gateway cache ttl must not be negative")
	}

	if c.Assets.Dir != "" && c.Assets.Origin != "" {
		return errors.New("set only one of assets dir and assets origin")
	}

	return nil
}
