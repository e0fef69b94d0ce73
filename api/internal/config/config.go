// Application configuration: config/config.yaml (optional), .env and environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	OCR      OCRConfig      `mapstructure:"ocr"`
	Gemini   GeminiConfig   `mapstructure:"gemini"`
	Yandex   YandexConfig   `mapstructure:"yandex"`
	DeepL    DeepLConfig    `mapstructure:"deepl"`
	Telegram TelegramConfig `mapstructure:"telegram"`
}

type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type HTTPConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

type OCRConfig struct {
	Provider        string `mapstructure:"provider"`
	CredentialsFile string `mapstructure:"credentials_file"`
	Endpoint        string `mapstructure:"endpoint"`
}

type GeminiConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

type YandexConfig struct {
	OAuthToken string   `mapstructure:"oauth_token"`
	FolderID   string   `mapstructure:"folder_id"`
	Languages  []string `mapstructure:"languages"`
}

type DeepLConfig struct {
	APIKey     string `mapstructure:"api_key"`
	APIURL     string `mapstructure:"api_url"`
	TargetLang string `mapstructure:"target_lang"`
}

type TelegramConfig struct {
	BotToken string `mapstructure:"bot_token"`
}

func (t TelegramConfig) Enabled() bool { return strings.TrimSpace(t.BotToken) != "" }

var defaults = map[string]any{
	"server.port":             "8080",
	"server.mode":             "release",
	"server.request_timeout":  "60s",
	"server.shutdown_timeout": "10s",
	"log.level":               "info",
	"log.format":              "json",
	"http.timeout":            "60s",
	"ocr.provider":            "vision",
	"ocr.credentials_file":    "",
	"ocr.endpoint":            "",
	"gemini.api_key":          "",
	"gemini.model":            "gemini-2.5-flash",
	"yandex.oauth_token":      "",
	"yandex.folder_id":        "",
	"yandex.languages":        []string{"ja", "ko", "zh"},
	"deepl.api_key":           "",
	"deepl.api_url":           "https://api-free.deepl.com/v2/translate",
	"deepl.target_lang":       "PT-BR",
	"telegram.bot_token":      "",
}

// extra env names accepted on top of the SECTION_KEY form
var aliases = map[string][]string{
	"server.port":          {"PORT"},
	"ocr.credentials_file": {"GOOGLE_APPLICATION_CREDENTIALS"},
}

// Load reads .env (if present), then config.yaml from the given dirs (default ./config),
// then environment variables, which win.
func Load(dirs ...string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	if len(dirs) == 0 {
		dirs = []string{"./config"}
	}
	for _, d := range dirs {
		v.AddConfigPath(d)
	}
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	for k, def := range defaults {
		v.SetDefault(k, def)
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for k, names := range aliases {
		envs := append([]string{strings.ToUpper(strings.ReplaceAll(k, ".", "_"))}, names...)
		if err := v.BindEnv(append([]string{k}, envs...)...); err != nil {
			return nil, err
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	c.normalize()

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) normalize() {
	c.OCR.Provider = strings.ToLower(strings.TrimSpace(c.OCR.Provider))
	c.Server.Mode = strings.ToLower(strings.TrimSpace(c.Server.Mode))
	c.DeepL.TargetLang = strings.ToUpper(strings.TrimSpace(c.DeepL.TargetLang))

	// YANDEX_LANGUAGES=ja,ko arrives as a single element
	var langs []string
	for _, l := range c.Yandex.Languages {
		langs = append(langs, strings.FieldsFunc(l, func(r rune) bool { return r == ',' || r == ' ' })...)
	}
	c.Yandex.Languages = langs
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.DeepL.APIKey) == "" {
		return errors.New("DEEPL_API_KEY is required")
	}
	if c.DeepL.TargetLang == "" {
		return errors.New("DEEPL_TARGET_LANG must not be empty")
	}

	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("unknown server mode %q; use debug | release | test", c.Server.Mode)
	}

	switch c.OCR.Provider {
	case "vision":
	case "gemini":
		if strings.TrimSpace(c.Gemini.APIKey) == "" {
			return errors.New("GEMINI_API_KEY is required for the gemini ocr provider")
		}
	case "yandex":
		if strings.TrimSpace(c.Yandex.OAuthToken) == "" || strings.TrimSpace(c.Yandex.FolderID) == "" {
			return errors.New("YANDEX_OAUTH_TOKEN and YANDEX_FOLDER_ID are required for the yandex ocr provider")
		}
	default:
		return fmt.Errorf("unknown ocr provider %q; use vision | gemini | yandex", c.OCR.Provider)
	}
	return nil
}
