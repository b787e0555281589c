package config

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Config ...
type Config struct {
	Telegram struct {
		Token string `mapstructure:"token"`
	} `mapstructure:"telegram"`

	DB string `mapstructure:"db_dsn"`

	Service struct {
		AdminAddr string `mapstructure:"admin_addr"` // health + metrics, напр. ":8080"
	} `mapstructure:"service"`

	Jaeger struct {
		Host string `mapstructure:"host"`
		Port int    `mapstructure:"port"`
	} `mapstructure:"jaeger"`

	Bybit struct {
		RestURL string `mapstructure:"rest_url"`
		WsURL   string `mapstructure:"ws_url"`
		// сколько символов подписываем на один сокет
		BatchSize int `mapstructure:"batch_size"`
	} `mapstructure:"bybit"`

	OpenRouter struct {
		APIKey string `mapstructure:"api_key"`
		Model  string `mapstructure:"model"`
	} `mapstructure:"openrouter"`

	Engine struct {
		// дефолтный интервал свечей (нотация Bybit: "60" = 1h)
		DefaultInterval string `mapstructure:"default_interval"`
		// вес стратегий вне базовой таблицы агрегатора
		ResidualWeight float64 `mapstructure:"residual_weight"`
		// нижний порог шума для отдельных сигналов и для итоговой уверенности
		NoiseFloor float64 `mapstructure:"noise_floor"`
		// файл с пресетами параметров стратегий (yaml), опционален
		PresetsFile string `mapstructure:"presets_file"`
		// сколько символов в выдаче сигналов максимум
		MaxSignalsPerBatch int `mapstructure:"max_signals_per_batch"`
		// сколько символов отслеживаем (топ по обороту за сутки)
		WatchTopN int `mapstructure:"watch_top_n"`
	} `mapstructure:"engine"`

	HTTPTimeout time.Duration `mapstructure:"http_timeout"`
}

func NewConfig() (*Config, error) {
	v := viper.New()

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName(getenvDefault(v, "CONFIG_FILE", "values_local"))
	v.SetConfigType("yaml")
	v.AddConfigPath("configs")
	v.AddConfigPath(".")

	v.SetDefault("service.admin_addr", ":8080")
	v.SetDefault("bybit.rest_url", "https://api.bybit.com")
	v.SetDefault("bybit.ws_url", "wss://stream.bybit.com/v5/public/linear")
	v.SetDefault("bybit.batch_size", 100)
	v.SetDefault("openrouter.model", "openai/gpt-4o-mini")
	v.SetDefault("engine.default_interval", "60")
	v.SetDefault("engine.residual_weight", 0.15)
	v.SetDefault("engine.noise_floor", 0.3)
	v.SetDefault("engine.presets_file", "configs/strategies.yaml")
	v.SetDefault("engine.max_signals_per_batch", 10)
	v.SetDefault("engine.watch_top_n", 30)
	v.SetDefault("http_timeout", "10s")

	if err := v.ReadInConfig(); err != nil {
		// конфиг-файл опционален: дефолты + env достаточно
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "read config")
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}

	// секреты только через env
	if t := v.GetString("TELEGRAM_TOKEN"); t != "" {
		cfg.Telegram.Token = t
	}
	if dsn := v.GetString("DATABASE_DSN"); dsn != "" {
		cfg.DB = dsn
	}
	if key := v.GetString("OPENROUTER_API_KEY"); key != "" {
		cfg.OpenRouter.APIKey = key
	}

	return cfg, nil
}

func getenvDefault(v *viper.Viper, key, def string) string {
	if val := v.GetString(key); val != "" {
		return val
	}
	return def
}
