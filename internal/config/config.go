package config

import (
	"os"
	"sync"

	"github.com/fsnotify/fsnotify"
	viper "github.com/spf13/viper"
)

type Config struct {
	ServerPort      string `mapstructure:"SERVER_PORT"`
	DbName          string `mapstructure:"POSTGRES_DB"`
	DbHost          string `mapstructure:"POSTGRES_HOST"`
	DbPort          string `mapstructure:"POSTGRES_PORT"`
	DbUser          string `mapstructure:"POSTGRES_USER"`
	DbPas           string `mapstructure:"POSTGRES_PASSWORD"`
	RedisAddr       string `mapstructure:"REDIS_ADDR"`
	RedisPassword   string `mapstructure:"REDIS_PASSWORD"`
	RedisDB         int    `mapstructure:"REDIS_DB"`
	KafkaBrokers    string `mapstructure:"KAFKA_BROKERS"`
	KafkaOrderTopic string `mapstructure:"KAFKA_ORDER_TOPIC"`
	LogLevel        string `mapstructure:"LOG_LEVEL"`
}

/*
Load 讀取 .env 再疊上環境變數
單純回傳錯誤  由外部決定要不要Fatal, 畢竟有可能有替代方案
*/
func Load(path string) (*Config, error) {
	cf := &Config{}
	viper.SetConfigFile(path)
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		// .env 不存在時退回純環境變數
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
			return nil, err
		}
	}

	if err := viper.Unmarshal(cf); err != nil {
		return nil, err
	}
	return cf, nil
}

func setDefaults() {
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("POSTGRES_HOST", "localhost")
	viper.SetDefault("POSTGRES_PORT", "5432")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("KAFKA_ORDER_TOPIC", "order-status-events")
	viper.SetDefault("LOG_LEVEL", "info")
}

/*
Watch 設置viper watch 與 onConfigChange
reload 失敗時保留舊設定, onReload 只在成功時被呼叫
*/
func Watch(onReload func(*Config)) {
	var mu sync.Mutex
	viper.WatchConfig()
	viper.OnConfigChange(func(e fsnotify.Event) {
		mu.Lock()
		defer mu.Unlock()
		cf := &Config{}
		if err := viper.Unmarshal(cf); err == nil {
			onReload(cf)
		}
	})
}
