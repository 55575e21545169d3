package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	DiceModeRandom = "random"
	DiceModeScript = "script"
)

type Config struct {
	LogLevel          string `yaml:"log-level" env-default:"info"`
	HTTPPort          string `yaml:"http-port" env-default:"9090"`
	Redis             Redis  `yaml:"redis"`
	SQLiteStoragePath string `yaml:"sqlite-storage-path" env-default:"monopoly.db"`
	Dice              Dice   `yaml:"dice"`
}

type Redis struct {
	Host string `yaml:"host" env-default:"localhost"`
	Port string `yaml:"port" env-default:"6379"`
}

// Dice selects the dice source: "random" for pseudo-random rolls, "script"
// for deterministic replay of the pairs in script-file.
type Dice struct {
	Mode       string `yaml:"mode" env-default:"random"`
	ScriptFile string `yaml:"script-file"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		panic(fmt.Errorf("unable to load config file: %w", err))
	}

	return config
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
