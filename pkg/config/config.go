// Package config loads runtime configuration for the multi-queue engine
// via viper, the way the teacher repo's own pkg/config does for its
// gRPC server.
package config

import "github.com/spf13/viper"

// Config is the top-level configuration for a multiqueue process.
type Config struct {
	Pool struct {
		Workers int `mapstructure:"workers"`
	} `mapstructure:"pool"`

	Engine struct {
		// Tuning names the per-key value store: "size" or "speed".
		// cmd/multiqueue does not read it; its -mode flag picks the tuning.
		Tuning              string `mapstructure:"tuning"`
		SpeedBufferCapacity int    `mapstructure:"speed_buffer_capacity"`
		ShutdownTimeoutS    int    `mapstructure:"shutdown_timeout_s"`
	} `mapstructure:"engine"`

	Log struct {
		Debug bool `mapstructure:"debug"`
	} `mapstructure:"log"`
}

// Default returns the configuration used when no config file is present.
func Default() Config {
	var c Config
	c.Pool.Workers = 16
	c.Engine.Tuning = "size"
	c.Engine.SpeedBufferCapacity = 256
	c.Engine.ShutdownTimeoutS = 5
	return c
}

// Load reads configuration named "config" from configPath (falling back
// to Default's values for anything the file doesn't set), the same
// AddConfigPath/SetConfigName/ReadInConfig sequence the teacher's
// InitConfig uses.
func Load(configPath string) (Config, error) {
	c := Default()

	v := viper.New()
	v.SetDefault("pool.workers", c.Pool.Workers)
	v.SetDefault("engine.tuning", c.Engine.Tuning)
	v.SetDefault("engine.speed_buffer_capacity", c.Engine.SpeedBufferCapacity)
	v.SetDefault("engine.shutdown_timeout_s", c.Engine.ShutdownTimeoutS)
	v.SetDefault("log.debug", c.Log.Debug)

	v.AddConfigPath(configPath)
	v.SetConfigName("config")

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); notFound {
			return c, nil
		}
		return c, err
	}

	if err := v.Unmarshal(&c); err != nil {
		return c, err
	}
	return c, nil
}
