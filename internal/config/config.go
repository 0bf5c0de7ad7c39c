// Package config manages application settings through a Viper-backed engine
// with environment bindings and typed defaults.
package config

import (
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix namespaces every environment binding (ANIRELAY_SERVER_PORT etc).
const EnvPrefix = "anirelay"

// EnvKeyReplacer normalizes configuration keys into environment variable
// naming conventions.
var EnvKeyReplacer = strings.NewReplacer(".", "_")

// Configuration keys.
const (
	KeyPort            = "server.port"
	KeyManaged         = "server.managed"
	KeyDebug           = "log.debug"
	KeyDubPolicy       = "stream.dub_policy"
	KeyUpstreamBaseURL = "upstream.base_url"
	KeyUpstreamReferer = "upstream.referer"
	KeyUserAgent       = "upstream.user_agent"
)

// Default holds the factory default for every key.
var Default = map[string]interface{}{
	KeyPort:            5000,
	KeyManaged:         false,
	KeyDebug:           false,
	KeyDubPolicy:       "fetch",
	KeyUpstreamBaseURL: "https://hianime.to/ajax/v2/episode",
	KeyUpstreamReferer: "https://megacloud.club/",
	KeyUserAgent:       "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
}

// Config is the resolved settings snapshot handed to the rest of the process.
type Config struct {
	Port            int
	Managed         bool
	Debug           bool
	DubPolicy       string
	UpstreamBaseURL string
	UpstreamReferer string
	UserAgent       string
}

// Setup initializes defaults, environment bindings and the optional config
// file. A missing config file is not an error.
func Setup() error {
	viper.SetConfigName("anirelay")
	viper.SetConfigType("toml")
	viper.AddConfigPath(".")

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(EnvKeyReplacer)
	viper.AutomaticEnv()

	viper.SetTypeByDefaultValue(true)
	for name, value := range Default {
		viper.SetDefault(name, value)
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return err
	}

	return nil
}

// Load snapshots the current settings.
func Load() Config {
	return Config{
		Port:            viper.GetInt(KeyPort),
		Managed:         viper.GetBool(KeyManaged),
		Debug:           viper.GetBool(KeyDebug),
		DubPolicy:       viper.GetString(KeyDubPolicy),
		UpstreamBaseURL: viper.GetString(KeyUpstreamBaseURL),
		UpstreamReferer: viper.GetString(KeyUpstreamReferer),
		UserAgent:       viper.GetString(KeyUserAgent),
	}
}
