package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the configuration for the application.
type Config struct {
	Environment string `mapstructure:"environment"`
	Log         struct {
		Debug  bool   `mapstructure:"debug"`
		Format string `mapstructure:"format"`
	} `mapstructure:"log"`
	DB struct {
		Host     string `mapstructure:"host"`
		Port     int    `mapstructure:"port"`
		User     string `mapstructure:"user"`
		Password string `mapstructure:"password"`
		Name     string `mapstructure:"name"`
		SSLMode  string `mapstructure:"sslmode"`
	} `mapstructure:"db"`
	Auth struct {
		UseKeycloak bool   `mapstructure:"use_keycloak"`
		AuthURL     string `mapstructure:"auth_url"`
		Realm       string `mapstructure:"realm"`
		ClientID    string `mapstructure:"client_id"`
		Username    string `mapstructure:"username"`
		Password    string `mapstructure:"password"`
		Audience    string `mapstructure:"audience"`
	} `mapstructure:"auth"`
	Backend struct {
		URL               string `mapstructure:"url"`
		BasicAuthUser     string `mapstructure:"basic_auth_user"`
		BasicAuthPassword string `mapstructure:"basic_auth_password"`
	} `mapstructure:"backend"`
	Doctest struct {
		Python  string        `mapstructure:"python"`
		TempDir string        `mapstructure:"temp_dir"`
		Timeout time.Duration `mapstructure:"timeout"`
	} `mapstructure:"doctest"`
	Server struct {
		Addr string `mapstructure:"addr"`
	} `mapstructure:"server"`
	TLS struct {
		Enable    bool     `mapstructure:"enable"`
		CertFile  string   `mapstructure:"cert_file"`
		KeyFile   string   `mapstructure:"key_file"`
		Hostnames []string `mapstructure:"hostnames"`
	} `mapstructure:"tls"`
}

// LoadConfig loads the configuration from a file and the environment.
// An empty configFile searches for config.yaml in . and ./config; a missing
// file is not an error then, since every key can come from HD_* variables.
func LoadConfig(configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("HD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, err
			}
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	config.Auth.AuthURL = normalizeURL(config.Auth.AuthURL)
	config.Backend.URL = normalizeURL(config.Backend.URL)

	return &config, nil
}

// Every key gets a default so that AutomaticEnv overrides reach Unmarshal
// even when the key is absent from the file.
func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "PROD")
	v.SetDefault("log.debug", false)
	v.SetDefault("log.format", "console")
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "")
	v.SetDefault("db.password", "")
	v.SetDefault("db.name", "hetida_designer_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("auth.use_keycloak", false)
	v.SetDefault("auth.auth_url", "")
	v.SetDefault("auth.realm", "")
	v.SetDefault("auth.client_id", "")
	v.SetDefault("auth.username", "")
	v.SetDefault("auth.password", "")
	v.SetDefault("auth.audience", "")
	v.SetDefault("backend.url", "http://localhost:8080/api")
	v.SetDefault("backend.basic_auth_user", "")
	v.SetDefault("backend.basic_auth_password", "")
	v.SetDefault("doctest.python", "python3")
	v.SetDefault("doctest.temp_dir", "./transformations/code/")
	v.SetDefault("doctest.timeout", 60*time.Second)
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("tls.enable", false)
	v.SetDefault("tls.cert_file", "")
	v.SetDefault("tls.key_file", "")
}

// normalizeURL removes surrounding whitespace and any trailing slash so that
// paths can be appended without producing double slashes.
func normalizeURL(input string) string {
	return strings.TrimRight(strings.TrimSpace(input), "/")
}
