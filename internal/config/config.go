package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	DefaultPort         = 9000
	DefaultPostsDir     = "blog"
	DefaultProjectsFile = "projects.yaml"
	DefaultStaticDir    = "static"
	DefaultImagePrefix  = "/static/images/blog/"
	DefaultDBPath       = ":memory:"
	DefaultDBDriver     = "sqlite"
	DefaultLogLevel     = "info"

	envPrefix = "WEBSITE"
	// configEnvVar names the config file when --config is not given.
	configEnvVar = "WEBSITE_CONFIG"
)

type Config struct {
	SiteName     string `mapstructure:"site_name"`
	Port         int    `mapstructure:"port" validate:"min=1,max=65535"`
	PostsDir     string `mapstructure:"posts_dir" validate:"required"`
	ProjectsFile string `mapstructure:"projects_file"`
	ResumeLink   string `mapstructure:"resume_link" validate:"omitempty,url"`
	StaticDir    string `mapstructure:"static_dir"`
	ImagePrefix  string `mapstructure:"image_prefix"`
	ExportDir    string `mapstructure:"export_dir"`

	DB struct {
		Path   string `mapstructure:"path" validate:"required"`
		Driver string `mapstructure:"driver" validate:"oneof=sqlite sqlite3"`
	} `mapstructure:"db"`

	GitHub struct {
		Token string `mapstructure:"token"`
	} `mapstructure:"github"`

	Log struct {
		Level  string `mapstructure:"level" validate:"oneof=trace debug info warn error fatal panic disabled"`
		Pretty bool   `mapstructure:"pretty"`
	} `mapstructure:"log"`

	// File is the config file that was read, if any.
	File string `mapstructure:"-"`
}

// LogLevel returns the configured zerolog level.
func (c *Config) LogLevel() zerolog.Level {
	level, err := zerolog.ParseLevel(c.Log.Level)
	if err != nil {
		return zerolog.InfoLevel
	}
	return level
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("site_name", "")
	v.SetDefault("port", DefaultPort)
	v.SetDefault("posts_dir", DefaultPostsDir)
	v.SetDefault("projects_file", DefaultProjectsFile)
	v.SetDefault("resume_link", "")
	v.SetDefault("static_dir", DefaultStaticDir)
	v.SetDefault("image_prefix", DefaultImagePrefix)
	v.SetDefault("export_dir", "")
	v.SetDefault("db.path", DefaultDBPath)
	v.SetDefault("db.driver", DefaultDBDriver)
	v.SetDefault("github.token", "")
	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("log.pretty", false)
}

func newFlagSet() *pflag.FlagSet {
	flags := pflag.NewFlagSet("website", pflag.ContinueOnError)
	flags.String("config", "", "path to the config file (defaults to $"+configEnvVar+" or ./config.yaml)")
	flags.Int("port", DefaultPort, "port to listen on")
	flags.String("posts-dir", DefaultPostsDir, "directory containing blog posts")
	flags.String("db-path", DefaultDBPath, "sqlite database path")
	flags.String("export-dir", "", "write the site as static HTML to this directory and exit")
	return flags
}

// flagKeys maps command line flags to config keys.
var flagKeys = map[string]string{
	"port":       "port",
	"posts-dir":  "posts_dir",
	"db-path":    "db.path",
	"export-dir": "export_dir",
}

// Load builds the configuration from, in increasing precedence: defaults, the config file,
// WEBSITE_* environment variables and command line flags.
func Load(args []string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	flags := newFlagSet()
	if err := flags.Parse(args); err != nil {
		return nil, fmt.Errorf("failed to parse flags: %w", err)
	}
	for flag, key := range flagKeys {
		if err := v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			return nil, fmt.Errorf("failed to bind flag %s: %w", flag, err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	path, _ := flags.GetString("config")
	if path == "" {
		path = os.Getenv(configEnvVar)
	}

	if err := readConfigFile(v, path); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.File = v.ConfigFileUsed()

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// readConfigFile reads path when given. Otherwise an optional config.yaml in the working
// directory is read.
func readConfigFile(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		return nil
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}
