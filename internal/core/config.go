package core

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/notecourier/notecourier/pkg/resync"
	"github.com/pelletier/go-toml/v2"
)

// How many parent directories to traverse before considering a directory as not a vault
const maxDepth = 10

// Environment variable read when a forum block names no api_key_env
const defaultAPIKeyEnv = "DISCOURSE_API_KEY"

// Default .ntc/config content
const DefaultConfig = `
[[forums]]
name = "main"
base_url = "https://forum.example.com"
username = "username"
# The API key is read from this environment variable (a .env file at the
# vault root is loaded too).
api_key_env = "DISCOURSE_API_KEY"

[publish]
default_category = 1
default_tags = []
use_remote_url = false
rewrite_media_links = false
convert_highlights = true
remove_top_headings = false
ignored_headings = []
force_filename_title = false
`

var (
	// Lazy-load configuration and ensure a single read
	configOnce      resync.Once
	configSingleton *Config
)

// Note: Fields must be public for toml package to unmarshall
type ConfigFile struct {
	Forums  []ConfigForum `toml:"forums"`
	Publish ConfigPublish `toml:"publish"`
}

type ConfigForum struct {
	Name      string `toml:"name"`
	BaseURL   string `toml:"base_url"`
	Username  string `toml:"username"`
	APIKeyEnv string `toml:"api_key_env"`
}

// APIKey resolves the forum's API key from the environment.
func (f *ConfigForum) APIKey() string {
	env := f.APIKeyEnv
	if env == "" {
		env = defaultAPIKeyEnv
	}
	return os.Getenv(env)
}

type ConfigPublish struct {
	DefaultCategory    int      `toml:"default_category"`
	DefaultTags        []string `toml:"default_tags"`
	UseRemoteURL       bool     `toml:"use_remote_url"`
	RewriteMediaLinks  bool     `toml:"rewrite_media_links"`
	ConvertHighlights  bool     `toml:"convert_highlights"`
	RemoveTopHeadings  bool     `toml:"remove_top_headings"`
	IgnoredHeadings    []string `toml:"ignored_headings"`
	ForceFilenameTitle bool     `toml:"force_filename_title"`
}

type Config struct {
	// Vault root (the directory containing .ntc/)
	RootDirectory string

	// .ntc/config content
	ConfigFile ConfigFile
}

func CurrentConfig() *Config {
	configOnce.Do(func() {
		var err error
		configSingleton, err = ReadConfigFromDirectory(currentHome())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Unable to read current configuration: %v\n", err)
			os.Exit(1)
		}
		if configSingleton == nil {
			fmt.Fprintln(os.Stderr, "fatal: not a NoteCourier vault (or any of the parent directories): .ntc")
			os.Exit(1)
		}
	})
	return configSingleton
}

// SetVerboseLevel overrides the default verbose level
func (c *Config) SetVerboseLevel(level VerboseLevel) *Config {
	CurrentLogger().SetVerboseLevel(level)
	return c
}

// ActiveForum returns the forum block matching the given name,
// or the first configured forum when the name is empty.
func (c *Config) ActiveForum(name string) (*ConfigForum, error) {
	if len(c.ConfigFile.Forums) == 0 {
		return nil, fmt.Errorf("no forum configured in .ntc/config")
	}
	if name == "" {
		return &c.ConfigFile.Forums[0], nil
	}
	for i := range c.ConfigFile.Forums {
		if c.ConfigFile.Forums[i].Name == name {
			return &c.ConfigFile.Forums[i], nil
		}
	}
	return nil, fmt.Errorf("no forum named %q in .ntc/config", name)
}

// HistoryPath returns the location of the local publish history.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.RootDirectory, ".ntc", "history.db")
}

func currentHome() string {
	// Supports overriding the root directory mainly for testing purposes.
	if path, ok := os.LookupEnv("NTC_HOME"); ok {
		abspath, err := filepath.Abs(path)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Failed to evaluate $NTC_HOME")
			os.Exit(1)
		}
		if _, err := os.Stat(abspath); os.IsNotExist(err) {
			fmt.Fprintln(os.Stderr, "Path in $NTC_HOME undefined")
			os.Exit(1)
		}
		return abspath
	}

	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to determine current directory: %v\n", err)
		os.Exit(1)
	}
	return cwd
}

// ReadConfigFromDirectory loads the configuration by searching for a .ntc
// directory in the given directory or any of its parents.
func ReadConfigFromDirectory(path string) (*Config, error) {
	currentPath := path
	for depth := 0; depth < maxDepth; depth++ {
		configPath := filepath.Join(currentPath, ".ntc", "config")
		if _, err := os.Stat(configPath); err == nil {
			content, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("unable to read %q: %w", configPath, err)
			}
			configFile, err := parseConfigFile(string(content))
			if err != nil {
				return nil, fmt.Errorf("unable to parse %q: %w", configPath, err)
			}

			// Forum API keys commonly live in a .env file at the vault root
			_ = godotenv.Load(filepath.Join(currentPath, ".env"))

			return &Config{
				RootDirectory: currentPath,
				ConfigFile:    *configFile,
			}, nil
		}

		parentPath := filepath.Dir(currentPath)
		if parentPath == currentPath {
			break
		}
		currentPath = parentPath
	}
	return nil, nil
}

// InitConfigFromDirectory creates a default .ntc/config in the given directory.
func InitConfigFromDirectory(path string) (*Config, error) {
	ntcDir := filepath.Join(path, ".ntc")
	if err := os.MkdirAll(ntcDir, 0755); err != nil {
		return nil, err
	}
	configPath := filepath.Join(ntcDir, "config")
	if _, err := os.Stat(configPath); err == nil {
		return nil, fmt.Errorf("%q already exists", configPath)
	}
	if err := os.WriteFile(configPath, []byte(DefaultConfig), 0644); err != nil {
		return nil, err
	}
	return ReadConfigFromDirectory(path)
}

func parseConfigFile(content string) (*ConfigFile, error) {
	result := new(ConfigFile)
	if err := toml.Unmarshal([]byte(content), result); err != nil {
		return nil, err
	}
	return result, nil
}
