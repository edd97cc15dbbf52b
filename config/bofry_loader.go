package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	bofryconfig "github.com/Bofry/config"
)

// DefaultEnvPrefix prefixes every environment override
const DefaultEnvPrefix = "ANTOREE_"

// BofryLoader is a configuration loader using Bofry/config library.
// Sources are applied in order: defaults, YAML file, .env file,
// environment variables, command line arguments.
type BofryLoader struct {
	yamlFile       string
	dotEnvFile     string
	envPrefix      string
	useCommandArgs bool
	args           []string
}

// NewBofryLoader creates a new Bofry configuration loader
func NewBofryLoader() *BofryLoader {
	return &BofryLoader{
		envPrefix: DefaultEnvPrefix,
	}
}

// WithCommandArguments enables parsing --name=value arguments from os.Args
func (l *BofryLoader) WithCommandArguments() *BofryLoader {
	l.useCommandArgs = true
	return l
}

// WithArgs enables parsing --name=value arguments from args
func (l *BofryLoader) WithArgs(args []string) *BofryLoader {
	l.useCommandArgs = true
	l.args = args
	return l
}

// WithYAMLFile sets the YAML configuration file path
func (l *BofryLoader) WithYAMLFile(path string) *BofryLoader {
	l.yamlFile = path
	return l
}

// WithDotEnvFile sets the .env file path
func (l *BofryLoader) WithDotEnvFile(path string) *BofryLoader {
	l.dotEnvFile = path
	return l
}

// WithEnvPrefix sets the environment variable prefix
func (l *BofryLoader) WithEnvPrefix(prefix string) *BofryLoader {
	l.envPrefix = prefix
	return l
}

// Load loads configuration from various sources
func (l *BofryLoader) Load(cfg *Config) error {
	*cfg = *DefaultConfig()

	if l.useCommandArgs {
		l.applyCommandArgs()
	}

	// Bofry/config panics on errors, so we need to recover
	var loadErr error
	func() {
		defer func() {
			if r := recover(); r != nil {
				if err, ok := r.(error); ok {
					loadErr = err
				} else {
					loadErr = fmt.Errorf("configuration loading panic: %v", r)
				}
			}
		}()

		configService := bofryconfig.NewConfigurationService(cfg)

		// Missing files are skipped
		if l.yamlFile != "" {
			if _, err := os.Stat(l.yamlFile); err == nil {
				configService.LoadYamlFile(l.yamlFile)
			} else if !os.IsNotExist(err) {
				loadErr = fmt.Errorf("failed to check YAML file: %w", err)
				return
			}
		}

		if l.dotEnvFile != "" {
			if _, err := os.Stat(l.dotEnvFile); err == nil {
				configService.LoadDotEnvFile(l.dotEnvFile)
			} else if !os.IsNotExist(err) {
				loadErr = fmt.Errorf("failed to check .env file: %w", err)
				return
			}
		}

		configService.LoadEnvironmentVariables(strings.TrimSuffix(l.envPrefix, "_"))
	}()

	if loadErr != nil {
		return loadErr
	}

	// Bofry does not descend into nested structs for env vars; walk the
	// env tags ourselves so ANTOREE_API_TIMEOUT and friends apply.
	if err := loadEnv(cfg, l.envPrefix); err != nil {
		return fmt.Errorf("failed to load environment variables: %w", err)
	}

	return cfg.Validate()
}

// applyCommandArgs sets --name=value arguments as prefixed environment
// variables, e.g. --api-timeout=5s becomes ANTOREE_API_TIMEOUT.
func (l *BofryLoader) applyCommandArgs() {
	args := l.args
	if args == nil && len(os.Args) > 1 {
		args = os.Args[1:]
	}
	for _, arg := range args {
		if !strings.HasPrefix(arg, "--") {
			continue
		}
		kv := strings.SplitN(arg[2:], "=", 2)
		if len(kv) != 2 {
			continue
		}
		name := strings.ToUpper(strings.ReplaceAll(kv[0], "-", "_"))
		os.Setenv(l.envPrefix+name, kv[1])
	}
}

// Load reads configuration from yamlFile (optional), a .env file next to
// it when present, and ANTOREE_ environment variables.
func Load(yamlFile string) (*Config, error) {
	dotEnvFile := ""
	if yamlFile != "" {
		possibleDotEnv := filepath.Join(filepath.Dir(yamlFile), ".env")
		if _, err := os.Stat(possibleDotEnv); err == nil {
			dotEnvFile = possibleDotEnv
		}
	}

	cfg := &Config{}
	err := NewBofryLoader().
		WithYAMLFile(yamlFile).
		WithDotEnvFile(dotEnvFile).
		Load(cfg)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}
