// Package config loads rutas.yaml.
//
// Values are resolved by viper in the usual order: command-line flags,
// RUTAS_* environment variables, the config file, then defaults.
package config

import (
	"errors"
	"fmt"
	"go/token"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/abdul-hamid-achik/rutas/pkg/codegen"
)

// FileName is the config file written by `rutas init`.
const FileName = "rutas.yaml"

// Config is the project configuration.
type Config struct {
	// SourceDir is scanned for route directives, relative to the module root.
	SourceDir string `mapstructure:"source_dir" yaml:"source_dir" validate:"required"`

	// OutputDir receives dispatcher.go.
	OutputDir string `mapstructure:"output_dir" yaml:"output_dir" validate:"required"`

	// OutputPackage is the package name of dispatcher.go.
	OutputPackage string `mapstructure:"output_package" yaml:"output_package" validate:"required,goident"`

	// RuntimeImport is imported by generated files as "rutas".
	RuntimeImport string `mapstructure:"runtime_import" yaml:"runtime_import" validate:"required"`

	// Exclude lists directory names skipped while scanning.
	Exclude []string `mapstructure:"exclude" yaml:"exclude,omitempty" validate:"dive,required"`

	// Strict turns compile warnings into failures.
	Strict bool `mapstructure:"strict" yaml:"strict,omitempty"`

	OpenAPI  OpenAPI  `mapstructure:"openapi" yaml:"openapi"`
	Manifest Manifest `mapstructure:"manifest" yaml:"manifest"`
	Watch    Watch    `mapstructure:"watch" yaml:"watch"`

	// File is the config file that was read, empty when none was found.
	File string `mapstructure:"-" yaml:"-"`
}

// OpenAPI configures `rutas openapi`.
type OpenAPI struct {
	Title   string `mapstructure:"title" yaml:"title"`
	Version string `mapstructure:"version" yaml:"version"`
	Output  string `mapstructure:"output" yaml:"output"`
	Format  string `mapstructure:"format" yaml:"format" validate:"oneof=json yaml"`
}

// Manifest configures `rutas manifest`.
type Manifest struct {
	Output string `mapstructure:"output" yaml:"output"`
	Format string `mapstructure:"format" yaml:"format" validate:"oneof=json yaml sqlite"`
}

// Watch configures `rutas watch`.
type Watch struct {
	Debounce time.Duration `mapstructure:"debounce" yaml:"debounce" validate:"gte=0"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		SourceDir:     ".",
		OutputDir:     "internal/routes",
		OutputPackage: "routes",
		RuntimeImport: codegen.DefaultRuntimeImport,
		OpenAPI: OpenAPI{
			Title:   "API",
			Version: "1.0.0",
			Output:  "openapi.json",
			Format:  "json",
		},
		Manifest: Manifest{
			Output: "routes.json",
			Format: "json",
		},
		Watch: Watch{Debounce: 300 * time.Millisecond},
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("source_dir", d.SourceDir)
	v.SetDefault("output_dir", d.OutputDir)
	v.SetDefault("output_package", d.OutputPackage)
	v.SetDefault("runtime_import", d.RuntimeImport)
	v.SetDefault("exclude", []string{})
	v.SetDefault("strict", false)
	v.SetDefault("openapi.title", d.OpenAPI.Title)
	v.SetDefault("openapi.version", d.OpenAPI.Version)
	v.SetDefault("openapi.output", d.OpenAPI.Output)
	v.SetDefault("openapi.format", d.OpenAPI.Format)
	v.SetDefault("manifest.output", d.Manifest.Output)
	v.SetDefault("manifest.format", d.Manifest.Format)
	v.SetDefault("watch.debounce", d.Watch.Debounce)
}

// flagKeys maps command-line flag names to config keys.
var flagKeys = map[string]string{
	"source-dir":     "source_dir",
	"output-dir":     "output_dir",
	"output-package": "output_package",
	"runtime-import": "runtime_import",
	"strict":         "strict",
}

// Load reads the config. file names an explicit config file; when empty,
// rutas.yaml is looked up in dir and its absence is not an error. Flags in
// flags that were set on the command line override file values.
func Load(dir, file string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("RUTAS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, err
				}
			}
		}
	}

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(strings.TrimSuffix(FileName, filepath.Ext(FileName)))
		v.SetConfigType("yaml")
		v.AddConfigPath(dir)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.File = v.ConfigFileUsed()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("goident", func(fl validator.FieldLevel) bool {
		name := fl.Field().String()
		return token.IsIdentifier(name) && name != "_"
	})
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks field constraints and reports every violation.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		key := strings.TrimPrefix(fe.Namespace(), "Config.")
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, key+" is required")
		case "goident":
			msgs = append(msgs, fmt.Sprintf("%s must be a Go identifier, got %q", key, fe.Value()))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of [%s], got %q", key, fe.Param(), fe.Value()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s", key, fe.Tag()))
		}
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

// Write stores cfg as YAML at path. It refuses to overwrite an existing
// file unless force is set.
func Write(path string, cfg Config, force bool) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s: %w", path, os.ErrExist)
		}
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
