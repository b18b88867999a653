package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/spf13/viper"

	"github.com/trustlens/trustlens/internal/app"
)

// EnvPrefix namespaces environment overrides, e.g. TRUSTLENS_SERVER_LISTEN_ADDR.
const EnvPrefix = "TRUSTLENS"

// keyDelimiter separates nested keys. Map keys such as image URLs contain
// dots, so the default "." cannot be used.
const keyDelimiter = "::"

// joinKey joins nested configuration key segments.
func joinKey(parts ...string) string {
	return strings.Join(parts, keyDelimiter)
}

// NewViper returns a viper instance that knows every configuration key,
// defaulted from app.DefaultConfig and overridable through the environment.
func NewViper() *viper.Viper {
	v := viper.NewWithOptions(viper.KeyDelimiter(keyDelimiter))
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(keyDelimiter, "_"))
	v.AutomaticEnv()
	registerDefaults(v, "", reflect.ValueOf(*app.DefaultConfig()))
	return v
}

// LoadConfig reads file, or trustlens.yaml from the working directory and
// ~/.config/trustlens when file is empty, then unmarshals into app.Config.
// A missing default config file is not an error.
func LoadConfig(v *viper.Viper, file string) (*app.Config, error) {
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("trustlens")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "trustlens"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &app.Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// registerDefaults walks a config struct by its mapstructure tags so that
// every leaf key has a default and can be overridden from the environment.
func registerDefaults(v *viper.Viper, prefix string, rv reflect.Value) {
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}
		name := strings.Split(field.Tag.Get("mapstructure"), ",")[0]
		if name == "" || name == "-" {
			continue
		}
		key := name
		if prefix != "" {
			key = joinKey(prefix, name)
		}

		fv := rv.Field(i)
		switch fv.Kind() {
		case reflect.Struct:
			registerDefaults(v, key, fv)
		case reflect.Pointer, reflect.Map, reflect.Slice:
			if fv.IsNil() {
				_ = v.BindEnv(key)
				continue
			}
			v.SetDefault(key, fv.Interface())
		default:
			v.SetDefault(key, fv.Interface())
		}
	}
}
