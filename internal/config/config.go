// Package config loads docxfill service settings from YAML, .env files and
// environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Storage backends
const (
	BackendFS   = "fs"
	BackendS3   = "s3"
	BackendHTTP = "http"
)

// Config - service settings
type Config struct {
	Listen          string        `yaml:"listen"`
	Storage         Storage       `yaml:"storage"`
	TemplatesPrefix string        `yaml:"templates_prefix"`
	GeneratedPrefix string        `yaml:"generated_prefix"`
	RenderTimeout   time.Duration `yaml:"render_timeout"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes"`
	Debug           bool          `yaml:"debug"`
}

// Storage - where templates are read from and documents written to
type Storage struct {
	Backend string `yaml:"backend"`

	// fs
	Dir string `yaml:"dir"`

	// s3 compatible object storage
	Endpoint string `yaml:"endpoint"`
	Region   string `yaml:"region"`
	Bucket   string `yaml:"bucket"`
	Key      string `yaml:"key"`
	Secret   string `yaml:"secret"`

	// http, templates only
	TemplateURL string `yaml:"template_url"`
}

// Default - settings used when nothing else is given
func Default() Config {
	return Config{
		Listen: ":8080",
		Storage: Storage{
			Backend: BackendFS,
			Dir:     "./data",
			Region:  "us-east-1",
		},
		TemplatesPrefix: "templates/",
		GeneratedPrefix: "generated/",
		RenderTimeout:   30 * time.Second,
		MaxBodyBytes:    10 << 20,
	}
}

// Load - defaults, then YAML file (optional), then environment.
// envFile is loaded into environment first when given.
func Load(path, envFile string) (Config, error) {
	cfg := Default()

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return cfg, fmt.Errorf("config: load env %s: %w", envFile, err)
		}
	}

	if path != "" {
		buf, err := os.ReadFile(path) // #nosec G304 - config path is given by operator
		if err != nil {
			return cfg, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := Parse(buf, &cfg); err != nil {
			return cfg, fmt.Errorf("config: %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// Parse - YAML over already filled config, missing keys keep their values
func Parse(buf []byte, cfg *Config) error {
	if len(strings.TrimSpace(string(buf))) == 0 {
		return nil
	}
	if err := yaml.Unmarshal(buf, cfg); err != nil {
		return fmt.Errorf("parse yaml: %w", err)
	}
	return nil
}

func (cfg *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(name); ok && v != "" {
			*dst = v
		}
	}

	str("SPACES_ENDPOINT", &cfg.Storage.Endpoint)
	str("SPACES_KEY", &cfg.Storage.Key)
	str("SPACES_SECRET", &cfg.Storage.Secret)
	str("SPACES_REGION", &cfg.Storage.Region)
	if v, ok := lookup("SPACES_BUCKET"); ok && v != "" {
		cfg.Storage.Bucket = v
		cfg.Storage.Backend = BackendS3
	}
	str("DOCXFILL_TEMPLATE_URL", &cfg.Storage.TemplateURL)

	str("DOCXFILL_LISTEN", &cfg.Listen)
	str("DOCXFILL_STORAGE", &cfg.Storage.Backend)
	str("DOCXFILL_DATA_DIR", &cfg.Storage.Dir)

	if v, ok := lookup("DOCXFILL_DEBUG"); ok && v != "" {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: DOCXFILL_DEBUG: %w", err)
		}
		cfg.Debug = debug
	}
	return nil
}

// Validate - backend specific requirements
func (cfg Config) Validate() error {
	var errs []error

	if cfg.Listen == "" {
		errs = append(errs, errors.New("listen address is empty"))
	}
	if cfg.RenderTimeout <= 0 {
		errs = append(errs, errors.New("render_timeout must be positive"))
	}
	if cfg.MaxBodyBytes <= 0 {
		errs = append(errs, errors.New("max_body_bytes must be positive"))
	}

	st := cfg.Storage
	switch st.Backend {
	case BackendFS:
		if st.Dir == "" {
			errs = append(errs, errors.New("storage.dir is required for fs backend"))
		}
	case BackendS3:
		if st.Endpoint == "" {
			errs = append(errs, errors.New("storage.endpoint (SPACES_ENDPOINT) is required for s3 backend"))
		}
		if st.Bucket == "" {
			errs = append(errs, errors.New("storage.bucket (SPACES_BUCKET) is required for s3 backend"))
		}
		if st.Key == "" || st.Secret == "" {
			errs = append(errs, errors.New("storage.key and storage.secret (SPACES_KEY, SPACES_SECRET) are required for s3 backend"))
		}
	case BackendHTTP:
		errs = append(errs, errors.New("http backend is read-only, use it with storage.template_url"))
	default:
		errs = append(errs, fmt.Errorf("unknown storage backend %q", st.Backend))
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}
