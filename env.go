package pgdb

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// ProductionMode is the NODE_ENV value that turns on TLS.
const ProductionMode = "production"

type envVars struct {
	User      string `envconfig:"DB_USER"`
	Host      string `envconfig:"DB_HOST"`
	Name      string `envconfig:"DB_NAME"`
	Password  string `envconfig:"DB_PASSWORD"`
	Port      string `envconfig:"DB_PORT"`
	Mode      string `envconfig:"NODE_ENV"`
	TLSVerify bool   `envconfig:"DB_TLS_VERIFY" default:"false"`
}

// ConfigFromEnv builds a Config from DB_* variables and NODE_ENV.
//
// Call it once at process start. An empty or unset DB_PORT means 5432.
func ConfigFromEnv() (Config, error) {
	var vars envVars
	if err := envconfig.Process("", &vars); err != nil {
		return Config{}, fmt.Errorf("pgdb: read environment: %w", err)
	}

	port := DefaultPort
	if raw := strings.TrimSpace(vars.Port); raw != "" {
		n, err := strconv.ParseUint(raw, 10, 16)
		if err != nil || n == 0 {
			return Config{}, fmt.Errorf("pgdb: invalid DB_PORT %q", raw)
		}
		port = uint16(n)
	}

	production := vars.Mode == ProductionMode

	return Config{
		Host:               vars.Host,
		Port:               port,
		Database:           vars.Name,
		User:               vars.User,
		Password:           vars.Password,
		RequireTLS:         production,
		InsecureSkipVerify: production && !vars.TLSVerify,
	}, nil
}

// LoadDotEnv copies variables from .env (or the given files) into the
// process environment. Variables that are already set win. Missing files
// are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("pgdb: load %s: %w", p, err)
		}
	}
	return nil
}
