package database

import (
	"fmt"
	"net/url"

	"github.com/rickgao/nse-data/internal/config"
)

// BuildConnString builds a PostgreSQL connection URL from config. Defaults
// are config.applyDefaults' job, not repeated here: an unset ssl_mode is
// simply omitted and pgx applies its own default.
func BuildConnString(cfg config.DBConfig) string {
	// URL-encode password to handle special characters
	escapedPassword := url.QueryEscape(cfg.Password)

	s := fmt.Sprintf("postgres://%s:%s@%s:%d/%s",
		cfg.User, escapedPassword, cfg.Host, cfg.Port, cfg.Name)
	if cfg.SSLMode != "" {
		s += "?sslmode=" + cfg.SSLMode
	}
	return s
}
