package postgres

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Config describes how to reach a PostgreSQL history store.
type Config struct {
	Host     string `yaml:"host"`
	User     string `yaml:"user"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
	DSN      string `yaml:"dsn"`
}

// BuildDSN returns the connection string lib/pq expects.
func (c *Config) BuildDSN() string {
	if c.DSN != "" {
		return c.DSN
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
}

// ParseDSN populates c's fields from an existing DSN.
func (c *Config) ParseDSN(dsn string) error {
	c.DSN = dsn

	u, err := url.Parse(dsn)
	if err != nil {
		return fmt.Errorf("invalid postgres DSN: %w", err)
	}
	if u.Scheme != "postgres" && u.Scheme != "postgresql" {
		return fmt.Errorf("invalid postgres scheme: %s", u.Scheme)
	}

	c.Host = u.Hostname()
	if portStr := u.Port(); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil {
			c.Port = port
		}
	}
	if u.User != nil {
		c.User = u.User.Username()
		if password, ok := u.User.Password(); ok {
			c.Password = password
		}
	}
	if len(u.Path) > 1 {
		c.DBName = strings.TrimPrefix(u.Path, "/")
	}
	if sslMode := u.Query().Get("sslmode"); sslMode != "" {
		c.SSLMode = sslMode
	}
	return nil
}

// Validate checks c for obvious misconfiguration.
func (c *Config) Validate() error {
	if c.DSN != "" {
		return c.ParseDSN(c.DSN)
	}
	if c.Host == "" {
		return fmt.Errorf("postgres host is required")
	}
	if c.User == "" {
		return fmt.Errorf("postgres user is required")
	}
	if c.DBName == "" {
		return fmt.Errorf("postgres database name is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("postgres port must be between 1 and 65535, got %d", c.Port)
	}
	if c.SSLMode == "" {
		c.SSLMode = "disable"
	}

	validModes := []string{"disable", "require", "verify-ca", "verify-full"}
	valid := false
	for _, m := range validModes {
		if c.SSLMode == m {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("invalid SSL mode: %s (valid: %s)", c.SSLMode, strings.Join(validModes, ", "))
	}
	return nil
}
