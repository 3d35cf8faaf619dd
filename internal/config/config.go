package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	BackendFile     = "file"
	BackendPostgres = "postgres"
)

type Config struct {
	Host         string
	Port         int
	Debug        bool
	AllowOrigins string
	Backend      string
	NotesFile    string
	Database     Database
}

// Database holds the connection settings of the postgres backend.
type Database struct {
	Host     string
	Port     string
	Name     string
	Username string
	Password string
	Schema   string
	Document string
}

// DSN returns the pgx connection string for d.
func (d Database) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable&search_path=%s",
		d.Username, d.Password, d.Host, d.Port, d.Name, d.Schema)
}

// Load reads a .env file from the working directory, if one exists, and then
// builds the configuration from the environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("error loading .env: %w", err)
	}
	return FromEnv()
}

func FromEnv() (Config, error) {
	port, err := strconv.Atoi(getenv("PORT", "5001"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid PORT: %w", err)
	}
	debug, err := strconv.ParseBool(getenv("APP_DEBUG", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid APP_DEBUG: %w", err)
	}
	cfg := Config{
		Host:         getenv("HOST", "0.0.0.0"),
		Port:         port,
		Debug:        debug,
		AllowOrigins: getenv("CORS_ALLOW_ORIGINS", "*"),
		Backend:      strings.ToLower(getenv("NOTES_BACKEND", BackendFile)),
		NotesFile:    getenv("NOTES_FILE", "notes.json"),
		Database: Database{
			Host:     getenv("DB_HOST", "localhost"),
			Port:     getenv("DB_PORT", "5432"),
			Name:     getenv("DB_DATABASE", "jotter"),
			Username: getenv("DB_USERNAME", "jotter"),
			Password: os.Getenv("DB_PASSWORD"),
			Schema:   getenv("DB_SCHEMA", "public"),
			Document: getenv("NOTES_DOCUMENT", "notes"),
		},
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	switch c.Backend {
	case BackendFile, BackendPostgres:
	default:
		return fmt.Errorf("unknown notes backend %q", c.Backend)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if c.Backend == BackendFile && c.NotesFile == "" {
		return fmt.Errorf("notes file path is empty")
	}
	return nil
}

// Addr is the listen address in host:port form.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func getenv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}
