// Package pgstore backs the valuation engine with PostgreSQL. It implements
// invest.DataSource for reads and exposes upsert primitives for the
// ingestion side (market data, FX rates, fund compositions).
package pgstore

import (
	"cmp"
	"fmt"
	"os"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// Config holds the postgres connection settings.
type Config struct {
	Host     string
	Port     string
	Username string
	Password string
	DBName   string
	SSLMode  string
}

// NewConfigFromEnv reads the connection settings from POSTGRES_* variables.
func NewConfigFromEnv() *Config {
	return &Config{
		Host:     os.Getenv("POSTGRES_HOST"),
		Port:     os.Getenv("POSTGRES_PORT"),
		Username: os.Getenv("POSTGRES_USERNAME"),
		Password: os.Getenv("POSTGRES_PASSWORD"),
		DBName:   os.Getenv("POSTGRES_DB_NAME"),
		SSLMode:  os.Getenv("POSTGRES_SSL_MODE"),
	}
}

// Setup fills unset fields with local-development defaults.
func (c *Config) Setup() *Config {
	c.Host = cmp.Or(c.Host, "localhost")
	c.Port = cmp.Or(c.Port, "5432")
	c.Username = cmp.Or(c.Username, "postgres")
	c.Password = cmp.Or(c.Password, "postgres")
	c.DBName = cmp.Or(c.DBName, "invest")
	c.SSLMode = cmp.Or(c.SSLMode, "disable")
	return c
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s dbname=%s password=%s sslmode=%s",
		c.Host, c.Port, c.Username, c.DBName, c.Password, c.SSLMode,
	)
}

// Store is a postgres-backed data source.
type Store struct {
	db  *sqlx.DB
	log *zap.SugaredLogger
}

// Open connects to postgres and pings it.
func Open(cfg *Config, log *zap.SugaredLogger) (*Store, error) {
	db, err := sqlx.Connect("postgres", cfg.String())
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	log.Infow("connected to postgres", "host", cfg.Host, "db", cfg.DBName)
	return &Store{db: db, log: log}, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error { return s.db.Close() }
