package database

import (
	"database/sql"
	"fmt"
	"log"
	"time"
)

const (
	connectAttempts = 10
	connectBackoff  = 2 * time.Second
)

type Config struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

func (c Config) dsn() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.User, c.Password, c.Host, c.Port, c.DBName)
}

// NewPostgresDB opens a connection pool and waits for the database to accept
// pings, which covers the window where Postgres boots alongside the service.
func NewPostgresDB(cfg Config) (*sql.DB, error) {
	dsn := cfg.dsn()

	var lastErr error
	for attempt := 1; attempt <= connectAttempts; attempt++ {
		db, err := sql.Open("postgres", dsn)
		if err == nil {
			err = db.Ping()
		}
		if err == nil {
			db.SetMaxOpenConns(25)
			db.SetMaxIdleConns(25)
			db.SetConnMaxLifetime(5 * time.Minute)
			log.Printf("Database connected on attempt %d.", attempt)
			return db, nil
		}

		lastErr = err
		if db != nil {
			db.Close()
		}
		log.Printf("Database not ready (attempt %d/%d): %v", attempt, connectAttempts, err)
		time.Sleep(connectBackoff)
	}

	return nil, fmt.Errorf("failed to connect to database: %w", lastErr)
}
