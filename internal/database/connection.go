package database

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// DB is the global database connection
var DB *sqlx.DB

// Connect establishes a connection to the database. DB_TYPE selects the
// driver: "postgres" connects via DATABASE_URL, anything else uses a local
// SQLite file.
func Connect() error {
	if DBType() == "postgres" {
		return connectPostgres()
	}
	return connectSQLite()
}

// DBType returns the configured database driver name.
func DBType() string {
	dbType := os.Getenv("DB_TYPE")
	if dbType == "" {
		dbType = "sqlite"
	}
	return dbType
}

func connectPostgres() error {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		return fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %v", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)

	DB = db
	return initializeSchema()
}

func connectSQLite() error {
	// Create data directory if it doesn't exist
	dataDir := os.Getenv("DATA_DIR")
	if dataDir == "" {
		dataDir = "data"
	}
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %v", err)
	}

	dbPath := filepath.Join(dataDir, "preptrack.db")
	db, err := sqlx.Connect("sqlite3", dbPath)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %v", err)
	}

	// Enable foreign keys
	if _, err = db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %v", err)
	}

	// SQLite doesn't support multiple writers
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	DB = db
	return initializeSchema()
}

// Close closes the database connection
func Close() error {
	if DB != nil {
		return DB.Close()
	}
	return nil
}

// initializeSchema creates necessary tables if they don't exist
func initializeSchema() error {
	statements := sqliteSchema
	if DB.DriverName() == "postgres" {
		statements = postgresSchema
	}
	for _, stmt := range statements {
		if _, err := DB.Exec(stmt); err != nil {
			return fmt.Errorf("failed to initialize schema: %v", err)
		}
	}
	return nil
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		telegram_id INTEGER UNIQUE NOT NULL,
		username TEXT DEFAULT '',
		first_name TEXT DEFAULT '',
		last_name TEXT DEFAULT '',
		notification_hour INTEGER DEFAULT 9,
		notification_enabled BOOLEAN DEFAULT true,
		is_admin BOOLEAN DEFAULT false,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS topics (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		category TEXT NOT NULL,
		importance_score REAL NOT NULL DEFAULT 0,
		parent_id INTEGER,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (parent_id) REFERENCES topics(id),
		UNIQUE(name, category)
	)`,
	`CREATE TABLE IF NOT EXISTS goals (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		target_role TEXT NOT NULL,
		target_companies TEXT DEFAULT '[]',
		timeline_days INTEGER NOT NULL,
		hours_per_day INTEGER NOT NULL,
		start_date TIMESTAMP NOT NULL,
		w_dsa REAL NOT NULL DEFAULT 0.25,
		w_apti REAL NOT NULL DEFAULT 0.25,
		w_cs REAL NOT NULL DEFAULT 0.25,
		w_dev REAL NOT NULL DEFAULT 0.25,
		difficulty_curve TEXT NOT NULL DEFAULT 'linear',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (user_id) REFERENCES users(id)
	)`,
	`CREATE TABLE IF NOT EXISTS topic_stats (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		topic_id INTEGER NOT NULL,
		attempts_total INTEGER NOT NULL DEFAULT 0,
		correct_total INTEGER NOT NULL DEFAULT 0,
		avg_time_sec INTEGER NOT NULL DEFAULT 0,
		mastery_score REAL NOT NULL DEFAULT 0,
		last_practiced_at TIMESTAMP,
		next_revision_date TIMESTAMP,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (user_id) REFERENCES users(id),
		FOREIGN KEY (topic_id) REFERENCES topics(id),
		UNIQUE(user_id, topic_id)
	)`,
	`CREATE TABLE IF NOT EXISTS attempts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		topic_id INTEGER NOT NULL,
		task_id TEXT,
		difficulty TEXT NOT NULL,
		correct BOOLEAN NOT NULL,
		time_taken_sec INTEGER NOT NULL,
		confidence INTEGER NOT NULL DEFAULT 3,
		mistake_tag TEXT DEFAULT '',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (user_id) REFERENCES users(id),
		FOREIGN KEY (topic_id) REFERENCES topics(id)
	)`,
	`CREATE TABLE IF NOT EXISTS plan_tasks (
		id TEXT PRIMARY KEY,
		user_id INTEGER NOT NULL,
		date TIMESTAMP NOT NULL,
		type TEXT NOT NULL,
		topic_id INTEGER,
		title TEXT NOT NULL,
		seq INTEGER NOT NULL DEFAULT 0,
		duration_min INTEGER NOT NULL,
		difficulty TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		created_by TEXT NOT NULL DEFAULT 'system',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (user_id) REFERENCES users(id),
		FOREIGN KEY (topic_id) REFERENCES topics(id)
	)`,
	`CREATE TABLE IF NOT EXISTS readiness_snapshots (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		date TIMESTAMP NOT NULL,
		overall REAL NOT NULL DEFAULT 0,
		dsa REAL NOT NULL DEFAULT 0,
		apti REAL NOT NULL DEFAULT 0,
		cs REAL NOT NULL DEFAULT 0,
		dev REAL NOT NULL DEFAULT 0,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (user_id) REFERENCES users(id),
		UNIQUE(user_id, date)
	)`,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		telegram_id BIGINT UNIQUE NOT NULL,
		username TEXT DEFAULT '',
		first_name TEXT DEFAULT '',
		last_name TEXT DEFAULT '',
		notification_hour INTEGER DEFAULT 9,
		notification_enabled BOOLEAN DEFAULT true,
		is_admin BOOLEAN DEFAULT false,
		created_at TIMESTAMPTZ DEFAULT NOW(),
		updated_at TIMESTAMPTZ DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS topics (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		category TEXT NOT NULL,
		importance_score DOUBLE PRECISION NOT NULL DEFAULT 0,
		parent_id BIGINT REFERENCES topics(id),
		created_at TIMESTAMPTZ DEFAULT NOW(),
		updated_at TIMESTAMPTZ DEFAULT NOW(),
		UNIQUE(name, category)
	)`,
	`CREATE TABLE IF NOT EXISTS goals (
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT NOT NULL REFERENCES users(id),
		target_role TEXT NOT NULL,
		target_companies TEXT DEFAULT '[]',
		timeline_days INTEGER NOT NULL,
		hours_per_day INTEGER NOT NULL,
		start_date TIMESTAMPTZ NOT NULL,
		w_dsa DOUBLE PRECISION NOT NULL DEFAULT 0.25,
		w_apti DOUBLE PRECISION NOT NULL DEFAULT 0.25,
		w_cs DOUBLE PRECISION NOT NULL DEFAULT 0.25,
		w_dev DOUBLE PRECISION NOT NULL DEFAULT 0.25,
		difficulty_curve TEXT NOT NULL DEFAULT 'linear',
		created_at TIMESTAMPTZ DEFAULT NOW(),
		updated_at TIMESTAMPTZ DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS topic_stats (
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT NOT NULL REFERENCES users(id),
		topic_id BIGINT NOT NULL REFERENCES topics(id),
		attempts_total INTEGER NOT NULL DEFAULT 0,
		correct_total INTEGER NOT NULL DEFAULT 0,
		avg_time_sec INTEGER NOT NULL DEFAULT 0,
		mastery_score DOUBLE PRECISION NOT NULL DEFAULT 0,
		last_practiced_at TIMESTAMPTZ,
		next_revision_date TIMESTAMPTZ,
		created_at TIMESTAMPTZ DEFAULT NOW(),
		updated_at TIMESTAMPTZ DEFAULT NOW(),
		UNIQUE(user_id, topic_id)
	)`,
	`CREATE TABLE IF NOT EXISTS attempts (
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT NOT NULL REFERENCES users(id),
		topic_id BIGINT NOT NULL REFERENCES topics(id),
		task_id TEXT,
		difficulty TEXT NOT NULL,
		correct BOOLEAN NOT NULL,
		time_taken_sec INTEGER NOT NULL,
		confidence INTEGER NOT NULL DEFAULT 3,
		mistake_tag TEXT DEFAULT '',
		created_at TIMESTAMPTZ DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS plan_tasks (
		id TEXT PRIMARY KEY,
		user_id BIGINT NOT NULL REFERENCES users(id),
		date TIMESTAMPTZ NOT NULL,
		type TEXT NOT NULL,
		topic_id BIGINT REFERENCES topics(id),
		title TEXT NOT NULL,
		seq INTEGER NOT NULL DEFAULT 0,
		duration_min INTEGER NOT NULL,
		difficulty TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		created_by TEXT NOT NULL DEFAULT 'system',
		created_at TIMESTAMPTZ DEFAULT NOW(),
		updated_at TIMESTAMPTZ DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS readiness_snapshots (
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT NOT NULL REFERENCES users(id),
		date TIMESTAMPTZ NOT NULL,
		overall DOUBLE PRECISION NOT NULL DEFAULT 0,
		dsa DOUBLE PRECISION NOT NULL DEFAULT 0,
		apti DOUBLE PRECISION NOT NULL DEFAULT 0,
		cs DOUBLE PRECISION NOT NULL DEFAULT 0,
		dev DOUBLE PRECISION NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ DEFAULT NOW(),
		UNIQUE(user_id, date)
	)`,
}
