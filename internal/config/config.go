package config

import (
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	Config struct {
		Database
		Import
		Storage
		Sync
	}

	Database struct {
		Path string // sqlite file, used when URL is empty
		URL  string // postgres DSN, takes precedence over Path
	}
	Import struct {
		InputDir string
		Workers  int
	}
	Storage struct {
		URL    string // blob store base URL; uploads are disabled when empty
		Bucket string
		Token  string
	}
	Sync struct {
		Enabled  bool
		Schedule string // Cron format: "0 * * * *" = hourly
	}
)

func NewConfig() *Config {
	// Optional .env for local development; real deployments set env vars.
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("database_url", "")
	v.SetDefault("input_dir", DefaultInputDir)
	v.SetDefault("import_workers", DefaultImportWorkers)
	v.SetDefault("storage_url", "")
	v.SetDefault("storage_bucket", DefaultStorageBucket)
	v.SetDefault("storage_token", "")
	v.SetDefault("sync_enabled", false)
	v.SetDefault("sync_schedule", "0 * * * *") // Hourly at :00

	return &Config{
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
			URL:  v.GetString("DATABASE_URL"),
		},
		Import: Import{
			InputDir: v.GetString("INPUT_DIR"),
			Workers:  v.GetInt("IMPORT_WORKERS"),
		},
		Storage: Storage{
			URL:    v.GetString("STORAGE_URL"),
			Bucket: v.GetString("STORAGE_BUCKET"),
			Token:  v.GetString("STORAGE_TOKEN"),
		},
		Sync: Sync{
			Enabled:  v.GetBool("SYNC_ENABLED"),
			Schedule: v.GetString("SYNC_SCHEDULE"),
		},
	}
}
