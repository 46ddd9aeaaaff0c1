package config

import "time"

// Config is the root application configuration.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Log      LogConfig      `yaml:"log"`
	Ingest   IngestConfig   `yaml:"ingest"`
	Sources  SourcesConfig  `yaml:"sources"`
	TMDb     TMDbConfig     `yaml:"tmdb"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"                env-required:"true"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"25"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"5"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

// IngestConfig controls how ingestors write to the database.
type IngestConfig struct {
	ChunkSize        int           `yaml:"chunk_size"        env:"INGEST_CHUNK_SIZE"        env-default:"500"`
	MaxBatchSize     int           `yaml:"max_batch_size"    env:"INGEST_MAX_BATCH_SIZE"    env-default:"1000"`
	Concurrency      int           `yaml:"concurrency"       env:"INGEST_CONCURRENCY"       env-default:"8"`
	BatchConcurrency int           `yaml:"batch_concurrency" env:"INGEST_BATCH_CONCURRENCY" env-default:"4"`
	WriteTimeout     time.Duration `yaml:"write_timeout"     env:"INGEST_WRITE_TIMEOUT"     env-default:"30s"`
	HydrateSlugs     bool          `yaml:"hydrate_slugs"     env:"INGEST_HYDRATE_SLUGS"     env-default:"true"`
	BcryptCost       int           `yaml:"bcrypt_cost"       env:"INGEST_BCRYPT_COST"       env-default:"10"`
	SkipKnownPersons bool          `yaml:"skip_known_persons" env:"INGEST_SKIP_KNOWN_PERSONS" env-default:"false"`
}

// SourcesConfig locates upstream data and paces reads from it.
type SourcesConfig struct {
	IMDbDir    string  `yaml:"imdb_dir"    env:"SOURCES_IMDB_DIR"    env-default:"./data/imdb"`
	UsersFile  string  `yaml:"users_file"  env:"SOURCES_USERS_FILE"`
	TMDbFile   string  `yaml:"tmdb_file"   env:"SOURCES_TMDB_FILE"`
	RateLimit  float64 `yaml:"rate_limit"  env:"SOURCES_RATE_LIMIT"  env-default:"0"`
	Burst      int     `yaml:"burst"       env:"SOURCES_BURST"       env-default:"1"`
	MaxRecords int     `yaml:"max_records" env:"SOURCES_MAX_RECORDS" env-default:"0"`
}

// TMDbConfig holds TMDb API access. An empty Token disables the API.
type TMDbConfig struct {
	Token   string        `yaml:"token"    env:"TMDB_TOKEN"`
	BaseURL string        `yaml:"base_url" env:"TMDB_BASE_URL" env-default:"https://api.themoviedb.org/3"`
	Timeout time.Duration `yaml:"timeout"  env:"TMDB_TIMEOUT"  env-default:"10s"`
}
