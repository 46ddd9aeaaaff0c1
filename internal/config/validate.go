package config

import "fmt"

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if c.Database.MaxConns <= 0 {
		return fmt.Errorf("database.max_conns must be > 0 (got %d)", c.Database.MaxConns)
	}
	if c.Database.MinConns < 0 || c.Database.MinConns > c.Database.MaxConns {
		return fmt.Errorf("database.min_conns must be in [0, max_conns] (got %d)", c.Database.MinConns)
	}

	if err := c.Ingest.validate(); err != nil {
		return fmt.Errorf("ingest: %w", err)
	}

	if c.Sources.RateLimit < 0 {
		return fmt.Errorf("sources.rate_limit must be >= 0 (got %v)", c.Sources.RateLimit)
	}
	if c.Sources.RateLimit > 0 && c.Sources.Burst < 1 {
		return fmt.Errorf("sources.burst must be >= 1 when rate_limit is set (got %d)", c.Sources.Burst)
	}

	if c.TMDb.Timeout < 0 {
		return fmt.Errorf("tmdb.timeout must be >= 0 (got %v)", c.TMDb.Timeout)
	}

	return nil
}

func (i *IngestConfig) validate() error {
	if i.MaxBatchSize <= 0 {
		return fmt.Errorf("max_batch_size must be > 0 (got %d)", i.MaxBatchSize)
	}
	if i.ChunkSize <= 0 || i.ChunkSize > i.MaxBatchSize {
		return fmt.Errorf("chunk_size must be in [1, %d] (got %d)", i.MaxBatchSize, i.ChunkSize)
	}
	if i.Concurrency <= 0 {
		return fmt.Errorf("concurrency must be > 0 (got %d)", i.Concurrency)
	}
	if i.BatchConcurrency < 0 {
		return fmt.Errorf("batch_concurrency must be >= 0 (got %d)", i.BatchConcurrency)
	}
	if i.WriteTimeout < 0 {
		return fmt.Errorf("write_timeout must be >= 0 (got %v)", i.WriteTimeout)
	}
	if i.BcryptCost < 4 || i.BcryptCost > 31 {
		return fmt.Errorf("bcrypt_cost must be in [4, 31] (got %d)", i.BcryptCost)
	}
	return nil
}
