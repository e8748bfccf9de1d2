package repository

// MemoryOption applies a configuration option to the MemoryLedger.
type MemoryOption func(*MemoryLedger)

// WithShardCount sets the number of lock shards.
func WithShardCount(count int) MemoryOption {
	return func(l *MemoryLedger) {
		if count > 0 {
			l.shardCount = count
		}
	}
}

// RedisOption applies a configuration option to the RedisLedger.
type RedisOption func(*RedisLedger)

// WithKeyPrefix sets the redis key prefix for ledger records.
func WithKeyPrefix(prefix string) RedisOption {
	return func(l *RedisLedger) {
		if prefix != "" {
			l.prefix = prefix
		}
	}
}
