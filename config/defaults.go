package config

func DefaultConfig() *Config {
	return &Config{
		Compression: CompressionConfig{
			Typesize: 8,
			Codec:    "lz4",
			Level:    5,
			Filters:  []FilterConfig{{Kind: "shuffle"}},
			Threads:  1,
		},
		Decompression: DecompressionConfig{
			Threads: 1,
		},
		ChunkSize: ByteSize(256 * 1024), // 256KB
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Listen:  ":9090",
			Path:    "/metrics",
		},
	}
}
