package config

const (
	defaultRetries       = 3
	defaultRetryInterval = "1s"
	defaultTimeout       = "60s"

	defaultEmulatorListen     = ":8085"
	defaultEmulatorIndexType  = "DENSE"
	defaultEmulatorDimension  = 256
	defaultEmulatorSimilarity = "COSINE"

	defaultEmbeddingProvider = "hashing"
	defaultEmbeddingTarget   = "http://localhost:11434"
	defaultEmbeddingModel    = "nomic-embed-text"

	defaultMCPListen = ":8086"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Transport: TransportConfig{
			Retries:       defaultRetries,
			RetryInterval: defaultRetryInterval,
			Timeout:       defaultTimeout,
		},
		Emulator: EmulatorConfig{
			Listen:            defaultEmulatorListen,
			IndexType:         defaultEmulatorIndexType,
			Dimension:         defaultEmulatorDimension,
			Similarity:        defaultEmulatorSimilarity,
			EmbeddingProvider: defaultEmbeddingProvider,
			EmbeddingTarget:   defaultEmbeddingTarget,
			EmbeddingModel:    defaultEmbeddingModel,
		},
		MCP: MCPConfig{
			Listen: defaultMCPListen,
		},
	}
}
