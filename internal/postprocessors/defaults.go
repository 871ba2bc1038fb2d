package postprocessors

import (
	"github.com/finsight-labs/finsight-cli/internal/core/ports/driven"
	"github.com/finsight-labs/finsight-cli/internal/postprocessors/chunker"
)

// RegisterDefaults registers the built-in processors. Call during
// application start-up before building pipelines from config.
func RegisterDefaults(r *Registry) {
	r.Register("chunker", buildChunker)
}

// buildChunker creates the boundary-aware chunker from generic config.
// Supported keys: chunk_size (characters per chunk, default 1000) and
// overlap (overlapping characters between chunks, default 100).
func buildChunker(cfg map[string]any) (driven.PostProcessor, error) {
	var opts []chunker.Option

	if size := configInt(cfg, "chunk_size"); size > 0 {
		opts = append(opts, chunker.WithChunkSize(size))
	}
	if overlap := configInt(cfg, "overlap"); overlap > 0 {
		opts = append(opts, chunker.WithOverlap(overlap))
	}

	return chunker.New(opts...), nil
}

// configInt extracts an int from a generic config map, tolerating the
// int, int64, and float64 values TOML and JSON parsing produce.
func configInt(cfg map[string]any, key string) int {
	switch v := cfg[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}
