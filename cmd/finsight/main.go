// Command finsight is a question-answering assistant over financial
// documents and media: PDFs, images, and YouTube videos are ingested
// into a local vector corpus and queried with retrieval-augmented
// generation.
package main

import (
	"context"
	"fmt"
	"os"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
	vision "cloud.google.com/go/vision/v2/apiv1"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"github.com/joho/godotenv"
	ytdl "github.com/kkdai/youtube/v2"
	"google.golang.org/api/option"

	embeddingollama "github.com/finsight-labs/finsight-cli/internal/adapters/driven/embedding/ollama"
	embeddingopenai "github.com/finsight-labs/finsight-cli/internal/adapters/driven/embedding/openai"
	"github.com/finsight-labs/finsight-cli/internal/adapters/driven/config/file"
	llmollama "github.com/finsight-labs/finsight-cli/internal/adapters/driven/llm/ollama"
	llmopenai "github.com/finsight-labs/finsight-cli/internal/adapters/driven/llm/openai"
	"github.com/finsight-labs/finsight-cli/internal/adapters/driven/marketdata/yahoo"
	"github.com/finsight-labs/finsight-cli/internal/adapters/driven/renderer/gg"
	storagesqlite "github.com/finsight-labs/finsight-cli/internal/adapters/driven/storage/sqlite"
	"github.com/finsight-labs/finsight-cli/internal/adapters/driven/vectorstore/memory"
	vectorsqlite "github.com/finsight-labs/finsight-cli/internal/adapters/driven/vectorstore/sqlite"
	"github.com/finsight-labs/finsight-cli/internal/adapters/driving/cli"
	"github.com/finsight-labs/finsight-cli/internal/core/domain"
	"github.com/finsight-labs/finsight-cli/internal/core/ports/driven"
	"github.com/finsight-labs/finsight-cli/internal/core/ports/driving"
	"github.com/finsight-labs/finsight-cli/internal/core/services"
	"github.com/finsight-labs/finsight-cli/internal/extractors/image"
	"github.com/finsight-labs/finsight-cli/internal/extractors/pdf"
	"github.com/finsight-labs/finsight-cli/internal/extractors/youtube"
	"github.com/finsight-labs/finsight-cli/internal/postprocessors"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	// Credentials may come from a local .env file.
	_ = godotenv.Load()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := file.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	paths := services.NewPaths(cfg.GetString("paths.data_dir"))
	if err := paths.EnsureDirs(); err != nil {
		return err
	}

	refStore, err := storagesqlite.NewStore(paths.DataDir)
	if err != nil {
		return fmt.Errorf("opening reference store: %w", err)
	}
	defer refStore.Close()

	embedder, llm, err := buildInference(cfg)
	if err != nil {
		return err
	}

	pdfExtractor := pdf.New(paths.Tables())
	imageExtractor := image.New(annotateImage, paths.TextFromImage(), paths.Tables())
	videoExtractor := youtube.New(
		youtube.NewDownloader(&ytdl.Client{}),
		youtube.NewTranscriber(recognizeSpeech, cfg.GetString("speech.language")),
		paths.YouTube(),
		paths.YouTubeAudio(),
	)

	pipeline, err := buildPipeline(cfg)
	if err != nil {
		return err
	}
	indexStore := vectorsqlite.NewStore()
	indexer := services.NewIndexer(embedder, func() driven.VectorIndex { return memory.New() },
		float64(cfg.GetInt("embedding.requests_per_second")))

	ingestor := services.NewIngestor(paths, pdfExtractor, imageExtractor, videoExtractor,
		pipeline, indexer, indexStore)

	finance := services.NewFinanceService(paths, refStore)
	dates := services.NewDatesService(paths, pdfExtractor, refStore)
	market := yahoo.NewClient(yahoo.Config{BaseURL: cfg.GetString("market.base_url")})
	renderer := gg.New(cfg.GetString("render.font_path"))
	visualizer := services.NewVisualizer(paths, finance, dates, market, renderer,
		cfg.GetString("market.stock_symbol"), cfg.GetString("market.index_symbol"))

	cli.SetVersion(version)
	cli.Configure(cli.Services{
		Paths:     paths,
		Ingest:    ingestor,
		Visualize: visualizer,
		Dates:     dates,
		Finance:   finance,
		Reference: refStore,
		NewAnswerer: func(ctx context.Context) (driving.AnswerService, error) {
			return services.NewAnswerer(ctx, indexStore, paths.Indices(), embedder, llm, visualizer)
		},
		NewSession: func() *services.Session {
			return services.NewSession(refStore)
		},
	})

	return cli.Execute()
}

// buildInference constructs the embedding and LLM services from config.
// The OpenAI-compatible provider needs an API key in the environment;
// missing credentials are fatal before any command runs.
func buildInference(cfg driven.ConfigStore) (driven.EmbeddingService, driven.LLMService, error) {
	provider := cfg.GetString("llm.provider")
	if provider == "" {
		provider = "openai"
	}

	switch provider {
	case "ollama":
		embedder := embeddingollama.NewEmbeddingService(embeddingollama.Config{
			BaseURL: cfg.GetString("embedding.base_url"),
			Model:   cfg.GetString("embedding.model"),
		})
		llm := llmollama.NewLLMService(llmollama.LLMConfig{
			BaseURL: cfg.GetString("llm.base_url"),
			Model:   cfg.GetString("llm.model"),
		})
		return embedder, llm, nil

	case "openai":
		apiKeyEnv := cfg.GetString("llm.api_key_env")
		if apiKeyEnv == "" {
			apiKeyEnv = "OPENAI_API_KEY"
		}
		apiKey := os.Getenv(apiKeyEnv)
		if apiKey == "" {
			return nil, nil, fmt.Errorf("%w: set %s", domain.ErrMissingCredential, apiKeyEnv)
		}

		embedder, err := embeddingopenai.NewEmbeddingService(embeddingopenai.Config{
			APIKey:  apiKey,
			BaseURL: cfg.GetString("embedding.base_url"),
			Model:   cfg.GetString("embedding.model"),
		})
		if err != nil {
			return nil, nil, err
		}
		llm, err := llmopenai.NewLLMService(llmopenai.LLMConfig{
			APIKey:  apiKey,
			BaseURL: cfg.GetString("llm.base_url"),
			Model:   cfg.GetString("llm.model"),
		})
		if err != nil {
			return nil, nil, err
		}
		return embedder, llm, nil

	default:
		return nil, nil, fmt.Errorf("unknown llm.provider %q (want openai or ollama)", provider)
	}
}

// buildPipeline constructs the chunking pipeline through the processor
// registry, applying configured overrides.
func buildPipeline(cfg driven.ConfigStore) (*postprocessors.Pipeline, error) {
	registry := postprocessors.NewRegistry()
	postprocessors.RegisterDefaults(registry)

	processor, err := registry.Build("chunker", map[string]any{
		"chunk_size": cfg.GetInt("chunker.chunk_size"),
		"overlap":    cfg.GetInt("chunker.overlap"),
	})
	if err != nil {
		return nil, fmt.Errorf("building chunker: %w", err)
	}
	return postprocessors.NewPipeline(processor), nil
}

// gcpOptions returns client options for the GCP clients. A credentials
// file path set via GOOGLE_APPLICATION_CREDENTIALS or config overrides
// ambient credentials.
func gcpOptions() []option.ClientOption {
	if path := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); path != "" {
		return []option.ClientOption{option.WithCredentialsFile(path)}
	}
	return nil
}

// annotateImage runs one Vision API request with a per-call client, so
// GCP credentials are only needed when an image is actually ingested.
func annotateImage(ctx context.Context, req *visionpb.BatchAnnotateImagesRequest) (*visionpb.BatchAnnotateImagesResponse, error) {
	client, err := vision.NewImageAnnotatorClient(ctx, gcpOptions()...)
	if err != nil {
		return nil, fmt.Errorf("creating vision client: %w", err)
	}
	defer client.Close()
	return client.BatchAnnotateImages(ctx, req)
}

// recognizeSpeech runs one long-running Speech recognition with a
// per-call client.
func recognizeSpeech(ctx context.Context, req *speechpb.LongRunningRecognizeRequest) (*speechpb.LongRunningRecognizeResponse, error) {
	client, err := speech.NewClient(ctx, gcpOptions()...)
	if err != nil {
		return nil, fmt.Errorf("creating speech client: %w", err)
	}
	defer client.Close()

	op, err := client.LongRunningRecognize(ctx, req)
	if err != nil {
		return nil, err
	}
	return op.Wait(ctx)
}
