package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/trungnq/frontdesk/internal/config"
	"github.com/trungnq/frontdesk/internal/customer"
	"github.com/trungnq/frontdesk/internal/customer/memory"
	"github.com/trungnq/frontdesk/internal/customer/postgres"
	"github.com/trungnq/frontdesk/internal/faceapi"
	"github.com/trungnq/frontdesk/internal/ocrapi"
	"github.com/trungnq/frontdesk/internal/recognition"
	"github.com/trungnq/frontdesk/internal/speech"
	"github.com/trungnq/frontdesk/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the front desk API server",
	Long: `Start the Front Desk API server.
The server accepts camera snapshots for face recognition and ID card photos
for identity extraction, backed by PostgreSQL or an in-memory store.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

// openStore selects the customer store backend. With DATABASE_URL set it
// connects to PostgreSQL and runs migrations; otherwise records live only
// for the process lifetime.
func openStore(ctx context.Context, cfg *config.Config) (customer.Store, func(), error) {
	if cfg.Database.URL == "" {
		fmt.Println("DATABASE_URL not set, using in-memory store")
		return memory.NewStore(), func() {}, nil
	}

	fmt.Println("Connecting to PostgreSQL database...")
	pool, err := postgres.Connect(ctx, cfg.Database.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to PostgreSQL: %w", err)
	}
	if err := postgres.Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("running migrations: %w", err)
	}
	return postgres.NewStore(pool), pool.Close, nil
}

func buildService(ctx context.Context, cfg *config.Config, store customer.Store) (*recognition.Service, error) {
	faces := faceapi.NewClient(cfg.FaceEngine.URL, cfg.FaceEngine.Timeout, cfg.FaceEngine.MaxRetries)
	ocr := ocrapi.NewClient(cfg.OCREngine.URL, cfg.OCREngine.Timeout, cfg.OCREngine.MaxRetries)

	opts := []recognition.Option{
		recognition.WithMinProbeImages(cfg.Recognition.MinProbeImages),
	}

	if cfg.Speech.Enabled && cfg.OpenAI.Token != "" {
		opts = append(opts, recognition.WithAnnouncer(
			speech.NewSpeaker(cfg.OpenAI.Token, cfg.Speech.OutputDir),
		))
		fmt.Println("Spoken greetings enabled")
	}

	var idx *recognition.Index
	if cfg.Recognition.UseIndex {
		idx = recognition.NewIndex()
		opts = append(opts,
			recognition.WithIndex(idx),
			recognition.WithShortlistSize(cfg.Recognition.ShortlistSize),
		)
	}

	svc := recognition.NewService(store, faces, ocr, opts...)

	if idx != nil {
		fmt.Println("Building in-memory HNSW index for face matching...")
		if err := svc.RebuildIndex(ctx); err != nil {
			return nil, fmt.Errorf("building HNSW index: %w", err)
		}
		fmt.Printf("HNSW index built with %d customers\n", idx.Count())
	}

	return svc, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	ctx := context.Background()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	svc, err := buildService(ctx, cfg, store)
	if err != nil {
		return err
	}

	server := web.NewServer(cfg, svc, store)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nShutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			fmt.Printf("Error during shutdown: %v\n", err)
		}
	}()

	fmt.Printf("Starting Front Desk API on %s\n", cfg.Web.Addr)
	fmt.Println("Press Ctrl+C to stop")

	if err := server.Start(); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	return nil
}
