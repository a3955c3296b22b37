package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ecg-practice-service/internal/app"
	"ecg-practice-service/internal/config"
	"ecg-practice-service/internal/domain"
	"ecg-practice-service/internal/infra/memory"
	pgstore "ecg-practice-service/internal/infra/postgres"
	redisstore "ecg-practice-service/internal/infra/redis"
	transport "ecg-practice-service/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the practice server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
	}

	var loader memory.CaseLoader = memory.NewStaticCaseLoader(sampleCases())
	if pool != nil {
		loader = pgstore.NewCaseLoader(pool)
	}

	catalogTTL := config.TTLDuration(cfg.Catalog.TTL, 10*time.Minute)
	var caseRepo app.CaseRepository
	if redisClient != nil {
		caseRepo = redisstore.NewCaseRepository(redisClient, loader, catalogTTL)
	} else {
		caseRepo = memory.NewCaseRepository(loader, catalogTTL)
	}

	var boards app.BoardRepository
	if redisClient != nil {
		boards = redisstore.NewBoardStore(redisClient, redisTTL)
	} else {
		boards = memory.NewBoardStore()
	}

	var store app.ProgressStore = memory.NewProgressStore()
	if cfg.Postgres.URL != "" {
		db := openBunDB(cfg.Postgres.URL)
		defer db.Close()
		store = pgstore.NewProgressStore(db)
	}

	service := app.NewAttemptService(boards, caseRepo, store, cfg.GamificationConfig())
	wsHandler := transport.NewWSHandler(service)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", wsHandler.ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting practice service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// sampleCases provides a minimal catalog for running without Postgres.
func sampleCases() map[string]domain.Case {
	return map[string]domain.Case{
		"case-1": {
			ID:         "case-1",
			Title:      "Normal sinus rhythm",
			Difficulty: domain.DifficultyEasy,
			Official: domain.Report{
				Rhythm:      []string{"sinus"},
				HeartRate:   72,
				Axis:        domain.AxisNormal,
				PRInterval:  domain.IntervalNormal,
				QRSDuration: domain.IntervalNormal,
				QTInterval:  domain.IntervalNormal,
				Findings:    []string{},
			},
		},
		"case-2": {
			ID:         "case-2",
			Title:      "Atrial fibrillation with rapid ventricular response",
			Difficulty: domain.DifficultyMedium,
			Official: domain.Report{
				Rhythm:      []string{"afib"},
				HeartRate:   132,
				Axis:        domain.AxisNormal,
				PRInterval:  domain.IntervalNormal,
				QRSDuration: domain.IntervalNormal,
				QTInterval:  domain.IntervalNormal,
				Findings:    []string{},
			},
		},
	}
}
