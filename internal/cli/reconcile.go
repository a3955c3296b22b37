package cli

import (
	"context"
	"fmt"
	"log"

	"ecg-practice-service/internal/app"
	"ecg-practice-service/internal/config"
	"ecg-practice-service/internal/infra/memory"
	pgstore "ecg-practice-service/internal/infra/postgres"
	"github.com/spf13/cobra"
)

// NewReconcileCmd recomputes levels and streaks for all users from stored
// attempt history and corrects any drifted stats records. Intended as a
// periodic maintenance/backfill task; it goes through the same pure
// functions as the live submission path.
func NewReconcileCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "Recompute levels and streaks, fixing drifted user stats",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReconcile(cmd.Context(), *configPath)
		},
	}
}

func runReconcile(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.Postgres.URL == "" {
		return fmt.Errorf("postgres url not configured")
	}

	db := openBunDB(cfg.Postgres.URL)
	defer db.Close()
	store := pgstore.NewProgressStore(db)

	// Boards and catalog are not touched by reconciliation.
	service := app.NewAttemptService(memory.NewBoardStore(), nil, store, cfg.GamificationConfig())

	fixes, err := service.Reconcile(ctx)
	if err != nil {
		return err
	}
	for _, fix := range fixes {
		log.Printf("fixed stats for %s: level %d->%d streak %d->%d",
			fix.UserID, fix.StoredLevel, fix.ComputedLevel, fix.StoredStreak, fix.ComputedStreak)
	}
	log.Printf("reconciliation complete: %d user(s) corrected", len(fixes))
	return nil
}
