package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"revision-runtime/backend/internal/auth"
	"revision-runtime/backend/internal/codefiles"
	"revision-runtime/backend/internal/config"
	"revision-runtime/backend/internal/logging"
	"revision-runtime/backend/internal/repository"
	"revision-runtime/backend/internal/services"
	"revision-runtime/backend/pkg/models"
	"revision-runtime/backend/pkg/scripting"
)

var (
	configFile string
	viaBackend bool
	onlyType   string
	states     []string
	dryRun     bool
	overwrite  bool
)

var rootCmd = &cobra.Command{
	Use:   "seed [dir]",
	Short: "Import transformation revision JSON files",
	Long: `Reads every .json transformation revision below dir and stores it.

By default revisions are written straight into the database. With
--via-backend they are PUT to the designer backend instead, using the
Keycloak service user or basic auth from the configuration.`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.Flags().StringVar(&configFile, "config", "", "Path to config file")
	rootCmd.Flags().BoolVar(&viaBackend, "via-backend", false, "Deploy through the backend REST API instead of the database")
	rootCmd.Flags().StringVar(&onlyType, "type", "", "Only import revisions of this type (COMPONENT or WORKFLOW)")
	rootCmd.Flags().StringSliceVar(&states, "state", nil, "Only import revisions in these states")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Log what would be imported without storing anything")
	rootCmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace revisions that already exist in the database")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func buildFilter() (repository.RevisionFilter, error) {
	var filter repository.RevisionFilter
	if onlyType != "" {
		t := models.Type(strings.ToUpper(onlyType))
		if t != models.TypeComponent && t != models.TypeWorkflow {
			return filter, fmt.Errorf("unknown type %q", onlyType)
		}
		filter.Type = &t
	}
	for _, s := range states {
		filter.States = append(filter.States, models.State(strings.ToUpper(s)))
	}
	return filter, nil
}

func run(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger, err := logging.New(logging.Options{Debug: cfg.Log.Debug, Format: cfg.Log.Format})
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	filter, err := buildFilter()
	if err != nil {
		return err
	}

	loaded, err := codefiles.LoadRevisions(args[0])
	if err != nil {
		return fmt.Errorf("failed to load revisions from %s: %w", args[0], err)
	}

	var revisions []*models.TransformationRevision
	for _, tr := range loaded {
		if !filter.Matches(tr) {
			logger.Debug("Skipping filtered revision", "id", tr.ID, "name", tr.Name)
			continue
		}
		if err := tr.Validate(); err != nil {
			return fmt.Errorf("invalid revision %s: %w", tr.ID, err)
		}
		revisions = append(revisions, tr)
	}
	logger.Info("Loaded revisions", "dir", args[0], "found", len(loaded), "selected", len(revisions))

	if dryRun {
		for _, tr := range revisions {
			summary, err := scripting.PrettyJSON(map[string]any{
				"id": tr.ID, "name": tr.Name, "version_tag": tr.VersionTag, "type": tr.Type, "state": tr.State,
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), summary)
		}
		return nil
	}

	if viaBackend {
		return deploy(ctx, cfg, logger, revisions)
	}
	return store(ctx, cfg, logger, revisions)
}

func deploy(ctx context.Context, cfg *config.Config, logger *logging.Logger, revisions []*models.TransformationRevision) error {
	tokens, err := auth.FromConfig(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize auth: %w", err)
	}
	client := services.NewHTTPBackendClient(cfg.Backend.URL, tokens, auth.BasicAuthFromConfig(cfg))
	if err := services.DeployRevisions(ctx, client, revisions); err != nil {
		return err
	}
	logger.Info("Seeding complete!", "target", cfg.Backend.URL, "count", len(revisions))
	return nil
}

func store(ctx context.Context, cfg *config.Config, logger *logging.Logger, revisions []*models.TransformationRevision) error {
	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.DB.Host, cfg.DB.Port, cfg.DB.User, cfg.DB.Password, cfg.DB.Name, cfg.DB.SSLMode,
	)
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return fmt.Errorf("failed to connect to DB: %w", err)
	}
	defer pool.Close()

	revisionStore := repository.NewPostgresRevisionStore(pool)
	if err := revisionStore.EnsureSchema(ctx); err != nil {
		return err
	}

	ids := make([]uuid.UUID, 0, len(revisions))
	for _, tr := range revisions {
		ids = append(ids, tr.ID)
	}
	existing, err := revisionStore.ListRevisions(ctx, repository.RevisionFilter{IDs: ids})
	if err != nil {
		return fmt.Errorf("failed to list existing revisions: %w", err)
	}
	existingMap := make(map[uuid.UUID]bool, len(existing))
	for _, tr := range existing {
		existingMap[tr.ID] = true
	}

	stored := 0
	for _, tr := range revisions {
		if existingMap[tr.ID] && !overwrite {
			logger.Info("Skipping existing revision", "name", tr.Name, "id", tr.ID)
			continue
		}
		if err := revisionStore.StoreRevision(ctx, tr); err != nil {
			return fmt.Errorf("failed to store revision %s: %w", tr.ID, err)
		}
		stored++
		logger.Info("Seeded revision", "name", tr.Name, "version_tag", tr.VersionTag, "id", tr.ID)
	}
	logger.Info("Seeding complete!", "stored", stored, "skipped", len(revisions)-stored)
	return nil
}
