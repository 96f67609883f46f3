// Package cli implements the declare command line tool.
package cli

import (
	"context"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"customsdesk/internal/app"
	"customsdesk/internal/config"
	"customsdesk/internal/logging"
	"customsdesk/internal/service"
)

var (
	cfg    *config.Config
	logger = zap.NewNop()

	loadConfig = config.Load
	newService = func(c *config.Config, l *zap.Logger) (service.DeclarationService, error) {
		return app.NewDeclarationService(c, nil, l)
	}
)

var rootCmd = &cobra.Command{
	Use:   "declare",
	Short: "Build customs declaration field mappings from shipment PDFs",
	Long: `Reads the invoice, packing list, CMR and sales agreement of one shipment,
maps them onto the numbered declaration boxes and proposes an EAEU commodity
code for every invoice line.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func setup(cmd *cobra.Command, _ []string) error {
	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	c, err := loadConfig()
	if err != nil {
		return err
	}
	cfg = c

	if _, err := logging.Install(cfg.Log); err != nil {
		return err
	}
	logger = zap.L()
	return nil
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	defer func() { _ = logger.Sync() }()
	return rootCmd.ExecuteContext(ctx)
}
