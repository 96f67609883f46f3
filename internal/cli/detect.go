package cli

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"customsdesk/internal/domain"
	"customsdesk/internal/intake"
)

var detectDir string

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Show which PDF would be used for each document",
	Long: `Lists the first four PDFs in the directory and assigns each one a document
kind by file name: invoice (inv), packing list (pack, pl), CMR (cmr) and
agreement (dogovor, agreement, contract).`,
	Args: cobra.NoArgs,
	RunE: runDetect,
}

func init() {
	detectCmd.Flags().StringVarP(&detectDir, "dir", "d", "", "directory with the shipment PDFs (default from config)")
	rootCmd.AddCommand(detectCmd)
}

func runDetect(cmd *cobra.Command, _ []string) error {
	dir := docsDir(detectDir)

	pdfs, err := intake.ListPDFs(dir)
	if err != nil {
		return err
	}
	candidates, err := intake.FirstN(pdfs, len(domain.RequiredKinds))
	if err != nil {
		return err
	}
	found, err := intake.DetectDocuments(candidates)
	if err != nil {
		return err
	}

	for _, kind := range domain.RequiredKinds {
		cmd.Printf("%-13s %s\n", kind.Label()+":", filepath.Base(found[kind]))
	}
	return nil
}

func docsDir(flag string) string {
	if flag != "" {
		return flag
	}
	if cfg != nil && cfg.Intake.DocsDir != "" {
		return cfg.Intake.DocsDir
	}
	return "."
}
