package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"customsdesk/internal/csvexport"
	"customsdesk/internal/intake"
	"customsdesk/internal/report"
	"customsdesk/internal/service"
	"customsdesk/internal/xlsxexport"
)

const chunkSeparator = "\n-----\n"

var (
	runDir    string
	runOut    string
	runFormat string
	runChunks bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Build the declaration mapping and commodity codes",
	Long: `Extracts the four shipment documents, renders the declaration field mapping
and classifies every invoice line. The combined report goes to stdout unless
--out is given; csv and xlsx output always goes to a file.`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVarP(&runDir, "dir", "d", "", "directory with the shipment PDFs (default from config)")
	runCmd.Flags().StringVarP(&runOut, "out", "o", "", "output file")
	runCmd.Flags().StringVarP(&runFormat, "format", "f", "text", "output format: text, csv or xlsx")
	runCmd.Flags().BoolVar(&runChunks, "chunks", false, "print the text report as chat-sized messages")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, _ []string) error {
	if runFormat != "text" && runFormat != "csv" && runFormat != "xlsx" {
		return fmt.Errorf("unknown format %q; allowed: text, csv, xlsx", runFormat)
	}

	var maxBytes int64
	if cfg != nil {
		maxBytes = cfg.Server.MaxUploadMB << 20
	}
	docs, err := intake.LoadDirectory(docsDir(runDir), maxBytes)
	if err != nil {
		return err
	}

	svc, err := newService(cfg, logger)
	if err != nil {
		return err
	}
	out, err := svc.Build(cmd.Context(), docs)
	if err != nil {
		return fmt.Errorf("building declaration: %w", err)
	}

	var buf bytes.Buffer
	if err := render(&buf, out); err != nil {
		return err
	}

	path := runOut
	if path == "" && runFormat != "text" {
		path = defaultOutput(runFormat)
	}
	if path == "" {
		_, err := io.Copy(cmd.OutOrStdout(), &buf)
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	cmd.Printf("Report written to %s\n", path)
	return nil
}

func render(w io.Writer, out *service.BuildOutput) error {
	rep := out.Report
	switch runFormat {
	case "csv":
		return csvexport.Export(w, rep.Classifications)
	case "xlsx":
		return xlsxexport.Export(w, out.Declaration, rep.Classifications)
	}

	if !runChunks {
		_, err := io.WriteString(w, rep.Text+"\n")
		return err
	}
	limit := report.DefaultMessageLimit
	if cfg != nil && cfg.Intake.MessageLimit > 0 {
		limit = cfg.Intake.MessageLimit
	}
	for i, msg := range report.SplitMessages(rep.Text, limit) {
		if i > 0 {
			if _, err := io.WriteString(w, chunkSeparator); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, msg); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func defaultOutput(format string) string {
	switch format {
	case "csv":
		return "hs_classification.csv"
	case "xlsx":
		return "declaration.xlsx"
	}
	return report.TextFileName
}
