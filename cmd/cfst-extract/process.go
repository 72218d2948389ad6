package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/structeng/cfst-extractor/constants"
	"github.com/structeng/cfst-extractor/internal/archive"
	"github.com/structeng/cfst-extractor/internal/common"
	"github.com/structeng/cfst-extractor/internal/entity"
	"github.com/structeng/cfst-extractor/internal/export"
	"github.com/structeng/cfst-extractor/internal/llm"
	"github.com/structeng/cfst-extractor/internal/llm/openai"
	"github.com/structeng/cfst-extractor/internal/pageselect"
	"github.com/structeng/cfst-extractor/internal/pipeline"
	"github.com/structeng/cfst-extractor/internal/raster"
)

func processCmd(logger *slog.Logger) *cobra.Command {
	var (
		out        string
		configPath string
		dryRun     bool
		record     bool
		workers    int
	)

	cmd := &cobra.Command{
		Use:   "process <pdf-or-directory>",
		Short: "Run the extraction pipeline and write a styled XLSX workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := args[0]

			cfg, err := common.LoadConfig(configPath)
			if err != nil {
				return err
			}
			if workers > 0 {
				cfg.Processing.Workers = workers
			}
			if dryRun {
				// Dry runs never call the API, so no key is needed.
				if cfg.LLM.APIKey == "" {
					cfg.LLM.APIKey = "dry-run"
				}
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			selector, err := pageselect.NewSelector(cfg.Selection, logger)
			if err != nil {
				return err
			}
			rasterizer := raster.NewPDFToPPM(cfg.Raster.Pdftoppm, cfg.Raster.DPI, logger)

			var extractor llm.Extractor = llm.Noop{}
			if !dryRun {
				extractor = openai.NewClient(openai.Config{
					APIKey:      cfg.LLM.APIKey,
					BaseURL:     cfg.LLM.BaseURL,
					Model:       cfg.LLM.Model,
					Temperature: cfg.LLM.Temperature,
					MaxTokens:   cfg.LLM.MaxTokens,
					MaxRetries:  cfg.LLM.MaxRetries,
					Timeout:     cfg.LLM.Timeout,
				}, logger)
			}

			proc := pipeline.NewProcessor(selector, rasterizer, extractor, logger)

			var results []pipeline.Result
			info, err := os.Stat(target)
			if err != nil {
				return err
			}
			if info.IsDir() {
				results, err = proc.ProcessDir(cmd.Context(), target, cfg.Processing.Workers)
				if err != nil {
					return err
				}
			} else {
				results = []pipeline.Result{proc.ProcessFile(cmd.Context(), target)}
			}
			if len(results) == 0 {
				return fmt.Errorf("no PDF documents found under %s", target)
			}

			var specimens []entity.Specimen
			for _, r := range results {
				specimens = append(specimens, r.Specimens...)
			}

			if out == "" {
				out = defaultOutputPath(target, info.IsDir())
			}
			data, err := export.NewService(logger).ExportXLSX(specimens)
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("write workbook %s: %w", out, err)
			}

			if record {
				if err := recordResults(cmd, cfg, results); err != nil {
					return err
				}
			}

			printReport(cmd, results, out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "output XLSX path (default: next to the input)")
	cmd.Flags().StringVar(&configPath, "config", "", "optional YAML config file")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "run the pipeline without calling the model")
	cmd.Flags().BoolVar(&record, "record", false, "record documents and specimens in the archive database")
	cmd.Flags().IntVar(&workers, "workers", 0, "worker count for directory processing (default: config)")
	return cmd
}

func defaultOutputPath(target string, isDir bool) string {
	if isDir {
		return filepath.Join(target, "cfst-data.xlsx")
	}
	base := strings.TrimSuffix(filepath.Base(target), filepath.Ext(target))
	return filepath.Join(filepath.Dir(target), base+".xlsx")
}

func recordResults(cmd *cobra.Command, cfg *common.Config, results []pipeline.Result) error {
	db, err := archive.Open(cfg.Archive.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := cmd.Context()
	im := archive.NewImporter(db, cfg.Archive.ArchiveDir, nil)
	for _, r := range results {
		imp, err := im.Import(ctx, r.Path)
		if err != nil {
			return fmt.Errorf("archive %s: %w", r.Path, err)
		}
		if err := db.UpdateDocumentStatus(ctx, imp.DocID, r.Status, r.Reason); err != nil {
			return err
		}
		if len(r.Specimens) > 0 {
			if err := db.InsertSpecimens(ctx, imp.DocID, r.Specimens); err != nil {
				return err
			}
		}
	}
	return nil
}

func printReport(cmd *cobra.Command, results []pipeline.Result, out string) {
	counts := map[constants.DocStatus]int{}
	specimens := 0
	for _, r := range results {
		counts[r.Status]++
		specimens += len(r.Specimens)
	}
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Processed %d document(s): %d extracted, %d manual review, %d excluded, %d failed\n",
		len(results),
		counts[constants.DocStatusExtracted],
		counts[constants.DocStatusManualReview],
		counts[constants.DocStatusExcluded],
		counts[constants.DocStatusFailed])
	fmt.Fprintf(w, "Specimens: %d\nWorkbook: %s\n", specimens, out)
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(w, "  FAILED %s: %v\n", r.RefNo, r.Err)
		}
	}
}
