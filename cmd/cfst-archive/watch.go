package main

import (
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/structeng/cfst-extractor/internal/archive"
	"github.com/structeng/cfst-extractor/internal/common"
)

func watchCmd(logger *slog.Logger) *cobra.Command {
	var (
		configPath string
		debounce   time.Duration
		scan       bool
	)

	cmd := &cobra.Command{
		Use:   "watch <source-directory>",
		Short: "Watch the source folder and import arriving PDFs until interrupted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := common.LoadConfig(configPath)
			if err != nil {
				return err
			}

			db, err := archive.Open(cfg.Archive.DBPath)
			if err != nil {
				return err
			}
			defer db.Close()
			im := archive.NewImporter(db, cfg.Archive.ArchiveDir, logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			events, errs, err := archive.StartWatcher(ctx, archive.WatchConfig{
				Roots:       []string{args[0]},
				InitialScan: scan,
				Debounce:    debounce,
			})
			if err != nil {
				return err
			}

			logger.Info("archive.watch.start", "root", args[0])
			for {
				select {
				case <-ctx.Done():
					logger.Info("archive.watch.stop")
					return nil
				case path, ok := <-events:
					if !ok {
						return nil
					}
					if _, err := im.Import(ctx, path); err != nil {
						logger.Error("archive.watch.import_failed", "path", path, "error", err)
					}
				case err, ok := <-errs:
					if ok && err != nil {
						logger.Error("archive.watch.error", "error", err)
					}
				}
			}
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "optional YAML config file")
	cmd.Flags().DurationVar(&debounce, "debounce", 500*time.Millisecond, "coalesce rapid filesystem events")
	cmd.Flags().BoolVar(&scan, "initial-scan", true, "import PDFs already present at startup")
	return cmd
}
