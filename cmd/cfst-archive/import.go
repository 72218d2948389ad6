package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/structeng/cfst-extractor/constants"
	"github.com/structeng/cfst-extractor/internal/archive"
	"github.com/structeng/cfst-extractor/internal/common"
)

func importCmd(logger *slog.Logger) *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "import <pdf-or-directory>",
		Short: "Import PDFs from the source folder into the archive",
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

			paths, err := collectPDFs(args[0])
			if err != nil {
				return err
			}
			if len(paths) == 0 {
				return fmt.Errorf("no PDF files under %s", args[0])
			}

			imported, duplicates := 0, 0
			for _, p := range paths {
				res, err := im.Import(cmd.Context(), p)
				if err != nil {
					return err
				}
				if res.Duplicate {
					duplicates++
				} else {
					imported++
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d file(s), %d duplicate(s) skipped\n", imported, duplicates)
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "optional YAML config file")
	return cmd
}

func collectPDFs(target string) ([]string, error) {
	info, err := os.Stat(target)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{target}, nil
	}
	entries, err := os.ReadDir(target)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := constants.NormalizeExt(filepath.Ext(e.Name()))
		if _, ok := constants.AllowedExtensions[ext]; ok {
			paths = append(paths, filepath.Join(target, e.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}
