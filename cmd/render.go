package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"ipc-charts/internal/config"
	"ipc-charts/internal/logging"
	"ipc-charts/internal/plot"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newRenderCommand(root *rootOptions) *cobra.Command {
	var families []string
	var outputDir, format string
	var parallelism int
	var manifest, figures bool

	renderCmd := &cobra.Command{
		Use:   "render",
		Short: "Render chart matrices",
		Long:  "Render one chart per held value for every selected chart family",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, content, err := root.loadReport()
			if err != nil {
				return err
			}
			root.applyReportLogLevel(cfg)

			if usesSource(cfg, families, config.SourceInfluxDB) {
				if err := root.env.InfluxDB.Validate(); err != nil {
					return err
				}
			}

			if outputDir == "" {
				outputDir = root.env.OutputDir
			}
			pm, err := plot.NewPlotManager(cfg, plot.Options{
				OutputDir:   outputDir,
				Format:      format,
				Parallelism: parallelism,
				Manifest:    manifest,
				Figures:     figures,
				InfluxDB:    root.env.InfluxDB,

				ConfigContent: content,
			})
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			results, err := pm.GenerateAll(ctx, families)
			for _, r := range results {
				for _, a := range r.Artifacts {
					fmt.Fprintln(cmd.OutOrStdout(), a.Path)
				}
				for _, path := range r.Figures {
					fmt.Fprintln(cmd.OutOrStdout(), path)
				}
			}
			if err != nil {
				return err
			}

			total := 0
			for _, r := range results {
				total += len(r.Artifacts)
			}
			logging.GetLogger().WithFields(logrus.Fields{
				"families":   len(results),
				"charts":     total,
				"output_dir": pm.OutputDir(),
			}).Info("Rendering completed")
			return nil
		},
	}

	renderCmd.Flags().StringSliceVarP(&families, "family", "f", nil, "Chart families to render (default: all)")
	renderCmd.Flags().StringVarP(&outputDir, "out", "o", "", "Output directory (overrides report and IPC_CHARTS_OUTPUT_DIR)")
	renderCmd.Flags().StringVar(&format, "format", "", "Output format: png or tikz (overrides report)")
	renderCmd.Flags().IntVar(&parallelism, "parallel", 0, "Number of charts rendered concurrently (overrides report)")
	renderCmd.Flags().BoolVar(&manifest, "manifest", false, "Write manifest.json next to the charts")
	renderCmd.Flags().BoolVar(&figures, "figures", false, "Write a LaTeX figure wrapper next to each TikZ chart")

	return renderCmd
}

func usesSource(cfg *config.ReportConfig, families []string, source config.SourceType) bool {
	if len(families) == 0 {
		for _, f := range cfg.Families {
			if f.Source.Type == source {
				return true
			}
		}
		return false
	}
	for _, name := range families {
		if f, ok := cfg.Families[name]; ok && f.Source.Type == source {
			return true
		}
	}
	return false
}
