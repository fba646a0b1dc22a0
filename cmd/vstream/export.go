package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/vango-dev/vstream/internal/config"
	"github.com/vango-dev/vstream/internal/errors"
	"github.com/vango-dev/vstream/pkg/export"
)

func exportCmd() *cobra.Command {
	var (
		out         string
		bucket      string
		prefix      string
		concurrency int
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Pre-render every demo page",
		Long: `Render every demo page to completion and store the final documents,
either in a local directory or in an S3 bucket.

S3 credentials are read from AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY and
AWS_SESSION_TOKEN.`,
		Example: `  vstream export --out dist
  vstream export --bucket my-site --prefix pages/`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("out") {
				cfg.Export.Output = out
			}
			if flags.Changed("bucket") {
				cfg.Export.Bucket = bucket
			}
			if flags.Changed("prefix") {
				cfg.Export.Prefix = prefix
			}
			if flags.Changed("concurrency") {
				cfg.Export.Concurrency = concurrency
			}

			store, target, err := newStore(cfg)
			if err != nil {
				return err
			}

			logger := cfg.NewLogger(cmd.ErrOrStderr())
			exporter := export.NewExporter(newRenderer(cfg, logger, nil), store, export.Config{
				Concurrency: cfg.Export.Concurrency,
				Logger:      logger,
			})
			results, err := exporter.Export(cmd.Context(), newDemoSite(demoDelay).exportPages())
			if err != nil {
				return errors.New("E170").Wrap(err)
			}

			w := cmd.OutOrStdout()
			for _, r := range results {
				info(w, "%-10s → %s (%d bytes, %d chunks, %s)", r.Name, r.Key, r.Bytes, r.Chunks, r.Duration.Round(time.Millisecond))
			}
			success(w, "Exported %d pages to %s", len(results), target)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "Output directory")
	cmd.Flags().StringVar(&bucket, "bucket", "", "S3 bucket (takes precedence over --out)")
	cmd.Flags().StringVar(&prefix, "prefix", "", "S3 key prefix")
	cmd.Flags().IntVarP(&concurrency, "concurrency", "j", 0, "Pages rendered at once")

	return cmd
}

// newStore picks the export target: the bucket when set, otherwise the
// output directory.
func newStore(cfg *config.Config) (export.Store, string, error) {
	if cfg.Export.Bucket != "" {
		client := export.NewS3Client(export.S3ClientConfig{
			Region:   cfg.Export.Region,
			Endpoint: cfg.Export.Endpoint,
		})
		return export.NewS3Store(client, cfg.Export.Bucket, cfg.Export.Prefix),
			"s3://" + cfg.Export.Bucket + "/" + cfg.Export.Prefix, nil
	}
	if cfg.Export.Output == "" {
		return nil, "", errors.New("E171").
			WithSuggestion("Pass --out <dir> or --bucket <name>, or set export.output in " + config.ConfigFileName)
	}
	dir := cfg.OutputPath()
	store, err := export.NewDiskStore(dir)
	if err != nil {
		return nil, "", errors.New("E170").Wrap(err)
	}
	return store, dir, nil
}
