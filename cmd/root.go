package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dharmalab/dilaget/internal/config"
	"github.com/dharmalab/dilaget/internal/dila"
	"github.com/dharmalab/dilaget/internal/pages"
)

func NewRootCmd() *cobra.Command {
	var (
		uv3URL     string
		canon      string
		volume     int
		canvas     int
		output     string
		configPath string
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:   "dilaget",
		Short: "Download maximum-resolution page scans from the DILA IIIF archive",
		Long: `dilaget downloads the highest-resolution page scan the DILA
(dia.dila.edu.tw) IIIF image service can deliver.

Give it either a UV3 viewer URL or an explicit canon/volume/canvas. It
resolves the page through the volume's IIIF manifest, tries a direct
full-resolution request, and stitches full-scale tiles when the service
caps single requests below the intrinsic size.`,
		Example: `  # From a viewer URL
  dilaget --uv3 'https://dia.dila.edu.tw/uv3/index.html?id=Tv01p0300#?cv=309'

  # Explicit identifiers, custom output path
  dilaget --canon T --volume 1 --canvas 309 -o page.jpg`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()

			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			var id dila.Identifier
			if uv3URL != "" {
				id, err = dila.ParseViewerURL(uv3URL)
			} else {
				if volume == 0 {
					return &dila.ParseError{Reason: "provide --uv3 or --volume"}
				}
				id, err = dila.NewIdentifier(canon, volume, canvas)
			}
			if err != nil {
				return err
			}

			result, err := pages.NewService(cfg).Download(cmd.Context(), id, output)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "saved %s (%dx%d, %s)\n",
				result.Path, result.Width, result.Height, result.Source)
			return nil
		},
	}

	cmd.Flags().StringVar(&uv3URL, "uv3", "", "UV3 viewer URL, e.g. https://dia.dila.edu.tw/uv3/index.html?id=Tv01p0300#?cv=309")
	cmd.Flags().StringVar(&canon, "canon", "T", "Canon collection code (T, JM, GA, ...)")
	cmd.Flags().IntVar(&volume, "volume", 0, "Volume number within the canon")
	cmd.Flags().IntVar(&canvas, "canvas", 0, "0-based canvas index within the volume")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file path (default derived from the canvas label)")
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML settings file")
	cmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Enable debug logging")

	cmd.AddCommand(newServeCmd(&configPath))

	return cmd
}
