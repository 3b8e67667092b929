package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	cachefx "listing-scout/cache/fx"
	dbfx "listing-scout/db/fx"
	appfx "listing-scout/internal/app/fx"
	"listing-scout/internal/envutil"
	"listing-scout/internal/scout"
	scoutfx "listing-scout/internal/scout/fx"
)

func newRootCmd() *cobra.Command {
	var (
		product      string
		noEval       bool
		productsFile string
	)

	rootCmd := &cobra.Command{
		Use:           "scout",
		Short:         "Search Craigslist for configured products and report matches",
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScout(cmd.Context(), scout.Options{
				ProductsFile: productsFile,
				Product:      product,
				NoEval:       noEval,
			})
		},
	}

	rootCmd.Flags().StringVar(&product, "product", "", "Only scout a specific product by name (case-insensitive partial match)")
	rootCmd.Flags().BoolVar(&noEval, "no-eval", envutil.Bool(os.Getenv, "NO_EVAL", false), "Skip Gemini evaluation (just scrape)")
	rootCmd.Flags().StringVar(&productsFile, "products-file", envutil.String(os.Getenv, "PRODUCTS_FILE", ""), "Products config file path (falls back to PRODUCTS_FILE env, then products.yaml)")

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return fmt.Errorf("%w: %v", errUsage, err)
	})

	return rootCmd
}

// runScout boots the fx graph, runs one scout pass, and tears the graph
// back down. The pass itself runs between Start and Stop so scrape time is
// not bounded by the lifecycle timeouts.
func runScout(ctx context.Context, opts scout.Options) error {
	var svc *scout.Service

	app := fx.New(
		fx.WithLogger(func(logger *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: logger}
		}),
		appfx.CoreAppOptions,
		dbfx.SQLiteModule,
		cachefx.Module,
		scoutfx.Module(opts),
		fx.Populate(&svc),
	)
	if err := app.Err(); err != nil {
		return err
	}

	startCtx, startCancel := context.WithTimeout(ctx, 60*time.Second)
	defer startCancel()
	if err := app.Start(startCtx); err != nil {
		return err
	}

	_, runErr := svc.Run(ctx, opts)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer stopCancel()
	if err := app.Stop(stopCtx); err != nil {
		if runErr == nil {
			return err
		}
		fmt.Fprintln(os.Stderr, err)
	}

	return runErr
}
