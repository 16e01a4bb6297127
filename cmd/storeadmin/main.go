package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/merchkit/storeadmin/config"
	"github.com/merchkit/storeadmin/internal/adminapi"
	"github.com/merchkit/storeadmin/internal/app"
	"github.com/merchkit/storeadmin/internal/webserver"
)

var (
	// set by -ldflags at build time
	BuildVersion = "dev"
	BuildTime    = "unknown"
)

var cfgFile string

func main() {
	root := &cobra.Command{
		Use:          "storeadmin",
		Short:        "E-commerce store administration service",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&cfgFile, "config", "c", "/etc/storeadmin.yml", "config file path")

	root.AddCommand(serveCommand(), initdbCommand(), versionCommand())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the admin API server and background jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfig(cfgFile)
			if err := cfg.Validate(); err != nil {
				return err
			}

			application := app.NewApplication(cfg)
			application.Init(cfg)
			defer application.Release()

			ws := webserver.Init(application)
			adminapi.InitRouter()
			application.Checkout().RegisterRoutes()

			stopWatch, err := config.Watch(cfgFile, application.ApplyDynamicConfig)
			if err != nil {
				zap.S().Warnf("config watcher unavailable: %v", err)
			} else {
				defer stopWatch()
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			g, ctx := errgroup.WithContext(ctx)
			g.Go(ws.Start)
			g.Go(func() error {
				<-ctx.Done()
				zap.L().Info("shutdown signal received")
				return ws.Shutdown(context.Background())
			})
			return g.Wait()
		},
	}
}

func initdbCommand() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "initdb",
		Short: "Drop and recreate every table",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfig(cfgFile)
			if err := cfg.Validate(); err != nil {
				return err
			}

			if !yes {
				confirmed := false
				prompt := &survey.Confirm{
					Message: fmt.Sprintf("Drop and recreate all tables in database %q?", cfg.Database.Name),
				}
				if err := survey.AskOne(prompt, &confirmed); err != nil {
					return err
				}
				if !confirmed {
					fmt.Println("aborted")
					return nil
				}
			}

			application := app.NewApplication(cfg)
			application.Init(cfg)
			defer application.Release()

			application.InitDb()
			fmt.Println("database initialized")
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("storeadmin %s (built %s)\n", BuildVersion, BuildTime)
		},
	}
}
