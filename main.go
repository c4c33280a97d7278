package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	cfg "github.com/gopal-prakash-codes/ai-diagnosis/config"
	"github.com/gopal-prakash-codes/ai-diagnosis/logging"
	"github.com/gopal-prakash-codes/ai-diagnosis/orchestrator"
	"github.com/gopal-prakash-codes/ai-diagnosis/server"
)

var configPath string

func main() {
	rootCmd := &cobra.Command{
		Use:           "diag-transcripts",
		Short:         "Reconcile translated and diarized transcripts of consultation audio",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default config/$CONFIG_ENV/config.yaml)")

	rootCmd.AddCommand(newTranscribeCmd(), newServeCmd(), newConfigCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// setup loads configuration and configures logging for a subcommand.
func setup() (*cfg.Root, func(), error) {
	conf, err := cfg.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	closer, err := logging.Setup(conf.Logging)
	if err != nil {
		return nil, nil, err
	}
	return conf, func() { _ = closer.Close() }, nil
}

func newTranscribeCmd() *cobra.Command {
	var outputs string
	cmd := &cobra.Command{
		Use:   "transcribe <audio>",
		Short: "Run one recording through the pipeline and print the response as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, done, err := setup()
			if err != nil {
				return err
			}
			defer done()
			if outputs != "" {
				conf.Paths.Outputs = outputs
			}

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			resp, runErr := orchestrator.NewPipeline(conf).Process(ctx, f, filepath.Base(args[0]))
			if resp != nil {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(resp); err != nil {
					return err
				}
			}
			return runErr
		},
	}
	cmd.Flags().StringVar(&outputs, "outputs", "", "write a run bundle under this directory")
	return cmd
}

func newServeCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the transcription API over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, done, err := setup()
			if err != nil {
				return err
			}
			defer done()
			if addr != "" {
				conf.Server.Addr = addr
			}

			ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
			defer cancel()

			logrus.WithFields(logrus.Fields{
				"pipeline": conf.Pipeline.Name,
				"version":  conf.Pipeline.Version,
			}).Info("Starting transcription service")
			router := server.NewRouter(orchestrator.NewPipeline(conf))
			err = server.Serve(ctx, conf.Server.Addr, router, 30*time.Second)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	return cmd
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration with secrets redacted",
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := cfg.Load(configPath)
			if err != nil {
				return err
			}
			out, err := cfg.Dump(*conf)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}
