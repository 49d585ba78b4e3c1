package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/danmuck/conventus/internal/config"
	"github.com/danmuck/conventus/internal/logging"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
	cfg        config.Config
}

func main() {
	logging.ConfigureRuntime()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	// The first signal cancels; a second one falls through to the default
	// handler and exits.
	context.AfterFunc(ctx, stop)

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "framectl: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{cfg: config.DefaultConfig()}
	root := &cobra.Command{
		Use:           "framectl",
		Short:         "Encode and decode fragmented edge protocol messages",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.configPath == "" {
				return nil
			}
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			opts.cfg = cfg
			if !logging.SetLevel(cfg.LogLevel) {
				return fmt.Errorf("invalid log_level %q", cfg.LogLevel)
			}
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to a framectl TOML config")

	root.AddCommand(newDecodeCmd(opts))
	root.AddCommand(newEncodeCmd(opts))
	root.AddCommand(newConfigCmd())
	return root
}

func newConfigCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage framectl configuration files",
	}
	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a config template",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "framectl.toml"
			if len(args) == 1 {
				path = args[0]
			}
			if err := config.WriteTemplate(path, force); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	cmd.AddCommand(initCmd)
	return cmd
}
