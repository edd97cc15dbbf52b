package commands

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/yshengliao/antoree/config"
	"github.com/yshengliao/antoree/middleware"
	"github.com/yshengliao/antoree/routes"
	"go.uber.org/zap"
)

func newRoutesCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "routes",
		Short: "Inspect the route table",
	}
	cmd.AddCommand(newRoutesListCmd(opts))
	cmd.AddCommand(newRoutesWatchCmd(opts))
	return cmd
}

func newRoutesListCmd(opts *globalOptions) *cobra.Command {
	var category string
	var asYAML bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the routes (built-in table merged with api.routes_file)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			registry, err := routes.LoadWithDefaults(cfg.API.RoutesFile)
			if err != nil {
				return err
			}
			if category != "" {
				c := routes.Category(strings.ToUpper(category))
				if _, ok := registry[c]; !ok {
					return fmt.Errorf("unknown category %q", category)
				}
				registry = routes.Registry{c: registry[c]}
			}

			if asYAML {
				data, err := registry.Marshal()
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			return printRoutes(cmd.OutOrStdout(), registry)
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "only list one category")
	cmd.Flags().BoolVar(&asYAML, "yaml", false, "print as YAML")
	return cmd
}

func printRoutes(w io.Writer, registry routes.Registry) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CATEGORY\tACTION\tMETHOD\tPATH\tAUTH\tMIDDLEWARE\tRATE LIMIT")
	for _, c := range registry.Categories() {
		for _, action := range registry.Actions(c) {
			route := registry[c][action]
			limit := "-"
			if route.RateLimit != nil {
				limit = fmt.Sprintf("%d/%s", route.RateLimit.Requests, route.RateLimit.Window())
			}
			auth := "no"
			if route.RequiresAuth {
				auth = "yes"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				c, action, route.Method, route.Path, auth,
				strings.Join(middleware.Names(route), ","), limit)
		}
	}
	return tw.Flush()
}

func newRoutesWatchCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "watch [file]",
		Short: "Print the route table every time the routes file changes",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			path := cfg.API.RoutesFile
			if len(args) > 0 {
				path = args[0]
			}
			if path == "" {
				return fmt.Errorf("no routes file: pass one or set api.routes_file")
			}

			logger, err := config.NewLogger(cfg.Logger)
			if err != nil {
				return err
			}
			defer logger.Sync()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()
			logger.Info("watching route table", zap.String("file", path))
			return config.Watch(ctx, path, logger, func(r routes.Registry) {
				fmt.Fprintln(out, "--- route table reloaded")
				if err := printRoutes(out, r); err != nil {
					logger.Warn("failed to print routes", zap.Error(err))
				}
			})
		},
	}
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
