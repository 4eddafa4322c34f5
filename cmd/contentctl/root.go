package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/puzzo-dev/sitefront/internal/app"
	"github.com/puzzo-dev/sitefront/internal/config"
	"github.com/puzzo-dev/sitefront/internal/derived"
	"github.com/puzzo-dev/sitefront/internal/nav"
	"github.com/puzzo-dev/sitefront/internal/observability"
	"github.com/puzzo-dev/sitefront/internal/page"
)

type rootOptions struct {
	envFile  string
	logLevel string
}

// newRootCmd builds the command tree. services is resolved lazily so help output never touches
// the network.
func newRootCmd(out io.Writer, loadOpts ...config.Option) *cobra.Command {
	opts := &rootOptions{}
	var services *app.App

	root := &cobra.Command{
		Use:           "contentctl",
		Short:         "Inspect resolved site content",
		Long:          "contentctl resolves pages, navigation and derived entities the same way the web server does and prints them as JSON.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := observability.NewLoggerWithLevel(opts.logLevel)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			cfgOpts := append([]config.Option{config.WithEnvFile(opts.envFile)}, loadOpts...)
			cfg, err := config.Load(cfgOpts...)
			if err != nil {
				return err
			}
			services, err = app.New(cmd.Context(), cfg, logger)
			return err
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if services == nil {
				return nil
			}
			return services.Close()
		},
	}
	root.SetOut(out)
	root.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "dotenv file with SITE_ settings")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "error", "log level (debug, info, warn, error)")

	get := func() *app.App { return services }
	root.AddCommand(
		newPagesCmd(get),
		newPageCmd(get),
		newHeroCmd(get),
		newPolicyCmd(get),
		newNavCmd(get),
		newFAQsCmd(get),
		newBenefitsCmd(get),
		newFooterCmd(get),
		newConfigCmd(get),
		newCacheCmd(get),
	)
	return root
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newPagesCmd(get func() *app.App) *cobra.Command {
	return &cobra.Command{
		Use:   "pages",
		Short: "List static page slugs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return printJSON(cmd, get().Composer.Slugs())
		},
	}
}

func newPageCmd(get func() *app.App) *cobra.Command {
	return &cobra.Command{
		Use:   "page <slug>",
		Short: "Print a static page model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, ok := get().Composer.Page(args[0])
			if !ok {
				return fmt.Errorf("no static page %q", args[0])
			}
			return printJSON(cmd, p)
		},
	}
}

func newHeroCmd(get func() *app.App) *cobra.Command {
	var (
		slide int
		title string
	)
	cmd := &cobra.Command{
		Use:   "hero",
		Short: "Print the hero section for a slide index or title keyword",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c := get().Composer
			switch {
			case title != "":
				return printJSON(cmd, c.HeroSectionBySlideTitle(title))
			case cmd.Flags().Changed("slide"):
				return printJSON(cmd, c.HeroSectionBySlideIndex(slide))
			default:
				return printJSON(cmd, c.HeroSection())
			}
		},
	}
	cmd.Flags().IntVar(&slide, "slide", 0, "hero slide index")
	cmd.Flags().StringVar(&title, "title", "", "case-insensitive slide title keyword")
	return cmd
}

func newPolicyCmd(get func() *app.App) *cobra.Command {
	var kind string
	cmd := &cobra.Command{
		Use:   "policy <slug>",
		Short: "Resolve a CMS-backed page with its static fallbacks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			var fb page.Fallback
			if p, ok := a.Catalog.PolicyBySlug(args[0]); ok {
				fb = page.Fallback{Title: p.Title, Description: p.Description}
			}
			return printJSON(cmd, a.Composer.ContentPage(cmd.Context(), kind, args[0], fb))
		},
	}
	cmd.Flags().StringVar(&kind, "kind", page.KindPolicies, "CMS collection")
	return cmd
}

func newNavCmd(get func() *app.App) *cobra.Command {
	var lang, path string
	cmd := &cobra.Command{
		Use:   "nav",
		Short: "Print the resolved navigation and breadcrumbs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := get()
			if lang == "" {
				lang = a.Bundle.Fallback()
			}
			items := a.Nav.Resolve(cmd.Context(), lang, path)
			return printJSON(cmd, map[string]any{
				"items":       items,
				"breadcrumbs": nav.Breadcrumbs(path, items),
			})
		},
	}
	cmd.Flags().StringVar(&lang, "lang", "", "language code")
	cmd.Flags().StringVar(&path, "path", "/", "current path for active state")
	return cmd
}

type filterFlags struct {
	search, product, service, source string
	sourceID                         int
}

func (f *filterFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.search, "search", "", "case-insensitive search")
	cmd.Flags().StringVar(&f.product, "product", "", "product slug")
	cmd.Flags().StringVar(&f.service, "service", "", "service slug")
	cmd.Flags().IntVar(&f.sourceID, "source-id", 0, "source entity id")
	cmd.Flags().StringVar(&f.source, "source", "", "source kind (product, service, job, generic)")
}

func (f *filterFlags) query(cmd *cobra.Command) derived.Query {
	return derived.Query{
		Search:    f.search,
		HasSearch: cmd.Flags().Changed("search"),
		Product:   f.product,
		Service:   f.service,
		SourceID:  f.sourceID,
		Source:    derived.SourceKind(f.source),
	}
}

func newFAQsCmd(get func() *app.App) *cobra.Command {
	f := &filterFlags{}
	cmd := &cobra.Command{
		Use:   "faqs",
		Short: "List derived FAQs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return printJSON(cmd, get().Derived.FAQs.Select(f.query(cmd)))
		},
	}
	f.bind(cmd)
	return cmd
}

func newBenefitsCmd(get func() *app.App) *cobra.Command {
	f := &filterFlags{}
	cmd := &cobra.Command{
		Use:   "benefits",
		Short: "List derived benefits",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return printJSON(cmd, get().Derived.Benefits.Select(f.query(cmd)))
		},
	}
	f.bind(cmd)
	return cmd
}

func newFooterCmd(get func() *app.App) *cobra.Command {
	return &cobra.Command{
		Use:   "footer",
		Short: "Print the footer columns, static and generated",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return printJSON(cmd, derived.FooterColumns(get().Catalog))
		},
	}
}

func newConfigCmd(get func() *app.App) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective site config (CMS, else static)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return printJSON(cmd, get().Composer.SiteConfig(cmd.Context()))
		},
	}
}

func newCacheCmd(get func() *app.App) *cobra.Command {
	cache := &cobra.Command{
		Use:   "cache",
		Short: "Manage the content cache",
	}
	cache.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Clear the shared content cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			get().CMS.ClearCache(cmd.Context())
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "cache cleared")
			return err
		},
	})
	return cache
}

func execute(ctx context.Context, out io.Writer, args []string, loadOpts ...config.Option) error {
	root := newRootCmd(out, loadOpts...)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}
