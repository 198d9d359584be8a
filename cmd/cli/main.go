package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"policysim/domain/catalog"
	"policysim/domain/policy"
	"policysim/domain/simulation"
	"policysim/internal/config"
	"policysim/internal/container"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "policysim-cli",
		Short: "Browse the climate policy catalog and run simulations from the terminal",
	}

	rootCmd.AddCommand(
		newPoliciesCmd(),
		newPolicyCmd(),
		newSimulateCmd(),
		newExportCmd(),
		newRunsCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openContainer wires the same services the web server uses
func openContainer() (*container.Container, error) {
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return container.New(cfg)
}

type filterFlags struct {
	country    string
	status     string
	sector     string
	instrument string
	server     bool
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.country, "country", "", "Country ISO code")
	cmd.Flags().StringVar(&f.status, "status", "", "Policy status")
	cmd.Flags().StringVar(&f.sector, "sector", "", "Sector")
	cmd.Flags().StringVar(&f.instrument, "instrument", "", "Policy instrument")
	cmd.Flags().BoolVar(&f.server, "server-filter", false, "Let the policy API apply the filters instead of fetching everything")
}

func (f *filterFlags) selection() catalog.Selection {
	sel := catalog.Selection{}
	sel.Set(catalog.FacetCountry, f.country)
	sel.Set(catalog.FacetStatus, f.status)
	sel.Set(catalog.FacetSector, f.sector)
	sel.Set(catalog.FacetInstrument, f.instrument)
	return sel
}

// loadCatalog fetches the collection and applies the flag filters
func loadCatalog(ctx context.Context, c *container.Container, filters *filterFlags) error {
	if filters.server {
		if err := c.Catalog.RefreshNarrowed(ctx, filters.selection()); err != nil {
			return fmt.Errorf("failed to load policies: %w", err)
		}
		return nil
	}
	if err := c.Catalog.Refresh(ctx); err != nil {
		return fmt.Errorf("failed to load policies: %w", err)
	}
	c.Catalog.ApplySelection(filters.selection())
	return nil
}

func newPoliciesCmd() *cobra.Command {
	var filters filterFlags
	var pages int
	var showFacets bool

	cmd := &cobra.Command{
		Use:   "policies",
		Short: "List policies, optionally filtered",
		Long: `List policies from the catalog one page at a time.

Example: policysim-cli policies --country KE --status "In force" --page 2`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openContainer()
			if err != nil {
				return err
			}
			defer c.Shutdown(cmd.Context())

			if err := loadCatalog(cmd.Context(), c, &filters); err != nil {
				return err
			}
			for i := 1; i < pages; i++ {
				if _, hasMore, _ := c.Catalog.LoadMore(); !hasMore {
					break
				}
			}

			view := c.Catalog.View()
			if showFacets {
				printFacets(view.Options)
				return nil
			}
			printPolicies(view.Items)
			fmt.Println()
			fmt.Println(view.Summary)
			for _, chip := range view.ActiveFilters {
				fmt.Printf("  filter: %s\n", chip.Label)
			}
			return nil
		},
	}

	filters.register(cmd)
	cmd.Flags().IntVar(&pages, "page", 1, "Number of pages to reveal")
	cmd.Flags().BoolVar(&showFacets, "facets", false, "Print the available filter values instead of policies")
	return cmd
}

func printPolicies(items []policy.Policy) {
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCOUNTRY\tSTATUS\tSECTOR")
	for _, p := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", p.ID, truncate(p.Name, 48), p.Country, p.Status, p.Sector)
	}
	tw.Flush()
}

func printFacets(opts catalog.Options) {
	fmt.Println("Countries:")
	for _, label := range opts.Labels() {
		fmt.Printf("  %s\n", label)
	}
	for _, group := range []struct {
		title  string
		values []string
	}{
		{"Statuses", opts.Statuses},
		{"Sectors", opts.Sectors},
		{"Instruments", opts.Instruments},
	} {
		fmt.Printf("%s:\n", group.title)
		for _, v := range group.values {
			fmt.Printf("  %s\n", v)
		}
	}
}

func newPolicyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "policy",
		Short: "Inspect individual policies",
	}

	show := &cobra.Command{
		Use:   "show [policy-id...]",
		Short: "Show the detail page of one or more policies",
		Long: `Fetch policy details concurrently and print them in argument order.

Example: policysim-cli policy show KEN-2016-01 DEU-2019-04`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openContainer()
			if err != nil {
				return err
			}
			defer c.Shutdown(cmd.Context())

			details := make([]*policy.DetailView, len(args))
			g, ctx := errgroup.WithContext(cmd.Context())
			g.SetLimit(4)
			for i, id := range args {
				i, id := i, id
				g.Go(func() error {
					view, err := c.Policies.Detail(ctx, id)
					if err != nil {
						return fmt.Errorf("%s: %w", id, err)
					}
					details[i] = view
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			for i, d := range details {
				if i > 0 {
					fmt.Println(strings.Repeat("-", 60))
				}
				printDetail(d)
			}
			return nil
		},
	}

	cmd.AddCommand(show)
	return cmd
}

func printDetail(d *policy.DetailView) {
	p := d.Policy
	fmt.Printf("%s  %s\n", p.ID, p.Name)
	fmt.Printf("Country:     %s (%s)\n", p.Country, p.CountryISO)
	fmt.Printf("Status:      %s [%s]\n", p.Status, d.Status.Color)
	fmt.Printf("Timeline:    %s - %s\n", d.Timeline.From, d.Timeline.To)
	fmt.Printf("Decision:    %s\n", d.Decision)
	fmt.Printf("Instruments: %s\n", strings.Join(d.Instruments, ", "))
	fmt.Printf("Sectors:     %s\n", strings.Join(d.Sectors, ", "))
	fmt.Printf("Scores:      carbon %s, justice %s, economic impact %s\n",
		d.Scores.Carbon, d.Scores.Justice, d.Scores.EconomicImpact)
	if len(d.Trajectory) > 0 {
		first, last := d.Trajectory[0], d.Trajectory[len(d.Trajectory)-1]
		fmt.Printf("Trajectory:  %d %.2f°C -> %d %.2f°C\n", first.Year, first.Temperature, last.Year, last.Temperature)
	}
	for _, s := range d.Strengths {
		fmt.Printf("  + %s\n", s)
	}
	for _, w := range d.Weaknesses {
		fmt.Printf("  - %s\n", w)
	}
}

func newSimulateCmd() *cobra.Command {
	var sets []string
	var location string
	var lat, lon float64
	var start, end int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Score a policy configuration",
		Long: `Send a policy configuration to the scoring service and print the interpretation.
Unset parameters keep their defaults; numeric values are clamped to their range.

Example: policysim-cli simulate --set carbonTaxRate=80 --set fossilFuelPhaseout=fast --start 2025`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openContainer()
			if err != nil {
				return err
			}
			defer c.Shutdown(cmd.Context())

			err = c.Simulator.Update(func(cfg *simulation.Config) error {
				if cmd.Flags().Changed("location") {
					cfg.Location.Name = location
				}
				if cmd.Flags().Changed("lat") {
					cfg.Location.Lat = lat
				}
				if cmd.Flags().Changed("lon") {
					cfg.Location.Lon = lon
				}
				if cmd.Flags().Changed("start") {
					cfg.StartYear = start
				}
				if cmd.Flags().Changed("end") {
					cfg.EndYear = end
				}
				for _, kv := range sets {
					field, value, ok := strings.Cut(kv, "=")
					if !ok {
						return fmt.Errorf("--set expects field=value, got %q", kv)
					}
					if err := setClamped(cfg, strings.TrimSpace(field), value); err != nil {
						return err
					}
				}
				return nil
			})
			if err != nil {
				return err
			}

			if _, err := c.Simulator.Run(cmd.Context()); err != nil {
				return fmt.Errorf("simulation failed: %w", err)
			}

			view := c.Simulator.View()
			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(view)
			}
			printInterpretation(view.Interpretation)
			if view.RunID != "" {
				fmt.Printf("\nSaved as run %s\n", view.RunID)
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&sets, "set", nil, "Policy parameter as field=value (repeatable)")
	cmd.Flags().StringVar(&location, "location", "", "Location name")
	cmd.Flags().Float64Var(&lat, "lat", 0, "Location latitude")
	cmd.Flags().Float64Var(&lon, "lon", 0, "Location longitude")
	cmd.Flags().IntVar(&start, "start", 0, "First simulated year")
	cmd.Flags().IntVar(&end, "end", 0, "Last simulated year")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the full simulator view as JSON")
	return cmd
}

// setClamped parses a --set value, clamping numeric parameters to their range
func setClamped(cfg *simulation.Config, field, raw string) error {
	if b, ok := simulation.BoundOf(field); ok && b.Kind == simulation.KindNumber {
		n, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return fmt.Errorf("%s expects a number, got %q", field, raw)
		}
		return cfg.Set(field, simulation.Clamp(field, n))
	}
	return cfg.SetString(field, raw)
}

func printInterpretation(in *simulation.Interpretation) {
	if in == nil {
		fmt.Println("No result")
		return
	}
	fmt.Printf("Tier:    %s (%s)\n", in.Tier, in.Badge)
	fmt.Printf("Scores:  carbon %s, justice %s, economic pressure %s\n",
		in.Scores.Carbon, in.Scores.Justice, in.Scores.EconomicPressure)
	if len(in.Chart) > 0 {
		fmt.Println("Trajectory:")
		for _, pt := range in.Chart {
			fmt.Printf("  %d  %.2f°C\n", pt.Year, pt.Temperature)
		}
	}
	for _, s := range in.Strengths {
		fmt.Printf("  + %s\n", s)
	}
	for _, w := range in.Weaknesses {
		fmt.Printf("  - %s\n", w)
	}
}

func newExportCmd() *cobra.Command {
	var filters filterFlags
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the filtered policy collection to xlsx or csv",
		Long: `Export every policy matching the filters. The format follows the file extension.

Example: policysim-cli export --country DE --out germany.xlsx`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openContainer()
			if err != nil {
				return err
			}
			defer c.Shutdown(cmd.Context())

			if err := loadCatalog(cmd.Context(), c, &filters); err != nil {
				return err
			}
			policies := c.Catalog.Filtered()
			if err := c.Exporter.WriteFile(out, policies); err != nil {
				return err
			}
			fmt.Printf("Exported %d policies to %s\n", len(policies), out)
			return nil
		},
	}

	filters.register(cmd)
	cmd.Flags().StringVar(&out, "out", "policies.xlsx", "Output file (.xlsx or .csv)")
	return cmd
}

func newRunsCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List stored simulation runs (requires DATABASE_URL)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openContainer()
			if err != nil {
				return err
			}
			defer c.Shutdown(cmd.Context())

			runs, err := c.Simulator.History(cmd.Context(), limit)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tCREATED\tTIER\tPOLICY\tFINGERPRINT")
			for _, r := range runs {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
					r.ID, r.CreatedAt.Format("2006-01-02 15:04"), r.Tier(), r.Result.PolicyName, r.Fingerprint.Short())
			}
			tw.Flush()
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum runs to list")
	return cmd
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
