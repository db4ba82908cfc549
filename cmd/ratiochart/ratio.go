package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"RatioChart/internal/calculator"
	"RatioChart/internal/collector"
	"RatioChart/internal/model"
)

type ratioFlags struct {
	symbolA, symbolB string
	from, to         string
	preset           string
	order            string
	asJSON           bool
}

func newRatioCmd(cfgPath *string) *cobra.Command {
	var f ratioFlags
	cmd := &cobra.Command{
		Use:   "ratio",
		Short: "Compute one ratio chart and print the per-day summary",
		Example: "  ratiochart ratio --a TSLA --b MSTR --from 2024-01-01 --to 2024-01-07\n" +
			"  ratiochart ratio --range 1month --order b/a --json",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*cfgPath)
			if err != nil {
				return err
			}
			loc, err := cfg.Location()
			if err != nil {
				return err
			}
			if f.symbolA == "" && f.symbolB == "" {
				f.symbolA, f.symbolB = cfg.Pair.SymbolA, cfg.Pair.SymbolB
				if f.order == "" {
					f.order = cfg.Pair.Order
				}
			}
			order, err := model.ParseRatioOrder(f.order)
			if err != nil {
				return err
			}
			from, to, err := calculator.ResolveRange(f.preset, f.from, f.to, time.Now(), loc)
			if err != nil {
				return err
			}

			col := collector.NewCollector(newFetcher(cfg), loc)
			chart, err := col.Collect(cmd.Context(), model.Request{
				SymbolA: f.symbolA, SymbolB: f.symbolB, Order: order, From: from, To: to,
			})
			if err != nil {
				return fmt.Errorf("%s: %w", model.ErrorKind(err), err)
			}
			if f.asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(chart)
			}
			printChart(cmd.OutOrStdout(), chart, loc)
			return nil
		},
	}
	cmd.Flags().StringVar(&f.symbolA, "a", "", "first symbol (default from config)")
	cmd.Flags().StringVar(&f.symbolB, "b", "", "second symbol (default from config)")
	cmd.Flags().StringVar(&f.from, "from", "", "start date YYYY-MM-DD")
	cmd.Flags().StringVar(&f.to, "to", "", "end date YYYY-MM-DD, inclusive")
	cmd.Flags().StringVar(&f.preset, "range", "", "today, 7days, 1month or custom")
	cmd.Flags().StringVar(&f.order, "order", "", "a/b or b/a")
	cmd.Flags().BoolVar(&f.asJSON, "json", false, "print the chart as JSON")
	return cmd
}

func printChart(out io.Writer, chart *model.RatioChart, loc *time.Location) {
	fmt.Fprintf(out, "%s\n", chart.Title)
	fmt.Fprintf(out, "%s to %s, %s bars, %d aligned points\n\n",
		chart.From.In(loc).Format("2006-01-02 15:04"), chart.To.In(loc).Format("2006-01-02 15:04"),
		chart.Granularity, chart.PointsAligned)

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "day\tpoints\tfirst\tlast\tmin\tmax\tmean\tchange%\t")
	for _, d := range chart.Days {
		s := d.Stats
		fmt.Fprintf(tw, "%s\t%d\t%.4f\t%.4f\t%.4f\t%.4f\t%.4f\t%+.2f\t\n",
			d.DayKey, s.Count, s.First, s.Last, s.Min, s.Max, s.Mean, s.Change)
	}
	tw.Flush()
}
