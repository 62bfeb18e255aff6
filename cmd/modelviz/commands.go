package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/soltixdb/modelviz/internal/dashboard"
	"github.com/soltixdb/modelviz/internal/plot"
	"github.com/soltixdb/modelviz/internal/stats"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "modelviz %s (commit %s, built %s)\n", Version, GitCommit, BuildTime)
		},
	}
}

func newGroupsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "groups [store.h5]",
		Short: "List groups (tabs) and their items",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd, args)
			if err != nil {
				return err
			}
			return printGroups(cmd.OutOrStdout(), a.ctrl)
		},
	}
}

func printGroups(w io.Writer, ctrl *dashboard.Controller) error {
	for _, group := range ctrl.Tabs() {
		items, err := ctrl.Items(group)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s (%d)\n", group, len(items))
		for _, item := range items {
			fmt.Fprintf(w, "  %s\n", item)
		}
	}
	return nil
}

func kindFlag(cmd *cobra.Command) (plot.Kind, error) {
	name, _ := cmd.Flags().GetString("kind")
	return plot.ParseKind(name)
}

func newRenderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render [store.h5]",
		Short: "Render the panels of a group to image files",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := kindFlag(cmd)
			if err != nil {
				return err
			}
			group, _ := cmd.Flags().GetString("group")
			item, _ := cmd.Flags().GetString("item")

			a, err := setup(cmd, args)
			if err != nil {
				return err
			}

			paths, err := a.ctrl.ExportPanels(cmd.Context(), kind, group, item)
			for _, p := range paths {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			return err
		},
	}

	cmd.Flags().String("kind", string(plot.KindHistogram2D), "Plot kind: 2d_hist, boxplot_over_time, histogram")
	cmd.Flags().String("group", "", "Group (tab) to render")
	cmd.Flags().String("item", "", "Render only this item")
	_ = cmd.MarkFlagRequired("group")
	return cmd
}

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report [store.h5]",
		Short: "Render every panel of a plot kind and merge them into one PDF",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := kindFlag(cmd)
			if err != nil {
				return err
			}

			a, err := setup(cmd, args)
			if err != nil {
				return err
			}

			out, err := a.ctrl.ExportReport(cmd.Context(), kind)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}

	cmd.Flags().String("kind", string(plot.KindHistogram2D), "Plot kind: 2d_hist, boxplot_over_time, histogram")
	return cmd
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats [store.h5]",
		Short: "Print the five-number summary of an item per time step",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			group, _ := cmd.Flags().GetString("group")
			item, _ := cmd.Flags().GetString("item")

			a, err := setup(cmd, args)
			if err != nil {
				return err
			}

			s, err := a.ctrl.Summary(group, item)
			if err != nil {
				return err
			}
			return printSummary(cmd.OutOrStdout(), s)
		},
	}

	cmd.Flags().String("group", "", "Group of the item")
	cmd.Flags().String("item", "", "Item to summarise")
	_ = cmd.MarkFlagRequired("group")
	_ = cmd.MarkFlagRequired("item")
	return cmd
}

func printSummary(w io.Writer, s stats.Summary) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "t\tmin\tq1\tmedian\tq3\tmax\t")
	for t := 0; t < s.Len(); t++ {
		fmt.Fprintf(tw, "%d\t%.4g\t%.4g\t%.4g\t%.4g\t%.4g\t\n",
			t, s.LowerFence[t], s.Q1[t], s.Median[t], s.Q3[t], s.UpperFence[t])
	}
	return tw.Flush()
}
