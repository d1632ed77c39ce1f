package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/yoanbernabeu/counttype/plot"
	"github.com/yoanbernabeu/counttype/stats"
)

var (
	graphImage  string
	graphXLabel string
	graphYLabel string
	graphTitle  string
	graphWidth  float64
	graphHeight float64
)

var graphCmd = &cobra.Command{
	Use:   "graph <csv>",
	Short: "Graph a single-column numeric log",
	Long: `Draw a line chart from a file made of one number per row, such as
the <output>.log or <output>_time.log written by count.

Each row is a Y value; X is the row index starting at 0. The image
format follows the --image extension (png, svg, pdf, jpg).`,
	Args: cobra.ExactArgs(1),
	RunE: runGraph,
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().StringVar(&graphImage, "image", "graph.png", "Output picture name")
	graphCmd.Flags().StringVar(&graphXLabel, "xlabel", "", "Name of the x axis")
	graphCmd.Flags().StringVar(&graphYLabel, "ylabel", "", "Name of the y axis")
	graphCmd.Flags().StringVar(&graphTitle, "title", "", "Title of the plot")
	graphCmd.Flags().Float64Var(&graphWidth, "width", 0, "Image width in inches (default from config)")
	graphCmd.Flags().Float64Var(&graphHeight, "height", 0, "Image height in inches (default from config)")
}

func runGraph(cmd *cobra.Command, args []string) error {
	series, err := stats.ReadSeries(args[0])
	if err != nil {
		return err
	}

	size := plot.Size{Width: cfg.Plot.Width, Height: cfg.Plot.Height}
	if cmd.Flags().Changed("width") {
		size.Width = graphWidth
	}
	if cmd.Flags().Changed("height") {
		size.Height = graphHeight
	}

	res, err := plot.Render(series, plot.Labels{
		Title:  graphTitle,
		XLabel: graphXLabel,
		YLabel: graphYLabel,
	}, graphImage, size)
	if err != nil {
		return fmt.Errorf("failed to graph %s: %w", args[0], err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Max value of the graph is %s and data size is %d.\n",
		strconv.FormatFloat(res.Max, 'f', -1, 64), res.Points)
	return nil
}
