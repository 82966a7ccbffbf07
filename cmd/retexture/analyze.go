package main

import (
	"fmt"
	"image/color"

	"github.com/setanarut/retexture"
	"github.com/setanarut/retexture/utils"
	"github.com/spf13/cobra"
)

var analyzeOpts struct {
	input    string
	config   string
	clusters int
	palette  string
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Report dominant colors and classifier coverage for a frame",
	Long: `analyze is the threshold tuning aid. It clusters a frame's colors,
shows which clusters the fill and chroma classifiers would match under
the current options, and summarizes the luminance range that shading
extraction would see.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAnalyze(cmd)
	},
}

func init() {
	f := analyzeCmd.Flags()
	f.StringVarP(&analyzeOpts.input, "input", "i", "", "frame image to analyze")
	f.StringVar(&analyzeOpts.config, "config", "", "YAML options file")
	f.IntVarP(&analyzeOpts.clusters, "clusters", "k", 6, "number of color clusters")
	f.StringVar(&analyzeOpts.palette, "palette", "", "also save the cluster colors as a swatch image")
	analyzeCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command) error {
	opt, err := loadOptions(analyzeOpts.config)
	if err != nil {
		return err
	}
	img, err := utils.ReadImage(analyzeOpts.input)
	if err != nil {
		return err
	}
	analysis, err := retexture.Analyze(img, opt, analyzeOpts.clusters)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s  %dx%d\n", analyzeOpts.input, analysis.Width, analysis.Height)
	fmt.Fprintf(out, "dominant color: %s\n", analysis.DominantHex)
	fmt.Fprintf(out, "coverage: fill %.1f%%  outline %.1f%%  keyed %.1f%%\n",
		analysis.FillShare*100, analysis.OutlineShare*100, analysis.KeyedShare*100)
	if analysis.Luminance.Samples > 0 {
		l := analysis.Luminance
		fmt.Fprintf(out, "fill luminance: mean %.1f  stddev %.1f  range [%.1f, %.1f]  (%d px)\n",
			l.Mean, l.StdDev, l.Min, l.Max, l.Samples)
	}
	fmt.Fprintln(out, "clusters:")
	for _, c := range analysis.Clusters {
		labels := ""
		if c.Fill {
			labels += "  fill"
		}
		if c.Keyed {
			labels += "  keyed"
		}
		fmt.Fprintf(out, "  %s  %5.1f%%  dLab %.2f%s\n", c.Hex, c.Share*100, c.DistLab, labels)
	}

	if analyzeOpts.palette != "" && len(analysis.Clusters) > 0 {
		colors := make([]color.NRGBA, len(analysis.Clusters))
		for i, c := range analysis.Clusters {
			colors[i] = c.Color
		}
		palette := utils.PaletteFromNRGBA(colors)
		utils.SortPaletteByBrightness(palette)
		if err := utils.SavePalette(palette, 64, analyzeOpts.palette); err != nil {
			return err
		}
	}
	return nil
}
