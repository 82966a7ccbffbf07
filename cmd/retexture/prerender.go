package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/setanarut/retexture"
	"github.com/setanarut/retexture/utils"
	"github.com/spf13/cobra"
)

var prerenderOpts struct {
	input  string
	output string
	config string
}

var prerenderCmd = &cobra.Command{
	Use:   "prerender",
	Short: "Write per-frame masks, shading maps and keyed base frames",
	Long: `prerender writes the four artifacts a client needs to composite its
own textures without rerunning classification:

  frame_N_mask.png     dilated fill mask
  frame_N_lines.png    outline mask
  frame_N_shading.png  shading field, byte encoded
  frame_N_base.png     frame with the background keyed out

Artifacts keep the frame's native resolution.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPrerender(cmd)
	},
}

func init() {
	f := prerenderCmd.Flags()
	f.StringVarP(&prerenderOpts.input, "input", "i", "", "directory of numbered frame images")
	f.StringVarP(&prerenderOpts.output, "output", "o", "", "output directory")
	f.StringVar(&prerenderOpts.config, "config", "", "YAML options file")
	prerenderCmd.MarkFlagRequired("input")
	prerenderCmd.MarkFlagRequired("output")
	rootCmd.AddCommand(prerenderCmd)
}

func runPrerender(cmd *cobra.Command) error {
	opt, err := loadOptions(prerenderOpts.config)
	if err != nil {
		return err
	}
	src, err := newDirFrameSource(prerenderOpts.input)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(prerenderOpts.output, 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	pipeline, err := retexture.NewPipeline(opt, nil, retexture.WithLogger(slog.Default()))
	if err != nil {
		return err
	}

	bar := progressbar.NewOptions(src.Len(),
		progressbar.OptionSetDescription("prerendering"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
	)

	var errs []error
	for i := 1; i <= src.Len(); i++ {
		if err := cmd.Context().Err(); err != nil {
			errs = append(errs, err)
			break
		}
		img, err := src.Frame(i)
		if err != nil {
			errs = append(errs, err)
			bar.Add(1)
			continue
		}
		pre, err := pipeline.Prerender(retexture.Frame{Index: i, Image: img})
		if err != nil {
			errs = append(errs, err)
			bar.Add(1)
			continue
		}
		if err := savePrerendered(prerenderOpts.output, i, pre); err != nil {
			errs = append(errs, err)
		}
		bar.Add(1)
	}
	bar.Finish()
	fmt.Fprintln(os.Stderr)
	return errors.Join(errs...)
}

func savePrerendered(dir string, index int, pre *retexture.Prerendered) error {
	name := func(suffix string) string {
		return filepath.Join(dir, fmt.Sprintf("frame_%d_%s.png", index, suffix))
	}
	if err := utils.SaveImage(pre.Fill.ToGray(), name("mask")); err != nil {
		return err
	}
	if err := utils.SaveImage(pre.Outline.ToGray(), name("lines")); err != nil {
		return err
	}
	if err := utils.SaveImage(pre.Shading, name("shading")); err != nil {
		return err
	}
	return utils.SaveImage(pre.Base, name("base"))
}
