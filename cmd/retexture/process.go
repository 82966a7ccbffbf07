package main

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/setanarut/retexture"
	"github.com/setanarut/retexture/utils"
	"github.com/spf13/cobra"
)

var processOpts struct {
	input     string
	texture   string
	output    string
	config    string
	size      int
	filter    string
	workers   int
	saveMasks bool
}

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Key, retexture and downsample a directory of frames",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runProcess(cmd)
	},
}

func init() {
	f := processCmd.Flags()
	f.StringVarP(&processOpts.input, "input", "i", "", "directory of numbered frame images")
	f.StringVarP(&processOpts.texture, "texture", "t", "", "texture image; omit to only key and outline")
	f.StringVarP(&processOpts.output, "output", "o", "", "output directory")
	f.StringVar(&processOpts.config, "config", "", "YAML options file")
	f.IntVar(&processOpts.size, "size", 0, "square output size, overrides the config")
	f.StringVar(&processOpts.filter, "filter", "", "resample filter: lanczos, catmullrom, linear, box or nearest")
	f.IntVar(&processOpts.workers, "workers", 0, "parallel frame workers (default: one per CPU)")
	f.BoolVar(&processOpts.saveMasks, "save-masks", false, "also write frame_N_mask.png and frame_N_lines.png")
	processCmd.MarkFlagRequired("input")
	processCmd.MarkFlagRequired("output")
	rootCmd.AddCommand(processCmd)
}

func runProcess(cmd *cobra.Command) error {
	opt, err := loadOptions(processOpts.config)
	if err != nil {
		return err
	}
	if processOpts.size > 0 {
		opt.OutputSize = image.Pt(processOpts.size, processOpts.size)
	}
	if processOpts.filter != "" {
		opt.Filter = retexture.Filter(processOpts.filter)
	}

	var texture image.Image
	if processOpts.texture != "" {
		if texture, err = utils.ReadImage(processOpts.texture); err != nil {
			return err
		}
	}

	src, err := newDirFrameSource(processOpts.input)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(processOpts.output, 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	pipeline, err := retexture.NewPipeline(opt, texture,
		retexture.WithLogger(slog.Default()),
		retexture.WithWorkers(processOpts.workers))
	if err != nil {
		return err
	}

	bar := progressbar.NewOptions(src.Len(),
		progressbar.OptionSetDescription("retexturing"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
	)
	sink := &pngSink{dir: processOpts.output, bar: bar}

	runErr := pipeline.Run(cmd.Context(), src, sink)
	bar.Finish()
	fmt.Fprintln(os.Stderr)

	if processOpts.saveMasks {
		runErr = errors.Join(runErr, saveMasks(cmd, src, opt))
	}
	return runErr
}

// saveMasks writes the dilated fill mask and the outline mask next to
// the frame outputs.
func saveMasks(cmd *cobra.Command, src *dirFrameSource, opt retexture.Options) error {
	var errs []error
	for i := 1; i <= src.Len(); i++ {
		if cmd.Context().Err() != nil {
			break
		}
		img, err := src.Frame(i)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		fill := retexture.ClassifyFill(img, opt.Fill).Dilate(opt.DilateIterations, opt.DilateNoise)
		lines := retexture.ClassifyOutline(img, opt.Outline)
		maskPath := filepath.Join(processOpts.output, fmt.Sprintf("frame_%d_mask.png", i))
		linesPath := filepath.Join(processOpts.output, fmt.Sprintf("frame_%d_lines.png", i))
		if err := utils.SaveImage(fill.ToGray(), maskPath); err != nil {
			errs = append(errs, err)
		}
		if err := utils.SaveImage(lines.ToGray(), linesPath); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
