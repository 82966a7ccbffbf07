package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// Version is the application version.
const Version = "0.1.0"

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "retexture",
	Short: "Chroma key and retexture sprite frames",
	Long: `retexture takes numbered green-screen sprite frames, removes the
background, composites a texture into the warm fill region with the
source lighting preserved, redraws the dark outlines and downsamples
the result. Frames are matched by the trailing number in their file
name, so frame_2.png sorts before frame_10.png.`,
	Version: Version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
}

// Execute runs the root command with a context that ends on Ctrl+C or
// SIGTERM so batch runs stop feeding new frames.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}
