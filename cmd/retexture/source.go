package main

import (
	"cmp"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/setanarut/retexture/utils"
)

// dirFrameSource serves the numbered frame images of a directory in
// index order. Files sort by the trailing number in their name, so
// frame_2.png comes before frame_10.png; files without a number sort
// after the numbered ones by name.
type dirFrameSource struct {
	paths []string
}

var trailingNumber = regexp.MustCompile(`(\d+)\D*$`)

func frameNumber(name string) (int, bool) {
	m := trailingNumber.FindStringSubmatch(name)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

func isFrameFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tif", ".tiff", ".webp":
		return true
	}
	return false
}

func compareFrameNames(a, b string) int {
	na, aok := frameNumber(a)
	nb, bok := frameNumber(b)
	switch {
	case aok && bok:
		if na != nb {
			return cmp.Compare(na, nb)
		}
	case aok:
		return -1
	case bok:
		return 1
	}
	return cmp.Compare(a, b)
}

func newDirFrameSource(dir string) (*dirFrameSource, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("scan frames: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !isFrameFile(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("no frame images in %s", dir)
	}
	slices.SortFunc(names, compareFrameNames)

	paths := make([]string, len(names))
	for i, n := range names {
		paths[i] = filepath.Join(dir, n)
	}
	return &dirFrameSource{paths: paths}, nil
}

func (s *dirFrameSource) Len() int { return len(s.paths) }

// Frame decodes frame i. Each call opens its own file, so concurrent
// workers are fine.
func (s *dirFrameSource) Frame(i int) (image.Image, error) {
	if i < 1 || i > len(s.paths) {
		return nil, fmt.Errorf("frame %d out of range [1, %d]", i, len(s.paths))
	}
	return utils.ReadImage(s.paths[i-1])
}

// pngSink writes finished frames as frame_N.png and advances the
// progress bar.
type pngSink struct {
	dir string
	bar *progressbar.ProgressBar
}

func (s *pngSink) Emit(index int, img image.Image) error {
	if err := utils.SaveImage(img, filepath.Join(s.dir, fmt.Sprintf("frame_%d.png", index))); err != nil {
		return err
	}
	if s.bar != nil {
		s.bar.Add(1)
	}
	return nil
}
