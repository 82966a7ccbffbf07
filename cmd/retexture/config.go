package main

import (
	"fmt"
	"image"
	"os"

	"github.com/setanarut/retexture"
	"gopkg.in/yaml.v3"
)

// config mirrors retexture.Options with file-friendly key names. It is
// unmarshalled over a copy of the defaults, so a config file only
// needs the keys it wants to change.
type config struct {
	Fill struct {
		RedMin   int `yaml:"red_min"`
		GreenMin int `yaml:"green_min"`
		BlueMax  int `yaml:"blue_max"`
	} `yaml:"fill"`
	Outline struct {
		Max int `yaml:"max"`
	} `yaml:"outline"`
	Dilate struct {
		Iterations int `yaml:"iterations"`
		Noise      int `yaml:"noise"`
	} `yaml:"dilate"`
	KeyStandard   keyConfig `yaml:"key_standard"`
	KeyAggressive keyConfig `yaml:"key_aggressive"`
	Shading       struct {
		Min float64 `yaml:"min"`
		Max float64 `yaml:"max"`
	} `yaml:"shading"`
	Output struct {
		Width  int    `yaml:"width"`
		Height int    `yaml:"height"`
		Filter string `yaml:"filter"`
	} `yaml:"output"`
}

type keyConfig struct {
	GreenMin    int `yaml:"green_min"`
	GreenMargin int `yaml:"green_margin"`
	RedCeiling  int `yaml:"red_ceiling"`
}

func configFromOptions(opt retexture.Options) config {
	var c config
	c.Fill.RedMin = opt.Fill.RedMin
	c.Fill.GreenMin = opt.Fill.GreenMin
	c.Fill.BlueMax = opt.Fill.BlueMax
	c.Outline.Max = opt.Outline.Max
	c.Dilate.Iterations = opt.DilateIterations
	c.Dilate.Noise = opt.DilateNoise
	c.KeyStandard = keyConfigFrom(opt.KeyStandard)
	c.KeyAggressive = keyConfigFrom(opt.KeyAggressive)
	c.Shading.Min = opt.ShadingMin
	c.Shading.Max = opt.ShadingMax
	c.Output.Width = opt.OutputSize.X
	c.Output.Height = opt.OutputSize.Y
	c.Output.Filter = string(opt.Filter)
	return c
}

func keyConfigFrom(k retexture.ChromaKey) keyConfig {
	return keyConfig{GreenMin: k.GreenMin, GreenMargin: k.GreenMargin, RedCeiling: k.RedCeiling}
}

func (c config) toOptions() retexture.Options {
	return retexture.Options{
		Fill: retexture.FillThresholds{
			RedMin:   c.Fill.RedMin,
			GreenMin: c.Fill.GreenMin,
			BlueMax:  c.Fill.BlueMax,
		},
		Outline:          retexture.OutlineThreshold{Max: c.Outline.Max},
		DilateIterations: c.Dilate.Iterations,
		DilateNoise:      c.Dilate.Noise,
		KeyStandard:      c.KeyStandard.toChromaKey(),
		KeyAggressive:    c.KeyAggressive.toChromaKey(),
		ShadingMin:       c.Shading.Min,
		ShadingMax:       c.Shading.Max,
		OutputSize:       image.Pt(c.Output.Width, c.Output.Height),
		Filter:           retexture.Filter(c.Output.Filter),
	}
}

func (k keyConfig) toChromaKey() retexture.ChromaKey {
	return retexture.ChromaKey{GreenMin: k.GreenMin, GreenMargin: k.GreenMargin, RedCeiling: k.RedCeiling}
}

// loadOptions returns the defaults overlaid with the YAML file at
// path, when one is given.
func loadOptions(path string) (retexture.Options, error) {
	opt := retexture.DefaultOptions()
	if path == "" {
		return opt, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return opt, fmt.Errorf("read config: %w", err)
	}
	c := configFromOptions(opt)
	if err := yaml.Unmarshal(data, &c); err != nil {
		return opt, fmt.Errorf("parse config %s: %w", path, err)
	}
	return c.toOptions(), nil
}
