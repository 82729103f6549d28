package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"webpconv/internal/model"
)

// optionsFile - TOML-файл с дефолтами опций конвертации. Указатели
// отличают "не задано" от нулевого значения.
type optionsFile struct {
	Output         string `toml:"output"`
	Quality        *int   `toml:"quality"`
	Lossless       *bool  `toml:"lossless"`
	NearLossless   *bool  `toml:"near_lossless"`
	Effort         *int   `toml:"effort"`
	SmartSubsample *bool  `toml:"smart_subsample"`
}

// LoadOptions читает файл дефолтов и накладывает его поверх встроенных
// значений по умолчанию. Взаимоисключение lossless/near_lossless
// сохраняется: значения применяются через сеттеры модели.
func LoadOptions(path string) (model.Options, error) {
	opts := model.DefaultOptions()

	data, err := os.ReadFile(path)
	if err != nil {
		return opts, fmt.Errorf("read options file failed: %w", err)
	}

	var f optionsFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return opts, fmt.Errorf("parse options file failed: %w", err)
	}

	if f.Lossless != nil && *f.Lossless && f.NearLossless != nil && *f.NearLossless {
		return opts, fmt.Errorf("%s: %w", path, model.ErrOptionConflict)
	}

	if f.Output != "" {
		opts.Output = model.OutputMode(f.Output)
	}
	if f.Quality != nil {
		opts.Quality = *f.Quality
	}
	if f.Effort != nil {
		opts.Effort = *f.Effort
	}
	if f.SmartSubsample != nil {
		opts.SmartSubsample = *f.SmartSubsample
	}
	if f.Lossless != nil {
		opts.SetLossless(*f.Lossless)
	}
	if f.NearLossless != nil {
		opts.SetNearLossless(*f.NearLossless)
	}

	if err := opts.Validate(); err != nil {
		return model.DefaultOptions(), fmt.Errorf("%s: %w", path, err)
	}

	return opts, nil
}
