package model

import "errors"

var (
	ErrNoFilesSelected   = errors.New("no files selected")
	ErrOptionConflict    = errors.New("lossless and near-lossless are mutually exclusive")
	ErrQualityOutOfRange = errors.New("quality must be between 1 and 100")
	ErrEffortOutOfRange  = errors.New("effort must be between 0 and 6")
	ErrBadOutputMode     = errors.New("output mode must be auto or zip")
)
