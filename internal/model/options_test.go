package model

import (
	"testing"

	"github.com/nalgeon/be"
)

func TestOptionsMutualExclusion(t *testing.T) {
	t.Run("lossless_then_near", func(t *testing.T) {
		var o Options
		o.SetLossless(true)
		o.SetNearLossless(true)
		be.Equal(t, o.Lossless, false)
		be.Equal(t, o.NearLossless, true)
	})

	t.Run("near_then_lossless", func(t *testing.T) {
		var o Options
		o.SetNearLossless(true)
		o.SetLossless(true)
		be.Equal(t, o.Lossless, true)
		be.Equal(t, o.NearLossless, false)
	})

	t.Run("never_both", func(t *testing.T) {
		// любая последовательность вызовов сеттеров не должна давать оба true
		var o Options
		calls := []func(bool){o.SetLossless, o.SetNearLossless}
		for i := 0; i < 16; i++ {
			calls[i%2](i%3 != 0)
			be.True(t, !(o.Lossless && o.NearLossless))
		}
	})

	t.Run("set_false_keeps_other", func(t *testing.T) {
		var o Options
		o.SetNearLossless(true)
		o.SetLossless(false)
		be.Equal(t, o.NearLossless, true)
	})
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want error
	}{
		{"defaults", DefaultOptions(), nil},
		{"both_exclusive", Options{Output: OutputAuto, Quality: 80, Lossless: true, NearLossless: true}, ErrOptionConflict},
		{"quality_low", Options{Output: OutputAuto, Quality: 0}, ErrQualityOutOfRange},
		{"quality_high", Options{Output: OutputAuto, Quality: 101}, ErrQualityOutOfRange},
		{"effort_high", Options{Output: OutputAuto, Quality: 50, Effort: 7}, ErrEffortOutOfRange},
		{"effort_negative", Options{Output: OutputAuto, Quality: 50, Effort: -1}, ErrEffortOutOfRange},
		{"bad_output", Options{Output: "tar", Quality: 50}, ErrBadOutputMode},
		{"zip_output", Options{Output: OutputZip, Quality: 100, Effort: 6}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			be.Err(t, tt.opts.Validate(), tt.want)
		})
	}
}
