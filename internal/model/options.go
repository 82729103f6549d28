package model

// OutputMode определяет политику упаковки результата:
// auto - сервис сам решает (один файл -> webp, несколько -> архив),
// zip - всегда архив.
type OutputMode string

const (
	OutputAuto OutputMode = "auto"
	OutputZip  OutputMode = "zip"
)

// Options - конфигурация конвертации.
//
// Инвариант: Lossless и NearLossless взаимоисключающие. Сеттеры кодируют
// это напрямую: установка одного сбрасывает другой. Quality при Lossless
// не имеет смысла, но всё равно передается сервису (таков контракт).
type Options struct {
	Output         OutputMode
	Quality        int
	Lossless       bool
	NearLossless   bool
	Effort         int
	SmartSubsample bool
}

// DefaultOptions возвращает значения по умолчанию, совпадающие
// с дефолтами сервиса.
func DefaultOptions() Options {
	return Options{
		Output:  OutputAuto,
		Quality: 80,
		Effort:  4,
	}
}

func (o *Options) SetLossless(v bool) {
	o.Lossless = v
	if v {
		o.NearLossless = false
	}
}

func (o *Options) SetNearLossless(v bool) {
	o.NearLossless = v
	if v {
		o.Lossless = false
	}
}

// Validate проверяет допустимость комбинации опций. Конфликт
// Lossless/NearLossless недостижим через сеттеры, но гейт отправки
// обязан проверить его всё равно.
func (o Options) Validate() error {
	if o.Lossless && o.NearLossless {
		return ErrOptionConflict
	}
	if o.Quality < 1 || o.Quality > 100 {
		return ErrQualityOutOfRange
	}
	if o.Effort < 0 || o.Effort > 6 {
		return ErrEffortOutOfRange
	}
	if o.Output != OutputAuto && o.Output != OutputZip {
		return ErrBadOutputMode
	}
	return nil
}
