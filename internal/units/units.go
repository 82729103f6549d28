package units

import (
	"fmt"
	"strings"
)

var byteUnits = []string{"B", "KB", "MB", "GB"}

// FormatBytes форматирует размер в человекочитаемую строку:
//
//   - 0 -> "0 B";
//   - отрицательное значение -> "" (признак "нечего показывать", не ошибка);
//   - иначе подбирается наибольшая единица из B/KB/MB/GB, при которой
//     значение меньше 1024 (GB - потолок, TB нет);
//   - ноль знаков после запятой если значение >= 10 или единица B,
//     иначе один знак, ровный ".0" отбрасывается.
//
// Примеры:
//
//	500     -> "500 B"
//	1536    -> "1.5 KB"
//	10240   -> "10 KB"
//	2097152 -> "2 MB"
func FormatBytes(n int64) string {
	if n == 0 {
		return "0 B"
	}
	if n < 0 {
		return ""
	}

	v := float64(n)
	unit := 0
	for v >= 1024 && unit < len(byteUnits)-1 {
		v /= 1024
		unit++
	}

	if unit == 0 || v >= 10 {
		return fmt.Sprintf("%.0f %s", v, byteUnits[unit])
	}

	s := fmt.Sprintf("%.1f", v)
	s = strings.TrimSuffix(s, ".0")
	return s + " " + byteUnits[unit]
}
