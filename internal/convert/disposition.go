package convert

import (
	"mime"
	"net/url"
	"strings"
)

// fileNameFromDisposition извлекает предложенное имя файла из заголовка
// Content-Disposition (RFC 6266/5987). Пустой или неразборчивый заголовок
// деградирует к fallback, паники исключены.
func fileNameFromDisposition(header, fallback string) string {
	if header == "" {
		return fallback
	}

	if _, params, err := mime.ParseMediaType(header); err == nil {
		if name := params["filename"]; name != "" {
			return name
		}
	}

	// ParseMediaType отвергает заголовок целиком при любом мусоре в нем,
	// поэтому пробуем вытащить имя вручную: сначала расширенную форму
	// filename*=, затем простую filename=.
	if name := extendedFilename(header); name != "" {
		return name
	}
	if name := plainFilename(header); name != "" {
		return name
	}

	return fallback
}

// extendedFilename разбирает форму filename*=UTF-8''value с процентным
// кодированием (RFC 5987).
func extendedFilename(header string) string {
	value, ok := parameterValue(header, "filename*=")
	if !ok {
		return ""
	}

	// отрезаем префикс кодировки: UTF-8'<язык>'
	if p := strings.LastIndexByte(value, '\''); p != -1 {
		charset := value[:strings.IndexByte(value, '\'')]
		if !strings.EqualFold(charset, "utf-8") {
			return ""
		}
		value = value[p+1:]
	}

	decoded, err := url.PathUnescape(value)
	if err != nil {
		return ""
	}
	return trimOneQuote(decoded)
}

// plainFilename разбирает форму filename="value" или filename=value.
func plainFilename(header string) string {
	value, ok := parameterValue(header, "filename=")
	if !ok {
		return ""
	}
	return trimOneQuote(value)
}

func parameterValue(header, param string) (string, bool) {
	lower := strings.ToLower(header)
	p := strings.Index(lower, param)
	if p == -1 {
		return "", false
	}

	value := header[p+len(param):]
	if end := strings.IndexByte(value, ';'); end != -1 {
		value = value[:end]
	}
	return strings.TrimSpace(value), true
}

// trimOneQuote убирает не более одной кавычки с каждого края.
func trimOneQuote(s string) string {
	if len(s) > 0 && s[0] == '"' {
		s = s[1:]
	}
	if len(s) > 0 && s[len(s)-1] == '"' {
		s = s[:len(s)-1]
	}
	return s
}
