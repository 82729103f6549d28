package selection

import (
	"bytes"
	"path/filepath"
	"strings"
)

type imageType struct {
	MIMEType   string
	Magic      []byte // сигнатура файла
	MagicAt    int    // смещение сигнатуры от начала файла
	Extensions []string
}

var imageTypes = []imageType{
	{
		MIMEType:   "image/jpeg",
		Magic:      []byte{0xFF, 0xD8, 0xFF}, // ÿØÿ
		Extensions: []string{".jpg", ".jpeg"},
	},
	{
		MIMEType:   "image/png",
		Magic:      []byte{0x89, 0x50, 0x4E, 0x47}, // ‰PNG
		Extensions: []string{".png"},
	},
	{
		MIMEType:   "image/gif",
		Magic:      []byte{0x47, 0x49, 0x46, 0x38}, // GIF8
		Extensions: []string{".gif"},
	},
	{
		MIMEType:   "image/webp",
		Magic:      []byte{0x57, 0x45, 0x42, 0x50}, // WEBP, после RIFF-заголовка
		MagicAt:    8,
		Extensions: []string{".webp"},
	},
	{
		MIMEType:   "image/tiff",
		Magic:      []byte{0x49, 0x49, 0x2A, 0x00}, // II*
		Extensions: []string{".tif", ".tiff"},
	},
	{
		MIMEType:   "image/tiff",
		Magic:      []byte{0x4D, 0x4D, 0x00, 0x2A}, // MM*
		Extensions: []string{".tif", ".tiff"},
	},
	{
		MIMEType:   "image/bmp",
		Magic:      []byte{0x42, 0x4D}, // BM
		Extensions: []string{".bmp"},
	},
	{
		MIMEType:   "image/avif",
		Magic:      []byte("ftypavif"),
		MagicAt:    4,
		Extensions: []string{".avif"},
	},
}

func (t imageType) matches(head []byte) bool {
	if len(head) < t.MagicAt {
		return false
	}
	return bytes.HasPrefix(head[t.MagicAt:], t.Magic)
}

// detectMediaType определяет заявленный тип файла: сначала по сигнатуре
// содержимого, затем по расширению. Пустая строка - тип неизвестен.
func detectMediaType(name string, head []byte) string {
	for _, t := range imageTypes {
		if t.matches(head) {
			return t.MIMEType
		}
	}

	ext := strings.ToLower(filepath.Ext(name))
	for _, t := range imageTypes {
		for _, e := range t.Extensions {
			if e == ext {
				return t.MIMEType
			}
		}
	}

	return ""
}

// extensionForMIME возвращает каноническое расширение для типа изображения.
func extensionForMIME(mimeType string) string {
	for _, t := range imageTypes {
		if t.MIMEType == mimeType && len(t.Extensions) > 0 {
			return t.Extensions[0]
		}
	}
	return ""
}

// isImage сообщает, указывает ли заявленный тип на изображение.
func isImage(mediaType string) bool {
	return strings.HasPrefix(mediaType, "image/")
}
