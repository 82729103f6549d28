package model

// SelectedFile представляет один выбранный пользователем файл-изображение,
// ожидающий конвертации.
//
// Гарантируется, что MediaType на момент добавления указывает на изображение:
// фильтрация происходит при добавлении, не-изображения в выборку не попадают.
// Content читается один раз при добавлении и дальше не меняется.
type SelectedFile struct {
	Name      string `json:"name,omitempty"`
	Size      int64  `json:"size,omitempty"`
	MediaType string `json:"media_type,omitempty"`
	Content   []byte `json:"-"`
}
