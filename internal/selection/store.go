package selection

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"webpconv/internal/ledger"
	"webpconv/internal/model"
)

type (
	File   = model.SelectedFile
	Handle = ledger.Handle
)

// Store хранит упорядоченную выборку файлов и параллельный ей список
// превью-ссылок. Оба списка всегда одной длины и выровнены по индексу:
// previews[i] всегда соответствует files[i].
//
// Выборка append-only: добавление в конец или полная очистка,
// поштучного удаления нет.
type Store struct {
	mu       sync.Mutex
	ledger   *ledger.Ledger
	files    []File
	previews []Handle
}

func NewStore(l *ledger.Ledger) *Store {
	return &Store{ledger: l}
}

// Add читает файлы по указанным путям и добавляет в выборку те из них,
// чей заявленный тип указывает на изображение. Не-изображения молча
// отбрасываются - не сохраняются и не считаются ошибкой. Если после
// фильтрации не осталось ничего, состояние не меняется и ссылки
// не выделяются.
//
// Возвращает количество добавленных файлов. При ошибке чтения или
// выделения ссылки выборка остается прежней.
func (s *Store) Add(paths []string) (int, error) {
	log := slog.With("op", "selection.Add")

	// Сначала читаем и фильтруем весь батч, чтобы ошибка ввода-вывода
	// не оставила выборку в половинчатом состоянии.
	batch := make([]File, 0, len(paths))
	for _, path := range paths {
		content, err := os.ReadFile(path)
		if err != nil {
			return 0, fmt.Errorf("read file failed: %w", err)
		}

		name := filepath.Base(path)
		mediaType := detectMediaType(name, content)
		if !isImage(mediaType) {
			log.Debug("skipped non-image", "name", name, "mediaType", mediaType)
			continue
		}

		batch = append(batch, File{
			Name:      name,
			Size:      int64(len(content)),
			MediaType: mediaType,
			Content:   content,
		})
	}

	if len(batch) == 0 {
		return 0, nil
	}

	handles := make([]Handle, 0, len(batch))
	for _, f := range batch {
		h, err := s.ledger.Acquire(f.Content, extensionForMIME(f.MediaType))
		if err != nil {
			s.ledger.ReleaseAll(handles)
			return 0, fmt.Errorf("acquire preview failed: %w", err)
		}
		handles = append(handles, h)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.files = append(s.files, batch...)
	s.previews = append(s.previews, handles...)

	log.Debug("files added", "count", len(batch), "total", len(s.files))
	return len(batch), nil
}

// Clear освобождает все превью-ссылки и опустошает выборку.
// Повторный вызов безопасен: освобождать уже нечего.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ledger.ReleaseAll(s.previews)
	s.files = nil
	s.previews = nil
}

// Files возвращает копию выборки в порядке добавления.
func (s *Store) Files() []File {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.files)
}

// Previews возвращает копию списка превью-ссылок, выровненного с Files.
func (s *Store) Previews() []Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.previews)
}

func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.files)
}

// TotalSize возвращает суммарный размер выборки в байтах.
func (s *Store) TotalSize() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	var total int64
	for _, f := range s.files {
		total += f.Size
	}
	return total
}
