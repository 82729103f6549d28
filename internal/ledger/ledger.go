package ledger

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
)

// Handle - временная локально-адресуемая ссылка на байты (превью выбранного
// файла или скачанный артефакт). Живет в каталоге сессии реестра и
// обязана быть освобождена ровно один раз через ReleaseAll или Close.
type Handle struct {
	ID   string
	Path string
	Size int64
}

// Ledger владеет жизненным циклом временных ссылок. Выдача и освобождение
// проходят только через него, чтобы аллокации и освобождения оставались
// симметричными и проверяемыми.
type Ledger struct {
	mu       sync.Mutex
	dir      string
	live     map[string]string // id -> путь к файлу
	acquired int
	released int
	closed   bool
}

func New() (*Ledger, error) {
	dir, err := os.MkdirTemp("", "webpconv-*")
	if err != nil {
		return nil, fmt.Errorf("create session dir failed: %w", err)
	}
	return &Ledger{
		dir:  dir,
		live: make(map[string]string),
	}, nil
}

// Acquire записывает content во временный файл каталога сессии и
// регистрирует новую ссылку. ext задает расширение файла (".webp", ".zip"
// и т.п.), чтобы внешним просмотрщикам было за что зацепиться.
func (l *Ledger) Acquire(content []byte, ext string) (Handle, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return Handle{}, fmt.Errorf("ledger is closed")
	}

	id := uuid.NewString()
	path := filepath.Join(l.dir, id+ext)

	if err := os.WriteFile(path, content, 0o600); err != nil {
		return Handle{}, fmt.Errorf("write handle failed: %w", err)
	}

	l.live[id] = path
	l.acquired++

	return Handle{ID: id, Path: path, Size: int64(len(content))}, nil
}

// ReleaseAll освобождает каждую из переданных ссылок. Идемпотентна:
// уже освобожденные и неизвестные ссылки пропускаются, пустой список
// безопасен. Ошибки удаления файлов не всплывают - после освобождения
// ссылка мертва независимо от состояния диска.
func (l *Ledger) ReleaseAll(handles []Handle) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, h := range handles {
		path, ok := l.live[h.ID]
		if !ok {
			continue
		}
		delete(l.live, h.ID)
		l.released++
		os.Remove(path)
	}
}

// Live возвращает количество живых ссылок.
func (l *Ledger) Live() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.live)
}

// Released возвращает количество освобожденных ссылок за время жизни реестра.
func (l *Ledger) Released() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.released
}

// Close освобождает все живые ссылки и удаляет каталог сессии.
// Повторный вызов безопасен.
func (l *Ledger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}
	l.closed = true

	l.released += len(l.live)
	clear(l.live)

	return os.RemoveAll(l.dir)
}
