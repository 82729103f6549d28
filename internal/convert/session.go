package convert

import (
	"context"
	"errors"
	"path/filepath"
	"sync"

	"webpconv/internal/ledger"
	"webpconv/internal/model"
	"webpconv/internal/selection"
)

// Phase - фаза цикла конвертации. Failed и Succeeded терминальны до
// следующей отправки.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseSubmitting
	PhaseSucceeded
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseSubmitting:
		return "submitting"
	case PhaseSucceeded:
		return "succeeded"
	case PhaseFailed:
		return "failed"
	}
	return "unknown"
}

var ErrSubmitInFlight = errors.New("submission already in flight")

// Result - исход успешного цикла: ссылка на скачанный артефакт,
// предложенное сервисом имя и тип содержимого. Живет до следующей
// отправки или полного сброса.
type Result struct {
	Artifact      ledger.Handle
	SuggestedName string
	MediaType     string
}

// Session - оркестратор цикла отправки: собирает запрос из выборки и
// опций, выполняет обмен и переводит фазу в терминальное состояние.
// Одновременно выполняется не больше одной отправки.
type Session struct {
	client *Client
	ledger *ledger.Ledger
	store  *selection.Store

	mu        sync.Mutex
	opts      model.Options
	phase     Phase
	result    Result
	hasResult bool
	errMsg    string
}

func NewSession(client *Client, store *selection.Store, l *ledger.Ledger) *Session {
	return &Session{
		client: client,
		ledger: l,
		store:  store,
		opts:   model.DefaultOptions(),
	}
}

func (s *Session) Options() model.Options {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opts
}

func (s *Session) SetOptions(opts model.Options) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opts = opts
}

// Submit выполняет один цикл конвертации.
//
// Гейт: выборка непуста и опции валидны, иначе локальная ошибка валидации
// без сетевого вызова и без смены фазы. Дальше: прежний результат и ошибка
// сбрасываются, фаза Submitting, ровно один запрос, и по исходу -
// Succeeded либо Failed. В Submitting сессия не застревает ни на одном
// пути.
func (s *Session) Submit(ctx context.Context) error {
	s.mu.Lock()

	if s.phase == PhaseSubmitting {
		s.mu.Unlock()
		return ErrSubmitInFlight
	}

	files := s.store.Files()
	if len(files) == 0 {
		s.mu.Unlock()
		return model.ErrNoFilesSelected
	}
	if err := s.opts.Validate(); err != nil {
		s.mu.Unlock()
		return err
	}

	// прежний артефакт освобождается до замены
	s.dropResultLocked()
	s.errMsg = ""
	s.phase = PhaseSubmitting
	opts := s.opts
	s.mu.Unlock()

	art, err := s.client.Convert(ctx, files, opts)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.phase = PhaseFailed
		s.errMsg = err.Error()
		return err
	}

	h, err := s.ledger.Acquire(art.Content, filepath.Ext(art.SuggestedName))
	if err != nil {
		s.phase = PhaseFailed
		s.errMsg = err.Error()
		return err
	}

	s.result = Result{
		Artifact:      h,
		SuggestedName: art.SuggestedName,
		MediaType:     art.MediaType,
	}
	s.hasResult = true
	s.phase = PhaseSucceeded
	return nil
}

func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Result возвращает исход последнего успешного цикла, если он есть.
func (s *Session) Result() (Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result, s.hasResult
}

// ErrorMessage возвращает текст ошибки последнего неудачного цикла.
func (s *Session) ErrorMessage() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errMsg
}

// Clear - полный сброс: выборка, ошибка и результат очищаются вместе.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.store.Clear()
	s.dropResultLocked()
	s.errMsg = ""
	s.phase = PhaseIdle
}

func (s *Session) dropResultLocked() {
	if !s.hasResult {
		return
	}
	s.ledger.ReleaseAll([]ledger.Handle{s.result.Artifact})
	s.result = Result{}
	s.hasResult = false
}
