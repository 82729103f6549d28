package convert

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/nalgeon/be"

	"webpconv/internal/ledger"
	"webpconv/internal/model"
	"webpconv/internal/selection"
)

var (
	jpegStub = []byte{0xFF, 0xD8, 0xFF, 0xE0, 'j', 'p', 'e', 'g'}
	webpStub = []byte("RIFF\x00\x00\x00\x00WEBPVP8 ")
)

type testEnv struct {
	session  *Session
	store    *selection.Store
	ledger   *ledger.Ledger
	requests *int
}

func newTestEnv(t *testing.T, handler http.HandlerFunc) testEnv {
	t.Helper()

	requests := new(int)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*requests++
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	l, err := ledger.New()
	be.Err(t, err, nil)
	t.Cleanup(func() { l.Close() })

	store := selection.NewStore(l)
	client := NewClient(srv.Client(), srv.URL)

	return testEnv{
		session:  NewSession(client, store, l),
		store:    store,
		ledger:   l,
		requests: requests,
	}
}

func addImages(t *testing.T, store *selection.Store, names ...string) {
	t.Helper()
	dir := t.TempDir()

	paths := make([]string, 0, len(names))
	for _, name := range names {
		path := filepath.Join(dir, name)
		be.Err(t, os.WriteFile(path, jpegStub, 0o600), nil)
		paths = append(paths, path)
	}

	n, err := store.Add(paths)
	be.Err(t, err, nil)
	be.Equal(t, n, len(names))
}

func TestSubmitEmptySelection(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	err := env.session.Submit(context.Background())
	be.Err(t, err, model.ErrNoFilesSelected)

	// локальная ошибка валидации: ни сетевого вызова, ни смены фазы
	be.Equal(t, *env.requests, 0)
	be.Equal(t, env.session.Phase(), PhaseIdle)
}

func TestSubmitInvalidOptions(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	addImages(t, env.store, "a.jpg")

	opts := model.DefaultOptions()
	opts.Lossless = true
	opts.NearLossless = true // недостижимо через сеттеры, но гейт обязан проверить
	env.session.SetOptions(opts)

	err := env.session.Submit(context.Background())
	be.Err(t, err, model.ErrOptionConflict)
	be.Equal(t, *env.requests, 0)
	be.Equal(t, env.session.Phase(), PhaseIdle)
}

func TestSubmitSuccessArchive(t *testing.T) {
	var gotMethod, gotPath string
	var gotImages int
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		if err := r.ParseMultipartForm(1 << 20); err == nil {
			gotImages = len(r.MultipartForm.File["images"])
		}

		w.Header().Set("Content-Type", "application/zip")
		w.Header().Set("Content-Disposition", `attachment; filename="converted.zip"`)
		w.Write([]byte("PK\x03\x04zipzip"))
	})
	addImages(t, env.store, "a.jpg", "b.jpg")

	err := env.session.Submit(context.Background())
	be.Err(t, err, nil)
	be.Equal(t, env.session.Phase(), PhaseSucceeded)

	be.Equal(t, gotMethod, http.MethodPost)
	be.Equal(t, gotPath, "/convert")
	// все файлы под общим именем поля
	be.Equal(t, gotImages, 2)

	res, ok := env.session.Result()
	be.True(t, ok)
	be.Equal(t, res.SuggestedName, "converted.zip")
	be.Equal(t, res.MediaType, "application/zip")

	content, err := os.ReadFile(res.Artifact.Path)
	be.Err(t, err, nil)
	be.Equal(t, string(content), "PK\x03\x04zipzip")
}

func TestSubmitQueryParams(t *testing.T) {
	var gotQuery map[string]string
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{}
		for key := range r.URL.Query() {
			gotQuery[key] = r.URL.Query().Get(key)
		}
		w.Header().Set("Content-Type", "image/webp")
		w.Write(webpStub)
	})
	addImages(t, env.store, "a.jpg")

	opts := model.Options{Output: model.OutputZip, Quality: 95, Effort: 6, SmartSubsample: true}
	opts.SetNearLossless(true)
	env.session.SetOptions(opts)

	be.Err(t, env.session.Submit(context.Background()), nil)

	// опции уходят plain-текстом независимо от родного типа
	be.Equal(t, gotQuery, map[string]string{
		"output":         "zip",
		"quality":        "95",
		"lossless":       "false",
		"nearLossless":   "true",
		"effort":         "6",
		"smartSubsample": "true",
	})
}

func TestSubmitFallbackNames(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		want        string
	}{
		{"single_image", "image/webp", "converted.webp"},
		{"archive", "application/zip", "converted.zip"},
		{"unknown_type", "application/octet-stream", "converted.webp"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// ответ без Content-Disposition: имя выбирается по Content-Type
			env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", tt.contentType)
				w.Write([]byte("data"))
			})
			addImages(t, env.store, "a.jpg")

			be.Err(t, env.session.Submit(context.Background()), nil)

			res, ok := env.session.Result()
			be.True(t, ok)
			be.Equal(t, res.SuggestedName, tt.want)
		})
	}
}

func TestSubmitServiceError(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "encode failed", http.StatusInternalServerError)
	})
	addImages(t, env.store, "a.jpg")

	err := env.session.Submit(context.Background())
	be.Err(t, err)

	var serviceErr *ServiceError
	be.True(t, errors.As(err, &serviceErr))
	be.Equal(t, serviceErr.Status, http.StatusInternalServerError)
	be.Equal(t, serviceErr.Message, "encode failed")

	be.Equal(t, env.session.Phase(), PhaseFailed)
	be.Equal(t, env.session.ErrorMessage(), "encode failed")

	// выборка переживает ошибку, можно отправить повторно
	be.Equal(t, env.store.Count(), 1)
}

func TestSubmitServiceErrorEmptyBody(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	addImages(t, env.store, "a.jpg")

	err := env.session.Submit(context.Background())
	be.Err(t, err)
	be.Equal(t, env.session.Phase(), PhaseFailed)
	// пустое тело: сообщение выводится из статуса
	be.Equal(t, env.session.ErrorMessage(), "conversion failed: Bad Gateway")
}

func TestSubmitTransportError(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {})
	addImages(t, env.store, "a.jpg")

	// сервер погашен до отправки: ответа не будет вовсе
	srvClient := env.session.client
	srvClient.baseURL = "http://127.0.0.1:1"

	err := env.session.Submit(context.Background())
	be.Err(t, err)
	be.Equal(t, env.session.Phase(), PhaseFailed)
	be.True(t, env.session.ErrorMessage() != "")
}

func TestResubmitReleasesPriorArtifact(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/webp")
		w.Write(webpStub)
	})
	addImages(t, env.store, "a.jpg")

	be.Err(t, env.session.Submit(context.Background()), nil)
	first, ok := env.session.Result()
	be.True(t, ok)

	released := env.ledger.Released()

	be.Err(t, env.session.Submit(context.Background()), nil)
	second, ok := env.session.Result()
	be.True(t, ok)

	// прежний артефакт освобожден до выделения нового
	be.Equal(t, env.ledger.Released(), released+1)
	be.True(t, first.Artifact.ID != second.Artifact.ID)

	_, err := os.Stat(first.Artifact.Path)
	be.True(t, os.IsNotExist(err))
	_, err = os.Stat(second.Artifact.Path)
	be.Err(t, err, nil)
}

func TestClearResetsEverything(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/webp")
		w.Write(webpStub)
	})
	addImages(t, env.store, "a.jpg", "b.jpg")

	be.Err(t, env.session.Submit(context.Background()), nil)

	env.session.Clear()

	// очистка тотальна: выборка, результат и ошибка сбрасываются вместе
	be.Equal(t, env.store.Count(), 0)
	be.Equal(t, env.session.Phase(), PhaseIdle)
	be.Equal(t, env.session.ErrorMessage(), "")
	_, ok := env.session.Result()
	be.True(t, !ok)
	be.Equal(t, env.ledger.Live(), 0)
}

func TestHealth(t *testing.T) {
	var gotPath string
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte("ok"))
	})

	be.Err(t, env.session.client.Health(context.Background()), nil)
	be.Equal(t, *env.requests, 1)
	be.Equal(t, gotPath, "/health")
}
