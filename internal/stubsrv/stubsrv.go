// Package stubsrv - заглушка сервиса конвертации для ручного тестирования
// клиента. Контракт настоящий (multipart + query-опции на входе, бинарный
// артефакт либо текст ошибки на выходе), кодирование поддельное: байты
// исходников отдаются как есть, только под webp-именем.
package stubsrv

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"webpconv/internal/logger"
)

const maxUploadBytes = 256 << 20 // 256 MB на запрос

func New() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /convert", Convert)
	mux.HandleFunc("GET /health", Health)
	return mux
}

func Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintln(w, "ok")
}

func Convert(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context()).With("op", "Convert")

	opts, err := parseOptions(r)
	if err != nil {
		log.Debug("bad options", "error", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		log.Debug("bad multipart", "error", err)
		http.Error(w, "malformed multipart body", http.StatusBadRequest)
		return
	}
	files := r.MultipartForm.File["images"]
	if len(files) == 0 {
		http.Error(w, "no images in request", http.StatusBadRequest)
		return
	}

	log.Debug("converting", "files", len(files), "output", opts.output)

	if opts.output == "zip" || len(files) > 1 {
		writeArchive(w, log, files)
		return
	}
	writeSingle(w, log, files[0])
}

type stubOptions struct {
	output string
}

// parseOptions проверяет query-параметры контракта. Кодированием заглушка
// не занимается, поэтому от большинства опций ей нужна только валидность.
func parseOptions(r *http.Request) (stubOptions, error) {
	q := r.URL.Query()

	output := q.Get("output")
	if output != "auto" && output != "zip" {
		return stubOptions{}, fmt.Errorf("output must be auto or zip, got %q", output)
	}

	quality, err := strconv.Atoi(q.Get("quality"))
	if err != nil || quality < 1 || quality > 100 {
		return stubOptions{}, fmt.Errorf("quality must be an integer between 1 and 100, got %q", q.Get("quality"))
	}

	effort, err := strconv.Atoi(q.Get("effort"))
	if err != nil || effort < 0 || effort > 6 {
		return stubOptions{}, fmt.Errorf("effort must be an integer between 0 and 6, got %q", q.Get("effort"))
	}

	lossless := q.Get("lossless") == "true"
	nearLossless := q.Get("nearLossless") == "true"
	if lossless && nearLossless {
		return stubOptions{}, fmt.Errorf("lossless and nearLossless are mutually exclusive")
	}

	return stubOptions{output: output}, nil
}

func writeSingle(w http.ResponseWriter, log *slog.Logger, fh *multipart.FileHeader) {
	content, err := readPart(fh)
	if err != nil {
		log.Error("read part failed", "error", err)
		http.Error(w, "read upload failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/webp")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, webpName(fh.Filename)))
	w.WriteHeader(http.StatusOK)
	w.Write(content)
}

func writeArchive(w http.ResponseWriter, log *slog.Logger, files []*multipart.FileHeader) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	for i, fh := range files {
		content, err := readPart(fh)
		if err != nil {
			log.Error("read part failed", "error", err)
			http.Error(w, "read upload failed", http.StatusInternalServerError)
			return
		}

		name := webpName(fh.Filename)
		if name == ".webp" {
			name = fmt.Sprintf("image-%d.webp", i+1)
		}

		fw, err := zw.Create(name)
		if err == nil {
			_, err = fw.Write(content)
		}
		if err != nil {
			log.Error("write archive entry failed", "error", err)
			http.Error(w, "build archive failed", http.StatusInternalServerError)
			return
		}
	}

	if err := zw.Close(); err != nil {
		log.Error("close archive failed", "error", err)
		http.Error(w, "build archive failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="converted.zip"`)
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// webpName заменяет расширение загруженного файла на .webp,
// отрезав возможный путь.
func webpName(name string) string {
	if p := strings.LastIndexAny(name, `/\`); p != -1 {
		name = name[p+1:]
	}
	if p := strings.LastIndexByte(name, '.'); p != -1 {
		name = name[:p]
	}
	return name + ".webp"
}
