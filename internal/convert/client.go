package convert

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"webpconv/internal/model"
)

const (
	fileFieldName = "images"

	fallbackNameSingle  = "converted.webp"
	fallbackNameArchive = "converted.zip"
)

// ServiceError - ответ сервиса со статусом вне 2xx. Message - текст тела
// ответа либо текст статуса, если тело пустое.
type ServiceError struct {
	Status  int
	Message string
}

func (e *ServiceError) Error() string {
	return e.Message
}

// Artifact - результат одного успешного обмена с сервисом: бинарное тело,
// предложенное сервисом имя и тип содержимого.
type Artifact struct {
	Content       []byte
	SuggestedName string
	MediaType     string
}

// Client выполняет обмен с сервисом конвертации: один multipart-запрос,
// одна интерпретация ответа. Состоянием выборки не владеет.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

func NewClient(httpClient *http.Client, baseURL string) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
	}
}

// Convert отправляет файлы на конвертацию и интерпретирует ответ.
//
// Не-2xx ответ возвращается как *ServiceError с текстом тела (вторичные
// ошибки чтения тела глотаются - статус важнее). Транспортная ошибка
// возвращается как есть, обернутой.
func (c *Client) Convert(ctx context.Context, files []model.SelectedFile, opts model.Options) (Artifact, error) {
	log := slog.With("op", "convert", "files", len(files))

	body, contentType, err := buildMultipart(files)
	if err != nil {
		return Artifact{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.convertURL(opts), body)
	if err != nil {
		return Artifact{}, fmt.Errorf("create request failed: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Debug("request failed", "error", err)
		return Artifact{}, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(resp.Body) // best effort
		log.Debug("unexpected status", "status", resp.StatusCode)
		return Artifact{}, &ServiceError{
			Status:  resp.StatusCode,
			Message: serviceMessage(resp.StatusCode, msg),
		}
	}

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Debug("read response failed", "error", err)
		return Artifact{}, fmt.Errorf("read response failed: %w", err)
	}

	mediaType := responseContentType(resp)
	fallback := fallbackNameSingle
	if isArchive(mediaType) {
		fallback = fallbackNameArchive
	}

	art := Artifact{
		Content:       content,
		SuggestedName: fileNameFromDisposition(resp.Header.Get("Content-Disposition"), fallback),
		MediaType:     mediaType,
	}

	log.Debug("success", "name", art.SuggestedName, "size", len(content))
	return art, nil
}

// Health проверяет достижимость сервиса. Контракт не оговорен ничем,
// кроме "URL отвечает": годится любой 2xx.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("create request failed: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &ServiceError{
			Status:  resp.StatusCode,
			Message: serviceMessage(resp.StatusCode, nil),
		}
	}
	return nil
}

// convertURL собирает адрес запроса. Опции сериализуются в query-параметры
// простым текстом независимо от родного типа - таков контракт сервиса.
func (c *Client) convertURL(opts model.Options) string {
	query := url.Values{}
	query.Set("output", string(opts.Output))
	query.Set("quality", strconv.Itoa(opts.Quality))
	query.Set("lossless", strconv.FormatBool(opts.Lossless))
	query.Set("nearLossless", strconv.FormatBool(opts.NearLossless))
	query.Set("effort", strconv.Itoa(opts.Effort))
	query.Set("smartSubsample", strconv.FormatBool(opts.SmartSubsample))

	return c.baseURL + "/convert?" + query.Encode()
}

// buildMultipart собирает одно multipart-тело: каждый файл под общим
// именем поля images.
func buildMultipart(files []model.SelectedFile) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, f := range files {
		fw, err := w.CreateFormFile(fileFieldName, f.Name)
		if err != nil {
			return nil, "", fmt.Errorf("create form file failed: %w", err)
		}
		if _, err := fw.Write(f.Content); err != nil {
			return nil, "", fmt.Errorf("write form file failed: %w", err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart failed: %w", err)
	}

	return &buf, w.FormDataContentType(), nil
}

func serviceMessage(status int, body []byte) string {
	if msg := strings.TrimSpace(string(body)); msg != "" {
		return msg
	}
	return fmt.Sprintf("conversion failed: %s", http.StatusText(status))
}

func responseContentType(resp *http.Response) string {
	contentType := resp.Header.Get("Content-Type")
	if end := strings.IndexByte(contentType, ';'); end != -1 {
		contentType = strings.TrimSpace(contentType[:end])
	}
	return contentType
}

func isArchive(mediaType string) bool {
	return mediaType == "application/zip" || strings.HasSuffix(mediaType, "+zip")
}
