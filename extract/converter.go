package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// converterClient talks to the docling-style converter service that turns
// PDF/DOCX/PPTX into markdown text and runs OCR when asked.
type converterClient struct {
	baseURL string
	client  *http.Client
}

type convertResponse struct {
	Document struct {
		MdContent string `json:"md_content"`
	} `json:"document"`
}

func newConverterClient(baseURL string, timeoutSecs int) *converterClient {
	if timeoutSecs <= 0 {
		timeoutSecs = 120
	}
	return &converterClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: time.Duration(timeoutSecs) * time.Second},
	}
}

func (c *converterClient) Convert(ctx context.Context, path string, forceOCR bool) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("files", filepath.Base(path))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, file); err != nil {
		return "", err
	}
	if forceOCR {
		if err := writer.WriteField("force_ocr", "true"); err != nil {
			return "", err
		}
	}
	writer.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/convert/file", &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("converter returned status %d: %s", resp.StatusCode, string(body))
	}

	var d convertResponse
	if err := json.Unmarshal(body, &d); err != nil {
		return "", fmt.Errorf("decoding converter response: %w", err)
	}
	return d.Document.MdContent, nil
}
