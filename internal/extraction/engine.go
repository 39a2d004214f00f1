package extraction

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	dErrors "olea/pkg/domain-errors"
)

// Engine reads an image and returns the recognized text with per-line
// confidences. Implementations call out to an external OCR service.
type Engine interface {
	Recognize(ctx context.Context, image []byte, filename string) (EngineOutput, error)
}

// EngineOutput is what an OCR engine produces for one document.
type EngineOutput struct {
	Text            string    `json:"text"`
	LineConfidences []float64 `json:"line_confidences"`
	Confidence      float64   `json:"confidence"`
	Name            string    `json:"engine"`
}

// HTTPEngine reaches an OCR engine over HTTP.
type HTTPEngine struct {
	baseURL string
	client  *http.Client
}

// NewHTTPEngine builds an engine client for the given base URL.
func NewHTTPEngine(baseURL string) *HTTPEngine {
	return &HTTPEngine{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

// Recognize posts the image as multipart form data and decodes the engine's
// response. Engine failures surface as unavailable errors.
func (e *HTTPEngine) Recognize(ctx context.Context, image []byte, filename string) (EngineOutput, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return EngineOutput{}, dErrors.Wrap(err, dErrors.CodeInternal, "create multipart request")
	}
	if _, err := part.Write(image); err != nil {
		return EngineOutput{}, dErrors.Wrap(err, dErrors.CodeInternal, "write multipart request")
	}
	if err := writer.Close(); err != nil {
		return EngineOutput{}, dErrors.Wrap(err, dErrors.CodeInternal, "close multipart request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/recognize", &body)
	if err != nil {
		return EngineOutput{}, dErrors.Wrap(err, dErrors.CodeInternal, "build engine request")
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := e.client.Do(req)
	if err != nil {
		return EngineOutput{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "call ocr engine")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return EngineOutput{}, dErrors.Newf(dErrors.CodeUnavailable,
			"ocr engine returned %d: %s", resp.StatusCode, string(payload))
	}

	var out EngineOutput
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return EngineOutput{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "decode engine response")
	}
	if out.Name == "" {
		out.Name = "ocr_engine"
	}
	return out, nil
}

// StaticEngine returns fixed output for every document. Used in tests and
// as a stand-in when no engine URL is configured.
type StaticEngine struct {
	Output EngineOutput
	Err    error
}

func (s *StaticEngine) Recognize(context.Context, []byte, string) (EngineOutput, error) {
	if s.Err != nil {
		return EngineOutput{}, s.Err
	}
	out := s.Output
	if out.Name == "" {
		out.Name = "static"
	}
	return out, nil
}

var _ Engine = (*HTTPEngine)(nil)
var _ Engine = (*StaticEngine)(nil)

// String implements fmt.Stringer for log output.
func (e *HTTPEngine) String() string { return fmt.Sprintf("ocr-engine(%s)", e.baseURL) }
