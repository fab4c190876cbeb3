package builtin

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

	"factotum/internal/capability"
	facterrors "factotum/internal/errors"
	"factotum/internal/httpclient"
	"factotum/internal/logging"
)

// TranscribeAudio sends an audio file to an OpenAI-compatible
// /audio/transcriptions endpoint and returns the transcript text.
type TranscribeAudio struct {
	client   *http.Client
	logger   logging.Logger
	baseURL  string
	apiKey   string
	model    string
	maxBytes int64
}

func NewTranscribeAudio(cfg Config) *TranscribeAudio {
	return &TranscribeAudio{
		client:   cfg.HTTPClient,
		logger:   cfg.Logger,
		baseURL:  cfg.TranscribeBaseURL,
		apiKey:   cfg.TranscribeAPIKey,
		model:    cfg.TranscribeModel,
		maxBytes: cfg.MaxResponseBytes,
	}
}

func (t *TranscribeAudio) Descriptor() capability.Descriptor {
	return capability.Descriptor{
		Name:        "transcribe_audio",
		Description: "Transcribes an audio file to text via a speech-to-text service.",
		PathParams:  []string{"file"},
		Rules: []capability.Rule{
			capability.MustRule("file", `([\w./-]+\.(?:mp3|wav|m4a|ogg|flac|webm))`, true, nil, capability.TypeString),
		},
	}
}

func (t *TranscribeAudio) Execute(ctx context.Context, args map[string]any) (any, error) {
	if t.baseURL == "" {
		return nil, &facterrors.PermanentError{Err: fmt.Errorf("transcription service is not configured")}
	}
	path := args["file"].(string)

	audio, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open audio file: %w", err)
	}
	defer func() { _ = audio.Close() }()

	var form bytes.Buffer
	writer := multipart.NewWriter(&form)
	part, err := writer.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("build form: %w", err)
	}
	if _, err := io.Copy(part, audio); err != nil {
		return nil, fmt.Errorf("read audio file: %w", err)
	}
	if err := writer.WriteField("model", t.model); err != nil {
		return nil, fmt.Errorf("build form: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("build form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/audio/transcriptions", &form)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if t.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+t.apiKey)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, &facterrors.TransientError{Err: fmt.Errorf("transcription request: %w", err)}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := httpclient.ReadAllWithLimit(resp.Body, t.maxBytes)
	if err != nil {
		return nil, fmt.Errorf("read transcription response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("transcription service returned status %d", resp.StatusCode)
		if facterrors.IsTransientHTTPStatus(resp.StatusCode) {
			return nil, &facterrors.TransientError{Err: err, StatusCode: resp.StatusCode}
		}
		return nil, &facterrors.PermanentError{Err: err, StatusCode: resp.StatusCode}
	}

	var decoded struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("decode transcription response: %w", err)
	}

	t.logger.Info("transcribe_audio: %s -> %d characters", path, len(decoded.Text))
	return map[string]any{
		"source": path,
		"text":   decoded.Text,
		"model":  t.model,
	}, nil
}
