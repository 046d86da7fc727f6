package voice

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/packages/param"
)

// ErrDisabled is returned when no transcriber is configured.
var ErrDisabled = errors.New("voice navigation disabled")

// Transcriber converts a voice clip to text.
type Transcriber interface {
	Transcribe(ctx context.Context, clip Clip, language string) (string, error)
}

// Clip is an audio payload ready for transcription.
type Clip struct {
	Data        []byte
	Filename    string
	ContentType string
}

// OpenAITranscriber uses the OpenAI audio API.
type OpenAITranscriber struct {
	client  openai.Client
	model   string
	timeout time.Duration
	log     *slog.Logger
}

// NewOpenAITranscriber initializes the OpenAI client.
func NewOpenAITranscriber(apiKey, model string, timeout time.Duration, log *slog.Logger) *OpenAITranscriber {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAITranscriber{client: client, model: model, timeout: timeout, log: log}
}

// Transcribe implements Transcriber.
func (t *OpenAITranscriber) Transcribe(ctx context.Context, clip Clip, language string) (string, error) {
	if len(clip.Data) == 0 {
		return "", errors.New("empty audio content")
	}
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	params := openai.AudioTranscriptionNewParams{
		File:  openai.File(bytes.NewReader(clip.Data), clip.Filename, clip.ContentType),
		Model: openai.AudioModel(t.model),
	}
	if language != "" {
		params.Language = param.NewOpt(language)
	}
	resp, err := t.client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		t.log.Error("OpenAI transcription failed", "error", err)
		return "", err
	}
	if resp == nil || resp.Text == "" {
		return "", errors.New("empty transcription result")
	}
	return resp.Text, nil
}
