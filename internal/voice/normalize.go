package voice

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

const (
	ffmpegSampleRate = "16000"
	ffmpegChannels   = "1"
	ffmpegFormat     = "mp3"
)

// Prepare returns a clip the transcription API accepts, transcoding Telegram OGG/Opus
// voice notes to mono mp3 through ffmpeg when needed.
func Prepare(ctx context.Context, data []byte, contentType, filename string) (Clip, error) {
	if len(data) == 0 {
		return Clip{}, fmt.Errorf("empty audio content")
	}
	if supported(contentType, filename) {
		return Clip{Data: data, Filename: filename, ContentType: contentType}, nil
	}

	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-nostdin",
		"-y",
		"-i", "pipe:0",
		"-ac", ffmpegChannels,
		"-ar", ffmpegSampleRate,
		"-f", ffmpegFormat,
		"pipe:1",
	)
	var stdout, stderr bytes.Buffer
	cmd.Stdin = bytes.NewReader(data)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return Clip{}, fmt.Errorf("ffmpeg failed: %w: %s", err, msg)
		}
		return Clip{}, fmt.Errorf("ffmpeg failed: %w", err)
	}
	if stdout.Len() == 0 {
		return Clip{}, fmt.Errorf("empty transcoded audio")
	}
	return Clip{Data: stdout.Bytes(), Filename: mp3Name(filename), ContentType: "audio/mpeg"}, nil
}

func mp3Name(filename string) string {
	filename = filepath.Base(strings.TrimSpace(filename))
	if filename == "" || filename == "." || filename == "/" {
		return "voice.mp3"
	}
	if strings.HasSuffix(strings.ToLower(filename), ".mp3") {
		return filename
	}
	return strings.TrimSuffix(filename, filepath.Ext(filename)) + ".mp3"
}

func supported(contentType, filename string) bool {
	switch strings.ToLower(strings.TrimSpace(contentType)) {
	case "audio/mpeg", "audio/mp3", "audio/mp4", "audio/mp4a-latm", "audio/x-m4a", "audio/m4a", "audio/wav", "audio/x-wav", "audio/webm":
		return true
	}
	switch strings.ToLower(filepath.Ext(strings.TrimSpace(filename))) {
	case ".mp3", ".mpeg", ".mp4", ".m4a", ".wav", ".webm":
		return true
	}
	return false
}
