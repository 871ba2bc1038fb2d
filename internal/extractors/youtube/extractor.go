// Package youtube extracts transcripts from YouTube videos: the audio
// stream is downloaded and transcribed via Google Cloud Speech.
package youtube

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	speechpb "cloud.google.com/go/speech/apiv1/speechpb"
	"github.com/google/uuid"
	ytdl "github.com/kkdai/youtube/v2"

	"github.com/finsight-labs/finsight-cli/internal/core/domain"
	"github.com/finsight-labs/finsight-cli/internal/core/ports/driven"
	"github.com/finsight-labs/finsight-cli/internal/logger"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

var embedPath = regexp.MustCompile(`^/embed/([a-zA-Z0-9_-]{11})`)

// DownloadFunc fetches the audio track of a video into destDir and
// returns the saved file path.
type DownloadFunc func(ctx context.Context, videoURL, destDir, videoID string) (string, error)

// TranscribeFunc converts a downloaded audio file to text.
type TranscribeFunc func(ctx context.Context, audioPath string) (string, error)

// Extractor turns a YouTube URL into a transcript. Transcripts are
// persisted under youtubeDir as yb_<videoID>.txt and reused on
// subsequent extractions of the same video.
type Extractor struct {
	download   DownloadFunc
	transcribe TranscribeFunc
	youtubeDir string
	audioDir   string
}

// New creates a YouTube transcript extractor.
func New(download DownloadFunc, transcribe TranscribeFunc, youtubeDir, audioDir string) *Extractor {
	return &Extractor{
		download:   download,
		transcribe: transcribe,
		youtubeDir: youtubeDir,
		audioDir:   audioDir,
	}
}

// ParseVideoID extracts the video ID from the common YouTube URL forms:
// watch?v=ID, youtu.be/ID, and /embed/ID.
func ParseVideoID(raw string) (string, error) {
	parsed, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parsing %q: %w", raw, domain.ErrInvalidInput)
	}

	host := parsed.Hostname()

	if host == "www.youtube.com" || host == "youtube.com" {
		if id := parsed.Query().Get("v"); id != "" {
			return id, nil
		}
		if m := embedPath.FindStringSubmatch(parsed.Path); m != nil {
			return m[1], nil
		}
		return "", fmt.Errorf("no video ID in %q: %w", raw, domain.ErrInvalidInput)
	}

	if host == "youtu.be" {
		if id := strings.Trim(parsed.Path, "/"); id != "" {
			return id, nil
		}
		return "", fmt.Errorf("no video ID in %q: %w", raw, domain.ErrInvalidInput)
	}

	return "", fmt.Errorf("unrecognised YouTube URL %q: %w", raw, domain.ErrInvalidInput)
}

// Extract produces the transcript for the video URL. An existing
// transcript for the same video ID is reused without downloading.
// YouTube transcripts never carry tables.
func (e *Extractor) Extract(ctx context.Context, videoURL string) (string, []domain.Table, error) {
	id, err := ParseVideoID(videoURL)
	if err != nil {
		return "", nil, err
	}

	transcriptPath := filepath.Join(e.youtubeDir, fmt.Sprintf("yb_%s.txt", id))
	if existing, err := os.ReadFile(transcriptPath); err == nil {
		logger.Debug("reusing transcript for video %s", id)
		return string(existing), nil, nil
	}

	audioPath, err := e.download(ctx, videoURL, e.audioDir, id)
	if err != nil {
		logger.Warn("cannot download audio for %s: %v", videoURL, err)
		return "", nil, nil
	}
	logger.Debug("audio saved to %s", audioPath)

	text, err := e.transcribe(ctx, audioPath)
	if err != nil {
		return "", nil, fmt.Errorf("transcribing %s: %v: %w", id, err, domain.ErrExtraction)
	}
	if strings.TrimSpace(text) == "" {
		logger.Warn("empty transcript for video %s", id)
		return "", nil, nil
	}

	if err := os.MkdirAll(e.youtubeDir, 0700); err != nil {
		return "", nil, fmt.Errorf("creating transcript directory: %w", err)
	}
	if err := os.WriteFile(transcriptPath, []byte(text), 0600); err != nil {
		return "", nil, fmt.Errorf("saving transcript: %w", err)
	}
	logger.Debug("transcript saved to %s", transcriptPath)

	return text, nil, nil
}

// NewDownloader builds a DownloadFunc over the YouTube client. It picks
// the opus audio track (audio/webm) and writes it to
// destDir/<videoID>_<uuid>.webm.
func NewDownloader(client *ytdl.Client) DownloadFunc {
	return func(ctx context.Context, videoURL, destDir, videoID string) (string, error) {
		video, err := client.GetVideoContext(ctx, videoURL)
		if err != nil {
			return "", fmt.Errorf("fetching video metadata: %w", err)
		}

		format := pickAudioFormat(video.Formats)
		if format == nil {
			return "", fmt.Errorf("no opus audio track for video %s", videoID)
		}

		stream, _, err := client.GetStreamContext(ctx, video, format)
		if err != nil {
			return "", fmt.Errorf("opening audio stream: %w", err)
		}
		defer stream.Close()

		if err := os.MkdirAll(destDir, 0700); err != nil {
			return "", fmt.Errorf("creating audio directory: %w", err)
		}

		dest := filepath.Join(destDir, fmt.Sprintf("%s_%s.webm", videoID, uuid.New().String()))
		f, err := os.Create(dest)
		if err != nil {
			return "", fmt.Errorf("creating audio file: %w", err)
		}
		defer f.Close()

		if _, err := io.Copy(f, stream); err != nil {
			os.Remove(dest)
			return "", fmt.Errorf("downloading audio: %w", err)
		}
		return dest, nil
	}
}

// pickAudioFormat selects the opus track in a webm container. Speech
// recognition is configured for WEBM_OPUS, so other containers are
// skipped.
func pickAudioFormat(formats ytdl.FormatList) *ytdl.Format {
	audio := formats.WithAudioChannels()
	for i := range audio {
		mime := audio[i].MimeType
		if strings.HasPrefix(mime, "audio/webm") && strings.Contains(mime, "opus") {
			return &audio[i]
		}
	}
	return nil
}

// NewTranscriber builds a TranscribeFunc over the Speech API. The
// recognize function wraps speech.Client.LongRunningRecognize plus the
// operation wait, so tests can stub the API.
func NewTranscriber(
	recognize func(ctx context.Context, req *speechpb.LongRunningRecognizeRequest) (*speechpb.LongRunningRecognizeResponse, error),
	languageCode string,
) TranscribeFunc {
	if languageCode == "" {
		languageCode = "en-US"
	}
	return func(ctx context.Context, audioPath string) (string, error) {
		audio, err := os.ReadFile(audioPath)
		if err != nil {
			return "", fmt.Errorf("reading audio: %w", err)
		}

		req := &speechpb.LongRunningRecognizeRequest{
			Config: &speechpb.RecognitionConfig{
				Encoding:                   speechpb.RecognitionConfig_WEBM_OPUS,
				SampleRateHertz:            48000,
				LanguageCode:               languageCode,
				EnableAutomaticPunctuation: true,
			},
			Audio: &speechpb.RecognitionAudio{
				AudioSource: &speechpb.RecognitionAudio_Content{Content: audio},
			},
		}

		resp, err := recognize(ctx, req)
		if err != nil {
			return "", fmt.Errorf("speech recognition: %w", err)
		}

		// Segment texts joined with single spaces in temporal order.
		var sb strings.Builder
		for _, result := range resp.GetResults() {
			if len(result.Alternatives) == 0 {
				continue
			}
			segment := strings.TrimSpace(result.Alternatives[0].Transcript)
			if segment == "" {
				continue
			}
			if sb.Len() > 0 {
				sb.WriteString(" ")
			}
			sb.WriteString(segment)
		}
		return sb.String(), nil
	}
}
