package tools

import (
	"context"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/ChamsBouzaiene/solvr/internal/agent"
	"github.com/ChamsBouzaiene/solvr/internal/oracle"
)

const transcriptSystem = "You are an extraction assistant. You will be given a question with strict formatting rules, " +
	"and a transcript of an audio clip. Follow the question's instructions EXACTLY and return ONLY the final answer."

// NewASRTool transcribes an attached audio file and answers the task
// question from the transcript.
func NewASRTool(client oracle.Client) agent.Tool {
	return agent.Tool{
		Name:        "asr",
		Description: "Transcribe an attached audio file (mp3/wav/m4a) and answer the current question from it.",
		SchemaJSON:  `{"type":"object","properties":{"file_path":{"type":"string","description":"Path to the audio file"}}}`,
		Aliases: map[string][]string{
			"file_path": {"path", "filename", "file", "audio", "mp3"},
		},
		Fn: func(ctx context.Context, st *agent.State, params map[string]any) (string, error) {
			transcriber, ok := client.(oracle.Transcriber)
			if !ok {
				return "ERROR: asr: transcription service not configured.", nil
			}

			path, _ := params["file_path"].(string)
			if path == "" {
				path = st.FileName
			}
			if path == "" {
				return "ERROR: no audio file provided.", nil
			}
			if _, err := os.Stat(path); err != nil {
				return fmt.Sprintf("ERROR: file not found: %s", path), nil
			}

			transcript, err := transcriber.Transcribe(ctx, path)
			if err != nil {
				return fmt.Sprintf("ERROR: transcription failed: %v", err), nil
			}
			transcript = strings.TrimSpace(transcript)
			if transcript == "" {
				return "ERROR: transcription returned empty text.", nil
			}

			if st.Question == "" {
				return transcript, nil
			}
			return extractFromTranscript(ctx, client, st.Question, transcript)
		},
	}
}

var videoIDRe = regexp.MustCompile(`(?:v=|youtu\.be/|/shorts/|/embed/)([A-Za-z0-9_-]{11})`)

// NewYTTranscriptTool fetches a YouTube video's caption track and answers
// the task question from it. Captions come from the public timedtext
// endpoint; videos without English captions are an expected failure.
func NewYTTranscriptTool(client oracle.Client, httpClient *http.Client) agent.Tool {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: fetchTimeout}
	}
	return agent.Tool{
		Name:        "yt_transcript",
		Description: "Fetch a YouTube video's transcript and answer the current question from it.",
		SchemaJSON:  `{"type":"object","properties":{"url":{"type":"string","description":"YouTube video URL"},"video_id":{"type":"string","description":"11-character YouTube video id"}}}`,
		Aliases: map[string][]string{
			"url":      {"video_url", "link"},
			"video_id": {"vid", "v"},
		},
		Fn: func(ctx context.Context, st *agent.State, params map[string]any) (string, error) {
			if client == nil {
				return "ERROR: yt_transcript: reasoning service not configured.", nil
			}

			videoID, _ := params["video_id"].(string)
			if videoID == "" {
				raw, _ := params["url"].(string)
				if raw == "" {
					raw = st.Question
				}
				if m := videoIDRe.FindStringSubmatch(raw); m != nil {
					videoID = m[1]
				}
			}
			if videoID == "" {
				return "ERROR: yt_transcript: no video URL or id found.", nil
			}

			transcript, err := fetchTimedText(ctx, httpClient, videoID)
			if err != nil {
				return fmt.Sprintf("ERROR: yt_transcript: %v", err), nil
			}
			if transcript == "" {
				return "ERROR: yt_transcript: no English captions available.", nil
			}

			return extractFromTranscript(ctx, client, st.Question, transcript)
		},
	}
}

func extractFromTranscript(ctx context.Context, client oracle.Client, question, transcript string) (string, error) {
	user := fmt.Sprintf("Question (follow formatting strictly):\n%s\n\nTranscript:\n%s\n\nReturn ONLY the final answer, nothing else.",
		question, clampText(transcript, contextCharLimit))
	out, err := client.Complete(ctx, transcriptSystem, user)
	if err != nil {
		return fmt.Sprintf("ERROR: transcript extraction failed: %v", err), nil
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "ERROR: empty model response.", nil
	}
	return out, nil
}

var captionTagRe = regexp.MustCompile(`<[^>]+>`)

func fetchTimedText(ctx context.Context, httpClient *http.Client, videoID string) (string, error) {
	body, err := fetchURL(ctx, httpClient,
		"https://www.youtube.com/api/timedtext?lang=en&v="+url.QueryEscape(videoID))
	if err != nil {
		return "", err
	}
	text := captionTagRe.ReplaceAllString(body, " ")
	text = html.UnescapeString(text)
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " ")), nil
}
