package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/ChamsBouzaiene/solvr/internal/agent"
	"github.com/ChamsBouzaiene/solvr/internal/normalize"
	"github.com/ChamsBouzaiene/solvr/internal/oracle"
)

const answerSystem = "You are a precise research assistant. " +
	"Return ONLY the answer, not commentary. " +
	"Follow the user's instructions exactly. " +
	"If the sentence is reversed, put it in a normal order and treat that as your instruction. " +
	"If the question requests a numeric/count result, output only the number. " +
	"If CSV is requested, output a comma-separated list (no bullets, no prose). " +
	"If IOC country code is requested, output just the 3-letter code. " +
	"If first name only is requested, output just the first name. " +
	"If chess algebraic notation is requested, output SAN only (e.g., Qh2#). " +
	"If USD two-decimals is requested, format like $123.45. " +
	"Do not add explanations unless explicitly asked."

// NewAnswerTool is the general-purpose fallback for questions without a
// dedicated capability. When the task carries an attached image and the
// oracle supports vision, the image is sent along with the question. The
// result is normalized to the shape the question demands before it becomes
// an observation.
func NewAnswerTool(client oracle.Client) agent.Tool {
	return agent.Tool{
		Name:        "openai_answer",
		Description: "General LLM answer for questions without a dedicated tool. Handles attached images when the model supports vision.",
		SchemaJSON:  `{"type":"object","properties":{"instruction":{"type":"string","description":"Extra guidance, e.g. answer with a single integer"}}}`,
		Fn: func(ctx context.Context, st *agent.State, params map[string]any) (string, error) {
			if client == nil {
				return "ERROR: openai_answer: reasoning service not configured.", nil
			}

			user := fmt.Sprintf("Question:\n%s", st.Question)
			if instruction, _ := params["instruction"].(string); instruction != "" {
				user = instruction + "\n\n" + user
			}

			var text string
			var err error
			if vision, ok := client.(oracle.VisionClient); ok && isImagePath(st.FileName) {
				text, err = vision.CompleteWithImage(ctx, answerSystem, user, st.FileName)
			} else {
				text, err = client.Complete(ctx, answerSystem, user)
			}
			if err != nil {
				return fmt.Sprintf("ERROR: openai_answer failed: %v", err), nil
			}
			return normalize.Answer(st.Question, text), nil
		},
	}
}

const reverseSystem = "You are a precise decoder for short word puzzles.\n" +
	"You may get a text and its character-wise reversal. Follow these rules:\n" +
	"1) Decide which version is meaningful English (original vs. reversed).\n" +
	"2) If the meaningful text contains an instruction (e.g., 'write the opposite of \"X\"'):\n" +
	"   - Execute it literally.\n" +
	"   - For 'opposite', output the standard English antonym of X.\n" +
	"   - DO NOT echo the instruction or the original word.\n" +
	"3) Return ONLY the final answer, with no extra words, no punctuation, no quotes.\n" +
	"4) Self-check: if asked for an 'opposite/antonym', ensure your answer is NOT identical to the target word."

// NewReverseDecodeTool handles reversed-text puzzles: the model sees both
// the text and its character-wise reversal and carries out whichever reads
// as an instruction.
func NewReverseDecodeTool(client oracle.Client) agent.Tool {
	return agent.Tool{
		Name:        "reverse_decode",
		Description: "Decode reversed or scrambled text and execute the instruction it contains.",
		SchemaJSON:  `{"type":"object","properties":{"text":{"type":"string","description":"Possibly reversed text to decode"}}}`,
		Aliases: map[string][]string{
			"text": {"input", "question", "q"},
		},
		Fn: func(ctx context.Context, st *agent.State, params map[string]any) (string, error) {
			if client == nil {
				return "ERROR: reverse_decode: reasoning service not configured.", nil
			}

			text, _ := params["text"].(string)
			if text == "" {
				text = st.Question
			}

			user := fmt.Sprintf("Original:\n%s\n\nReversed:\n%s\n\nReturn ONLY the final answer.",
				text, reverseString(text))
			out, err := client.Complete(ctx, reverseSystem, user)
			if err != nil {
				return fmt.Sprintf("ERROR: reverse_decode failed: %v", err), nil
			}
			return strings.TrimSpace(out), nil
		},
	}
}

func reverseString(s string) string {
	runes := []rune(s)
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		runes[i], runes[j] = runes[j], runes[i]
	}
	return string(runes)
}

func isImagePath(path string) bool {
	lower := strings.ToLower(path)
	for _, ext := range []string{".png", ".jpg", ".jpeg", ".gif", ".webp"} {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}
