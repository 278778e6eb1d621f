package ai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"project/backend/config"
)

// ErrUnsupportedDocument is returned for uploads that are neither an image
// nor a readable text format.
var ErrUnsupportedDocument = errors.New("unsupported document type")

// maxInlineDocumentChars caps how much of a text upload is sent to the model.
const maxInlineDocumentChars = 16000

// OpenAIProvider implements Provider on top of the OpenAI API.
type OpenAIProvider struct {
	client      *openai.Client
	model       string
	speechModel string
}

func NewOpenAIProvider(cfg *config.Config) (*OpenAIProvider, error) {
	if cfg.OpenAIKey == "" {
		return nil, errors.New("OPENAI_API_KEY is not set")
	}
	return &OpenAIProvider{
		client:      openai.NewClient(cfg.OpenAIKey),
		model:       cfg.OpenAIModel,
		speechModel: cfg.OpenAISpeechModel,
	}, nil
}

func (p *OpenAIProvider) GenerateLesson(ctx context.Context, req LessonRequest) (*LessonContent, error) {
	system := lessonSystemPrompt
	if req.Exam {
		system = examSystemPrompt
	}
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: lessonUserPrompt(req)},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0.6,
	})
	if err != nil {
		return nil, fmt.Errorf("lesson completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, &CurationError{Reason: "model returned no choices"}
	}
	content, err := ParseLessonContent(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}
	if content.Topic == "" {
		content.Topic = req.Topic
	}
	return content, nil
}

func (p *OpenAIProvider) AskTutor(ctx context.Context, req TutorRequest) (string, error) {
	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: tutorSystemPrompt(req)},
	}
	for _, turn := range req.History {
		role := openai.ChatMessageRoleUser
		if turn.Role == "assistant" {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: turn.Content})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Question,
	})

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    p.model,
		Messages: messages,
	})
	if err != nil {
		return "", fmt.Errorf("tutor completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("model returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

func (p *OpenAIProvider) SynthesizeSpeech(ctx context.Context, text, voice string) ([]byte, error) {
	if voice == "" {
		voice = string(openai.VoiceNova)
	}
	resp, err := p.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.SpeechModel(p.speechModel),
		Input:          text,
		Voice:          openai.SpeechVoice(voice),
		ResponseFormat: openai.SpeechResponseFormatMp3,
	})
	if err != nil {
		return nil, fmt.Errorf("speech synthesis: %w", err)
	}
	defer resp.Close()
	return io.ReadAll(resp)
}

func (p *OpenAIProvider) AnalyzeDocument(ctx context.Context, fileName, contentType string, data []byte, profile ProfileContext) (string, error) {
	var message openai.ChatCompletionMessage
	switch {
	case strings.HasPrefix(contentType, "image/"):
		dataURL := fmt.Sprintf("data:%s;base64,%s", contentType, base64.StdEncoding.EncodeToString(data))
		message = openai.ChatCompletionMessage{
			Role: openai.ChatMessageRoleUser,
			MultiContent: []openai.ChatMessagePart{
				{Type: openai.ChatMessagePartTypeText, Text: documentUserPrompt(fileName, profile)},
				{Type: openai.ChatMessagePartTypeImageURL, ImageURL: &openai.ChatMessageImageURL{
					URL:    dataURL,
					Detail: openai.ImageURLDetailAuto,
				}},
			},
		}
	case isTextualDocument(contentType):
		text := string(data)
		if len(text) > maxInlineDocumentChars {
			text = text[:maxInlineDocumentChars]
		}
		message = openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleUser,
			Content: documentUserPrompt(fileName, profile) + "\nDocument contents:\n" + text,
		}
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedDocument, contentType)
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    p.model,
		Messages: []openai.ChatCompletionMessage{message},
	})
	if err != nil {
		return "", fmt.Errorf("document analysis: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("model returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

func isTextualDocument(contentType string) bool {
	return strings.HasPrefix(contentType, "text/") ||
		contentType == "application/json" ||
		contentType == "application/xml"
}
