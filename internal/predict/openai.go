package predict

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"lg/calorie-tracker-api/internal/model"
)

const foodSystemPrompt = `You are a nutrition assistant. Estimate the nutrition of the food the user describes or photographs and return a JSON object with:
- "food_name" (string, short and in title case)
- "meal_type" (one of: breakfast, lunch, dinner, snack; omit if it cannot be told)
- "quantity_grams" (number, estimated weight of the whole portion)
- "calories" (number, total for the whole portion)
- "protein_g" (number, total for the whole portion)
- "carbs_g" (number, total for the whole portion)
- "fat_g" (number, total for the whole portion)
- "fiber_g" (number, total for the whole portion)
- "confidence" (number 0-1: 1=exact known nutritional data, 0.5=reasonable estimate, 0.1=very uncertain)

Always provide your best estimate, even for unfamiliar or vague items. Use your knowledge of similar foods to approximate. Only return {"error": "unrecognized"} if the input is not food at all (e.g. random characters, non-food objects).
Return only valid JSON, no explanation.`

const imageInstruction = "Identify the food in this photo and estimate the nutrition of the portion shown."

// OpenAI is an Inferrer backed by the OpenAI chat completions API.
type OpenAI struct {
	client openai.Client
	model  string
}

// NewOpenAI builds an OpenAI inferrer. baseURL may be empty for the public API.
// SDK retries are disabled; the Normalizer owns the retry policy.
func NewOpenAI(apiKey, baseURL, modelName string) *OpenAI {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if modelName == "" {
		modelName = string(openai.ChatModelGPT4oMini)
	}
	return &OpenAI{client: openai.NewClient(opts...), model: modelName}
}

func (o *OpenAI) Model() string { return o.model }

// Infer sends req as a single chat completion and returns the content of the
// first choice.
func (o *OpenAI) Infer(ctx context.Context, req Request) (string, error) {
	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(systemPrompt(req)),
	}
	if req.Kind() == model.InputImage {
		dataURL := "data:" + req.ImageMIME + ";base64," + base64.StdEncoding.EncodeToString(req.Image)
		text := imageInstruction
		if hint := strings.TrimSpace(req.Text); hint != "" {
			text += " The user adds: " + hint
		}
		messages = append(messages, openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
			openai.TextContentPart(text),
			openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{URL: dataURL}),
		}))
	} else {
		messages = append(messages, openai.UserMessage(req.Text))
	}

	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(o.model),
		Messages:    messages,
		Temperature: openai.Float(0),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: openai: %w", ErrUnavailable, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: openai returned no choices", ErrUnavailable)
	}
	return resp.Choices[0].Message.Content, nil
}

// systemPrompt appends the eating time and, when known, the user's body stats.
func systemPrompt(req Request) string {
	var b strings.Builder
	b.WriteString(foodSystemPrompt)
	if !req.At.IsZero() {
		fmt.Fprintf(&b, "\n\nThe meal was eaten at %s local time.", req.At.Format("15:04"))
	}
	if u := req.User; u != nil {
		fmt.Fprintf(&b, "\nThe user is: sex %s, age %d, weight %.0f kg, height %.0f cm.", u.Sex, u.Age, u.WeightKG, u.HeightCM)
	}
	return b.String()
}
