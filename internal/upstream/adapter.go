package upstream

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Image is one generated image, base64-encoded as the API delivers it.
type Image struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

// Result is a provider-neutral view of a generateContent response.
type Result struct {
	Text   string
	Images []Image
}

// ResponseAdapter reshapes one provider-specific generateContent response
// body. Adapters are selected by model name so new response formats become
// a new adapter, not another branch in a conditional chain.
type ResponseAdapter interface {
	Extract(body []byte) (*Result, error)
}

// AdapterFor picks the adapter for a model. Image-capable models (the
// "-image-" Gemini variants and Imagen) get the image adapter; everything
// else is treated as text.
func AdapterFor(model string) ResponseAdapter {
	m := strings.ToLower(model)
	if strings.Contains(m, "image") || strings.Contains(m, "imagen") {
		return imageAdapter{}
	}
	return textAdapter{}
}

var errUnparsable = errors.New("could not parse upstream response")

// generateContentResponse covers the candidates-based shape shared by the
// Gemini text and image models; predictions is the Imagen shape.
type generateContentResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text       string `json:"text"`
				InlineData *struct {
					MimeType string `json:"mimeType"`
					Data     string `json:"data"`
				} `json:"inlineData"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason  string `json:"finishReason"`
		FinishMessage string `json:"finishMessage"`
	} `json:"candidates"`
	Predictions []struct {
		BytesBase64Encoded string `json:"bytesBase64Encoded"`
	} `json:"predictions"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

type textAdapter struct{}

// Extract joins the text parts of the first candidate.
func (textAdapter) Extract(body []byte) (*Result, error) {
	var resp generateContentResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, errUnparsable
	}
	if resp.Error != nil {
		return nil, errors.New(resp.Error.Message)
	}
	if len(resp.Candidates) == 0 {
		return nil, errUnparsable
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	return &Result{Text: sb.String()}, nil
}

type imageAdapter struct{}

// Extract collects inline image parts, keeping any accompanying text; the
// Imagen predictions format is folded into the same result shape.
func (imageAdapter) Extract(body []byte) (*Result, error) {
	var resp generateContentResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, errUnparsable
	}
	if resp.Error != nil {
		return nil, errors.New(resp.Error.Message)
	}

	result := &Result{}

	if len(resp.Candidates) > 0 {
		cand := resp.Candidates[0]
		var sb strings.Builder
		for _, part := range cand.Content.Parts {
			if part.InlineData != nil {
				mime := part.InlineData.MimeType
				if mime == "" {
					mime = "image/png"
				}
				result.Images = append(result.Images, Image{
					MimeType: mime,
					Data:     part.InlineData.Data,
				})
				continue
			}
			sb.WriteString(part.Text)
		}
		result.Text = sb.String()

		if len(result.Images) == 0 && result.Text == "" && cand.FinishReason != "" {
			return nil, fmt.Errorf("model stopped without output: %s %s", cand.FinishReason, cand.FinishMessage)
		}
		return result, nil
	}

	for _, pred := range resp.Predictions {
		if pred.BytesBase64Encoded != "" {
			result.Images = append(result.Images, Image{
				MimeType: "image/png",
				Data:     pred.BytesBase64Encoded,
			})
		}
	}
	if len(result.Images) == 0 {
		return nil, errUnparsable
	}
	return result, nil
}
