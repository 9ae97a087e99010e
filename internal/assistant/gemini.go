package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

var ErrNoCandidates = errors.New("model returned no candidates")

const intakePrompt = `System Instruction: You are the MedEcho Clinical Assistant.

PHASE 1: INTAKE (Collect Symptoms)
- Your primary goal is to gather clinical details: symptoms, duration, severity, and triggers.
- Ask ONLY ONE focused question at a time.
- Mirror the user's language EXACTLY.
- Do not provide medical advice or diagnoses in this phase.

PHASE 2: CONCLUSION (Advice & Report)
- Trigger this phase ONLY when the user indicates they are done (e.g., "no", "that's it") OR you have sufficient basic data.
- Summarize the reported symptoms briefly.
- PROVIDE HARMLESS PRECAUTIONS: Offer 2-3 common-sense, safe actions (e.g., "Drink plenty of water", "Get extra rest", "Monitor your temperature", "Keep a symptom log").
- DISCLAIMER: State clearly that you are an AI and they should consult a human doctor.
- END TRIGGER: You MUST append the exact string "` + ReportMarker + `" at the very end of your message to signal the system to file the report.

Conversation History:
%s

User's New Message: %s`

const extractionPrompt = `Transform the following clinical intake transcript into a professional medical report.
Transcript: %s

Format the output as a JSON object with these keys:
- condition: a preliminary clinical observation (e.g., "Flu-like symptoms")
- confidence: number 0-100
- symptoms_extracted: array of strings
- advice: the harmless precautions provided at the end (string)
- summary: a professional summary of the patient's report.`

// GeminiClient implements Assistant against the Gemini generateContent API.
type GeminiClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
}

func NewGeminiClient(apiKey, model string) *GeminiClient {
	return &GeminiClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    defaultBaseURL,
		apiKey:     apiKey,
		model:      model,
	}
}

// request/response shapes for the generateContent endpoint

type generateRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature      *float64        `json:"temperature,omitempty"`
	TopP             *float64        `json:"topP,omitempty"`
	ResponseMimeType string          `json:"responseMimeType,omitempty"`
	ResponseSchema   json.RawMessage `json:"responseSchema,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// summarySchema constrains the extraction output so the reply parses as a
// ClinicalSummary without prose wrapping.
var summarySchema = json.RawMessage(`{
	"type": "OBJECT",
	"properties": {
		"condition": {"type": "STRING"},
		"confidence": {"type": "NUMBER"},
		"symptoms_extracted": {"type": "ARRAY", "items": {"type": "STRING"}},
		"advice": {"type": "STRING"},
		"summary": {"type": "STRING"}
	},
	"required": ["condition", "confidence", "symptoms_extracted", "advice", "summary"]
}`)

func (c *GeminiClient) Converse(ctx context.Context, message, history string) (string, error) {
	temperature := 0.7
	topP := 0.95

	return c.generate(ctx, fmt.Sprintf(intakePrompt, history, message), &generationConfig{
		Temperature: &temperature,
		TopP:        &topP,
	})
}

func (c *GeminiClient) ExtractClinicalSummary(ctx context.Context, transcript string) (*ClinicalSummary, error) {
	raw, err := c.generate(ctx, fmt.Sprintf(extractionPrompt, transcript), &generationConfig{
		ResponseMimeType: "application/json",
		ResponseSchema:   summarySchema,
	})
	if err != nil {
		return nil, err
	}

	var summary ClinicalSummary
	if err := json.Unmarshal([]byte(raw), &summary); err != nil {
		return nil, fmt.Errorf("decode clinical summary: %w", err)
	}
	return &summary, nil
}

func (c *GeminiClient) generate(ctx context.Context, prompt string, cfg *generationConfig) (string, error) {
	reqBody := generateRequest{
		Contents:         []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: cfg,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("call model: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("model returned %d: %s", resp.StatusCode, snippet)
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", ErrNoCandidates
	}
	return out.Candidates[0].Content.Parts[0].Text, nil
}
