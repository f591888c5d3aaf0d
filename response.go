package instructor

import (
	"encoding/json"
	"errors"
)

type UsageMetadata struct {
	PromptTokenCount     int64 `json:"promptTokenCount"`
	CandidatesTokenCount int64 `json:"candidatesTokenCount"`
	TotalTokenCount      int64 `json:"totalTokenCount"`
}

func (u *UsageMetadata) Add(v UsageMetadata) {
	u.PromptTokenCount += v.PromptTokenCount
	u.CandidatesTokenCount += v.CandidatesTokenCount
	u.TotalTokenCount += v.TotalTokenCount
}

type Candidate struct {
	Content      *Content     `json:"content,omitempty"`
	FinishReason FinishReason `json:"finishReason"`
}

// ResponseData is the decoded body of one round trip.
type ResponseData struct {
	UsageMetadata UsageMetadata `json:"usageMetadata"`
	ModelVersion  string        `json:"modelVersion"`
	ResponseID    string        `json:"responseId"`
	Candidates    []Candidate   `json:"candidates"`
}

// ParseResponseData decodes a generateContent response body.
func ParseResponseData(body []byte) (*ResponseData, error) {
	if len(body) == 0 {
		return nil, NewError(MalformedResponseError, errors.New("empty response body"))
	}
	ret := new(ResponseData)
	if err := json.Unmarshal(body, ret); err != nil {
		return nil, NewError(MalformedResponseError, err)
	}
	return ret, nil
}

// LastFinishReason is the finish reason of the last candidate.
func (r *ResponseData) LastFinishReason() (FinishReason, bool) {
	if r == nil || len(r.Candidates) == 0 {
		return FinishReasonUnspecified, false
	}
	return r.Candidates[len(r.Candidates)-1].FinishReason, true
}

// FirstText returns the first text part of the first candidate.
func (r *ResponseData) FirstText() (string, bool) {
	if r == nil || len(r.Candidates) == 0 || r.Candidates[0].Content == nil {
		return "", false
	}
	for _, part := range r.Candidates[0].Content.Parts {
		if text, ok := PartText(part); ok {
			return text, true
		}
	}
	return "", false
}

func PartText(part Part) (string, bool) {
	switch v := part.(type) {
	case TextPart:
		return v.Text, true
	case *TextPart:
		if v != nil {
			return v.Text, true
		}
	}
	return "", false
}
