package instructor

import (
	"encoding/json"
	"errors"
	"fmt"
)

type Role string

const (
	UserRole  Role = "user"
	ModelRole Role = "model"
)

// Content is one turn of a conversation.
type Content struct {
	Parts []Part `json:"parts"`
	Role  Role   `json:"role"`
}

func NewContent(role Role, parts ...Part) *Content {
	return &Content{Role: role, Parts: parts}
}

// Clone returns a structural copy of the turn.
func (c *Content) Clone() (*Content, error) {
	return copyContent(c)
}

func (c *Content) UnmarshalJSON(data []byte) error {
	var raw struct {
		Parts []json.RawMessage `json:"parts"`
		Role  Role              `json:"role"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	c.Role = raw.Role
	c.Parts = make([]Part, 0, len(raw.Parts))
	for idx, bs := range raw.Parts {
		part, err := UnmarshalPart(bs)
		if err != nil {
			return fmt.Errorf("parts[%d]: %w", idx, err)
		}
		c.Parts = append(c.Parts, part)
	}
	return nil
}

// Part is one unit of content inside a turn. The set of implementations is
// closed: TextPart, InlineDataPart, ExecutableCodePart and
// ExecutableCodeResultPart.
type Part interface {
	isPart()
}

type TextPart struct {
	Text string `json:"text"`
}

func (TextPart) isPart() {}

type InlineData struct {
	Data     string `json:"data"`
	MimeType string `json:"mimeType"`
}

type InlineDataPart struct {
	InlineData InlineData `json:"inlineData"`
}

func (InlineDataPart) isPart() {}

type ExecutableCode struct {
	Code     string `json:"code"`
	Language string `json:"language"`
}

type ExecutableCodePart struct {
	ExecutableCode ExecutableCode `json:"executableCode"`
}

func (ExecutableCodePart) isPart() {}

type ExecutableCodeResult struct {
	Outcome string `json:"outcome"`
	Output  string `json:"output"`
}

type ExecutableCodeResultPart struct {
	ExecutableCodeResult ExecutableCodeResult `json:"executableCodeResult"`
}

func (ExecutableCodeResultPart) isPart() {}

var (
	errNoPartMarker        = errors.New("part carries none of text, inlineData, executableCode, executableCodeResult")
	errAmbiguousPartMarker = errors.New("part carries more than one variant field")
)

// UnmarshalPart picks the Part variant by the field present in data. The wire
// format has no type tag. The live API names the code result field
// codeExecutionResult, so that spelling is accepted too.
func UnmarshalPart(data []byte) (Part, error) {
	var probe struct {
		Text                 *string               `json:"text"`
		InlineData           *InlineData           `json:"inlineData"`
		ExecutableCode       *ExecutableCode       `json:"executableCode"`
		ExecutableCodeResult *ExecutableCodeResult `json:"executableCodeResult"`
		CodeExecutionResult  *ExecutableCodeResult `json:"codeExecutionResult"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, err
	}
	if probe.ExecutableCodeResult == nil {
		probe.ExecutableCodeResult = probe.CodeExecutionResult
	}
	var (
		part  Part
		found int
	)
	if probe.Text != nil {
		part = TextPart{Text: *probe.Text}
		found++
	}
	if probe.InlineData != nil {
		part = InlineDataPart{InlineData: *probe.InlineData}
		found++
	}
	if probe.ExecutableCode != nil {
		part = ExecutableCodePart{ExecutableCode: *probe.ExecutableCode}
		found++
	}
	if probe.ExecutableCodeResult != nil {
		part = ExecutableCodeResultPart{ExecutableCodeResult: *probe.ExecutableCodeResult}
		found++
	}
	switch found {
	case 0:
		return nil, errNoPartMarker
	case 1:
		return part, nil
	}
	return nil, errAmbiguousPartMarker
}

// copyContent returns a structural copy of src.
func copyContent(src *Content) (*Content, error) {
	if src == nil {
		return nil, errors.New("nil content")
	}
	dist := &Content{
		Role:  src.Role,
		Parts: make([]Part, 0, len(src.Parts)),
	}
	for idx, part := range src.Parts {
		cp, err := copyPart(part)
		if err != nil {
			return nil, fmt.Errorf("parts[%d]: %w", idx, err)
		}
		dist.Parts = append(dist.Parts, cp)
	}
	return dist, nil
}

// Every variant only holds strings, so a value copy is already deep.
func copyPart(part Part) (Part, error) {
	switch v := part.(type) {
	case TextPart:
		return v, nil
	case *TextPart:
		if v != nil {
			return *v, nil
		}
	case InlineDataPart:
		return v, nil
	case *InlineDataPart:
		if v != nil {
			return *v, nil
		}
	case ExecutableCodePart:
		return v, nil
	case *ExecutableCodePart:
		if v != nil {
			return *v, nil
		}
	case ExecutableCodeResultPart:
		return v, nil
	case *ExecutableCodeResultPart:
		if v != nil {
			return *v, nil
		}
	}
	return nil, fmt.Errorf("unsupported part %T", part)
}
