package instructor

import (
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/gabriel-vasile/mimetype"
)

// Prompt is a conversation plus the options it is sent with.
type Prompt struct {
	Contents []*Content
	Options  PromptOptions
}

func NewPrompt(options PromptOptions, contents ...*Content) *Prompt {
	return &Prompt{
		Contents: contents,
		Options:  options.Copy(),
	}
}

// AddText appends text for role, user when role is omitted.
func (p *Prompt) AddText(text string, role ...Role) *Prompt {
	r := UserRole
	if len(role) > 0 && role[0] != "" {
		r = role[0]
	}
	p.addPart(TextPart{Text: text}, r)
	return p
}

// AddInlineData appends a base64 encoded file to the user turn. An empty
// mimeType is detected from the payload.
func (p *Prompt) AddInlineData(base64File string, mimeType string) error {
	if mimeType == "" {
		data, err := base64.StdEncoding.DecodeString(base64File)
		if err != nil {
			return fmt.Errorf("decode inline data: %w", err)
		}
		mimeType = mimetype.Detect(data).String()
	} else if _, err := base64.StdEncoding.DecodeString(base64File); err != nil {
		return fmt.Errorf("decode inline data: %w", err)
	}
	p.addPart(InlineDataPart{InlineData: InlineData{Data: base64File, MimeType: mimeType}}, UserRole)
	return nil
}

// AddContents appends turns as they are, without merging.
func (p *Prompt) AddContents(contents ...*Content) *Prompt {
	p.Contents = append(p.Contents, contents...)
	return p
}

func (p *Prompt) addPart(part Part, role Role) {
	if n := len(p.Contents); n > 0 {
		if last := p.Contents[n-1]; last != nil && last.Role == role {
			last.Parts = append(last.Parts, part)
			return
		}
	}
	p.Contents = append(p.Contents, NewContent(role, part))
}

// Clone returns a deep copy of the conversation. Options are value copied,
// the Transport is shared.
func (p *Prompt) Clone() (*Prompt, error) {
	if p == nil {
		return nil, NewError(CloneError, errors.New("nil prompt"))
	}
	contents := make([]*Content, 0, len(p.Contents))
	for idx, content := range p.Contents {
		cp, err := copyContent(content)
		if err != nil {
			return nil, NewError(CloneError, fmt.Errorf("contents[%d]: %w", idx, err))
		}
		contents = append(contents, cp)
	}
	return &Prompt{
		Contents: contents,
		Options:  p.Options.Copy(),
	}, nil
}

// Last returns the last turn or nil.
func (p *Prompt) Last() *Content {
	if len(p.Contents) == 0 {
		return nil
	}
	return p.Contents[len(p.Contents)-1]
}
