package verify

import (
	"fmt"

	"github.com/osteele/liquid"
)

// EmailTemplate renders the verification email body. The template source
// is fetched from object storage at startup and parsed once; it may use
// {{ code }} and {{ username }}.
type EmailTemplate struct {
	tpl *liquid.Template
}

func NewEmailTemplate(source string) (*EmailTemplate, error) {
	tpl, err := liquid.NewEngine().ParseString(source)
	if err != nil {
		return nil, fmt.Errorf("parse email template: %w", err)
	}
	return &EmailTemplate{tpl: tpl}, nil
}

func (t *EmailTemplate) Render(username, code string) (string, error) {
	out, err := t.tpl.RenderString(map[string]interface{}{
		"username": username,
		"code":     code,
	})
	if err != nil {
		return "", fmt.Errorf("render email template: %w", err)
	}
	return out, nil
}
