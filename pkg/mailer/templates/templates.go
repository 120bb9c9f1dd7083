package templates

import (
	"bytes"
	"embed"
	"fmt"
	htmpl "html/template"
)

//go:embed *.tmpl
var FS embed.FS

// SubjectFor returns the subject line for a known template name.
func SubjectFor(name string, data map[string]any) string {
	switch name {
	case "welcome":
		return "Welcome to Contact Directory"
	case "otp":
		if b, ok := data["IsPasswordReset"].(bool); ok && b {
			return "Password Reset Verification Code"
		}
		return "Your Verification Code"
	case "reset_link":
		return "Password Reset Request"
	default:
		return "Notification"
	}
}

// RenderHTML loads and renders <name>.html.tmpl from the embedded FS.
func RenderHTML(name string, data any) (string, error) {
	tpl, err := htmpl.New(name + ".html.tmpl").ParseFS(FS, name+".html.tmpl")
	if err != nil {
		return "", fmt.Errorf("parse %q: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("exec %q: %w", name, err)
	}
	return buf.String(), nil
}
