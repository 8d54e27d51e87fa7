package notification

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
)

// EmailContent is the input of the branded email layout.
type EmailContent struct {
	Title      string
	Body       string
	ActionURL  string
	ActionText string
	BaseURL    string
}

const emailLayout = `<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>{{.Title}}</title>
</head>
<body style="margin:0;padding:0;background:#f4f4f7;font-family:Arial,Helvetica,sans-serif;">
  <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="background:#f4f4f7;padding:24px 0;">
    <tr><td align="center">
      <table role="presentation" width="600" cellspacing="0" cellpadding="0" style="background:#ffffff;border-radius:12px;overflow:hidden;">
        <tr>
          <td style="background:linear-gradient(135deg,#7c3aed,#db2777);padding:28px;text-align:center;">
            <span style="color:#ffffff;font-size:24px;font-weight:bold;">🎵 Gigbook</span>
          </td>
        </tr>
        <tr>
          <td style="padding:32px;">
            <h1 style="margin:0 0 16px;color:#111827;font-size:22px;">{{.Title}}</h1>
            {{range .Paragraphs}}<p style="margin:0 0 12px;color:#374151;font-size:15px;line-height:1.6;">{{.}}</p>
            {{end}}{{if .ActionURL}}
            <table role="presentation" cellspacing="0" cellpadding="0" style="margin:24px 0 0;">
              <tr><td style="border-radius:8px;background:#7c3aed;">
                <a href="{{.ActionURL}}" style="display:inline-block;padding:12px 28px;color:#ffffff;text-decoration:none;font-weight:bold;">{{.ActionText}}</a>
              </td></tr>
            </table>{{end}}
          </td>
        </tr>
        <tr>
          <td style="padding:20px 32px;background:#f9fafb;color:#6b7280;font-size:12px;text-align:center;">
            You are receiving this email because of your Gigbook notification settings.<br>
            <a href="{{.PreferencesURL}}" style="color:#7c3aed;">Manage notification preferences</a> or unsubscribe.
          </td>
        </tr>
      </table>
    </td></tr>
  </table>
</body>
</html>`

var emailTemplate = template.Must(template.New("email").Parse(emailLayout))

// RenderEmail wraps title and body in the branded layout. The call-to-action
// button is rendered only when ActionURL is set.
func RenderEmail(c EmailContent) (string, error) {
	actionText := c.ActionText
	if actionText == "" {
		actionText = "View details"
	}

	data := struct {
		Title          string
		Paragraphs     []string
		ActionURL      string
		ActionText     string
		PreferencesURL string
	}{
		Title:          c.Title,
		Paragraphs:     paragraphs(c.Body),
		ActionURL:      absoluteURL(c.BaseURL, c.ActionURL),
		ActionText:     actionText,
		PreferencesURL: absoluteURL(c.BaseURL, "/settings/notifications"),
	}

	var buf bytes.Buffer
	if err := emailTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("execute email template: %w", err)
	}
	return buf.String(), nil
}

func paragraphs(body string) []string {
	var out []string
	for _, p := range strings.Split(body, "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// absoluteURL resolves a relative path against base. Absolute URLs and empty
// strings are returned unchanged.
func absoluteURL(base, path string) string {
	if path == "" || strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return strings.TrimRight(base, "/") + path
}
