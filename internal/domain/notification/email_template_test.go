package notification

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderEmail(t *testing.T) {
	html, err := RenderEmail(EmailContent{
		Title:     "Booking confirmed",
		Body:      "Ana confirmed your booking.\n\nSee you on stage <3",
		ActionURL: "/bookings/42",
		BaseURL:   "https://gigbook.app/",
	})
	require.NoError(t, err)

	assert.Contains(t, html, "<h1")
	assert.Contains(t, html, "Booking confirmed")
	assert.Contains(t, html, `href="https://gigbook.app/bookings/42"`)
	assert.Contains(t, html, "View details")
	assert.Contains(t, html, "https://gigbook.app/settings/notifications")
	assert.Contains(t, html, "See you on stage &lt;3")
	assert.Equal(t, 2, strings.Count(html, "<p style"))
}

func TestRenderEmail_NoButtonWithoutAction(t *testing.T) {
	html, err := RenderEmail(EmailContent{Title: "Hello", Body: "Body", BaseURL: "https://gigbook.app"})
	require.NoError(t, err)
	assert.NotContains(t, html, "View details")
}

func TestAbsoluteURL(t *testing.T) {
	assert.Equal(t, "", absoluteURL("https://x.io", ""))
	assert.Equal(t, "https://other.io/a", absoluteURL("https://x.io", "https://other.io/a"))
	assert.Equal(t, "https://x.io/a", absoluteURL("https://x.io/", "a"))
	assert.Equal(t, "/a", absoluteURL("", "/a"))
}
