package service

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
)

// Mail bodies are authored as markdown and converted to HTML just before
// delivery.
func renderMailHTML(markdownBody string) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(markdownBody), &buf); err != nil {
		return "", err
	}
	return "<html><body>" + buf.String() + "</body></html>", nil
}

func shareMailBody(senderName, docTitle, link string) string {
	if senderName == "" {
		senderName = "Someone"
	}
	return fmt.Sprintf(`## %s shared a document with you

**%s** has shared the document **%s** with you.

Open it here: [%s](%s)

The link is time limited and stops working once it expires or the owner revokes it.`,
		senderName, senderName, docTitle, link, link)
}
