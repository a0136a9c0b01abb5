package service

import (
	"fmt"
	"mime"
	"strings"
	"time"
)

// plainMessage renders an RFC 5322 text/plain message. Empty headers are
// left out; Gmail fills From for drafts.
func plainMessage(from, to, subject, body string, now time.Time) []byte {
	var b strings.Builder
	if from != "" {
		fmt.Fprintf(&b, "From: %s\r\n", from)
	}
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	fmt.Fprintf(&b, "Date: %s\r\n", now.Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("Content-Transfer-Encoding: 8bit\r\n\r\n")
	b.WriteString(strings.ReplaceAll(strings.ReplaceAll(body, "\r\n", "\n"), "\n", "\r\n"))
	b.WriteString("\r\n")
	return []byte(b.String())
}

// reviewSubject marks a draft delivered by mail to the reviewer.
func reviewSubject(subject, to string) string {
	return fmt.Sprintf("[Draft for %s] %s", to, subject)
}
