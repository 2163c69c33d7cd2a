// Package templates renders the notification emails sent to learners.
// Each template file defines three blocks: subject, text and html.
package templates

import (
	"bytes"
	"embed"
	"fmt"
	htmpl "html/template"
	"strings"
	texttpl "text/template"
)

//go:embed *.tmpl
var FS embed.FS

const (
	Welcome               = "welcome"
	SubscriptionActivated = "subscription_activated"
	CourseEnrolled        = "course_enrolled"
)

// Names lists every template shipped in FS.
var Names = []string{Welcome, SubscriptionActivated, CourseEnrolled}

// Render executes the named template and returns subject, plain text and HTML bodies.
func Render(name string, data map[string]any) (string, string, string, error) {
	file := name + ".tmpl"
	raw, err := FS.ReadFile(file)
	if err != nil {
		return "", "", "", fmt.Errorf("unknown template %q", name)
	}

	tt, err := texttpl.New(file).Option("missingkey=zero").Parse(string(raw))
	if err != nil {
		return "", "", "", err
	}
	ht, err := htmpl.New(file).Option("missingkey=zero").Parse(string(raw))
	if err != nil {
		return "", "", "", err
	}

	var subject, text, html bytes.Buffer
	if err := tt.ExecuteTemplate(&subject, "subject", data); err != nil {
		return "", "", "", err
	}
	if err := tt.ExecuteTemplate(&text, "text", data); err != nil {
		return "", "", "", err
	}
	if err := ht.ExecuteTemplate(&html, "html", data); err != nil {
		return "", "", "", err
	}
	return strings.TrimSpace(subject.String()), strings.TrimSpace(text.String()), html.String(), nil
}
