package mailer

// EmailJob is the JSON payload put on the RabbitMQ queue for sending email.
// Either Template (+Data) or Subject with Text/HTML must be set.
type EmailJob struct {
	To       string         `json:"to"`
	Subject  string         `json:"subject,omitempty"`
	Text     string         `json:"text,omitempty"`
	HTML     string         `json:"html,omitempty"`
	Template string         `json:"template,omitempty"` // templates.Welcome, templates.SubscriptionActivated, templates.CourseEnrolled
	Data     map[string]any `json:"data,omitempty"`
}

// Prepare fills Subject/Text/HTML from the template when one is set.
func (j *EmailJob) Prepare(render func(name string, data map[string]any) (string, string, string, error)) error {
	if j.Template == "" {
		return nil
	}
	if j.Data == nil {
		j.Data = map[string]any{}
	}
	if _, ok := j.Data["Email"]; !ok {
		j.Data["Email"] = j.To
	}
	subject, text, html, err := render(j.Template, j.Data)
	if err != nil {
		return err
	}
	j.Subject, j.Text, j.HTML = subject, text, html
	return nil
}
