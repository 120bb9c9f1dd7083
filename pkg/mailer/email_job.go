package mailer

// Template names understood by the email worker.
const (
	TemplateWelcome   = "welcome"
	TemplateOTP       = "otp"
	TemplateResetLink = "reset_link"
)

// EmailJob is the JSON payload put on the RabbitMQ queue for sending email.
// Either a Template with Data, or a raw Subject with Text/HTML bodies.
type EmailJob struct {
	To       string         `json:"to"`
	Subject  string         `json:"subject,omitempty"`
	Text     string         `json:"text,omitempty"`
	HTML     string         `json:"html,omitempty"`
	Template string         `json:"template,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
}
