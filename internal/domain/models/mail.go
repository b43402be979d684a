package models

// MailContent is the body of an outgoing message, independent of routing.
type MailContent struct {
	Subject string
	Text    string
	HTML    string
}

// MailOptions routes a MailContent.
type MailOptions struct {
	To          []string
	ReplyTo     string
	Attachments []MailAttachment
}

type MailAttachment struct {
	Filename string
	Content  []byte
}

// SendResult is the uniform outcome every endpoint consumes. Callers never
// learn which transport delivered the message; Error carries a safe,
// user-facing string when Success is false.
type SendResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}
