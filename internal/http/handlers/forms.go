package handlers

import (
	"fmt"
	"net/http"
	"time"

	"siteapi/internal/domain/models"
	"siteapi/internal/lib/token"
	"siteapi/internal/services/mailer"
)

const unsubscribeTokenTTL = 90 * 24 * time.Hour

// Contact relays a general inquiry to the office and confirms to the sender.
func (h *Handler) Contact(w http.ResponseWriter, r *http.Request) {
	var form models.ContactForm
	if !h.decode(w, r, &form) {
		return
	}
	if !h.validateForm(w, form) {
		return
	}

	notification := models.MailContent{
		Subject: fmt.Sprintf("New contact form submission from %s", form.Name),
		Text: fmt.Sprintf("Name: %s\nEmail: %s\nPhone: %s\n\nMessage:\n%s\n",
			form.Name, form.Email, form.Phone, form.Message),
	}
	confirmation := &mailer.Confirmation{
		To: form.Email,
		Content: models.MailContent{
			Subject: fmt.Sprintf("We received your message — %s", h.business.Name),
			Text: fmt.Sprintf("Hi %s,\n\nThanks for reaching out. We typically reply within one business day.\nIf it's urgent, call us at %s.\n\n%s\n",
				form.Name, h.business.Phone, h.business.Name),
		},
	}

	h.deliver(w, r, notification, form.Email, confirmation)
}

// Booking relays a service-booking request.
func (h *Handler) Booking(w http.ResponseWriter, r *http.Request) {
	var form models.BookingForm
	if !h.decode(w, r, &form) {
		return
	}
	if !h.validateForm(w, form) {
		return
	}

	notification := models.MailContent{
		Subject: fmt.Sprintf("New booking request: %s on %s", form.Service, form.PreferredDate),
		Text: fmt.Sprintf("Name: %s\nEmail: %s\nPhone: %s\nService: %s\nPreferred date: %s\nAddress: %s\n\nNotes:\n%s\n",
			form.Name, form.Email, form.Phone, form.Service, form.PreferredDate, form.Address, form.Notes),
	}
	confirmation := &mailer.Confirmation{
		To: form.Email,
		Content: models.MailContent{
			Subject: fmt.Sprintf("Booking request received — %s", h.business.Name),
			Text: fmt.Sprintf("Hi %s,\n\nWe received your %s request for %s and will call %s to confirm a time window.\n\n%s\n",
				form.Name, form.Service, form.PreferredDate, form.Phone, h.business.Name),
		},
	}

	h.deliver(w, r, notification, form.Email, confirmation)
}

// Newsletter subscribes a visitor: the office is notified and the subscriber
// gets a welcome mail carrying a signed unsubscribe link.
func (h *Handler) Newsletter(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.Newsletter"

	var form models.NewsletterForm
	if !h.decode(w, r, &form) {
		return
	}
	if !h.validateForm(w, form) {
		return
	}

	notification := models.MailContent{
		Subject: "New newsletter subscription",
		Text:    fmt.Sprintf("New subscriber: %s\n", form.Email),
	}

	var confirmation *mailer.Confirmation
	unsubToken, err := token.NewUnsubscribeToken(form.Email, unsubscribeTokenTTL, h.secret)
	if err != nil {
		// the welcome mail is skipped rather than sent without its link
		h.log.Error("unsubscribe token issue failed", "op", op, "error", err.Error())
	} else {
		confirmation = &mailer.Confirmation{
			To: form.Email,
			Content: models.MailContent{
				Subject: fmt.Sprintf("Welcome to the %s newsletter", h.business.Name),
				Text: fmt.Sprintf("Thanks for subscribing to %s tips and seasonal reminders.\n\nUnsubscribe any time: %s/api/newsletter/unsubscribe?token=%s\n",
					h.business.Name, h.siteURL, unsubToken),
			},
		}
	}

	h.deliver(w, r, notification, form.Email, confirmation)
}

// Unsubscribe honors a signed unsubscribe link from a newsletter mail.
func (h *Handler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.Unsubscribe"

	raw := r.URL.Query().Get("token")
	if raw == "" {
		respondError(w, http.StatusBadRequest, "token is required")
		return
	}
	email, err := token.ParseUnsubscribeToken(raw, h.secret)
	if err != nil {
		respondError(w, http.StatusBadRequest, "this unsubscribe link is invalid or has expired")
		return
	}

	// no subscriber store exists; the office processes the removal by mail
	result := h.mailer.Notify(r.Context(), models.MailContent{
		Subject: "Newsletter unsubscribe request",
		Text:    fmt.Sprintf("Please remove from the newsletter list: %s\n", email),
	}, "", nil)
	if !result.Success {
		h.log.Error("unsubscribe notification failed", "op", op, "email", email)
		respondError(w, http.StatusInternalServerError, result.Error)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true})
}

// Testimonial relays a review submission.
func (h *Handler) Testimonial(w http.ResponseWriter, r *http.Request) {
	var form models.TestimonialForm
	if !h.decode(w, r, &form) {
		return
	}
	if !h.validateForm(w, form) {
		return
	}

	notification := models.MailContent{
		Subject: fmt.Sprintf("New testimonial from %s (%d/5)", form.Name, form.Rating),
		Text: fmt.Sprintf("Name: %s\nEmail: %s\nRating: %d/5\n\n%s\n",
			form.Name, form.Email, form.Rating, form.Message),
	}
	confirmation := &mailer.Confirmation{
		To: form.Email,
		Content: models.MailContent{
			Subject: fmt.Sprintf("Thanks for your review — %s", h.business.Name),
			Text: fmt.Sprintf("Hi %s,\n\nThank you for taking the time to share your experience. We may feature your words on our site.\n\n%s\n",
				form.Name, h.business.Name),
		},
	}

	h.deliver(w, r, notification, form.Email, confirmation)
}

// deliver runs the dispatcher and writes the uniform result: 200 on success,
// 500 with the generic unavailable message otherwise.
func (h *Handler) deliver(w http.ResponseWriter, r *http.Request, notification models.MailContent, replyTo string, confirmation *mailer.Confirmation) {
	result := h.mailer.Notify(r.Context(), notification, replyTo, confirmation)
	if !result.Success {
		respondError(w, http.StatusInternalServerError, result.Error)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true})
}
