package models

// Form payloads accepted by the public API. Validation tags are enforced by
// internal/lib/validate before any mail is dispatched.

type ContactForm struct {
	Name    string `json:"name" validate:"required,max=120"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone" validate:"omitempty,max=32"`
	Message string `json:"message" validate:"required,max=4000"`
}

type BookingForm struct {
	Name          string `json:"name" validate:"required,max=120"`
	Email         string `json:"email" validate:"required,email"`
	Phone         string `json:"phone" validate:"required,max=32"`
	Service       string `json:"service" validate:"required,oneof=pumping inspection repair installation maintenance other"`
	PreferredDate string `json:"preferredDate" validate:"required,datetime=2006-01-02"`
	Address       string `json:"address" validate:"required,max=300"`
	Notes         string `json:"notes" validate:"omitempty,max=4000"`
}

type NewsletterForm struct {
	Email string `json:"email" validate:"required,email"`
}

type TestimonialForm struct {
	Name    string `json:"name" validate:"required,max=120"`
	Email   string `json:"email" validate:"required,email"`
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Message string `json:"message" validate:"required,max=4000"`
}
