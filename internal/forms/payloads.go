package forms

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Payload is a form submission the ERP backend knows how to store.
type Payload interface {
	// DocType names the ERP document the payload is stored as.
	DocType() string
	fields() map[string]any
	sanitize(p *bluemonday.Policy)
}

// Contact is the contact page form.
type Contact struct {
	Name    string `json:"name" validate:"required,max=120"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone,omitempty" validate:"omitempty,max=40"`
	Company string `json:"company,omitempty" validate:"omitempty,max=160"`
	Subject string `json:"subject,omitempty" validate:"omitempty,max=200"`
	Message string `json:"message" validate:"required,min=10,max=5000"`
}

func (Contact) DocType() string { return "Lead" }

func (c Contact) fields() map[string]any {
	return map[string]any{
		"lead_name":    c.Name,
		"email_id":     c.Email,
		"phone":        c.Phone,
		"company_name": c.Company,
		"title":        c.Subject,
		"notes":        c.Message,
		"source":       "Website",
	}
}

func (c *Contact) sanitize(p *bluemonday.Policy) {
	clean(p, &c.Name, &c.Email, &c.Phone, &c.Company, &c.Subject, &c.Message)
}

// Booking requests a consultation slot for a service.
type Booking struct {
	Name    string `json:"name" validate:"required,max=120"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone,omitempty" validate:"omitempty,max=40"`
	Service string `json:"service" validate:"required,max=120"`
	Date    string `json:"date" validate:"required,datetime=2006-01-02"`
	Time    string `json:"time,omitempty" validate:"omitempty,datetime=15:04"`
	Notes   string `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

func (Booking) DocType() string { return "Event" }

func (b Booking) fields() map[string]any {
	start := b.Date
	if b.Time != "" {
		start += " " + b.Time + ":00"
	} else {
		start += " 09:00:00"
	}
	return map[string]any{
		"subject":     "Consultation: " + b.Service,
		"starts_on":   start,
		"event_type":  "Public",
		"description": strings.TrimSpace(b.Name + " <" + b.Email + "> " + b.Phone + "\n" + b.Notes),
	}
}

func (b *Booking) sanitize(p *bluemonday.Policy) {
	clean(p, &b.Name, &b.Email, &b.Phone, &b.Service, &b.Date, &b.Time, &b.Notes)
}

// Newsletter subscribes an address to the mailing list.
type Newsletter struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name,omitempty" validate:"omitempty,max=120"`
}

func (Newsletter) DocType() string { return "Email Group Member" }

func (n Newsletter) fields() map[string]any {
	return map[string]any{
		"email_group": "Website",
		"email":       n.Email,
	}
}

func (n *Newsletter) sanitize(p *bluemonday.Policy) {
	clean(p, &n.Email, &n.Name)
}

func clean(p *bluemonday.Policy, fields ...*string) {
	for _, f := range fields {
		*f = strings.TrimSpace(html.UnescapeString(p.Sanitize(*f)))
	}
}
