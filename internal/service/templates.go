package service

import (
	"bytes"
	"fmt"
	"text/template"

	"catering-backend/internal/model"
)

// RenderedMail is the output of the template renderer for one event: the
// subject doubles as the in-app notification title, the text body as its
// message.
type RenderedMail struct {
	Subject string
	HTML    string
	Text    string
}

type eventTemplate struct {
	subject string
	text    string
}

// eventTemplates maps each notification event type to its subject/body
// templates. The HTML variant wraps the text body in the shared layout.
var eventTemplates = map[string]eventTemplate{
	model.NotifyRequestCreated: {
		subject: "Service request {{.RequestNo}} submitted",
		text:    "{{.RequesterName}} submitted service request {{.RequestNo}} ({{.EventName}}) and it is awaiting review.",
	},
	model.NotifyRequestApproved: {
		subject: "Service request {{.RequestNo}} approved",
		text:    "Your service request {{.RequestNo}} ({{.EventName}}) has been approved{{if .ApproverName}} by {{.ApproverName}}{{end}}.",
	},
	model.NotifyRequestRejected: {
		subject: "Service request {{.RequestNo}} rejected",
		text:    "Your service request {{.RequestNo}} ({{.EventName}}) was rejected.{{if .Reason}} Reason: {{.Reason}}{{end}}",
	},
	model.NotifyRequestRevision: {
		subject: "Service request {{.RequestNo}} needs revision",
		text:    "Your service request {{.RequestNo}} ({{.EventName}}) was returned for revision.{{if .Comments}} Comments: {{.Comments}}{{end}}",
	},
	model.NotifyRequestResubmitted: {
		subject: "Service request {{.RequestNo}} resubmitted",
		text:    "Service request {{.RequestNo}} ({{.EventName}}) was revised and resubmitted for review.",
	},
	model.NotifyInvoiceCreated: {
		subject: "Invoice {{.InvoiceNo}} issued for request {{.RequestNo}}",
		text:    "Invoice {{.InvoiceNo}} (net {{.NetAmount}}) has been issued against your service request {{.RequestNo}}.",
	},
	model.NotifyPaymentRecorded: {
		subject: "Payment recorded on invoice {{.InvoiceNo}}",
		text:    "A payment of {{.Amount}} was recorded on invoice {{.InvoiceNo}}. Invoice status is now {{.InvoiceStatus}}.",
	},
	model.NotifyFinanceAction: {
		subject: "Action required: request {{.RequestNo}} approved",
		text:    "Service request {{.RequestNo}} ({{.EventName}}) has been approved. Please create the corresponding invoice.",
	},
}

const htmlLayout = `<html><body style="font-family:sans-serif">
<h3>%s</h3>
<p>%s</p>
<p style="color:#888;font-size:12px">University Catering Services — this message was generated automatically.</p>
</body></html>`

// RenderEventMail produces the {subject, html, text} for an event type using
// the supplied template data.
func RenderEventMail(eventType string, data map[string]interface{}) (RenderedMail, error) {
	et, ok := eventTemplates[eventType]
	if !ok {
		return RenderedMail{}, fmt.Errorf("no template for event type %q", eventType)
	}

	subject, err := renderTemplate(eventType+"-subject", et.subject, data)
	if err != nil {
		return RenderedMail{}, err
	}
	text, err := renderTemplate(eventType+"-text", et.text, data)
	if err != nil {
		return RenderedMail{}, err
	}

	return RenderedMail{
		Subject: subject,
		Text:    text,
		HTML:    fmt.Sprintf(htmlLayout, subject, text),
	}, nil
}

func renderTemplate(name, tmpl string, data map[string]interface{}) (string, error) {
	t, err := template.New(name).Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("parse template %s: %w", name, err)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render template %s: %w", name, err)
	}
	return buf.String(), nil
}
