package notify

import (
	"bytes"
	"fmt"
	"html/template"
)

const (
	TemplateDeadlineExtended = "deadline_extended"
	TemplatePaymentReceived  = "payment_received"
)

var templates = template.Must(template.New("").Parse(`
{{define "deadline_extended"}}<p>Hi there,</p>
<p>The deadline for <strong>{{.ListingName}}</strong> has changed.</p>
<p><a href="{{.Link}}">Check the updated timeline</a> and make sure your submission lands in time.</p>{{end}}
{{define "payment_received"}}<p>Hi {{.Name}},</p>
<p>The sponsor of <strong>{{.ListingName}}</strong> has paid you {{.Amount}} {{.TokenName}}{{if .WalletAddress}} to {{.WalletAddress}}{{end}}.</p>
<p>See your earnings on your profile{{if .Username}} @{{.Username}}{{end}}.</p>{{end}}
`))

// DeadlineExtendedData feeds the deadline change email.
type DeadlineExtendedData struct {
	ListingName string
	Link        string
}

// PaymentReceivedData feeds the payment confirmation email.
type PaymentReceivedData struct {
	Name          string
	ListingName   string
	Amount        string
	TokenName     string
	WalletAddress string
	Username      string
}

// DeadlineExtended renders the message sent to a listing subscriber.
func DeadlineExtended(to string, data DeadlineExtendedData) (Message, error) {
	html, err := render(TemplateDeadlineExtended, data)
	if err != nil {
		return Message{}, err
	}
	return Message{
		To:       to,
		Subject:  "Listing Deadline Extended!",
		HTML:     html,
		Template: TemplateDeadlineExtended,
	}, nil
}

// PaymentReceived renders the confirmation sent to a paid applicant.
func PaymentReceived(to string, data PaymentReceivedData) (Message, error) {
	html, err := render(TemplatePaymentReceived, data)
	if err != nil {
		return Message{}, err
	}
	return Message{
		To:       to,
		Subject:  fmt.Sprintf("Payment Confirmation for %s", data.ListingName),
		HTML:     html,
		Template: TemplatePaymentReceived,
	}, nil
}

func render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}
