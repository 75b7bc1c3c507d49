package render

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"html/template"

	"shipdesk-hq/gateway/pkg/shipping"
)

//go:embed template.html
var documentTemplate string

var tmpl = template.Must(template.New("shipping-instruction").Parse(documentTemplate))

// ErrNoContainers is returned for submissions without a containers array.
var ErrNoContainers = errors.New("submission has no containers")

// RenderError reports a failure while producing the document.
type RenderError struct {
	// Stage is "template", "launch", "load" or "print".
	Stage string
	Err   error
}

// Error implements the error interface.
func (e *RenderError) Error() string {
	return fmt.Sprintf("render %s: %v", e.Stage, e.Err)
}

// Unwrap returns the underlying error.
func (e *RenderError) Unwrap() error {
	return e.Err
}

type partyView struct {
	Title string
	shipping.Party
}

type rowView struct {
	Index int
	shipping.Container
}

type documentView struct {
	UserName         string
	UserEmail        string
	CarrierReference string
	Parties          []partyView
	ShipmentValue    string
	Notes            string
	Rows             []rowView
}

// HTML fills the document template. Missing fields render as empty cells
// and every value is escaped for its HTML context.
func HTML(sub *shipping.Submission) (string, error) {
	if sub == nil || sub.Containers == nil {
		return "", &RenderError{Stage: "template", Err: ErrNoContainers}
	}

	view := documentView{
		CarrierReference: sub.CarrierReference.String(),
		ShipmentValue:    sub.ShipmentValue.String(),
		Notes:            sub.Notes.String(),
		Parties: []partyView{
			{Title: "Billing Party", Party: partyOrZero(sub.BillingParty)},
			{Title: "Shipper", Party: partyOrZero(sub.Shipper)},
			{Title: "Consignee", Party: partyOrZero(sub.Consignee)},
		},
		Rows: make([]rowView, len(sub.Containers)),
	}
	if sub.User != nil {
		view.UserName = sub.User.Name.String()
		view.UserEmail = sub.User.Email.String()
	}
	for i, c := range sub.Containers {
		view.Rows[i] = rowView{Index: i + 1, Container: c}
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, view); err != nil {
		return "", &RenderError{Stage: "template", Err: err}
	}
	return buf.String(), nil
}

func partyOrZero(p *shipping.Party) shipping.Party {
	if p == nil {
		return shipping.Party{}
	}
	return *p
}
