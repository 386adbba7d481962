package http

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"github.com/pkg/errors"

	"github.com/quantonganh/eventex"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	formTemplate  = "subscription_form.html"
	errorTemplate = "error.html"
)

var templates = template.Must(template.New("").Funcs(template.FuncMap{
	"field": newFieldView,
}).ParseFS(templateFS, "templates/*.html"))

// formView is everything the subscription form template can show
type formView struct {
	CSRFToken string
	Form      eventex.SubscriptionRequest
	Errors    eventex.FieldErrors
	Flash     *eventex.Flash
}

type fieldView struct {
	Name   string
	Label  string
	Type   string
	Value  string
	Errors []eventex.FieldError
}

func newFieldView(name, label, typ, value string, errs eventex.FieldErrors) fieldView {
	return fieldView{
		Name:   name,
		Label:  label,
		Type:   typ,
		Value:  value,
		Errors: errs[name],
	}
}

type errorView struct {
	Status  int
	Message string
}

func render(w http.ResponseWriter, status int, name string, data interface{}) error {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return errors.Wrapf(err, "failed to render %s", name)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
