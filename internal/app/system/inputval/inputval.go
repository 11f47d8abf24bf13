// Package inputval validates form structs tagged for pantry/validate and turns
// failures into sentences for the form's error banner.
//
//	type videoInput struct {
//	    Title      string `validate:"required,max=200" label:"Title"`
//	    YouTubeURL string `validate:"required,youtube" label:"YouTube URL"`
//	}
package inputval

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/dalemusser/stratareview/internal/app/system/youtube"
	"github.com/dalemusser/stratareview/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/validate"
)

// FieldError is one failed rule.
type FieldError struct {
	Field   string
	Message string
}

// Result collects the failures of one Validate call.
type Result struct {
	Errors []FieldError
}

func (r *Result) HasErrors() bool { return len(r.Errors) > 0 }

// First is the message shown above the form.
func (r *Result) First() string {
	if !r.HasErrors() {
		return ""
	}
	return r.Errors[0].Message
}

var (
	once sync.Once
	v    *validate.Validator
)

func validator() *validate.Validator {
	once.Do(func() {
		v = validate.New(validate.WithStopOnFirstError())
		v.RegisterRuleFunc("youtube", func(value any) bool {
			s, ok := value.(string)
			if !ok {
				return false
			}
			_, ok = youtube.ExtractID(s)
			return ok
		}, "youtube")
		v.RegisterRuleFunc("profilestatus", func(value any) bool {
			s, ok := value.(string)
			return ok && (s == "" || models.IsValidStatus(s))
		}, "profilestatus")
	})
	return v
}

// Validate runs the validate tags of s. Messages name the field by its label
// tag, or by the Go field name when it has none.
func Validate(s any) *Result {
	res := &Result{}
	err := validator().Struct(s)
	if err == nil {
		return res
	}
	errs, ok := err.(validate.Errors)
	if !ok {
		res.Errors = append(res.Errors, FieldError{Message: "The form could not be checked."})
		return res
	}

	labels := labelsOf(s)
	for _, e := range errs {
		label := labels[e.Field]
		if label == "" {
			label = e.Field
		}
		res.Errors = append(res.Errors, FieldError{Field: e.Field, Message: message(label, e.Rule, e.Param)})
	}
	return res
}

// labelsOf maps field names, or their json names, to label tags.
func labelsOf(s any) map[string]string {
	out := map[string]string{}
	t := reflect.TypeOf(s)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return out
	}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		label := f.Tag.Get("label")
		if label == "" {
			continue
		}
		out[f.Name] = label
		if name, _, _ := strings.Cut(f.Tag.Get("json"), ","); name != "" && name != "-" {
			out[name] = label
		}
	}
	return out
}

func message(label, rule, param string) string {
	switch rule {
	case "required":
		return label + " is required."
	case "max":
		return fmt.Sprintf("%s must be at most %s characters.", label, param)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters.", label, param)
	case "email":
		return "A valid email address is required."
	case "youtube":
		return label + " must be a YouTube video link."
	case "profilestatus":
		return label + " must be one of: " + strings.Join(models.AllStatuses(), ", ") + "."
	}
	return label + " is invalid."
}
