package sites

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/JakeFAU/careers-crawler/internal/crawler"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks that a site config has an absolute http(s) careers URL and
// a job link selector.
func Validate(site crawler.SiteConfig) error {
	var problems []string
	if err := validate.Struct(site); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return fmt.Errorf("validate site config: %w", err)
		}
		for _, fe := range fieldErrs {
			problems = append(problems, describe(fe))
		}
	}
	if site.CareersURL != "" {
		if u, err := url.Parse(site.CareersURL); err == nil && u.Scheme != "" && u.Scheme != "http" && u.Scheme != "https" {
			problems = append(problems, "careersUrl must use http or https")
		}
	}
	if len(problems) > 0 {
		return &ValidationError{Site: site.DisplayName(), Problems: problems}
	}
	return nil
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "url":
		return fe.Field() + " must be an absolute URL"
	default:
		return fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
	}
}
