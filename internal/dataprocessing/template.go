package dataprocessing

import (
	"encoding/json"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"forecastpipe/pkg/contracts/domain"
)

// datasetGroupNamePattern is the forecasting service's naming rule.
var datasetGroupNamePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterValidation("dsname", func(fl validator.FieldLevel) bool {
		return datasetGroupNamePattern.MatchString(fl.Field().String())
	})
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// LoadTemplate decodes the global model configuration and returns its first
// model entry, which drives the run.
func LoadTemplate(data []byte) (domain.RunConfig, error) {
	var tmpl domain.ModelTemplate
	if err := json.Unmarshal(data, &tmpl); err != nil {
		return domain.RunConfig{}, fmt.Errorf("failed to decode model template: %w", err)
	}
	if err := validate.Struct(tmpl); err != nil {
		return domain.RunConfig{}, fmt.Errorf("model template validation failed: %w", err)
	}
	return tmpl.Models[0], nil
}
