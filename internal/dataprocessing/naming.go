package dataprocessing

import (
	"fmt"
	"regexp"

	"forecastpipe/internal/series"
)

// MaxDatasetGroupNameLength is the service limit on dataset-group names.
const MaxDatasetGroupNameLength = 63

var disallowedNameChars = regexp.MustCompile(`[^A-Za-z0-9_]`)

// SanitizeName strips every character outside [A-Za-z0-9_].
func SanitizeName(s string) string {
	return disallowedNameChars.ReplaceAllString(s, "")
}

// DatasetGroupName derives {model}_{start:YYYYMMDD}_{end:YYYYMMDD}. The model
// name is sanitized first and the result is validated against the service's
// naming rule, so the same model and range always give the same name.
func DatasetGroupName(modelName string, r series.DateRange) (string, error) {
	if r.IsEmpty() {
		return "", &NoDataError{Source: "dataset group name"}
	}
	name := fmt.Sprintf("%s_%s_%s", SanitizeName(modelName), series.CompactDate(r.Start), series.CompactDate(r.End))
	if err := validate.Var(name, fmt.Sprintf("required,max=%d,dsname", MaxDatasetGroupNameLength)); err != nil {
		return "", fmt.Errorf("invalid dataset group name %q: %w", name, err)
	}
	return name, nil
}
