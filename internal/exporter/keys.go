package exporter

import (
	"fmt"
	"path"
	"strings"
)

// Marker objects and fixed names shared by the transform and evaluate runs.
const (
	SuccessMarker      = "_SUCCESS"
	ArchivedMarker     = "_ARCHIVED"
	ExportFolderSuffix = "_Forecast"

	ConfigFile  = "config.json"
	TargetFile  = "target.csv"
	RelatedFile = "related.csv"
)

// SeriesKind selects the target or related series.
type SeriesKind string

const (
	KindTarget  SeriesKind = "target"
	KindRelated SeriesKind = "related"
)

// Layout names the top-level prefixes of the object store.
type Layout struct {
	DailyPrefix         string `yaml:"daily_prefix" envconfig:"DAILY_PREFIX" default:"covid-19-daily"`
	DatasetGroupsPrefix string `yaml:"dataset_groups_prefix" envconfig:"DATASET_GROUPS_PREFIX" default:"DatasetGroups"`
	ExportsPrefix       string `yaml:"exports_prefix" envconfig:"EXPORTS_PREFIX" default:"ForecastExports"`
	RawArchivePrefix    string `yaml:"raw_archive_prefix" envconfig:"RAW_ARCHIVE_PREFIX" default:"covid-19-raw"`
	TemplateKey         string `yaml:"template_key" envconfig:"TEMPLATE_KEY" default:"forecast-model-config.json"`
}

// DefaultLayout returns the layout used by the deployed pipeline.
func DefaultLayout() Layout {
	return Layout{
		DailyPrefix:         "covid-19-daily",
		DatasetGroupsPrefix: "DatasetGroups",
		ExportsPrefix:       "ForecastExports",
		RawArchivePrefix:    "covid-19-raw",
		TemplateKey:         "forecast-model-config.json",
	}
}

// DailyKey is the per-day file for kind on date (YYYY-MM-DD).
func (l Layout) DailyKey(kind SeriesKind, date string) string {
	return fmt.Sprintf("%s/%s_%s.csv", l.DailyPrefix, kind, date)
}

// DatasetGroupKey is an artifact inside a dataset group folder.
func (l Layout) DatasetGroupKey(group, name string) string {
	return path.Join(l.DatasetGroupsPrefix, group, name)
}

// RawArchiveKey is where the raw feed of a run on date is kept.
func (l Layout) RawArchiveKey(date string) string {
	return fmt.Sprintf("%s/states_daily_raw%s.csv", l.RawArchivePrefix, date)
}

// ExportFolder is the folder the forecasting service exports group into.
func (l Layout) ExportFolder(group string) string {
	return path.Join(l.ExportsPrefix, group+ExportFolderSuffix)
}

// ParseExportKey extracts the dataset group from a key under the exports
// prefix, e.g. ForecastExports/g_Forecast/part/_SUCCESS yields g.
func (l Layout) ParseExportKey(key string) (group, folder string, ok bool) {
	rest, found := strings.CutPrefix(key, l.ExportsPrefix+"/")
	if !found {
		return "", "", false
	}
	seg, _, inFolder := strings.Cut(rest, "/")
	if !inFolder || seg == "" {
		return "", "", false
	}
	group = strings.TrimSuffix(seg, ExportFolderSuffix)
	if group == "" {
		return "", "", false
	}
	return group, path.Join(l.ExportsPrefix, seg), true
}
