package domain

import (
	"encoding/json"
	"maps"
)

// RunConfig is the per-run model configuration persisted next to the
// dataset-group artifacts. It is written once by the transform run and only
// read by later stages. Keys not modelled here are carried through untouched.
type RunConfig struct {
	ModelName         string          `json:"modelName" validate:"required"`
	Predictor         PredictorConfig `json:"preditor"`
	DataStartTime     string          `json:"data_starttime,omitempty"`
	DataEndTime       string          `json:"data_endtime,omitempty"`
	ForecastStartTime string          `json:"forecast_starttime,omitempty"`
	ForecastEndTime   string          `json:"forecast_endtime,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

// PredictorConfig holds the predictor hyperparameters. Everything except the
// horizon is an opaque blob handed to the forecasting service.
type PredictorConfig struct {
	ForecastHorizon      int             `json:"ForecastHorizon"`
	EvaluationParameters json.RawMessage `json:"EvaluationParameters,omitempty"`
	InputDataConfig      json.RawMessage `json:"InputDataConfig,omitempty"`
	FeaturizationConfig  json.RawMessage `json:"FeaturizationConfig,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

var runConfigKeys = []string{
	"modelName", "preditor",
	"data_starttime", "data_endtime", "forecast_starttime", "forecast_endtime",
}

var predictorKeys = []string{
	"ForecastHorizon", "EvaluationParameters", "InputDataConfig", "FeaturizationConfig",
}

// ModelTemplate is the shape of the global model configuration object.
type ModelTemplate struct {
	Models []RunConfig `json:"models" validate:"required,min=1,dive"`
}

// MarshalJSON writes the modelled fields plus any passthrough keys.
func (c RunConfig) MarshalJSON() ([]byte, error) {
	type plain RunConfig
	return withExtra(plain(c), c.Extra)
}

// UnmarshalJSON reads the modelled fields and keeps the rest in Extra.
func (c *RunConfig) UnmarshalJSON(data []byte) error {
	type plain RunConfig
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	extra, err := extraFields(data, runConfigKeys)
	if err != nil {
		return err
	}
	*c = RunConfig(p)
	c.Extra = extra
	return nil
}

// MarshalJSON writes the modelled fields plus any passthrough keys.
func (p PredictorConfig) MarshalJSON() ([]byte, error) {
	type plain PredictorConfig
	return withExtra(plain(p), p.Extra)
}

// UnmarshalJSON reads the modelled fields and keeps the rest in Extra.
func (p *PredictorConfig) UnmarshalJSON(data []byte) error {
	type plain PredictorConfig
	var v plain
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	extra, err := extraFields(data, predictorKeys)
	if err != nil {
		return err
	}
	*p = PredictorConfig(v)
	p.Extra = extra
	return nil
}

// Clone returns a copy that shares no maps with the receiver.
func (c RunConfig) Clone() RunConfig {
	out := c
	out.Extra = maps.Clone(c.Extra)
	out.Predictor.Extra = maps.Clone(c.Predictor.Extra)
	return out
}

func withExtra(v any, extra map[string]json.RawMessage) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil || len(extra) == 0 {
		return data, err
	}
	merged := make(map[string]json.RawMessage, len(extra)+8)
	if err := json.Unmarshal(data, &merged); err != nil {
		return nil, err
	}
	for k, raw := range extra {
		if _, ok := merged[k]; !ok {
			merged[k] = raw
		}
	}
	return json.Marshal(merged)
}

func extraFields(data []byte, known []string) (map[string]json.RawMessage, error) {
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, err
	}
	for _, k := range known {
		delete(all, k)
	}
	if len(all) == 0 {
		return nil, nil
	}
	return all, nil
}
