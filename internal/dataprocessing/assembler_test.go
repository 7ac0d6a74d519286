package dataprocessing

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"forecastpipe/internal/series"
	"forecastpipe/pkg/contracts/domain"
)

func template(horizon int) domain.RunConfig {
	return domain.RunConfig{
		ModelName: "covid_model",
		Predictor: domain.PredictorConfig{
			ForecastHorizon:      horizon,
			EvaluationParameters: json.RawMessage(`{"NumberOfBacktestWindows":1}`),
		},
	}
}

func TestAssemble(t *testing.T) {
	snap := parse(t, sampleFeed())
	const horizon = 4

	art, err := NewAssembler(nil).Assemble(snap.EmitAll(), snap, template(horizon))
	require.NoError(t, err)

	items := snap.Items.Len()
	days := len(snap.Range.Days())
	assert.Equal(t, "covid_model_20200301_20200303", art.DatasetGroup)
	assert.Len(t, art.TargetRows, days*items)
	assert.Len(t, art.RelatedRows, days*items+horizon*items)
	assert.Equal(t, horizon*items, art.SyntheticRows)

	synthetic := art.RelatedRows[days*items:]
	lastRelated := map[string]string{"NY": "300", "WA": "0", "CA": "70"}
	for _, row := range synthetic {
		assert.Greater(t, row.Date, "2020-03-03")
		assert.Equal(t, lastRelated[row.Item], row.Value, row.Item)
	}
	assert.Equal(t, "2020-03-04", synthetic[0].Date)
	assert.Equal(t, "2020-03-07", synthetic[len(synthetic)-1].Date)

	for _, row := range art.TargetRows {
		assert.LessOrEqual(t, row.Date, "2020-03-03", "targets never extend past the data")
	}

	assert.Equal(t, "2020-03-01", art.Config.DataStartTime)
	assert.Equal(t, "2020-03-03", art.Config.DataEndTime)
	assert.Equal(t, "2020-03-04", art.Config.ForecastStartTime)
	assert.Equal(t, "2020-03-07", art.Config.ForecastEndTime)
}

func TestAssembleSortsDays(t *testing.T) {
	snap := parse(t, sampleFeed())
	sets := snap.EmitAll()
	reversed := []domain.DailyRowSet{sets[2], sets[0], sets[1]}

	art, err := NewAssembler(nil).Assemble(reversed, snap, template(1))
	require.NoError(t, err)
	assert.Equal(t, "2020-03-01", art.TargetRows[0].Date)
	assert.Equal(t, "2020-03-03", art.TargetRows[len(art.TargetRows)-1].Date)
}

func TestAssembleDoesNotMutateTemplate(t *testing.T) {
	snap := parse(t, sampleFeed())
	tmpl := template(2)
	_, err := NewAssembler(nil).Assemble(snap.EmitAll(), snap, tmpl)
	require.NoError(t, err)
	assert.Empty(t, tmpl.DataStartTime)
}

func TestAssembleRejectsHorizon(t *testing.T) {
	snap := parse(t, sampleFeed())
	for _, h := range []int{0, -3} {
		_, err := NewAssembler(nil).Assemble(snap.EmitAll(), snap, template(h))
		assert.ErrorIs(t, err, ErrInvalidHorizon)
		var hErr *InvalidHorizonError
		require.ErrorAs(t, err, &hErr)
		assert.Equal(t, h, hErr.Horizon)
	}
}

func TestDatasetGroupName(t *testing.T) {
	d := func(s string) series.DateRange {
		day, err := series.ParseDate(s)
		require.NoError(t, err)
		return series.NewDateRange(day, day.AddDate(0, 0, 9))
	}

	tests := []struct {
		model   string
		want    string
		wantErr bool
	}{
		{"covid_model", "covid_model_20200301_20200310", false},
		{"covid-model v2!", "covidmodelv2_20200301_20200310", false},
		{"9lives", "", true},
		{"---", "", true},
		{"model_with_a_name_that_is_far_too_long_for_the_service_limit", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			got, err := DatasetGroupName(tt.model, d("2020-03-01"))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Regexp(t, `^[A-Za-z0-9_]+$`, got)
		})
	}

	_, err := DatasetGroupName("m", series.DateRange{})
	assert.ErrorIs(t, err, ErrNoData)
}

func TestLoadTemplate(t *testing.T) {
	raw := []byte(`{"models":[{
		"modelName":"covid_model",
		"preditor":{"ForecastHorizon":7,"FeaturizationConfig":{"ForecastFrequency":"D"},"PerformHPO":false},
		"target_schema":{"Attributes":[]}
	}]}`)

	cfg, err := LoadTemplate(raw)
	require.NoError(t, err)
	assert.Equal(t, "covid_model", cfg.ModelName)
	assert.Equal(t, 7, cfg.Predictor.ForecastHorizon)
	assert.Contains(t, cfg.Extra, "target_schema")
	assert.Contains(t, cfg.Predictor.Extra, "PerformHPO")

	out, err := json.Marshal(cfg)
	require.NoError(t, err)
	var round map[string]any
	require.NoError(t, json.Unmarshal(out, &round))
	assert.Contains(t, round, "target_schema")
	assert.Contains(t, round, "preditor")
	assert.Equal(t, false, round["preditor"].(map[string]any)["PerformHPO"])

	_, err = LoadTemplate([]byte(`{"models":[]}`))
	assert.Error(t, err)
	_, err = LoadTemplate([]byte(`{"models":[{"preditor":{"ForecastHorizon":1}}]}`))
	assert.Error(t, err)
	_, err = LoadTemplate([]byte(`not json`))
	assert.Error(t, err)
}
