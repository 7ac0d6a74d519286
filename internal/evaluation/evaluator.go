package evaluation

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"time"

	"forecastpipe/internal/forecast"
	"forecastpipe/internal/series"
	"forecastpipe/pkg/contracts/domain"
)

// Evaluator computes day-one forecast accuracy.
type Evaluator struct {
	logger *slog.Logger
}

// NewEvaluator creates an evaluator.
func NewEvaluator(logger *slog.Logger) *Evaluator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Evaluator{logger: logger.With(slog.String("component", "evaluator"))}
}

// Evaluate returns one observation per label with the mean absolute
// percentage error of set against realized on evalDate.
//
// Every realized item adds to the error sum and must have a forecast row on
// evalDate, otherwise the result is a MissingForecastError. The sum is
// divided by the size of the forecast's item universe. An item whose
// realized value is zero adds zero.
func (e *Evaluator) Evaluate(ctx context.Context, set *forecast.QuantileSet, realized Realized,
	evalDate time.Time, modelName string, labels []string) ([]domain.MetricObservation, error) {

	items := set.Items.Items()
	if len(items) == 0 {
		return nil, &forecast.EmptyExportError{}
	}
	day := series.Truncate(evalDate)
	date := series.FormatDate(day)

	observations := make([]domain.MetricObservation, 0, len(labels))
	for _, label := range labels {
		total := 0.0
		for _, item := range realized.Items() {
			raw, _ := realized.Get(item)
			forecastValue, found, err := set.Value(date, item, label)
			if !found {
				return nil, &MissingForecastError{Date: date, Item: item}
			}
			if err != nil {
				return nil, fmt.Errorf("invalid forecast for %s on %s at %s: %w", item, date, label, err)
			}
			realValue, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid realized value for %s on %s: %w", item, date, err)
			}
			if realValue == 0 {
				continue
			}
			total += math.Abs((forecastValue-realValue)/realValue) * 100
		}

		mape := total / float64(len(items))
		e.logger.InfoContext(ctx, "Forecast accuracy computed",
			slog.String("model_name", modelName),
			slog.String("date", date),
			slog.String("quantile", label),
			slog.Float64("mape", mape))

		observations = append(observations, domain.MetricObservation{
			Timestamp:                day,
			ModelName:                modelName,
			QuantileLabel:            label,
			MeanAbsolutePercentError: mape,
		})
	}
	return observations, nil
}
