package testutil

import (
	"strconv"
	"strings"
)

// FeedWidth is the column count of a states_daily style feed row
const FeedWidth = 18

// FeedRow builds one feed row with the date, item, target and related values
// at the default column offsets 0, 1, 2 and 17.
func FeedRow(date, item, target, related string) string {
	cols := make([]string, FeedWidth)
	cols[0], cols[1], cols[2], cols[17] = date, item, target, related
	return strings.Join(cols, ",")
}

// Feed builds a complete CSV feed, header row included
func Feed(rows ...string) []byte {
	header := FeedRow("date", "state", "positive", "totalTestResults")
	return []byte(strings.Join(append([]string{header}, rows...), "\n") + "\n")
}

// ModelTemplate returns a one-model template document
func ModelTemplate(modelName string, horizon int) string {
	return `{"models":[{"modelName":"` + modelName + `","preditor":{"ForecastHorizon":` + strconv.Itoa(horizon) + `}}]}`
}

