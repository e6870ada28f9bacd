package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MarketClose/internal/domain/models"
)

func result() models.RunResult {
	return models.RunResult{
		Report:    models.Report{Date: time.Date(2022, 5, 12, 0, 0, 0, 0, time.UTC), Rows: make([]models.ReportRow, 3)},
		TextPath:  "data/market_close.txt",
		SheetPath: "data/market_close.xlsx",
		Deliveries: []models.Delivery{
			{Channel: "mail", Recipient: "a@example.com"},
			{Channel: "telegram", Recipient: "42", Err: errors.New("blocked")},
		},
	}
}

func TestPrintResult_Pretty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printResult(&buf, result(), "pretty"))
	out := buf.String()
	assert.Contains(t, out, "Report 12/05/2022: 3 rows")
	assert.Contains(t, out, "data/market_close.xlsx")
	assert.Contains(t, out, "FAILED: blocked")
}

func TestPrintResult_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printResult(&buf, result(), "json"))

	var got struct {
		Date       string `json:"date"`
		Rows       int    `json:"rows"`
		Deliveries []struct {
			Channel string `json:"channel"`
			Error   string `json:"error"`
		} `json:"deliveries"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "120522", got.Date)
	assert.Equal(t, 3, got.Rows)
	require.Len(t, got.Deliveries, 2)
	assert.Empty(t, got.Deliveries[0].Error)
	assert.Equal(t, "blocked", got.Deliveries[1].Error)
}

func TestPrintResult_UnknownFormat(t *testing.T) {
	assert.Error(t, printResult(&bytes.Buffer{}, result(), "yaml"))
}

func TestRunCmd_RejectsBadDateBeforeLoadingConfig(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"run", "--date", "310222", "--config", "/nonexistent.yaml"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	err := cmd.Execute()
	assert.ErrorIs(t, err, models.ErrInvalidDate)
}
