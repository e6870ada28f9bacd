package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"MarketClose/internal/domain/models"
	"MarketClose/pkg/util"
)

func runCmd(f *rootFlags) *cobra.Command {
	var date string
	var noSend bool
	var format string

	c := &cobra.Command{
		Use:   "run",
		Short: "Build, store and distribute the report for one date",
		RunE: func(cmd *cobra.Command, _ []string) error {
			day, err := models.ParseReportDate(date)
			if err != nil {
				return err
			}

			app, _, cleanup, err := f.buildApp()
			if err != nil {
				return err
			}
			defer cleanup()

			res, err := app.RunOnce(cmd.Context(), models.ReportRequest{Date: day, Send: !noSend})
			if err != nil {
				return err
			}
			if res.Report.Empty() {
				return fmt.Errorf("no market data for %s", util.DisplayDate(day))
			}
			return printResult(os.Stdout, res, format)
		},
	}

	c.Flags().StringVar(&date, "date", "", "Report date as ddmmyy (required)")
	c.Flags().BoolVar(&noSend, "no-send", false, "Store artifacts without mailing or notifying subscribers")
	c.Flags().StringVar(&format, "format", "pretty", "Output format: pretty|json")

	_ = c.MarkFlagRequired("date")
	return c
}

type deliveryView struct {
	Channel   string `json:"channel"`
	Recipient string `json:"recipient"`
	Error     string `json:"error,omitempty"`
}

func printResult(w io.Writer, res models.RunResult, format string) error {
	views := make([]deliveryView, len(res.Deliveries))
	for i, d := range res.Deliveries {
		views[i] = deliveryView{Channel: d.Channel, Recipient: d.Recipient}
		if d.Err != nil {
			views[i].Error = d.Err.Error()
		}
	}

	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Date       string         `json:"date"`
			Rows       int            `json:"rows"`
			TextPath   string         `json:"text_path"`
			SheetPath  string         `json:"sheet_path"`
			Deliveries []deliveryView `json:"deliveries"`
		}{util.DateKey(res.Report.Date), len(res.Report.Rows), res.TextPath, res.SheetPath, views})
	case "pretty":
		fmt.Fprintf(w, "Report %s: %d rows\n", util.DisplayDate(res.Report.Date), len(res.Report.Rows))
		fmt.Fprintf(w, "  text:  %s\n", res.TextPath)
		fmt.Fprintf(w, "  sheet: %s\n", res.SheetPath)
		for _, v := range views {
			status := "ok"
			if v.Error != "" {
				status = "FAILED: " + v.Error
			}
			fmt.Fprintf(w, "  %-8s %-24s %s\n", v.Channel, v.Recipient, status)
		}
		return nil
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}
