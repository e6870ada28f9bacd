package service

import "MarketClose/internal/domain/models"

// ReportRenderer turns an assembled report into an artifact body.
type ReportRenderer interface {
	Render(r models.Report) ([]byte, error)
}
