package usecase

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/xavierca1/ligue-leads/internal/entity"
)

var exportHeader = []string{"Name", "Email", "Phone", "Subject", "Source", "Platform", "Campaign", "Status", "Date"}

type ExportLeadsUseCase struct {
	Repo LeadRepositoryInterface
}

func NewExportLeadsUseCase(repo LeadRepositoryInterface) *ExportLeadsUseCase {
	return &ExportLeadsUseCase{Repo: repo}
}

// Execute writes every lead matching filter as CSV and returns the row count
// (header excluded). Quoting follows RFC 4180 via encoding/csv.
func (uc *ExportLeadsUseCase) Execute(ctx context.Context, filter entity.LeadFilter, w io.Writer) (int, error) {
	leads, err := uc.Repo.ListAll(ctx, filter)
	if err != nil {
		return 0, newDatabaseError("export leads", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return 0, fmt.Errorf("write csv header: %w", err)
	}
	for _, lead := range leads {
		if err := cw.Write(exportRow(lead)); err != nil {
			return 0, fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return 0, fmt.Errorf("flush csv: %w", err)
	}
	return len(leads), nil
}

func exportRow(l *entity.Lead) []string {
	return []string{
		l.Name,
		l.Email,
		l.Phone,
		l.Subject,
		string(l.Source),
		l.Platform,
		l.Campaign,
		string(l.Status),
		l.CreatedAt.UTC().Format(time.RFC3339),
	}
}
