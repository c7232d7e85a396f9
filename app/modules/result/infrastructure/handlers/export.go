package resulthandlers

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	resultservice "github.com/Black-And-White-Club/typer-master/app/modules/result/application"
	resultdb "github.com/Black-And-White-Club/typer-master/app/modules/result/infrastructure/repositories"
	"github.com/xuri/excelize/v2"
)

const (
	exportSheet       = "Results"
	xlsxContentType   = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	exportFilePattern = "typermaster-results-%s.xlsx"
)

var exportHeader = []any{"ID", "Username", "WPM", "Accuracy", "Real Accuracy", "Text", "Created At"}

// HandleExportResults streams the newest results as an xlsx workbook.
func (h *ResultHandlers) HandleExportResults(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ResultHandlers.HandleExportResults")
	defer span.End()
	r = r.WithContext(ctx)

	verr := &resultservice.ValidationError{}
	limit := intQuery(r, "limit", resultservice.DefaultExportLimit, verr)
	if len(verr.Problems) > 0 {
		h.writeError(w, r, verr)
		return
	}

	rows, err := h.service.ExportRecent(ctx, limit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	data, err := buildWorkbook(rows)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to build results workbook", slog.String("error", err.Error()))
		h.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="`+exportFilePattern+`"`, time.Now().UTC().Format("20060102T150405Z")))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.logger.WarnContext(ctx, "Failed to write results workbook", slog.String("error", err.Error()))
	}
}

func buildWorkbook(rows []resultdb.GameResult) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(f.GetActiveSheetIndex()), exportSheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}
	if err := f.SetSheetRow(exportSheet, "A1", &exportHeader); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	for idx, row := range rows {
		axis, err := excelize.CoordinatesToCellName(1, idx+2)
		if err != nil {
			return nil, err
		}
		createdAt := ""
		if !row.CreatedAt.IsZero() {
			createdAt = row.CreatedAt.UTC().Format(time.RFC3339)
		}
		cells := []any{row.ID, row.Username, row.WPM, row.Accuracy, row.RealAccuracy, row.Text, createdAt}
		if err := f.SetSheetRow(exportSheet, axis, &cells); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", idx+2, err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode workbook: %w", err)
	}
	return buf.Bytes(), nil
}
