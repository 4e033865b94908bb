package service

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
)

const readsSheet = "Reads"

var exportHeader = []interface{}{
	"Plate", "Entry date", "Entry time", "Camera", "Track", "Class", "Confidence", "Detection confidence", "Snapshot",
}

// ExportReads renders the reads matching q as an XLSX workbook. Unlike FindReads
// an unset limit exports up to maxExportRows rows.
func (s *RecordService) ExportReads(ctx context.Context, q ReadQuery) ([]byte, error) {
	limit := q.Limit
	filter, err := buildFilter(q)
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > maxExportRows {
		limit = maxExportRows
	}
	filter.Limit = limit

	reads, err := s.repo.FindReads(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find reads: %w", err)
	}

	rows := make([]ReadInfo, 0, len(reads))
	for _, r := range reads {
		rows = append(rows, toReadInfo(r))
	}

	data, err := renderWorkbook(rows)
	if err != nil {
		return nil, fmt.Errorf("render export: %w", err)
	}

	s.log.Info().Int("rows", len(rows)).Msg("exported plate reads")
	return data, nil
}

func renderWorkbook(rows []ReadInfo) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", readsSheet); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(readsSheet, "A1", &exportHeader); err != nil {
		return nil, err
	}

	for i, r := range rows {
		snapshot := ""
		if r.SnapshotURL != nil {
			snapshot = *r.SnapshotURL
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		values := []interface{}{
			r.Plate, r.EntryDate, r.EntryTime, r.CameraID, r.TrackID, r.ClassName,
			r.Confidence, r.DetectionConfidence, snapshot,
		}
		if err := f.SetSheetRow(readsSheet, cell, &values); err != nil {
			return nil, err
		}
	}

	if err := f.SetColWidth(readsSheet, "A", "A", 16); err != nil {
		return nil, err
	}
	if err := f.SetPanes(readsSheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
