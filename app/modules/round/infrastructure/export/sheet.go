// Package roundexport renders round results as spreadsheets.
package roundexport

import (
	"bytes"
	"fmt"
	"time"

	rounddomain "github.com/Black-And-White-Club/debate-rounds/app/modules/round/domain"
	"github.com/xuri/excelize/v2"
)

// ContentType is the media type of ResultSheet output.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const sheetName = "Result"

// scoreHeaderRow is the 1-based row holding the score table header.
const scoreHeaderRow = 8

// Filename names the download for a round.
func Filename(round rounddomain.Round) string {
	return fmt.Sprintf("round-%s-result.xlsx", round.Code)
}

// ResultSheet writes a one-sheet workbook: a summary block followed by one
// row per speaker score.
func ResultSheet(round rounddomain.Round, result rounddomain.Result) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(f.GetActiveSheetIndex()), sheetName); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	submitter := ""
	if result.SubmittedBy != nil {
		submitter = result.SubmittedBy.Username
	}
	summary := [][]any{
		{"Round", round.Code.String()},
		{"Format", round.Format.Display()},
		{"Winning side", string(result.WinningSide)},
		{"Summary", result.Summary},
		{"Submitted by", submitter},
		{"Submitted at", result.SubmittedAt.UTC().Format(time.RFC3339)},
	}
	for i, row := range summary {
		if err := setRow(f, i+1, row); err != nil {
			return nil, err
		}
	}

	if err := setRow(f, scoreHeaderRow, []any{"Speaker", "Role", "Score", "Comments"}); err != nil {
		return nil, err
	}
	for i, s := range result.Scores {
		row := []any{s.Username, string(s.Role), s.Score.InexactFloat64(), s.Comments}
		if err := setRow(f, scoreHeaderRow+1+i, row); err != nil {
			return nil, err
		}
	}

	if err := f.SetColWidth(sheetName, "A", "A", 24); err != nil {
		return nil, fmt.Errorf("set column width: %w", err)
	}
	if err := f.SetColWidth(sheetName, "D", "D", 48); err != nil {
		return nil, fmt.Errorf("set column width: %w", err)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func setRow(f *excelize.File, row int, cells []any) error {
	axis, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheetName, axis, &cells); err != nil {
		return fmt.Errorf("write row %d: %w", row, err)
	}
	return nil
}
