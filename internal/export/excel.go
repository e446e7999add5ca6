// Package export flattens review bundles into a tabular layout and writes
// the expert-facing spreadsheet.
package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/nlpeval/w5h-judge/internal/domain"
	"github.com/nlpeval/w5h-judge/internal/review"
)

const sheetName = "Review Tasks"

// headers is the fixed 13-column layout expected by the reviewers.
var headers = []string{
	"review_id",
	"doc_id",
	"model_evaluated",
	"confidence_level",
	"confidence_level_justification",
	"criterion",
	"ai_score",
	"ai_justification",
	"expert_score_validity (1-5)",
	"expert_explanation_quality",
	"expert_optional_notes",
	"full_source_text",
	"extraction_to_evaluate",
}

// explanationQualityOptions constrains the expert_explanation_quality column.
// The reviewer pool works in Spanish.
var explanationQualityOptions = []string{
	"Precisa y Útil",
	"Plausible pero Imprecisa",
	"Incorrecta o No Útil",
}

// columnWidths maps column ranges to widths tuned for the review workflow:
// wide free-text columns, a narrow score column.
var columnWidths = []struct {
	from, to string
	width    float64
}{
	{"A", "A", 40},
	{"B", "B", 30},
	{"C", "D", 25},
	{"E", "E", 10},
	{"F", "F", 50},
	{"G", "G", 25},
	{"H", "H", 28},
	{"I", "I", 50},
	{"J", "K", 50},
	{"L", "L", 15},
	{"M", "M", 50},
}

// Row is one spreadsheet row: a single criterion's judgment plus the task
// context it belongs to.
type Row struct {
	ReviewID                     string
	DocID                        string
	ModelEvaluated               string
	ConfidenceLevel              int
	ConfidenceLevelJustification string
	Criterion                    string
	AIScore                      int
	AIJustification              string
	FullSourceText               string
	ExtractionToEvaluate         string
}

// Flatten expands each review task into one row per criterion, in the fixed
// criterion order: always six rows per task, never fewer. The judgment map
// covers the full criterion set (BuildTask fails loudly otherwise), so a row
// is emitted unconditionally per criterion. The expert columns start empty
// in the spreadsheet; the reviewer fills them in.
func Flatten(items []review.Task) []Row {
	rows := make([]Row, 0, len(items)*len(domain.Criteria()))
	for _, item := range items {
		for _, criterion := range domain.Criteria() {
			judgment := item.Judgments[criterion]
			rows = append(rows, Row{
				ReviewID:                     fmt.Sprintf("%s_%s", item.ReviewID, criterion),
				DocID:                        item.DocumentInfo.DocID,
				ModelEvaluated:               item.ExtractionInfo.ModelEvaluated,
				ConfidenceLevel:              item.ConfidenceLevel.Score,
				ConfidenceLevelJustification: item.ConfidenceLevel.Justification,
				Criterion:                    criterion,
				AIScore:                      judgment.AIScore,
				AIJustification:              judgment.AIJustification,
				FullSourceText:               item.DocumentInfo.FullSourceText,
				ExtractionToEvaluate:         item.ExtractionInfo.ExtractionToEvaluate,
			})
		}
	}
	return rows
}

// WriteExcel writes the flattened rows to an xlsx workbook: bold filled
// header, fixed column widths, a dropdown on the explanation-quality column,
// and a frozen header row.
func WriteExcel(path string, rows []Row) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	for _, cw := range columnWidths {
		if err := f.SetColWidth(sheetName, cw.from, cw.to, cw.width); err != nil {
			return fmt.Errorf("set column width %s:%s: %w", cw.from, cw.to, err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"D7E4BC"}, Pattern: 1},
		Alignment: &excelize.Alignment{Vertical: "top", WrapText: true},
		Border: []excelize.Border{
			{Type: "left", Style: 1, Color: "000000"},
			{Type: "right", Style: 1, Color: "000000"},
			{Type: "top", Style: 1, Color: "000000"},
			{Type: "bottom", Style: 1, Color: "000000"},
		},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	headerCells := make([]any, len(headers))
	for i, h := range headers {
		headerCells[i] = h
	}
	if err := f.SetSheetRow(sheetName, "A1", &headerCells); err != nil {
		return fmt.Errorf("write header row: %w", err)
	}
	if err := f.SetCellStyle(sheetName, "A1", "M1", headerStyle); err != nil {
		return fmt.Errorf("style header row: %w", err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("row %d cell name: %w", i, err)
		}
		values := []any{
			row.ReviewID,
			row.DocID,
			row.ModelEvaluated,
			row.ConfidenceLevel,
			row.ConfidenceLevelJustification,
			row.Criterion,
			row.AIScore,
			row.AIJustification,
			"", // expert_score_validity (1-5)
			"", // expert_explanation_quality
			"", // expert_optional_notes
			row.FullSourceText,
			row.ExtractionToEvaluate,
		}
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}

	if len(rows) > 0 {
		dv := excelize.NewDataValidation(true)
		dv.Sqref = fmt.Sprintf("J2:J%d", len(rows)+1)
		if err := dv.SetDropList(explanationQualityOptions); err != nil {
			return fmt.Errorf("build dropdown: %w", err)
		}
		if err := f.AddDataValidation(sheetName, dv); err != nil {
			return fmt.Errorf("add dropdown: %w", err)
		}
	}

	if err := f.SetPanes(sheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freeze header: %w", err)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}
