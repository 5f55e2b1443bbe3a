package pdf

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jung-kurt/gofpdf"

	"greenleaf/internal/models"
)

const timeLayout = "02.01.2006 15:04"

// ReportLabels is the wording of the history report.
type ReportLabels struct {
	Title     string
	Generated string
	Empty     string
	Columns   [5]string
	Kind      func(models.LeadKind) string
}

func DefaultReportLabels() ReportLabels {
	return ReportLabels{
		Title:     "История выполненных заявок",
		Generated: "Сформирован",
		Empty:     "Выполненных заявок нет",
		Columns:   [5]string{"ID", "Тип", "Клиент", "Телефон", "Выполнена"},
		Kind:      func(k models.LeadKind) string { return string(k) },
	}
}

// HistoryReport рисует выполненные заявки таблицей на A4.
type HistoryReport struct {
	FontPath string
	Labels   ReportLabels
	Loc      *time.Location
	fontName string
}

func NewHistoryReport(fontPath string, labels ReportLabels) *HistoryReport {
	if labels.Kind == nil {
		labels.Kind = DefaultReportLabels().Kind
	}
	return &HistoryReport{FontPath: fontPath, Labels: labels, Loc: time.Local, fontName: "DejaVu"}
}

var colWidths = [5]float64{16, 34, 60, 36, 34}

// Render writes the PDF for leads, generated at now.
func (g *HistoryReport) Render(w io.Writer, leads []models.Lead, now time.Time) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(g.Labels.Title, true)
	pdf.SetAuthor("greenleaf", false)
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 15)

	font := g.addUTF8Font(pdf)
	pdf.AddPage()

	pdf.SetFont(font, "B", 16)
	pdf.CellFormat(0, 10, g.Labels.Title, "", 1, "C", false, 0, "")
	pdf.SetFont(font, "", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("%s: %s", g.Labels.Generated, g.format(now)), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	if len(leads) == 0 {
		pdf.SetFont(font, "", 12)
		pdf.CellFormat(0, 8, g.Labels.Empty, "", 1, "L", false, 0, "")
		return g.output(pdf, w)
	}

	pdf.SetFont(font, "B", 10)
	pdf.SetFillColor(230, 240, 230)
	for i, col := range g.Labels.Columns {
		pdf.CellFormat(colWidths[i], 8, col, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont(font, "", 9)
	for _, l := range leads {
		completed := ""
		if l.CompletedAt != nil {
			completed = g.format(*l.CompletedAt)
		}
		row := [5]string{
			fmt.Sprintf("%d", l.ID),
			g.Labels.Kind(l.Kind),
			clientName(l),
			l.Phone,
			completed,
		}
		for i, cell := range row {
			pdf.CellFormat(colWidths[i], 7, cell, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}
	return g.output(pdf, w)
}

// Bytes is Render into memory.
func (g *HistoryReport) Bytes(leads []models.Lead, now time.Time) ([]byte, error) {
	var buf bytes.Buffer
	if err := g.Render(&buf, leads, now); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *HistoryReport) output(pdf *gofpdf.Fpdf, w io.Writer) error {
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render history report: %w", err)
	}
	return nil
}

// addUTF8Font подключает TTF и возвращает семейство; если файла нет,
// остаётся встроенный Arial.
func (g *HistoryReport) addUTF8Font(pdf *gofpdf.Fpdf) string {
	if g.FontPath == "" {
		return "Arial"
	}
	if _, err := os.Stat(g.FontPath); err != nil {
		return "Arial"
	}
	pdf.AddUTF8Font(g.fontName, "", g.FontPath)
	pdf.AddUTF8Font(g.fontName, "B", g.FontPath)
	return g.fontName
}

func (g *HistoryReport) format(t time.Time) string {
	if g.Loc != nil {
		t = t.In(g.Loc)
	}
	return t.Format(timeLayout)
}

func clientName(l models.Lead) string {
	if l.Partner != nil {
		if name := l.Partner.FullName(); name != "" {
			return name
		}
	}
	return "-"
}
