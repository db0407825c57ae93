package view

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/phpdave11/gofpdf"
)

var pdfColumns = []struct {
	title string
	width float64
}{
	{"Usuario", 45},
	{"Nombre", 45},
	{"Apellido", 45},
	{"Estado", 30},
}

// ExportPDF renders the rows currently on screen as an A4 report. The
// filter summary is printed under the title.
func ExportPDF(rows []Row, pager Pager, filters map[string]string, now time.Time) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Usuarios", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "USUARIOS")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 6, "Generado : "+now.Format("2006-01-02 15:04"))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Pagina   : %d / %d (total %d)", pager.Page, pager.TotalPages, pager.Total))
	pdf.Ln(6)
	if summary := filterSummary(filters); summary != "" {
		pdf.Cell(0, 6, "Filtros  : "+summary)
		pdf.Ln(6)
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 11)
	for _, c := range pdfColumns {
		pdf.CellFormat(c.width, 8, c.title, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 11)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	for _, r := range rows {
		cells := []string{r.Username, r.Name, r.Lastname, r.Status.Label}
		for i, c := range pdfColumns {
			pdf.CellFormat(c.width, 7, tr(cells[i]), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}
	if len(rows) == 0 {
		pdf.CellFormat(165, 7, "Sin datos", "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}
	filename := fmt.Sprintf("USUARIOS_%s_P%d.pdf", now.Format("20060102_1504"), pager.Page)
	return buf.Bytes(), filename, nil
}

func filterSummary(filters map[string]string) string {
	parts := make([]string, 0, len(filters))
	for _, k := range []string{"q", "status"} {
		if v := filters[k]; v != "" {
			parts = append(parts, k+"="+v)
		}
	}
	return strings.Join(parts, ", ")
}
