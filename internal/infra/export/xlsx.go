package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"zoo-assistant/internal/domain/model"
)

const (
	SheetObservations = "Observations"
	SheetMeasurements = "Measurements"
	SheetFeedings     = "Feedings"

	timeLayout = "2006-01-02 15:04:05"
)

// ContentType is the MIME type of the workbook produced by DailyXLSX.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type sheet struct {
	name    string
	headers []string
	widths  []float64
	rows    [][]interface{}
}

// DailyXLSX renders the report as a workbook with one sheet per fact kind.
// Missing optional values are written as empty cells.
func DailyXLSX(rep *model.DailyReport) (*bytes.Buffer, error) {
	sheets := []sheet{
		observationSheet(rep.Observations),
		measurementSheet(rep.Measurements),
		feedingSheet(rep.Feedings),
	}

	f := excelize.NewFile()
	defer f.Close()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}

	for i, s := range sheets {
		if i == 0 {
			// reuse the default sheet so the workbook has no empty first tab
			if err := f.SetSheetName(f.GetSheetList()[0], s.name); err != nil {
				return nil, err
			}
		} else if _, err := f.NewSheet(s.name); err != nil {
			return nil, err
		}
		if err := writeSheet(f, s, bold); err != nil {
			return nil, fmt.Errorf("sheet %s: %w", s.name, err)
		}
	}
	f.SetActiveSheet(0)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf, nil
}

// FileName is the attachment name for the report of day.
func FileName(day time.Time) string {
	return "zoo_report_" + day.UTC().Format("2006-01-02") + ".xlsx"
}

func writeSheet(f *excelize.File, s sheet, headerStyle int) error {
	header := make([]interface{}, len(s.headers))
	for i, h := range s.headers {
		header[i] = h
	}
	if err := f.SetSheetRow(s.name, "A1", &header); err != nil {
		return err
	}
	last, _ := excelize.CoordinatesToCellName(len(s.headers), 1)
	if err := f.SetCellStyle(s.name, "A1", last, headerStyle); err != nil {
		return err
	}
	for i, row := range s.rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(s.name, cell, &row); err != nil {
			return err
		}
	}
	for i, w := range s.widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(s.name, col, col, w); err != nil {
			return err
		}
	}
	return f.SetPanes(s.name, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
}

func observationSheet(obs []*model.Observation) sheet {
	s := sheet{
		name:    SheetObservations,
		headers: []string{"ID", "Animal", "Species", "Behavior", "Health", "Temperature", "Humidity", "Time", "Audio file", "Transcription"},
		widths:  []float64{8, 18, 18, 18, 18, 12, 10, 20, 28, 80},
	}
	for _, o := range obs {
		s.rows = append(s.rows, []interface{}{
			o.ID, o.AnimalName, o.AnimalSpecies, str(o.Behavior), str(o.HealthStatus),
			num(o.Temperature), num(o.Humidity), o.Timestamp.UTC().Format(timeLayout),
			o.AudioFile, o.Transcription,
		})
	}
	return s
}

func measurementSheet(ms []*model.Measurement) sheet {
	s := sheet{
		name:    SheetMeasurements,
		headers: []string{"ID", "Animal", "Species", "Weight, kg", "Length, m", "Height, m", "Temperature, °C", "Time"},
		widths:  []float64{8, 18, 18, 12, 12, 12, 16, 20},
	}
	for _, m := range ms {
		s.rows = append(s.rows, []interface{}{
			m.ID, m.AnimalName, m.AnimalSpecies, num(m.Weight), num(m.Length), num(m.Height),
			num(m.Temperature), m.Timestamp.UTC().Format(timeLayout),
		})
	}
	return s
}

func feedingSheet(fs []*model.Feeding) sheet {
	s := sheet{
		name:    SheetFeedings,
		headers: []string{"ID", "Animal", "Species", "Food", "Quantity, kg", "Time"},
		widths:  []float64{8, 18, 18, 20, 14, 20},
	}
	for _, f := range fs {
		s.rows = append(s.rows, []interface{}{
			f.ID, f.AnimalName, f.AnimalSpecies, f.FoodType, num(f.Quantity),
			f.Timestamp.UTC().Format(timeLayout),
		})
	}
	return s
}

func str(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}

func num(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
