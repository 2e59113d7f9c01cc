package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/teranos/fundlink/errors"
	"github.com/teranos/fundlink/logger"
	"github.com/teranos/fundlink/relate"
)

// Formats
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
	FormatJSON = "json"
)

// TimestampLayout suffixes every output file name.
const TimestampLayout = "20060102_150405"

// sheetName is the worksheet written to every workbook.
const sheetName = "Sheet1"

// WriteCSV writes s as comma separated values with a header row.
func WriteCSV(w io.Writer, s Sheet) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(s.Header); err != nil {
		return errors.Wrap(err, "failed to write headers")
	}
	for _, row := range s.Rows {
		if err := cw.Write(row); err != nil {
			return errors.Wrap(err, "failed to write row")
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "failed to flush csv")
}

// WriteXLSX writes s as a single-sheet workbook with a bold header row.
func WriteXLSX(w io.Writer, s Sheet) error {
	f := excelize.NewFile()
	defer f.Close()

	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		return errors.Wrap(err, "failed to create sheet writer")
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return errors.Wrap(err, "failed to create header style")
	}
	if err := sw.SetColWidth(1, len(s.Header), 20); err != nil {
		return errors.Wrap(err, "failed to set column width")
	}

	header := make([]interface{}, len(s.Header))
	for i, h := range s.Header {
		header[i] = excelize.Cell{StyleID: bold, Value: h}
	}
	if err := sw.SetRow("A1", header); err != nil {
		return errors.Wrap(err, "failed to write headers")
	}

	cells := make([]interface{}, len(s.Header))
	for i, row := range s.Rows {
		for j := range cells {
			cells[j] = row[j]
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return errors.Wrapf(err, "row %d", i)
		}
		if err := sw.SetRow(cell, cells); err != nil {
			return errors.Wrapf(err, "failed to write row %d", i)
		}
	}
	if err := sw.Flush(); err != nil {
		return errors.Wrap(err, "failed to flush sheet")
	}
	return errors.Wrap(f.Write(w), "failed to write workbook")
}

// WriteJSON writes records as an indented JSON array, evidence included as
// structured objects.
func WriteJSON(w io.Writer, records interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(records), "failed to encode json")
}

// Exporter writes the three relationship tables of a pass in every
// configured format.
type Exporter struct {
	dir     string
	formats []string
	now     func() time.Time
	logger  *zap.SugaredLogger
}

// NewExporter creates an Exporter writing into dir.
func NewExporter(dir string, formats []string, log *zap.SugaredLogger) *Exporter {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Exporter{dir: dir, formats: formats, now: time.Now, logger: log}
}

// Export writes every table in every format and returns the written paths.
// All files of one call share a timestamp suffix.
func (e *Exporter) Export(res *relate.Result) ([]string, error) {
	if err := os.MkdirAll(e.dir, 0755); err != nil {
		return nil, errors.Wrapf(err, "create output directory %s", e.dir)
	}

	stamp := e.now().Format(TimestampLayout)
	sheets := Sheets(res)
	records := map[string]interface{}{
		TableProgram: res.Programs,
		TableProject: res.Projects,
		TableGrant:   res.Grants,
	}

	var written []string
	for _, format := range e.formats {
		for _, s := range sheets {
			path := filepath.Join(e.dir, s.Name+"_"+stamp+"."+format)
			err := writeFile(path, func(w io.Writer) error {
				switch format {
				case FormatCSV:
					return WriteCSV(w, s)
				case FormatXLSX:
					return WriteXLSX(w, s)
				case FormatJSON:
					return WriteJSON(w, records[s.Name])
				default:
					return errors.Wrapf(errors.ErrUnsupported, "output format %q", format)
				}
			})
			if err != nil {
				return written, errors.Wrapf(err, "write %s", path)
			}
			written = append(written, path)
			e.logger.Infow("Output saved",
				logger.FieldFile, path,
				logger.FieldFormat, format,
				logger.FieldCount, len(s.Rows),
			)
		}
	}
	return written, nil
}

// writeFile writes through a temporary file renamed into place, so readers
// never see a partial table.
func writeFile(path string, write func(io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-"+filepath.Base(path))
	if err != nil {
		return errors.Wrap(err, "failed to create output file")
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0644); err != nil {
		tmp.Close()
		return errors.Wrap(err, "failed to set output file mode")
	}
	if err := write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "failed to close output file")
	}
	return errors.Wrap(os.Rename(tmp.Name(), path), "failed to move output file into place")
}
