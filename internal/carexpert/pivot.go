package carexpert

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Matrix is a name by variant-column table. Columns are 1-based.
type Matrix struct {
	Rows map[string]map[int]string
}

func newMatrix() Matrix {
	return Matrix{Rows: make(map[string]map[int]string)}
}

func (m Matrix) set(name string, column int, value string) {
	row, ok := m.Rows[name]
	if !ok {
		row = make(map[int]string)
		m.Rows[name] = row
	}
	row[column] = value
}

// Names returns the row names in sorted order.
func (m Matrix) Names() []string {
	names := make([]string, 0, len(m.Rows))
	for n := range m.Rows {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (m Matrix) maxColumn() int {
	n := 0
	for _, row := range m.Rows {
		for c := range row {
			n = max(n, c)
		}
	}
	return n
}

// Comparison is a variant comparison page pivoted into two matrices.
type Comparison struct {
	Features       Matrix
	Specifications Matrix
}

// Columns is the widest variant index seen in either matrix.
func (c *Comparison) Columns() int {
	return max(c.Features.maxColumn(), c.Specifications.maxColumn())
}

// ParseComparison pivots a saved comparison page. Rows whose value is yes/no,
// or that have no name beyond their group title, are features; everything
// else is a specification.
func ParseComparison(r io.Reader) (*Comparison, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse comparison html: %w", err)
	}

	c := &Comparison{Features: newMatrix(), Specifications: newMatrix()}
	doc.Find(selCompareSection).Each(func(_ int, section *goquery.Selection) {
		section.Find(selCompareColumn).Each(func(i int, column *goquery.Selection) {
			group := ownText(column.Find(selCompareTitle).First())
			if group == "" {
				return
			}
			column.Find(selCompareContent).Find("p").Each(func(_ int, p *goquery.Selection) {
				var spans []string
				p.Find("span").Each(func(_ int, s *goquery.Selection) {
					if t := ownText(s); t != "" {
						spans = append(spans, t)
					}
				})
				if len(spans) < 2 {
					return
				}
				name := strings.TrimSpace(strings.TrimPrefix(spans[0], group))
				value := spans[1]

				full := group
				if name != "" {
					full = group + " - " + name
				}
				if v := strings.ToLower(value); v == "yes" || v == "no" || name == "" {
					c.Features.set(full, i+1, value)
				} else {
					c.Specifications.set(full, i+1, value)
				}
			})
		})
	})
	return c, nil
}

// WriteComparisonCSV writes Features.csv and Specifications.csv into dir and
// returns the paths written. Empty matrices produce no file.
func WriteComparisonCSV(dir string, c *Comparison) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	columns := c.Columns()

	var written []string
	for _, out := range []struct {
		file, label string
		m           Matrix
	}{
		{"Features.csv", "Feature", c.Features},
		{"Specifications.csv", "Specification", c.Specifications},
	} {
		if len(out.m.Rows) == 0 {
			slog.Info("nothing to write", "file", out.file)
			continue
		}
		path := filepath.Join(dir, out.file)
		if err := writeMatrix(path, out.label, out.m, columns); err != nil {
			return written, err
		}
		slog.Info("pivot written", "path", path, "rows", len(out.m.Rows), "variants", columns)
		written = append(written, path)
	}
	return written, nil
}

func writeMatrix(path, label string, m Matrix, columns int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{label}
	for i := 1; i <= columns; i++ {
		header = append(header, fmt.Sprintf("Subvariant %d", i))
	}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, name := range m.Names() {
		row := []string{name}
		for i := 1; i <= columns; i++ {
			row = append(row, m.Rows[name][i])
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
