package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"sync"
)

// CSVWriter appends struct records to a CSV file. The header comes from the
// `csv` struct tags of the first record and is written only to new files.
type CSVWriter struct {
	path string

	mu     sync.Mutex
	file   *os.File
	w      *csv.Writer
	fields []int
	rows   int64
}

func NewCSVWriter(path string) *CSVWriter {
	return &CSVWriter{path: path}
}

// Write appends one record. Every record written must have the same type.
func (c *CSVWriter) Write(record any) error {
	v := reflect.Indirect(reflect.ValueOf(record))
	if v.Kind() != reflect.Struct {
		return fmt.Errorf("csv record must be a struct, got %T", record)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.w == nil {
		if err := c.open(v.Type()); err != nil {
			return err
		}
	}

	row := make([]string, len(c.fields))
	for i, idx := range c.fields {
		row[i] = formatField(v.Field(idx))
	}
	if err := c.w.Write(row); err != nil {
		return fmt.Errorf("write %s: %w", c.path, err)
	}
	c.w.Flush()
	if err := c.w.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", c.path, err)
	}
	c.rows++
	return nil
}

// Rows returns the number of records appended by this writer.
func (c *CSVWriter) Rows() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rows
}

func (c *CSVWriter) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.file == nil {
		return nil
	}
	c.w.Flush()
	err := c.file.Close()
	c.file, c.w = nil, nil
	return err
}

// open creates or appends to the file. Caller holds mu.
func (c *CSVWriter) open(t reflect.Type) error {
	header, fields := csvColumns(t)
	if len(fields) == 0 {
		return fmt.Errorf("%s has no csv fields", t)
	}

	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	info, statErr := os.Stat(c.path)
	f, err := os.OpenFile(c.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", c.path, err)
	}

	w := csv.NewWriter(f)
	if statErr != nil || info.Size() == 0 {
		if err := w.Write(header); err != nil {
			f.Close()
			return fmt.Errorf("write header %s: %w", c.path, err)
		}
	}
	c.file, c.w, c.fields = f, w, fields
	return nil
}

func csvColumns(t reflect.Type) (header []string, fields []int) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		name := f.Tag.Get("csv")
		if name == "" || name == "-" || !f.IsExported() {
			continue
		}
		header = append(header, name)
		fields = append(fields, i)
	}
	return header, fields
}

func formatField(v reflect.Value) string {
	switch v.Kind() {
	case reflect.String:
		return v.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10)
	case reflect.Bool:
		return strconv.FormatBool(v.Bool())
	default:
		return fmt.Sprint(v.Interface())
	}
}
