// Package directory loads the read-only employee reference table. The
// directory is loaded once and treated as immutable for the process lifetime;
// a restart picks up a refreshed table.
package directory

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"relieftrack/pkg/domain"
)

// Directory maps employee identifiers to their contact snapshot.
type Directory struct {
	byID map[string]domain.Employee
}

// Load parses an employee table with columns
// Employee ID, Name, Department, Phone Number, Email.
func Load(r io.Reader) (*Directory, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err == io.EOF {
		return &Directory{byID: map[string]domain.Employee{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read directory header: %w", err)
	}
	idx := map[string]int{}
	for i, col := range header {
		idx[strings.TrimSpace(col)] = i
	}
	for _, required := range []string{"Employee ID", "Name", "Department", "Phone Number", "Email"} {
		if _, ok := idx[required]; !ok {
			return nil, fmt.Errorf("directory missing %q column", required)
		}
	}
	byID := map[string]domain.Employee{}
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read directory row: %w", err)
		}
		id := strings.TrimSpace(row[idx["Employee ID"]])
		if id == "" {
			continue
		}
		byID[id] = domain.Employee{
			ID:         id,
			Name:       row[idx["Name"]],
			Department: row[idx["Department"]],
			Phone:      row[idx["Phone Number"]],
			Email:      row[idx["Email"]],
		}
	}
	return &Directory{byID: byID}, nil
}

// Open loads an employee table from disk.
func Open(path string) (*Directory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open directory: %w", err)
	}
	defer func() { _ = f.Close() }()
	return Load(f)
}

// Lookup resolves an employee identifier.
func (d *Directory) Lookup(id string) (domain.Employee, bool) {
	emp, ok := d.byID[id]
	return emp, ok
}

// Len returns the number of directory entries.
func (d *Directory) Len() int { return len(d.byID) }
