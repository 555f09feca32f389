package domain

import (
	"encoding/csv"
	"fmt"
	"io"
)

// Request store wire format: a flat table with a header row and one row per
// record. Supplies are serialised as their names joined with ", ". The
// Request ID column is the stable identity assigned at creation; tables
// written before identifiers were introduced lack the column and decode with
// an empty ID.
const (
	columnRequestID     = "Request ID"
	columnTimestamp     = "Timestamp"
	columnEmployeeID    = "Employee ID"
	columnName          = "Name"
	columnDepartment    = "Department"
	columnPhone         = "Phone Number"
	columnEmail         = "Email"
	columnLocation      = "Location"
	columnStatus        = "Status"
	columnSupplies      = "Supplies Needed"
	columnNotes         = "Additional Notes"
	columnRequestStatus = "Request Status"
)

// RequestColumns is the canonical column order written by EncodeRequests.
var RequestColumns = []string{
	columnRequestID,
	columnTimestamp,
	columnEmployeeID,
	columnName,
	columnDepartment,
	columnPhone,
	columnEmail,
	columnLocation,
	columnStatus,
	columnSupplies,
	columnNotes,
	columnRequestStatus,
}

// EncodeRequests writes the snapshot as a CSV table, header row included.
func EncodeRequests(w io.Writer, records []RequestRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(RequestColumns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, r := range records {
		row := []string{
			r.ID,
			r.Timestamp,
			r.EmployeeID,
			r.Name,
			r.Department,
			r.Phone,
			r.Email,
			r.Location,
			string(r.SafetyStatus),
			JoinSupplies(r.Supplies),
			r.Notes,
			string(r.RequestStatus),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// DecodeRequests reads a CSV request table. Columns are located by header
// name, so column order and unknown extra columns are tolerated. An empty
// input (no header) decodes as an empty snapshot.
func DecodeRequests(r io.Reader) ([]RequestRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, col := range header {
		idx[col] = i
	}
	for _, required := range []string{columnTimestamp, columnEmployeeID, columnRequestStatus} {
		if _, ok := idx[required]; !ok {
			return nil, fmt.Errorf("request table missing %q column", required)
		}
	}
	field := func(row []string, col string) string {
		i, ok := idx[col]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	var records []RequestRecord
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read line %d: %w", line, err)
		}
		records = append(records, RequestRecord{
			ID:            field(row, columnRequestID),
			Timestamp:     field(row, columnTimestamp),
			EmployeeID:    field(row, columnEmployeeID),
			Name:          field(row, columnName),
			Department:    field(row, columnDepartment),
			Phone:         field(row, columnPhone),
			Email:         field(row, columnEmail),
			Location:      field(row, columnLocation),
			SafetyStatus:  SafetyStatus(field(row, columnStatus)),
			Supplies:      SplitSupplies(field(row, columnSupplies)),
			Notes:         field(row, columnNotes),
			RequestStatus: RequestStatus(field(row, columnRequestStatus)),
		})
	}
	return records, nil
}
