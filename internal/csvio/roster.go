// Package csvio reads and writes passenger rosters as CSV manifests.
// The column layout is fixed; operators feed these files to partner
// hotels and border agents, so order and headers never change.
package csvio

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"tourly/internal/passengers"
)

// Header is the manifest column layout, in file order.
var Header = []string{
	"Room Allocation",
	"Serial No",
	"Last Name",
	"First Name",
	"DOB",
	"Age",
	"Gender",
	"Passport Number",
	"Passport Expiry",
	"Nationality",
	"Room Type",
	"Hotel",
	"Additional Services",
	"Price",
	"Email",
	"Phone",
	"Allergy",
	"Emergency Phone",
}

const serviceSeparator = "; "

// WriteRoster streams the roster as a CSV manifest, header first.
func WriteRoster(w io.Writer, roster []passengers.Passenger) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("failed to write manifest header: %w", err)
	}

	for i := range roster {
		if err := cw.Write(recordFor(&roster[i])); err != nil {
			return fmt.Errorf("failed to write manifest row %d: %w", i+1, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func recordFor(p *passengers.Passenger) []string {
	return []string{
		p.RoomAllocation,
		strconv.Itoa(p.SerialNo),
		p.LastName,
		p.FirstName,
		p.DateOfBirth,
		strconv.Itoa(p.Age),
		p.Gender,
		p.PassportNumber,
		p.PassportExpire,
		p.Nationality,
		p.RoomType,
		p.Hotel,
		strings.Join(p.AdditionalFood, serviceSeparator),
		strconv.FormatFloat(p.Price, 'f', 2, 64),
		p.Email,
		p.Phone,
		p.Allergy,
		p.EmergencyPhone,
	}
}

// ReadRoster parses a manifest back into passengers. The header row is
// required and must match the fixed layout; a file produced by an older
// export with extra trailing columns is rejected rather than guessed at.
func ReadRoster(r io.Reader) ([]passengers.Passenger, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(Header)

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("manifest is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest header: %w", err)
	}
	for i, col := range Header {
		if header[i] != col {
			return nil, fmt.Errorf("manifest column %d is %q, expected %q", i+1, header[i], col)
		}
	}

	var roster []passengers.Passenger
	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read manifest line %d: %w", line, err)
		}

		p, err := passengerFor(record)
		if err != nil {
			return nil, fmt.Errorf("manifest line %d: %w", line, err)
		}
		roster = append(roster, p)
	}
	return roster, nil
}

func passengerFor(record []string) (passengers.Passenger, error) {
	var p passengers.Passenger

	serial, err := strconv.Atoi(strings.TrimSpace(record[1]))
	if err != nil {
		return p, fmt.Errorf("serial no %q is not a number", record[1])
	}

	age := 0
	if raw := strings.TrimSpace(record[5]); raw != "" {
		if age, err = strconv.Atoi(raw); err != nil {
			return p, fmt.Errorf("age %q is not a number", record[5])
		}
	}

	price := 0.0
	if raw := strings.TrimSpace(record[13]); raw != "" {
		if price, err = strconv.ParseFloat(raw, 64); err != nil {
			return p, fmt.Errorf("price %q is not a number", record[13])
		}
	}

	var services []string
	if raw := strings.TrimSpace(record[12]); raw != "" {
		for _, s := range strings.Split(raw, ";") {
			if s = strings.TrimSpace(s); s != "" {
				services = append(services, s)
			}
		}
	}

	p = passengers.Passenger{
		RoomAllocation: record[0],
		SerialNo:       serial,
		LastName:       record[2],
		FirstName:      record[3],
		DateOfBirth:    record[4],
		Age:            age,
		Gender:         record[6],
		PassportNumber: record[7],
		PassportExpire: record[8],
		Nationality:    record[9],
		RoomType:       record[10],
		Hotel:          record[11],
		AdditionalFood: services,
		Price:          price,
		Email:          record[14],
		Phone:          record[15],
		Allergy:        record[16],
		EmergencyPhone: record[17],
	}
	p.Name = passengers.DisplayName(p.FirstName, p.LastName)
	return p, nil
}
