package server

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/femiolat/blastr/internal/models"
	"github.com/femiolat/blastr/internal/shared"
)

// Recognized spreadsheet column headers, lowercased. The first matching header
// wins; files from different exports name the same columns differently.
var (
	nameHeaders    = []string{"name", "fullname", "full_name", "clientname", "client_name"}
	phoneHeaders   = []string{"phone", "mobile", "number", "telephone", "msisdn"}
	countryHeaders = []string{"country", "country_code"}
)

// countryDialCodes maps lowercased country column values to dial codes.
var countryDialCodes = map[string]string{
	"ng":      "+234",
	"nigeria": "+234",
	"gh":      "+233",
	"ghana":   "+233",
}

// ParseSheet reads a CSV spreadsheet and returns deduplicated contact rows.
// Comma and semicolon delimiters are both accepted; the delimiter is sniffed
// from the header line.
//
// The header row is matched case-insensitively against the recognized name and
// phone column aliases. Rows with an empty name or an unusable phone are
// skipped, and later rows that normalize to an already-seen phone are dropped.
// Row IDs are assigned positionally over the surviving rows and stay stable
// for the lifetime of the parse job.
func ParseSheet(r io.Reader, defaultDialCode string) ([]models.Contact, error) {
	buffered := bufio.NewReader(r)

	reader := csv.NewReader(buffered)
	reader.Comma = detectDelimiter(buffered)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: spreadsheet is empty", shared.ErrInvalidInput)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	nameIdx := findColumn(header, nameHeaders)
	phoneIdx := findColumn(header, phoneHeaders)
	countryIdx := findColumn(header, countryHeaders)

	if nameIdx < 0 || phoneIdx < 0 {
		return nil, fmt.Errorf("%w: spreadsheet needs a name column and a phone column", shared.ErrInvalidInput)
	}

	var contacts []models.Contact
	seen := map[string]bool{}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
		}

		name := strings.TrimSpace(field(record, nameIdx))
		rawPhone := field(record, phoneIdx)
		if name == "" || strings.TrimSpace(rawPhone) == "" {
			continue
		}

		dialCode := defaultDialCode
		if countryIdx >= 0 {
			if code := dialCodeFor(field(record, countryIdx)); code != "" {
				dialCode = code
			}
		}

		phone, ok := NormalizePhone(rawPhone, dialCode)
		if !ok || seen[phone] {
			continue
		}
		seen[phone] = true

		contacts = append(contacts, models.Contact{
			ID:       strconv.Itoa(len(contacts)),
			Fullname: name,
			Phone:    phone,
		})
	}

	if len(contacts) == 0 {
		return nil, fmt.Errorf("%w: no usable rows in spreadsheet", shared.ErrInvalidInput)
	}

	return contacts, nil
}

// NormalizePhone canonicalizes a raw phone value to +<dialcode><subscriber>.
//
// Formatting characters are stripped, a single leading zero is replaced by the
// dial code, and already-international numbers keep their own prefix. Values
// with fewer than 7 digits are rejected.
func NormalizePhone(raw, dialCode string) (string, bool) {
	var b strings.Builder
	international := false

	for i, r := range strings.TrimSpace(raw) {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && i == 0:
			international = true
		case r == ' ' || r == '-' || r == '(' || r == ')' || r == '.':
		default:
			return "", false
		}
	}

	digits := b.String()
	if len(digits) < 7 {
		return "", false
	}

	if international {
		return "+" + digits, true
	}
	digits = strings.TrimPrefix(digits, "0")
	if len(digits) < 7 {
		return "", false
	}
	return dialCode + digits, true
}

// detectDelimiter peeks at the header line without consuming it. Semicolon
// wins only when the line carries no comma, so mixed exports keep the comma.
func detectDelimiter(r *bufio.Reader) rune {
	peeked, _ := r.Peek(4096)
	line := string(peeked)
	if idx := strings.IndexByte(line, '\n'); idx >= 0 {
		line = line[:idx]
	}
	if strings.ContainsRune(line, ';') && !strings.ContainsRune(line, ',') {
		return ';'
	}
	return ','
}

func findColumn(header []string, aliases []string) int {
	for i, col := range header {
		normalized := strings.ToLower(strings.TrimSpace(col))
		for _, alias := range aliases {
			if normalized == alias {
				return i
			}
		}
	}
	return -1
}

func field(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return record[idx]
}

func dialCodeFor(country string) string {
	value := strings.ToLower(strings.TrimSpace(country))
	if value == "" {
		return ""
	}
	if strings.HasPrefix(value, "+") {
		return value
	}
	return countryDialCodes[value]
}
