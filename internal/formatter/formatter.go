// package formatter provides functions to export contact previews and campaign history to various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/femiolat/blastr/internal/models"
)

// ContactsToCSV converts preview rows to CSV format with columns: ID, Fullname, Phone
func ContactsToCSV(contacts []models.Contact) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Fullname", "Phone"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, contact := range contacts {
		record := []string{contact.ID, contact.Fullname, contact.Phone}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ContactsToMarkdown converts preview rows to a Markdown listing.
//
// Names come from uploaded spreadsheets, so line breaks are flattened before
// rendering to keep one row per line.
func ContactsToMarkdown(title string, contacts []models.Contact) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", flatten(title)))
	buf.WriteString(fmt.Sprintf("**Contacts**: %d\n\n", len(contacts)))

	for i, contact := range contacts {
		buf.WriteString(fmt.Sprintf("%d. %s (%s)\n", i+1, flatten(contact.Fullname), contact.Phone))
	}

	return buf.Bytes(), nil
}

// ContactsToText converts preview rows to plain text format
func ContactsToText(contacts []models.Contact) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Contacts: %d\n\n", len(contacts)))

	for i, contact := range contacts {
		buf.WriteString(fmt.Sprintf("%d. %s - %s\n", i+1, flatten(contact.Fullname), contact.Phone))
	}

	return buf.Bytes(), nil
}

// CampaignsToCSV converts campaign history to CSV format with columns:
// Sequence, SendJobID, Status, Total, Sent, Failed, Personalize, CreatedAt, Message
func CampaignsToCSV(campaigns []*models.Campaign) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Sequence", "SendJobID", "Status", "Total", "Sent", "Failed", "Personalize", "CreatedAt", "Message"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, campaign := range campaigns {
		record := []string{
			strconv.Itoa(campaign.Sequence()),
			campaign.SendJobID,
			string(campaign.Status),
			strconv.Itoa(campaign.Total),
			strconv.Itoa(campaign.Sent),
			strconv.Itoa(campaign.Failed),
			strconv.FormatBool(campaign.Personalize),
			campaign.CreatedAt().Format(time.RFC3339),
			campaign.Message,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// WriteContactsExport writes preview rows to disk in the requested format.
//
// Format is one of "csv", "markdown", or "text"; the extension is derived from
// it when path has none.
func WriteContactsExport(contacts []models.Contact, format, path string) (string, error) {
	var (
		data []byte
		err  error
		ext  string
	)

	switch format {
	case "csv", "":
		data, err = ContactsToCSV(contacts)
		ext = ".csv"
	case "markdown", "md":
		data, err = ContactsToMarkdown("Contact Preview", contacts)
		ext = ".md"
	case "text", "txt":
		data, err = ContactsToText(contacts)
		ext = ".txt"
	default:
		return "", fmt.Errorf("unsupported export format: %s", format)
	}
	if err != nil {
		return "", err
	}

	if path == "" {
		path = "contacts" + ext
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}

	return path, nil
}

// WriteCampaignsExport writes campaign history as CSV to path, defaulting to
// campaigns.csv.
func WriteCampaignsExport(campaigns []*models.Campaign, path string) (string, error) {
	data, err := CampaignsToCSV(campaigns)
	if err != nil {
		return "", err
	}

	if path == "" {
		path = "campaigns.csv"
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}

	return path, nil
}

func flatten(s string) string {
	s = strings.ReplaceAll(s, "\r", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.TrimSpace(s)
}
