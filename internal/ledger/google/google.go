package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"tutornotes/internal/core"
	"tutornotes/internal/ledger"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheet         string
}

var (
	_ ledger.Writer = (*Client)(nil)
	_ ledger.Lister = (*Client)(nil)
)

// Credentials selects the service account; JSON takes precedence over File.
type Credentials struct {
	JSON string
	File string
}

func New(ctx context.Context, spreadsheetID, sheet string, creds Credentials) (*Client, error) {
	if strings.TrimSpace(spreadsheetID) == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	if strings.TrimSpace(sheet) == "" {
		return nil, errors.New("missing ledger sheet name")
	}
	svc, err := newSheetsService(ctx, creds)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return &Client{svc: svc, spreadsheetID: spreadsheetID, sheet: sheet}, nil
}

func newSheetsService(ctx context.Context, creds Credentials) (*gsheet.Service, error) {
	var credentialsJSON []byte
	switch {
	case strings.TrimSpace(creds.JSON) != "":
		slog.InfoContext(ctx, "Using inline JSON credentials")
		credentialsJSON = []byte(creds.JSON)
	case strings.TrimSpace(creds.File) != "":
		slog.InfoContext(ctx, "Reading credentials from file", "path", creds.File)
		b, err := os.ReadFile(creds.File)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = b
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// Append writes the note on the first empty row below the header.
func (c *Client) Append(ctx context.Context, n core.IssuedNote) (string, error) {
	if err := n.Validate(); err != nil {
		return "", fmt.Errorf("validation failed: %w", err)
	}
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	rng := fmt.Sprintf("%s!A:A", c.sheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to get sheet dimensions for %s: %w", c.sheet, err)
	}
	nextRow := nextRowFor(len(resp.Values))

	if nextRow == 2 {
		headerRange := fmt.Sprintf("%s!A1:I1", c.sheet)
		hdr := make([]any, len(ledger.Header))
		for i, h := range ledger.Header {
			hdr[i] = h
		}
		_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, headerRange, &gsheet.ValueRange{Values: [][]any{hdr}}).
			ValueInputOption("RAW").Context(ctx).Do()
		if err != nil {
			return "", fmt.Errorf("failed to write header in sheet %s: %w", c.sheet, err)
		}
	}

	dataRange := fmt.Sprintf("%s!A%d:I%d", c.sheet, nextRow, nextRow)
	vr := &gsheet.ValueRange{Values: [][]any{ledger.Row(n)}}
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, dataRange, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to update %s: %w", dataRange, err)
	}
	return dataRange, nil
}

// nextRowFor leaves row 1 for the header.
func nextRowFor(existing int) int {
	if existing < 1 {
		return 2
	}
	return existing + 1
}

// List reads every note row back from the sheet.
func (c *Client) List(ctx context.Context) ([]core.IssuedNote, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	rng := fmt.Sprintf("%s!A2:I", c.sheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	return parseRows(resp.Values)
}

// parseRows converts sheet rows in ledger.Header order; blank rows are skipped.
func parseRows(values [][]any) ([]core.IssuedNote, error) {
	var out []core.IssuedNote
	for i, row := range values {
		cells := make([]string, len(ledger.Header))
		for j := 0; j < len(cells) && j < len(row); j++ {
			cells[j] = strings.TrimSpace(fmt.Sprint(row[j]))
		}
		if cells[7] == "" {
			continue
		}
		issued, err := time.Parse("2006-01-02", cells[0])
		if err != nil {
			return nil, fmt.Errorf("row %d: bad date %q", i+2, cells[0])
		}
		months, err := parseMonths(cells[3])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		year, _ := strconv.Atoi(cells[4])
		total, err := core.ParseAmount(cells[5])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		pages, _ := strconv.Atoi(cells[6])
		out = append(out, core.IssuedNote{
			ID:       cells[7],
			Student:  cells[1],
			Course:   cells[2],
			Months:   months,
			Year:     year,
			Total:    total,
			Pages:    pages,
			Path:     cells[8],
			IssuedAt: issued,
		})
	}
	return out, nil
}

func parseMonths(s string) ([]int, error) {
	var out []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		t, err := time.Parse("Jan", part)
		if err != nil {
			return nil, fmt.Errorf("bad month %q", part)
		}
		out = append(out, int(t.Month()))
	}
	return out, nil
}
