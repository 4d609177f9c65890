// Package api exposes the night-audit converter over HTTP for the accounting
// front end.
package api

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/insightdelivered/night-audit-converter/internal/extractor"
	"github.com/insightdelivered/night-audit-converter/internal/mapping"
	"github.com/insightdelivered/night-audit-converter/internal/models"
	"github.com/insightdelivered/night-audit-converter/internal/parser"
	"github.com/insightdelivered/night-audit-converter/internal/writer"
)

// ConvertResponse is the JSON response from the /api/convert endpoint.
type ConvertResponse struct {
	Success      bool                        `json:"success"`
	Error        string                      `json:"error,omitempty"`
	AccountLines []models.AccountLine        `json:"accountLines"`
	Groups       []models.PaymentMethodGroup `json:"groups,omitempty"`
	Stats        *models.ParsingStats        `json:"stats,omitempty"`
	CSV          string                      `json:"csv,omitempty"`
	Count        int                         `json:"count"`
	Version      string                      `json:"version,omitempty"`
}

const version = "1.0.0"

// NewApp builds the fiber application with all routes registered.
func NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		BodyLimit:    32 << 20,
		ErrorHandler: errorHandler,
	})

	app.Get("/api/health", HandleHealth)
	app.Post("/api/convert", HandleConvert)
	return app
}

// HandleHealth reports service liveness.
func HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"engine":  "fiber",
		"version": version,
	})
}

// HandleConvert accepts a night-audit report as either an uploaded PDF (form
// field "file") or raw report text (form field "text") and returns the parsed
// account lines plus CSV.
func HandleConvert(c *fiber.Ctx) error {
	text, status, err := reportText(c)
	if err != nil {
		return writeError(c, status, err.Error())
	}

	opts, err := optionsFromForm(c)
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, err.Error())
	}

	var resolver writer.AccountResolver
	if fh, err := c.FormFile("mapping"); err == nil {
		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, fmt.Sprintf("Failed to read mapping upload: %v", err))
		}
		defer f.Close()

		m, err := mapping.LoadReader(f)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, fmt.Sprintf("Failed to load mapping workbook: %v", err))
		}
		opts.ValidSourceCodes = m.SourceCodes()
		resolver = m
	}

	p := parser.New(opts)
	lines := p.ConsolidatedAccountLines(text)
	groups := p.GroupPaymentMethods(p.ParseAccountLines(text))
	stats := p.Stats(text)

	var csvBuf bytes.Buffer
	csvWriter := &writer.CSVWriter{Accounts: resolver}
	if err := csvWriter.Write(&csvBuf, lines); err != nil {
		return writeError(c, fiber.StatusInternalServerError, fmt.Sprintf("CSV generation failed: %v", err))
	}

	// nil marshals to JSON null, not [].
	if lines == nil {
		lines = []models.AccountLine{}
	}

	return c.JSON(ConvertResponse{
		Success:      true,
		AccountLines: lines,
		Groups:       groups,
		Stats:        &stats,
		CSV:          csvBuf.String(),
		Count:        len(lines),
		Version:      version,
	})
}

// reportText resolves the report body from the request, extracting text
// server-side when a PDF was uploaded.
func reportText(c *fiber.Ctx) (string, int, error) {
	if text := strings.TrimSpace(c.FormValue("text")); text != "" {
		return text, fiber.StatusOK, nil
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return "", fiber.StatusBadRequest, fmt.Errorf("no report provided: upload a PDF as form field 'file' or pass raw text as 'text'")
	}
	if !strings.HasSuffix(strings.ToLower(fh.Filename), ".pdf") {
		return "", fiber.StatusBadRequest, fmt.Errorf("only PDF uploads are supported")
	}

	src, err := fh.Open()
	if err != nil {
		return "", fiber.StatusInternalServerError, fmt.Errorf("failed to read upload: %v", err)
	}
	defer src.Close()

	tmp, err := os.CreateTemp("", "audit-*.pdf")
	if err != nil {
		return "", fiber.StatusInternalServerError, fmt.Errorf("failed to create temp file: %v", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		return "", fiber.StatusInternalServerError, fmt.Errorf("failed to save upload: %v", err)
	}
	tmp.Close()

	text, err := extractor.ExtractTextCombined(tmp.Name())
	if err != nil {
		return "", fiber.StatusUnprocessableEntity, fmt.Errorf("PDF extraction failed: %v", err)
	}
	return text, fiber.StatusOK, nil
}

// optionsFromForm builds parser options from the request form values.
func optionsFromForm(c *fiber.Ctx) (parser.Options, error) {
	opts := parser.DefaultOptions()

	if v := c.FormValue("minAmount"); v != "" {
		min, err := decimal.NewFromString(v)
		if err != nil {
			return opts, fmt.Errorf("invalid minAmount %q", v)
		}
		opts.MinimumAmount = min
	}
	opts.IncludeZeroAmounts = c.FormValue("includeZero") == "true"

	if c.FormValue("combine") == "true" {
		opts.CombinePaymentMethods = true
		opts.PaymentMethodGroups = map[string][]string{
			"Credit Cards": {"VISA", "MASTER", "DISCOVER", "AMEX"},
		}
	}

	if v := strings.TrimSpace(c.FormValue("codes")); v != "" {
		for _, code := range strings.Split(v, ",") {
			if code = strings.TrimSpace(code); code != "" {
				opts.ValidSourceCodes = append(opts.ValidSourceCodes, code)
			}
		}
	}
	return opts, nil
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	return writeError(c, code, err.Error())
}

func writeError(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(ConvertResponse{
		Success: false,
		Error:   msg,
	})
}
