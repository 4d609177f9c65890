package api

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func setupTestApp() *fiber.App {
	app := fiber.New()
	app.Get("/api/health", HandleHealth)
	app.Post("/api/convert", HandleConvert)
	return app
}

func TestHealthEndpoint(t *testing.T) {
	app := setupTestApp()

	req := httptest.NewRequest("GET", "/api/health", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}

	body, _ := io.ReadAll(resp.Body)
	var result map[string]string
	if err := json.Unmarshal(body, &result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if result["status"] != "ok" {
		t.Errorf("expected status=ok, got %q", result["status"])
	}

	if result["engine"] != "fiber" {
		t.Errorf("expected engine=fiber, got %q", result["engine"])
	}
}

func TestConvertEndpointRequiresInput(t *testing.T) {
	app := setupTestApp()

	req := httptest.NewRequest("POST", "/api/convert", nil)
	req.Header.Set("Content-Type", "multipart/form-data; boundary=----test")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	// Should fail because neither a file nor raw text was provided
	if resp.StatusCode == fiber.StatusOK {
		t.Error("expected non-200 for missing input")
	}
}

func TestConvertEndpointWithText(t *testing.T) {
	app := setupTestApp()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("text", "RC|ROOM CHRG REVENUE|50|$10,107.15|$231,259.82"); err != nil {
		t.Fatalf("failed to build form: %v", err)
	}
	mw.Close()

	req := httptest.NewRequest("POST", "/api/convert", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	body, _ := io.ReadAll(resp.Body)
	var result ConvertResponse
	if err := json.Unmarshal(body, &result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if !result.Success {
		t.Fatalf("expected success, got error %q", result.Error)
	}
	if result.Count != 1 {
		t.Fatalf("expected 1 account line, got %d", result.Count)
	}
	if result.AccountLines[0].SourceCode != "RC" {
		t.Errorf("expected source code RC, got %q", result.AccountLines[0].SourceCode)
	}
	if result.CSV == "" {
		t.Error("expected CSV in response")
	}
}

func TestConvertEndpointRejectsNonPDF(t *testing.T) {
	app := setupTestApp()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "report.docx")
	if err != nil {
		t.Fatalf("failed to build form: %v", err)
	}
	fw.Write([]byte("not a pdf"))
	mw.Close()

	req := httptest.NewRequest("POST", "/api/convert", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("expected 400 for non-PDF upload, got %d", resp.StatusCode)
	}
}

func TestConvertEndpointCombine(t *testing.T) {
	app := setupTestApp()

	report := "V1|VISA CARD PMT|3|$100.00\n" +
		"A1|AMEX PAYMENT|2|$500.00\n"

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.WriteField("text", report)
	mw.WriteField("combine", "true")
	mw.Close()

	req := httptest.NewRequest("POST", "/api/convert", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	body, _ := io.ReadAll(resp.Body)
	var result ConvertResponse
	if err := json.Unmarshal(body, &result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if result.Count != 1 {
		t.Fatalf("expected 1 consolidated line, got %d", result.Count)
	}
	if result.AccountLines[0].SourceCode != "CC" {
		t.Errorf("expected consolidated code CC, got %q", result.AccountLines[0].SourceCode)
	}
	if result.AccountLines[0].Amount.String() != "600" {
		t.Errorf("expected consolidated amount 600, got %s", result.AccountLines[0].Amount)
	}
}
