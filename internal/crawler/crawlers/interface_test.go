package crawlers

import (
	"net/http"
	"testing"

	"github.com/courtscan/courtscan/internal/pkg/models"
)

func response(status int, contentType, body string) *models.RawResponse {
	headers := http.Header{}
	if contentType != "" {
		headers.Set("Content-Type", contentType)
	}
	return &models.RawResponse{
		StatusCode: status,
		Headers:    headers,
		Body:       []byte(body),
		Request:    models.RequestDetail{URL: "https://provider.example/slots"},
	}
}

func TestEnsureJSON(t *testing.T) {
	tests := []struct {
		name    string
		raw     *models.RawResponse
		wantErr bool
	}{
		{"json ok", response(200, "application/json", `{"data":[]}`), false},
		{"json with charset", response(200, "application/json; charset=utf-8", `{}`), false},
		{"vendor json suffix", response(200, "application/hal+json", `{}`), false},
		{"no content type declared", response(200, "", `{}`), false},
		{"html error page behind 200", response(200, "text/html; charset=utf-8", "<html>maintenance</html>"), true},
		{"plain text", response(200, "text/plain", "nope"), true},
		{"non-200", response(404, "application/json", `{}`), true},
		{"empty body", response(200, "application/json", ""), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := EnsureJSON(tt.raw); (err != nil) != tt.wantErr {
				t.Errorf("EnsureJSON() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestEnsureHTML(t *testing.T) {
	tests := []struct {
		name    string
		raw     *models.RawResponse
		wantErr bool
	}{
		{"html ok", response(200, "text/html; charset=utf-8", "<div></div>"), false},
		{"no content type declared", response(200, "", "<div></div>"), false},
		{"json where html expected", response(200, "application/json", `{}`), true},
		{"non-200", response(503, "text/html", "<html></html>"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := EnsureHTML(tt.raw); (err != nil) != tt.wantErr {
				t.Errorf("EnsureHTML() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
