package geo

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/courtscan/courtscan/internal/pkg/config"
)

func TestDistanceMiles(t *testing.T) {
	trafalgarSquare := Point{51.5080, -0.1281}
	towerBridge := Point{51.5055, -0.0754}

	tests := []struct {
		name      string
		a, b      Point
		want      float64
		tolerance float64
	}{
		{"same point", trafalgarSquare, trafalgarSquare, 0, 0.001},
		{"central london", trafalgarSquare, towerBridge, 2.27, 0.1},
		{"symmetry", towerBridge, trafalgarSquare, 2.27, 0.1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DistanceMiles(tt.a, tt.b)
			if math.Abs(got-tt.want) > tt.tolerance {
				t.Errorf("DistanceMiles = %.3f, want %.3f ± %.3f", got, tt.want, tt.tolerance)
			}
		})
	}
}

func TestGeocode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/postcodes/WC2N%205DU", "/postcodes/WC2N 5DU":
			w.Write([]byte(`{"status":200,"result":{"postcode":"WC2N 5DU","latitude":51.5074,"longitude":-0.1278}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"status":404,"error":"Postcode not found"}`))
		}
	}))
	defer srv.Close()

	client := NewPostcodesClient(&config.GeocodingConfig{BaseURL: srv.URL})

	point, err := client.Geocode(context.Background(), "WC2N 5DU")
	if err != nil {
		t.Fatal(err)
	}
	if point.Latitude != 51.5074 || point.Longitude != -0.1278 {
		t.Errorf("Geocode = %+v", point)
	}

	_, err = client.Geocode(context.Background(), "NOPE")
	if !errors.Is(err, ErrInvalidPostcode) {
		t.Errorf("unknown postcode error = %v, want ErrInvalidPostcode", err)
	}
}
