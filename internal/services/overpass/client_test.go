package overpass

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"firewatch/internal/services"
)

func TestLandUseCollectsTags(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		gotQuery = r.FormValue("data")
		body := `{"elements":[
{"tags":{"landuse":"industrial","name":"Ludhiana Works"}},
{"tags":{"landuse":"farmland"}},
{"tags":{"landuse":"industrial"}},
{"tags":{"man_made":"works"}},
{"tags":{}}
]}`
		if _, err := w.Write([]byte(body)); err != nil {
			t.Errorf("write response: %v", err)
		}
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL, RadiusMeters: 1500})
	tags, err := client.LandUse(context.Background(), 30.9, 75.85)
	if err != nil {
		t.Fatalf("LandUse failed: %v", err)
	}

	want := []string{"landuse=farmland", "landuse=industrial", "man_made=works"}
	if !reflect.DeepEqual(tags, want) {
		t.Errorf("tags = %v, want %v", tags, want)
	}
	if !strings.Contains(gotQuery, "around:1500,30.9000,75.8500") {
		t.Errorf("query missing radius clause: %s", gotQuery)
	}
}

func TestLandUseEmptyResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if _, err := w.Write([]byte(`{"elements":[]}`)); err != nil {
			t.Errorf("write response: %v", err)
		}
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL})
	tags, err := client.LandUse(context.Background(), 22.5, 88.0)
	if err != nil {
		t.Fatalf("LandUse failed: %v", err)
	}
	if len(tags) != 0 {
		t.Errorf("expected empty tags, got %v", tags)
	}
}

func TestLandUseRateLimitIsTransient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL})
	_, err := client.LandUse(context.Background(), 1, 1)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient error, got %v", err)
	}
}

func TestLandUseMissingBaseURL(t *testing.T) {
	client := NewClient(Config{})
	_, err := client.LandUse(context.Background(), 1, 1)
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestIndustrial(t *testing.T) {
	cases := []struct {
		tags []string
		want bool
	}{
		{nil, false},
		{[]string{"landuse=farmland"}, false},
		{[]string{"landuse=farmland", "landuse=industrial"}, true},
		{[]string{"man_made=chimney"}, true},
		{[]string{"natural=water"}, false},
	}
	for _, tc := range cases {
		if got := Industrial(tc.tags); got != tc.want {
			t.Errorf("Industrial(%v) = %v, want %v", tc.tags, got, tc.want)
		}
	}
}
