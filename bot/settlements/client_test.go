package settlements

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/agrohub/transportbot/core/logger"
)

func TestMain(m *testing.M) {
	_ = logger.InitLogger(nil)
	m.Run()
}

func TestSearchDisabledWithoutKey(t *testing.T) {
	c := NewClient(Config{})
	if c.Enabled() {
		t.Fatal("client without key must be disabled")
	}
	if got := c.Search(context.Background(), "Вінниця"); got != nil {
		t.Fatalf("Search = %v, want nil", got)
	}
}

func TestSearchSuccess(t *testing.T) {
	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %s", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{
			"success": true,
			"data": [{"Addresses": [
				{"Present": "м. Вінниця", "Area": "Вінницька", "Region": "Вінницький"},
				{"Present": "с. Вінницькі Хутори", "Area": "", "Region": "Вінницький"},
				{"Present": "с. Степанівка", "Area": "", "Region": ""}
			]}]
		}`))
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "key", BaseURL: srv.URL})
	got := c.Search(context.Background(), "Вінниця")

	if captured["apiKey"] != "key" || captured["modelName"] != "Address" || captured["calledMethod"] != "searchSettlements" {
		t.Errorf("request envelope = %v", captured)
	}
	mp, _ := captured["methodProperties"].(map[string]any)
	if mp["CityName"] != "Вінниця" || mp["Limit"] != "10" {
		t.Errorf("method properties = %v", mp)
	}

	want := []Settlement{
		{Display: "м. Вінниця (Вінницька, Вінницький)", Value: "м. Вінниця"},
		{Display: "с. Вінницькі Хутори (Вінницький)", Value: "с. Вінницькі Хутори"},
		{Display: "с. Степанівка", Value: "с. Степанівка"},
	}
	if len(got) != len(want) {
		t.Fatalf("results = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("result %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestSearchLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"success": true,
			"data": [{"Addresses": [
				{"Present": "а"}, {"Present": "б"}, {"Present": "в"},
				{"Present": "г"}, {"Present": "д"}
			]}]
		}`))
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "key", BaseURL: srv.URL, Limit: 2})
	if got := c.Search(context.Background(), "м"); len(got) != 2 {
		t.Fatalf("results = %d, want limit 2", len(got))
	}
}

func TestSearchFailuresYieldNil(t *testing.T) {
	cases := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"http error", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}},
		{"bad json", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("not json"))
		}},
		{"unsuccessful", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"success": false, "data": []}`))
		}},
		{"empty data", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"success": true, "data": []}`))
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(tc.handler)
			defer srv.Close()
			c := NewClient(Config{APIKey: "key", BaseURL: srv.URL})
			if got := c.Search(context.Background(), "Київ"); got != nil {
				t.Fatalf("Search = %v, want nil", got)
			}
		})
	}
}

func TestNewClientDefaults(t *testing.T) {
	c := NewClient(Config{APIKey: "key"})
	if c.baseURL != defaultBaseURL {
		t.Errorf("baseURL = %s", c.baseURL)
	}
	if c.limit != 10 {
		t.Errorf("limit = %d", c.limit)
	}
	c = NewClient(Config{APIKey: "key", Limit: 50})
	if c.limit != 10 {
		t.Errorf("limit = %d, want clamp to 10", c.limit)
	}
}
