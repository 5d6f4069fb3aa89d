package enrich

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func instantAnswerBody(urls ...string) map[string]any {
	topics := make([]map[string]string, 0, len(urls))
	for _, u := range urls {
		topics = append(topics, map[string]string{"Text": "topic", "FirstURL": u})
	}
	return map[string]any{"RelatedTopics": topics}
}

func TestDuckDuckGo_Search(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		if r.URL.Query().Get("format") != "json" {
			t.Error("expected format=json")
		}
		json.NewEncoder(w).Encode(instantAnswerBody(
			"https://stackoverflow.com/q/1",
			"https://stackoverflow.com/q/2",
			"https://stackoverflow.com/q/3",
			"https://stackoverflow.com/q/4",
		))
	}))
	defer server.Close()

	d := NewDuckDuckGo(server.URL, 2*time.Second)
	results, err := d.Search(context.Background(), "connection refused", 3)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 3 {
		t.Errorf("expected results clamped to 3, got %d", len(results))
	}
	if !strings.Contains(gotQuery, "site:stackoverflow.com") {
		t.Errorf("query not scoped to Stack Overflow: %q", gotQuery)
	}
	if !strings.Contains(gotQuery, "connection refused") {
		t.Errorf("query lost the search term: %q", gotQuery)
	}
}

func TestDuckDuckGo_SkipsTopicsWithoutURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"RelatedTopics": []map[string]string{
				{"Text": "no url here"},
				{"Text": "good", "FirstURL": "https://stackoverflow.com/q/9"},
			},
		})
	}))
	defer server.Close()

	d := NewDuckDuckGo(server.URL, 2*time.Second)
	results, err := d.Search(context.Background(), "x", 5)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].URL != "https://stackoverflow.com/q/9" {
		t.Errorf("wrong result kept: %+v", results[0])
	}
}

func TestDuckDuckGo_CachesResults(t *testing.T) {
	var hits atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		json.NewEncoder(w).Encode(instantAnswerBody("https://stackoverflow.com/q/1"))
	}))
	defer server.Close()

	d := NewDuckDuckGo(server.URL, 2*time.Second)
	for i := 0; i < 3; i++ {
		if _, err := d.Search(context.Background(), "same query", 3); err != nil {
			t.Fatalf("Search %d failed: %v", i, err)
		}
	}
	if hits.Load() != 1 {
		t.Errorf("expected 1 upstream hit for a repeated query, got %d", hits.Load())
	}

	if _, err := d.Search(context.Background(), "different query", 3); err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if hits.Load() != 2 {
		t.Errorf("expected a second upstream hit for a new query, got %d", hits.Load())
	}
}

func TestDuckDuckGo_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	d := NewDuckDuckGo(server.URL, 2*time.Second)
	if _, err := d.Search(context.Background(), "x", 3); err == nil {
		t.Fatal("expected an error for a non-200 status")
	}
}

func TestCache_EvictsOldest(t *testing.T) {
	c := NewCache(2, time.Minute)
	c.Set("a", []Result{{URL: "a"}})
	c.Set("b", []Result{{URL: "b"}})
	c.Set("c", []Result{{URL: "c"}})

	if c.Len() != 2 {
		t.Errorf("expected 2 entries after eviction, got %d", c.Len())
	}
	if _, ok := c.Get("a"); ok {
		t.Error("oldest entry should have been evicted")
	}
	if _, ok := c.Get("c"); !ok {
		t.Error("newest entry missing")
	}
}

func TestCache_ExpiredEntryMisses(t *testing.T) {
	c := NewCache(10, time.Nanosecond)
	c.Set("q", []Result{{URL: "x"}})
	time.Sleep(time.Millisecond)

	if _, ok := c.Get("q"); ok {
		t.Error("expired entry should miss")
	}
}
