package feed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFetchStatusErrorCarriesCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	f := NewFetcher("hedgepod-test")
	_, err := f.Fetch(context.Background(), srv.URL)
	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected *FetchError, got %T: %v", err, err)
	}
	if fetchErr.Kind != FetchErrorStatus {
		t.Fatalf("expected FetchErrorStatus, got %v", fetchErr.Kind)
	}
	if fetchErr.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", fetchErr.StatusCode)
	}
}

func TestFetchMalformedBodyReportsMalformed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not xml at all"))
	}))
	defer srv.Close()

	f := NewFetcher("hedgepod-test")
	_, err := f.Fetch(context.Background(), srv.URL)
	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected *FetchError, got %T: %v", err, err)
	}
	if fetchErr.Kind != FetchErrorMalformed {
		t.Fatalf("expected FetchErrorMalformed, got %v", fetchErr.Kind)
	}
}

func TestFetchNetworkingErrorOnUnreachableHost(t *testing.T) {
	f := NewFetcher("hedgepod-test")
	_, err := f.Fetch(context.Background(), "http://127.0.0.1:1")
	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected *FetchError, got %T: %v", err, err)
	}
	if fetchErr.Kind != FetchErrorNetworking {
		t.Fatalf("expected FetchErrorNetworking, got %v", fetchErr.Kind)
	}
}
