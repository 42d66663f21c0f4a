package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRoomLookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rooms/57382" {
			http.NotFound(w, r)
			return
		}
		json.NewEncoder(w).Encode(RoomInfo{
			RoomCode:     "57382",
			MemberCount:  2,
			HostNickname: "Alice",
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	info, err := c.Room(context.Background(), "57382")
	if err != nil {
		t.Fatalf("room lookup: %v", err)
	}
	if info.RoomCode != "57382" || info.MemberCount != 2 || info.HostNickname != "Alice" {
		t.Fatalf("unexpected room info: %+v", info)
	}
}

func TestRoomNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(ErrorResponse{Error: "room not found"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.Room(context.Background(), "00000")
	if err == nil || !strings.Contains(err.Error(), "room not found") {
		t.Fatalf("expected room not found error, got %v", err)
	}
}

func TestRoomRequiresCode(t *testing.T) {
	c := NewClient("http://localhost:0")
	if _, err := c.Room(context.Background(), ""); err == nil {
		t.Fatalf("expected error for empty code")
	}
}

func TestHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			http.NotFound(w, r)
			return
		}
		json.NewEncoder(w).Encode(HealthResponse{Status: "ok"})
	}))
	defer srv.Close()

	if err := NewClient(srv.URL).Health(context.Background()); err != nil {
		t.Fatalf("health: %v", err)
	}
}
