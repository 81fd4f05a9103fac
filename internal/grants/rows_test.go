package grants

import (
	"reflect"
	"testing"
)

const (
	idA = "3f1c2d4e-5a6b-4c7d-8e9f-0a1b2c3d4e5f"
	idB = "9b2e7c1a-0d3f-4e5a-9b6c-7d8e9f0a1b2c"
)

var header = []string{"uuid", "title", "description", "image", "address"}

func TestExtractID(t *testing.T) {
	cases := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{idA, idA, true},
		{"3F1C2D4E-5A6B-4C7D-8E9F-0A1B2C3D4E5F", "3F1C2D4E-5A6B-4C7D-8E9F-0A1B2C3D4E5F", true},
		{"https://app.example.org/grants/" + idA, idA, true},
		{"https://app.example.org/grants/" + idA + "/", idA, true},
		{"https://app.example.org/grants/" + idA + "?tab=claim", idA, true},
		{"https://app.example.org/" + idA + "/details", "", false},
		// version nibble must be 4
		{"3f1c2d4e-5a6b-1c7d-8e9f-0a1b2c3d4e5f", "", false},
		// variant nibble must be 8, 9, a or b
		{"3f1c2d4e-5a6b-4c7d-ce9f-0a1b2c3d4e5f", "", false},
		{"3f1c2d4e5a6b4c7d8e9f0a1b2c3d4e5f", "", false},
		{"{" + idA + "}", "", false},
		{"urn:uuid:" + idA, "", false},
		{"grants/" + idA, "", false},
		{"not-a-uuid", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := ExtractID(tc.in)
		if ok != tc.wantOK || got != tc.want {
			t.Errorf("ExtractID(%q) = (%q, %v), want (%q, %v)", tc.in, got, ok, tc.want, tc.wantOK)
		}
	}
}

func TestNormalizeSingleRow(t *testing.T) {
	rows := Normalize([][]string{
		header,
		{idA, "T", "D", "img.png", "0xabc"},
	})
	want := []Row{{UUID: idA, Title: "T", Description: "D", ProjectImage: "img.png", Address: "0xabc"}}
	if !reflect.DeepEqual(rows, want) {
		t.Fatalf("Normalize = %+v, want %+v", rows, want)
	}
}

func TestNormalizeHeaderCaseInsensitive(t *testing.T) {
	rows := Normalize([][]string{
		{"UUID", " Title ", "Image", "ADDRESS"},
		{idA, "Project", "logo.svg", "0x1"},
	})
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0].Title != "Project" || rows[0].ProjectImage != "logo.svg" || rows[0].Address != "0x1" {
		t.Fatalf("unexpected row %+v", rows[0])
	}
}

func TestNormalizeDropsRowsWithoutID(t *testing.T) {
	rows := Normalize([][]string{
		header,
		{"", "empty id"},
		{"nope", "bad id"},
		{"https://example.org/grants/nope", "bad url"},
		{"https://example.org/grants/" + idB, "from url", "", "", "0x2"},
	})
	if len(rows) != 1 || rows[0].UUID != idB || rows[0].Title != "from url" {
		t.Fatalf("expected only the url row, got %+v", rows)
	}
}

func TestNormalizeShortAndLongRows(t *testing.T) {
	rows := Normalize([][]string{
		header,
		{idA, "short"},
		{idB, "long", "d", "i", "0x2", "extra", "cells"},
	})
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Address != "" || rows[0].Description != "" {
		t.Fatalf("missing cells should be empty, got %+v", rows[0])
	}
	if rows[1].Address != "0x2" {
		t.Fatalf("unexpected long row %+v", rows[1])
	}
}

func TestNormalizeLastDuplicateWins(t *testing.T) {
	rows := Normalize([][]string{
		header,
		{idA, "first", "", "", "0x1"},
		{idB, "other", "", "", "0x1"},
		{idA, "same id other address", "", "", "0x2"},
		{idA, "second", "", "", "0x1"},
		{"https://example.org/g/" + idA, "third", "", "", "0x1"},
	})

	seen := map[rowKey]int{}
	for _, r := range rows {
		seen[rowKey{r.UUID, r.Address}]++
	}
	for k, n := range seen {
		if n != 1 {
			t.Fatalf("key %v appears %d times", k, n)
		}
	}

	titles := make([]string, len(rows))
	for i, r := range rows {
		titles[i] = r.Title
	}
	want := []string{"other", "same id other address", "third"}
	if !reflect.DeepEqual(titles, want) {
		t.Fatalf("titles = %v, want %v", titles, want)
	}
}

func TestNormalizeEmpty(t *testing.T) {
	if rows := Normalize(nil); rows == nil || len(rows) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", rows)
	}
	if rows := Normalize([][]string{header}); len(rows) != 0 {
		t.Fatalf("expected no rows for header only, got %+v", rows)
	}
}

func TestSearch(t *testing.T) {
	rows := []Row{{Title: "Solar Farm"}, {Title: "Block Explorer"}, {Title: "solarpunk dao"}}
	got := Search(rows, " SOLAR ")
	if len(got) != 2 {
		t.Fatalf("expected 2 matches, got %+v", got)
	}
	if len(Search(rows, "")) != 3 {
		t.Fatal("empty term should keep all rows")
	}
}
