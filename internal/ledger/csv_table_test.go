package ledger

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestCSVTable_AbsentStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feedback.csv")
	l := New(NewCSVTable(path))

	v, err := l.GetVote("u1", "p1")
	if err != nil || v != None {
		t.Fatalf("GetVote on absent store = %s, %v", v, err)
	}
	list, err := l.ListForUser("u1")
	if err != nil || len(list) != 0 {
		t.Fatalf("ListForUser on absent store = %v, %v", list, err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("reads must not create the store")
	}

	if err := l.SetVote("u1", "p1", Like); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("store should exist after first write: %v", err)
	}
}

func TestCSVTable_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "feedback.csv")
	table := NewCSVTable(path)

	want := []Entry{
		{UserID: "ai730048", ProductID: "10", Vote: Like},
		{UserID: "ai730048", ProductID: "NCT-01, \"quoted\"", Vote: Dislike},
		{UserID: "bx441092", ProductID: "10", Vote: Like},
	}
	if err := table.Save(want); err != nil {
		t.Fatal(err)
	}

	got, err := table.Load()
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("round trip = %v, want %v", got, want)
	}

	data, _ := os.ReadFile(path)
	if !strings.HasPrefix(string(data), "MUDID,Product_ID,Feedback\n") {
		t.Errorf("unexpected header: %q", data)
	}

	matches, _ := filepath.Glob(filepath.Join(filepath.Dir(path), "*.tmp"))
	if len(matches) != 0 {
		t.Errorf("temp files left behind: %v", matches)
	}
}

func TestCSVTable_DropsInvalidVotes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feedback.csv")
	content := "MUDID,Product_ID,Feedback\n" +
		"u1,p1,1\n" +
		"u1,p2,0\n" +
		"u1,p3,5\n" +
		"u1,p4,-1.0\n" +
		"\n"
	os.WriteFile(path, []byte(content), 0644)

	got, err := NewCSVTable(path).Load()
	if err != nil {
		t.Fatal(err)
	}
	want := []Entry{
		{UserID: "u1", ProductID: "p1", Vote: Like},
		{UserID: "u1", ProductID: "p4", Vote: Dislike},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Load = %v, want %v", got, want)
	}
}

func TestCSVTable_CorruptRows(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unparsable feedback", "MUDID,Product_ID,Feedback\nu1,p1,yes\n"},
		{"fractional feedback", "MUDID,Product_ID,Feedback\nu1,p1,0.5\n"},
		{"missing column", "MUDID,Product_ID\nu1,p1\n"},
		{"bad quoting", "MUDID,Product_ID,Feedback\nu1,\"p1,1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "feedback.csv")
			os.WriteFile(path, []byte(tt.content), 0644)

			if _, err := NewCSVTable(path).Load(); err == nil {
				t.Error("expected load error")
			}
		})
	}
}

func TestCSVTable_ColumnOrderAndBOM(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feedback.csv")
	os.WriteFile(path, []byte("\ufeffFeedback,MUDID,Product_ID\n-1,u1,p9\n"), 0644)

	got, err := NewCSVTable(path).Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0] != (Entry{UserID: "u1", ProductID: "p9", Vote: Dislike}) {
		t.Errorf("Load = %v", got)
	}
}

func TestCSVTable_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feedback.csv")
	os.WriteFile(path, nil, 0644)

	got, err := NewCSVTable(path).Load()
	if err != nil || len(got) != 0 {
		t.Errorf("empty file = %v, %v", got, err)
	}
}

func TestExport(t *testing.T) {
	table := NewCSVTable(filepath.Join(t.TempDir(), "feedback.csv"))
	l := New(table)
	l.SetVote("u1", "p1", Like)
	l.SetVote("u2", "p1", Dislike)
	l.SetVote("u1", "p2", Dislike)

	var user bytes.Buffer
	if err := l.ExportForUser(&user, "u1"); err != nil {
		t.Fatal(err)
	}
	wantUser := "MUDID,Product_ID,Feedback\nu1,p1,1\nu1,p2,-1\n"
	if user.String() != wantUser {
		t.Errorf("ExportForUser = %q, want %q", user.String(), wantUser)
	}

	var all bytes.Buffer
	if err := l.ExportAll(&all); err != nil {
		t.Fatal(err)
	}
	stored, _ := os.ReadFile(table.Path())
	if all.String() != string(stored) {
		t.Errorf("ExportAll should match the store byte for byte:\n%s\nvs\n%s", all.String(), stored)
	}

	var empty bytes.Buffer
	l.ExportForUser(&empty, "nobody")
	if empty.String() != "MUDID,Product_ID,Feedback\n" {
		t.Errorf("empty export = %q", empty.String())
	}
}
