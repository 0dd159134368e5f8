package integration_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mfenderov/contacts/internal/contact"
	"github.com/mfenderov/contacts/internal/storage"
)

const addressBook = `Fred Flintstone
    Org: Bedrock Quarry
    Role: Operator
    Phone: 555-1234
    - Likes bowling

Wilma Flintstone
    DOB: 1990-01-15
    Org: Bedrock Times
    Org: Bedrock Quarry

Barney Rubble
    Nickname: Barn
    Role: Operator
    - Bowling partner of Fred
    - Lives next door
`

// TestWorkflow_LoadFilterExport walks the full path a user takes:
// 1. Load the text file
// 2. Filter it
// 3. Export a snapshot
// 4. Filter the snapshot and get the same answer
func TestWorkflow_LoadFilterExport(t *testing.T) {
	ctx := context.Background()
	tmpDir := t.TempDir()

	path := filepath.Join(tmpDir, "contacts.txt")
	if err := os.WriteFile(path, []byte(addressBook), 0600); err != nil {
		t.Fatalf("failed to write contacts file: %v", err)
	}

	// === Load ===

	book, err := contact.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(book.Contacts) != 3 {
		t.Fatalf("expected 3 contacts, got %d", len(book.Contacts))
	}
	if len(book.Diagnostics) != 0 {
		t.Errorf("expected a clean file, got %v", book.Diagnostics)
	}

	// === Filter ===

	operators := contact.Filter(book.Contacts, []string{"operator", "BOWLING"})
	if len(operators) != 2 {
		t.Fatalf("expected Fred and Barney, got %d contacts", len(operators))
	}

	wilma := contact.Filter(book.Contacts, []string{"wilma"})[0]
	if got := wilma.OrgAndRole(); got != " (Bedrock Quarry,Bedrock Times)" {
		t.Errorf("unexpected org summary: %q", got)
	}
	if dob := wilma.Get("DOB"); len(dob) != 1 || !strings.HasPrefix(dob[0], "1990-01-15 (aged ") {
		t.Errorf("expected age annotation, got %v", dob)
	}

	// === Export ===

	store, err := storage.NewStore(filepath.Join(tmpDir, "snapshot.db"))
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	defer store.Close()

	if err := store.ReplaceContacts(ctx, path, book.Contacts); err != nil {
		t.Fatalf("ReplaceContacts failed: %v", err)
	}

	// === Filter the snapshot ===

	restored, err := store.ListContacts(ctx)
	if err != nil {
		t.Fatalf("ListContacts failed: %v", err)
	}

	fromSnapshot := contact.Filter(restored, []string{"operator", "BOWLING"})
	if len(fromSnapshot) != len(operators) {
		t.Fatalf("snapshot gave %d matches, file gave %d", len(fromSnapshot), len(operators))
	}
	for i := range operators {
		if fromSnapshot[i].Name != operators[i].Name {
			t.Errorf("match %d: snapshot %q, file %q", i, fromSnapshot[i].Name, operators[i].Name)
		}
		if fromSnapshot[i].OrgAndRole() != operators[i].OrgAndRole() {
			t.Errorf("match %d: summaries differ", i)
		}
	}

	meta, err := store.Meta(ctx)
	if err != nil {
		t.Fatalf("Meta failed: %v", err)
	}
	if meta.Source != path {
		t.Errorf("expected source %q, got %q", path, meta.Source)
	}
}

// TestWorkflow_RecoversFromBadLines checks that a damaged file still loads
// everything that can be understood.
func TestWorkflow_RecoversFromBadLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contacts.txt")
	damaged := "    Phone: 000\n" + addressBook + "    this line has no colon\n"
	if err := os.WriteFile(path, []byte(damaged), 0600); err != nil {
		t.Fatalf("failed to write contacts file: %v", err)
	}

	book, err := contact.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(book.Contacts) != 3 {
		t.Errorf("expected 3 contacts, got %d", len(book.Contacts))
	}
	if len(book.Diagnostics) != 2 {
		t.Errorf("expected 2 diagnostics, got %v", book.Diagnostics)
	}

	barney := contact.Filter(book.Contacts, []string{"barney"})
	if len(barney) != 1 || len(barney[0].Notes) != 2 || len(barney[0].Attributes) != 2 {
		t.Errorf("Barney should be intact, got %+v", barney)
	}
}
