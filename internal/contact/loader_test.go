package contact_test

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/google/go-cmp/cmp"
	"github.com/mfenderov/contacts/internal/contact"
)

const flintstones = `Fred Flintstone
    Org: Bedrock Quarry
    Role: Operator
    - Likes bowling
Wilma Flintstone
    DOB: 1990-01-15
`

func parse(t *testing.T, input string) *contact.Book {
	t.Helper()
	book, err := contact.Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return book
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "contacts.txt")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write contacts file: %v", err)
	}
	return path
}

func TestParse_WellFormed(t *testing.T) {
	book := parse(t, flintstones)

	want := []contact.Contact{
		{
			Name: "Fred Flintstone",
			Attributes: []contact.Attribute{
				{Key: "Org", Value: "Bedrock Quarry"},
				{Key: "Role", Value: "Operator"},
			},
			Notes: []string{"Likes bowling"},
		},
		{
			Name:       "Wilma Flintstone",
			Attributes: []contact.Attribute{{Key: "DOB", Value: "1990-01-15"}},
			Notes:      []string{},
		},
	}

	if diff := cmp.Diff(want, book.Contacts); diff != "" {
		t.Errorf("contacts mismatch (-want +got):\n%s", diff)
	}
	if len(book.Diagnostics) != 0 {
		t.Errorf("expected no diagnostics, got %v", book.Diagnostics)
	}
}

func TestParse_LineRules(t *testing.T) {
	input := "Alice Example   \n" +
		"\n" +
		"\tPhone: 555: ext 9\n" +
		"    Phone: 777\n" +
		"    Empty:\n" +
		"       \n" +
		"    -  spaced note  \n" +
		"    -\n" +
		"    - \n" +
		"    -not-a-note: x\n" +
		"Bob\n"

	book := parse(t, input)

	want := []contact.Contact{
		{
			Name: "Alice Example",
			Attributes: []contact.Attribute{
				{Key: "Phone", Value: "555: ext 9"},
				{Key: "Phone", Value: "777"},
				{Key: "Empty", Value: ""},
				{Key: "-not-a-note", Value: "x"},
			},
			Notes: []string{"spaced note"},
		},
		{Name: "Bob", Attributes: []contact.Attribute{}, Notes: []string{}},
	}

	if diff := cmp.Diff(want, book.Contacts); diff != "" {
		t.Errorf("contacts mismatch (-want +got):\n%s", diff)
	}
	if len(book.Diagnostics) != 0 {
		t.Errorf("expected no diagnostics, got %v", book.Diagnostics)
	}
}

func TestParse_MalformedLines(t *testing.T) {
	input := "    Orphan: value\n" +
		"Fred Flintstone\n" +
		"    no colon here\n" +
		"    Org: Bedrock Quarry\n"

	book := parse(t, input)

	if len(book.Contacts) != 1 {
		t.Fatalf("expected 1 contact, got %d", len(book.Contacts))
	}
	fred := book.Contacts[0]
	if fred.Name != "Fred Flintstone" {
		t.Errorf("expected Fred Flintstone, got %q", fred.Name)
	}
	if diff := cmp.Diff([]contact.Attribute{{Key: "Org", Value: "Bedrock Quarry"}}, fred.Attributes); diff != "" {
		t.Errorf("attributes mismatch (-want +got):\n%s", diff)
	}

	if len(book.Diagnostics) != 2 {
		t.Fatalf("expected 2 diagnostics, got %d: %v", len(book.Diagnostics), book.Diagnostics)
	}

	orphan := book.Diagnostics[0]
	if orphan.Line != 1 || !errors.Is(orphan, contact.ErrNoCurrentContact) {
		t.Errorf("unexpected orphan diagnostic: %+v", orphan)
	}
	bad := book.Diagnostics[1]
	if bad.Line != 3 || !errors.Is(bad, contact.ErrBadDetails) || bad.Text != "no colon here" {
		t.Errorf("unexpected bad-details diagnostic: %+v", bad)
	}
	if !strings.Contains(bad.Error(), "line 3") {
		t.Errorf("diagnostic message should carry the line number, got %q", bad.Error())
	}
}

func TestParse_Empty(t *testing.T) {
	book := parse(t, "\n\n   \n")
	if book.Contacts == nil || len(book.Contacts) != 0 {
		t.Errorf("expected empty non-nil contact list, got %#v", book.Contacts)
	}
}

func TestParse_CRLF(t *testing.T) {
	book := parse(t, "Fred\r\n    Org: Quarry\r\n")
	if len(book.Contacts) != 1 || book.Contacts[0].Name != "Fred" {
		t.Fatalf("unexpected contacts: %#v", book.Contacts)
	}
	if got := book.Contacts[0].Get("Org"); len(got) != 1 || got[0] != "Quarry" {
		t.Errorf("Get(Org) = %v, want [Quarry]", got)
	}
}

func TestParse_LongLines(t *testing.T) {
	long := strings.Repeat("x", 2<<20)
	input := "Fred\n    Org: Quarry\n    - " + long + "\n    Bio: " + long + "\nWilma\n    - Likes shopping"

	book := parse(t, input)

	if len(book.Contacts) != 2 {
		t.Fatalf("expected 2 contacts, got %d", len(book.Contacts))
	}
	fred := book.Contacts[0]
	if len(fred.Notes) != 1 || fred.Notes[0] != long {
		t.Errorf("expected the long note to survive intact, got %d notes", len(fred.Notes))
	}
	if got := fred.Get("Bio"); len(got) != 1 || len(got[0]) != len(long) {
		t.Errorf("expected the long value to survive intact")
	}
	if got := book.Contacts[1].Notes; len(got) != 1 || got[0] != "Likes shopping" {
		t.Errorf("expected note on the unterminated last line, got %v", got)
	}
	if len(book.Diagnostics) != 0 {
		t.Errorf("unexpected diagnostics: %v", book.Diagnostics)
	}
}

func TestParse_ReadError(t *testing.T) {
	readErr := errors.New("disk on fire")

	book, err := contact.Parse(iotest.ErrReader(readErr))
	if !errors.Is(err, readErr) {
		t.Errorf("expected read error, got %v", err)
	}
	if book != nil {
		t.Errorf("expected no book on read failure, got %+v", book)
	}
}

func TestParse_RecordCounts(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 25; i++ {
		sb.WriteString("Person " + string(rune('A'+i)) + "\n")
		for j := 0; j < i%4; j++ {
			sb.WriteString("    Key: value\n")
		}
		for j := 0; j < i%3; j++ {
			sb.WriteString("    - note\n")
		}
	}

	book := parse(t, sb.String())
	if len(book.Contacts) != 25 {
		t.Fatalf("expected 25 contacts, got %d", len(book.Contacts))
	}
	for i, c := range book.Contacts {
		if len(c.Attributes) != i%4 {
			t.Errorf("%s: expected %d attributes, got %d", c.Name, i%4, len(c.Attributes))
		}
		if len(c.Notes) != i%3 {
			t.Errorf("%s: expected %d notes, got %d", c.Name, i%3, len(c.Notes))
		}
	}
}

func TestLoad_Idempotent(t *testing.T) {
	path := writeFile(t, flintstones)

	first, err := contact.Load(path)
	if err != nil {
		t.Fatalf("first Load failed: %v", err)
	}
	second, err := contact.Load(path)
	if err != nil {
		t.Fatalf("second Load failed: %v", err)
	}

	if diff := cmp.Diff(first.Contacts, second.Contacts); diff != "" {
		t.Errorf("loads differ (-first +second):\n%s", diff)
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := contact.Load(filepath.Join(t.TempDir(), "missing.txt"))
	if !errors.Is(err, contact.ErrFileNotFound) {
		t.Fatalf("expected ErrFileNotFound, got %v", err)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected error to wrap fs.ErrNotExist, got %v", err)
	}
}

func TestLoad_PermissionDenied(t *testing.T) {
	if runtime.GOOS == "windows" || os.Getuid() == 0 {
		t.Skip("permission bits are not enforced here")
	}

	path := writeFile(t, flintstones)
	if err := os.Chmod(path, 0000); err != nil {
		t.Fatalf("chmod failed: %v", err)
	}

	_, err := contact.Load(path)
	if !errors.Is(err, contact.ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
}

func TestLoad_EndToEnd(t *testing.T) {
	book, err := contact.Load(writeFile(t, flintstones))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	fred := contact.Filter(book.Contacts, []string{"fred"})
	if len(fred) != 1 || fred[0].Name != "Fred Flintstone" {
		t.Fatalf("expected only Fred, got %v", names(fred))
	}
	if len(fred[0].Notes) != 1 {
		t.Errorf("expected 1 note, got %d", len(fred[0].Notes))
	}
	if got := fred[0].OrgAndRole(); got != " (Operator at Bedrock Quarry)" {
		t.Errorf("OrgAndRole() = %q", got)
	}

	if got := contact.Filter(book.Contacts, []string{"flintstone"}); len(got) != 2 {
		t.Errorf("expected both contacts, got %v", names(got))
	}

	bowling := contact.Filter(book.Contacts, []string{"bowling"})
	if diff := cmp.Diff([]string{"Fred Flintstone"}, names(bowling)); diff != "" {
		t.Errorf("bowling mismatch (-want +got):\n%s", diff)
	}
}
