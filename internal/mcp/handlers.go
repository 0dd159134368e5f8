package mcp

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mfenderov/contacts/internal/contact"
	"github.com/mfenderov/contacts/internal/render"
)

// ErrNoPatterns is returned when a search names no patterns.
var ErrNoPatterns = errors.New("at least one pattern is required")

// Handler answers contact lookups. The contacts file is re-read on every
// call so edits show up without restarting the server.
type Handler struct {
	file string
}

// NewHandler creates a handler reading the contacts file at path.
func NewHandler(path string) *Handler {
	return &Handler{file: path}
}

// Tools returns the list of available contact tools.
func (h *Handler) Tools() []Tool {
	return []Tool{
		{
			Name:        "search_contacts",
			Description: "Find contacts whose name, values or notes contain every pattern (case-insensitive)",
			InputSchema: InputSchema{
				Type: "object",
				Properties: map[string]Property{
					"patterns": {
						Type:        "array",
						Description: "Substrings that must all match",
						Items:       &Items{Type: "string"},
					},
				},
				Required: []string{"patterns"},
			},
		},
		{
			Name:        "open_contacts",
			Description: "Get contacts by exact name",
			InputSchema: InputSchema{
				Type: "object",
				Properties: map[string]Property{
					"names": {
						Type:        "array",
						Description: "Contact names to retrieve",
						Items:       &Items{Type: "string"},
					},
				},
				Required: []string{"names"},
			},
		},
		{
			Name:        "check_contacts",
			Description: "List lines of the contacts file that are skipped as malformed",
			InputSchema: InputSchema{Type: "object"},
		},
	}
}

// CallTool executes the named tool with the given arguments.
func (h *Handler) CallTool(name string, args json.RawMessage) (*ToolCallResult, error) {
	switch name {
	case "search_contacts":
		return h.searchContacts(args)
	case "open_contacts":
		return h.openContacts(args)
	case "check_contacts":
		return h.checkContacts()
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

func (h *Handler) searchContacts(args json.RawMessage) (*ToolCallResult, error) {
	var input SearchContactsInput
	if err := json.Unmarshal(args, &input); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}
	if len(input.Patterns) == 0 {
		return nil, ErrNoPatterns
	}

	book, err := contact.Load(h.file)
	if err != nil {
		return nil, err
	}

	return contactsResult(contact.Filter(book.Contacts, input.Patterns))
}

func (h *Handler) openContacts(args json.RawMessage) (*ToolCallResult, error) {
	var input OpenContactsInput
	if err := json.Unmarshal(args, &input); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}

	book, err := contact.Load(h.file)
	if err != nil {
		return nil, err
	}

	wanted := make(map[string]bool, len(input.Names))
	for _, n := range input.Names {
		wanted[n] = true
	}

	found := []contact.Contact{}
	for _, c := range book.Contacts {
		if wanted[c.Name] {
			found = append(found, c)
		}
	}

	return contactsResult(found)
}

func (h *Handler) checkContacts() (*ToolCallResult, error) {
	book, err := contact.Load(h.file)
	if err != nil {
		return nil, err
	}

	problems := make([]string, len(book.Diagnostics))
	for i, d := range book.Diagnostics {
		problems[i] = d.Error()
	}

	data, err := json.Marshal(map[string]any{
		"contacts": len(book.Contacts),
		"problems": problems,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal results: %w", err)
	}

	return textResult(string(data)), nil
}

func contactsResult(contacts []contact.Contact) (*ToolCallResult, error) {
	var buf bytes.Buffer
	if err := render.RenderJSON(&buf, contacts); err != nil {
		return nil, fmt.Errorf("failed to marshal results: %w", err)
	}
	return textResult(buf.String()), nil
}

func textResult(text string) *ToolCallResult {
	return &ToolCallResult{
		Content: []ContentBlock{{Type: "text", Text: text}},
	}
}
