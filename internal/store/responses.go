package store

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"ai-analytics/internal/logger"
	"ai-analytics/internal/tokens"
)

// HistoryEntry is one persisted request/response interaction. Entries are
// immutable once written; the only mutation is whole-record deletion.
type HistoryEntry struct {
	ID         string      `json:"id"`
	Timestamp  string      `json:"timestamp"`
	Model      string      `json:"model"`
	Provider   string      `json:"provider,omitempty"`
	PromptName string      `json:"promptName,omitempty"`
	Prompt     string      `json:"prompt"`
	InputText  string      `json:"inputText"`
	Response   string      `json:"response"`
	Tokens     tokens.Info `json:"tokens"`
	AutoSaved  bool        `json:"autoSaved,omitempty"`
}

type responsesDocument struct {
	Responses []HistoryEntry `json:"responses"`
}

// ListOptions filters, sorts and paginates history queries.
type ListOptions struct {
	Model     string
	Prompt    string
	DateFrom  string
	DateTo    string
	SortBy    string
	SortOrder string
	Limit     int
	Offset    int
}

// Page is one page of history results.
type Page struct {
	Responses []HistoryEntry `json:"responses"`
	Total     int            `json:"total"`
	Offset    int            `json:"offset"`
	Limit     int            `json:"limit"`
	HasMore   bool           `json:"hasMore"`
}

// HistoryStore is the append-only file-backed log of interactions.
type HistoryStore struct {
	mu   sync.Mutex
	path string
}

// NewHistoryStore opens (creating if needed) the responses document at path.
func NewHistoryStore(path string) (*HistoryStore, error) {
	if err := ensureFile(path, responsesDocument{Responses: []HistoryEntry{}}); err != nil {
		return nil, fmt.Errorf("failed to initialize responses file: %w", err)
	}
	return &HistoryStore{path: path}, nil
}

func (s *HistoryStore) load() responsesDocument {
	var doc responsesDocument
	if err := readJSONFile(s.path, &doc); err != nil {
		logger.Log.WithError(err).Error("Error reading responses file")
		return responsesDocument{Responses: []HistoryEntry{}}
	}
	return doc
}

// Append persists a new entry, assigning a time-derived id and timestamp
// when the entry does not carry them.
func (s *HistoryStore) Append(entry HistoryEntry) (*HistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.load()

	now := time.Now()
	if entry.ID == "" {
		entry.ID = strconv.FormatInt(now.UnixMilli(), 10)
		// two appends within the same millisecond fall back to nanoseconds
		for _, existing := range doc.Responses {
			if existing.ID == entry.ID {
				entry.ID = strconv.FormatInt(now.UnixNano(), 10)
				break
			}
		}
	}
	if entry.Timestamp == "" {
		entry.Timestamp = now.UTC().Format(time.RFC3339)
	}

	doc.Responses = append(doc.Responses, entry)
	if err := writeJSONFile(s.path, doc); err != nil {
		return nil, err
	}
	return &entry, nil
}

// Delete removes an entry by id, returning ErrNotFound if it does not exist.
func (s *HistoryStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.load()
	for i := range doc.Responses {
		if doc.Responses[i].ID == id {
			doc.Responses = append(doc.Responses[:i], doc.Responses[i+1:]...)
			return writeJSONFile(s.path, doc)
		}
	}
	return ErrNotFound
}

// List returns one page of entries matching the options.
func (s *HistoryStore) List(opts ListOptions) (*Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.load()
	responses := doc.Responses

	if opts.Model != "" {
		responses = filterEntries(responses, func(e HistoryEntry) bool {
			return strings.Contains(strings.ToLower(e.Model), strings.ToLower(opts.Model))
		})
	}
	if opts.Prompt != "" {
		needle := strings.ToLower(opts.Prompt)
		responses = filterEntries(responses, func(e HistoryEntry) bool {
			return strings.Contains(strings.ToLower(e.PromptName), needle) ||
				strings.Contains(strings.ToLower(e.Prompt), needle)
		})
	}
	if from, ok := parseQueryDate(opts.DateFrom, false); ok {
		responses = filterEntries(responses, func(e HistoryEntry) bool {
			return !entryTime(e).Before(from)
		})
	}
	if to, ok := parseQueryDate(opts.DateTo, true); ok {
		responses = filterEntries(responses, func(e HistoryEntry) bool {
			return !entryTime(e).After(to)
		})
	}

	sortEntries(responses, opts.SortBy, opts.SortOrder)

	total := len(responses)
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}

	end := offset + limit
	if offset > total {
		offset = total
	}
	if end > total {
		end = total
	}

	page := make([]HistoryEntry, end-offset)
	copy(page, responses[offset:end])

	return &Page{
		Responses: page,
		Total:     total,
		Offset:    opts.Offset,
		Limit:     limit,
		HasMore:   opts.Offset+limit < total,
	}, nil
}

func filterEntries(entries []HistoryEntry, keep func(HistoryEntry) bool) []HistoryEntry {
	out := entries[:0:0]
	for _, e := range entries {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}

func entryTime(e HistoryEntry) time.Time {
	t, err := time.Parse(time.RFC3339, e.Timestamp)
	if err != nil {
		return time.Time{}
	}
	return t
}

// parseQueryDate accepts RFC 3339 timestamps or bare dates; a bare dateTo
// is extended to the end of that day.
func parseQueryDate(s string, endOfDay bool) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, false
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Millisecond)
	}
	return t, true
}

func sortEntries(entries []HistoryEntry, sortBy, sortOrder string) {
	order := 1
	if sortOrder == "desc" {
		order = -1
	}

	switch sortBy {
	case "date":
		// ascending order keeps newest first, matching the historical API
		sort.SliceStable(entries, func(i, j int) bool {
			if order == 1 {
				return entryTime(entries[i]).After(entryTime(entries[j]))
			}
			return entryTime(entries[i]).Before(entryTime(entries[j]))
		})
	case "model":
		sort.SliceStable(entries, func(i, j int) bool {
			return order*strings.Compare(entries[i].Model, entries[j].Model) < 0
		})
	case "promptName":
		sort.SliceStable(entries, func(i, j int) bool {
			return order*strings.Compare(entries[i].PromptName, entries[j].PromptName) < 0
		})
	default:
		// newest first
		sort.SliceStable(entries, func(i, j int) bool {
			return entryTime(entries[i]).After(entryTime(entries[j]))
		})
	}
}
