package store

import (
	"fmt"
	"sync"

	"ai-analytics/internal/logger"
)

// PromptTemplate is a named reusable system prompt.
type PromptTemplate struct {
	Name string `json:"name"`
	Text string `json:"text"`
}

type promptsDocument struct {
	Prompts []PromptTemplate `json:"prompts"`
}

// PromptStore is the file-backed collection of prompt templates.
type PromptStore struct {
	mu   sync.Mutex
	path string
}

// NewPromptStore opens (creating if needed) the prompts document at path.
func NewPromptStore(path string) (*PromptStore, error) {
	if err := ensureFile(path, promptsDocument{Prompts: []PromptTemplate{}}); err != nil {
		return nil, fmt.Errorf("failed to initialize prompts file: %w", err)
	}
	return &PromptStore{path: path}, nil
}

// load reads the document, degrading to an empty one on read errors.
func (s *PromptStore) load() promptsDocument {
	var doc promptsDocument
	if err := readJSONFile(s.path, &doc); err != nil {
		logger.Log.WithError(err).Error("Error reading prompts file")
		return promptsDocument{Prompts: []PromptTemplate{}}
	}
	return doc
}

// List returns all prompt templates.
func (s *PromptStore) List() ([]PromptTemplate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc := s.load()
	if doc.Prompts == nil {
		doc.Prompts = []PromptTemplate{}
	}
	return doc.Prompts, nil
}

// Get returns the prompt with the given name, or ErrNotFound.
func (s *PromptStore) Get(name string) (*PromptTemplate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc := s.load()
	for i := range doc.Prompts {
		if doc.Prompts[i].Name == name {
			p := doc.Prompts[i]
			return &p, nil
		}
	}
	return nil, ErrNotFound
}

// Add creates a new prompt; the name must be unique.
func (s *PromptStore) Add(name, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc := s.load()
	for i := range doc.Prompts {
		if doc.Prompts[i].Name == name {
			return ErrDuplicate
		}
	}
	doc.Prompts = append(doc.Prompts, PromptTemplate{Name: name, Text: text})
	return writeJSONFile(s.path, doc)
}

// Update overwrites the text of an existing prompt.
func (s *PromptStore) Update(name, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc := s.load()
	for i := range doc.Prompts {
		if doc.Prompts[i].Name == name {
			doc.Prompts[i].Text = text
			return writeJSONFile(s.path, doc)
		}
	}
	return ErrNotFound
}

// Delete removes a prompt by name.
func (s *PromptStore) Delete(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc := s.load()
	for i := range doc.Prompts {
		if doc.Prompts[i].Name == name {
			doc.Prompts = append(doc.Prompts[:i], doc.Prompts[i+1:]...)
			return writeJSONFile(s.path, doc)
		}
	}
	return ErrNotFound
}
