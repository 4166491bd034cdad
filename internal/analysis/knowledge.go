package analysis

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"
)

const previewLen = 400

// Document is one knowledge-base passage about a place.
type Document struct {
	DocType  string `yaml:"doc_type"`
	District string `yaml:"district"`
	Content  string `yaml:"content"`

	terms map[string]struct{}
}

// KnowledgeBase ranks local documents against fixed per-district queries.
// A nil *KnowledgeBase is valid and reports that no context is available.
type KnowledgeBase struct {
	docs []Document
}

// LoadKnowledgeBase reads a YAML stream of documents from path. The file may
// hold a single list or several list documents separated by "---".
func LoadKnowledgeBase(path string) (*KnowledgeBase, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open knowledge base: %w", err)
	}
	defer f.Close()
	return ParseKnowledgeBase(f)
}

// ParseKnowledgeBase decodes documents from r.
func ParseKnowledgeBase(r io.Reader) (*KnowledgeBase, error) {
	dec := yaml.NewDecoder(r)
	kb := &KnowledgeBase{}
	for {
		var batch []Document
		err := dec.Decode(&batch)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode knowledge base: %w", err)
		}
		for _, d := range batch {
			if strings.TrimSpace(d.Content) == "" {
				continue
			}
			d.terms = termSet(d.Content + " " + d.District + " " + d.DocType)
			kb.docs = append(kb.docs, d)
		}
	}
	return kb, nil
}

// Len reports the number of indexed documents.
func (kb *KnowledgeBase) Len() int {
	if kb == nil {
		return 0
	}
	return len(kb.docs)
}

// Search returns up to k documents sharing the most terms with query.
// Documents with no shared term are never returned.
func (kb *KnowledgeBase) Search(query string, k int) []Document {
	if kb == nil || k <= 0 {
		return nil
	}
	q := termSet(query)

	type hit struct {
		doc   Document
		score int
	}
	var hits []hit
	for _, d := range kb.docs {
		score := 0
		for t := range q {
			if _, ok := d.terms[t]; ok {
				score++
			}
		}
		if score > 0 {
			hits = append(hits, hit{d, score})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].score > hits[j].score })

	if len(hits) > k {
		hits = hits[:k]
	}
	out := make([]Document, len(hits))
	for i, h := range hits {
		out[i] = h.doc
	}
	return out
}

// Context gathers up to k passages for each of four fixed questions about a
// district and renders them as one prompt section.
func (kb *KnowledgeBase) Context(district string, k int) string {
	if kb == nil {
		return "RAG database not available"
	}

	queries := []string{
		district + " risk factors vulnerability hazards",
		district + " historical events disasters",
		district + " geography topography elevation",
		district + " flood cloudburst patterns",
	}

	var b strings.Builder
	fmt.Fprintf(&b, "CONTEXT FOR %s:\n\n", strings.ToUpper(district))
	found := false
	for i, q := range queries {
		docs := kb.Search(q, k)
		if len(docs) == 0 {
			continue
		}
		found = true
		fmt.Fprintf(&b, "Section %d (%s):\n", i+1, q)
		for _, d := range docs {
			docType := d.DocType
			if docType == "" {
				docType = "Unknown"
			}
			fmt.Fprintf(&b, "- From %s: %s...\n", docType, truncate(d.Content, previewLen))
		}
		b.WriteString("\n")
	}

	if !found {
		return "No relevant information found for " + district
	}
	return b.String()
}

func termSet(s string) map[string]struct{} {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if len(f) < 3 {
			continue
		}
		set[f] = struct{}{}
	}
	return set
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
