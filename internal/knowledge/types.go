package knowledge

import (
	"fmt"
	"strings"
	"time"
)

// Moderation status values for knowledge items and contributions.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Reference records the provenance of an item produced from online search.
type Reference struct {
	URL   string `json:"url"`
	Title string `json:"title,omitempty"`
}

// Item is a single question/answer unit. Approved items live in the dataset
// snapshot and feed the retrieval index; pending items live in the
// contribution snapshot with the same shape.
type Item struct {
	ID         string      `json:"id"`
	Title      string      `json:"title,omitempty"`
	Question   string      `json:"question"`
	Answer     string      `json:"answer"`
	Category   string      `json:"category,omitempty"`
	Difficulty string      `json:"difficulty,omitempty"`
	Tags       []string    `json:"tags,omitempty"`
	Author     string      `json:"author,omitempty"`
	Source     string      `json:"source,omitempty"`
	Domain     string      `json:"domain,omitempty"`
	Type       string      `json:"type,omitempty"`
	Language   string      `json:"language,omitempty"`
	Status     string      `json:"status"`
	Confidence float64     `json:"confidence,omitempty"`
	References []Reference `json:"references,omitempty"`
	Content    string      `json:"content,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// CorpusText derives the indexable text for an item.
func (it Item) CorpusText() string {
	return fmt.Sprintf("Question: %s\nAnswer: %s",
		strings.TrimSpace(it.Question), strings.TrimSpace(it.Answer))
}

// Entry is the per-position index metadata, addressable by result position.
type Entry struct {
	ID       string
	Question string
	Answer   string
	Category string
}

// Hit is a retrieval result: an entry with its cosine similarity score.
type Hit struct {
	Entry Entry
	Score float64
}
