package domain

import "time"

// PromptVersion is one immutable revision of a prompt.
// Edits never mutate text in place: each edit appends a new version to the
// chain identified by RootID and moves the latest flag to it.
type PromptVersion struct {
	ID          string     `json:"id"`
	RootID      string     `json:"root_id"` // ID of the first version in the chain; equals ID for that version
	Version     int        `json:"version"` // 1-based, strictly increasing per chain
	IsLatest    bool       `json:"is_latest"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Text        string     `json:"text"`
	FolderID    string     `json:"folder_id,omitempty"`
	TimesUsed   int        `json:"times_used"`
	LastUsedAt  *time.Time `json:"last_used_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// IsRoot returns true if this record is the first version of its chain.
func (p *PromptVersion) IsRoot() bool {
	return p.ID == p.RootID
}

// NextVersion builds the successor record for an edit.
// Usage counters carry forward unchanged; content fields come from the caller.
func (p *PromptVersion) NextVersion(newID, title, description, text string) *PromptVersion {
	return &PromptVersion{
		ID:          newID,
		RootID:      p.RootID,
		Version:     p.Version + 1,
		IsLatest:    true,
		Title:       title,
		Description: description,
		Text:        text,
		FolderID:    p.FolderID,
		TimesUsed:   p.TimesUsed,
		LastUsedAt:  p.LastUsedAt,
		CreatedAt:   time.Now(),
	}
}

// MarkUsed bumps the usage counter and stamps the last-used time.
func (p *PromptVersion) MarkUsed() {
	now := time.Now()
	p.TimesUsed++
	p.LastUsedAt = &now
}
