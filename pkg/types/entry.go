package types

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Entry statuses.
const (
	StatusActive   = "active"
	StatusArchived = "archived"
)

// validStatuses is the set of recognized entry statuses.
var validStatuses = map[string]bool{
	StatusActive:   true,
	StatusArchived: true,
}

// IsValidStatus reports whether s is a recognized entry status.
func IsValidStatus(s string) bool {
	return validStatuses[s]
}

// Entry is an immutable, timestamped record conforming to a template
// version. FieldValues and CreatedAt never change after creation; only
// Status, the tag set, and link-graph membership are mutable.
type Entry struct {
	EntryID         string           `json:"id"`
	TemplateID      string           `json:"template_id"`
	TemplateVersion int              `json:"template_version"`
	Agent           string           `json:"agent"`
	Project         string           `json:"project"`
	CreatedAt       time.Time        `json:"created_at"`
	FieldValues     map[string]Value `json:"field_values"`
	Tags            []string         `json:"tags"`
	Status          string           `json:"status"`
}

// NormalizeTags trims, deduplicates, and sorts a tag list. Empty tags are
// dropped; tags longer than 50 characters are rejected.
func NormalizeTags(tags []string) ([]string, error) {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if len(tag) > 50 {
			return nil, fmt.Errorf("%w: tag %q exceeds 50 characters", ErrInvalidValue, tag)
		}
		if seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	sort.Strings(out)
	return out, nil
}

// MergeTags returns the set union of existing and added, sorted. Idempotent.
func MergeTags(existing, added []string) []string {
	seen := make(map[string]bool, len(existing)+len(added))
	out := make([]string, 0, len(existing)+len(added))
	for _, lists := range [][]string{existing, added} {
		for _, tag := range lists {
			if tag == "" || seen[tag] {
				continue
			}
			seen[tag] = true
			out = append(out, tag)
		}
	}
	sort.Strings(out)
	return out
}

// RemoveTags returns existing minus removed, sorted. Removing a tag that is
// not present is a no-op.
func RemoveTags(existing, removed []string) []string {
	drop := make(map[string]bool, len(removed))
	for _, tag := range removed {
		drop[tag] = true
	}
	out := make([]string, 0, len(existing))
	for _, tag := range existing {
		if !drop[tag] {
			out = append(out, tag)
		}
	}
	sort.Strings(out)
	return out
}

// HasTag reports whether the entry carries the given tag.
func (e *Entry) HasTag(tag string) bool {
	for _, t := range e.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
