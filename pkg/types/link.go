package types

import "time"

// Link relationships between entries.
const (
	RelAugments    = "augments"    // adds to an existing entry
	RelRelatesTo   = "relates_to"  // general relationship
	RelContradicts = "contradicts" // disputes the target entry
	RelSupersedes  = "supersedes"  // new entry replaces the old one
	RelDeprecates  = "deprecates"  // marks the target obsolete
)

// validRelationships is the set of recognized link relationships.
var validRelationships = map[string]bool{
	RelAugments:    true,
	RelRelatesTo:   true,
	RelContradicts: true,
	RelSupersedes:  true,
	RelDeprecates:  true,
}

// Relationships lists all recognized relationships for enumeration and
// error messages.
var Relationships = []string{
	RelAugments,
	RelRelatesTo,
	RelContradicts,
	RelSupersedes,
	RelDeprecates,
}

// IsValidRelationship reports whether rel is a recognized relationship.
func IsValidRelationship(rel string) bool {
	return validRelationships[rel]
}

// Link is a typed directed edge between two entries. Cycles are permitted;
// display traversal is bounded to one hop, so walks always terminate.
type Link struct {
	LinkID       string    `json:"id"`
	SourceID     string    `json:"source_entry_id"`
	TargetID     string    `json:"target_entry_id"`
	Relationship string    `json:"relationship"`
	CreatedAt    time.Time `json:"created_at"`
	CreatedBy    string    `json:"created_by"`
}

// Link traversal directions, as seen from the entry being expanded.
const (
	DirectionOut = "outgoing"
	DirectionIn  = "incoming"
)

// RelatedEntry is one neighbor discovered during one-hop link expansion.
type RelatedEntry struct {
	Link      *Link  `json:"link"`
	Direction string `json:"direction"`
	Entry     *Entry `json:"entry"`
}
