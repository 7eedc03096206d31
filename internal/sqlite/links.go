package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mesh-intelligence/pensieve/pkg/types"
)

// CreateLink records a typed directed edge between two existing entries.
// Both ids may be unique prefixes. Self-links return ErrInvalidLink, unknown
// relationships ErrInvalidRelationship, and an existing identical edge
// ErrDuplicateLink.
func (s *Store) CreateLink(sourceID, targetID, relationship, createdBy string) (*types.Link, error) {
	if !types.IsValidRelationship(relationship) {
		return nil, fmt.Errorf("%w: %q (valid: %s)",
			types.ErrInvalidRelationship, relationship, strings.Join(types.Relationships, ", "))
	}

	source, err := s.GetEntry(sourceID)
	if err != nil {
		return nil, fmt.Errorf("source: %w", err)
	}
	target, err := s.GetEntry(targetID)
	if err != nil {
		return nil, fmt.Errorf("target: %w", err)
	}
	if source.EntryID == target.EntryID {
		return nil, fmt.Errorf("%w: source and target are the same entry", types.ErrInvalidLink)
	}

	var dup int
	err = s.db.QueryRow(
		"SELECT 1 FROM entry_links WHERE source_entry_id = ? AND target_entry_id = ? AND relationship = ?",
		source.EntryID, target.EntryID, relationship,
	).Scan(&dup)
	if err == nil {
		return nil, fmt.Errorf("%w: %s -%s-> %s", types.ErrDuplicateLink,
			source.EntryID, relationship, target.EntryID)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("checking link uniqueness: %w", busyWrap(err))
	}

	link := &types.Link{
		LinkID:       generateID(),
		SourceID:     source.EntryID,
		TargetID:     target.EntryID,
		Relationship: relationship,
		CreatedAt:    time.Now().UTC().Truncate(time.Second),
		CreatedBy:    createdBy,
	}
	if link.CreatedBy == "" {
		link.CreatedBy = "unknown"
	}

	tx, err := s.begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO entry_links (id, source_entry_id, target_entry_id, relationship, created_at, created_by)
         VALUES (?, ?, ?, ?, ?, ?)`,
		link.LinkID, link.SourceID, link.TargetID, link.Relationship,
		link.CreatedAt.Format(time.RFC3339), link.CreatedBy,
	)
	if err != nil {
		// The pre-check above races with other writers; the UNIQUE index on
		// (source, target, relationship) is authoritative.
		if uniqueViolation(err) {
			return nil, fmt.Errorf("%w: %s -%s-> %s", types.ErrDuplicateLink,
				source.EntryID, relationship, target.EntryID)
		}
		return nil, fmt.Errorf("persisting link: %w", busyWrap(err))
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing link: %w", busyWrap(err))
	}
	return link, nil
}

// LinksFor returns every link touching the entry, outgoing first, each group
// ordered by creation time. The id may be a unique prefix.
func (s *Store) LinksFor(entryID string) ([]*types.Link, error) {
	entry, err := s.GetEntry(entryID)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(
		`SELECT id, source_entry_id, target_entry_id, relationship, created_at, created_by
         FROM entry_links
         WHERE source_entry_id = ? OR target_entry_id = ?
         ORDER BY source_entry_id = ? DESC, created_at, id`,
		entry.EntryID, entry.EntryID, entry.EntryID)
	if err != nil {
		return nil, fmt.Errorf("loading links: %w", busyWrap(err))
	}
	defer rows.Close()

	var links []*types.Link
	for rows.Next() {
		link, err := scanLink(rows)
		if err != nil {
			return nil, err
		}
		links = append(links, link)
	}
	return links, rows.Err()
}

// Related performs the one-hop expansion used by --follow-links: each link
// touching the entry paired with the entry at its other end. Traversal is
// deliberately bounded to direct neighbors.
func (s *Store) Related(entryID string) ([]*types.RelatedEntry, error) {
	entry, err := s.GetEntry(entryID)
	if err != nil {
		return nil, err
	}
	links, err := s.LinksFor(entry.EntryID)
	if err != nil {
		return nil, err
	}

	related := make([]*types.RelatedEntry, 0, len(links))
	for _, link := range links {
		direction := types.DirectionOut
		otherID := link.TargetID
		if link.TargetID == entry.EntryID {
			direction = types.DirectionIn
			otherID = link.SourceID
		}
		other, err := s.getEntryExact(otherID)
		if err != nil {
			return nil, fmt.Errorf("loading linked entry %s: %w", otherID, err)
		}
		related = append(related, &types.RelatedEntry{
			Link:      link,
			Direction: direction,
			Entry:     other,
		})
	}
	return related, nil
}

// scanLink hydrates one entry_links row.
func scanLink(row rowScanner) (*types.Link, error) {
	var link types.Link
	var createdAt string
	if err := row.Scan(&link.LinkID, &link.SourceID, &link.TargetID,
		&link.Relationship, &createdAt, &link.CreatedBy); err != nil {
		return nil, fmt.Errorf("scanning link row: %w", err)
	}
	parsed, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing link created_at %q: %w", createdAt, err)
	}
	link.CreatedAt = parsed
	return &link, nil
}
