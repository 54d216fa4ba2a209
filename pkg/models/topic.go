package models

import (
	"database/sql"
	"time"
)

// Category identifies one of the four preparation tracks.
type Category string

const (
	CategoryDSA  Category = "DSA"
	CategoryAPTI Category = "APTI"
	CategoryCS   Category = "CS"
	CategoryDEV  Category = "DEV"
)

// Categories lists the tracks in canonical order. Allocation and iteration
// must always use this order so plan output stays deterministic.
var Categories = []Category{CategoryDSA, CategoryAPTI, CategoryCS, CategoryDEV}

// IsValidCategory reports whether s names a known track.
func IsValidCategory(s string) bool {
	switch Category(s) {
	case CategoryDSA, CategoryAPTI, CategoryCS, CategoryDEV:
		return true
	}
	return false
}

// Topic represents one node of the preparation syllabus tree.
// Root nodes have no parent; the tree is seeded once and read-only afterwards.
type Topic struct {
	ID              int64         `json:"id" db:"id"`
	Name            string        `json:"name" db:"name"`
	Category        Category      `json:"category" db:"category"`
	ImportanceScore float64       `json:"importance_score" db:"importance_score"`
	ParentID        sql.NullInt64 `json:"parent_id" db:"parent_id"`
	CreatedAt       time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at" db:"updated_at"`
}

// TopicTree is an arena of topics indexed by id. Child lists are rebuilt
// from parent ids rather than stored as object references, so the structure
// stays acyclic by construction.
type TopicTree struct {
	ByID     map[int64]*Topic
	Children map[int64][]int64
	Roots    []int64
}

// NewTopicTree builds the arena and child index from a flat topic list.
// Input order is preserved within each child list and the root list.
func NewTopicTree(topics []Topic) *TopicTree {
	tree := &TopicTree{
		ByID:     make(map[int64]*Topic, len(topics)),
		Children: make(map[int64][]int64),
	}
	for i := range topics {
		t := &topics[i]
		tree.ByID[t.ID] = t
	}
	for i := range topics {
		t := &topics[i]
		if t.ParentID.Valid {
			if _, ok := tree.ByID[t.ParentID.Int64]; ok {
				tree.Children[t.ParentID.Int64] = append(tree.Children[t.ParentID.Int64], t.ID)
				continue
			}
		}
		tree.Roots = append(tree.Roots, t.ID)
	}
	return tree
}
