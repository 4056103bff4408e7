package model

import (
	"errors"
	"fmt"
)

// ErrUnknownRelation is returned when a relation name was never declared.
var ErrUnknownRelation = errors.New("unknown relation")

// RelationKind distinguishes the two association shapes.
type RelationKind int

const (
	// BelongsToOne relations hold the foreign key on the owning record.
	BelongsToOne RelationKind = iota
	// HasManyKind relations hold the foreign key on the related records.
	HasManyKind
)

func (k RelationKind) String() string {
	if k == BelongsToOne {
		return "belongs_to"
	}
	return "has_many"
}

// Relation is a named association between two schemas.
type Relation struct {
	Name       string
	Kind       RelationKind
	Target     *Schema
	ForeignKey string
}

// BelongsTo declares that records of s reference one target record through
// foreignKey, a column of s.
func (s *Schema) BelongsTo(name string, target *Schema, foreignKey string) *Schema {
	s.relations[name] = &Relation{Name: name, Kind: BelongsToOne, Target: target, ForeignKey: foreignKey}
	return s
}

// HasMany declares that records of target reference s through foreignKey, a
// column of target.
func (s *Schema) HasMany(name string, target *Schema, foreignKey string) *Schema {
	s.relations[name] = &Relation{Name: name, Kind: HasManyKind, Target: target, ForeignKey: foreignKey}
	return s
}

// Relation looks up a declared relation.
func (s *Schema) Relation(name string) (*Relation, error) {
	rel, ok := s.relations[name]
	if !ok {
		return nil, fmt.Errorf("%s.%s: %w", s.name, name, ErrUnknownRelation)
	}
	return rel, nil
}
