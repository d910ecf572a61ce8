// Package domain defines the normalized domain types for GitHub Projects v2 work tracking.
// These types represent the core concepts independent of the GitHub GraphQL API structure.
package domain

import (
	"encoding/json"
	"strconv"
	"time"
)

// Project represents a GitHub Project v2 instance.
type Project struct {
	ID     string // GitHub Project node ID
	Number int    // Project number within the owner's namespace
	Title  string // Project title
	Owner  string // Owner login (organization or user)
}

// FieldDef represents a project field definition with its metadata.
type FieldDef struct {
	ID      string   // GitHub field node ID
	Name    string   // Field name (e.g., "Status")
	Type    string   // Field type (e.g., "SINGLE_SELECT", "TEXT", etc.)
	Options []Option // Available options for SINGLE_SELECT fields
	Order   int      // Field order in the project (from API response order)
}

// Option represents a single option value for a SINGLE_SELECT field.
type Option struct {
	ID    string // GitHub option node ID
	Name  string // Option name displayed to users (e.g., "In Progress", "Done")
	Color string // Option color (e.g., "GREEN", "YELLOW")
	Order int    // Option order within the field (from API response order)
}

// StatusField is the project's Status field with its options in board order.
// The position of an option in Options is the ordinal used for sorting and grouping.
type StatusField struct {
	FieldID string
	Name    string
	Options []Option
}

// Index returns the board position of the named option, or -1.
func (f StatusField) Index(name string) int {
	for i, opt := range f.Options {
		if opt.Name == name {
			return i
		}
	}
	return -1
}

// View is a saved project view and its filter expression.
type View struct {
	Name   string
	Filter string
}

// Label is a repository label attached to an item.
type Label struct {
	Name  string `json:"name" yaml:"name"`
	Color string `json:"color,omitempty" yaml:"color,omitempty"` // 6 hex digits, display only
}

// Item represents a project item (Issue, PR, or Draft) in a normalized format.
// Items are built fresh on every fetch and never mutated by filters, sorts or groups.
type Item struct {
	ID           string                `json:"id" yaml:"id"`                     // ProjectV2Item node ID
	Number       int                   `json:"number,omitempty" yaml:"number"`   // 0 for drafts
	ContentType  string                `json:"type" yaml:"type"`                 // Issue, PullRequest, DraftIssue
	IssueType    string                `json:"issueType,omitempty" yaml:"issue_type,omitempty"`
	Title        string                `json:"title" yaml:"title"`
	State        string                `json:"state,omitempty" yaml:"state,omitempty"` // OPEN, CLOSED, MERGED
	Status       string                `json:"status,omitempty" yaml:"status,omitempty"`
	StatusIndex  int                   `json:"-" yaml:"-"` // -1 when Status is empty
	Assignees    []string              `json:"assignees,omitempty" yaml:"assignees,omitempty"`
	Labels       []Label               `json:"labels,omitempty" yaml:"labels,omitempty"`
	Fields       map[string]FieldValue `json:"fields,omitempty" yaml:"fields,omitempty"`
	ProjectID    string                `json:"projectId" yaml:"project_id"`
	ProjectTitle string                `json:"project" yaml:"project"`
	Repo         string                `json:"repo,omitempty" yaml:"repo,omitempty"` // nameWithOwner
	URL          string                `json:"url,omitempty" yaml:"url,omitempty"`
	Body         string                `json:"-" yaml:"-"`
}

// Ref returns the repository-scoped issue reference for the item.
// Drafts have no reference.
func (i Item) Ref() (IssueRef, bool) {
	if i.Number == 0 || i.Repo == "" {
		return IssueRef{}, false
	}
	return IssueRef{Repo: i.Repo, Number: i.Number}, true
}

// HasLabel reports whether the item carries the named label (exact match).
func (i Item) HasLabel(name string) bool {
	for _, l := range i.Labels {
		if l.Name == name {
			return true
		}
	}
	return false
}

// FieldValue is a custom field value discriminated by the field kind.
// Values stay typed until they cross the display or filter boundary via String.
type FieldValue struct {
	Kind   string    `json:"kind" yaml:"kind"`
	Text   string    `json:"text,omitempty" yaml:"text,omitempty"` // TEXT, SINGLE_SELECT option name, ITERATION title
	Number float64   `json:"number" yaml:"number"`
	Date   time.Time `json:"date" yaml:"date"`
}

// fieldValueWire is the encoded form of FieldValue. Number and Date appear
// only for their own kinds, so a zero NUMBER is kept.
type fieldValueWire struct {
	Kind   string     `json:"kind" yaml:"kind"`
	Text   string     `json:"text,omitempty" yaml:"text,omitempty"`
	Number *float64   `json:"number,omitempty" yaml:"number,omitempty"`
	Date   *time.Time `json:"date,omitempty" yaml:"date,omitempty"`
}

func (v FieldValue) wire() fieldValueWire {
	w := fieldValueWire{Kind: v.Kind, Text: v.Text}
	switch v.Kind {
	case FieldTypeNumber:
		n := v.Number
		w.Number = &n
	case FieldTypeDate:
		if !v.Date.IsZero() {
			d := v.Date
			w.Date = &d
		}
	}
	return w
}

func (v FieldValue) MarshalJSON() ([]byte, error) { return json.Marshal(v.wire()) }

func (v FieldValue) MarshalYAML() (interface{}, error) { return v.wire(), nil }

// TextValue builds a TEXT field value.
func TextValue(s string) FieldValue { return FieldValue{Kind: FieldTypeText, Text: s} }

// SelectValue builds a SINGLE_SELECT field value from the option name.
func SelectValue(option string) FieldValue {
	return FieldValue{Kind: FieldTypeSingleSelect, Text: option}
}

// IterationValue builds an ITERATION field value from the iteration title.
func IterationValue(title string) FieldValue {
	return FieldValue{Kind: FieldTypeIteration, Text: title}
}

// NumberValue builds a NUMBER field value.
func NumberValue(n float64) FieldValue { return FieldValue{Kind: FieldTypeNumber, Number: n} }

// DateValue builds a DATE field value.
func DateValue(t time.Time) FieldValue { return FieldValue{Kind: FieldTypeDate, Date: t} }

// String renders the value the way it is displayed and matched by filters.
func (v FieldValue) String() string {
	switch v.Kind {
	case FieldTypeNumber:
		return strconv.FormatFloat(v.Number, 'f', -1, 64)
	case FieldTypeDate:
		if v.Date.IsZero() {
			return ""
		}
		return v.Date.Format("2006-01-02")
	default:
		return v.Text
	}
}

// IssueRef identifies an issue within a repository.
type IssueRef struct {
	Repo   string `json:"repo"`
	Number int    `json:"number"`
}

func (r IssueRef) String() string {
	return r.Repo + "#" + strconv.Itoa(r.Number)
}

// BranchLink associates a local branch with a tracked issue in one repository.
type BranchLink struct {
	Branch    string    `json:"branch"`
	Issue     int       `json:"issue"`
	Title     string    `json:"title,omitempty"`
	ItemID    string    `json:"itemId,omitempty"`
	Repo      string    `json:"repo"`
	CreatedAt time.Time `json:"createdAt"`
}

// Comment is an issue or pull request comment.
type Comment struct {
	Author    string // empty for deleted users
	Body      string
	CreatedAt string
}

// FieldType constants for commonly used field types.
const (
	FieldTypeSingleSelect = "SINGLE_SELECT"
	FieldTypeText         = "TEXT"
	FieldTypeNumber       = "NUMBER"
	FieldTypeDate         = "DATE"
	FieldTypeIteration    = "ITERATION"
)

// ContentType constants for item types.
const (
	ContentTypeIssue       = "Issue"
	ContentTypePullRequest = "PullRequest"
	ContentTypeDraftIssue  = "DraftIssue"
	ContentTypePrivate     = "Private"
)
