// Package tree rebuilds the category/dataset hierarchy from the flat edge list
// returned by the graph store.
//
// Each input row describes one node together with its parent edge and the names
// of its own children. Build turns those rows into a list of entries headed by a
// synthetic Base root. Nodes whose share_data flag is false are hidden: they are
// neither emitted nor listed as a child of any other entry. The hidden set is
// collected before any entry is built, so the result does not depend on the order
// the store returned the rows in.
package tree

import (
	"fmt"
	"strings"

	"datagraph-backend/internal/domain/catalog"
)

// Column names of a tree row.
const (
	ColNodeName   = "node_name"
	ColUpperNode  = "upper_node"
	ColHasInfo    = "has_info"
	ColUnderNodes = "under_nodes"
	ColLabel      = "label"
	ColNodeUser   = "node_user"
	ColShareData  = "share_data"
)

// RootLabel is the label of the synthetic root entry.
const RootLabel = "base"

// Row is one record of the edge-list query.
type Row map[string]interface{}

// Entry is one element of the tree response.
type Entry struct {
	Name           string   `json:"name"`
	User           *string  `json:"user,omitempty"`
	UpperNode      *string  `json:"upper_node"`
	UnderNodes     []string `json:"under_nodes"`
	Label          string   `json:"label"`
	HasInformation bool     `json:"hasInformation"`
}

// Options selects which revision of the response is produced. The HTTP API uses
// Latest; the zero value gives the original anonymous, unfiltered tree.
type Options struct {
	// TrackUser adds the owning user to every entry ("" on the root).
	TrackUser bool
	// ApplyVisibility hides nodes whose share_data is false.
	ApplyVisibility bool
}

// Latest is the option set served by the API.
var Latest = Options{TrackUser: true, ApplyVisibility: true}

type node struct {
	name     string
	upper    *string
	children []string
	label    string
	hasInfo  bool
	user     string
	shared   bool
}

// Build converts rows into tree entries. The root entry is always first and the
// remaining entries follow the row order. rows is not modified.
func Build(rows []Row, opts Options) ([]Entry, error) {
	nodes := make([]node, 0, len(rows))
	hidden := make(map[string]struct{})

	for i, row := range rows {
		n, err := decodeRow(row)
		if err != nil {
			return nil, fmt.Errorf("tree row %d: %w", i, err)
		}
		if opts.ApplyVisibility && !n.shared {
			hidden[n.name] = struct{}{}
		}
		nodes = append(nodes, n)
	}

	root := Entry{
		Name:       catalog.RootName,
		UnderNodes: []string{},
		Label:      RootLabel,
	}
	if opts.TrackUser {
		root.User = stringPtr("")
	}

	entries := make([]Entry, 1, len(nodes)+1)
	for _, n := range nodes {
		if _, ok := hidden[n.name]; ok {
			continue
		}
		if n.upper != nil && catalog.IsRootName(*n.upper) {
			root.UnderNodes = append(root.UnderNodes, n.name)
		}

		entry := Entry{
			Name:           n.name,
			UpperNode:      n.upper,
			UnderNodes:     visible(n.children, hidden),
			Label:          n.label,
			HasInformation: n.hasInfo,
		}
		if opts.TrackUser {
			entry.User = stringPtr(n.user)
		}
		entries = append(entries, entry)
	}
	entries[0] = root

	return entries, nil
}

func decodeRow(row Row) (node, error) {
	name, ok := row[ColNodeName].(string)
	if !ok || name == "" {
		return node{}, fmt.Errorf("missing %s", ColNodeName)
	}

	n := node{
		name:     name,
		children: childNames(row[ColUnderNodes]),
		label:    firstLabel(row[ColLabel]),
		hasInfo:  hasInfo(row[ColHasInfo]),
		shared:   catalog.Shared(row[ColShareData]),
	}
	if upper, ok := row[ColUpperNode].(string); ok {
		n.upper = stringPtr(upper)
	}
	if user, ok := row[ColNodeUser].(string); ok {
		n.user = user
	}
	return n, nil
}

// childNames accepts both projected names and raw node property maps.
func childNames(v interface{}) []string {
	var items []interface{}
	switch list := v.(type) {
	case []interface{}:
		items = list
	case []string:
		out := make([]string, 0, len(list))
		for _, s := range list {
			if s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		switch c := item.(type) {
		case string:
			if c != "" {
				out = append(out, c)
			}
		case map[string]interface{}:
			if s, ok := c[catalog.PropName].(string); ok && s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

func firstLabel(v interface{}) string {
	switch l := v.(type) {
	case string:
		return strings.ToLower(l)
	case []string:
		if len(l) > 0 {
			return strings.ToLower(l[0])
		}
	case []interface{}:
		if len(l) > 0 {
			if s, ok := l[0].(string); ok {
				return strings.ToLower(s)
			}
		}
	}
	return ""
}

// hasInfo recognises the query's sentinel: 1 (or true) when the node has a url.
func hasInfo(v interface{}) bool {
	switch h := v.(type) {
	case bool:
		return h
	case int64:
		return h == 1
	case int:
		return h == 1
	case float64:
		return h == 1
	default:
		return false
	}
}

func visible(children []string, hidden map[string]struct{}) []string {
	out := make([]string, 0, len(children))
	for _, c := range children {
		if _, ok := hidden[c]; ok {
			continue
		}
		out = append(out, c)
	}
	return out
}

func stringPtr(s string) *string {
	return &s
}
