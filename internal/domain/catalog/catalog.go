// Package catalog holds the Category and Dataset entities stored in the graph
// and the rules for their names, tags and sharing flag.
package catalog

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Node labels and the relationship type used in the graph.
const (
	LabelMainNode = "MainNode"
	LabelCategory = "Category"
	LabelDataset  = "Dataset"

	RelBelongsTo = "BELONGS_TO"

	// RootName is the name of the singleton MainNode every category hangs from.
	RootName = "Base"
)

// Declared dataset properties. Anything else on a Dataset node is a tag.
const (
	PropName         = "name"
	PropURL          = "url"
	PropUser         = "user"
	PropDescription  = "description"
	PropLastAccessed = "last_accessed"
	PropShareData    = "share_data"
	PropBelongsTo    = "belongs_to"
)

var reservedProperties = map[string]struct{}{
	PropName:         {},
	PropURL:          {},
	PropUser:         {},
	PropDescription:  {},
	PropLastAccessed: {},
	PropShareData:    {},
	PropBelongsTo:    {},
}

var tagKeyPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Category is a grouping node attached to Base.
type Category struct {
	Name      string `json:"name"`
	ShareData bool   `json:"share_data"`
}

// Dataset is a leaf node attached to a Category. The optional fields were added
// over time; a node written by an older client simply lacks them.
type Dataset struct {
	Name         string            `json:"name"`
	BelongsTo    string            `json:"belongs_to"`
	URL          string            `json:"url"`
	User         string            `json:"user,omitempty"`
	Description  string            `json:"description,omitempty"`
	LastAccessed string            `json:"last_accessed,omitempty"`
	ShareData    bool              `json:"share_data"`
	Tags         map[string]string `json:"tags,omitempty"`
}

// NormalizeName is the storage form of a natural key: trimmed and lower-cased.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// DisplayName upper-cases the first letter and lower-cases the rest, so
// "data science" is shown as "Data science".
func DisplayName(name string) string {
	if name == "" {
		return ""
	}
	first, size := utf8.DecodeRuneInString(name)
	return string(unicode.ToUpper(first)) + strings.ToLower(name[size:])
}

// IsRootName reports whether name refers to the Base node.
func IsRootName(name string) bool {
	return strings.EqualFold(name, RootName)
}

// IsReservedProperty reports whether key is one of the declared dataset fields.
func IsReservedProperty(key string) bool {
	_, ok := reservedProperties[key]
	return ok
}

// ValidTagKey reports whether key can be stored as a tag property.
func ValidTagKey(key string) bool {
	return tagKeyPattern.MatchString(key) && !IsReservedProperty(key)
}

// Shared interprets a stored share_data value. Absent means shared; booleans are
// taken as is; the strings "true"/"false" are accepted in any case. Anything
// else is treated as not shared.
func Shared(v interface{}) bool {
	switch val := v.(type) {
	case nil:
		return true
	case bool:
		return val
	case string:
		return strings.EqualFold(strings.TrimSpace(val), "true")
	default:
		return false
	}
}

// TagMapping strips the declared fields (except name) from a node's properties,
// leaving the name plus whatever tags were merged onto it.
func TagMapping(props map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(props))
	for k, v := range props {
		if k != PropName && IsReservedProperty(k) {
			continue
		}
		out[k] = v
	}
	return out
}
