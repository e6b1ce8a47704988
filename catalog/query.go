package catalog

import (
	"slices"
	"strconv"
	"strings"

	"github.com/mwantia/vcat/data"
)

// Query selects catalog nodes. Empty fields do not filter.
type Query struct {
	// Parent limits the result to direct children of this collection
	Parent string `json:"parent,omitempty"`

	// Prefix limits the result to every node below this collection
	Prefix string `json:"prefix,omitempty"`

	// NameLike matches the base name using SQL LIKE syntax
	NameLike string `json:"name_like,omitempty"`

	// Filter by node type (collection or data object)
	Type *data.NodeType `json:"type,omitempty"`

	// One single triple of a node must satisfy every criterion
	Criteria []data.Criterion `json:"criteria,omitempty"`

	// Max results to return (0 = unlimited)
	Limit int `json:"limit"`

	// Skip this many results during pagination
	Offset int `json:"offset"`

	SortBy    SortField `json:"sort_by"`
	SortOrder SortOrder `json:"sort_order"`
}

type QueryResult struct {
	// List of all queried node candidates
	Candidates []*data.Node

	// Total matches before pagination
	TotalCount int

	// Whenever more results exist beyond the limit
	Paginating bool
}

type SortField string

const (
	SortByPath       SortField = "path"
	SortBySize       SortField = "size"
	SortByModifyTime SortField = "modify_time"
	SortByCreateTime SortField = "create_time"
)

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// ChildrenOf returns a query listing the direct children of a collection.
func ChildrenOf(path string) *Query {
	return &Query{Parent: path}
}

// DescendantsOf returns a query listing every node below a collection.
func DescendantsOf(path string) *Query {
	return &Query{Prefix: path}
}

// WithType narrows the query to one node type.
func (q *Query) WithType(nodeType data.NodeType) *Query {
	q.Type = &nodeType
	return q
}

// Matches evaluates the query against a single node.
// Used by stores that cannot push the query down.
func (q *Query) Matches(node *data.Node) bool {
	if q.Parent != "" && (node.Path == "/" || node.Parent() != q.Parent) {
		return false
	}
	if q.Prefix != "" && (node.Path == q.Prefix || !data.HasPrefix(node.Path, q.Prefix)) {
		return false
	}
	if q.NameLike != "" && !data.Like(node.Name(), q.NameLike) {
		return false
	}
	if q.Type != nil && node.Type != *q.Type {
		return false
	}

	return node.HasMetadata(q.Criteria)
}

// ApplyFilters keeps the candidates matched by query.
func ApplyFilters(candidates []*data.Node, query *Query) []*data.Node {
	filtered := make([]*data.Node, 0, len(candidates))
	for _, node := range candidates {
		if query.Matches(node) {
			filtered = append(filtered, node)
		}
	}

	return filtered
}

// SortAndPaginate orders the filtered candidates and applies offset and limit.
func SortAndPaginate(candidates []*data.Node, query *Query) *QueryResult {
	slices.SortStableFunc(candidates, func(a, b *data.Node) int {
		var cmp int
		switch query.SortBy {
		case SortBySize:
			cmp = compareInt64(a.Size, b.Size)
		case SortByModifyTime:
			cmp = a.ModifyTime.Compare(b.ModifyTime)
		case SortByCreateTime:
			cmp = a.CreateTime.Compare(b.CreateTime)
		default:
			cmp = strings.Compare(a.Path, b.Path)
		}
		if query.SortOrder == SortDesc {
			return -cmp
		}
		return cmp
	})

	total := len(candidates)
	start := min(max(query.Offset, 0), total)
	end := total
	if query.Limit > 0 {
		end = min(start+query.Limit, total)
	}

	return &QueryResult{
		Candidates: candidates[start:end],
		TotalCount: total,
		Paginating: end < total,
	}
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// SQLBuilder renders a query for SQL stores. Bind registers an argument
// and returns its placeholder, so that the same builder serves '?' and '$n' drivers.
type SQLBuilder struct {
	Args []any
	Bind func(index int) string

	// Collation forcing byte order on path sorting (optional)
	Collate string
}

// QuestionMark is the placeholder style used by sqlite.
func QuestionMark(int) string { return "?" }

// DollarN is the placeholder style used by postgres.
func DollarN(index int) string { return "$" + strconv.Itoa(index) }

func (b *SQLBuilder) bind(arg any) string {
	b.Args = append(b.Args, arg)
	return b.Bind(len(b.Args))
}

// Where renders the filter part of query against the node table.
// The table must expose the columns path, parent, name, type and id;
// the metadata table must expose node_id, attribute, value and unit.
func (b *SQLBuilder) Where(query *Query, nodes, avus string) string {
	conditions := []string{"1=1"}

	if query.Parent != "" {
		conditions = append(conditions, nodes+".parent = "+b.bind(query.Parent))
	}
	if query.Prefix != "" {
		if query.Prefix == "/" {
			conditions = append(conditions, nodes+".path != '/'")
		} else {
			conditions = append(conditions, nodes+".path LIKE "+b.bind(data.EscapeLike(query.Prefix)+"/%")+` ESCAPE '\'`)
		}
	}
	if query.NameLike != "" {
		conditions = append(conditions, nodes+".name LIKE "+b.bind(query.NameLike)+` ESCAPE '\'`)
	}
	if query.Type != nil {
		conditions = append(conditions, nodes+".type = "+b.bind(int(*query.Type)))
	}
	if len(query.Criteria) > 0 {
		predicates := make([]string, 0, len(query.Criteria))
		for _, criterion := range query.Criteria {
			predicates = append(predicates, b.criterion("a", criterion))
		}
		conditions = append(conditions, "EXISTS (SELECT 1 FROM "+avus+" a WHERE a.node_id = "+nodes+".id AND "+strings.Join(predicates, " AND ")+")")
	}

	return strings.Join(conditions, " AND ")
}

func (b *SQLBuilder) criterion(alias string, criterion data.Criterion) string {
	column := alias + ".attribute"
	switch criterion.Field {
	case data.FieldValue:
		column = alias + ".value"
	case data.FieldUnit:
		column = alias + ".unit"
	}

	switch criterion.Operator {
	case data.OpNotEqual:
		return column + " != " + b.bind(criterion.Pattern)
	case data.OpLike:
		return column + " LIKE " + b.bind(criterion.Pattern) + ` ESCAPE '\'`
	case data.OpNotLike:
		return column + " NOT LIKE " + b.bind(criterion.Pattern) + ` ESCAPE '\'`
	case data.OpLess:
		return column + " < " + b.bind(criterion.Pattern)
	case data.OpGreater:
		return column + " > " + b.bind(criterion.Pattern)
	case data.OpEqual:
		return column + " = " + b.bind(criterion.Pattern)
	default:
		return "1=0"
	}
}

// OrderBy renders the sort clause of query.
func (b *SQLBuilder) OrderBy(query *Query, nodes string) string {
	column := nodes + ".path"
	switch query.SortBy {
	case SortBySize:
		column = nodes + ".size"
	case SortByModifyTime:
		column = nodes + ".modify_time"
	case SortByCreateTime:
		column = nodes + ".create_time"
	}

	order := "ASC"
	if query.SortOrder == SortDesc {
		order = "DESC"
	}

	path := nodes + ".path"
	if b.Collate != "" {
		path += " COLLATE \"" + b.Collate + "\""
	}

	if query.SortBy == "" || query.SortBy == SortByPath {
		return path + " " + order
	}
	return column + " " + order + ", " + path + " ASC"
}
