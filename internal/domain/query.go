package domain

import "fmt"

// DefaultPageSize bounds the number of records requested per query. All
// descriptors share this single constant.
const DefaultPageSize = 100

// SortNewestFirst is the ledger's newest-first ordering key.
const SortNewestFirst = "HEIGHT_DESC"

// ScopeKind selects the retrieval axis of a query.
type ScopeKind string

const (
	// ScopeAll selects the most recent posts across all authors and topics.
	ScopeAll ScopeKind = "all"

	// ScopeTopic restricts results to posts carrying a given topic tag.
	ScopeTopic ScopeKind = "topic"

	// ScopeAuthor restricts results to posts signed by a given address.
	ScopeAuthor ScopeKind = "author"
)

// QueryScope is a tagged retrieval request: the global feed, one topic, or
// one author.
type QueryScope struct {
	Kind   ScopeKind
	Topic  string
	Author string
}

// AllScope selects the global feed.
func AllScope() QueryScope { return QueryScope{Kind: ScopeAll} }

// TopicScope selects posts tagged with the given topic.
func TopicScope(topic string) QueryScope {
	return QueryScope{Kind: ScopeTopic, Topic: topic}
}

// AuthorScope selects posts signed by the given wallet address.
func AuthorScope(address string) QueryScope {
	return QueryScope{Kind: ScopeAuthor, Author: address}
}

func (s QueryScope) String() string {
	switch s.Kind {
	case ScopeTopic:
		return fmt.Sprintf("topic(%s)", s.Topic)
	case ScopeAuthor:
		return fmt.Sprintf("author(%s)", s.Author)
	default:
		return "all"
	}
}

// TagFilter is an equality filter on a record tag.
type TagFilter struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

// QueryDescriptor describes one ledger retrieval request: newest-first,
// bounded count, with optional equality filters on tags or owner address.
type QueryDescriptor struct {
	First  int
	Sort   string
	Tags   []TagFilter
	Owners []string
}

// BuildQuery maps a scope to a ledger query descriptor. It performs no I/O.
// Descriptors for the three scopes differ only in their filter clause.
func BuildQuery(scope QueryScope) QueryDescriptor {
	q := QueryDescriptor{
		First: DefaultPageSize,
		Sort:  SortNewestFirst,
		Tags: []TagFilter{
			{Name: TagAppName, Values: []string{AppName}},
			{Name: TagType, Values: []string{RecordTypePost}},
		},
	}

	switch scope.Kind {
	case ScopeTopic:
		q.Tags = append(q.Tags, TagFilter{Name: TagTopic, Values: []string{scope.Topic}})
	case ScopeAuthor:
		q.Owners = []string{scope.Author}
	}

	return q
}
