package domain

import "time"

// Post is a normalized content record retrieved from the ledger.
type Post struct {
	// ID is the content address assigned by the ledger once the record is
	// stored. It is immutable and globally unique.
	ID string

	// Author is the full wallet address of the record's signer.
	Author string

	// Body is the UTF-8 text content of the post.
	Body string

	// Topic is the optional topic tag. Empty means the post is untagged.
	Topic string

	// Timestamp is the ledger-confirmed creation time. Records not yet
	// included in a block carry a provisional timestamp until confirmed.
	Timestamp time.Time
}

// Tag is a key/value metadata pair attached to a ledger record.
type Tag struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// RawRecord is one edge of a ledger query result before normalization.
type RawRecord struct {
	// ID is the content address of the record.
	ID string

	// Owner is the signer's wallet address.
	Owner string

	// Tags are the record's metadata pairs in the order the ledger stores them.
	Tags []Tag

	// DataSize is the stored byte length of the record's content.
	DataSize int64

	// BlockTime is the confirmation time of the containing block. Zero if
	// the record has not been included in a block yet.
	BlockTime time.Time
}

// TagValue returns the value of the first tag with the given name, and
// whether such a tag exists.
func (r *RawRecord) TagValue(name string) (string, bool) {
	for _, t := range r.Tags {
		if t.Name == name {
			return t.Value, true
		}
	}
	return "", false
}

// Record is an unsigned outgoing record: content plus its ordered tags.
type Record struct {
	Data []byte
	Tags []Tag
}

// SignedRecord is a record after the wallet's signing capability has been
// applied. It is ready for upload.
type SignedRecord struct {
	Data      []byte `json:"data"`
	Tags      []Tag  `json:"tags"`
	Owner     string `json:"owner"`
	Signature []byte `json:"signature"`
}
