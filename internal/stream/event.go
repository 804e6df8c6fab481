package stream

import "publicsquare/internal/domain"

// gatewayEvent is the raw JSON structure pushed by the gateway's
// transaction stream.
type gatewayEvent struct {
	ID    string `json:"id"`
	Owner struct {
		Address string `json:"address"`
	} `json:"owner"`
	Tags  []eventTag `json:"tags"`
	Block *struct {
		Timestamp int64 `json:"timestamp"`
	} `json:"block"`
}

type eventTag struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

func (e *gatewayEvent) tags() []domain.Tag {
	tags := make([]domain.Tag, len(e.Tags))
	for i, t := range e.Tags {
		tags[i] = domain.Tag{Name: t.Name, Value: t.Value}
	}
	return tags
}
