// Package archive persists events delivered by subscriptions.
//
// The watch command hands every delivered [github.Event] to an [Archive].
// [MongoArchive] writes one document per event keyed by the event ID, so a
// restarted watcher that sees the same event again overwrites rather than
// duplicates it. [NullArchive] discards everything.
package archive

import (
	"context"
	"time"

	"github.com/matzehuels/octowire/pkg/integrations/github"
)

// Archive stores delivered events. Implementations must be safe for
// concurrent use.
type Archive interface {
	Store(ctx context.Context, target string, ev github.Event) error
	Close(ctx context.Context) error
}

// Document is the stored form of an event.
type Document struct {
	ID         string         `bson:"_id" json:"id"`
	Target     string         `bson:"target" json:"target"`
	Type       string         `bson:"type" json:"type"`
	Actor      string         `bson:"actor" json:"actor"`
	Repo       string         `bson:"repo,omitempty" json:"repo,omitempty"`
	Org        string         `bson:"org,omitempty" json:"org,omitempty"`
	Public     bool           `bson:"public" json:"public"`
	Payload    map[string]any `bson:"payload,omitempty" json:"payload,omitempty"`
	CreatedAt  time.Time      `bson:"created_at" json:"created_at"`
	ArchivedAt time.Time      `bson:"archived_at" json:"archived_at"`
}

// NewDocument maps ev, observed on target, to its stored form.
func NewDocument(target string, ev github.Event, archivedAt time.Time) Document {
	doc := Document{
		ID:         ev.ID,
		Target:     target,
		Type:       ev.Type,
		Actor:      ev.Actor.Login,
		Repo:       ev.Repo.Name,
		Public:     ev.Public,
		Payload:    ev.Payload,
		CreatedAt:  ev.CreatedAt.UTC(),
		ArchivedAt: archivedAt.UTC(),
	}
	if ev.Org != nil {
		doc.Org = ev.Org.Login
	}
	return doc
}

// NullArchive discards events.
type NullArchive struct{}

func (NullArchive) Store(context.Context, string, github.Event) error { return nil }
func (NullArchive) Close(context.Context) error                       { return nil }

var _ Archive = NullArchive{}
