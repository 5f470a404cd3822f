package content

import (
	"context"
	"fmt"
	"log"
	"strings"

	"cozyvile/gateway"
)

// LinkSet is a join table between the records of two entities
type LinkSet struct {
	Table     string
	OwnerKey  string
	TargetKey string
}

var RoomAmenityLinks = LinkSet{Table: "room_amenities", OwnerKey: "room_id", TargetKey: "amenity_id"}

// Links reads and replaces the target records linked to one owner
type Links[T Record] struct {
	Set     LinkSet
	Targets *Manager[T]
	access  *gateway.Access
}

func NewLinks[T Record](set LinkSet, targets *Manager[T], access *gateway.Access) *Links[T] {
	return &Links[T]{Set: set, Targets: targets, access: access}
}

func (l *Links[T]) query(ownerID string) gateway.Query {
	return gateway.Query{
		Table:   l.Set.Table,
		Columns: []string{l.Set.OwnerKey, l.Set.TargetKey},
		Filters: []gateway.Filter{gateway.Eq(l.Set.OwnerKey, ownerID)},
	}
}

func (l *Links[T]) targetIDs(rows []map[string]any) []string {
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		if v, ok := row[l.Set.TargetKey]; ok && v != nil {
			ids = append(ids, fmt.Sprint(v))
		}
	}
	return ids
}

// Published lists the active targets of ownerID, through the public handle only
func (l *Links[T]) Published(ctx context.Context, ownerID string) []T {
	if ownerID == "" {
		return []T{}
	}
	var rows []map[string]any
	if err := l.access.Public().Select(ctx, l.query(ownerID), &rows); err != nil {
		log.Printf("Public read of %s failed: %v", l.Set.Table, err)
		return []T{}
	}
	ids := l.targetIDs(rows)
	if len(ids) == 0 {
		return []T{}
	}
	return l.Targets.Published(ctx, gateway.In("id", ids...))
}

// Selected lists the linked target ids for the admin form
func (l *Links[T]) Selected(ctx context.Context, ownerID string) []string {
	if ownerID == "" {
		return []string{}
	}
	return l.targetIDs(readWithFallback[map[string]any](ctx, l.access, l.query(ownerID)))
}

// Assign replaces the links of ownerID: the old rows are cleared, then one
// row per distinct id is inserted. Empty ids are skipped.
func (l *Links[T]) Assign(ctx context.Context, ownerID string, ids []string) error {
	if ownerID == "" {
		return invalid("id", "is required")
	}
	gw, err := l.Targets.privileged()
	if err != nil {
		return err
	}
	if err = gw.Delete(ctx, l.Set.Table, gateway.Eq(l.Set.OwnerKey, ownerID)); err != nil {
		return remote("clear "+l.Set.Table, err)
	}
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		row := gateway.Row{l.Set.OwnerKey: ownerID, l.Set.TargetKey: id}
		if err = gw.Append(ctx, l.Set.Table, row); err != nil {
			return remote("link "+l.Targets.Entity.Name+" "+id, err)
		}
	}
	log.Printf("Linked %d %s to %s", len(seen), l.Targets.Entity.Name, ownerID)
	return nil
}
