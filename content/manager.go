// Package content couples the site's records to their stored images and
// applies the privileged/public access rules to every read and write.
package content

import (
	"context"
	"errors"
	"io"
	"log"
	"time"

	"cozyvile/gateway"
	"cozyvile/storage"
)

// Record is implemented by the pointer types of the models package
type Record interface {
	RecordID() string
	Label() string
	Normalize()
	Validate() error
	// Columns are the editable columns, written on create and update
	Columns() gateway.Row
}

// Upload is one selected file
type Upload struct {
	Name        string
	ContentType string
	Body        io.Reader
}

type Manager[T Record] struct {
	Entity Entity
	access *gateway.Access
	assets storage.AssetStore
	now    func() time.Time
}

// NewManager accepts a nil asset store for deployments without one, writes
// involving files then fail with a ConfigurationError
func NewManager[T Record](entity Entity, access *gateway.Access, assets storage.AssetStore) *Manager[T] {
	return &Manager[T]{
		Entity: entity,
		access: access,
		assets: assets,
		now:    time.Now,
	}
}

func (m *Manager[T]) query(filters ...gateway.Filter) gateway.Query {
	q := gateway.Query{
		Table:   m.Entity.Table,
		Columns: m.Entity.Columns,
		Filters: filters,
		Order:   m.Entity.Order,
	}
	if m.Entity.Images != nil {
		q.Embeds = []gateway.Embed{m.Entity.Images.embed()}
	}
	return q
}

// Load lists every record the admin may see. It never fails: privileged
// failures fall back to the public list, which may hide inactive records.
func (m *Manager[T]) Load(ctx context.Context) []T {
	return readWithFallback[T](ctx, m.access, m.query())
}

func (m *Manager[T]) Get(ctx context.Context, id string) (T, error) {
	var zero T
	if id == "" {
		return zero, invalid("id", "is required")
	}
	q := m.query(gateway.Eq("id", id))
	q.Limit = 1
	rows := readWithFallback[T](ctx, m.access, q)
	if len(rows) == 0 {
		return zero, ErrNotFound
	}
	return rows[0], nil
}

// Published lists what visitors see, through the public handle only
func (m *Manager[T]) Published(ctx context.Context, filters ...gateway.Filter) []T {
	var rows []T
	if err := m.access.Public().Select(ctx, m.query(filters...), &rows); err != nil {
		log.Printf("Public read of %s failed: %v", m.Entity.Table, err)
		return []T{}
	}
	if rows == nil {
		rows = []T{}
	}
	return rows
}

// Refresh re-runs the public list after a write, showing committed state
func (m *Manager[T]) Refresh(ctx context.Context) []T {
	return m.Published(ctx)
}

func (m *Manager[T]) BySlug(ctx context.Context, slug string) (T, bool) {
	var zero T
	if slug == "" {
		return zero, false
	}
	q := m.query(gateway.Eq("slug", slug))
	q.Limit = 1
	var rows []T
	if err := m.access.Public().Select(ctx, q, &rows); err != nil {
		log.Printf("Public read of %s/%s failed: %v", m.Entity.Table, slug, err)
		return zero, false
	}
	if len(rows) == 0 {
		return zero, false
	}
	return rows[0], true
}

// Create inserts the record and then uploads and links its files in order.
// Nothing is uploaded unless the insert succeeded. A failing upload leaves
// the record in place and returns its id with the error.
func (m *Manager[T]) Create(ctx context.Context, record T, uploads []Upload) (string, error) {
	record.Normalize()
	if err := record.Validate(); err != nil {
		return "", validationError(err)
	}
	if m.Entity.Cover != nil {
		if len(uploads) == 0 {
			return "", invalid("image", "is required")
		}
		if len(uploads) > 1 {
			return "", invalid("image", "accepts a single file")
		}
	}
	gw, err := m.privileged()
	if err != nil {
		return "", err
	}
	if len(uploads) > 0 && m.assets == nil {
		return "", assetStoreMissing()
	}
	id, err := gw.Insert(ctx, m.Entity.Table, record.Columns())
	if err != nil {
		return "", remote("create "+m.Entity.Name, err)
	}
	log.Printf("Created %s %s (%s)", m.Entity.Name, id, record.Label())
	if err = m.attach(ctx, gw, id, uploads, 0); err != nil {
		return id, err
	}
	return id, nil
}

// Update replaces the editable columns and appends the new files after the
// existing images. For a cover image the new file replaces the old one.
func (m *Manager[T]) Update(ctx context.Context, record T, uploads []Upload) error {
	record.Normalize()
	id := record.RecordID()
	if id == "" {
		return invalid("id", "is required")
	}
	if err := record.Validate(); err != nil {
		return validationError(err)
	}
	if m.Entity.Cover != nil && len(uploads) > 1 {
		return invalid("image", "accepts a single file")
	}
	gw, err := m.privileged()
	if err != nil {
		return err
	}
	if len(uploads) > 0 && m.assets == nil {
		return assetStoreMissing()
	}
	if err = gw.Update(ctx, m.Entity.Table, record.Columns(), gateway.Eq("id", id)); err != nil {
		return remote("update "+m.Entity.Name, err)
	}
	if len(uploads) == 0 {
		return nil
	}
	previous := m.assetURLs(ctx, id)
	offset := 0
	if m.Entity.Images != nil {
		offset = m.nextSortOrder(ctx, id)
	}
	if err = m.attach(ctx, gw, id, uploads, offset); err != nil {
		return err
	}
	if m.Entity.Cover != nil {
		m.removeAssets(ctx, previous)
	}
	return nil
}

// Delete removes the stored files first, best effort, then the record.
// Image link rows go with the record through the foreign key cascade.
func (m *Manager[T]) Delete(ctx context.Context, id string) error {
	if id == "" {
		return invalid("id", "is required")
	}
	gw, err := m.privileged()
	if err != nil {
		return err
	}
	if m.Entity.hasAssets() {
		if m.assets == nil {
			return assetStoreMissing()
		}
		if failed := m.removeAssets(ctx, m.assetURLs(ctx, id)); failed > 0 {
			log.Printf("Deleting %s %s: %d file(s) could not be removed from storage", m.Entity.Name, id, failed)
		}
	}
	if err = gw.Delete(ctx, m.Entity.Table, gateway.Eq("id", id)); err != nil {
		return remote("delete "+m.Entity.Name, err)
	}
	log.Printf("Deleted %s %s", m.Entity.Name, id)
	return nil
}

func (m *Manager[T]) privileged() (gateway.Gateway, error) {
	gw, err := m.access.Privileged()
	if errors.Is(err, gateway.ErrPrivilegedNotConfigured) {
		return nil, privilegedMissing()
	}
	return gw, err
}

// readWithFallback tries the privileged handle, then the public one exactly
// once. Failures are logged and end in an empty slice.
func readWithFallback[T any](ctx context.Context, access *gateway.Access, q gateway.Query) []T {
	var rows []T
	gw, err := access.Privileged()
	if err == nil {
		if err = gw.Select(ctx, q, &rows); err == nil {
			if rows == nil {
				rows = []T{}
			}
			return rows
		}
		log.Printf("Privileged read of %s failed, using public access: %v", q.Table, err)
	} else {
		log.Printf("Privileged read of %s skipped, using public access: %v", q.Table, err)
	}
	rows = nil
	if err = access.Public().Select(ctx, q, &rows); err != nil {
		log.Printf("Public read of %s failed: %v", q.Table, err)
		return []T{}
	}
	if rows == nil {
		rows = []T{}
	}
	return rows
}
