package content

import (
	"context"
	"fmt"
	"log"
	"time"

	"cozyvile/gateway"
	"cozyvile/models"
	"cozyvile/storage"
)

// attach uploads the files one by one, in selection order, and links each to
// record id. Sort orders start at offset.
func (m *Manager[T]) attach(ctx context.Context, gw gateway.Gateway, id string, uploads []Upload, offset int) error {
	bucket, prefix := m.Entity.bucket(), ""
	if m.Entity.Images != nil {
		prefix = m.Entity.Images.Prefix
	} else if m.Entity.Cover != nil {
		prefix = m.Entity.Cover.Prefix
	}
	stamp := m.now()
	for i, u := range uploads {
		// one millisecond apart keeps same-named files of a batch distinct
		path := storage.ObjectPath(prefix, id, u.Name, stamp.Add(time.Duration(i)*time.Millisecond))
		stored, err := m.assets.Upload(ctx, bucket, path, u.Body, u.ContentType)
		if err != nil {
			return &RemoteOperationError{Op: fmt.Sprintf("upload %s", u.Name), Created: id, Err: err}
		}
		publicURL := m.assets.PublicURL(bucket, stored)
		if images := m.Entity.Images; images != nil {
			link := gateway.Row{
				images.ForeignKey: id,
				"image_url":       publicURL,
				"sort_order":      offset + i,
			}
			if images.AltColumn {
				link["alt"] = u.Name
			}
			if _, err = gw.Insert(ctx, images.Table, link); err != nil {
				e := remote("link "+u.Name, err)
				e.Created = id
				return e
			}
		} else if cover := m.Entity.Cover; cover != nil {
			if err = gw.Update(ctx, m.Entity.Table, gateway.Row{cover.Column: publicURL}, gateway.Eq("id", id)); err != nil {
				e := remote("link "+u.Name, err)
				e.Created = id
				return e
			}
		}
		log.Printf("Stored %s/%s for %s %s", bucket, stored, m.Entity.Name, id)
	}
	return nil
}

// assetURLs lists the public URLs of every file the record references
func (m *Manager[T]) assetURLs(ctx context.Context, id string) []string {
	var urls []string
	switch {
	case m.Entity.Images != nil:
		for _, link := range m.links(ctx, id) {
			urls = append(urls, link.ImageURL)
		}
	case m.Entity.Cover != nil:
		column := m.Entity.Cover.Column
		rows := readWithFallback[map[string]any](ctx, m.access, gateway.Query{
			Table:   m.Entity.Table,
			Columns: []string{"id", column},
			Filters: []gateway.Filter{gateway.Eq("id", id)},
			Limit:   1,
		})
		for _, row := range rows {
			if url, ok := row[column].(string); ok && url != "" {
				urls = append(urls, url)
			}
		}
	}
	return urls
}

func (m *Manager[T]) links(ctx context.Context, id string) []models.ImageLink {
	images := m.Entity.Images
	return readWithFallback[models.ImageLink](ctx, m.access, gateway.Query{
		Table:   images.Table,
		Filters: []gateway.Filter{gateway.Eq(images.ForeignKey, id)},
		Order:   []gateway.Order{gateway.Asc("sort_order")},
	})
}

func (m *Manager[T]) nextSortOrder(ctx context.Context, id string) int {
	next := 0
	for _, link := range m.links(ctx, id) {
		if link.SortOrder >= next {
			next = link.SortOrder + 1
		}
	}
	return next
}

// removeAssets deletes each file on its own so one failure does not stop the
// others. It returns the number of files left behind.
func (m *Manager[T]) removeAssets(ctx context.Context, urls []string) int {
	bucket := m.Entity.bucket()
	failed := 0
	for _, url := range urls {
		path, err := storage.PathFromURL(bucket, url)
		if err != nil {
			log.Printf("Skipping asset of %s: %v", m.Entity.Name, err)
			failed++
			continue
		}
		if err = m.assets.Remove(ctx, bucket, []string{path}); err != nil {
			log.Printf("Removing %s/%s failed: %v", bucket, path, err)
			failed++
		}
	}
	return failed
}
