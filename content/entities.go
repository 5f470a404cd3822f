package content

import (
	"cozyvile/gateway"
	"cozyvile/storage"
)

// ImageSet is a child table of image links owned by the records of an entity
type ImageSet struct {
	Table      string
	ForeignKey string
	Field      string // struct field the SQL backend preloads
	Bucket     string
	Prefix     string // first path segment inside the bucket, optional
	AltColumn  bool   // links carry the original file name as alt text
}

func (s *ImageSet) embed() gateway.Embed {
	return gateway.Embed{
		Table:      s.Table,
		ForeignKey: s.ForeignKey,
		Field:      s.Field,
		Order:      []gateway.Order{gateway.Asc("sort_order")},
	}
}

// CoverImage is a single image stored in a column of the record itself
type CoverImage struct {
	Column string
	Bucket string
	Prefix string
}

// Entity describes how one record type is stored
type Entity struct {
	Name    string // admin route segment
	Title   string
	Table   string
	Columns []string // select list, empty for all
	Order   []gateway.Order
	Images  *ImageSet
	Cover   *CoverImage
}

func (e Entity) bucket() string {
	switch {
	case e.Images != nil:
		return e.Images.Bucket
	case e.Cover != nil:
		return e.Cover.Bucket
	}
	return ""
}

func (e Entity) hasAssets() bool {
	return e.Images != nil || e.Cover != nil
}

var bySortOrder = []gateway.Order{gateway.Asc("sort_order"), gateway.Desc("created_at")}

var (
	Rooms = Entity{
		Name:  "rooms",
		Title: "Rooms",
		Table: "rooms",
		Order: bySortOrder,
		Images: &ImageSet{
			Table:      "room_images",
			ForeignKey: "room_id",
			Field:      "Images",
			Bucket:     storage.BucketRooms,
			AltColumn:  true,
		},
	}
	Dining = Entity{
		Name:  "dining",
		Title: "Dining",
		Table: "dining_outlets",
		Order: bySortOrder,
		Images: &ImageSet{
			Table:      "dining_images",
			ForeignKey: "dining_id",
			Field:      "Images",
			Bucket:     storage.BucketDining,
			Prefix:     "dining",
		},
	}
	Venues = Entity{
		Name:  "venues",
		Title: "Venues",
		Table: "venues",
		Order: bySortOrder,
		Images: &ImageSet{
			Table:      "venue_images",
			ForeignKey: "venue_id",
			Field:      "Images",
			Bucket:     storage.BucketVenues,
			Prefix:     "venues",
		},
	}
	Gallery = Entity{
		Name:  "gallery",
		Title: "Gallery",
		Table: "gallery_images",
		Order: bySortOrder,
		Cover: &CoverImage{
			Column: "image_url",
			Bucket: storage.BucketGallery,
			Prefix: "gallery",
		},
	}
	Amenities = Entity{
		Name:  "amenities",
		Title: "Amenities",
		Table: "amenities",
		Order: bySortOrder,
	}
	Testimonials = Entity{
		Name:  "testimonials",
		Title: "Testimonials",
		Table: "testimonials",
		Order: bySortOrder,
	}
	Messages = Entity{
		Name:  "messages",
		Title: "Messages",
		Table: "contact_messages",
		Order: []gateway.Order{gateway.Desc("created_at")},
	}
)
