package gateway

// Rule is the restricted (anonymous) visibility of one table, mirroring the
// row-level security policies of the hosted database.
type Rule struct {
	Read          bool
	ReadFilters   []Filter // always ANDed to restricted reads
	HiddenColumns []string
	Insert        bool
}

type Policy map[string]Rule

// Tables missing from the policy are neither readable nor writable.
func (p Policy) rule(table string) Rule {
	return p[table]
}

func activeOnly() Rule {
	return Rule{Read: true, ReadFilters: []Filter{Eq("is_active", true)}}
}

func DefaultPolicy() Policy {
	return Policy{
		"rooms":                  activeOnly(),
		"dining_outlets":         activeOnly(),
		"venues":                 activeOnly(),
		"gallery_images":         activeOnly(),
		"amenities":              activeOnly(),
		"testimonials":           activeOnly(),
		"room_images":            {Read: true},
		"dining_images":          {Read: true},
		"venue_images":           {Read: true},
		"room_amenities":         {Read: true},
		"site_settings":          {Read: true, HiddenColumns: []string{"admin_password"}},
		"contact_messages":       {Insert: true},
		"newsletter_subscribers": {Insert: true},
	}
}
