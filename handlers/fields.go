package handlers

import "cozyvile/models"

const (
	FieldText     = "text"
	FieldTextarea = "textarea"
	FieldNumber   = "number"
	FieldCheckbox = "checkbox"
	FieldSelect   = "select"
	// FieldMultiSelect options come from the Relation of the same name
	FieldMultiSelect = "multiselect"
)

// Field is one input of an admin form, Name is the form and JSON name
type Field struct {
	Name    string
	Label   string
	Kind    string
	Options []string
	List    bool // shown as a column of the list
}

var (
	activeField = Field{Name: "is_active", Label: "Active", Kind: FieldCheckbox, List: true}
	sortField   = Field{Name: "sort_order", Label: "Sort order", Kind: FieldNumber}
)

var RoomFields = []Field{
	{Name: "name", Label: "Name", Kind: FieldText, List: true},
	{Name: "slug", Label: "Slug (generated when empty)", Kind: FieldText, List: true},
	{Name: "type", Label: "Type", Kind: FieldSelect, Options: []string{models.RoomTypeRoom, models.RoomTypeSuite}, List: true},
	{Name: "short_description", Label: "Short description", Kind: FieldTextarea},
	{Name: "full_description", Label: "Full description (Markdown)", Kind: FieldTextarea},
	{Name: "price_from", Label: "Price from", Kind: FieldNumber, List: true},
	{Name: "size", Label: "Size", Kind: FieldText},
	{Name: "guests", Label: "Guests", Kind: FieldNumber},
	{Name: "beds", Label: "Beds", Kind: FieldNumber},
	{Name: "is_featured", Label: "Featured", Kind: FieldCheckbox, List: true},
	{Name: "amenity_ids", Label: "Amenities", Kind: FieldMultiSelect},
	activeField,
	sortField,
}

var DiningFields = []Field{
	{Name: "name", Label: "Name", Kind: FieldText, List: true},
	{Name: "slug", Label: "Slug (generated when empty)", Kind: FieldText, List: true},
	{Name: "short_description", Label: "Short description", Kind: FieldTextarea},
	{Name: "full_description", Label: "Full description (Markdown)", Kind: FieldTextarea},
	{Name: "opening_hours", Label: "Opening hours", Kind: FieldText, List: true},
	activeField,
	sortField,
}

var VenueFields = []Field{
	{Name: "name", Label: "Name", Kind: FieldText, List: true},
	{Name: "slug", Label: "Slug (generated when empty)", Kind: FieldText, List: true},
	{Name: "capacity", Label: "Capacity", Kind: FieldNumber, List: true},
	{Name: "short_description", Label: "Short description", Kind: FieldTextarea},
	{Name: "full_description", Label: "Full description (Markdown)", Kind: FieldTextarea},
	activeField,
	sortField,
}

var GalleryFields = []Field{
	{Name: "title", Label: "Title", Kind: FieldText, List: true},
	{Name: "category", Label: "Category", Kind: FieldSelect, Options: models.GalleryCategories, List: true},
	activeField,
	sortField,
}

var AmenityFields = []Field{
	{Name: "name", Label: "Name", Kind: FieldText, List: true},
	{Name: "icon", Label: "Icon", Kind: FieldText},
	{Name: "description", Label: "Description", Kind: FieldTextarea},
	{Name: "category", Label: "Category", Kind: FieldText, List: true},
	activeField,
	sortField,
}

var TestimonialFields = []Field{
	{Name: "guest_name", Label: "Guest name", Kind: FieldText, List: true},
	{Name: "quote", Label: "Quote", Kind: FieldTextarea},
	{Name: "rating", Label: "Rating (1-5)", Kind: FieldNumber, List: true},
	activeField,
	sortField,
}

var MessageFields = []Field{
	{Name: "created_at", Label: "Received", List: true},
	{Name: "first_name", Label: "First name", List: true},
	{Name: "last_name", Label: "Last name", List: true},
	{Name: "email", Label: "Email", List: true},
	{Name: "phone", Label: "Phone"},
	{Name: "category", Label: "Category", List: true},
	{Name: "subject", Label: "Subject", List: true},
	{Name: "message", Label: "Message"},
}
