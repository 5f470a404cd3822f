package handlers

import (
	"context"
	"net/http"

	"cozyvile/auth"
	"cozyvile/content"

	"github.com/gin-gonic/gin"
)

type IDRequest struct {
	ID string `form:"id" json:"id" binding:"required"`
}

// Resource is the admin console of one entity: list, get, create, save and delete
type Resource[T content.Record] struct {
	Manager   *content.Manager[T]
	New       func() T
	Fields    []Field
	ReadOnly  bool // list and delete only
	Images    ImageOptions
	Relations []Relation[T]
}

// Linker stores the many-to-many links of one owner record
type Linker interface {
	Selected(ctx context.Context, ownerID string) []string
	Assign(ctx context.Context, ownerID string, ids []string) error
}

// Relation is a multi-select field whose values live in a join table.
// Values returning nil leaves the stored links untouched.
type Relation[T content.Record] struct {
	Field   string
	Values  func(record T) []string
	Choices func(ctx context.Context) []Choice
	Links   Linker
}

type Choice struct {
	Value string
	Label string
}

// ChoicesOf offers every record of m, inactive ones included
func ChoicesOf[T content.Record](m *content.Manager[T]) func(ctx context.Context) []Choice {
	return func(ctx context.Context) []Choice {
		records := m.Load(ctx)
		choices := make([]Choice, 0, len(records))
		for _, record := range records {
			choices = append(choices, Choice{Value: record.RecordID(), Label: record.Label()})
		}
		return choices
	}
}

func (r *Resource[T]) Path() string {
	return "/admin/" + r.Manager.Entity.Name
}

func (r *Resource[T]) Register(router *auth.Router) {
	router.GET(r.Path(), r.List)
	router.GET(r.Path()+"/get", r.Get)
	router.POST(r.Path()+"/delete", r.Delete)
	if !r.ReadOnly {
		router.POST(r.Path()+"/create", r.Create)
		router.POST(r.Path()+"/save", r.Save)
	}
}

func (r *Resource[T]) List(c *gin.Context) {
	items := r.Manager.Load(c.Request.Context())
	r.render(c, http.StatusOK, Response{Items: items}, nil)
}

func (r *Resource[T]) Get(c *gin.Context) {
	record, err := r.Manager.Get(c.Request.Context(), c.Query("id"))
	if err != nil {
		resp := ErrorResponse(err)
		resp.Items = r.Manager.Load(c.Request.Context())
		r.render(c, ErrorStatus(err), resp, nil)
		return
	}
	edit := asMaps([]T{record})[0]
	for _, rel := range r.Relations {
		edit[rel.Field] = rel.Links.Selected(c.Request.Context(), record.RecordID())
	}
	if auth.WantsJSON(c) {
		c.JSON(http.StatusOK, edit)
		return
	}
	r.render(c, http.StatusOK, Response{Items: r.Manager.Load(c.Request.Context())}, edit)
}

func (r *Resource[T]) Create(c *gin.Context) {
	r.Images.limitBody(c)
	record := r.New()
	if err := c.ShouldBind(record); err != nil {
		r.respond(c, &content.ValidationError{Field: "form", Message: err.Error()}, "", "")
		return
	}
	uploads, err := r.Images.readUploads(c)
	if err != nil {
		r.respond(c, err, "", "")
		return
	}
	id, err := r.Manager.Create(c.Request.Context(), record, uploads)
	if id != "" {
		if linkErr := r.link(c.Request.Context(), id, record); err == nil {
			err = linkErr
		}
	}
	r.respond(c, err, id, "Created "+record.Label())
}

func (r *Resource[T]) Save(c *gin.Context) {
	r.Images.limitBody(c)
	record := r.New()
	if err := c.ShouldBind(record); err != nil {
		r.respond(c, &content.ValidationError{Field: "form", Message: err.Error()}, "", "")
		return
	}
	uploads, err := r.Images.readUploads(c)
	if err != nil {
		r.respond(c, err, "", "")
		return
	}
	err = r.Manager.Update(c.Request.Context(), record, uploads)
	if err == nil {
		err = r.link(c.Request.Context(), record.RecordID(), record)
	}
	r.respond(c, err, record.RecordID(), "Saved "+record.Label())
}

func (r *Resource[T]) Delete(c *gin.Context) {
	req := IDRequest{}
	if err := c.ShouldBind(&req); err != nil {
		r.respond(c, &content.ValidationError{Field: "id", Message: "is required"}, "", "")
		return
	}
	err := r.Manager.Delete(c.Request.Context(), req.ID)
	r.respond(c, err, req.ID, "Deleted")
}

func (r *Resource[T]) link(ctx context.Context, id string, record T) error {
	for _, rel := range r.Relations {
		values := rel.Values(record)
		if values == nil {
			continue
		}
		if err := rel.Links.Assign(ctx, id, values); err != nil {
			return err
		}
	}
	return nil
}

// respond reports the outcome of a write together with the refreshed list
func (r *Resource[T]) respond(c *gin.Context, err error, id, notice string) {
	resp := Response{ID: id, Notice: notice}
	if err != nil {
		resp = ErrorResponse(err)
		if resp.ID == "" {
			resp.ID = id
		}
	}
	resp.Items = r.Manager.Refresh(c.Request.Context())
	r.render(c, ErrorStatus(err), resp, nil)
}

func (r *Resource[T]) render(c *gin.Context, status int, resp Response, edit map[string]any) {
	if auth.WantsJSON(c) {
		c.JSON(status, resp)
		return
	}
	data := page(c, r.Manager.Entity.Title)
	data["Path"] = r.Path()
	data["Fields"] = r.Fields
	data["ReadOnly"] = r.ReadOnly
	data["Uploads"] = r.Manager.Entity.Images != nil || r.Manager.Entity.Cover != nil
	data["MultipleUploads"] = r.Manager.Entity.Images != nil
	choices := make(map[string][]Choice, len(r.Relations))
	for _, rel := range r.Relations {
		choices[rel.Field] = rel.Choices(c.Request.Context())
	}
	data["Choices"] = choices
	data["Items"] = asMaps(resp.Items)
	data["Edit"] = edit
	data["Error"] = resp.Error
	data["Hint"] = resp.Hint
	data["Notice"] = resp.Notice
	c.HTML(status, "admin_list.tmpl", data)
}
