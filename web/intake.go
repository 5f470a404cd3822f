package web

import (
	"errors"
	"net/http"

	"cozyvile/content"
	"cozyvile/handlers"
	"cozyvile/models"

	"github.com/gin-gonic/gin"
)

type SubscribeRequest struct {
	Email string `form:"email" json:"email"`
}

func (s *Site) ContactForm(c *gin.Context) {
	s.render(c, http.StatusOK, "contact.tmpl", view{
		"Form":     models.ContactMessage{},
		"Settings": s.Settings.Load(c.Request.Context()),
	})
}

func (s *Site) ContactSubmit(c *gin.Context) {
	msg := models.ContactMessage{}
	if err := c.ShouldBind(&msg); err != nil {
		s.intakeResult(c, "contact.tmpl", content.Result{}, &content.ValidationError{Field: "form", Message: err.Error()}, msg)
		return
	}
	result, err := s.Intake.Contact(c.Request.Context(), &msg)
	if err == nil {
		msg = models.ContactMessage{}
	}
	s.intakeResult(c, "contact.tmpl", result, err, msg)
}

func (s *Site) Subscribe(c *gin.Context) {
	req := SubscribeRequest{}
	_ = c.ShouldBind(&req)
	result, err := s.Intake.Subscribe(c.Request.Context(), req.Email)
	s.intakeResult(c, "message.tmpl", result, err, nil)
}

// intakeResult answers a form submission, {ok, message} for API callers
func (s *Site) intakeResult(c *gin.Context, name string, result content.Result, err error, form any) {
	status := http.StatusOK
	if err != nil {
		status = handlers.ErrorStatus(err)
		result = content.Result{Message: visitorMessage(err)}
	}
	if c.Query("format") == "json" || c.ContentType() == "application/json" {
		c.JSON(status, result)
		return
	}
	data := view{"Result": result}
	if form != nil {
		data["Form"] = form
	}
	s.render(c, status, name, data)
}

// visitorMessage hides remote failure details from visitors
func visitorMessage(err error) string {
	var validation *content.ValidationError
	if errors.As(err, &validation) {
		if validation.Field == "email" && validation.Message == content.MessageInvalidEmail {
			return validation.Message
		}
		return "Please check the " + validation.Field + " field: " + validation.Message
	}
	return "Sorry, something went wrong. Please try again later."
}
