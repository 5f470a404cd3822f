package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"cozyvile/auth"
	"cozyvile/content"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/csrf"
)

type Response struct {
	Error  string `json:"error"`
	Hint   string `json:"hint,omitempty"`
	Notice string `json:"notice,omitempty"`
	ID     string `json:"id,omitempty"`
	Items  any    `json:"items,omitempty"`
}

var (
	// Predefined responses
	OKResponse      = Response{}
	BadFormResponse = Response{Error: "invalid form"}
)

// ErrorStatus maps the content error taxonomy to a HTTP status
func ErrorStatus(err error) int {
	var validation *content.ValidationError
	var remote *content.RemoteOperationError
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.Is(err, content.ErrNotConfigured):
		return http.StatusServiceUnavailable
	case errors.Is(err, content.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &remote):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// ErrorResponse reports err verbatim, with the remediation hint when there is one
func ErrorResponse(err error) Response {
	r := Response{Error: err.Error()}
	var config *content.ConfigurationError
	var remote *content.RemoteOperationError
	switch {
	case errors.As(err, &config):
		r.Hint = config.Hint
	case errors.As(err, &remote):
		r.Hint = remote.Hint
		r.ID = remote.Created
	}
	return r
}

// page is the data every admin template gets
func page(c *gin.Context, title string) gin.H {
	return gin.H{
		"Title":     title,
		"Admin":     auth.LoadSession(c).IsAdmin(),
		"CSRFField": csrf.TemplateField(c.Request),
		"CSRFToken": csrf.Token(c.Request),
	}
}

// asMaps turns records into generic rows for the list templates, using their JSON names
func asMaps(items any) []map[string]any {
	result := []map[string]any{}
	data, err := json.Marshal(items)
	if err != nil {
		log.Printf("Encoding list items: %v", err)
		return result
	}
	if err = json.Unmarshal(data, &result); err != nil {
		log.Printf("Decoding list items: %v", err)
	}
	return result
}
