package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// RESTGateway talks to a PostgREST endpoint (`<BaseURL>/rest/v1/<table>`).
// Key is sent both as `apikey` and as the bearer token, so the anon key gives
// restricted access and the service role key privileged access.
type RESTGateway struct {
	BaseURL string
	Key     string
	Client  *http.Client
}

func NewRESTGateway(baseURL, key string, client *http.Client) *RESTGateway {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &RESTGateway{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Key:     key,
		Client:  client,
	}
}

func (g *RESTGateway) Select(ctx context.Context, q Query, dest any) error {
	params := url.Values{}
	params.Set("select", selectList(q))
	for _, e := range q.Embeds {
		if len(e.Order) > 0 {
			params.Set(e.Table+".order", orderList(e.Order))
		}
	}
	addFilters(params, q.Filters)
	if len(q.Order) > 0 {
		params.Set("order", orderList(q.Order))
	}
	if q.Limit > 0 {
		params.Set("limit", fmt.Sprint(q.Limit))
	}
	body, err := g.do(ctx, http.MethodGet, q.Table, params, nil, "")
	if err != nil {
		return err
	}
	if err = json.Unmarshal(body, dest); err != nil {
		return &Error{Message: "cannot decode " + q.Table + " rows", Err: err}
	}
	return nil
}

func (g *RESTGateway) Insert(ctx context.Context, table string, row Row) (string, error) {
	payload, err := json.Marshal(row)
	if err != nil {
		return "", err
	}
	body, err := g.do(ctx, http.MethodPost, table, url.Values{"select": {"id"}}, payload, "return=representation")
	if err != nil {
		return "", err
	}
	var created []struct {
		ID json.RawMessage `json:"id"`
	}
	if err = json.Unmarshal(body, &created); err != nil || len(created) == 0 {
		return "", &Error{Code: CodeNoRows, Message: "insert into " + table + " returned no row", Err: err}
	}
	return rawID(created[0].ID), nil
}

func (g *RESTGateway) Append(ctx context.Context, table string, row Row) error {
	payload, err := json.Marshal(row)
	if err != nil {
		return err
	}
	_, err = g.do(ctx, http.MethodPost, table, nil, payload, "return=minimal")
	return err
}

func (g *RESTGateway) Update(ctx context.Context, table string, patch Row, filters ...Filter) error {
	if len(filters) == 0 {
		return ErrMissingFilter
	}
	payload, err := json.Marshal(patch)
	if err != nil {
		return err
	}
	params := url.Values{}
	addFilters(params, filters)
	_, err = g.do(ctx, http.MethodPatch, table, params, payload, "return=minimal")
	return err
}

func (g *RESTGateway) Delete(ctx context.Context, table string, filters ...Filter) error {
	if len(filters) == 0 {
		return ErrMissingFilter
	}
	params := url.Values{}
	addFilters(params, filters)
	_, err := g.do(ctx, http.MethodDelete, table, params, nil, "return=minimal")
	return err
}

func (g *RESTGateway) do(ctx context.Context, method, table string, params url.Values, payload []byte, prefer string) ([]byte, error) {
	endpoint := g.BaseURL + "/rest/v1/" + url.PathEscape(table)
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("apikey", g.Key)
	req.Header.Set("Authorization", "Bearer "+g.Key)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if prefer != "" {
		req.Header.Set("Prefer", prefer)
	}
	resp, err := g.Client.Do(req)
	if err != nil {
		return nil, &Error{Message: method + " " + table + " failed", Err: err}
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Status: resp.StatusCode, Message: "cannot read response", Err: err}
	}
	if resp.StatusCode >= 300 {
		return nil, decodeError(resp.StatusCode, body)
	}
	return body, nil
}

func decodeError(status int, body []byte) *Error {
	result := &Error{Status: status}
	var payload struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details string `json:"details"`
		Hint    string `json:"hint"`
	}
	if json.Unmarshal(body, &payload) == nil && payload.Message != "" {
		result.Code = payload.Code
		result.Message = payload.Message
		result.Details = payload.Details
		result.Hint = payload.Hint
		return result
	}
	result.Message = strings.TrimSpace(string(body))
	if result.Message == "" {
		result.Message = http.StatusText(status)
	}
	return result
}

func selectList(q Query) string {
	columns := q.Columns
	if len(columns) == 0 {
		columns = []string{"*"}
	}
	parts := append([]string{}, columns...)
	for _, e := range q.Embeds {
		parts = append(parts, e.Table+"(*)")
	}
	return strings.Join(parts, ",")
}

func orderList(order []Order) string {
	parts := make([]string, 0, len(order))
	for _, o := range order {
		dir := "asc"
		if o.Descending {
			dir = "desc"
		}
		parts = append(parts, o.Column+"."+dir)
	}
	return strings.Join(parts, ",")
}

func addFilters(params url.Values, filters []Filter) {
	for _, f := range filters {
		op := f.Op
		if op == "" {
			op = OpEq
		}
		if values, ok := f.Value.([]string); ok && op == OpIn {
			params.Add(f.Column, string(op)+".("+listValue(values)+")")
			continue
		}
		params.Add(f.Column, string(op)+"."+filterValue(f.Value))
	}
}

func filterValue(v any) string {
	switch value := v.(type) {
	case nil:
		return "null"
	case string:
		return value
	default:
		return fmt.Sprint(value)
	}
}

// listValue quotes every item, PostgREST reserves `,` `.` `(` `)` inside lists
func listValue(values []string) string {
	quoted := make([]string, 0, len(values))
	for _, v := range values {
		quoted = append(quoted, strconv.Quote(v))
	}
	return strings.Join(quoted, ",")
}

// rawID accepts both uuid strings and numeric identity columns
func rawID(raw json.RawMessage) string {
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}
