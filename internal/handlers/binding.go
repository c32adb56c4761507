package handlers

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/gin-gonic/gin"
)

// BindNestedOrFlat binds the JSON body to obj. Clients may wrap the payload under key
// ({"payment": {...}}) or send it flat; a wrapped payload that does not fit obj is an error.
func BindNestedOrFlat(c *gin.Context, key string, obj interface{}) error {
	var body []byte
	if c.Request.Body != nil {
		body, _ = io.ReadAll(c.Request.Body)
	}
	c.Request.Body = io.NopCloser(bytes.NewBuffer(body))

	var wrapped map[string]json.RawMessage
	if err := json.Unmarshal(body, &wrapped); err == nil {
		if inner, ok := wrapped[key]; ok {
			return json.Unmarshal(inner, obj)
		}
	}
	return json.Unmarshal(body, obj)
}

// bindOptional is BindNestedOrFlat for endpoints whose body may be omitted
func bindOptional(c *gin.Context, key string, obj interface{}) error {
	if c.Request.Body == nil {
		return nil
	}
	bodyBytes, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(bodyBytes)) == 0 {
		return nil
	}
	c.Request.Body = io.NopCloser(bytes.NewReader(bodyBytes))
	return BindNestedOrFlat(c, key, obj)
}
