package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// client talks to l2fwdd's control surface over JSON/HTTP.
type client struct {
	baseURL string
	http    *http.Client
}

func newClient(baseURL string) *client {
	return &client{baseURL: baseURL, http: &http.Client{Timeout: 5 * time.Second}}
}

func (c *client) healthy() error {
	resp, err := c.http.Get(c.baseURL + "/healthz")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("healthz returned %s", resp.Status)
	}
	return nil
}

func (c *client) post(path string, req, resp any) error {
	var body bytes.Buffer
	if req != nil {
		if err := json.NewEncoder(&body).Encode(req); err != nil {
			return err
		}
	}
	httpResp, err := c.http.Post(c.baseURL+path, "application/json", &body)
	if err != nil {
		return err
	}
	defer httpResp.Body.Close()
	return decodeOrError(httpResp, resp)
}

func (c *client) get(path string, resp any) error {
	httpResp, err := c.http.Get(c.baseURL + path)
	if err != nil {
		return err
	}
	defer httpResp.Body.Close()
	return decodeOrError(httpResp, resp)
}

func decodeOrError(httpResp *http.Response, resp any) error {
	if httpResp.StatusCode >= 300 {
		var errBody struct {
			Error string `json:"error"`
		}
		b, _ := io.ReadAll(httpResp.Body)
		if json.Unmarshal(b, &errBody) == nil && errBody.Error != "" {
			return fmt.Errorf("%s", errBody.Error)
		}
		return fmt.Errorf("%s: %s", httpResp.Status, string(b))
	}
	if resp == nil {
		return nil
	}
	return json.NewDecoder(httpResp.Body).Decode(resp)
}
