// Package llm reviews audit findings through an external LLM endpoint
// speaking a minimal JSON protocol: POST {"prompt": ...} in,
// {"approve": true|false} out.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/phylobot/phylo/pkg/phylo/audit"
)

// Client calls an external LLM endpoint to approve or reject audit
// findings. It implements audit.Reviewer.
type Client struct {
	Endpoint string
	APIKey   string

	HTTPClient *http.Client
	Prompts    PromptTemplates
}

// PromptTemplates allow customization of the per-finding prompt text.
type PromptTemplates struct {
	DeadSignal  string
	LowCoverage string
	OrphanTerm  string
}

type requestPayload struct {
	Prompt string `json:"prompt"`
}

type responsePayload struct {
	Approve bool   `json:"approve"`
	Reason  string `json:"reason,omitempty"`
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: 10 * time.Second}
}

// Approve implements audit.Reviewer.
func (c *Client) Approve(ctx context.Context, f audit.Finding) (bool, error) {
	resp, err := c.call(ctx, c.findingPrompt(f))
	if err != nil {
		return false, err
	}
	return resp.Approve, nil
}

func (c *Client) call(ctx context.Context, prompt string) (*responsePayload, error) {
	if c.Endpoint == "" {
		return nil, fmt.Errorf("llm reviewer: endpoint required")
	}

	body, err := json.Marshal(requestPayload{Prompt: prompt})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("llm reviewer: http %d", resp.StatusCode)
	}

	var payload responsePayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func (c *Client) findingPrompt(f audit.Finding) string {
	switch f.Type {
	case audit.FindingLowCoverage:
		tpl := c.Prompts.LowCoverage
		if tpl == "" {
			tpl = "Signal '%s' of category '%s' (level %s) matched only %.0f%% of that category's records, missing %d. Approve rewording or replacing it? Reply JSON {\"approve\": true|false}."
		}
		return fmt.Sprintf(tpl, f.Term, f.Category, f.Level, 100*f.Coverage, f.Missed)
	case audit.FindingOrphanTerm:
		tpl := c.Prompts.OrphanTerm
		if tpl == "" {
			if f.Category != "" {
				tpl = "Term '%s' appears in %d records but is no category's signal; the records mostly classify as %s/%s. Approve proposing it as a signal there? Reply JSON {\"approve\": true|false}."
				return fmt.Sprintf(tpl, f.Term, f.Support, f.Level, f.Category)
			}
			tpl = "Term '%s' appears in %d records but is no category's signal and no category dominates those records. Approve flagging it for manual triage? Reply JSON {\"approve\": true|false}."
			return fmt.Sprintf(tpl, f.Term, f.Support)
		}
		return fmt.Sprintf(tpl, f.Term, f.Support, f.Level, f.Category)
	default: // audit.FindingDeadSignal
		tpl := c.Prompts.DeadSignal
		if tpl == "" {
			tpl = "Signal '%s' of category '%s' (level %s) matched no record in the corpus; the category has %d. Approve removing it? Reply JSON {\"approve\": true|false}."
		}
		return fmt.Sprintf(tpl, f.Term, f.Category, f.Level, f.Missed)
	}
}
