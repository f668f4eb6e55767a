package kommo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/xavierca1/ligue-leads/internal/infra/queue"
)

var ErrNotConfigured = errors.New("kommo não configurado")

type Client struct {
	apiToken   string
	baseURL    string
	statusID   int
	httpClient *http.Client
}

func NewClient(baseURL, apiToken string, statusID int) *Client {
	return &Client{
		apiToken:   apiToken,
		baseURL:    baseURL,
		statusID:   statusID,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) Configured() bool {
	return c.apiToken != "" && c.baseURL != ""
}

func (c *Client) Name() string { return "kommo" }

// HandleLeadCreated syncs a freshly ingested lead to the CRM pipeline.
func (c *Client) HandleLeadCreated(ctx context.Context, payload queue.LeadCreatedPayload) error {
	_, err := c.CreateLead(ctx, CreateLeadInput{
		Name:     payload.Name,
		Email:    payload.Email,
		Phone:    payload.Phone,
		Company:  payload.Company,
		Source:   payload.Source,
		Platform: payload.Platform,
		Campaign: payload.Campaign,
		Subject:  payload.Subject,
	})
	return err
}

func (c *Client) CreateLead(ctx context.Context, input CreateLeadInput) (int, error) {
	if !c.Configured() {
		log.Println("⚠️ Kommo: API_TOKEN não configurado")
		return 0, ErrNotConfigured
	}

	contactID, err := c.findOrCreateContact(ctx, input)
	if err != nil {
		return 0, fmt.Errorf("erro ao criar/buscar contato: %w", err)
	}

	title := input.Name
	if input.Subject != "" {
		title = fmt.Sprintf("%s - %s", input.Name, input.Subject)
	}

	tags := make([]map[string]interface{}, 0, 3)
	for _, t := range input.Tags() {
		tags = append(tags, map[string]interface{}{"name": t})
	}

	lead := map[string]interface{}{
		"name": title,
		"_embedded": map[string]interface{}{
			"tags":     tags,
			"contacts": []map[string]interface{}{{"id": contactID}},
		},
	}
	if c.statusID > 0 {
		lead["status_id"] = c.statusID
	}

	var result embeddedIDs
	if err := c.do(ctx, http.MethodPost, "/leads", []map[string]interface{}{lead}, &result); err != nil {
		return 0, fmt.Errorf("erro ao criar lead: %w", err)
	}
	if len(result.Embedded.Leads) == 0 {
		return 0, fmt.Errorf("lead não criado")
	}

	leadID := result.Embedded.Leads[0].ID
	log.Printf("✅ Kommo: Lead criado #%d para %s (%s)", leadID, input.Name, input.Source)
	return leadID, nil
}

func (c *Client) findOrCreateContact(ctx context.Context, input CreateLeadInput) (int, error) {
	query := input.Email
	if query == "" {
		query = input.Phone
	}
	if query != "" {
		if id, err := c.findContact(ctx, query); err == nil && id > 0 {
			log.Printf("📱 Kommo: Contato existente encontrado: %d", id)
			return id, nil
		}
	}
	return c.createContact(ctx, input)
}

func (c *Client) findContact(ctx context.Context, query string) (int, error) {
	var result embeddedIDs
	if err := c.do(ctx, http.MethodGet, "/contacts?query="+url.QueryEscape(query), nil, &result); err != nil {
		return 0, err
	}
	if len(result.Embedded.Contacts) == 0 {
		return 0, fmt.Errorf("contato não encontrado")
	}
	return result.Embedded.Contacts[0].ID, nil
}

func (c *Client) createContact(ctx context.Context, input CreateLeadInput) (int, error) {
	fields := []map[string]interface{}{
		{
			"field_code": "EMAIL",
			"values":     []map[string]interface{}{{"value": input.Email, "enum_code": "WORK"}},
		},
	}
	if input.Phone != "" {
		fields = append(fields, map[string]interface{}{
			"field_code": "PHONE",
			"values":     []map[string]interface{}{{"value": input.Phone, "enum_code": "WORK"}},
		})
	}

	contact := []map[string]interface{}{
		{"name": input.Name, "custom_fields_values": fields},
	}

	var result embeddedIDs
	if err := c.do(ctx, http.MethodPost, "/contacts", contact, &result); err != nil {
		return 0, fmt.Errorf("erro ao criar contato: %w", err)
	}
	if len(result.Embedded.Contacts) == 0 {
		return 0, fmt.Errorf("erro ao obter ID do contato criado")
	}

	contactID := result.Embedded.Contacts[0].ID
	log.Printf("✅ Kommo: Novo contato criado: %d", contactID)
	return contactID, nil
}

// Ping checks the account endpoint.
func (c *Client) Ping(ctx context.Context) error {
	if !c.Configured() {
		return ErrNotConfigured
	}
	return c.do(ctx, http.MethodGet, "/account", nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	c.addAuthHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("%d - %s", resp.StatusCode, string(raw))
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(raw, out)
}

func (c *Client) addAuthHeaders(req *http.Request) {
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiToken))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
}
