package kommo

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/ligue-leads/internal/infra/queue"
)

func TestCreateLeadCreatesContactAndTagsLead(t *testing.T) {
	var leadBody []map[string]interface{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/contacts":
			assert.Equal(t, "jane@x.com", r.URL.Query().Get("query"))
			w.WriteHeader(http.StatusNoContent)
		case r.Method == http.MethodPost && r.URL.Path == "/contacts":
			_, _ = w.Write([]byte(`{"_embedded":{"contacts":[{"id":77}]}}`))
		case r.Method == http.MethodPost && r.URL.Path == "/leads":
			require.NoError(t, json.NewDecoder(r.Body).Decode(&leadBody))
			_, _ = w.Write([]byte(`{"_embedded":{"leads":[{"id":501}]}}`))
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok", 42)
	id, err := c.CreateLead(context.Background(), CreateLeadInput{
		Name:     "Jane Doe",
		Email:    "jane@x.com",
		Source:   "meta_ads",
		Platform: "facebook",
		Campaign: "Spring24",
	})

	require.NoError(t, err)
	assert.Equal(t, 501, id)
	require.Len(t, leadBody, 1)
	assert.Equal(t, "Jane Doe", leadBody[0]["name"])
	assert.EqualValues(t, 42, leadBody[0]["status_id"])

	embedded := leadBody[0]["_embedded"].(map[string]interface{})
	assert.Len(t, embedded["tags"], 3)
	contacts := embedded["contacts"].([]interface{})
	assert.EqualValues(t, 77, contacts[0].(map[string]interface{})["id"])
}

func TestCreateLeadReusesExistingContact(t *testing.T) {
	createdContact := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/contacts":
			_, _ = w.Write([]byte(`{"_embedded":{"contacts":[{"id":9}]}}`))
		case r.Method == http.MethodPost && r.URL.Path == "/contacts":
			createdContact = true
			w.WriteHeader(http.StatusInternalServerError)
		case r.URL.Path == "/leads":
			_, _ = w.Write([]byte(`{"_embedded":{"leads":[{"id":1}]}}`))
		}
	}))
	defer srv.Close()

	err := NewClient(srv.URL, "tok", 0).HandleLeadCreated(context.Background(), queue.LeadCreatedPayload{
		Name:  "Ana",
		Email: "ana@x.com",
	})
	assert.NoError(t, err)
	assert.False(t, createdContact)
}

func TestCreateLeadNotConfigured(t *testing.T) {
	_, err := NewClient("", "", 0).CreateLead(context.Background(), CreateLeadInput{Name: "x"})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestCreateLeadPropagatesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/contacts" && r.Method == http.MethodPost {
			_, _ = w.Write([]byte(`{"_embedded":{"contacts":[{"id":3}]}}`))
			return
		}
		if r.URL.Path == "/leads" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"title":"Bad Request"}`))
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "tok", 0).CreateLead(context.Background(), CreateLeadInput{Name: "x", Email: "x@y.com"})
	assert.ErrorContains(t, err, "400")
}

func TestPing(t *testing.T) {
	status := http.StatusOK
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/account", r.URL.Path)
		w.WriteHeader(status)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok", 0)
	assert.NoError(t, c.Ping(context.Background()))

	status = http.StatusUnauthorized
	assert.ErrorContains(t, c.Ping(context.Background()), "401")

	assert.ErrorIs(t, NewClient("", "", 0).Ping(context.Background()), ErrNotConfigured)
}
