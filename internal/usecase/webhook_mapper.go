package usecase

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/xavierca1/ligue-leads/internal/entity"
)

// webhookFields holds every scalar found in a payload, keyed by normalized name
// ("full_name", "fullName" and "FULL_NAME" all become "fullname").
type webhookFields map[string]string

type webhookLead struct {
	EventID     string
	Name        string
	Email       string
	Phone       string
	Company     string
	Message     string
	Platform    string
	Campaign    string
	AdSet       string
	AdName      string
	CreatedTime string
	// Fingerprint digests every extracted field; it keys payloads without an event id.
	Fingerprint string
}

var webhookAliases = struct {
	eventID, name, firstName, lastName, email, phone, company, message,
	platform, campaign, adSet, adName, createdTime, googleKey []string
}{
	eventID:     []string{"leadgenid", "leadid", "eventid", "id"},
	name:        []string{"fullname", "name"},
	firstName:   []string{"firstname", "givenname"},
	lastName:    []string{"lastname", "familyname", "surname"},
	email:       []string{"email", "emailaddress", "workemail"},
	phone:       []string{"phonenumber", "phone", "mobilephone", "workphone"},
	company:     []string{"companyname", "company"},
	message:     []string{"message", "comments", "comment"},
	platform:    []string{"platform"},
	campaign:    []string{"campaignname", "campaign", "utmcampaign", "campaignid"},
	adSet:       []string{"adsetname", "adset", "adgroupname", "adgroup", "adsetid", "adgroupid"},
	adName:      []string{"adname", "creativename", "ad", "adid", "creativeid"},
	createdTime: []string{"createdtime", "createdat", "submittedat"},
	googleKey:   []string{"googlekey"},
}

var errPayloadNotObject = errors.New("payload must be a JSON object")

// parseWebhookPayload returns one field set per lead in the payload. A Meta
// Graph envelope ("entry[].changes[]") may batch several leads; every other
// shape carries exactly one.
func parseWebhookPayload(body []byte) ([]webhookFields, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil || raw == nil {
		return nil, errPayloadNotObject
	}

	var units []map[string]any
	if entries, ok := raw["entry"].([]any); ok {
		for _, e := range entries {
			entry, ok := e.(map[string]any)
			if !ok {
				continue
			}
			changes, ok := entry["changes"].([]any)
			if !ok {
				units = append(units, entry)
				continue
			}
			for _, c := range changes {
				if change, ok := c.(map[string]any); ok {
					units = append(units, change)
				}
			}
		}
	}
	if len(units) == 0 {
		units = []map[string]any{raw}
	}

	out := make([]webhookFields, 0, len(units))
	for _, u := range units {
		fields := webhookFields{}
		fields.collect(u)
		out = append(out, fields)
	}
	return out, nil
}

// collect walks the known single-lead shapes: flat objects, Meta "field_data"
// and Google "user_column_data". Scalars of an object win over anything nested
// below it.
func (f webhookFields) collect(obj map[string]any) {
	for key, value := range obj {
		switch value.(type) {
		case map[string]any, []any:
		default:
			f.set(key, scalarString(value))
		}
	}

	for key, value := range obj {
		switch typed := value.(type) {
		case map[string]any:
			switch normalizeKey(key) {
			case "value", "lead", "data":
				f.collect(typed)
			}
		case []any:
			switch normalizeKey(key) {
			case "fielddata":
				f.collectPairs(typed, []string{"name"}, "values")
			case "usercolumndata":
				f.collectPairs(typed, []string{"columnid", "columnname"}, "stringvalue")
			}
		}
	}
}

func (f webhookFields) collectPairs(items []any, keyFields []string, valueField string) {
	for _, item := range items {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		normalized := make(map[string]any, len(entry))
		for k, v := range entry {
			normalized[normalizeKey(k)] = v
		}

		var key string
		for _, kf := range keyFields {
			if s := scalarString(normalized[kf]); s != "" {
				key = s
				break
			}
		}
		if key == "" {
			continue
		}

		switch v := normalized[valueField].(type) {
		case []any:
			if len(v) > 0 {
				f.set(key, scalarString(v[0]))
			}
		default:
			f.set(key, scalarString(v))
		}
	}
}

// set keeps the first non-empty value seen for a key.
func (f webhookFields) set(key, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	k := normalizeKey(key)
	if _, exists := f[k]; !exists {
		f[k] = value
	}
}

func (f webhookFields) first(aliases []string) string {
	for _, a := range aliases {
		if v := f[a]; v != "" {
			return v
		}
	}
	return ""
}

func (f webhookFields) toLead() webhookLead {
	name := f.first(webhookAliases.name)
	if name == "" {
		name = strings.TrimSpace(f.first(webhookAliases.firstName) + " " + f.first(webhookAliases.lastName))
	}
	return webhookLead{
		EventID:     f.first(webhookAliases.eventID),
		Name:        name,
		Email:       f.first(webhookAliases.email),
		Phone:       f.first(webhookAliases.phone),
		Company:     f.first(webhookAliases.company),
		Message:     f.first(webhookAliases.message),
		Platform:    f.first(webhookAliases.platform),
		Campaign:    f.first(webhookAliases.campaign),
		AdSet:       f.first(webhookAliases.adSet),
		AdName:      f.first(webhookAliases.adName),
		CreatedTime: f.first(webhookAliases.createdTime),
		Fingerprint: f.fingerprint(),
	}
}

// fingerprint hashes the sorted key=value pairs, leaving out the google_key secret.
func (f webhookFields) fingerprint() string {
	keys := make([]string, 0, len(f))
	for k := range f {
		if k == "googlekey" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	h := sha256.New()
	for _, k := range keys {
		fmt.Fprintf(h, "%s=%q\n", k, f[k])
	}
	return hex.EncodeToString(h.Sum(nil))
}

// resolveWebhookSource maps the platform hint (or the payload's own platform
// field) onto the source enum and a display label for Lead.Platform.
func resolveWebhookSource(hint, payloadPlatform string) (entity.Source, string) {
	label := strings.ToLower(strings.TrimSpace(hint))
	if label == "" {
		label = strings.ToLower(strings.TrimSpace(payloadPlatform))
	}

	switch label {
	case "meta", "meta_ads", "facebook", "fb", "instagram", "ig":
		for _, p := range []string{label, strings.ToLower(strings.TrimSpace(payloadPlatform))} {
			switch p {
			case "facebook", "fb":
				return entity.SourceMetaAds, "facebook"
			case "instagram", "ig":
				return entity.SourceMetaAds, "instagram"
			}
		}
		return entity.SourceMetaAds, "meta"
	case "google", "google_ads", "adwords":
		return entity.SourceGoogleAds, "google"
	case "":
		return entity.SourceOther, ""
	default:
		return entity.SourceOther, label
	}
}

// webhookEventKey prefers the platform's own event id. Without one the key
// covers every extracted field, so only a redelivery of the same content collides.
func webhookEventKey(source entity.Source, wl webhookLead) string {
	if wl.EventID != "" {
		return fmt.Sprintf("%s:%s", source, wl.EventID)
	}
	return fmt.Sprintf("%s:sha256:%s", source, wl.Fingerprint)
}

func normalizeKey(key string) string {
	return strings.NewReplacer("_", "", "-", "", " ", "").Replace(strings.ToLower(key))
}

func scalarString(v any) string {
	switch typed := v.(type) {
	case string:
		return typed
	case json.Number:
		return typed.String()
	case bool:
		if typed {
			return "true"
		}
		return "false"
	case nil:
		return ""
	default:
		return ""
	}
}
