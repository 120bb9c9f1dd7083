package essearch

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/taranco/contact-directory-api/internal/domain/entity"
)

// MemberIndex mirrors approved members into Elasticsearch for search. The
// store stays authoritative; callers fall back to it when the index errors.
type MemberIndex struct {
	ES    *elasticsearch.Client
	IndexName string
}

func NewMemberIndex(es *elasticsearch.Client, index string) *MemberIndex {
	return &MemberIndex{ES: es, IndexName: index}
}

type memberDoc struct {
	ID          string `json:"id"`
	UserID      string `json:"user_id"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	Address     string `json:"address"`
	DOB         string `json:"dob,omitempty"`
	PhotoURL    string `json:"photo_url"`
	FamilyHead  bool   `json:"family_head"`
	IsApproved  bool   `json:"is_approved"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

func toDoc(m *entity.Member) memberDoc {
	d := memberDoc{
		ID:          m.ID,
		UserID:      m.UserID,
		FirstName:   m.FirstName,
		LastName:    m.LastName,
		Email:       m.Email,
		PhoneNumber: m.PhoneNumber,
		Address:     m.Address,
		PhotoURL:    m.PhotoURL,
		FamilyHead:  m.FamilyHead,
		IsApproved:  m.IsApproved,
		CreatedAt:   m.CreatedAt.Format(time.RFC3339Nano),
		UpdatedAt:   m.UpdatedAt.Format(time.RFC3339Nano),
	}
	if m.DOB != nil {
		d.DOB = m.DOB.Format("2006-01-02")
	}
	return d
}

func fromDoc(d memberDoc) *entity.Member {
	m := &entity.Member{
		ID:          d.ID,
		UserID:      d.UserID,
		FirstName:   d.FirstName,
		LastName:    d.LastName,
		Email:       d.Email,
		PhoneNumber: d.PhoneNumber,
		Address:     d.Address,
		PhotoURL:    d.PhotoURL,
		FamilyHead:  d.FamilyHead,
		IsApproved:  d.IsApproved,
	}
	if t, err := time.Parse(time.RFC3339Nano, d.CreatedAt); err == nil {
		m.CreatedAt = t
	}
	if t, err := time.Parse(time.RFC3339Nano, d.UpdatedAt); err == nil {
		m.UpdatedAt = t
	}
	if d.DOB != "" {
		if t, err := time.Parse("2006-01-02", d.DOB); err == nil {
			m.DOB = &t
		}
	}
	return m
}

func (x *MemberIndex) Index(ctx context.Context, m *entity.Member) error {
	b, _ := json.Marshal(toDoc(m))
	req := esapi.IndexRequest{Index: x.IndexName, DocumentID: m.ID, Body: strings.NewReader(string(b)), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, x.ES)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("es index: %s", res.Status())
	}
	return nil
}

func (x *MemberIndex) Remove(ctx context.Context, id string) error {
	req := esapi.DeleteRequest{Index: x.IndexName, DocumentID: id}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, x.ES)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	// 404 means the member was never indexed; not an error for removal
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("es delete: %s", res.Status())
	}
	return nil
}

// Search runs case-insensitive substring wildcards across the searchable
// fields, restricted to approved members.
func (x *MemberIndex) Search(ctx context.Context, query string) ([]*entity.Member, error) {
	pattern := "*" + strings.ToLower(query) + "*"
	should := make([]map[string]any, 0, 5)
	for _, field := range []string{"first_name", "last_name", "email", "phone_number", "address"} {
		should = append(should, map[string]any{
			"wildcard": map[string]any{
				field + ".keyword": map[string]any{
					"value":            pattern,
					"case_insensitive": true,
				},
			},
		})
	}
	body := map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"filter":               []map[string]any{{"term": map[string]any{"is_approved": true}}},
				"should":               should,
				"minimum_should_match": 1,
			},
		},
		"size": 50,
	}
	b, _ := json.Marshal(body)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := x.ES.Search(
		x.ES.Search.WithContext(c),
		x.ES.Search.WithIndex(x.IndexName),
		x.ES.Search.WithBody(strings.NewReader(string(b))),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return nil, fmt.Errorf("es search: %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source memberDoc `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}
	out := make([]*entity.Member, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, fromDoc(h.Source))
	}
	return out, nil
}
