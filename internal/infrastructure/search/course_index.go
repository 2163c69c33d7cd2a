package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/oksasatya/course-subscription-api/internal/domain/entity"
)

const requestTimeout = 3 * time.Second

// CourseIndex keeps course documents in an Elasticsearch index.
type CourseIndex struct {
	ES        *elasticsearch.Client
	IndexName string
}

func NewCourseIndex(es *elasticsearch.Client, index string) *CourseIndex {
	return &CourseIndex{ES: es, IndexName: index}
}

type courseDoc struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Instructor  *string `json:"instructor,omitempty"`
	Duration    *int    `json:"duration,omitempty"`
	CoverURL    string  `json:"cover_url,omitempty"`
	CreatedAt   string  `json:"created_at"`
}

func toDoc(c *entity.Course) courseDoc {
	return courseDoc{
		ID:          c.ID,
		Title:       c.Title,
		Description: c.Description,
		Instructor:  c.Instructor,
		Duration:    c.Duration,
		CoverURL:    c.CoverURL,
		CreatedAt:   c.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func (d courseDoc) course() entity.Course {
	c := entity.Course{
		ID:          d.ID,
		Title:       d.Title,
		Description: d.Description,
		Instructor:  d.Instructor,
		Duration:    d.Duration,
		CoverURL:    d.CoverURL,
	}
	if t, err := time.Parse(time.RFC3339Nano, d.CreatedAt); err == nil {
		c.CreatedAt = t
	}
	return c
}

const courseMapping = `{
  "mappings": {
    "properties": {
      "id":          {"type": "keyword"},
      "title":       {"type": "text", "fields": {"raw": {"type": "keyword"}}},
      "description": {"type": "text"},
      "instructor":  {"type": "text"},
      "duration":    {"type": "integer"},
      "cover_url":   {"type": "keyword", "index": false},
      "created_at":  {"type": "date"}
    }
  }
}`

// EnsureIndex creates the index with the course mapping when it does not exist yet.
func (i *CourseIndex) EnsureIndex(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	res, err := i.ES.Indices.Exists([]string{i.IndexName}, i.ES.Indices.Exists.WithContext(ctx))
	if err != nil {
		return err
	}
	_ = res.Body.Close()
	if res.StatusCode == 200 {
		return nil
	}

	res, err = i.ES.Indices.Create(i.IndexName,
		i.ES.Indices.Create.WithContext(ctx),
		i.ES.Indices.Create.WithBody(strings.NewReader(courseMapping)),
	)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("create index %s: %s", i.IndexName, res.Status())
	}
	return nil
}

func (i *CourseIndex) Index(ctx context.Context, c *entity.Course) error {
	b, err := json.Marshal(toDoc(c))
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{Index: i.IndexName, DocumentID: c.ID, Body: bytes.NewReader(b), Refresh: "false"}
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := req.Do(ctx, i.ES)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("index course %s: %s", c.ID, res.Status())
	}
	return nil
}

// Search runs a multi_match over title, instructor and description.
func (i *CourseIndex) Search(ctx context.Context, q string, size int) ([]entity.Course, error) {
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"title^2", "description", "instructor"},
			},
		},
		"size": size,
	}
	b, err := json.Marshal(query)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	res, err := i.ES.Search(
		i.ES.Search.WithContext(ctx),
		i.ES.Search.WithIndex(i.IndexName),
		i.ES.Search.WithBody(bytes.NewReader(b)),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return nil, fmt.Errorf("search courses: %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source courseDoc `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]entity.Course, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source.course())
	}
	return out, nil
}
