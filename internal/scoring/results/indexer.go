package results

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/DreamdeskdevOps/psytest-backend-sub002/internal/common/errors"
	"github.com/DreamdeskdevOps/psytest-backend-sub002/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
)

// Indexer publishes final results for reporting.
type Indexer interface {
	Index(ctx context.Context, r *models.UserTestResult) error
}

// ElasticsearchIndexer writes one document per result, keyed by result id so
// re-indexing the same result overwrites rather than duplicates.
type ElasticsearchIndexer struct {
	client *elasticsearch.Client
	index  string
}

func NewElasticsearchIndexer(client *elasticsearch.Client, index string) *ElasticsearchIndexer {
	return &ElasticsearchIndexer{client: client, index: index}
}

type resultDocument struct {
	*models.UserTestResult
	IndexedCodes []string `json:"indexedCodes,omitempty"`
}

func (i *ElasticsearchIndexer) Index(ctx context.Context, r *models.UserTestResult) error {
	doc := resultDocument{UserTestResult: r}
	var flags []models.RankedFlag
	if len(r.ComponentCombination) > 0 && json.Unmarshal(r.ComponentCombination, &flags) == nil {
		for _, f := range flags {
			doc.IndexedCodes = append(doc.IndexedCodes, f.Code)
		}
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return errors.NewIndexingFailedError(i.index, err)
	}

	res, err := i.client.Index(
		i.index,
		bytes.NewReader(body),
		i.client.Index.WithDocumentID(r.ID),
		i.client.Index.WithContext(ctx),
	)
	if err != nil {
		return errors.NewIndexingFailedError(i.index, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return errors.NewIndexingFailedError(i.index, fmt.Errorf("elasticsearch returned %s", res.Status()))
	}
	return nil
}
