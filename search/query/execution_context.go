package query

// Store is the read-only posting store a tree is evaluated against. It must be
// safe for concurrent reads when independent queries share it.
type Store interface {
	// Postings returns an empty list when the term does not occur in the field.
	Postings(field, term string) (*PostingList, error)
	FieldLength(field string, docId uint64) (int, error)
	// TotalFieldLength is the number of tokens of the field over all documents.
	TotalFieldLength(field string) (uint64, error)
	// DocCountForField is the number of documents having the field.
	DocCountForField(field string) (uint64, error)
	TotalDocCount() (uint64, error)
}

type fieldTerm struct {
	field string
	term  string
}

type FieldStats struct {
	DocCount         uint64
	TotalFieldLength uint64
}

// ExecutionContext is shared by the nodes of one tree during one evaluation.
// Posting lists and field statistics are looked up once per query.
type ExecutionContext struct {
	Model RetrievalModel
	Store Store

	postings      map[fieldTerm]*PostingList
	fieldStats    map[string]*FieldStats
	totalDocCount uint64
	hasDocCount   bool
}

func NewExecutionContext(store Store, model RetrievalModel) *ExecutionContext {
	return &ExecutionContext{
		Model:      model,
		Store:      store,
		postings:   make(map[fieldTerm]*PostingList, 10),
		fieldStats: make(map[string]*FieldStats, 5),
	}
}

func (c *ExecutionContext) Postings(field, term string) (*PostingList, error) {
	key := fieldTerm{field: field, term: term}

	postings, exists := c.postings[key]
	if !exists {
		var err error
		postings, err = c.Store.Postings(field, term)
		if err != nil {
			return nil, err
		}

		if postings == nil {
			postings = NewPostingList()
		}

		c.postings[key] = postings
	}

	return postings, nil
}

func (c *ExecutionContext) FieldStats(field string) (*FieldStats, error) {
	stats, exists := c.fieldStats[field]
	if !exists {
		docCount, err := c.Store.DocCountForField(field)
		if err != nil {
			return nil, err
		}

		totalFieldLength, err := c.Store.TotalFieldLength(field)
		if err != nil {
			return nil, err
		}

		stats = &FieldStats{DocCount: docCount, TotalFieldLength: totalFieldLength}
		c.fieldStats[field] = stats
	}

	return stats, nil
}

func (c *ExecutionContext) TotalDocCount() (uint64, error) {
	if !c.hasDocCount {
		count, err := c.Store.TotalDocCount()
		if err != nil {
			return 0, err
		}

		c.totalDocCount = count
		c.hasDocCount = true
	}

	return c.totalDocCount, nil
}

func (c *ExecutionContext) FieldLength(field string, docId uint64) (int, error) {
	return c.Store.FieldLength(field, docId)
}
