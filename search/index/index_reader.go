package index

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/larose/lynxeval/search/query"
)

func readCommit(directory string) (*Commit, error) {
	commitFile, err := os.Open(filepath.Join(directory, "commit"))
	if errors.Is(err, os.ErrNotExist) {
		return &Commit{SegmentIds: make([]uint32, 0)}, nil
	}
	if err != nil {
		return nil, err
	}
	defer commitFile.Close()

	var commit Commit
	if err := json.NewDecoder(commitFile).Decode(&commit); err != nil {
		return nil, fmt.Errorf("read commit: %w", err)
	}

	return &commit, nil
}

func ToGlobalDocId(segmentId, localDocId uint32) uint64 {
	return uint64(segmentId)<<32 | uint64(localDocId)
}

func ToSegmentId(docId uint64) uint32 {
	return uint32(docId >> 32)
}

func toLocalDocId(docId uint64) DocumentId {
	return DocumentId(uint32(docId))
}

// IndexReader is a point in time view of an index. Global document ids
// combine the segment id and the local id, and segments are visited by
// ascending id, so postings come out in ascending global id order.
type IndexReader struct {
	// SegmentReaders is sorted by segment id
	SegmentReaders []*SegmentReader

	commit       *Commit
	segmentsById map[uint32]*SegmentReader

	externalMutex  sync.Mutex
	externalField  string
	externalLookup map[string]uint64
}

var _ query.Store = (*IndexReader)(nil)

func NewIndexReader(directory string) (*IndexReader, error) {
	commit, err := readCommit(directory)
	if err != nil {
		return nil, err
	}

	var deletedReader DeletedReader
	if commit.DeletedId == nil {
		deletedReader = newNullDeletedReader()
	} else {
		deletedReader, err = newFileDeletedReader(directory, *commit.DeletedId)
		if err != nil {
			return nil, err
		}
	}
	defer deletedReader.Close()

	reader := &IndexReader{
		SegmentReaders: make([]*SegmentReader, 0, len(commit.SegmentIds)),
		commit:         commit,
		segmentsById:   make(map[uint32]*SegmentReader, len(commit.SegmentIds)),
	}

	segmentIds := slices.Clone(commit.SegmentIds)
	slices.Sort(segmentIds)

	for _, segmentId := range segmentIds {
		deletedDocIdsForSegment, err := deletedReader.GetDeletedDocIdsForSegment(segmentId)
		if err != nil {
			_ = reader.Close()
			return nil, err
		}

		if deletedDocIdsForSegment == nil {
			deletedDocIdsForSegment = roaring.NewBitmap()
		}

		segmentReader, err := newSegmentReader(directory, segmentId, deletedDocIdsForSegment)
		if err != nil {
			_ = reader.Close()
			return nil, fmt.Errorf("open segment %d: %w", segmentId, err)
		}

		reader.SegmentReaders = append(reader.SegmentReaders, segmentReader)
		reader.segmentsById[segmentId] = segmentReader
	}

	return reader, nil
}

// forEachPosting visits the live documents of a term in ascending global id
// order.
func (reader *IndexReader) forEachPosting(fieldName string, term []byte, visit func(docId uint64, positions []uint32) error) error {
	for _, segmentReader := range reader.SegmentReaders {
		err := forEachSegmentPosting(segmentReader, fieldName, term, func(docId DocumentId, positions []uint32) error {
			return visit(ToGlobalDocId(segmentReader.Id, uint32(docId)), positions)
		})
		if err != nil {
			return err
		}
	}

	return nil
}

func forEachSegmentPosting(segmentReader *SegmentReader, fieldName string, term []byte, visit func(docId DocumentId, positions []uint32) error) error {
	fieldReader, err := segmentReader.FieldReader(fieldName)
	if err != nil || fieldReader == nil {
		return err
	}

	termInfo := fieldReader.Dictionary.Get(term)
	if termInfo == nil {
		return nil
	}

	it := fieldReader.Postings.TermPostingsIterator(termInfo)
	docId := DocumentId(0)
	for it.Next(docId) {
		if !segmentReader.IsDeleted(it.DocId()) {
			if err := visit(it.DocId(), it.Positions()); err != nil {
				return err
			}
		}

		docId = it.DocId() + 1
		if docId == 0 {
			break
		}
	}

	return nil
}

// Postings returns an empty list when the term is not in the index.
func (reader *IndexReader) Postings(fieldName, term string) (*query.PostingList, error) {
	postings := query.NewPostingList()

	err := reader.forEachPosting(fieldName, []byte(term), func(docId uint64, positions []uint32) error {
		intPositions := make([]int, len(positions))
		for i, position := range positions {
			intPositions[i] = int(position)
		}

		return postings.Append(docId, intPositions)
	})
	if err != nil {
		return nil, fmt.Errorf("postings %s.%s: %w", term, fieldName, err)
	}

	return postings, nil
}

func (reader *IndexReader) FieldLength(fieldName string, docId uint64) (int, error) {
	segmentReader, exists := reader.segmentsById[ToSegmentId(docId)]
	if !exists {
		return 0, fmt.Errorf("document %d not found", docId)
	}

	fieldReader, err := segmentReader.FieldReader(fieldName)
	if err != nil || fieldReader == nil {
		return 0, err
	}

	length, err := fieldReader.Lengths.Get(toLocalDocId(docId))
	if err != nil {
		return 0, err
	}

	return int(length), nil
}

func (reader *IndexReader) fieldStats(fieldName string) (query.FieldStats, error) {
	stats := query.FieldStats{}

	for _, segmentReader := range reader.SegmentReaders {
		fieldReader, err := segmentReader.FieldReader(fieldName)
		if err != nil {
			return stats, err
		}
		if fieldReader == nil {
			continue
		}

		stats.DocCount += uint64(fieldReader.Stats.DocCount)
		stats.TotalFieldLength += fieldReader.Stats.SumTermFreq
	}

	return stats, nil
}

// TotalFieldLength includes deleted documents until their segment is
// rewritten.
func (reader *IndexReader) TotalFieldLength(fieldName string) (uint64, error) {
	stats, err := reader.fieldStats(fieldName)
	return stats.TotalFieldLength, err
}

func (reader *IndexReader) DocCountForField(fieldName string) (uint64, error) {
	stats, err := reader.fieldStats(fieldName)
	return stats.DocCount, err
}

func (reader *IndexReader) TotalDocCount() (uint64, error) {
	total := uint64(0)
	for _, segmentReader := range reader.SegmentReaders {
		total += segmentReader.LiveDocCount()
	}

	return total, nil
}

// SearchByExactValues returns the live documents whose fieldName field is
// one of values, in ascending global id order.
func (reader *IndexReader) SearchByExactValues(fieldName string, values [][]byte) ([]uint64, error) {
	docIds := roaring.NewBitmap()
	results := make([]uint64, 0, len(values))

	for _, segmentReader := range reader.SegmentReaders {
		docIds.Clear()

		for _, value := range values {
			err := forEachSegmentPosting(segmentReader, fieldName, value, func(docId DocumentId, _ []uint32) error {
				docIds.Add(uint32(docId))
				return nil
			})
			if err != nil {
				return nil, err
			}
		}

		it := docIds.Iterator()
		for it.HasNext() {
			results = append(results, ToGlobalDocId(segmentReader.Id, it.Next()))
		}
	}

	return results, nil
}

// Value returns nil when the document has no value for the field.
func (reader *IndexReader) Value(fieldName string, docId uint64) ([]byte, error) {
	segmentReader, exists := reader.segmentsById[ToSegmentId(docId)]
	if !exists {
		return nil, nil
	}

	return segmentReader.Value(fieldName, toLocalDocId(docId))
}

// Attribute returns the stored value of a field as a string, for instance the
// external id of a document.
func (reader *IndexReader) Attribute(name string, docId uint64) (string, bool, error) {
	value, err := reader.Value(name, docId)
	if err != nil || value == nil {
		return "", false, err
	}

	return string(value), true, nil
}

// LookupExternalId returns the global id of the live document whose
// externalIdField field is externalId. The first call loads every external
// id of the index.
func (reader *IndexReader) LookupExternalId(externalIdField, externalId string) (uint64, bool, error) {
	reader.externalMutex.Lock()
	defer reader.externalMutex.Unlock()

	if reader.externalLookup == nil || reader.externalField != externalIdField {
		lookup := make(map[string]uint64)

		for _, segmentReader := range reader.SegmentReaders {
			for localDocId := uint32(0); localDocId < segmentReader.Info.DocCount; localDocId++ {
				if segmentReader.IsDeleted(DocumentId(localDocId)) {
					continue
				}

				value, err := segmentReader.Value(externalIdField, DocumentId(localDocId))
				if err != nil {
					return 0, false, err
				}
				if value != nil {
					lookup[string(value)] = ToGlobalDocId(segmentReader.Id, localDocId)
				}
			}
		}

		reader.externalField = externalIdField
		reader.externalLookup = lookup
	}

	docId, exists := reader.externalLookup[externalId]
	return docId, exists, nil
}

func (reader *IndexReader) Close() error {
	errs := make([]error, 0, len(reader.SegmentReaders))
	for _, segmentReader := range reader.SegmentReaders {
		errs = append(errs, segmentReader.Close())
	}

	return errors.Join(errs...)
}
