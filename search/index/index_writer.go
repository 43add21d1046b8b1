package index

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/larose/lynxeval/search/analysis"
	"golang.org/x/exp/rand"
)

type IndexWriter struct {
	directory string
	mutex     sync.Mutex
	tokenizer *analysis.StandardTokenizer
}

// Commit lists the live segments of an index and the current deleted file.
// Readers only see what the last commit references.
type Commit struct {
	SegmentIds []uint32 `json:"segmentIds"`
	DeletedId  *uint32  `json:"deletedId,omitempty"`
}

func NewIndexWriter(directory string) *IndexWriter {
	return &IndexWriter{
		directory: directory,
		tokenizer: analysis.NewStandardTokenizer(),
	}
}

// AddDocuments writes docs as a new segment and commits it. Text fields are
// tokenized, byte fields are indexed as a single term at position 0.
func (writer *IndexWriter) AddDocuments(docs []Document) error {
	writer.mutex.Lock()
	defer writer.mutex.Unlock()

	segmentComponentWriters := []SegmentComponentWriter{
		newInvertedIndexWriter(),
		newStoreWriter(),
		newSegmentInfoWriter(),
	}

	for docId, doc := range docs {
		for _, segmentComponentWriter := range segmentComponentWriters {
			segmentComponentWriter.Doc(DocumentId(docId))
		}

		for _, field := range doc {
			for _, segmentComponentWriter := range segmentComponentWriters {
				segmentComponentWriter.Field(field.Name, field.Value)
			}

			switch field.FieldType {
			case TextFieldType:
				writer.tokenizer.Reset(field.Value)
				for {
					token, ok := writer.tokenizer.NextToken()
					if !ok {
						break
					}

					for _, segmentComponentWriter := range segmentComponentWriters {
						segmentComponentWriter.Term(token.Text, token.Position)
					}
				}
			case ByteFieldType:
				for _, segmentComponentWriter := range segmentComponentWriters {
					segmentComponentWriter.Term(field.Value, 0)
				}
			default:
				return fmt.Errorf("unknown field type %d", field.FieldType)
			}

			for _, segmentComponentWriter := range segmentComponentWriters {
				segmentComponentWriter.EndField()
			}
		}
	}

	commit, err := readCommit(writer.directory)
	if err != nil {
		return err
	}

	newSegmentId := writer.newSegmentId(commit)

	for _, segmentComponentWriter := range segmentComponentWriters {
		if err := segmentComponentWriter.Write(writer.directory, newSegmentId); err != nil {
			return fmt.Errorf("write segment %d: %w", newSegmentId, err)
		}
	}

	segmentIds := append(commit.SegmentIds, newSegmentId)

	return writer.commit(segmentIds, commit.DeletedId)
}

func (writer *IndexWriter) newSegmentId(commit *Commit) uint32 {
	for {
		segmentId := rand.Uint32()

		exists := false
		for _, existingId := range commit.SegmentIds {
			if existingId == segmentId {
				exists = true
				break
			}
		}

		if !exists {
			return segmentId
		}
	}
}

func (writer *IndexWriter) commit(segmentIds []uint32, deletedId *uint32) error {
	tempFilePath := filepath.Join(writer.directory, ".commit")
	tempFile, err := os.Create(tempFilePath)
	if err != nil {
		return err
	}

	commit := Commit{
		SegmentIds: segmentIds,
		DeletedId:  deletedId,
	}

	if err := json.NewEncoder(tempFile).Encode(commit); err != nil {
		_ = tempFile.Close()
		return err
	}

	if err := tempFile.Close(); err != nil {
		return err
	}

	return os.Rename(tempFilePath, filepath.Join(writer.directory, "commit"))
}

// DeleteDocuments deletes every document whose fieldName field has exactly
// one of the given values. The field must be a byte field.
func (writer *IndexWriter) DeleteDocuments(fieldName string, values [][]byte) error {
	writer.mutex.Lock()
	defer writer.mutex.Unlock()

	indexReader, err := NewIndexReader(writer.directory)
	if err != nil {
		return err
	}
	defer indexReader.Close()

	docIdsToDelete, err := indexReader.SearchByExactValues(fieldName, values)
	if err != nil {
		return err
	}

	if len(docIdsToDelete) == 0 {
		return nil
	}

	commit := indexReader.commit

	var nextDeletedId uint32
	if commit.DeletedId != nil {
		nextDeletedId = *commit.DeletedId + 1
	}

	deletedDocIdsBySegment := make(map[uint32]*roaring.Bitmap, len(indexReader.SegmentReaders))
	for _, segmentReader := range indexReader.SegmentReaders {
		deletedDocIdsBySegment[segmentReader.Id] = segmentReader.DeletedDocIds.Clone()
	}

	for _, docId := range docIdsToDelete {
		deletedDocIdsBySegment[ToSegmentId(docId)].Add(uint32(toLocalDocId(docId)))
	}

	deletedWriter := newDeletedWriter(deletedDocIdsBySegment)
	if err := deletedWriter.Write(writer.directory, nextDeletedId); err != nil {
		return fmt.Errorf("write deleted %d: %w", nextDeletedId, err)
	}

	return writer.commit(commit.SegmentIds, &nextDeletedId)
}

func deletedFileName(directory string, deletedId uint32) string {
	return filepath.Join(directory, "deleted."+strconv.FormatUint(uint64(deletedId), 10))
}
