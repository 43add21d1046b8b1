package index

import (
	"errors"
	"slices"
	"sync"

	"github.com/RoaringBitmap/roaring/v2"
)

// FieldReader opens the files of one field of a segment.
type FieldReader struct {
	Dictionary *DictionaryReader
	Postings   *FieldPostingsReader
	Lengths    *FieldLengthReader
	Stats      FieldStats
}

func newFieldReader(directory string, segmentId uint32, fieldName string) (*FieldReader, error) {
	stats, err := readFieldStats(directory, segmentId, fieldName)
	if err != nil {
		return nil, err
	}

	dictionary, err := newDictionaryReader(directory, segmentId, fieldName)
	if err != nil {
		return nil, err
	}

	postings, err := newFieldPostingsReader(directory, segmentId, fieldName)
	if err != nil {
		_ = dictionary.Close()
		return nil, err
	}

	lengths, err := newFieldLengthReader(directory, segmentId, fieldName)
	if err != nil {
		_ = errors.Join(dictionary.Close(), postings.Close())
		return nil, err
	}

	return &FieldReader{
		Dictionary: dictionary,
		Postings:   postings,
		Lengths:    lengths,
		Stats:      stats,
	}, nil
}

func (reader *FieldReader) Close() error {
	return errors.Join(
		reader.Dictionary.Close(),
		reader.Postings.Close(),
		reader.Lengths.Close(),
	)
}

// - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - -
// SegmentReader
// - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - -

type SegmentReader struct {
	DeletedDocIds *roaring.Bitmap
	Id            uint32
	Info          *SegmentInfo

	directory    string
	mutex        sync.Mutex
	fieldReaders map[string]*FieldReader
	storeReader  *StoreReader
}

func newSegmentReader(directory string, segmentId uint32, deletedDocIds *roaring.Bitmap) (*SegmentReader, error) {
	info, err := readSegmentInfo(directory, segmentId)
	if err != nil {
		return nil, err
	}

	return &SegmentReader{
		DeletedDocIds: deletedDocIds,
		Id:            segmentId,
		Info:          info,
		directory:     directory,
		fieldReaders:  make(map[string]*FieldReader),
		storeReader:   newStoreReader(directory, segmentId),
	}, nil
}

// LiveDocCount is the number of documents of the segment minus the deleted
// ones.
func (reader *SegmentReader) LiveDocCount() uint64 {
	return uint64(reader.Info.DocCount) - reader.DeletedDocIds.GetCardinality()
}

func (reader *SegmentReader) IsDeleted(docId DocumentId) bool {
	return reader.DeletedDocIds.Contains(uint32(docId))
}

// FieldReader returns nil when no document of the segment has the field.
func (reader *SegmentReader) FieldReader(fieldName string) (*FieldReader, error) {
	reader.mutex.Lock()
	defer reader.mutex.Unlock()

	fieldReader, exists := reader.fieldReaders[fieldName]
	if exists {
		return fieldReader, nil
	}

	if slices.Contains(reader.Info.Fields, fieldName) {
		var err error
		fieldReader, err = newFieldReader(reader.directory, reader.Id, fieldName)
		if err != nil {
			return nil, err
		}
	}

	reader.fieldReaders[fieldName] = fieldReader

	return fieldReader, nil
}

func (reader *SegmentReader) Value(fieldName string, docId DocumentId) ([]byte, error) {
	fieldStoreReader, err := reader.storeReader.GetFieldStoreReader(fieldName)
	if err != nil || fieldStoreReader == nil {
		return nil, err
	}

	return fieldStoreReader.Value(docId), nil
}

func (reader *SegmentReader) Close() error {
	reader.mutex.Lock()
	defer reader.mutex.Unlock()

	errs := make([]error, 0, len(reader.fieldReaders)+1)
	for _, fieldReader := range reader.fieldReaders {
		if fieldReader != nil {
			errs = append(errs, fieldReader.Close())
		}
	}
	errs = append(errs, reader.storeReader.Close())

	return errors.Join(errs...)
}
