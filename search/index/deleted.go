package index

import (
	"slices"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/larose/lynxeval/search/utils"
)

// DeletedWriter writes the deleted documents of every segment, keyed by
// segment id. Each deleted file replaces the previous one.
type DeletedWriter struct {
	deletedDocIdsBySegment map[uint32]*roaring.Bitmap
}

func newDeletedWriter(deletedDocIdsBySegment map[uint32]*roaring.Bitmap) *DeletedWriter {
	return &DeletedWriter{deletedDocIdsBySegment: deletedDocIdsBySegment}
}

func (writer *DeletedWriter) Write(directory string, deletedId uint32) error {
	kvStoreWriter, err := newKVStoreWriter(deletedFileName(directory, deletedId))
	if err != nil {
		return err
	}

	sortedSegmentIds := make([]uint32, 0, len(writer.deletedDocIdsBySegment))
	for segmentId := range writer.deletedDocIdsBySegment {
		sortedSegmentIds = append(sortedSegmentIds, segmentId)
	}

	slices.Sort(sortedSegmentIds)

	for _, segmentId := range sortedSegmentIds {
		deletedDocsForSegment := writer.deletedDocIdsBySegment[segmentId]
		deletedDocsForSegment.RunOptimize()

		buffer, err := deletedDocsForSegment.ToBytes()
		if err != nil {
			_ = kvStoreWriter.Close()
			return err
		}

		if err := kvStoreWriter.Append(utils.Uint32ToBytes(segmentId), buffer); err != nil {
			_ = kvStoreWriter.Close()
			return err
		}
	}

	return kvStoreWriter.Close()
}

type DeletedReader interface {
	// GetDeletedDocIdsForSegment returns nil when the segment has no deleted
	// documents.
	GetDeletedDocIdsForSegment(segmentId uint32) (*roaring.Bitmap, error)
	Close() error
}

type NullDeletedReader struct {
}

func newNullDeletedReader() *NullDeletedReader {
	return &NullDeletedReader{}
}

func (reader *NullDeletedReader) GetDeletedDocIdsForSegment(segmentId uint32) (*roaring.Bitmap, error) {
	return nil, nil
}

func (reader *NullDeletedReader) Close() error {
	return nil
}

type FileDeletedReader struct {
	kvStoreReader *KVStoreReader
}

func newFileDeletedReader(directory string, deletedId uint32) (*FileDeletedReader, error) {
	kvStoreReader, err := newKVStoreReader(deletedFileName(directory, deletedId))
	if err != nil {
		return nil, err
	}

	return &FileDeletedReader{kvStoreReader: kvStoreReader}, nil
}

func (reader *FileDeletedReader) GetDeletedDocIdsForSegment(segmentId uint32) (*roaring.Bitmap, error) {
	value := reader.kvStoreReader.Get(utils.Uint32ToBytes(segmentId))
	if value == nil {
		return nil, nil
	}

	// The value points into the mapping, the bitmap must own its memory
	deletedDocs := roaring.NewBitmap()
	if err := deletedDocs.UnmarshalBinary(value); err != nil {
		return nil, err
	}

	return deletedDocs, nil
}

func (reader *FileDeletedReader) Close() error {
	return reader.kvStoreReader.Close()
}
