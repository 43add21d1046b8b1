package index

import (
	"bufio"
	"encoding/binary"
	"os"
)

type FieldPostingsWriter struct {
	file   *os.File
	offset int64
	writer *bufio.Writer
}

func newFieldPostingsWriter(directory string, segmentId uint32, fieldName string) (*FieldPostingsWriter, error) {
	file, err := createFile(segmentFileName(directory, segmentId, fieldName, "postings"))
	if err != nil {
		return nil, err
	}

	return &FieldPostingsWriter{
		file:   file,
		writer: bufio.NewWriter(file),
	}, nil
}

const blockSize = 128

/*
Block:
  - Header:
	- [0] num docs (byte)
	- [1] first doc id (uint32)
	- [5] last doc id (uint32)
	- [9] length bytes, header included (uint32)
  - Doc ids block: uvarint deltas
  - Term freq block: uvarint
  - Positions block: for each doc, tf uvarint position deltas
*/
const headerSize = 13

func (writer *FieldPostingsWriter) WriteBlock(docIds []uint32, positions [][]uint32) (uint64, uint64, error) {
	blockStartOffset := writer.offset

	buffer := make([]byte, 0, len(docIds)*4*3+headerSize)

	buffer = append(buffer, byte(len(docIds)))
	buffer = binary.BigEndian.AppendUint32(buffer, docIds[0])
	buffer = binary.BigEndian.AppendUint32(buffer, docIds[len(docIds)-1])
	buffer = binary.BigEndian.AppendUint32(buffer, 0) // length, patched below

	previousDocId := uint32(0)
	for i, docId := range docIds {
		if i == 0 {
			buffer = binary.AppendUvarint(buffer, uint64(docId))
		} else {
			buffer = binary.AppendUvarint(buffer, uint64(docId-previousDocId))
		}
		previousDocId = docId
	}

	for _, docPositions := range positions {
		buffer = binary.AppendUvarint(buffer, uint64(len(docPositions)))
	}

	for _, docPositions := range positions {
		previousPosition := uint32(0)
		for _, position := range docPositions {
			buffer = binary.AppendUvarint(buffer, uint64(position-previousPosition))
			previousPosition = position
		}
	}

	binary.BigEndian.PutUint32(buffer[9:], uint32(len(buffer)))

	if _, err := writer.writer.Write(buffer); err != nil {
		return 0, 0, err
	}

	writer.offset = blockStartOffset + int64(len(buffer))

	return uint64(blockStartOffset), uint64(writer.offset), nil
}

func (w *FieldPostingsWriter) Close() error {
	if err := w.writer.Flush(); err != nil {
		_ = w.file.Close()
		return err
	}

	return w.file.Close()
}

type FieldPostingsReader struct {
	fileReader *FileReader
}

func newFieldPostingsReader(directory string, segmentId uint32, fieldName string) (*FieldPostingsReader, error) {
	fileReader, err := newFileReader(segmentFileName(directory, segmentId, fieldName, "postings"))
	if err != nil {
		return nil, err
	}

	return &FieldPostingsReader{
		fileReader: fileReader,
	}, nil
}

func (reader *FieldPostingsReader) TermPostingsIterator(termInfo *TermInfo) *TermPostingsIterator {
	return newTermPostingsIterator(reader.fileReader.Slice(termInfo.PostingsFileStartOffset, termInfo.PostingsFileEndOffset))
}

func (reader *FieldPostingsReader) Close() error {
	return reader.fileReader.Close()
}
